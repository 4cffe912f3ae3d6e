package pit38

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// MatchMethod selects the lot-matching strategy.
type MatchMethod int

const (
	// FIFO matches sells against the oldest open buy lots.
	FIFO MatchMethod = iota
	// Overrides matches sells to the specific lots named by an externally
	// supplied lot identification table.
	Overrides
)

// ParseMatchMethod parses a matching-method name.
func ParseMatchMethod(s string) (MatchMethod, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "custom", "overrides":
		return Overrides, nil
	}
	return 0, fmt.Errorf("unknown matching method %q (want fifo or custom)", s)
}

func (m MatchMethod) String() string {
	if m == Overrides {
		return "custom"
	}
	return "fifo"
}

// RateSource provides the exchange-rate table covering the given settlement
// years. The nbp package provides the network-backed implementation; tests
// and offline runs use StaticRates.
type RateSource interface {
	Rates(dataYears []int, diags *Diagnostics) (*RateTable, error)
}

// StaticRates serves a pre-assembled rate table.
type StaticRates struct {
	Table *RateTable
}

func (s StaticRates) Rates([]int, *Diagnostics) (*RateTable, error) { return s.Table, nil }

// Options configures a Calculate run.
type Options struct {
	Year      int
	Method    MatchMethod
	Overrides []RawSource    // lot identification files, required for Overrides
	Config    *Config        // nil: the embedded default configuration
	Fund      FundClassifier // nil: DefaultFundClassifier
	Logger    *logrus.Logger // nil: the logrus standard logger
}

// Report is the outcome of a full calculation: the computed declaration
// fields, the matching totals they were derived from, and the diagnostics
// collected along the way. A result is never presented without its
// diagnostics.
type Report struct {
	Fields      Fields
	Method      MatchMethod
	Totals      Totals
	Records     []SettlementRecord
	Diagnostics *Diagnostics
}

// YearsInData returns the distinct settlement years present, ascending.
func YearsInData(records []SettlementRecord) []int {
	seen := make(map[int]bool)
	var years []int
	for _, rec := range records {
		y := rec.SettlementDate.Year()
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for i := 1; i < len(years); i++ { // insertion sort, the slice is tiny
		for j := i; j > 0 && years[j] < years[j-1]; j-- {
			years[j], years[j-1] = years[j-1], years[j]
		}
	}
	return years
}

// Calculate runs the full pipeline: normalize, settle, value against the
// rate table, match lots, aggregate income, and compute the declaration
// fields. Row-level problems are collected in the report's diagnostics;
// only structural failures return an error.
func Calculate(sources []RawSource, rates RateSource, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	diags := NewDiagnostics(logger)

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	yearCfg, err := cfg.ForYear(opts.Year)
	if err != nil {
		return nil, err
	}

	txs, err := LoadTransactions(sources, diags)
	if err != nil {
		return nil, err
	}
	records := Settle(txs, yearCfg.Regime, diags)

	years := YearsInData(records)
	if len(years) > 0 {
		found := false
		for _, y := range years {
			if y == opts.Year {
				found = true
			}
		}
		if !found {
			logger.Warnf("target year %d not found in transaction data; data contains years %v", opts.Year, years)
		}
	}

	table, err := rates.Rates(years, diags)
	if err != nil {
		return nil, err
	}
	Value(records, table, diags)

	var match MatchResult
	switch opts.Method {
	case Overrides:
		if len(opts.Overrides) == 0 {
			return nil, fmt.Errorf("the custom matching method requires at least one lot identification file")
		}
		rows, err := ParseOverrides(opts.Overrides)
		if err != nil {
			return nil, err
		}
		match = MatchOverrides(records, rows, opts.Year, diags)
	default:
		match = MatchFIFO(records, opts.Year, diags)
	}
	logger.Infof("%s: matched %d lot(s); gain %s", opts.Method, len(match.Allocations), match.Gain)

	sectionG := ComputeSectionG(records, opts.Year, opts.Fund)
	logger.Infof("section G income %s (equity dividends %s; fund distributions %s); foreign tax %s",
		sectionG.TotalIncome, sectionG.EquityDividends, sectionG.FundDistributions, sectionG.ForeignTax)

	totals := Totals{
		Proceeds:              match.Proceeds,
		Costs:                 match.Costs,
		Gain:                  match.Gain,
		SectionG:              sectionG,
		ForeignTaxCapitalGain: ForeignTaxCapitalGains(records, opts.Year),
	}

	return &Report{
		Fields:      ComputeFields(yearCfg, totals),
		Method:      opts.Method,
		Totals:      totals,
		Records:     records,
		Diagnostics: diags,
	}, nil
}
