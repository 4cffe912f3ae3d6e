package pit38

import (
	"errors"
	"sort"

	"github.com/sirupsen/logrus"
)

// Fatal conditions: the integrity of the whole computation cannot be
// trusted, the run aborts.
var (
	// ErrDuplicateAcrossSources is returned when the same row appears in two
	// different input files, which indicates re-exported overlapping ranges.
	ErrDuplicateAcrossSources = errors.New("duplicate transaction rows across different source files")

	// ErrMissingColumns is returned when an input file lacks a required column.
	ErrMissingColumns = errors.New("missing required columns")

	// ErrUnsupportedFormYear is returned when no form layout is configured
	// for the requested fiscal year.
	ErrUnsupportedFormYear = errors.New("unsupported form year")

	// ErrMissingRate is returned by RateTable.Lookup when no rate exists on
	// or before the queried date.
	ErrMissingRate = errors.New("no exchange rate on or before date")
)

// Condition identifies a row-level data problem. Conditions never abort the
// run; they are logged, counted, and reported alongside the result.
type Condition string

const (
	DataInconsistency  Condition = "data-inconsistency"
	MissingRate        Condition = "missing-rate"
	DroppedSettlement  Condition = "dropped-settlement"
	RateDisagreement   Condition = "rate-disagreement"
	Oversell           Condition = "oversell"
	AmbiguousMatch     Condition = "ambiguous-match"
	SaleNotFound       Condition = "sale-not-found"
	BuyNotFound        Condition = "buy-not-found"
	InvalidOverrideRow Condition = "invalid-override-row"
	QuantityMismatch   Condition = "quantity-mismatch"
)

// Diagnostics collects row-level conditions detected during a run. Each
// condition is logged when reported and counted per kind, so a best-effort
// result is never presented without its problems.
type Diagnostics struct {
	logger *logrus.Logger
	counts map[Condition]int
}

// NewDiagnostics returns a collector that logs through the given logger.
// A nil logger falls back to the logrus standard logger.
func NewDiagnostics(logger *logrus.Logger) *Diagnostics {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Diagnostics{logger: logger, counts: make(map[Condition]int)}
}

// Reportf records one instance of a condition and logs it at error level.
func (g *Diagnostics) Reportf(kind Condition, format string, args ...any) {
	g.counts[kind]++
	g.logger.WithField("condition", string(kind)).Errorf(format, args...)
}

// ReportN records n instances of a condition with a single log line.
func (g *Diagnostics) ReportN(kind Condition, n int, format string, args ...any) {
	if n <= 0 {
		return
	}
	g.counts[kind] += n
	g.logger.WithField("condition", string(kind)).Warnf(format, args...)
}

// Count returns how many instances of the given condition were reported.
func (g *Diagnostics) Count(kind Condition) int { return g.counts[kind] }

// Total returns the number of reported instances across all conditions.
func (g *Diagnostics) Total() int {
	n := 0
	for _, c := range g.counts {
		n += c
	}
	return n
}

// Empty reports whether no condition was recorded.
func (g *Diagnostics) Empty() bool { return g.Total() == 0 }

// Conditions returns the recorded condition kinds in stable (sorted) order.
func (g *Diagnostics) Conditions() []Condition {
	kinds := make([]Condition, 0, len(g.counts))
	for k := range g.counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
