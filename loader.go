package pit38

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RawSource is one raw tabular input, identified by name for provenance and
// duplicate detection.
type RawSource struct {
	Name   string
	Reader io.Reader
}

// Column names expected in a transaction export.
const (
	colDate       = "Transaction date"
	colType       = "Transaction type"
	colInvestment = "Investment name"
	colSymbol     = "Symbol"
	colShares     = "Shares"
	colAmount     = "Amount"
)

// footerMarkers identify the known non-transactional boilerplate rows a
// broker appends to its exports: every transactional field empty and one of
// these disclaimer fragments in the date field. This is an explicit
// allow-list, not a blanket fallback, so genuinely malformed rows still
// surface as inconsistencies.
var footerMarkers = []string{
	"unless noted otherwise",
	"stock plan account history as of",
}

func isFooterRow(date, typeText, investment, shares, amount string) bool {
	if typeText != "" || investment != "" || shares != "" || amount != "" {
		return false
	}
	d := strings.ToLower(date)
	for _, marker := range footerMarkers {
		if strings.Contains(d, marker) {
			return true
		}
	}
	return false
}

// LoadTransactions reads and normalizes one or more transaction exports.
//
// Rows are concatenated in input order. Known footer rows are dropped
// silently. A row that appears byte-identically in two different sources is
// fatal (re-exported overlapping ranges); identical rows repeated within one
// source are legitimate and preserved. Rows with an unparseable date but
// non-empty transactional fields are kept with a zero trade date and counted
// as a DataInconsistency.
func LoadTransactions(sources []RawSource, diags *Diagnostics) ([]Transaction, error) {
	var txs []Transaction
	seen := make(map[string]string) // raw row -> first source that provided it

	for _, src := range sources {
		r := csv.NewReader(src.Reader)
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", src.Name, err)
		}
		if len(records) == 0 {
			continue
		}
		cols, err := headerIndex(records[0], src.Name)
		if err != nil {
			return nil, err
		}
		for _, record := range records[1:] {
			field := func(name string) string {
				i, ok := cols[name]
				if !ok || i >= len(record) {
					return ""
				}
				return strings.TrimSpace(record[i])
			}
			date := field(colDate)
			typeText := field(colType)
			investment := field(colInvestment)
			shares := field(colShares)
			amount := field(colAmount)

			if isFooterRow(date, typeText, investment, shares, amount) {
				continue
			}

			raw := strings.Join(record, "\x1f")
			if first, ok := seen[raw]; ok && first != src.Name {
				return nil, fmt.Errorf("row %q present in both %q and %q: %w", strings.Join(record, ","), first, src.Name, ErrDuplicateAcrossSources)
			}
			if _, ok := seen[raw]; !ok {
				seen[raw] = src.Name
			}

			tx := Transaction{
				TypeText:   cleanTypeText(typeText),
				Category:   Classify(typeText),
				Investment: investment,
				Symbol:     strings.TrimSpace(field(colSymbol)),
				Source:     src.Name,
			}
			tx.Shares, tx.HasShares = ParseShares(shares)
			tx.Amount, tx.HasAmount = ParseAmount(amount)

			if d, err := ParseDate(date); err == nil {
				tx.TradeDate = d
			} else {
				if typeText == "" && investment == "" && shares == "" && amount == "" {
					// blank row, nothing to report
					continue
				}
				diags.Reportf(DataInconsistency, "%s: invalid transaction date %q with non-empty transaction fields", src.Name, date)
			}
			txs = append(txs, tx)
		}
	}

	checkMarketFields(txs, diags)
	return txs, nil
}

// headerIndex maps the required column names to their positions.
func headerIndex(header []string, source string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colDate, colType, colShares, colAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%s: column %q: %w", source, required, ErrMissingColumns)
		}
	}
	return cols, nil
}

// checkMarketFields reports market-trade rows missing shares or amount.
func checkMarketFields(txs []Transaction, diags *Diagnostics) {
	missingShares, missingAmount := 0, 0
	for _, tx := range txs {
		if tx.Category != Buy && tx.Category != Sell {
			continue
		}
		if !tx.HasShares {
			missingShares++
		}
		if !tx.HasAmount {
			missingAmount++
		}
	}
	diags.ReportN(DataInconsistency, missingShares, "%d market-trade row(s) have missing or invalid shares", missingShares)
	diags.ReportN(DataInconsistency, missingAmount, "%d market-trade row(s) have missing or invalid amount", missingAmount)
}
