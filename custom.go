package pit38

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
)

// Override-table column names (tab-separated lot identification files).
const (
	colSaleDate  = "Date sold or transferred"
	colAcquired  = "Date acquired"
	colQuantity  = "Quantity"
	colSource    = "Stock source"
	colCostBasis = "Cost basis"
)

// symbolColumns are tried in order when an override row identifies its security.
var symbolColumns = []string{"Symbol", "Ticker", "Security Symbol"}

// sourceVest tags lots acquired through a compensation vest with no cash
// outlay; their deductible cost is zero regardless of any reported basis
// (the basis column carries the fair-market-value-at-vest figure, which is
// not a deductible cost here).
const sourceVest = "RS"

// sourcePurchasePlan tags ESPP lots.
const sourcePurchasePlan = "SP"

// OverrideRow identifies one specific lot sold, as externally supplied.
type OverrideRow struct {
	SaleDate     Date
	AcquiredDate Date
	Quantity     Quantity
	HasQuantity  bool
	Source       string
	CostBasis    Money // reported basis in the native currency
	HasCostBasis bool
	Symbol       string
	Investment   string
}

// ParseOverrides reads one or more tab-separated lot identification files.
// Rows repeated across the combined inputs collapse into one.
func ParseOverrides(sources []RawSource) ([]OverrideRow, error) {
	var rows []OverrideRow
	seen := make(map[string]bool)
	for _, src := range sources {
		r := csv.NewReader(src.Reader)
		r.Comma = '\t'
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", src.Name, err)
		}
		if len(records) == 0 {
			continue
		}
		cols := make(map[string]int, len(records[0]))
		for i, h := range records[0] {
			cols[strings.TrimSpace(h)] = i
		}
		for _, required := range []string{colSaleDate, colAcquired, colQuantity} {
			if _, ok := cols[required]; !ok {
				return nil, fmt.Errorf("%s: column %q: %w", src.Name, required, ErrMissingColumns)
			}
		}
		for _, record := range records[1:] {
			raw := strings.Join(record, "\x1f")
			if seen[raw] {
				continue
			}
			seen[raw] = true

			field := func(name string) string {
				i, ok := cols[name]
				if !ok || i >= len(record) {
					return ""
				}
				return strings.TrimSpace(record[i])
			}
			row := OverrideRow{
				Source:     field(colSource),
				Investment: cleanIdentifier(field(colInvestment)),
			}
			row.SaleDate, _ = parseOptionalDate(field(colSaleDate))
			row.AcquiredDate, _ = parseOptionalDate(field(colAcquired))
			row.Quantity, row.HasQuantity = ParseShares(field(colQuantity))
			row.CostBasis, row.HasCostBasis = ParseAmount(field(colCostBasis))
			for _, col := range symbolColumns {
				if s := cleanIdentifier(field(col)); s != "" {
					row.Symbol = s
					break
				}
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// cleanIdentifier normalizes an optional identifier cell; "-" means absent.
func cleanIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if s == "-" {
		return ""
	}
	return s
}

func parseOptionalDate(s string) (Date, bool) {
	if s == "" {
		return Date{}, false
	}
	d, err := ParseDate(s)
	if err != nil {
		return Date{}, false
	}
	return d, true
}

// valid reports whether the row carries the minimum needed for matching.
func (r OverrideRow) valid() bool {
	return !r.SaleDate.IsZero() && !r.AcquiredDate.IsZero() && r.HasQuantity && r.Quantity.IsPositive()
}

// MatchOverrides matches sales to the specific lots named by the override
// rows. Lookups that produce zero or several ambiguous candidates are
// reported and the row is skipped rather than guessed.
func MatchOverrides(records []SettlementRecord, rows []OverrideRow, year int, diags *Diagnostics) MatchResult {
	result := newMatchResult()

	rows = filterOverridesToYear(records, rows, year)
	checkOverrideRows(rows, diags)
	checkSaleQuantities(records, rows, year, diags)
	checkAcquiredQuantities(records, rows, diags)

	for _, row := range rows {
		if !row.valid() {
			continue
		}

		sale, ok := findOverrideSale(records, row, diags)
		if !ok {
			continue
		}
		proceeds := sale.AmountPLN.Div(sale.Shares.Abs()).Mul(row.Quantity).RoundUnits()

		var buy SettlementRecord
		if row.Source != sourceVest {
			buy, ok = findOverrideBuy(records, row, sale.Investment, diags)
			if !ok {
				continue
			}
		}

		var cost Money
		switch {
		case row.Source == sourceVest:
			cost = PLN(0)
		case row.HasCostBasis:
			if row.CostBasis.IsNegative() {
				diags.Reportf(InvalidOverrideRow, "negative cost basis %s for sale date %s", row.CostBasis.Decimal(), row.SaleDate)
				continue
			}
			if !buy.HasRate {
				diags.Reportf(InvalidOverrideRow, "cannot convert cost basis for sale date %s: acquisition has no rate", row.SaleDate)
				continue
			}
			cost = row.CostBasis.Convert(buy.Rate, ReportingCurrency).RoundUnits()
		default:
			if row.Source == sourcePurchasePlan {
				diags.logger.Warnf("missing cost basis for %s lot sold on %s; deriving cost from the matching purchase", sourcePurchasePlan, row.SaleDate)
			}
			if buy.Shares.IsZero() {
				cost = PLN(0)
			} else {
				cost = buy.AmountPLN.Neg().Div(buy.Shares).Mul(row.Quantity).RoundUnits()
			}
		}

		result.Allocations = append(result.Allocations, Allocation{
			Investment: sale.Investment,
			Quantity:   row.Quantity,
			Proceeds:   proceeds,
			Cost:       cost,
		})
	}

	result.total()
	return result
}

// filterOverridesToYear keeps rows whose sale date corresponds to a sell
// settling in the target year (matching by trade or settlement date).
// Invalid rows are kept so they are counted by the row validation.
func filterOverridesToYear(records []SettlementRecord, rows []OverrideRow, year int) []OverrideRow {
	if year == 0 {
		return rows
	}
	allowed := make(map[Date]bool)
	for _, rec := range records {
		if rec.Category == Sell && rec.SettlementDate.Year() == year {
			allowed[rec.TradeDate] = true
			allowed[rec.SettlementDate] = true
		}
	}
	kept := rows[:0:0]
	for _, row := range rows {
		if row.SaleDate.IsZero() || allowed[row.SaleDate] {
			kept = append(kept, row)
		}
	}
	return kept
}

func checkOverrideRows(rows []OverrideRow, diags *Diagnostics) {
	invalid := 0
	for _, row := range rows {
		if !row.valid() {
			invalid++
		}
	}
	diags.ReportN(InvalidOverrideRow, invalid, "%d override row(s) have invalid sale date, acquisition date or quantity and will be skipped", invalid)
}

// checkSaleQuantities validates per-sale-date override quantities against
// the quantities actually sold in the transaction history.
func checkSaleQuantities(records []SettlementRecord, rows []OverrideRow, year int, diags *Diagnostics) {
	tradeQty := make(map[Date]Quantity)
	settleQty := make(map[Date]Quantity)
	for _, rec := range records {
		if rec.Category != Sell || !rec.HasShares {
			continue
		}
		if year != 0 && rec.SettlementDate.Year() != year {
			continue
		}
		tradeQty[rec.TradeDate] = tradeQty[rec.TradeDate].Add(rec.Shares.Abs())
		settleQty[rec.SettlementDate] = settleQty[rec.SettlementDate].Add(rec.Shares.Abs())
	}

	needed := make(map[Date]Quantity)
	var order []Date
	for _, row := range rows {
		if row.SaleDate.IsZero() || !row.HasQuantity {
			continue
		}
		if _, ok := needed[row.SaleDate]; !ok {
			order = append(order, row.SaleDate)
		}
		needed[row.SaleDate] = needed[row.SaleDate].Add(row.Quantity)
	}

	for _, saleDate := range order {
		available := tradeQty[saleDate]
		if !available.IsPositive() {
			available = settleQty[saleDate]
		}
		switch {
		case !available.IsPositive():
			diags.Reportf(SaleNotFound, "no sell transaction found for override sale date %s", saleDate)
		case needed[saleDate].GreaterThan(available):
			diags.Reportf(QuantityMismatch, "override sale quantity %s on %s exceeds sold quantity %s",
				needed[saleDate], saleDate, available)
		}
	}
}

// checkAcquiredQuantities validates per-(acquisition date, source) override
// quantities against the buy lots present in the transaction history.
func checkAcquiredQuantities(records []SettlementRecord, rows []OverrideRow, diags *Diagnostics) {
	type key struct {
		date   Date
		source string
	}
	needed := make(map[key]Quantity)
	var order []key
	for _, row := range rows {
		if row.AcquiredDate.IsZero() || !row.HasQuantity || row.Source == "" {
			continue
		}
		k := key{row.AcquiredDate, row.Source}
		if _, ok := needed[k]; !ok {
			order = append(order, k)
		}
		needed[k] = needed[k].Add(row.Quantity)
	}

	for _, k := range order {
		tradeQty, settleQty := Q(0), Q(0)
		for _, rec := range records {
			if rec.Category != Buy || !rec.HasShares {
				continue
			}
			if k.source == sourcePurchasePlan && !rec.ESPP() {
				continue
			}
			if k.source == sourceVest && !rec.RSU() {
				continue
			}
			if rec.TradeDate == k.date {
				tradeQty = tradeQty.Add(rec.Shares)
			}
			if rec.SettlementDate == k.date {
				settleQty = settleQty.Add(rec.Shares)
			}
		}
		available := tradeQty
		if !available.IsPositive() {
			available = settleQty
		}
		switch {
		case !available.IsPositive():
			diags.Reportf(BuyNotFound, "no buy lot matching acquisition date %s and source %s", k.date, k.source)
		case needed[k].GreaterThan(available):
			diags.Reportf(QuantityMismatch, "override acquired quantity %s for %s (source %s) exceeds bought quantity %s",
				needed[k], k.date, k.source, available)
		}
	}
}

// findOverrideSale locates the sell settlement record for an override row,
// by trade date first, then settlement date, optionally narrowed by the
// row's security identifier.
func findOverrideSale(records []SettlementRecord, row OverrideRow, diags *Diagnostics) (SettlementRecord, bool) {
	candidates := filterRecords(records, func(rec SettlementRecord) bool {
		return rec.Category == Sell && rec.TradeDate == row.SaleDate
	})
	if len(candidates) == 0 {
		candidates = filterRecords(records, func(rec SettlementRecord) bool {
			return rec.Category == Sell && rec.SettlementDate == row.SaleDate
		})
	}
	candidates = filterByIdentifier(candidates, row.Symbol, row.Investment, "sale", row.SaleDate, diags)
	if len(candidates) == 0 {
		diags.Reportf(SaleNotFound, "no sale record found for %s", row.SaleDate)
		return SettlementRecord{}, false
	}
	if len(candidates) > 1 {
		diags.Reportf(AmbiguousMatch, "%d sale rows match %s; using the first one", len(candidates), row.SaleDate)
	}
	sale := candidates[0]
	if !matchable(sale) {
		diags.Reportf(SaleNotFound, "sale record for %s has no usable rate, shares or amount", row.SaleDate)
		return SettlementRecord{}, false
	}
	return sale, true
}

// findOverrideBuy locates the buy settlement record for an override row,
// analogously to the sale lookup, additionally narrowed to ESPP rows for
// purchase-plan lots and to the sale's investment when known.
func findOverrideBuy(records []SettlementRecord, row OverrideRow, saleInvestment string, diags *Diagnostics) (SettlementRecord, bool) {
	match := func(byTradeDate bool) []SettlementRecord {
		return filterRecords(records, func(rec SettlementRecord) bool {
			if rec.Category != Buy {
				return false
			}
			if byTradeDate {
				if rec.TradeDate != row.AcquiredDate {
					return false
				}
			} else if rec.SettlementDate != row.AcquiredDate {
				return false
			}
			if saleInvestment != "" && rec.Investment != "" && rec.Investment != saleInvestment {
				return false
			}
			if row.Source == sourcePurchasePlan && !rec.ESPP() {
				return false
			}
			return true
		})
	}
	candidates := match(true)
	if len(candidates) == 0 {
		candidates = match(false)
	}
	if len(candidates) == 0 {
		diags.Reportf(BuyNotFound, "no buy record found for %s (source %s)", row.AcquiredDate, row.Source)
		return SettlementRecord{}, false
	}
	if len(candidates) > 1 {
		diags.Reportf(AmbiguousMatch, "%d buy rows match %s (source %s); using the first one", len(candidates), row.AcquiredDate, row.Source)
	}
	buy := candidates[0]
	if !buy.HasShares {
		diags.Reportf(BuyNotFound, "buy record for %s has no usable share count", row.AcquiredDate)
		return SettlementRecord{}, false
	}
	return buy, true
}

func filterRecords(records []SettlementRecord, keep func(SettlementRecord) bool) []SettlementRecord {
	var out []SettlementRecord
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// filterByIdentifier narrows candidate records by the override row's symbol
// or investment name. It tries, in order: exact symbol match, exact
// investment-name match, then a word match of the symbol inside the
// investment name. An unmatchable symbol empties the candidate set.
func filterByIdentifier(candidates []SettlementRecord, symbol, investment, label string, on Date, diags *Diagnostics) []SettlementRecord {
	if len(candidates) == 0 {
		return candidates
	}
	if symbol != "" {
		upper := strings.ToUpper(symbol)
		if exact := filterRecords(candidates, func(rec SettlementRecord) bool {
			return strings.ToUpper(strings.TrimSpace(rec.Symbol)) == upper
		}); len(exact) > 0 {
			return exact
		}
		if byName := filterRecords(candidates, func(rec SettlementRecord) bool {
			return strings.ToUpper(strings.TrimSpace(rec.Investment)) == upper
		}); len(byName) > 0 {
			return byName
		}
		token := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(symbol) + `\b`)
		if byToken := filterRecords(candidates, func(rec SettlementRecord) bool {
			return token.MatchString(rec.Investment)
		}); len(byToken) > 0 {
			return byToken
		}
		diags.Reportf(AmbiguousMatch, "symbol %q could not be matched to %s rows on %s", symbol, label, on)
		return nil
	}
	if investment != "" {
		upper := strings.ToUpper(investment)
		if byName := filterRecords(candidates, func(rec SettlementRecord) bool {
			return strings.ToUpper(strings.TrimSpace(rec.Investment)) == upper
		}); len(byName) > 0 {
			return byName
		}
	}
	return candidates
}
