package pit38

import "slices"

// Lot is a batch of purchased shares with its own PLN cost basis. Remaining
// is the only mutable field: the matching pass decrements it as sells
// consume the lot. Fully consumed lots stay in place with Remaining zero.
type Lot struct {
	Investment string
	Settlement Date
	Quantity   Quantity
	AmountPLN  Money // the buy's signed PLN amount (negative: cash out)
	Remaining  Quantity
}

// CostPerShare derives the positive per-share cost from the lot's signed amount.
func (l *Lot) CostPerShare() Money {
	if l.Quantity.IsZero() {
		return PLN(0)
	}
	return l.AmountPLN.Neg().Div(l.Quantity)
}

// Allocation is the result of matching part or all of one sell against one
// buy lot. Allocations are append-only and never revised.
type Allocation struct {
	Investment string
	Quantity   Quantity
	Proceeds   Money
	Cost       Money
}

// MatchResult is the outcome of a lot-matching pass: totals in the reporting
// currency for the target fiscal year, the individual allocations, and the
// final lot state (for conservation checks).
type MatchResult struct {
	Proceeds    Money
	Costs       Money
	Gain        Money
	Allocations []Allocation
	Lots        []*Lot
}

func newMatchResult() MatchResult {
	return MatchResult{Proceeds: PLN(0), Costs: PLN(0), Gain: PLN(0)}
}

// total recomputes the totals from the allocations.
func (r *MatchResult) total() {
	for _, a := range r.Allocations {
		r.Proceeds = r.Proceeds.Add(a.Proceeds)
		r.Costs = r.Costs.Add(a.Cost)
	}
	r.Gain = r.Proceeds.Sub(r.Costs).RoundUnits()
}

// sortBySettlement orders records by settlement date ascending, preserving
// the original input order for equal dates. Matching depends on this being
// stable so results are reproducible run to run.
func sortBySettlement(records []SettlementRecord) []SettlementRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b SettlementRecord) int {
		return a.SettlementDate.Compare(b.SettlementDate)
	})
	return sorted
}

// matchable reports whether a record carries everything a matching pass
// needs. Records that failed valuation were already reported there.
func matchable(rec SettlementRecord) bool {
	return rec.HasRate && rec.HasAmount && rec.HasShares && !rec.Shares.IsZero()
}

// openLot returns the oldest lot with remaining shares for the given
// investment name. Sales with no investment name draw from all lots; lots
// never serve a different investment than their own.
func openLot(lots []*Lot, investment string) *Lot {
	for _, lot := range lots {
		if !lot.Remaining.IsPositive() {
			continue
		}
		if investment != "" && lot.Investment != "" && lot.Investment != investment {
			continue
		}
		return lot
	}
	return nil
}

func availableQuantity(lots []*Lot, investment string) Quantity {
	total := Q(0)
	for _, lot := range lots {
		if investment != "" && lot.Investment != "" && lot.Investment != investment {
			continue
		}
		if lot.Remaining.IsPositive() {
			total = total.Add(lot.Remaining)
		}
	}
	return total
}

// MatchFIFO matches sells against buy lots in first-in-first-out order.
//
// Buys become lots ordered by settlement date; each sell consumes the oldest
// open lot(s) of its security until its quantity is exhausted. When year is
// non-zero only sells settling in that year are matched, while every buy
// stays eligible so cross-year carry-forward works. A sell exceeding the
// available lot quantity is an Oversell: it is reported, matching stops for
// that sell, and the excess stays unmatched.
func MatchFIFO(records []SettlementRecord, year int, diags *Diagnostics) MatchResult {
	result := newMatchResult()

	var sells []SettlementRecord
	for _, rec := range sortBySettlement(records) {
		switch rec.Category {
		case Buy:
			if !matchable(rec) {
				continue
			}
			result.Lots = append(result.Lots, &Lot{
				Investment: rec.Investment,
				Settlement: rec.SettlementDate,
				Quantity:   rec.Shares,
				AmountPLN:  rec.AmountPLN,
				Remaining:  rec.Shares,
			})
		case Sell:
			if year != 0 && rec.SettlementDate.Year() != year {
				continue
			}
			if !matchable(rec) {
				continue
			}
			sells = append(sells, rec)
		}
	}

	for _, sale := range sells {
		quantity := sale.Shares.Abs()
		pricePerShare := sale.AmountPLN.Div(quantity)

		if available := availableQuantity(result.Lots, sale.Investment); quantity.GreaterThan(available) {
			diags.Reportf(Oversell, "selling %s shares on %s but only %s remain in buy lots",
				quantity, sale.SettlementDate, available)
		}
		for quantity.IsPositive() {
			lot := openLot(result.Lots, sale.Investment)
			if lot == nil {
				diags.Reportf(Oversell, "no remaining buy lots for sale on %s; unmatched quantity %s",
					sale.SettlementDate, quantity)
				break
			}
			matched := quantity.Min(lot.Remaining)
			result.Allocations = append(result.Allocations, Allocation{
				Investment: sale.Investment,
				Quantity:   matched,
				Proceeds:   pricePerShare.Mul(matched).RoundUnits(),
				Cost:       lot.CostPerShare().Mul(matched).RoundUnits(),
			})
			lot.Remaining = lot.Remaining.Sub(matched)
			quantity = quantity.Sub(matched)
		}
	}

	result.total()
	return result
}
