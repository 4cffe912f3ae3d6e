package pit38

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// RatePoint is one published exchange rate: one native-currency unit
// expressed in reporting-currency terms on a given date.
type RatePoint struct {
	Date Date
	Rate decimal.Decimal
}

// RateTable stores a chronological, deduplicated series of exchange rates
// and answers backward as-of lookups: the rate in force on a date is the one
// published at the greatest available date on or before it.
type RateTable struct {
	days  []Date
	rates []decimal.Decimal
}

// Len returns the number of rate points in the table.
func (t *RateTable) Len() int { return len(t.days) }

// search locates day in the sorted table.
func (t *RateTable) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(t.days, day, Date.Compare)
}

// Append adds one rate point. Duplicate dates collapse into one entry; a
// duplicate carrying a different value is reported as a RateDisagreement
// (the first value wins).
func (t *RateTable) Append(on Date, rate decimal.Decimal, diags *Diagnostics) {
	i, found := t.search(on)
	if found {
		if !t.rates[i].Equal(rate) && diags != nil {
			diags.Reportf(RateDisagreement, "conflicting rates for %s: %s (kept) vs %s", on, t.rates[i], rate)
		}
		return
	}
	t.days = slices.Insert(t.days, i, on)
	t.rates = slices.Insert(t.rates, i, rate)
}

// Merge ingests a whole series into the table.
func (t *RateTable) Merge(points []RatePoint, diags *Diagnostics) {
	for _, p := range points {
		t.Append(p.Date, p.Rate, diags)
	}
}

// Lookup returns the rate at the greatest available date on or before day.
// The series is expected to be gapless across weekends and holidays exactly
// because this lookup backfills; it never returns a future rate.
func (t *RateTable) Lookup(day Date) (decimal.Decimal, error) {
	i, found := t.search(day)
	if found {
		return t.rates[i], nil
	}
	// i is the insertion index; the entry before it is the last one
	// published before day.
	if i == 0 {
		return decimal.Decimal{}, fmt.Errorf("lookup %s: %w", day, ErrMissingRate)
	}
	return t.rates[i-1], nil
}

// Points returns the series in chronological order.
func (t *RateTable) Points() []RatePoint {
	points := make([]RatePoint, len(t.days))
	for i, d := range t.days {
		points[i] = RatePoint{Date: d, Rate: t.rates[i]}
	}
	return points
}

// First returns the earliest date in the table, or the zero date when empty.
func (t *RateTable) First() Date {
	if len(t.days) == 0 {
		return Date{}
	}
	return t.days[0]
}

// Last returns the latest date in the table, or the zero date when empty.
func (t *RateTable) Last() Date {
	if len(t.days) == 0 {
		return Date{}
	}
	return t.days[len(t.days)-1]
}
