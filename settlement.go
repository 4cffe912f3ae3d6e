package pit38

import (
	"errors"

	"github.com/shopspring/decimal"
)

// SettlementRecord is a transaction with its derived settlement date,
// rate-lookup date, looked-up exchange rate and reporting-currency amount.
//
// Invariants: the settlement date is never earlier than the trade date, and
// the rate date is exactly one Polish business day before the settlement
// date.
type SettlementRecord struct {
	Transaction
	SettlementDate Date
	RateDate       Date
	Rate           decimal.Decimal
	AmountPLN      Money
	HasRate        bool
}

// Settle assigns settlement and rate-lookup dates to every transaction.
//
// Market trades settle trade date + K US business days where K depends on
// the regime in force on the trade date; dividends, withholding, fees and
// reinvestments settle same-day. Rows without a trade date cannot settle and
// are dropped with a counted warning.
func Settle(txs []Transaction, regime SettlementRegime, diags *Diagnostics) []SettlementRecord {
	records := make([]SettlementRecord, 0, len(txs))
	dropped := 0
	us, pl := USSettlement(), Poland()
	for _, tx := range txs {
		if tx.TradeDate.IsZero() {
			dropped++
			continue
		}
		rec := SettlementRecord{Transaction: tx}
		if tx.MarketTrade() {
			rec.SettlementDate = us.AddBusinessDays(tx.TradeDate, regime.Days(tx.TradeDate))
		} else {
			rec.SettlementDate = tx.TradeDate
		}
		rec.RateDate = pl.AddBusinessDays(rec.SettlementDate, -1)
		records = append(records, rec)
	}
	diags.ReportN(DroppedSettlement, dropped,
		"dropping %d transaction row(s) with no settlement date; verify date parsing and type classification", dropped)
	return records
}

// Value attaches the exchange rate in force on each record's rate date and
// converts the native amount to the reporting currency. A missing rate is
// reported per row; the record keeps HasRate=false and an indeterminate PLN
// amount rather than silently defaulting to zero.
func Value(records []SettlementRecord, rates *RateTable, diags *Diagnostics) {
	for i := range records {
		rec := &records[i]
		rate, err := rates.Lookup(rec.RateDate)
		if err != nil {
			if errors.Is(err, ErrMissingRate) {
				diags.Reportf(MissingRate, "no exchange rate on or before %s (settlement %s)", rec.RateDate, rec.SettlementDate)
				continue
			}
			diags.Reportf(MissingRate, "rate lookup for %s: %v", rec.RateDate, err)
			continue
		}
		rec.Rate = rate
		rec.HasRate = true
		if rec.HasAmount {
			rec.AmountPLN = rec.Amount.Convert(rate, ReportingCurrency)
		}
	}
}
