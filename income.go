package pit38

import "strings"

// FundClassifier decides whether an investment name designates a fund or
// cash-sweep position rather than an equity. The distinction only affects
// how Section G income is itemized; it is a heuristic, so it is pluggable
// rather than hard-coded.
type FundClassifier interface {
	FundLike(investment string) bool
}

// KeywordClassifier marks an investment as fund-like when its name contains
// any of the markers (case-insensitive). This is a known approximation, not
// a guaranteed-correct rule.
type KeywordClassifier []string

// DefaultFundClassifier matches the fund and money-market naming observed in
// brokerage exports.
func DefaultFundClassifier() KeywordClassifier {
	return KeywordClassifier{"FUND", "MMKT", "MONEY MARKET", "CASH RESERVES"}
}

func (c KeywordClassifier) FundLike(investment string) bool {
	name := strings.ToUpper(investment)
	for _, marker := range c {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// SectionG aggregates the flat-rate foreign-income components of a fiscal
// year: dividend-like income split by the classifier, and the foreign
// withholding tax attributable to it. All amounts are positive PLN.
type SectionG struct {
	TotalIncome       Money
	EquityDividends   Money
	FundDistributions Money
	ForeignTax        Money
}

// ComputeSectionG aggregates dividend income and its withholding for the
// target fiscal year (by settlement date; year 0 means all years).
// Reinvestment rows are not income-base rows.
func ComputeSectionG(records []SettlementRecord, year int, classifier FundClassifier) SectionG {
	if classifier == nil {
		classifier = DefaultFundClassifier()
	}
	equity, fund, foreignTax := PLN(0), PLN(0), PLN(0)
	for _, rec := range records {
		if !rec.HasRate || !rec.HasAmount {
			continue
		}
		if year != 0 && rec.SettlementDate.Year() != year {
			continue
		}
		switch rec.Category {
		case Dividend:
			if classifier.FundLike(rec.Investment) {
				fund = fund.Add(rec.AmountPLN)
			} else {
				equity = equity.Add(rec.AmountPLN)
			}
		case Withholding:
			if strings.Contains(strings.ToUpper(rec.TypeText), "DIVIDEND") {
				foreignTax = foreignTax.Add(rec.AmountPLN.Neg())
			}
		}
	}
	equity = equity.RoundUnits().Abs()
	fund = fund.RoundUnits().Abs()
	// tax withheld is non-negative; clamping also avoids a "-0.00" artifact
	if foreignTax.IsNegative() {
		foreignTax = PLN(0)
	}
	return SectionG{
		TotalIncome:       equity.Add(fund).RoundUnits(),
		EquityDividends:   equity,
		FundDistributions: fund,
		ForeignTax:        foreignTax.RoundUnits(),
	}
}

// ForeignTaxCapitalGains sums the foreign withholding attributable to
// capital gains: withholding rows not tied to dividends or reinvestments.
func ForeignTaxCapitalGains(records []SettlementRecord, year int) Money {
	tax := PLN(0)
	for _, rec := range records {
		if !rec.HasRate || !rec.HasAmount || rec.Category != Withholding {
			continue
		}
		if year != 0 && rec.SettlementDate.Year() != year {
			continue
		}
		if rec.DividendRelated() {
			continue
		}
		tax = tax.Add(rec.AmountPLN.Neg())
	}
	if tax.IsNegative() {
		tax = PLN(0)
	}
	return tax.RoundUnits()
}
