package pit38

import "github.com/shopspring/decimal"

// Totals are the aggregated inputs of the field computation, all in the
// reporting currency.
type Totals struct {
	Proceeds              Money
	Costs                 Money
	Gain                  Money
	SectionG              SectionG
	ForeignTaxCapitalGain Money
}

// Fields holds the computed declaration values. It is a pure function of
// Totals and immutable once computed.
//
// Section C/D covers capital gains from security sales; Section G covers
// flat-rate foreign income (dividends and fund distributions); the ZG
// attachment mirrors the capital gain and its foreign credit for the
// cross-border income statement.
type Fields struct {
	Year       int
	FormLayout string

	// Section C/D
	Poz22 decimal.Decimal // proceeds
	Poz23 decimal.Decimal // costs
	Poz26 decimal.Decimal // income (proceeds - costs)
	Poz29 decimal.Decimal // tax base, whole złoty
	Poz30 decimal.Decimal // tax rate
	Poz31 decimal.Decimal // tax on the base
	Poz32 decimal.Decimal // foreign tax credit, capped at Poz31
	Poz33 decimal.Decimal // final liability, whole złoty

	// Section G
	Poz45 decimal.Decimal // tax on Section G income, grosz ceiling
	Poz46 decimal.Decimal // foreign withholding credit, capped at Poz45
	Poz47 decimal.Decimal // remaining liability, whole złoty

	// ZG attachment
	ZGPoz29 decimal.Decimal // foreign capital gain
	ZGPoz30 decimal.Decimal // foreign tax on that gain

	// Section G itemization carried for the report
	SectionGTotalIncome       decimal.Decimal
	SectionGEquityDividends   decimal.Decimal
	SectionGFundDistributions decimal.Decimal
}

var (
	hundred = decimal.NewFromInt(100)
)

// roundTaxBase rounds to full currency units per Ordynacja art. 63 §1:
// fractional parts below 0.50 are dropped, 0.50 and above round up. A
// negative input clamps to zero first; a loss never produces a negative base.
func roundTaxBase(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v.Round(0)
}

// roundUpToSubUnit rounds up (ceiling) to hundredths per art. 63 §1a. This
// is deliberately distinct from the default half-up rounding.
func roundUpToSubUnit(v decimal.Decimal) decimal.Decimal {
	return v.Mul(hundred).Ceil().Div(hundred)
}

// round2 rounds half-up to hundredths.
func round2(v decimal.Decimal) decimal.Decimal { return v.Round(2) }

// capCredit caps a foreign tax credit at the domestic tax it offsets,
// clamping negatives to zero: the credit can never make net tax negative.
func capCredit(credit, tax decimal.Decimal) decimal.Decimal {
	if credit.IsNegative() {
		credit = decimal.Zero
	}
	if credit.GreaterThan(tax) {
		return tax
	}
	return credit
}

// ComputeFields derives the declaration fields from the aggregated totals
// under the given year's statutory parameters.
func ComputeFields(cfg YearConfig, totals Totals) Fields {
	rate := cfg.TaxRate

	// The ZG attachment reports foreign income; a net loss reports as zero.
	zgIncome := totals.Gain.Decimal()
	if zgIncome.IsNegative() {
		zgIncome = decimal.Zero
	}

	// Section C/D: capital gains.
	poz22 := round2(totals.Proceeds.Decimal())
	poz23 := round2(totals.Costs.Decimal())
	poz26 := round2(poz22.Sub(poz23))
	poz29 := roundTaxBase(poz26)
	poz31 := round2(poz29.Mul(rate))
	poz32 := round2(capCredit(totals.ForeignTaxCapitalGain.Decimal(), poz31))
	poz33 := roundTaxBase(poz31.Sub(poz32))

	// Section G: flat-rate foreign income.
	poz45 := roundUpToSubUnit(totals.SectionG.TotalIncome.Decimal().Mul(rate))
	poz46 := round2(capCredit(totals.SectionG.ForeignTax.Decimal(), poz45))
	poz47 := roundTaxBase(poz45.Sub(poz46))

	return Fields{
		Year:       cfg.Year,
		FormLayout: cfg.FormLayout,
		Poz22:      poz22,
		Poz23:      poz23,
		Poz26:      poz26,
		Poz29:      poz29,
		Poz30:      rate,
		Poz31:      poz31,
		Poz32:      poz32,
		Poz33:      poz33,
		Poz45:      poz45,
		Poz46:      poz46,
		Poz47:      poz47,
		ZGPoz29:    round2(zgIncome),
		ZGPoz30:    poz32,

		SectionGTotalIncome:       round2(totals.SectionG.TotalIncome.Decimal()),
		SectionGEquityDividends:   round2(totals.SectionG.EquityDividends.Decimal()),
		SectionGFundDistributions: round2(totals.SectionG.FundDistributions.Decimal()),
	}
}
