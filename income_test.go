package pit38

import "testing"

// incomeRecord builds a valued same-day settlement record.
func incomeRecord(category Category, typeText, investment, settled string, amountPLN float64) SettlementRecord {
	return SettlementRecord{
		Transaction: Transaction{
			Category:   category,
			TypeText:   typeText,
			Investment: investment,
			Amount:     M(amountPLN, NativeCurrency),
			HasAmount:  true,
		},
		SettlementDate: MustParseDate(settled),
		AmountPLN:      PLN(amountPLN),
		HasRate:        true,
	}
}

func TestComputeSectionG(t *testing.T) {
	records := []SettlementRecord{
		incomeRecord(Dividend, "DIVIDEND RECEIVED", "ACME CORP", "2024-03-15", 100.50),
		incomeRecord(Dividend, "DIVIDEND RECEIVED", "FIDELITY GOVERNMENT MONEY MARKET", "2024-03-15", 20),
		incomeRecord(Withholding, "NON-RESIDENT TAX DIVIDEND RECEIVED", "ACME CORP", "2024-03-15", -15.08),
		// reinvestments are not income-base rows
		incomeRecord(Reinvestment, "REINVESTMENT DIVIDEND RECEIVED", "ACME CORP", "2024-03-18", -100.50),
		// wrong year
		incomeRecord(Dividend, "DIVIDEND RECEIVED", "ACME CORP", "2023-03-15", 999),
		// withholding not tied to dividends belongs to the capital-gains credit
		incomeRecord(Withholding, "NON-RESIDENT TAX", "ACME CORP", "2024-03-20", -7),
	}

	g := ComputeSectionG(records, 2024, nil)
	if !g.EquityDividends.Decimal().Equal(rate("100.50")) {
		t.Errorf("equity dividends = %s, want 100.50", g.EquityDividends.Decimal())
	}
	if !g.FundDistributions.Decimal().Equal(rate("20")) {
		t.Errorf("fund distributions = %s, want 20", g.FundDistributions.Decimal())
	}
	if !g.TotalIncome.Decimal().Equal(rate("120.50")) {
		t.Errorf("total income = %s, want 120.50", g.TotalIncome.Decimal())
	}
	if !g.ForeignTax.Decimal().Equal(rate("15.08")) {
		t.Errorf("foreign tax = %s, want 15.08", g.ForeignTax.Decimal())
	}

	tax := ForeignTaxCapitalGains(records, 2024)
	if !tax.Decimal().Equal(rate("7")) {
		t.Errorf("capital-gains withholding = %s, want 7", tax.Decimal())
	}
}

func TestComputeSectionGClampsNegativeTax(t *testing.T) {
	records := []SettlementRecord{
		// a refund larger than the withholding would go negative; it clamps
		incomeRecord(Withholding, "NON-RESIDENT TAX DIVIDEND RECEIVED", "ACME CORP", "2024-03-15", 5),
	}
	g := ComputeSectionG(records, 2024, nil)
	if !g.ForeignTax.IsZero() {
		t.Errorf("foreign tax = %s, want 0", g.ForeignTax.Decimal())
	}
}

func TestKeywordClassifier(t *testing.T) {
	c := DefaultFundClassifier()
	funds := []string{
		"FIDELITY GOVERNMENT MONEY MARKET",
		"Vanguard Total Stock Market Index Fund",
		"FIDELITY CASH RESERVES",
	}
	for _, name := range funds {
		if !c.FundLike(name) {
			t.Errorf("%q should classify as fund-like", name)
		}
	}
	if c.FundLike("ACME CORP") {
		t.Error("ACME CORP should not classify as fund-like")
	}
}
