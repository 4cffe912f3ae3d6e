package pit38

import "testing"

func testYearConfig() YearConfig {
	return YearConfig{
		Year:       2024,
		TaxRate:    rate("0.19"),
		FormLayout: "PIT-38(17)",
		Regime:     testRegime,
	}
}

func TestComputeFieldsCapitalGains(t *testing.T) {
	totals := Totals{
		Proceeds:              PLN(1950),
		Costs:                 PLN(1600),
		Gain:                  PLN(350),
		ForeignTaxCapitalGain: PLN(0),
	}
	totals.SectionG.TotalIncome = PLN(0)
	totals.SectionG.ForeignTax = PLN(0)

	f := ComputeFields(testYearConfig(), totals)
	if !f.Poz22.Equal(rate("1950")) || !f.Poz23.Equal(rate("1600")) || !f.Poz26.Equal(rate("350")) {
		t.Errorf("Poz22/23/26 = %s/%s/%s", f.Poz22, f.Poz23, f.Poz26)
	}
	if !f.Poz29.Equal(rate("350")) {
		t.Errorf("Poz29 = %s, want 350", f.Poz29)
	}
	if !f.Poz31.Equal(rate("66.50")) { // 350 * 0.19
		t.Errorf("Poz31 = %s, want 66.50", f.Poz31)
	}
	if !f.Poz33.Equal(rate("67")) { // 66.50 rounds up to a whole złoty
		t.Errorf("Poz33 = %s, want 67", f.Poz33)
	}
	if !f.ZGPoz29.Equal(rate("350")) || !f.ZGPoz30.Equal(rate("0")) {
		t.Errorf("ZG Poz29/30 = %s/%s", f.ZGPoz29, f.ZGPoz30)
	}
}

func TestComputeFieldsTaxBaseRounding(t *testing.T) {
	tests := []struct {
		gain string
		want string // Poz29
	}{
		{"400.49", "400"}, // below a half grosz of the złoty: drops
		{"400.50", "401"}, // half and above: rounds up
		{"-120.00", "0"},  // a loss never produces a base
	}
	for _, tt := range tests {
		totals := Totals{
			Proceeds: PLN(rate(tt.gain)),
			Costs:    PLN(0),
			Gain:     PLN(rate(tt.gain)),
		}
		f := ComputeFields(testYearConfig(), totals)
		if !f.Poz29.Equal(rate(tt.want)) {
			t.Errorf("gain %s: Poz29 = %s, want %s", tt.gain, f.Poz29, tt.want)
		}
	}
}

func TestComputeFieldsForeignCreditCap(t *testing.T) {
	totals := Totals{
		Proceeds:              PLN(1000),
		Costs:                 PLN(600),
		Gain:                  PLN(400),
		ForeignTaxCapitalGain: PLN(100), // more than the domestic tax of 76
	}
	f := ComputeFields(testYearConfig(), totals)
	if !f.Poz31.Equal(rate("76")) {
		t.Errorf("Poz31 = %s, want 76", f.Poz31)
	}
	if !f.Poz32.Equal(rate("76")) {
		t.Errorf("Poz32 = %s, want 76 (capped at Poz31)", f.Poz32)
	}
	if !f.Poz33.Equal(rate("0")) {
		t.Errorf("Poz33 = %s, want 0", f.Poz33)
	}
	if !f.ZGPoz30.Equal(rate("76")) {
		t.Errorf("ZGPoz30 = %s, want 76", f.ZGPoz30)
	}
}

func TestComputeFieldsSectionGCeiling(t *testing.T) {
	var totals Totals
	totals.SectionG.TotalIncome = PLN(rate("100.06")) // * 0.19 = 19.0114
	totals.SectionG.ForeignTax = PLN(rate("10.00"))

	f := ComputeFields(testYearConfig(), totals)
	// the flat-rate tax rounds UP to the grosz, never half-up
	if !f.Poz45.Equal(rate("19.02")) {
		t.Errorf("Poz45 = %s, want 19.02", f.Poz45)
	}
	if !f.Poz46.Equal(rate("10")) {
		t.Errorf("Poz46 = %s, want 10", f.Poz46)
	}
	if !f.Poz47.Equal(rate("9")) { // 9.02 rounds to a whole złoty
		t.Errorf("Poz47 = %s, want 9", f.Poz47)
	}
}

func TestComputeFieldsSectionGCreditCap(t *testing.T) {
	var totals Totals
	totals.SectionG.TotalIncome = PLN(100)           // tax 19.00
	totals.SectionG.ForeignTax = PLN(rate("150.00")) // cannot exceed the tax

	f := ComputeFields(testYearConfig(), totals)
	if !f.Poz46.Equal(rate("19")) {
		t.Errorf("Poz46 = %s, want 19", f.Poz46)
	}
	if !f.Poz47.Equal(rate("0")) {
		t.Errorf("Poz47 = %s, want 0", f.Poz47)
	}
}

func TestComputeFieldsNegativeGainClampsZG(t *testing.T) {
	totals := Totals{
		Proceeds: PLN(100),
		Costs:    PLN(300),
		Gain:     PLN(-200),
	}
	f := ComputeFields(testYearConfig(), totals)
	if !f.ZGPoz29.Equal(rate("0")) {
		t.Errorf("ZGPoz29 = %s, want 0 (no negative foreign income)", f.ZGPoz29)
	}
	if !f.Poz26.Equal(rate("-200")) {
		t.Errorf("Poz26 = %s, want -200 (the loss itself is reported)", f.Poz26)
	}
}
