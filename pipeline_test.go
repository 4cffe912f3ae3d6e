package pit38

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestParseMatchMethod(t *testing.T) {
	for in, want := range map[string]MatchMethod{"fifo": FIFO, "custom": Overrides, "overrides": Overrides} {
		got, err := ParseMatchMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMatchMethod(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMatchMethod("lifo"); err == nil {
		t.Error("ParseMatchMethod accepted lifo")
	}
}

func TestYearsInData(t *testing.T) {
	records := []SettlementRecord{
		{SettlementDate: MustParseDate("2024-02-01")},
		{SettlementDate: MustParseDate("2023-06-01")},
		{SettlementDate: MustParseDate("2024-11-01")},
	}
	got := YearsInData(records)
	if len(got) != 2 || got[0] != 2023 || got[1] != 2024 {
		t.Errorf("YearsInData = %v, want [2023 2024]", got)
	}
}

// testRates covers every rate-lookup date of the vest scenario with a flat
// 4.00 rate.
func testRates() RateSource {
	table := new(RateTable)
	for _, day := range []string{"2023-05-16", "2024-06-10"} {
		table.Append(MustParseDate(day), rate("4.00"), nil)
	}
	return StaticRates{Table: table}
}

const vestExport = exportHeader +
	"May-15-2023,YOU BOUGHT RSU VEST,ACME CORP,ACME,30,0.00\n" +
	"Jun-10-2024,YOU SOLD,ACME CORP,ACME,-30,3000.00\n"

const vestOverrides = overrideHeader +
	"Jun-10-2024\tMay-15-2023\t30\tRS\t-\tACME\n"

// A vested position sold in full: the whole PLN proceeds are the gain, the
// cost is zero, and both matching methods agree.
func TestCalculateVestSoldInFull(t *testing.T) {
	for _, method := range []MatchMethod{FIFO, Overrides} {
		report, err := Calculate(sourcesOf(vestExport), testRates(), Options{
			Year:      2024,
			Method:    method,
			Overrides: overrideSources(vestOverrides),
			Logger:    quietLogger(),
		})
		if err != nil {
			t.Fatalf("%s: %v", method, err)
		}
		f := report.Fields
		// 3000 USD * 4.00
		if !f.Poz22.Equal(rate("12000")) {
			t.Errorf("%s: Poz22 = %s, want 12000", method, f.Poz22)
		}
		if !f.Poz23.Equal(rate("0")) {
			t.Errorf("%s: Poz23 = %s, want 0", method, f.Poz23)
		}
		if !f.Poz26.Equal(rate("12000")) || !f.Poz29.Equal(rate("12000")) {
			t.Errorf("%s: Poz26/29 = %s/%s", method, f.Poz26, f.Poz29)
		}
		if !f.Poz31.Equal(rate("2280")) || !f.Poz33.Equal(rate("2280")) {
			t.Errorf("%s: Poz31/33 = %s/%s", method, f.Poz31, f.Poz33)
		}
		if !f.ZGPoz29.Equal(rate("12000")) {
			t.Errorf("%s: ZGPoz29 = %s, want 12000", method, f.ZGPoz29)
		}
		if f.FormLayout != "PIT-38(17)" || f.Year != 2024 {
			t.Errorf("%s: layout %q year %d", method, f.FormLayout, f.Year)
		}
		if !report.Diagnostics.Empty() {
			t.Errorf("%s: unexpected diagnostics: %v", method, report.Diagnostics.Conditions())
		}
	}
}

func TestCalculateUnsupportedYear(t *testing.T) {
	_, err := Calculate(sourcesOf(vestExport), testRates(), Options{Year: 2019, Logger: quietLogger()})
	if err == nil {
		t.Fatal("expected an error for an unconfigured year")
	}
}

func TestCalculateOverridesRequireFiles(t *testing.T) {
	_, err := Calculate(sourcesOf(vestExport), testRates(), Options{
		Year:   2024,
		Method: Overrides,
		Logger: quietLogger(),
	})
	if err == nil || !strings.Contains(err.Error(), "lot identification") {
		t.Errorf("got %v, want a lot identification file error", err)
	}
}

func TestCalculateMissingRates(t *testing.T) {
	empty := StaticRates{Table: new(RateTable)}
	report, err := Calculate(sourcesOf(vestExport), empty, Options{
		Year:   2024,
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	// every record fails valuation; the run completes with counted problems
	if got := report.Diagnostics.Count(MissingRate); got != 2 {
		t.Errorf("MissingRate count = %d, want 2", got)
	}
	if !report.Fields.Poz22.Equal(rate("0")) {
		t.Errorf("Poz22 = %s, want 0", report.Fields.Poz22)
	}
}
