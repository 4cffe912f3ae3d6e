package pit38

import (
	"errors"
	"strings"
	"testing"
)

const exportHeader = "Transaction date,Transaction type,Investment name,Symbol,Shares,Amount\n"

func sourcesOf(contents ...string) []RawSource {
	var sources []RawSource
	for i, c := range contents {
		sources = append(sources, RawSource{
			Name:   "export-" + string(rune('a'+i)) + ".csv",
			Reader: strings.NewReader(c),
		})
	}
	return sources
}

func TestLoadTransactions(t *testing.T) {
	data := exportHeader +
		"Jan-17-2024,YOU BOUGHT ESPP#####,ACME CORP,ACME,10,(1234.50)\n" +
		"Feb-20-2024,YOU SOLD,ACME CORP,ACME,-5,700.00\n" +
		"Feb-21-2024,DIVIDEND RECEIVED,ACME CORP,ACME,,12.34\n" +
		"Unless noted otherwise the settlement date is trade date plus two days,,,,,\n"
	diags := testDiagnostics()
	txs, err := LoadTransactions(sourcesOf(data), diags)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3 (footer dropped)", len(txs))
	}
	buy := txs[0]
	if buy.Category != Buy || !buy.ESPP() {
		t.Errorf("first row classified as %s", buy.Category)
	}
	if buy.TradeDate != MustParseDate("2024-01-17") {
		t.Errorf("trade date = %s", buy.TradeDate)
	}
	if !buy.HasAmount || !buy.Amount.Decimal().Equal(rate("-1234.50")) {
		t.Errorf("amount = %v", buy.Amount.Decimal())
	}
	if !buy.HasShares || !buy.Shares.Equal(Q(10)) {
		t.Errorf("shares = %v", buy.Shares)
	}
	if buy.Source != "export-a.csv" {
		t.Errorf("source = %q", buy.Source)
	}
	dividend := txs[2]
	if dividend.Category != Dividend || dividend.HasShares {
		t.Errorf("dividend row: category %s, HasShares %v", dividend.Category, dividend.HasShares)
	}
	if !diags.Empty() {
		t.Errorf("unexpected diagnostics: %d", diags.Total())
	}
}

func TestLoadTransactionsDuplicateAcrossSources(t *testing.T) {
	row := "Jan-17-2024,YOU SOLD,ACME CORP,ACME,-5,700.00\n"
	_, err := LoadTransactions(sourcesOf(exportHeader+row, exportHeader+row), testDiagnostics())
	if !errors.Is(err, ErrDuplicateAcrossSources) {
		t.Errorf("got %v, want ErrDuplicateAcrossSources", err)
	}
}

func TestLoadTransactionsRepeatedRowWithinSource(t *testing.T) {
	row := "Jan-17-2024,YOU SOLD,ACME CORP,ACME,-5,700.00\n"
	txs, err := LoadTransactions(sourcesOf(exportHeader+row+row), testDiagnostics())
	if err != nil {
		t.Fatal(err)
	}
	// two identical fills in one export are legitimate
	if len(txs) != 2 {
		t.Errorf("got %d transactions, want 2", len(txs))
	}
}

func TestLoadTransactionsMissingColumns(t *testing.T) {
	data := "Transaction date,Transaction type,Shares\n2024-01-17,YOU SOLD,-5\n"
	_, err := LoadTransactions(sourcesOf(data), testDiagnostics())
	if !errors.Is(err, ErrMissingColumns) {
		t.Errorf("got %v, want ErrMissingColumns", err)
	}
}

func TestLoadTransactionsBadDate(t *testing.T) {
	data := exportHeader +
		"not a date,YOU SOLD,ACME CORP,ACME,-5,700.00\n" +
		",,,,,\n" // fully blank row, silently skipped
	diags := testDiagnostics()
	txs, err := LoadTransactions(sourcesOf(data), diags)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if !txs[0].TradeDate.IsZero() {
		t.Errorf("trade date should be zero, got %s", txs[0].TradeDate)
	}
	if got := diags.Count(DataInconsistency); got != 1 {
		t.Errorf("DataInconsistency count = %d, want 1", got)
	}
}

func TestLoadTransactionsMissingMarketFields(t *testing.T) {
	data := exportHeader +
		"Jan-17-2024,YOU SOLD,ACME CORP,ACME,,\n"
	diags := testDiagnostics()
	if _, err := LoadTransactions(sourcesOf(data), diags); err != nil {
		t.Fatal(err)
	}
	// one row missing both shares and amount counts twice
	if got := diags.Count(DataInconsistency); got != 2 {
		t.Errorf("DataInconsistency count = %d, want 2", got)
	}
}
