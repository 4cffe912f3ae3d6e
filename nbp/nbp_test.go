package nbp

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"pit38"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDiagnostics() *pit38.Diagnostics { return pit38.NewDiagnostics(quietLogger()) }

const archiveSample = `data;1USD;1EUR
20240102;3,9432;4,3434
20240103;3,9909;4,3525
;;
Nr;1/A/NBP/2024;2/A/NBP/2024
srednia;3,9670;4,3479
`

func TestParseArchive(t *testing.T) {
	points, err := ParseArchive(strings.NewReader(archiveSample))
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 (footer rows skipped)", len(points))
	}
	if points[0].Date != pit38.MustParseDate("2024-01-02") {
		t.Errorf("first date = %s", points[0].Date)
	}
	if !points[0].Rate.Equal(decimal.RequireFromString("3.9432")) {
		t.Errorf("first rate = %s, want 3.9432 (decimal comma converted)", points[0].Rate)
	}
	if !points[1].Rate.Equal(decimal.RequireFromString("3.9909")) {
		t.Errorf("second rate = %s", points[1].Rate)
	}
}

func TestParseArchiveMissingColumns(t *testing.T) {
	if _, err := ParseArchive(strings.NewReader("data;1EUR\n20240102;4,3434\n")); err == nil {
		t.Error("archive without a 1USD column accepted")
	}
}

func TestYearsToFetch(t *testing.T) {
	tests := []struct {
		in   []int
		want []int
	}{
		{nil, nil},
		// one year back covers January settlements looking up December rates
		{[]int{2024}, []int{2023, 2024}},
		{[]int{2024, 2022}, []int{2021, 2022, 2023, 2024}},
	}
	for _, tt := range tests {
		if got := YearsToFetch(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("YearsToFetch(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestArchiveURL(t *testing.T) {
	c := NewClient()
	want := "https://static.nbp.pl/dane/kursy/Archiwum/archiwum_tab_a_2024.csv"
	if got := c.ArchiveURL(2024); got != want {
		t.Errorf("ArchiveURL(2024) = %q, want %q", got, want)
	}
}

func TestFetchYears(t *testing.T) {
	// each year serves one quotation dated to its January 2nd
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var year int
		if _, err := fmt.Sscanf(r.URL.Path, "/archiwum_tab_a_%d.csv", &year); err != nil {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, "data;1USD\n%d0102;3,9432\n", year)
	}))
	defer server.Close()

	client := NewClient()
	client.ArchiveBase = server.URL
	client.Logger = quietLogger()

	table, err := client.FetchYears([]int{2022, 2023, 2024}, testDiagnostics())
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 3 {
		t.Fatalf("table has %d entries, want 3", table.Len())
	}
	if table.First() != pit38.MustParseDate("2022-01-02") || table.Last() != pit38.MustParseDate("2024-01-02") {
		t.Errorf("range = %s..%s", table.First(), table.Last())
	}
}

func TestFetchYearsPropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client := NewClient()
	client.ArchiveBase = server.URL
	client.Logger = quietLogger()

	if _, err := client.FetchYears([]int{2024}, testDiagnostics()); err == nil {
		t.Error("missing archive did not fail the fetch")
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := OpenCache(t.TempDir() + "/rates.db")
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if _, ok, err := cache.Get(2023); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
	points := []pit38.RatePoint{
		{Date: pit38.MustParseDate("2023-01-02"), Rate: decimal.RequireFromString("4.3811")},
		{Date: pit38.MustParseDate("2023-01-03"), Rate: decimal.RequireFromString("4.4007")},
	}
	if err := cache.Put(2023, points); err != nil {
		t.Fatal(err)
	}
	got, ok, err := cache.Get(2023)
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[0].Date != points[0].Date || !got[1].Rate.Equal(points[1].Rate) {
		t.Errorf("round trip mismatch: %v", got)
	}

	// Put replaces the year wholesale
	if err := cache.Put(2023, points[:1]); err != nil {
		t.Fatal(err)
	}
	got, _, err = cache.Get(2023)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d entries after replace, want 1", len(got))
	}
}
