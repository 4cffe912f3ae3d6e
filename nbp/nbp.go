// Package nbp retrieves USD/PLN reference rates from the National Bank of
// Poland: the yearly CSV archives for historical data and the JSON API for
// ad-hoc ranges. Fetched years are cached locally so closed historical
// years are downloaded once.
package nbp

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"pit38"
)

// DefaultArchiveBase is the URL prefix of the NBP table-A yearly archives.
const DefaultArchiveBase = "https://static.nbp.pl/dane/kursy/Archiwum"

// DefaultAPIBase is the URL prefix of the NBP web API.
const DefaultAPIBase = "https://api.nbp.pl/api"

// archive column names. The files are semicolon-separated and cp1250-encoded.
const (
	archiveDateColumn = "data"
	archiveRateColumn = "1USD"
)

var archiveDatePattern = regexp.MustCompile(`^\d{8}$`)

// Client fetches NBP rate series.
type Client struct {
	HTTP        *http.Client
	ArchiveBase string
	APIBase     string
	Cache       *Cache // optional; closed years are served from it
	Logger      *logrus.Logger
}

// NewClient returns a client with the default endpoints.
func NewClient() *Client {
	return &Client{
		HTTP:        http.DefaultClient,
		ArchiveBase: DefaultArchiveBase,
		APIBase:     DefaultAPIBase,
		Logger:      logrus.StandardLogger(),
	}
}

// ArchiveURL returns the archive URL of one year's table-A series.
func (c *Client) ArchiveURL(year int) string {
	return fmt.Sprintf("%s/archiwum_tab_a_%d.csv", c.ArchiveBase, year)
}

// YearsToFetch expands the years present in the transaction data to the
// archive years needed: one extra year before the earliest, because
// settlements near January 1st look up a rate from the previous year.
func YearsToFetch(dataYears []int) []int {
	if len(dataYears) == 0 {
		return nil
	}
	minY, maxY := dataYears[0], dataYears[0]
	for _, y := range dataYears[1:] {
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	var years []int
	for y := minY - 1; y <= maxY; y++ {
		years = append(years, y)
	}
	return years
}

// FetchYears downloads (or serves from cache) the archives of the given
// years and merges them into one rate table. The per-year fetches run
// concurrently and are joined before the table is assembled, so a partially
// fetched series can never leak into a lookup.
func (c *Client) FetchYears(years []int, diags *pit38.Diagnostics) (*pit38.RateTable, error) {
	type result struct {
		year   int
		points []pit38.RatePoint
		err    error
	}
	results := make([]result, len(years))
	var wg sync.WaitGroup
	for i, year := range years {
		wg.Add(1)
		go func(i, year int) {
			defer wg.Done()
			points, err := c.fetchYear(year)
			results[i] = result{year: year, points: points, err: err}
		}(i, year)
	}
	wg.Wait() // barrier: no lookup happens before every series landed

	table := new(pit38.RateTable)
	var errs error
	for _, r := range results {
		if r.err != nil {
			errs = errors.Join(errs, fmt.Errorf("rates for %d: %w", r.year, r.err))
			continue
		}
		table.Merge(r.points, diags)
	}
	if errs != nil {
		return nil, errs
	}
	c.Logger.Infof("loaded %d exchange-rate entries", table.Len())
	return table, nil
}

// Rates fetches the archives covering the given data years. It implements
// the calculation pipeline's rate source.
func (c *Client) Rates(dataYears []int, diags *pit38.Diagnostics) (*pit38.RateTable, error) {
	return c.FetchYears(YearsToFetch(dataYears), diags)
}

// fetchYear serves one year from the cache when possible, otherwise
// downloads the archive. Only closed years are cached: the current year's
// archive still grows.
func (c *Client) fetchYear(year int) ([]pit38.RatePoint, error) {
	closed := year < time.Now().Year()
	if c.Cache != nil && closed {
		if points, ok, err := c.Cache.Get(year); err != nil {
			c.Logger.Warnf("rate cache read failed (ignored): %v", err)
		} else if ok {
			return points, nil
		}
	}
	points, err := c.fetchArchive(year)
	if err != nil {
		return nil, err
	}
	if c.Cache != nil && closed {
		if err := c.Cache.Put(year, points); err != nil {
			c.Logger.Warnf("rate cache write failed (ignored): %v", err)
		}
	}
	return points, nil
}

func (c *Client) fetchArchive(year int) ([]pit38.RatePoint, error) {
	addr := c.ArchiveURL(year)
	c.Logger.Infof("downloading %s", addr)
	resp, err := c.HTTP.Get(addr)
	if err != nil {
		return nil, fmt.Errorf("downloading %q: %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %q: received status %s", addr, resp.Status)
	}
	return ParseArchive(resp.Body)
}

// ParseArchive parses one yearly archive: cp1250-encoded, semicolon
// separated, decimal-comma rates. Only rows whose date cell is an 8-digit
// date are data rows; the header and the trailing annotations are not.
func ParseArchive(r io.Reader) ([]pit38.RatePoint, error) {
	decoded := charmap.Windows1250.NewDecoder().Reader(r)
	cr := csv.NewReader(decoded)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing archive: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("parsing archive: empty file")
	}
	dateCol, rateCol := -1, -1
	for i, h := range records[0] {
		switch strings.TrimSpace(h) {
		case archiveDateColumn:
			dateCol = i
		case archiveRateColumn:
			rateCol = i
		}
	}
	if dateCol < 0 || rateCol < 0 {
		return nil, fmt.Errorf("parsing archive: columns %q and %q not found", archiveDateColumn, archiveRateColumn)
	}

	var points []pit38.RatePoint
	for _, record := range records[1:] {
		if dateCol >= len(record) || rateCol >= len(record) {
			continue
		}
		dateCell := strings.TrimSpace(record[dateCol])
		if !archiveDatePattern.MatchString(dateCell) {
			continue // header repetition, averages, footers
		}
		day, err := pit38.ParseDate(dateCell)
		if err != nil {
			continue
		}
		rateCell := strings.ReplaceAll(strings.TrimSpace(record[rateCol]), ",", ".")
		rate, err := decimal.NewFromString(rateCell)
		if err != nil {
			continue
		}
		points = append(points, pit38.RatePoint{Date: day, Rate: rate})
	}
	return points, nil
}
