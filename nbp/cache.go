package nbp

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"pit38"
)

// Cache is a local SQLite store of fetched archive years. Rates are stored
// as decimal strings so nothing is lost to binary floating point.
type Cache struct {
	db *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS rates (
	year INTEGER NOT NULL,
	day  TEXT    NOT NULL,
	rate TEXT    NOT NULL,
	PRIMARY KEY (year, day)
);`

// OpenCache opens (creating if needed) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("opening rate cache: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing rate cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error { return c.db.Close() }

// Get returns the cached series of a year, and whether the year is cached.
func (c *Cache) Get(year int) ([]pit38.RatePoint, bool, error) {
	rows, err := c.db.Query(`SELECT day, rate FROM rates WHERE year = ? ORDER BY day`, year)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var points []pit38.RatePoint
	for rows.Next() {
		var day, rate string
		if err := rows.Scan(&day, &rate); err != nil {
			return nil, false, err
		}
		d, err := pit38.ParseDate(day)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt cache entry %q: %w", day, err)
		}
		r, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, false, fmt.Errorf("corrupt cache entry %q: %w", rate, err)
		}
		points = append(points, pit38.RatePoint{Date: d, Rate: r})
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return points, len(points) > 0, nil
}

// Put stores a year's series, replacing any previous entries for that year.
func (c *Cache) Put(year int, points []pit38.RatePoint) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM rates WHERE year = ?`, year); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO rates (year, day, rate) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range points {
		if _, err := stmt.Exec(year, p.Date.String(), p.Rate.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}
