// Package cmd implements the CLI application that turns brokerage exports
// into a filled-in declaration.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"pit38"
	"pit38/nbp"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&computeCmd{}, "declaration")
	c.Register(&transactionsCmd{}, "declaration")

	c.Register(&ratesCmd{}, "exchange rates")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

// A .env next to the data is the easiest place for P38_* settings; it must
// load before the flag defaults below read the environment.
var _ = godotenv.Load()

var verbose = flag.Bool("v", false, "Enable debug logging")
var ratesCacheFile = flag.String("rates-cache", defaultCachePath(), "Path to the local exchange-rate cache database")
var archiveBase = flag.String("archive-base", envOr("P38_ARCHIVE_BASE", nbp.DefaultArchiveBase), "Base URL of the NBP yearly archives")

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultCachePath() string {
	if v := os.Getenv("P38_RATES_CACHE"); v != "" {
		return v
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "rates.db"
	}
	return filepath.Join(dir, "p38", "rates.db")
}

// Logger returns the application logger honoring the -v flag.
func Logger() *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// RateSource builds the rate source used by all commands: the NBP client
// backed by the local cache. The returned closer releases the cache.
func RateSource(logger *logrus.Logger) (*nbp.Client, func()) {
	client := nbp.NewClient()
	client.ArchiveBase = *archiveBase
	client.Logger = logger

	cache, err := nbp.OpenCache(*ratesCacheFile)
	if err != nil {
		logger.Warnf("rate cache unavailable (continuing without): %v", err)
		return client, func() {}
	}
	client.Cache = cache
	return client, func() { cache.Close() }
}

// OpenSources opens the given files as named raw sources. The returned
// closer closes every file that was opened.
func OpenSources(paths []string) ([]pit38.RawSource, func(), error) {
	var sources []pit38.RawSource
	var files []*os.File
	closer := func() {
		for _, f := range files {
			f.Close()
		}
	}
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closer()
			return nil, nil, err
		}
		files = append(files, f)
		sources = append(sources, pit38.RawSource{Name: filepath.Base(path), Reader: f})
	}
	return sources, closer, nil
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering is not possible.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
