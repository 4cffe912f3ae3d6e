package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"

	"pit38"
	"pit38/renderer"
)

// fileList is a repeatable flag collecting file paths.
type fileList []string

func (l *fileList) String() string { return strings.Join(*l, ",") }
func (l *fileList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// computeCmd holds the flags for the 'compute' subcommand.
type computeCmd struct {
	year       int
	method     string
	lots       fileList
	configFile string
}

func (*computeCmd) Name() string     { return "compute" }
func (*computeCmd) Synopsis() string { return "compute the declaration fields from brokerage exports" }
func (*computeCmd) Usage() string {
	return `p38 compute -year <year> [-method fifo|custom] [-lots <file>]... <export.csv>...

  Reads brokerage transaction-history exports, settles and values each trade,
  matches sell lots, and prints the computed declaration fields together with
  the data diagnostics collected along the way.
`
}

func (c *computeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", time.Now().Year()-1, "Tax year to compute")
	f.StringVar(&c.method, "method", "fifo", "Lot matching method (fifo, custom)")
	f.Var(&c.lots, "lots", "Lot identification file for the custom method. May be repeated.")
	f.StringVar(&c.configFile, "config", "", "Alternate year configuration file (YAML)")
}

func (c *computeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one transaction export file is required")
		return subcommands.ExitUsageError
	}
	method, err := pit38.ParseMatchMethod(c.method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	logger := Logger()

	var cfg *pit38.Config
	if c.configFile != "" {
		cfg, err = pit38.LoadConfig(c.configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration %q: %v\n", c.configFile, err)
			return subcommands.ExitFailure
		}
	}

	sources, closeSources, err := OpenSources(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening export: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSources()

	overrides, closeOverrides, err := OpenSources(c.lots)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening lot identification file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeOverrides()

	rates, closeRates := RateSource(logger)
	defer closeRates()

	report, err := pit38.Calculate(sources, rates, pit38.Options{
		Year:      c.year,
		Method:    method,
		Overrides: overrides,
		Config:    cfg,
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.FieldsMarkdown(report))
	return subcommands.ExitSuccess
}
