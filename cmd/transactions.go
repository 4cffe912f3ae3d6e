package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"pit38"
	"pit38/renderer"
)

// transactionsCmd holds the flags for the 'transactions' subcommand.
type transactionsCmd struct {
	year       int
	configFile string
}

func (*transactionsCmd) Name() string { return "transactions" }
func (*transactionsCmd) Synopsis() string {
	return "list the normalized, settled and valued transactions"
}
func (*transactionsCmd) Usage() string {
	return `p38 transactions [-year <year>] <export.csv>...

  Reads brokerage transaction-history exports and prints every transaction
  with its settlement date, rate-lookup date and PLN valuation. Useful to
  inspect the data before computing a declaration.
`
}

func (c *transactionsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", time.Now().Year()-1, "Tax year whose settlement rules to apply")
	f.StringVar(&c.configFile, "config", "", "Alternate year configuration file (YAML)")
}

func (c *transactionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one transaction export file is required")
		return subcommands.ExitUsageError
	}
	logger := Logger()
	diags := pit38.NewDiagnostics(logger)

	cfg := pit38.DefaultConfig()
	if c.configFile != "" {
		var err error
		cfg, err = pit38.LoadConfig(c.configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration %q: %v\n", c.configFile, err)
			return subcommands.ExitFailure
		}
	}
	yearCfg, err := cfg.ForYear(c.year)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	sources, closeSources, err := OpenSources(f.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening export: %v\n", err)
		return subcommands.ExitFailure
	}
	defer closeSources()

	txs, err := pit38.LoadTransactions(sources, diags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	records := pit38.Settle(txs, yearCfg.Regime, diags)

	rates, closeRates := RateSource(logger)
	defer closeRates()
	table, err := rates.Rates(pit38.YearsInData(records), diags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching rates: %v\n", err)
		return subcommands.ExitFailure
	}
	pit38.Value(records, table, diags)

	printMarkdown(renderer.TransactionsMarkdown(records) + renderer.DiagnosticsMarkdown(diags))
	return subcommands.ExitSuccess
}
