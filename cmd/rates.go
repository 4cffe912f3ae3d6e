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
)

// ratesCmd holds the flags for the 'rates' subcommand.
type ratesCmd struct {
	year  int
	start string
	end   string
}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "fetch and display USD/PLN reference rates" }
func (*ratesCmd) Usage() string {
	return `p38 rates [-year <year>] | [-s <date> -d <date>]

  Fetches the USD/PLN table-A reference rates, either a whole archive year
  or an ad-hoc date range, and prints them. Fetched archive years are kept
  in the local cache.
`
}

func (c *ratesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", time.Now().Year(), "Archive year to fetch")
	f.StringVar(&c.start, "s", "", "Start date of an ad-hoc range (YYYY-MM-DD)")
	f.StringVar(&c.end, "d", "", "End date of an ad-hoc range (YYYY-MM-DD)")
}

func (c *ratesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := Logger()
	diags := pit38.NewDiagnostics(logger)
	client, closeRates := RateSource(logger)
	defer closeRates()

	var table *pit38.RateTable
	if c.start != "" || c.end != "" {
		from, err := pit38.ParseDate(c.start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
		to, err := pit38.ParseDate(c.end)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			return subcommands.ExitUsageError
		}
		points, err := client.FetchRange(from, to)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		table = new(pit38.RateTable)
		table.Merge(points, diags)
	} else {
		var err error
		table, err = client.FetchYears([]int{c.year}, diags)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	var b strings.Builder
	fmt.Fprint(&b, "# USD/PLN reference rates\n\n")
	fmt.Fprintln(&b, "| Date | Rate |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, p := range table.Points() {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Date, p.Rate)
	}
	fmt.Fprintf(&b, "\n%d quotations.\n", table.Len())
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
