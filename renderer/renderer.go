// Package renderer turns computed declaration reports into markdown for
// terminal display.
package renderer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pit38"
)

// pln formats a decimal as a PLN amount with two decimals.
func pln(v decimal.Decimal) string { return v.StringFixed(2) + " PLN" }

// FieldsMarkdown renders the declaration field values and the run's
// diagnostics to a markdown string.
func FieldsMarkdown(report *pit38.Report) string {
	var b strings.Builder
	f := report.Fields

	fmt.Fprintf(&b, "# PIT-38 for year %d (%s, %s matching)\n\n", f.Year, f.FormLayout, report.Method)

	fmt.Fprint(&b, "## Część C/D — zbycie papierów wartościowych (art. 30b)\n\n")
	fmt.Fprintln(&b, "| Pole | Wartość |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Poz. 22 (Przychód) | %s |\n", pln(f.Poz22))
	fmt.Fprintf(&b, "| Poz. 23 (Koszty uzyskania) | %s |\n", pln(f.Poz23))
	fmt.Fprintf(&b, "| Poz. 26 (Dochód) | %s |\n", pln(f.Poz26))
	fmt.Fprintf(&b, "| Poz. 29 (Podstawa opodatkowania) | %s |\n", pln(f.Poz29))
	fmt.Fprintf(&b, "| Poz. 30 (Stawka) | %s%% |\n", f.Poz30.Mul(decimal.NewFromInt(100)).StringFixed(0))
	fmt.Fprintf(&b, "| Poz. 31 (Podatek) | %s |\n", pln(f.Poz31))
	fmt.Fprintf(&b, "| Poz. 32 (Podatek zapłacony za granicą) | %s |\n", pln(f.Poz32))
	fmt.Fprintf(&b, "| Poz. 33 (Podatek należny) | %s |\n", pln(f.Poz33))

	fmt.Fprint(&b, "\n## Część G — zryczałtowany podatek (art. 30a ust. 1 pkt 1-5)\n\n")
	fmt.Fprintln(&b, "| Pole | Wartość |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Przychód części G | %s |\n", pln(f.SectionGTotalIncome))
	fmt.Fprintf(&b, "| — dywidendy | %s |\n", pln(f.SectionGEquityDividends))
	fmt.Fprintf(&b, "| — dystrybucje funduszy | %s |\n", pln(f.SectionGFundDistributions))
	fmt.Fprintf(&b, "| Poz. 45 (Podatek 19%%) | %s |\n", pln(f.Poz45))
	fmt.Fprintf(&b, "| Poz. 46 (Podatek zapłacony za granicą) | %s |\n", pln(f.Poz46))
	fmt.Fprintf(&b, "| Poz. 47 (Do zapłaty) | %s |\n", pln(f.Poz47))

	fmt.Fprint(&b, "\n## PIT-ZG — dochody zagraniczne\n\n")
	fmt.Fprintln(&b, "| Pole | Wartość |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Poz. 29 (Dochód z art. 30b) | %s |\n", pln(f.ZGPoz29))
	fmt.Fprintf(&b, "| Poz. 30 (Podatek zapłacony za granicą) | %s |\n", pln(f.ZGPoz30))

	b.WriteString(DiagnosticsMarkdown(report.Diagnostics))
	return b.String()
}

// DiagnosticsMarkdown renders the collected condition counts. An empty
// collector renders a short all-clear line so the reader knows the checks
// ran.
func DiagnosticsMarkdown(diags *pit38.Diagnostics) string {
	var b strings.Builder
	fmt.Fprint(&b, "\n## Diagnostics\n\n")
	if diags.Empty() {
		fmt.Fprintln(&b, "No data problems detected.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Condition | Count |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, kind := range diags.Conditions() {
		fmt.Fprintf(&b, "| %s | %d |\n", kind, diags.Count(kind))
	}
	fmt.Fprintln(&b, "\nThe figures above are best-effort; review the conditions before filing.")
	return b.String()
}

// TransactionsMarkdown renders normalized settlement records as a table.
func TransactionsMarkdown(records []pit38.SettlementRecord) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Settled transactions\n\n")
	fmt.Fprintln(&b, "| Trade date | Settlement | Rate date | Category | Type | Shares | Amount | Rate | PLN |")
	fmt.Fprintln(&b, "|:---|:---|:---|:---|:---|---:|---:|---:|---:|")
	for _, rec := range records {
		shares, amount, rate, amountPLN := "-", "-", "-", "-"
		if rec.HasShares {
			shares = rec.Shares.String()
		}
		if rec.HasAmount {
			amount = rec.Amount.Decimal().StringFixed(2)
		}
		if rec.HasRate {
			rate = rec.Rate.String()
			if rec.HasAmount {
				amountPLN = rec.AmountPLN.Decimal().StringFixed(2)
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			rec.TradeDate, rec.SettlementDate, rec.RateDate, rec.Category, rec.TypeText,
			shares, amount, rate, amountPLN)
	}
	return b.String()
}
