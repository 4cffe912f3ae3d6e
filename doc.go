// Package pit38 turns a brokerage's raw transaction export into the field
// values of a Polish PIT-38 capital-gains declaration.
//
// The core functionalities include:
//   - Calendar Engine: business-day arithmetic over the US settlement
//     calendar and the Polish business calendar.
//   - Reference-Rate Table: a sorted USD/PLN rate series with backward
//     as-of lookup, fed from NBP archives.
//   - Transaction Normalizer: parsing and classification of raw export
//     rows, with duplicate and consistency checks.
//   - Settlement & Valuation: legal settlement dates (T+2 before the
//     2024-05-28 regime switch, T+1 after), rate-lookup dates one Polish
//     business day earlier, and PLN valuation of every row.
//   - Lot Matching: FIFO and override-driven matching of sales against
//     buy lots, per security, producing proceeds, costs and gains in PLN.
//   - Tax-Field Computation: Section C/D, Section G and PIT-ZG field
//     values under the statutory rounding rules of Ordynacja art. 63.
//
// All monetary and share arithmetic uses exact decimals; row-level data
// problems are collected in a Diagnostics record that accompanies every
// computed result. This package is the foundational logic for the `p38`
// command-line tool.
package pit38
