package pit38

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the classification of a transaction row, derived once from the
// row's free-text type and immutable afterwards.
type Category int

const (
	Other Category = iota
	Buy
	Sell
	Dividend
	Reinvestment
	Withholding
)

func (c Category) String() string {
	switch c {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Dividend:
		return "dividend"
	case Reinvestment:
		return "reinvestment"
	case Withholding:
		return "withholding"
	}
	return "other"
}

// Classify derives the category from the export's free-text transaction
// type. Anything after the first ';' is trailing metadata and ignored.
func Classify(typeText string) Category {
	t := strings.ToUpper(cleanTypeText(typeText))
	switch {
	case strings.Contains(t, "YOU BOUGHT"):
		return Buy
	case strings.Contains(t, "YOU SOLD"):
		return Sell
	case strings.Contains(t, "NON-RESIDENT TAX"):
		return Withholding
	case strings.Contains(t, "REINVESTMENT"):
		return Reinvestment
	case strings.Contains(t, "DIVIDEND RECEIVED"):
		return Dividend
	}
	return Other
}

// cleanTypeText strips the trailing metadata brokers append after a ';'.
func cleanTypeText(typeText string) string {
	if i := strings.IndexByte(typeText, ';'); i >= 0 {
		typeText = typeText[:i]
	}
	return strings.TrimSpace(typeText)
}

// Transaction is a single normalized ledger entry from a brokerage export.
type Transaction struct {
	TradeDate  Date   // zero when the export row had no parseable date
	TypeText   string // cleaned free-text type, e.g. "YOU BOUGHT ESPP#####"
	Category   Category
	Investment string // free-text investment name, optional
	Symbol     string // ticker symbol, optional
	Shares     Quantity
	HasShares  bool
	Amount     Money // signed native-currency amount
	HasAmount  bool
	Source     string // provenance: the input file the row came from
}

// MarketTrade reports whether the transaction settles like a market trade
// (T+1/T+2) rather than same-day. Equity-compensation purchase events carry
// an ESPP tag in their type text without always classifying as plain buys.
func (t Transaction) MarketTrade() bool {
	return t.Category == Buy || t.Category == Sell || t.ESPP()
}

// ESPP reports whether the row is an employee-stock-purchase-plan event.
func (t Transaction) ESPP() bool {
	return strings.Contains(strings.ToUpper(t.TypeText), "ESPP")
}

// RSU reports whether the row is a restricted-stock vest event.
func (t Transaction) RSU() bool {
	return strings.Contains(strings.ToUpper(t.TypeText), "RSU")
}

// DividendRelated reports whether the row's type text ties it to dividend
// income (used to split withholding between income categories).
func (t Transaction) DividendRelated() bool {
	u := strings.ToUpper(t.TypeText)
	return strings.Contains(u, "DIVIDEND") || strings.Contains(u, "REINVESTMENT")
}

// amountCleaner strips currency symbols, thousands separators and spaces.
var amountCleaner = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseAmount parses a native-currency amount, tolerating currency symbols,
// thousands separators and parenthesized-negative notation.
func ParseAmount(str string) (Money, bool) {
	s := strings.TrimSpace(str)
	if s == "" {
		return Money{}, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = amountCleaner.Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, false
	}
	if negative {
		d = d.Abs().Neg()
	}
	return M(d, NativeCurrency), true
}

// ParseShares parses a signed share count.
func ParseShares(str string) (Quantity, bool) {
	s := amountCleaner.Replace(strings.TrimSpace(str))
	if s == "" {
		return Quantity{}, false
	}
	q, err := ParseQuantity(s)
	if err != nil {
		return Quantity{}, false
	}
	return q, true
}
