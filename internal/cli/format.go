package cli

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders d in the conventions of the ISO currency code, e.g.
// R$1.234,56 for BRL.
func FormatMoney(d decimal.Decimal, currency string) string {
	cur := *money.New(0, strings.ToUpper(currency)).Currency()
	minor := d.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatQuantity always shows 8 decimals, the precision of coin amounts.
func FormatQuantity(d decimal.Decimal) string {
	return d.StringFixed(8)
}

func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}
