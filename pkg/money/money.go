// Package money renders report amounts as euros the way the printed report
// shows them, e.g. "1.234,56 €".
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// EUR is the only currency a trip sheet carries
const EUR = "EUR"

var euro = money.GetCurrency(EUR)

// Spanish grouping: dot for thousands, comma for decimals, symbol after.
var euroFormatter = money.NewFormatter(euro.Fraction, ",", ".", euro.Grapheme, "1 $")

// Cents rounds an amount half away from zero to euro cents
func Cents(amount decimal.Decimal) int64 {
	return amount.Shift(int32(euro.Fraction)).Round(0).IntPart()
}

// FromDecimal converts an exact amount to a go-money value in euros
func FromDecimal(amount decimal.Decimal) *money.Money {
	return money.New(Cents(amount), EUR)
}

// Display formats m with the Spanish euro layout. A nil value displays as zero.
func Display(m *money.Money) string {
	if m == nil {
		return euroFormatter.Format(0)
	}
	return euroFormatter.Format(m.Amount())
}

// FormatEUR renders a decimal amount as euros
func FormatEUR(amount decimal.Decimal) string {
	return Display(FromDecimal(amount))
}
