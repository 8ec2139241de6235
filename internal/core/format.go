package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatCurrency renders an amount in euros the way es-ES locales do:
// comma decimals, dot grouping from five integer digits up, trailing symbol.
//
//	FormatCurrency(12.5)    -> "12,50 €"
//	FormatCurrency(1234.5)  -> "1234,50 €"
//	FormatCurrency(12345.5) -> "12.345,50 €"
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	if len(intPart) > 4 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	out := intPart + "," + frac + " €"
	if amount.IsNegative() {
		return "-" + out
	}
	return out
}

// CalculatePercentage returns current/total*100, or zero when total is zero.
func CalculatePercentage(current, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return current.Div(total).Mul(hundred)
}

// FormatPercentage rounds to a whole percent and caps the display at 100%.
func FormatPercentage(pct decimal.Decimal) string {
	r := pct.Round(0)
	if r.GreaterThan(hundred) {
		r = hundred
	}
	return r.String() + "%"
}
