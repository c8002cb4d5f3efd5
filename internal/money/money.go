// Package money rounds and formats monetary amounts according to the
// currency's minor-unit convention (3 decimals for OMR/BHD/KWD, 2 for most).
package money

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/currency"
)

// MinorUnits returns the number of decimal digits for the currency's
// smallest unit. Unknown codes fall back to 2.
func MinorUnits(code string) int {
	cur, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(cur)
	return scale
}

// Round applies round-half-up at the currency's minor unit. Amounts are
// rounded before storage and before display, never only at render time.
func Round(amount float64, code string) float64 {
	factor := math.Pow10(MinorUnits(code))
	if amount < 0 {
		return -math.Floor(-amount*factor+0.5) / factor
	}
	return math.Floor(amount*factor+0.5) / factor
}

// Format renders the amount with the fixed decimal precision of the currency.
func Format(amount float64, code string) string {
	return strconv.FormatFloat(Round(amount, code), 'f', MinorUnits(code), 64)
}

// FormatWithCode renders e.g. "12.500 OMR".
func FormatWithCode(amount float64, code string) string {
	return Format(amount, code) + " " + code
}

// Tax computes the tax amount on a subtotal, rounded to the minor unit.
func Tax(subtotal, percent float64, code string) float64 {
	return Round(subtotal*percent/100, code)
}

// TaxLabel produces the display label, e.g. "Tax (5%)".
func TaxLabel(percent float64) string {
	return fmt.Sprintf("Tax (%s%%)", strconv.FormatFloat(percent, 'f', -1, 64))
}
