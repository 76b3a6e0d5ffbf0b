// Package format provides display formatting for dashboard values.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a currency string with a currency sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	amount = sanitize(amount)
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	amount = sanitize(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	formatted := formatPositiveCurrency(math.Abs(amount))
	return sign + formatted
}

// Rate returns a fixed-decimal rendering of a rate value (e.g., "3.47").
// Negative decimal counts clamp to zero decimals.
func Rate(value float64, decimals int) string {
	value = sanitize(value)
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f", decimals, value)
}

// sanitize collapses NaN and infinities to zero so every formatter is total
// over the float domain.
func sanitize(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
