package price

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// Everything that cannot be part of a numeric price
	nonNumericPattern = regexp.MustCompile(`[^0-9,.\-]`)

	// Leftmost decimal number, optional leading minus
	firstNumberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Normalize reduces a noisy text fragment (currency symbols, thousands
// separators, European decimal commas) to a single decimal value.
// It returns false when the fragment contains nothing parseable.
func Normalize(raw string) (decimal.Decimal, bool) {
	t := nonNumericPattern.ReplaceAllString(raw, "")

	// "1 234,56" style: comma is the decimal separator only when
	// no period survived the stripping.
	if strings.Contains(t, ",") && !strings.Contains(t, ".") {
		t = strings.ReplaceAll(t, ",", ".")
	}

	m := firstNumberPattern.FindString(t)
	if m == "" {
		return decimal.Decimal{}, false
	}

	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
