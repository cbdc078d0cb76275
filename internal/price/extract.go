package price

import (
	"regexp"
	"strings"

	"rdelorme/pricewatcher/helpers"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// leadingTextLimit bounds the last-resort scan over page text.
const leadingTextLimit = 5000

// Digits optionally grouped by threes, optional two decimals, then a
// currency symbol ("1 299,00 €", "1299.00$").
var currencyPattern = regexp.MustCompile(`[0-9]{1,3}(?:[ .,][0-9]{3})*(?:[,.][0-9]{2})?\s?[€$£]`)

// Strategy is one extraction attempt over a parsed page. Strategies are
// pure and side-effect free.
type Strategy func(doc *goquery.Document) (decimal.Decimal, bool)

// fallbackStrategies is the ordered chain tried when no explicit selector
// resolves a price, from most to least specific. The last entry is a
// deliberately lossy low-confidence scan.
var fallbackStrategies = []Strategy{
	itempropStrategy,
	currencyTextStrategy,
	leadingTextStrategy,
}

// Extract finds a best-candidate price in page content. When selector is
// non-empty and matches an element, that element alone decides the outcome;
// an explicit selector is trusted and never falls through. A selector that
// matches nothing, or an empty selector, walks the fallback chain.
// Malformed or empty content yields (zero, false), never an error.
func Extract(content, selector string) (decimal.Decimal, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return decimal.Decimal{}, false
	}

	// Script bodies are full of numbers that look like prices.
	doc.Find("script, style, noscript").Remove()

	if selector != "" {
		if sel := doc.Find(selector); sel.Length() > 0 {
			return normalizeSelection(sel.First())
		}
	}

	for _, strategy := range fallbackStrategies {
		if d, ok := strategy(doc); ok {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

// normalizeSelection reads the microdata content attribute when present,
// otherwise the element's visible text.
func normalizeSelection(sel *goquery.Selection) (decimal.Decimal, bool) {
	if content, exists := sel.Attr("content"); exists && content != "" {
		return Normalize(content)
	}
	return Normalize(sel.Text())
}

// itempropStrategy reads the structured price marker common on retail
// pages: an element carrying itemprop="price" with a content attribute.
func itempropStrategy(doc *goquery.Document) (decimal.Decimal, bool) {
	sel := doc.Find(`[itemprop="price"]`).FilterFunction(func(_ int, s *goquery.Selection) bool {
		content, exists := s.Attr("content")
		return exists && content != ""
	})
	if sel.Length() == 0 {
		return decimal.Decimal{}, false
	}
	content, _ := sel.First().Attr("content")
	return Normalize(content)
}

// currencyTextStrategy scans the visible text for the first
// currency-suffixed number.
func currencyTextStrategy(doc *goquery.Document) (decimal.Decimal, bool) {
	m := currencyPattern.FindString(doc.Text())
	if m == "" {
		return decimal.Decimal{}, false
	}
	return Normalize(m)
}

// leadingTextStrategy accepts the first number anywhere in the opening
// stretch of page text. Low confidence: the number may not be a price at
// all, but a spurious candidate beats dropping the observation outright.
func leadingTextStrategy(doc *goquery.Document) (decimal.Decimal, bool) {
	return Normalize(helpers.TruncateRunes(doc.Text(), leadingTextLimit))
}
