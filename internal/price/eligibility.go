package price

import "strings"

// defaultAvailabilityPhrases marks pages from sellers that actually ship
// to the watched region. Matching is substring-based on purpose: retail
// pages phrase availability a hundred different ways around these stems.
var defaultAvailabilityPhrases = []string{
	"livraison en france",
	"expédié depuis la france",
	"disponible en france",
	"ships to france",
	"en stock",
}

// Eligibility gates whether a page is worth extracting a price from.
type Eligibility struct {
	phrases []string
}

// NewEligibility creates a filter over a custom phrase set. Phrases are
// matched case-insensitively; they are folded once here.
func NewEligibility(phrases []string) *Eligibility {
	folded := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			folded = append(folded, p)
		}
	}
	return &Eligibility{phrases: folded}
}

// DefaultEligibility creates a filter over the stock phrase set.
func DefaultEligibility() *Eligibility {
	return NewEligibility(defaultAvailabilityPhrases)
}

// Eligible reports whether any availability phrase appears in the page
// text. Empty text is never eligible.
func (e *Eligibility) Eligible(pageText string) bool {
	if pageText == "" {
		return false
	}
	folded := strings.ToLower(pageText)
	for _, phrase := range e.phrases {
		if strings.Contains(folded, phrase) {
			return true
		}
	}
	return false
}
