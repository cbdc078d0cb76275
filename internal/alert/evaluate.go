package alert

import (
	"rdelorme/pricewatcher/internal/ledger"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Verdict is the evaluator's decision for one observation
type Verdict struct {
	ShouldAlert bool
	DropPercent decimal.Decimal
}

// Evaluate decides whether a new observation warrants an alert, comparing
// against the last recorded price (not the running minimum: a price still
// above the historical low but below the previous check qualifies).
//
// Rules:
//   - first-ever observation seeds the ledger, never alerts
//   - rises and unchanged prices never alert
//   - a drop alerts when its percentage meets the threshold
//     (threshold 0 means any drop)
//   - a prior price of zero never alerts: no meaningful percentage exists
func Evaluate(prev ledger.Entry, existed bool, newPrice, thresholdPercent decimal.Decimal) Verdict {
	if !existed {
		return Verdict{}
	}
	if prev.LastPrice.IsZero() {
		return Verdict{}
	}
	if newPrice.GreaterThanOrEqual(prev.LastPrice) {
		return Verdict{}
	}

	pct := prev.LastPrice.Sub(newPrice).Div(prev.LastPrice).Mul(hundred)
	return Verdict{
		ShouldAlert: pct.GreaterThanOrEqual(thresholdPercent),
		DropPercent: pct,
	}
}

// BeatsMinimum is the scout flow's alternate policy: alert only when an
// observation undercuts the lowest price ever logged for that URL. hasMin
// is false when the URL has no logged history, in which case this
// observation only seeds the log.
func BeatsMinimum(min decimal.Decimal, hasMin bool, newPrice decimal.Decimal) bool {
	return hasMin && newPrice.LessThan(min)
}
