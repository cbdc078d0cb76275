package alert

import (
	"testing"
	"time"

	"rdelorme/pricewatcher/internal/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(lastPrice string) ledger.Entry {
	return ledger.Entry{
		LastPrice:   dec(lastPrice),
		MinPrice:    dec(lastPrice),
		MaxPrice:    dec(lastPrice),
		LastChecked: time.Now(),
	}
}

func TestEvaluateFirstObservationNeverAlerts(t *testing.T) {
	verdict := Evaluate(ledger.Entry{}, false, dec("1.00"), dec("0"))
	assert.False(t, verdict.ShouldAlert)
}

func TestEvaluateThreshold(t *testing.T) {
	prev := entry("100")

	// 11% drop meets a 10% threshold
	verdict := Evaluate(prev, true, dec("89"), dec("10"))
	assert.True(t, verdict.ShouldAlert)
	assert.Equal(t, "11", verdict.DropPercent.String())

	// 5% drop does not
	verdict = Evaluate(prev, true, dec("95"), dec("10"))
	assert.False(t, verdict.ShouldAlert)
	assert.Equal(t, "5", verdict.DropPercent.String())

	// threshold zero alerts on any drop
	verdict = Evaluate(prev, true, dec("99.99"), dec("0"))
	assert.True(t, verdict.ShouldAlert)
}

func TestEvaluateExactThreshold(t *testing.T) {
	verdict := Evaluate(entry("100"), true, dec("90"), dec("10"))
	assert.True(t, verdict.ShouldAlert)
	assert.Equal(t, "10", verdict.DropPercent.String())
}

func TestEvaluateRiseNeverAlerts(t *testing.T) {
	prev := entry("100")

	assert.False(t, Evaluate(prev, true, dec("100"), dec("0")).ShouldAlert)
	assert.False(t, Evaluate(prev, true, dec("150"), dec("0")).ShouldAlert)
}

func TestEvaluateZeroGuard(t *testing.T) {
	prev := entry("0")

	assert.False(t, Evaluate(prev, true, dec("-1"), dec("0")).ShouldAlert)
	assert.False(t, Evaluate(prev, true, dec("10"), dec("0")).ShouldAlert)
}

func TestEvaluateReplayIsIdempotent(t *testing.T) {
	// Replaying the identical price against the updated entry is not a
	// drop, so no second alert fires
	prev := entry("80")
	verdict := Evaluate(prev, true, dec("80"), dec("0"))
	assert.False(t, verdict.ShouldAlert)
}

func TestBeatsMinimum(t *testing.T) {
	assert.True(t, BeatsMinimum(dec("50"), true, dec("49.99")))
	assert.False(t, BeatsMinimum(dec("50"), true, dec("50")))
	assert.False(t, BeatsMinimum(dec("50"), true, dec("51")))

	// no history yet: this observation only seeds the log
	assert.False(t, BeatsMinimum(decimal.Decimal{}, false, dec("1")))
}
