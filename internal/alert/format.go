package alert

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Render produces the human-readable alert message for one price drop,
// in Telegram Markdown.
func Render(name string, prev, now decimal.Decimal, currency, url string, dropPercent decimal.Decimal) string {
	msg := fmt.Sprintf("💸 *%s* price dropped: %s → %s", name, prev.StringFixed(2), now.StringFixed(2))
	if currency != "" {
		msg += " " + currency
	}
	return fmt.Sprintf("%s\n%s\n-%s%%", msg, url, dropPercent.StringFixed(1))
}

// RenderLowest produces the message for the scout flow's
// lowest-price-beaten alert.
func RenderLowest(url string, price decimal.Decimal) string {
	return fmt.Sprintf("💰 New lowest price: %s€\n%s", price.StringFixed(2), url)
}

// RenderBatch joins every alert of a run into the single message handed
// to the notifier.
func RenderBatch(messages []string) string {
	return strings.Join(messages, "\n\n")
}
