package notifier

import (
	"context"

	"rdelorme/pricewatcher/logger"
)

// Notifier delivers a rendered alert text to its destination. Delivery
// failures are the caller's to log and swallow: by the time an alert is
// dispatched the ledger is already durably updated.
type Notifier interface {
	// Notify sends one message
	Notify(ctx context.Context, text string) error

	// Close closes the notifier
	Close() error
}

// NopNotifier drops messages with a log line, for runs where no
// notification transport is configured.
type NopNotifier struct{}

// NewNopNotifier creates a notifier that only logs
func NewNopNotifier() *NopNotifier {
	return &NopNotifier{}
}

// Notify logs the message instead of delivering it
func (n *NopNotifier) Notify(_ context.Context, text string) error {
	logger.ForNotifier().Info().
		Int("length", len(text)).
		Msg("Notification transport not configured, dropping alert")
	return nil
}

// Close closes the notifier
func (n *NopNotifier) Close() error {
	return nil
}
