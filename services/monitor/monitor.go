package monitor

import (
	"context"
	"encoding/json"
	"time"

	"rdelorme/pricewatcher/config"
	"rdelorme/pricewatcher/internal/alert"
	"rdelorme/pricewatcher/internal/ledger"
	"rdelorme/pricewatcher/internal/price"
	"rdelorme/pricewatcher/logger"
	"rdelorme/pricewatcher/pkg/errors"
	"rdelorme/pricewatcher/services/fetcher"
	"rdelorme/pricewatcher/services/notifier"
	"rdelorme/pricewatcher/services/publisher"

	"github.com/shopspring/decimal"
)

// Observation is the wire shape of one successful price extraction,
// published to the observation stream.
type Observation struct {
	EntityID  string          `json:"entity_id"`
	Timestamp string          `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	SourceURL string          `json:"source_url"`
}

// Monitor drives the primary flow: fetch each tracked product, extract a
// price, evaluate it against the ledger, and batch qualifying alerts into
// a single notification per run.
type Monitor struct {
	products []config.Product
	fetch    fetcher.Fetcher
	store    *ledger.Store
	notify   notifier.Notifier
	pub      publisher.Publisher
	log      *logger.Logger
	now      func() time.Time
}

// New creates a monitor over a validated product list
func New(
	products []config.Product,
	fetch fetcher.Fetcher,
	store *ledger.Store,
	notify notifier.Notifier,
	pub publisher.Publisher,
) *Monitor {
	return &Monitor{
		products: products,
		fetch:    fetch,
		store:    store,
		notify:   notify,
		pub:      pub,
		log:      logger.ForMonitor(),
		now:      time.Now,
	}
}

// Run checks every product once, sequentially. Per-product failures are
// logged and skipped. The ledger is saved before any notification goes
// out; a failed ledger save aborts the run, a failed notification never
// does.
func (m *Monitor) Run(ctx context.Context) error {
	var alerts []string

	for _, p := range m.products {
		if err := ctx.Err(); err != nil {
			return err
		}
		if msg, ok := m.checkProduct(ctx, p); ok {
			alerts = append(alerts, msg)
		}
	}

	if err := m.store.Save(); err != nil {
		return err
	}

	if len(alerts) > 0 {
		m.log.Info().Int("alerts", len(alerts)).Msg("Sending alerts")
		if err := m.notify.Notify(ctx, alert.RenderBatch(alerts)); err != nil {
			// The ledger is already durable; delivery failures stay local
			m.log.Error().Err(err).Msg("Failed to deliver alerts")
		}
	} else {
		m.log.Info().Msg("No alerts")
	}

	return nil
}

// checkProduct runs the pipeline for one product and returns a rendered
// alert message when the observation qualifies.
func (m *Monitor) checkProduct(ctx context.Context, p config.Product) (string, bool) {
	m.log.Debug().Str("product", p.ID).Str("url", p.URL).Msg("Checking product")

	content, err := m.fetch.Fetch(ctx, p.URL)
	if err != nil {
		m.log.Warn().Err(errors.NewFetch(p.ID, "failed to fetch product page", err)).Msg("Skipping product")
		return "", false
	}

	observed, ok := price.Extract(content, p.PriceSelector)
	if !ok {
		m.log.Warn().Err(errors.NewParse(p.ID, "no price found on page")).Msg("Skipping product")
		return "", false
	}

	at := m.now().UTC()

	// Record returns the pre-update snapshot the evaluator compares
	// against; min/max fold and last_price overwrite happen inside.
	prev, existed := m.store.Record(p.ID, observed, p.URL, at)
	m.publishObservation(p, observed, at)

	verdict := alert.Evaluate(prev, existed, observed, p.ThresholdPercent)
	if !existed {
		m.log.Info().Str("product", p.ID).Str("price", observed.String()).Msg("Initial price stored")
		return "", false
	}
	if !verdict.ShouldAlert {
		return "", false
	}

	m.log.Info().
		Str("product", p.ID).
		Str("previous", prev.LastPrice.String()).
		Str("current", observed.String()).
		Str("drop_percent", verdict.DropPercent.StringFixed(1)).
		Msg("Price drop detected")

	return alert.Render(p.Name, prev.LastPrice, observed, p.Currency, p.URL, verdict.DropPercent), true
}

// publishObservation hands the observation to the stream; failures are
// logged, never propagated.
func (m *Monitor) publishObservation(p config.Product, observed decimal.Decimal, at time.Time) {
	data, err := json.Marshal(Observation{
		EntityID:  p.ID,
		Timestamp: at.Format(time.RFC3339),
		Price:     observed,
		SourceURL: p.URL,
	})
	if err != nil {
		m.log.Error().Err(err).Str("product", p.ID).Msg("Failed to encode observation")
		return
	}
	if err := m.pub.Publish(p.ID, data); err != nil {
		m.log.Error().Err(err).Str("product", p.ID).Msg("Failed to publish observation")
	}
}
