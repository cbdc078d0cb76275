package scout

import (
	"context"
	mathrand "math/rand"
	"time"

	"rdelorme/pricewatcher/internal/alert"
	"rdelorme/pricewatcher/internal/ledger"
	"rdelorme/pricewatcher/internal/price"
	"rdelorme/pricewatcher/logger"
	"rdelorme/pricewatcher/pkg/errors"
	"rdelorme/pricewatcher/services/cache"
	"rdelorme/pricewatcher/services/fetcher"
	"rdelorme/pricewatcher/services/notifier"

	"github.com/shopspring/decimal"
)

// LinkSource yields candidate product URLs for a search query. Result
// harvesting (selector strings, pagination) lives behind this interface.
type LinkSource interface {
	Results(ctx context.Context, query string, n int) ([]string, error)
}

// Config bundles the scout's tunables
type Config struct {
	Queries         []string
	ResultsPerQuery int
	CooldownTTL     time.Duration
	PolitenessMin   time.Duration
	PolitenessMax   time.Duration
}

// Scout drives the multi-source flow: search queries fan out into
// candidate URLs, each eligible page yields one appended observation, and
// an observation undercutting the lowest price ever logged for its URL
// dispatches an alert immediately (no batching in this flow).
type Scout struct {
	cfg      Config
	links    LinkSource
	fetch    fetcher.Fetcher
	filter   *price.Eligibility
	history  ledger.ObservationLog
	notify   notifier.Notifier
	cooldown cache.Cooldown
	log      *logger.Logger
	now      func() time.Time
	sleep    func(time.Duration)
	rng      *mathrand.Rand
}

// New creates a scout. cooldown may be nil when no shared cache is
// available; the politeness delay alone then paces the fetches.
func New(
	cfg Config,
	links LinkSource,
	fetch fetcher.Fetcher,
	filter *price.Eligibility,
	history ledger.ObservationLog,
	notify notifier.Notifier,
	cooldown cache.Cooldown,
) *Scout {
	return &Scout{
		cfg:      cfg,
		links:    links,
		fetch:    fetch,
		filter:   filter,
		history:  history,
		notify:   notify,
		cooldown: cooldown,
		log:      logger.ForScout(),
		now:      time.Now,
		sleep:    time.Sleep,
		rng:      mathrand.New(mathrand.NewSource(time.Now().UnixNano())),
	}
}

// Run processes every query sequentially. The lowest price per URL is
// snapshotted once at the top of the run, so every comparison in this run
// is against history from previous runs.
func (s *Scout) Run(ctx context.Context) error {
	mins, err := s.history.MinByURL()
	if err != nil {
		// Unreadable history is structural: abort before touching anything
		return err
	}

	fetched := false
	for _, query := range s.cfg.Queries {
		s.log.Info().Str("query", query).Msg("Searching")

		links, err := s.links.Results(ctx, query, s.cfg.ResultsPerQuery)
		if err != nil {
			s.log.Warn().Err(errors.NewFetch(query, "failed to harvest search results", err)).Msg("Skipping query")
			continue
		}

		for _, url := range links {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.cooldown != nil && s.cooldown.Active(url) {
				s.log.Debug().Str("url", url).Msg("URL is cooling down, skipping")
				continue
			}

			// Politeness pause between consecutive external fetches
			if fetched {
				s.sleep(s.politenessDelay())
			}
			fetched = true

			s.checkURL(ctx, query, url, mins)
		}
	}
	return nil
}

// checkURL runs the pipeline for one candidate URL
func (s *Scout) checkURL(ctx context.Context, query, url string, mins map[string]decimal.Decimal) {
	s.log.Debug().Str("url", url).Msg("Checking URL")

	content, err := s.fetch.Fetch(ctx, url)
	if s.cooldown != nil {
		if err := s.cooldown.Start(url, s.cfg.CooldownTTL); err != nil {
			s.log.Debug().Err(err).Str("url", url).Msg("Failed to start cooldown")
		}
	}
	if err != nil {
		s.log.Warn().Err(errors.NewFetch(url, "failed to fetch page", err)).Msg("Skipping URL")
		return
	}

	// Ineligible pages produce nothing: no observation, no alert
	if !s.filter.Eligible(content) {
		s.log.Debug().Str("url", url).Msg("Page not eligible, skipping")
		return
	}

	observed, ok := price.Extract(content, "")
	if !ok {
		s.log.Debug().Err(errors.NewParse(url, "no price found on page")).Msg("Skipping URL")
		return
	}

	obs := ledger.Observation{
		Date:  s.now().UTC(),
		Query: query,
		URL:   url,
		Price: observed,
	}
	if err := s.history.Append(obs); err != nil {
		s.log.Error().Err(err).Str("url", url).Msg("Failed to append observation")
		return
	}

	prevMin, hasMin := mins[url]
	if alert.BeatsMinimum(prevMin, hasMin, observed) {
		s.log.Info().
			Str("url", url).
			Str("price", observed.String()).
			Str("previous_min", prevMin.String()).
			Msg("New lowest price detected")
		if err := s.notify.Notify(ctx, alert.RenderLowest(url, observed)); err != nil {
			s.log.Error().Err(err).Str("url", url).Msg("Failed to deliver alert")
		}
	}
}

// politenessDelay picks a random duration within the configured range
func (s *Scout) politenessDelay() time.Duration {
	span := s.cfg.PolitenessMax - s.cfg.PolitenessMin
	if span <= 0 {
		return s.cfg.PolitenessMin
	}
	return s.cfg.PolitenessMin + time.Duration(s.rng.Int63n(int64(span)))
}
