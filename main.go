package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rdelorme/pricewatcher/config"
	"rdelorme/pricewatcher/internal/ledger"
	"rdelorme/pricewatcher/internal/price"
	"rdelorme/pricewatcher/logger"
	"rdelorme/pricewatcher/services/cache"
	"rdelorme/pricewatcher/services/fetcher"
	"rdelorme/pricewatcher/services/monitor"
	"rdelorme/pricewatcher/services/notifier"
	"rdelorme/pricewatcher/services/publisher"
	"rdelorme/pricewatcher/services/scout"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Load the tracked product list; a malformed list is fatal before
	// any entity is processed
	products, err := config.LoadProducts(cfg.ProductsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid product list")
	}

	// Open the price ledger; a missing file is a fresh start
	store, err := ledger.Open(cfg.LedgerFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Unreadable ledger")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("products", len(products)).
		Int("tracked_entities", store.Len()).
		Dur("check_interval", cfg.CheckInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	mon := monitor.New(products, services.Fetcher, store, services.Notifier, services.Publisher)

	var sct *scout.Scout
	if len(cfg.Queries) > 0 {
		sct = scout.New(
			scout.Config{
				Queries:         cfg.Queries,
				ResultsPerQuery: cfg.ResultsPerQuery,
				CooldownTTL:     cfg.FetchCooldown,
				PolitenessMin:   cfg.PolitenessMin,
				PolitenessMax:   cfg.PolitenessMax,
			},
			scout.NewSearchLinkSource(services.Fetcher),
			services.Fetcher,
			price.DefaultEligibility(),
			services.History,
			services.Notifier,
			services.Cooldown,
		)
		log.Info().Int("queries", len(cfg.Queries)).Msg("Scout flow enabled")
	}

	runAll := func() {
		if err := mon.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Monitor run failed")
		}
		if sct != nil {
			if err := sct.Run(ctx); err != nil {
				log.Error().Err(err).Msg("Scout run failed")
			}
		}
	}

	if cfg.RunOnce {
		runAll()
		log.Info().Msg("Run complete")
		return
	}

	// Scheduled mode: run immediately, then on the configured interval
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every "+cfg.CheckInterval.String(), runAll); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule runs")
	}
	scheduler.Start()
	runAll()

	sig := <-sigChan
	log.Info().
		Str("signal", sig.String()).
		Msg("Received shutdown signal")
	cancel()

	// Let an in-flight run finish before exiting
	<-scheduler.Stop().Done()
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Fetcher   fetcher.Fetcher
	Notifier  notifier.Notifier
	Publisher publisher.Publisher
	Cooldown  cache.Cooldown
	History   ledger.ObservationLog
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Notifier != nil {
		s.Notifier.Close()
	}
	if s.History != nil {
		s.History.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{
		Fetcher: fetcher.NewHTTPFetcher(),
	}

	// Notification transport
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		services.Notifier = notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
		logger.Info("Telegram notifications enabled for chat %s", cfg.TelegramChatID)
	} else {
		services.Notifier = notifier.NewNopNotifier()
		logger.Warn("Telegram not configured, alerts will only be logged")
	}

	// Observation stream
	if cfg.PublishObservations {
		services.Publisher = publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
		logger.Info("Publishing observations to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	} else {
		services.Publisher = publisher.NewNopPublisher()
	}

	// Scout-only services
	if len(cfg.Queries) > 0 {
		services.Cooldown = cache.NewMemcacheCooldown(cfg.MemcacheAddr)
		logger.Info("Fetch cooldown backed by Memcache at %s", cfg.MemcacheAddr)

		switch cfg.HistoryBackend {
		case "postgres":
			pgLog, err := ledger.NewPostgresLog(cfg.PostgresDSN)
			if err != nil {
				return nil, err
			}
			services.History = pgLog
			logger.Info("Observation history backed by Postgres")
		default:
			services.History = ledger.NewCSVLog(cfg.HistoryFile)
			logger.Info("Observation history backed by %s", cfg.HistoryFile)
		}
	}

	return services, nil
}
