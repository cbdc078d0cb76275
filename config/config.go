package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"rdelorme/pricewatcher/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// File paths
	ProductsFile string
	LedgerFile   string
	HistoryFile  string

	// Observation history backend: "csv" or "postgres"
	HistoryBackend string
	PostgresDSN    string

	// Telegram notification
	TelegramToken  string
	TelegramChatID string

	// Redis observation stream
	RedisAddr           string
	RedisDB             int
	RedisStream         string
	RedisStreamMaxLen   int
	PublishObservations bool

	// Memcache fetch cooldown
	MemcacheAddr  string
	FetchCooldown time.Duration

	// Scheduling
	CheckInterval time.Duration
	RunOnce       bool

	// Scout flow
	Queries         []string
	ResultsPerQuery int
	PolitenessMin   time.Duration
	PolitenessMax   time.Duration

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "1000"))
	cooldown, _ := strconv.Atoi(getEnv("FETCH_COOLDOWN_SECONDS", "300"))
	interval, _ := strconv.Atoi(getEnv("CHECK_INTERVAL_SECONDS", "3600"))
	resultsPerQuery, _ := strconv.Atoi(getEnv("RESULTS_PER_QUERY", "5"))
	politenessMin, _ := strconv.Atoi(getEnv("POLITENESS_MIN_SECONDS", "2"))
	politenessMax, _ := strconv.Atoi(getEnv("POLITENESS_MAX_SECONDS", "5"))

	return &Config{
		ProductsFile:        getEnv("PRODUCTS_FILE", "products.json"),
		LedgerFile:          getEnv("LEDGER_FILE", "history.json"),
		HistoryFile:         getEnv("HISTORY_FILE", "price_history.csv"),
		HistoryBackend:      getEnv("HISTORY_BACKEND", "csv"),
		PostgresDSN:         getEnv("POSTGRES_DSN", ""),
		TelegramToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:      getEnv("TELEGRAM_CHAT_ID", ""),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             redisDB,
		RedisStream:         getEnv("REDIS_STREAM", "price_observations"),
		RedisStreamMaxLen:   streamMaxLen,
		PublishObservations: getEnv("PUBLISH_OBSERVATIONS", "false") == "true",
		MemcacheAddr:        getEnv("MEMCACHE_ADDR", "localhost:11211"),
		FetchCooldown:       time.Duration(cooldown) * time.Second,
		CheckInterval:       time.Duration(interval) * time.Second,
		RunOnce:             getEnv("RUN_ONCE", "true") == "true",
		Queries:             splitList(getEnv("QUERIES", "")),
		ResultsPerQuery:     resultsPerQuery,
		PolitenessMin:       time.Duration(politenessMin) * time.Second,
		PolitenessMax:       time.Duration(politenessMax) * time.Second,
		Environment:         getEnv("WATCHER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for structural problems that must
// abort the run before any entity is processed.
func (c *Config) Validate() error {
	if c.ProductsFile == "" {
		return errors.NewConfiguration("products file path is empty", nil)
	}
	if c.LedgerFile == "" {
		return errors.NewConfiguration("ledger file path is empty", nil)
	}
	switch c.HistoryBackend {
	case "csv":
		if c.HistoryFile == "" {
			return errors.NewConfiguration("history file path is empty", nil)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.NewConfiguration("postgres history backend requires POSTGRES_DSN", nil)
		}
	default:
		return errors.NewConfiguration("unknown history backend: "+c.HistoryBackend, nil)
	}
	if c.CheckInterval <= 0 {
		return errors.NewConfiguration("check interval must be positive", nil)
	}
	if c.ResultsPerQuery <= 0 {
		return errors.NewConfiguration("results per query must be positive", nil)
	}
	if c.PolitenessMin < 0 || c.PolitenessMax < c.PolitenessMin {
		return errors.NewConfiguration("politeness delay range is invalid", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated env value, dropping empty items
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
