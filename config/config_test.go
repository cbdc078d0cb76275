package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Test with default values
	config := LoadConfig()
	assert.Equal(t, "products.json", config.ProductsFile)
	assert.Equal(t, "history.json", config.LedgerFile)
	assert.Equal(t, "price_history.csv", config.HistoryFile)
	assert.Equal(t, "csv", config.HistoryBackend)
	assert.Equal(t, "localhost:6379", config.RedisAddr)
	assert.Equal(t, 0, config.RedisDB)
	assert.Equal(t, "localhost:11211", config.MemcacheAddr)
	assert.Equal(t, time.Hour, config.CheckInterval)
	assert.Equal(t, 2*time.Second, config.PolitenessMin)
	assert.Equal(t, 5*time.Second, config.PolitenessMax)
	assert.True(t, config.RunOnce)
	assert.False(t, config.PublishObservations)
	assert.Empty(t, config.Queries)

	// Test with environment variables
	os.Setenv("PRODUCTS_FILE", "/etc/watcher/products.json")
	os.Setenv("LEDGER_FILE", "/var/lib/watcher/history.json")
	os.Setenv("CHECK_INTERVAL_SECONDS", "600")
	os.Setenv("QUERIES", "laptop deals, ssd 2tb")
	os.Setenv("RUN_ONCE", "false")
	os.Setenv("PUBLISH_OBSERVATIONS", "true")

	config = LoadConfig()
	assert.Equal(t, "/etc/watcher/products.json", config.ProductsFile)
	assert.Equal(t, "/var/lib/watcher/history.json", config.LedgerFile)
	assert.Equal(t, 10*time.Minute, config.CheckInterval)
	assert.Equal(t, []string{"laptop deals", "ssd 2tb"}, config.Queries)
	assert.False(t, config.RunOnce)
	assert.True(t, config.PublishObservations)

	// Clean up
	os.Unsetenv("PRODUCTS_FILE")
	os.Unsetenv("LEDGER_FILE")
	os.Unsetenv("CHECK_INTERVAL_SECONDS")
	os.Unsetenv("QUERIES")
	os.Unsetenv("RUN_ONCE")
	os.Unsetenv("PUBLISH_OBSERVATIONS")
}

func TestValidate(t *testing.T) {
	valid := LoadConfig()
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty products file", func(c *Config) { c.ProductsFile = "" }},
		{"empty ledger file", func(c *Config) { c.LedgerFile = "" }},
		{"unknown history backend", func(c *Config) { c.HistoryBackend = "sqlite" }},
		{"postgres without dsn", func(c *Config) { c.HistoryBackend = "postgres" }},
		{"zero interval", func(c *Config) { c.CheckInterval = 0 }},
		{"zero results per query", func(c *Config) { c.ResultsPerQuery = 0 }},
		{"inverted politeness range", func(c *Config) {
			c.PolitenessMin = 5 * time.Second
			c.PolitenessMax = 2 * time.Second
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
