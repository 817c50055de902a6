// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string        `toml:"environment"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Market      MarketConfig  `toml:"market"`
	Sync        SyncConfig    `toml:"sync"`
	Logging     LoggingConfig `toml:"logging"`
}

// StorageConfig holds SurrealDB connection configuration.
type StorageConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	BrokerGateway BrokerGatewayConfig `toml:"broker_gateway"`
	Quotes        QuotesConfig        `toml:"quotes"`
}

// BrokerGatewayConfig holds broker gateway API configuration
type BrokerGatewayConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *BrokerGatewayConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// QuotesConfig holds quote provider API configuration
type QuotesConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *QuotesConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// MarketConfig holds price freshness and exchange-hours configuration.
// Cached prices younger than the applicable freshness window are served
// without an upstream fetch; the window depends on whether the market is open.
type MarketConfig struct {
	FreshnessOpen   string `toml:"freshness_open"`   // TTL while the market is open, default "5s"
	FreshnessClosed string `toml:"freshness_closed"` // TTL while the market is closed, default "12h"
}

// GetFreshnessOpen parses the market-open freshness TTL.
func (c *MarketConfig) GetFreshnessOpen() time.Duration {
	d, err := time.ParseDuration(c.FreshnessOpen)
	if err != nil {
		return DefaultFreshnessOpen
	}
	return d
}

// GetFreshnessClosed parses the market-closed freshness TTL.
func (c *MarketConfig) GetFreshnessClosed() time.Duration {
	d, err := time.ParseDuration(c.FreshnessClosed)
	if err != nil {
		return DefaultFreshnessClosed
	}
	return d
}

// SyncConfig holds background sync scheduling configuration.
type SyncConfig struct {
	Interval string `toml:"interval"` // full-sync interval, default "15m"
}

// GetInterval parses the scheduler interval.
func (c *SyncConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Address:   "ws://localhost:8000/rpc",
			Username:  "root",
			Password:  "root",
			Namespace: "folio",
			Database:  "folio",
		},
		Clients: ClientsConfig{
			BrokerGateway: BrokerGatewayConfig{
				BaseURL:   "https://gateway.folio.internal",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Quotes: QuotesConfig{
				BaseURL:   "https://quotes.folio.internal",
				RateLimit: 10,
				Timeout:   "15s",
			},
		},
		Market: MarketConfig{
			FreshnessOpen:   "5s",
			FreshnessClosed: "12h",
		},
		Sync: SyncConfig{
			Interval: "15m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if addr := os.Getenv("FOLIO_STORAGE_ADDRESS"); addr != "" {
		config.Storage.Address = addr
	}
	if user := os.Getenv("FOLIO_STORAGE_USERNAME"); user != "" {
		config.Storage.Username = user
	}
	if pass := os.Getenv("FOLIO_STORAGE_PASSWORD"); pass != "" {
		config.Storage.Password = pass
	}

	if v := os.Getenv("FOLIO_BROKER_GATEWAY_URL"); v != "" {
		config.Clients.BrokerGateway.BaseURL = v
	}
	if v := os.Getenv("FOLIO_BROKER_GATEWAY_API_KEY"); v != "" {
		config.Clients.BrokerGateway.APIKey = v
	}
	if v := os.Getenv("FOLIO_QUOTES_URL"); v != "" {
		config.Clients.Quotes.BaseURL = v
	}
	if v := os.Getenv("FOLIO_QUOTES_API_KEY"); v != "" {
		config.Clients.Quotes.APIKey = v
	}

	if v := os.Getenv("FOLIO_SYNC_INTERVAL"); v != "" {
		config.Sync.Interval = v
	}

	if v := os.Getenv("FOLIO_QUOTES_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Clients.Quotes.RateLimit = n
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
