// Package config defines the top-level configuration for the perp monitor
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PERPSCOPE_* environment variables.
type Config struct {
	Hyperliquid HyperliquidConfig `toml:"hyperliquid"`
	Ostium      OstiumConfig      `toml:"ostium"`
	Redis       RedisConfig       `toml:"redis"`
	Postgres    PostgresConfig    `toml:"postgres"`
	S3          S3Config          `toml:"s3"`
	Arbitrage   ArbitrageConfig   `toml:"arbitrage"`
	Server      ServerConfig      `toml:"server"`
	Notify      NotifyConfig      `toml:"notify"`
	Mode        string            `toml:"mode"`
	LogLevel    string            `toml:"log_level"`
}

// HyperliquidConfig holds the Hyperliquid REST endpoint and snapshot filters.
type HyperliquidConfig struct {
	BaseURL       string   `toml:"base_url"`
	MinVolumeUSD  float64  `toml:"min_volume_usd"`
	PollInterval  duration `toml:"poll_interval"`
	FetchBuilders bool     `toml:"fetch_builders"`
}

// OstiumConfig holds the Ostium subgraph and price-feed endpoints, the
// optional Arbitrum RPC for feed-freshness checks, and snapshot filters.
type OstiumConfig struct {
	SubgraphURL    string   `toml:"subgraph_url"`
	PricesURL      string   `toml:"prices_url"`
	ArbitrumRPCURL string   `toml:"arbitrum_rpc_url"`
	MinOIUSD       float64  `toml:"min_oi_usd"`
	PollInterval   duration `toml:"poll_interval"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters for the alert audit
// trail. Disabled means alerts are sent but not persisted.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for raw snapshot
// archival. Disabled means snapshots are not archived.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	Prefix         string `toml:"prefix"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ArbitrageConfig holds the trader fee parameters, the comparison sizing
// assumptions, and the asset matching tables.
type ArbitrageConfig struct {
	// Tier is the Hyperliquid volume tier (0 = lowest volume).
	Tier int `toml:"tier"`
	// DiscountPct is the Hyperliquid referral discount in percent (0-4).
	DiscountPct float64 `toml:"discount_pct"`

	PositionSizeUSD float64 `toml:"position_size_usd"`
	MaxFundingHours float64 `toml:"max_funding_hours"`

	// ExpectedSpreadUSD maps canonical asset keys to the execution spread
	// floor used by the strict profitability verdict.
	ExpectedSpreadUSD map[string]float64 `toml:"expected_spread_usd"`

	// MonitoredAssets limits alerting to these canonical keys. Empty means
	// alert on every matched pair.
	MonitoredAssets []string `toml:"monitored_assets"`

	// PriorityAssets orders comparison output; listed assets sort first.
	PriorityAssets []string `toml:"priority_assets"`

	// Aliases maps Ostium symbols to their Hyperliquid equivalents.
	Aliases map[string]string `toml:"aliases"`

	CooldownSeconds int `toml:"cooldown_seconds"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`

	// RateLimit caps requests per client per window. Zero disables it.
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Hyperliquid: HyperliquidConfig{
			BaseURL:       "https://api.hyperliquid.xyz",
			MinVolumeUSD:  2_000_000,
			PollInterval:  duration{30 * time.Second},
			FetchBuilders: true,
		},
		Ostium: OstiumConfig{
			SubgraphURL:  "https://subgraph.satsuma-prod.com/391e1e8fdb10/ostium/ost-prod/api",
			PricesURL:    "https://metadata-backend.ostium.io/PricePublish/latest-prices",
			MinOIUSD:     2_000_000,
			PollInterval: duration{30 * time.Second},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "perpscope",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "perpscope-data",
			Prefix:         "raw",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Arbitrage: ArbitrageConfig{
			Tier:            0,
			DiscountPct:     4,
			PositionSizeUSD: 1000,
			MaxFundingHours: 12,
			ExpectedSpreadUSD: map[string]float64{
				"GOLD":   0,
				"SILVER": 0,
				"COPPER": 0.002,
				"XYZ100": 10,
			},
			MonitoredAssets: []string{"GOLD", "SILVER", "COPPER", "XYZ100"},
			PriorityAssets:  []string{"GOLD", "SILVER", "COPPER", "XYZ100", "BTC", "ETH"},
			Aliases: map[string]string{
				"XAU": "GOLD",
				"XAG": "SILVER",
				"HG":  "COPPER",
				"NDX": "XYZ100",
			},
			CooldownSeconds: 60,
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8000,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:       0,
			RateLimitWindow: duration{time.Minute},
		},
		Notify: NotifyConfig{
			Events: []string{"arbitrage_opportunity"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"monitor": true,
	"server":  true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: monitor, server, full)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Hyperliquid
	if c.Hyperliquid.BaseURL == "" {
		errs = append(errs, "hyperliquid: base_url must not be empty")
	}
	if c.Hyperliquid.MinVolumeUSD < 0 {
		errs = append(errs, "hyperliquid: min_volume_usd must be >= 0")
	}
	if c.Hyperliquid.PollInterval.Duration < time.Second {
		errs = append(errs, "hyperliquid: poll_interval must be >= 1s")
	}

	// Ostium
	if c.Ostium.SubgraphURL == "" {
		errs = append(errs, "ostium: subgraph_url must not be empty")
	}
	if c.Ostium.PricesURL == "" {
		errs = append(errs, "ostium: prices_url must not be empty")
	}
	if c.Ostium.MinOIUSD < 0 {
		errs = append(errs, "ostium: min_oi_usd must be >= 0")
	}
	if c.Ostium.PollInterval.Duration < time.Second {
		errs = append(errs, "ostium: poll_interval must be >= 1s")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// Postgres
	if c.Postgres.Enabled {
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			if c.Postgres.Host == "" {
				errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
			}
			if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
				errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
			}
			if c.Postgres.Database == "" {
				errs = append(errs, "postgres: database must not be empty")
			}
		}
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
	}

	// Arbitrage
	if c.Arbitrage.Tier < 0 {
		errs = append(errs, "arbitrage: tier must be >= 0")
	}
	if c.Arbitrage.DiscountPct < 0 || c.Arbitrage.DiscountPct > 100 {
		errs = append(errs, fmt.Sprintf("arbitrage: discount_pct must be 0-100, got %g", c.Arbitrage.DiscountPct))
	}
	if c.Arbitrage.PositionSizeUSD <= 0 {
		errs = append(errs, "arbitrage: position_size_usd must be > 0")
	}
	if c.Arbitrage.MaxFundingHours <= 0 {
		errs = append(errs, "arbitrage: max_funding_hours must be > 0")
	}
	if c.Arbitrage.CooldownSeconds < 0 {
		errs = append(errs, "arbitrage: cooldown_seconds must be >= 0")
	}
	for asset, spread := range c.Arbitrage.ExpectedSpreadUSD {
		if spread < 0 {
			errs = append(errs, fmt.Sprintf("arbitrage: expected_spread_usd[%s] must be >= 0", asset))
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateLimitWindow.Duration <= 0 {
			errs = append(errs, "server: rate_limit_window must be > 0 when rate_limit is set")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
