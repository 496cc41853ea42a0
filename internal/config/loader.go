package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PERPSCOPE_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known PERPSCOPE_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Hyperliquid ──
	setStr(&cfg.Hyperliquid.BaseURL, "PERPSCOPE_HYPERLIQUID_BASE_URL")
	setFloat64(&cfg.Hyperliquid.MinVolumeUSD, "PERPSCOPE_HYPERLIQUID_MIN_VOLUME_USD")
	setDuration(&cfg.Hyperliquid.PollInterval, "PERPSCOPE_HYPERLIQUID_POLL_INTERVAL")
	setBool(&cfg.Hyperliquid.FetchBuilders, "PERPSCOPE_HYPERLIQUID_FETCH_BUILDERS")

	// ── Ostium ──
	setStr(&cfg.Ostium.SubgraphURL, "PERPSCOPE_OSTIUM_SUBGRAPH_URL")
	setStr(&cfg.Ostium.PricesURL, "PERPSCOPE_OSTIUM_PRICES_URL")
	setStr(&cfg.Ostium.ArbitrumRPCURL, "PERPSCOPE_OSTIUM_ARBITRUM_RPC_URL")
	setFloat64(&cfg.Ostium.MinOIUSD, "PERPSCOPE_OSTIUM_MIN_OI_USD")
	setDuration(&cfg.Ostium.PollInterval, "PERPSCOPE_OSTIUM_POLL_INTERVAL")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "PERPSCOPE_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "PERPSCOPE_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "PERPSCOPE_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "PERPSCOPE_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "PERPSCOPE_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "PERPSCOPE_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "PERPSCOPE_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "PERPSCOPE_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "PERPSCOPE_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "PERPSCOPE_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "PERPSCOPE_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "PERPSCOPE_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "PERPSCOPE_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "PERPSCOPE_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "PERPSCOPE_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "PERPSCOPE_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "PERPSCOPE_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "PERPSCOPE_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "PERPSCOPE_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "PERPSCOPE_S3_REGION")
	setStr(&cfg.S3.Bucket, "PERPSCOPE_S3_BUCKET")
	setStr(&cfg.S3.Prefix, "PERPSCOPE_S3_PREFIX")
	setStr(&cfg.S3.AccessKey, "PERPSCOPE_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "PERPSCOPE_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "PERPSCOPE_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "PERPSCOPE_S3_FORCE_PATH_STYLE")

	// ── Arbitrage ──
	setInt(&cfg.Arbitrage.Tier, "PERPSCOPE_ARBITRAGE_TIER")
	setFloat64(&cfg.Arbitrage.DiscountPct, "PERPSCOPE_ARBITRAGE_DISCOUNT_PCT")
	setFloat64(&cfg.Arbitrage.PositionSizeUSD, "PERPSCOPE_ARBITRAGE_POSITION_SIZE_USD")
	setFloat64(&cfg.Arbitrage.MaxFundingHours, "PERPSCOPE_ARBITRAGE_MAX_FUNDING_HOURS")
	setStringSlice(&cfg.Arbitrage.MonitoredAssets, "PERPSCOPE_ARBITRAGE_MONITORED_ASSETS")
	setStringSlice(&cfg.Arbitrage.PriorityAssets, "PERPSCOPE_ARBITRAGE_PRIORITY_ASSETS")
	setInt(&cfg.Arbitrage.CooldownSeconds, "PERPSCOPE_ARBITRAGE_COOLDOWN_SECONDS")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "PERPSCOPE_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "PERPSCOPE_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "PERPSCOPE_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "PERPSCOPE_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "PERPSCOPE_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateLimitWindow, "PERPSCOPE_SERVER_RATE_LIMIT_WINDOW")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "PERPSCOPE_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "PERPSCOPE_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "PERPSCOPE_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "PERPSCOPE_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "PERPSCOPE_MODE")
	setStr(&cfg.LogLevel, "PERPSCOPE_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
