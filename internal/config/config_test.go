package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "turbo"
	cfg.Redis.Addr = ""
	cfg.Arbitrage.PositionSizeUSD = -5
	cfg.Arbitrage.DiscountPct = 150

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "redis: addr")
	assert.Contains(t, err.Error(), "position_size_usd")
	assert.Contains(t, err.Error(), "discount_pct")
}

func TestValidateSkipsDisabledSections(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Enabled = false
	cfg.Postgres.Host = ""
	cfg.S3.Enabled = false
	cfg.S3.Bucket = ""
	require.NoError(t, cfg.Validate())

	cfg.Postgres.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: host")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "monitor"
log_level = "debug"

[hyperliquid]
min_volume_usd = 500000.0
poll_interval = "10s"

[arbitrage]
tier = 2
discount_pct = 0.0

[arbitrage.aliases]
XPT = "PLATINUM"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 500000.0, cfg.Hyperliquid.MinVolumeUSD, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.Hyperliquid.PollInterval.Duration)
	assert.Equal(t, 2, cfg.Arbitrage.Tier)

	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "PLATINUM", cfg.Arbitrage.Aliases["XPT"])
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("mode = \"server\"\n"), 0o644))

	t.Setenv("PERPSCOPE_MODE", "monitor")
	t.Setenv("PERPSCOPE_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("PERPSCOPE_ARBITRAGE_TIER", "4")
	t.Setenv("PERPSCOPE_OSTIUM_POLL_INTERVAL", "45s")
	t.Setenv("PERPSCOPE_ARBITRAGE_MONITORED_ASSETS", "GOLD, BTC")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 4, cfg.Arbitrage.Tier)
	assert.Equal(t, 45*time.Second, cfg.Ostium.PollInterval.Duration)
	assert.Equal(t, []string{"GOLD", "BTC"}, cfg.Arbitrage.MonitoredAssets)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Redis.Password = "hunter2"
	cfg.Server.APIKey = "secret-key"
	cfg.Notify.TelegramToken = "123:abc"
	cfg.Postgres.Password = "pgpass"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.Server.APIKey)
	assert.Equal(t, "***", red.Notify.TelegramToken)
	assert.Equal(t, "***", red.Postgres.Password)

	// Original untouched.
	assert.Equal(t, "hunter2", cfg.Redis.Password)

	// Mutating the redacted copy's maps must not leak back.
	red.Arbitrage.Aliases["XAU"] = "MUTATED"
	assert.Equal(t, "GOLD", cfg.Arbitrage.Aliases["XAU"])
}
