package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	s3blob "github.com/minglew/perpscope/internal/blob/s3"
	"github.com/minglew/perpscope/internal/cache/redis"
	"github.com/minglew/perpscope/internal/config"
	"github.com/minglew/perpscope/internal/domain"
	"github.com/minglew/perpscope/internal/engine"
	"github.com/minglew/perpscope/internal/fees"
	"github.com/minglew/perpscope/internal/match"
	"github.com/minglew/perpscope/internal/notify"
	"github.com/minglew/perpscope/internal/platform/hyperliquid"
	"github.com/minglew/perpscope/internal/platform/ostium"
	"github.com/minglew/perpscope/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Caches and coordination
	ComparisonCache domain.ComparisonCache
	SignalBus       domain.SignalBus
	RateLimiter     domain.RateLimiter
	LockManager     domain.LockManager

	// Persistence (nil when postgres is disabled)
	AlertStore domain.AlertStore

	// Blob storage (nil when s3 is disabled)
	BlobWriter domain.BlobWriter

	// Venue clients (nil in server mode)
	Hyperliquid *hyperliquid.Client
	Ostium      *ostium.Client
	Chain       domain.ChainProbe

	// Reconciliation
	Engine *engine.Engine

	// Notifications
	Notifier *notify.Notifier
	Alerter  *notify.Alerter
}

// needsFeeds returns true for modes that poll venue data and run the engine.
func needsFeeds(mode string) bool {
	switch mode {
	case "monitor", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	comparisonCache := redis.NewComparisonCache(redisClient)
	signalBus := redis.NewSignalBus(redisClient)
	deps.ComparisonCache = comparisonCache
	deps.SignalBus = signalBus
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.LockManager = redis.NewLockManager(redisClient)

	// --- PostgreSQL alert audit trail (optional) ---
	if cfg.Postgres.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Postgres.DSN,
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
			MaxConns: cfg.Postgres.PoolMaxConns,
			MinConns: cfg.Postgres.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
			}
		}

		deps.AlertStore = postgres.NewAlertStore(pgClient.Pool())
	}

	// --- S3 snapshot archival (optional) ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })

		deps.BlobWriter = s3blob.NewWriter(s3Client)
	}

	// --- Venue clients ---
	if needsFeeds(cfg.Mode) {
		hl := hyperliquid.NewClient(cfg.Hyperliquid.BaseURL)
		hl.SkipBuilders = !cfg.Hyperliquid.FetchBuilders
		deps.Hyperliquid = hl

		deps.Ostium = ostium.NewClient(cfg.Ostium.SubgraphURL, cfg.Ostium.PricesURL)

		if cfg.Ostium.ArbitrumRPCURL != "" {
			chain, err := ostium.DialChain(ctx, cfg.Ostium.ArbitrumRPCURL)
			if err != nil {
				// Freshness checking is advisory; run without it.
				logger.Warn("wire: arbitrum rpc unavailable, skipping chain freshness checks",
					slog.String("error", err.Error()),
				)
			} else {
				closers = append(closers, chain.Close)
				deps.Chain = chain
			}
		}
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)
	deps.Alerter = notify.NewAlerter(
		deps.Notifier,
		deps.AlertStore,
		cfg.Arbitrage.MonitoredAssets,
		time.Duration(cfg.Arbitrage.CooldownSeconds)*time.Second,
		logger,
	)

	// --- Reconciliation engine ---
	resolver := fees.NewResolver(domain.FeeParams{
		Tier:        cfg.Arbitrage.Tier,
		DiscountPct: cfg.Arbitrage.DiscountPct,
	})
	table := match.NewTable(cfg.Arbitrage.Aliases, cfg.Arbitrage.PriorityAssets)

	sinks := []engine.Sink{comparisonCache, signalBus}
	if needsFeeds(cfg.Mode) {
		sinks = append(sinks, deps.Alerter)
	}

	deps.Engine = engine.New(table, resolver, engine.Config{
		PositionSizeUSD:   cfg.Arbitrage.PositionSizeUSD,
		MaxFundingHours:   cfg.Arbitrage.MaxFundingHours,
		ExpectedSpreadUSD: cfg.Arbitrage.ExpectedSpreadUSD,
	}, sinks, logger)

	return deps, cleanup, nil
}
