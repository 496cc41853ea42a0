package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/minglew/perpscope/internal/cache/redis"
	"github.com/minglew/perpscope/internal/domain"
	"github.com/minglew/perpscope/internal/feed"
	"github.com/minglew/perpscope/internal/server"
	"github.com/minglew/perpscope/internal/server/handler"
	"github.com/minglew/perpscope/internal/server/middleware"
	"github.com/minglew/perpscope/internal/server/ws"
)

const (
	// monitorLockKey is the leadership lock held by the replica that polls
	// venues and sends alerts. Other replicas stand by until it is released
	// or expires.
	monitorLockKey = "monitor-leader"
	monitorLockTTL = 30 * time.Second

	// standbyRetryInterval is how often a standby replica retries the lock.
	standbyRetryInterval = 10 * time.Second
)

// MonitorMode polls both venues, runs the reconciliation engine, and sends
// alerts. Only one replica does this at a time; the rest wait on the
// leadership lock.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")

	unlock, err := a.acquireLeadership(ctx, deps)
	if err != nil {
		return err
	}
	defer unlock()

	g, ctx := errgroup.WithContext(ctx)
	a.startFeeds(ctx, g, deps)
	return g.Wait()
}

// ServerMode serves the HTTP + WebSocket API over the cached comparison. It
// does not poll venues; a monitor replica must be feeding the cache.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// FullMode runs the monitor and the API server in one process.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}

	g.Go(func() error {
		unlock, err := a.acquireLeadership(ctx, deps)
		if err != nil {
			return err
		}
		defer unlock()

		fg, ctx := errgroup.WithContext(ctx)
		a.startFeeds(ctx, fg, deps)
		return fg.Wait()
	})

	return g.Wait()
}

// acquireLeadership blocks until this replica holds the monitor lock or the
// context is cancelled.
func (a *App) acquireLeadership(ctx context.Context, deps *Dependencies) (func(), error) {
	for {
		unlock, err := deps.LockManager.Acquire(ctx, monitorLockKey, monitorLockTTL)
		if err == nil {
			a.logger.InfoContext(ctx, "monitor leadership acquired")
			return unlock, nil
		}
		if !errors.Is(err, domain.ErrLockHeld) {
			return nil, fmt.Errorf("app: acquire monitor lock: %w", err)
		}

		a.logger.InfoContext(ctx, "monitor lock held elsewhere, standing by",
			slog.Duration("retry_in", standbyRetryInterval),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(standbyRetryInterval):
		}
	}
}

// startFeeds launches the venue pollers and the reconciliation engine.
func (a *App) startFeeds(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	var archiver *feed.BatchArchiver
	if deps.BlobWriter != nil {
		archiver = feed.NewBatchArchiver(deps.BlobWriter, a.cfg.S3.Prefix, a.logger)
	}

	hlPoller := feed.NewHyperliquidPoller(
		deps.Hyperliquid, deps.Engine, archiver,
		a.cfg.Hyperliquid.MinVolumeUSD, a.logger,
	)
	osPoller := feed.NewOstiumPoller(
		deps.Ostium, deps.Engine, archiver, deps.Chain,
		a.cfg.Ostium.MinOIUSD, a.logger,
	)

	g.Go(func() error {
		return hlPoller.RunLoop(ctx, a.cfg.Hyperliquid.PollInterval.Duration)
	})
	g.Go(func() error {
		return osPoller.RunLoop(ctx, a.cfg.Ostium.PollInterval.Duration)
	})
	g.Go(func() error {
		return deps.Engine.Run(ctx)
	})
}

// startHTTPServer builds the handlers, WebSocket hub, and HTTP server, and
// registers their goroutines on the group.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	hub := ws.NewHub(deps.SignalBus, deps.ComparisonCache, redis.ComparisonChannel, a.logger)
	g.Go(func() error {
		err := hub.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	handlers := server.Handlers{
		Health:     handler.NewHealthHandler(a.logger),
		Comparison: handler.NewComparisonHandler(deps.ComparisonCache, a.logger),
		Venues:     handler.NewVenuesHandler(deps.ComparisonCache, a.logger),
		Fees:       handler.NewFeesHandler(deps.Engine, a.logger),
	}
	if deps.AlertStore != nil {
		handlers.Alerts = handler.NewAlertsHandler(deps.AlertStore, a.logger)
	}

	var rateLimit server.RateLimiterFunc
	if a.cfg.Server.RateLimit > 0 {
		rateLimit = middleware.RateLimit(
			deps.RateLimiter,
			a.cfg.Server.RateLimit,
			a.cfg.Server.RateLimitWindow.Duration,
		)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.APIKey,
	}, handlers, hub, rateLimit, a.logger)

	g.Go(func() error {
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			<-errCh
			return ctx.Err()
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	})
}
