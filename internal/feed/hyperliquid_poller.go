// Package feed polls both venues on independent intervals and feeds each
// normalized snapshot batch into the reconciliation engine, optionally
// archiving the batch to cold storage on the way through.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minglew/perpscope/internal/domain"
	"github.com/minglew/perpscope/internal/platform/hyperliquid"
)

// HyperliquidFetcher retrieves every perpetual across all dexes.
type HyperliquidFetcher interface {
	FetchAll(ctx context.Context) ([]hyperliquid.Perpetual, error)
}

// SnapshotApplier receives replaced snapshot batches.
type SnapshotApplier interface {
	ApplyHyperliquid(b domain.SnapshotBatch)
	ApplyOstium(b domain.SnapshotBatch)
}

// HyperliquidPoller polls the Hyperliquid info API and applies each processed
// batch to the engine.
type HyperliquidPoller struct {
	fetcher      HyperliquidFetcher
	applier      SnapshotApplier
	archiver     *BatchArchiver
	minVolumeUSD float64
	logger       *slog.Logger
}

// NewHyperliquidPoller creates a poller. archiver may be nil to disable cold
// storage.
func NewHyperliquidPoller(fetcher HyperliquidFetcher, applier SnapshotApplier, archiver *BatchArchiver, minVolumeUSD float64, logger *slog.Logger) *HyperliquidPoller {
	return &HyperliquidPoller{
		fetcher:      fetcher,
		applier:      applier,
		archiver:     archiver,
		minVolumeUSD: minVolumeUSD,
		logger:       logger.With(slog.String("component", "hyperliquid_poller")),
	}
}

// Run executes a single poll: fetch, filter, apply.
func (p *HyperliquidPoller) Run(ctx context.Context) error {
	perps, err := p.fetcher.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetching hyperliquid perpetuals: %w", err)
	}

	batch := hyperliquid.Process(perps, p.minVolumeUSD, time.Now().UTC())
	p.applier.ApplyHyperliquid(batch)

	p.logger.Info("hyperliquid batch applied",
		slog.Int("fetched", len(perps)),
		slog.Int("kept", len(batch.Instruments)),
	)

	if p.archiver != nil {
		if err := p.archiver.Archive(ctx, batch); err != nil {
			p.logger.Warn("batch archive failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// RunLoop polls on a repeating interval until the context is cancelled.
func (p *HyperliquidPoller) RunLoop(ctx context.Context, interval time.Duration) error {
	// Run immediately on start.
	if err := p.Run(ctx); err != nil {
		p.logger.Error("hyperliquid poll failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("hyperliquid poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Run(ctx); err != nil {
				p.logger.Error("hyperliquid poll failed", slog.String("error", err.Error()))
			}
		}
	}
}
