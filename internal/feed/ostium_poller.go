package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/minglew/perpscope/internal/domain"
	"github.com/minglew/perpscope/internal/platform/ostium"
)

// staleChainAfter is how far behind the Arbitrum head block may lag before
// the feed is flagged as suspect.
const staleChainAfter = 5 * time.Minute

// OstiumFetcher retrieves pairs and prices from the Ostium data sources.
type OstiumFetcher interface {
	GetPairs(ctx context.Context) ([]ostium.Pair, error)
	GetLatestPrices(ctx context.Context) ([]ostium.Price, error)
}

// OstiumPoller polls the Ostium subgraph and price feed, applies each
// processed batch to the engine, and cross-checks feed freshness against the
// Arbitrum chain head.
type OstiumPoller struct {
	fetcher  OstiumFetcher
	applier  SnapshotApplier
	archiver *BatchArchiver
	chain    domain.ChainProbe
	minOIUSD float64
	logger   *slog.Logger
}

// NewOstiumPoller creates a poller. archiver and chain may be nil to disable
// cold storage and the freshness probe.
func NewOstiumPoller(fetcher OstiumFetcher, applier SnapshotApplier, archiver *BatchArchiver, chain domain.ChainProbe, minOIUSD float64, logger *slog.Logger) *OstiumPoller {
	return &OstiumPoller{
		fetcher:  fetcher,
		applier:  applier,
		archiver: archiver,
		chain:    chain,
		minOIUSD: minOIUSD,
		logger:   logger.With(slog.String("component", "ostium_poller")),
	}
}

// Run executes a single poll: fetch pairs and prices, filter, apply.
func (p *OstiumPoller) Run(ctx context.Context) error {
	pairs, err := p.fetcher.GetPairs(ctx)
	if err != nil {
		return fmt.Errorf("fetching ostium pairs: %w", err)
	}
	prices, err := p.fetcher.GetLatestPrices(ctx)
	if err != nil {
		return fmt.Errorf("fetching ostium prices: %w", err)
	}

	batch := ostium.Process(pairs, prices, p.minOIUSD, time.Now().UTC())
	p.applier.ApplyOstium(batch)

	p.logger.Info("ostium batch applied",
		slog.Int("pairs", len(pairs)),
		slog.Int("kept", len(batch.Instruments)),
	)

	p.checkChainFreshness(ctx)

	if p.archiver != nil {
		if err := p.archiver.Archive(ctx, batch); err != nil {
			p.logger.Warn("batch archive failed", slog.String("error", err.Error()))
		}
	}
	return nil
}

// checkChainFreshness compares the Arbitrum head block time against the wall
// clock. A lagging head while prices keep publishing means the settlement
// chain view is stale; it is logged, never fatal.
func (p *OstiumPoller) checkChainFreshness(ctx context.Context) {
	if p.chain == nil {
		return
	}
	block, blockTime, err := p.chain.Head(ctx)
	if err != nil {
		p.logger.Warn("chain head probe failed", slog.String("error", err.Error()))
		return
	}
	if lag := time.Since(blockTime); lag > staleChainAfter {
		p.logger.Warn("arbitrum head is stale",
			slog.Uint64("block", block),
			slog.Duration("lag", lag),
		)
	}
}

// RunLoop polls on a repeating interval until the context is cancelled.
func (p *OstiumPoller) RunLoop(ctx context.Context, interval time.Duration) error {
	// Run immediately on start.
	if err := p.Run(ctx); err != nil {
		p.logger.Error("ostium poll failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("ostium poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Run(ctx); err != nil {
				p.logger.Error("ostium poll failed", slog.String("error", err.Error()))
			}
		}
	}
}
