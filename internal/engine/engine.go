// Package engine holds the reconciliation core: the latest snapshot batch per
// venue, the matcher, the fee resolver, and the calculator, driven by a single
// consumer loop that recomputes the full comparison whenever either venue's
// data or the fee params change.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minglew/perpscope/internal/arb"
	"github.com/minglew/perpscope/internal/domain"
	"github.com/minglew/perpscope/internal/fees"
	"github.com/minglew/perpscope/internal/match"
)

// Sink receives each published comparison. Sinks are fan-out consumers (cache,
// signal bus, alerter); a failing sink is logged and skipped, never fatal.
type Sink interface {
	PublishComparison(ctx context.Context, c domain.Comparison) error
}

// Config are the calculation knobs applied on every pass.
type Config struct {
	// PositionSizeUSD is the per-leg notional the analysis assumes.
	PositionSizeUSD float64
	// MaxFundingHours is the horizon for funding and combined break-even.
	MaxFundingHours float64
	// ExpectedSpreadUSD maps canonical asset keys to the residual spread
	// floor used by the strict verdict. Missing keys default to zero.
	ExpectedSpreadUSD map[string]float64
}

// Engine is the reconciliation orchestrator. Snapshot batches are replaced
// wholesale, never merged; each pass reads a consistent copy captured at pass
// start, so in-flight updates wait for the next pass.
type Engine struct {
	matcher *match.Table
	fees    *fees.Resolver
	cfg     Config
	sinks   []Sink
	logger  *slog.Logger

	mu sync.Mutex
	hl domain.SnapshotBatch
	os domain.SnapshotBatch

	// kick is buffered with capacity 1: a burst of updates mid-pass coalesces
	// into exactly one follow-up pass.
	kick chan struct{}

	lastMu sync.RWMutex
	last   domain.Comparison
	hasRun bool
}

// New creates an Engine. Sinks receive every published comparison in order.
func New(matcher *match.Table, resolver *fees.Resolver, cfg Config, sinks []Sink, logger *slog.Logger) *Engine {
	return &Engine{
		matcher: matcher,
		fees:    resolver,
		cfg:     cfg,
		sinks:   sinks,
		logger:  logger.With(slog.String("component", "engine")),
		kick:    make(chan struct{}, 1),
	}
}

// ApplyHyperliquid replaces the Hyperliquid snapshot batch and schedules a
// reconciliation pass.
func (e *Engine) ApplyHyperliquid(b domain.SnapshotBatch) {
	e.mu.Lock()
	e.hl = b
	e.mu.Unlock()
	e.schedule()
}

// ApplyOstium replaces the Ostium snapshot batch and schedules a pass.
func (e *Engine) ApplyOstium(b domain.SnapshotBatch) {
	e.mu.Lock()
	e.os = b
	e.mu.Unlock()
	e.schedule()
}

// SetFeeParams updates the tier/discount and schedules an immediate recompute
// from the cached snapshots, without waiting for new venue data.
func (e *Engine) SetFeeParams(p domain.FeeParams) {
	e.fees.SetParams(p)
	e.schedule()
}

// FeeParams returns the currently effective (clamped) tier and discount.
func (e *Engine) FeeParams() domain.FeeParams {
	return e.fees.Params()
}

// Latest returns the most recently published comparison. ok is false before
// the first pass has run.
func (e *Engine) Latest() (c domain.Comparison, ok bool) {
	e.lastMu.RLock()
	defer e.lastMu.RUnlock()
	return e.last, e.hasRun
}

func (e *Engine) schedule() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Run drives the consumer loop until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("reconciliation loop starting",
		slog.Float64("position_size_usd", e.cfg.PositionSizeUSD),
		slog.Float64("max_funding_hours", e.cfg.MaxFundingHours),
	)
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("reconciliation loop stopped")
			return ctx.Err()
		case <-e.kick:
			c := e.RunOnce()
			e.publish(ctx, c)
		}
	}
}

// RunOnce executes a single reconciliation pass over the current snapshots
// and returns the comparison without publishing it.
func (e *Engine) RunOnce() domain.Comparison {
	e.mu.Lock()
	hl, os := e.hl, e.os
	e.mu.Unlock()

	params := e.fees.Params()

	c := domain.Comparison{
		PassID:      uuid.NewString(),
		FeeParams:   params,
		GeneratedAt: time.Now().UTC(),
	}

	pairs := e.matcher.Match(hl, os)
	c.Pairs = make([]domain.PairComparison, 0, len(pairs))
	for _, p := range pairs {
		hlFee := e.fees.Resolve(p.Hyperliquid)
		osFee := e.fees.Resolve(p.Ostium)
		c.Pairs = append(c.Pairs, domain.PairComparison{
			MatchedPair:    p,
			HyperliquidFee: hlFee,
			OstiumFee:      osFee,
			Arbitrage:      arb.Calculate(p.Hyperliquid, p.Ostium, hlFee, osFee, e.pairParams(p.Canonical)),
		})
	}

	c.Hyperliquid = e.venueView(hl)
	c.Ostium = e.venueView(os)

	e.lastMu.Lock()
	e.last, e.hasRun = c, true
	e.lastMu.Unlock()

	e.logger.Debug("reconciliation pass complete",
		slog.String("pass_id", c.PassID),
		slog.Int("pairs", len(c.Pairs)),
		slog.Int("hl_instruments", len(hl.Instruments)),
		slog.Int("os_instruments", len(os.Instruments)),
	)
	return c
}

func (e *Engine) pairParams(canonical string) arb.Params {
	return arb.Params{
		PositionSizeUSD:   e.cfg.PositionSizeUSD,
		MaxFundingHours:   e.cfg.MaxFundingHours,
		ExpectedSpreadUSD: e.cfg.ExpectedSpreadUSD[canonical],
	}
}

// venueView annotates one venue's list with resolved fees, in the same
// priority order as the matched pairs. A zero batch timestamp flows through
// untouched so consumers can tell "no data yet" from "no pairs".
func (e *Engine) venueView(b domain.SnapshotBatch) domain.VenueView {
	insts := make([]domain.Instrument, len(b.Instruments))
	copy(insts, b.Instruments)
	e.matcher.SortInstruments(insts)

	view := domain.VenueView{
		Venue:       b.Venue,
		Instruments: make([]domain.VenueInstrument, 0, len(insts)),
		Timestamp:   b.Timestamp,
	}
	for _, inst := range insts {
		view.Instruments = append(view.Instruments, domain.VenueInstrument{
			Instrument: inst,
			Fee:        e.fees.Resolve(inst),
		})
	}
	return view
}

func (e *Engine) publish(ctx context.Context, c domain.Comparison) {
	for _, s := range e.sinks {
		if err := s.PublishComparison(ctx, c); err != nil {
			e.logger.Warn("comparison sink failed",
				slog.String("pass_id", c.PassID),
				slog.String("error", err.Error()),
			)
		}
	}
}
