package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/minglew/perpscope/internal/domain"
)

// EventOpportunity is the event type emitted for profitable spreads.
const EventOpportunity = "arbitrage_opportunity"

// Alerter watches published comparisons and notifies when a monitored asset's
// spread covers the round-trip cost. A per-asset cooldown keeps a persistent
// spread from flooding the channels; sent alerts are recorded to the store
// for the recent-alerts API.
type Alerter struct {
	notifier  *Notifier
	store     domain.AlertStore
	monitored map[string]bool
	cooldown  time.Duration
	now       func() time.Time
	logger    *slog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewAlerter creates an Alerter. An empty monitored list watches every
// matched pair; store may be nil to skip persistence.
func NewAlerter(notifier *Notifier, store domain.AlertStore, monitored []string, cooldown time.Duration, logger *slog.Logger) *Alerter {
	watch := make(map[string]bool, len(monitored))
	for _, m := range monitored {
		watch[m] = true
	}
	return &Alerter{
		notifier:  notifier,
		store:     store,
		monitored: watch,
		cooldown:  cooldown,
		now:       time.Now,
		logger:    logger.With(slog.String("component", "alerter")),
		lastSent:  make(map[string]time.Time),
	}
}

// PublishComparison implements the engine sink: scan the pass for profitable
// monitored pairs and alert on each, subject to the cooldown.
func (a *Alerter) PublishComparison(ctx context.Context, c domain.Comparison) error {
	for _, pair := range c.Pairs {
		if len(a.monitored) > 0 && !a.monitored[pair.Canonical] {
			continue
		}

		exec, est, ok := profitableEstimate(pair.Arbitrage)
		if !ok || !a.shouldSend(pair.Canonical) {
			continue
		}

		alert := domain.Alert{
			ID:                 uuid.NewString(),
			Asset:              pair.Canonical,
			Execution:          exec,
			CurrentSpreadUSD:   est.CurrentSpreadUSD,
			BreakEvenSpreadUSD: est.BreakEvenSpreadUSD,
			TotalCostUSD:       est.TotalCostUSD,
			CreatedAt:          a.now().UTC(),
		}

		title := fmt.Sprintf("Arb opportunity: %s", pair.Name)
		message := fmt.Sprintf(
			"%s (%s)\nShort %s / long %s\nSpread: $%.2f (break-even $%.2f)\nRound-trip cost: $%.4f",
			pair.Name, exec,
			est.ShortVenue, est.LongVenue,
			est.CurrentSpreadUSD, est.BreakEvenSpreadUSD,
			est.TotalCostUSD,
		)

		if err := a.notifier.Notify(ctx, EventOpportunity, title, message); err != nil {
			a.logger.Warn("alert delivery failed",
				slog.String("asset", pair.Canonical),
				slog.String("error", err.Error()),
			)
		}

		if a.store != nil {
			if err := a.store.Record(ctx, alert); err != nil {
				a.logger.Warn("alert record failed",
					slog.String("asset", pair.Canonical),
					slog.String("error", err.Error()),
				)
			}
		}

		a.logger.Info("alert sent",
			slog.String("asset", pair.Canonical),
			slog.String("execution", string(exec)),
			slog.Float64("spread_usd", est.CurrentSpreadUSD),
		)
	}
	return nil
}

// profitableEstimate picks the execution assumption to alert on, preferring
// maker since its cost basis is lower.
func profitableEstimate(r domain.ArbResult) (domain.Execution, domain.Estimate, bool) {
	if r.Maker.SpreadCanProfit {
		return domain.ExecMaker, r.Maker, true
	}
	if r.Taker.SpreadCanProfit {
		return domain.ExecTaker, r.Taker, true
	}
	return "", domain.Estimate{}, false
}

func (a *Alerter) shouldSend(asset string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	if last, ok := a.lastSent[asset]; ok && now.Sub(last) < a.cooldown {
		return false
	}
	a.lastSent[asset] = now
	return true
}
