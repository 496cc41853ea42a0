package notify

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minglew/perpscope/internal/domain"
)

type fakeSender struct {
	titles []string
}

func (s *fakeSender) Send(_ context.Context, title, _ string) error {
	s.titles = append(s.titles, title)
	return nil
}

func (s *fakeSender) Name() string { return "fake" }

type fakeAlertStore struct {
	recorded []domain.Alert
}

func (s *fakeAlertStore) Record(_ context.Context, a domain.Alert) error {
	s.recorded = append(s.recorded, a)
	return nil
}

func (s *fakeAlertStore) ListRecent(context.Context, int) ([]domain.Alert, error) {
	return s.recorded, nil
}

func profitablePair(canonical string) domain.PairComparison {
	return domain.PairComparison{
		MatchedPair: domain.MatchedPair{Name: canonical, Canonical: canonical},
		Arbitrage: domain.ArbResult{
			Maker: domain.Estimate{
				TotalCostUSD:       0.688,
				BreakEvenSpreadUSD: 65.56,
				CurrentSpreadUSD:   693.12,
				SpreadCanProfit:    true,
				ShortVenue:         domain.VenueHyperliquid,
				LongVenue:          domain.VenueOstium,
			},
		},
	}
}

func unprofitablePair(canonical string) domain.PairComparison {
	return domain.PairComparison{
		MatchedPair: domain.MatchedPair{Name: canonical, Canonical: canonical},
	}
}

func comparison(pairs ...domain.PairComparison) domain.Comparison {
	return domain.Comparison{PassID: "pass-1", Pairs: pairs, GeneratedAt: time.Now().UTC()}
}

func newTestAlerter(sender *fakeSender, store domain.AlertStore, monitored []string) *Alerter {
	logger := slog.New(slog.DiscardHandler)
	notifier := NewNotifier([]Sender{sender}, nil, logger)
	return NewAlerter(notifier, store, monitored, time.Minute, logger)
}

func TestAlerterSendsAndRecords(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeAlertStore{}
	a := newTestAlerter(sender, store, []string{"GOLD"})

	err := a.PublishComparison(context.Background(), comparison(profitablePair("GOLD")))
	require.NoError(t, err)

	require.Len(t, sender.titles, 1)
	assert.Contains(t, sender.titles[0], "GOLD")

	require.Len(t, store.recorded, 1)
	rec := store.recorded[0]
	assert.Equal(t, "GOLD", rec.Asset)
	assert.Equal(t, domain.ExecMaker, rec.Execution)
	assert.NotEmpty(t, rec.ID)
	assert.InDelta(t, 693.12, rec.CurrentSpreadUSD, 1e-9)
}

func TestAlerterIgnoresUnmonitoredAssets(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAlerter(sender, nil, []string{"GOLD"})

	_ = a.PublishComparison(context.Background(), comparison(profitablePair("BTC")))
	assert.Empty(t, sender.titles)
}

func TestAlerterEmptyMonitoredWatchesAll(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAlerter(sender, nil, nil)

	_ = a.PublishComparison(context.Background(), comparison(profitablePair("BTC")))
	assert.Len(t, sender.titles, 1)
}

func TestAlerterSkipsUnprofitablePairs(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAlerter(sender, nil, nil)

	_ = a.PublishComparison(context.Background(), comparison(unprofitablePair("GOLD")))
	assert.Empty(t, sender.titles)
}

func TestAlerterCooldown(t *testing.T) {
	sender := &fakeSender{}
	a := newTestAlerter(sender, nil, []string{"GOLD"})

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	c := comparison(profitablePair("GOLD"))
	_ = a.PublishComparison(context.Background(), c)
	_ = a.PublishComparison(context.Background(), c)
	require.Len(t, sender.titles, 1, "second alert inside the cooldown must be suppressed")

	// Past the cooldown the same asset alerts again.
	now = now.Add(2 * time.Minute)
	_ = a.PublishComparison(context.Background(), c)
	assert.Len(t, sender.titles, 2)

	// The cooldown is per asset: another asset is unaffected.
	_ = a.PublishComparison(context.Background(), comparison(profitablePair("SILVER")))
	assert.Len(t, sender.titles, 2, "SILVER is not monitored")
}

func TestAlerterPrefersMaker(t *testing.T) {
	sender := &fakeSender{}
	store := &fakeAlertStore{}
	a := newTestAlerter(sender, store, nil)

	pair := profitablePair("GOLD")
	pair.Arbitrage.Taker = pair.Arbitrage.Maker
	_ = a.PublishComparison(context.Background(), comparison(pair))

	require.Len(t, store.recorded, 1)
	assert.Equal(t, domain.ExecMaker, store.recorded[0].Execution)
}
