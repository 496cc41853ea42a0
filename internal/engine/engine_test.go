package engine

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minglew/perpscope/internal/domain"
	"github.com/minglew/perpscope/internal/fees"
	"github.com/minglew/perpscope/internal/match"
)

type recordingSink struct {
	got chan domain.Comparison
	err error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{got: make(chan domain.Comparison, 16)}
}

func (s *recordingSink) PublishComparison(_ context.Context, c domain.Comparison) error {
	if s.err != nil {
		return s.err
	}
	s.got <- c
	return nil
}

func testEngine(sinks ...Sink) *Engine {
	matcher := match.NewTable(map[string]string{"XAU": "GOLD"}, []string{"GOLD", "BTC"})
	resolver := fees.NewResolver(domain.FeeParams{Tier: 0, DiscountPct: 4})
	cfg := Config{
		PositionSizeUSD:   1000,
		MaxFundingHours:   12,
		ExpectedSpreadUSD: map[string]float64{"GOLD": 0},
	}
	return New(matcher, resolver, cfg, sinks, slog.New(slog.DiscardHandler))
}

func hlBatch(ts time.Time, symbols ...string) domain.SnapshotBatch {
	b := domain.SnapshotBatch{Venue: domain.VenueHyperliquid, Timestamp: ts}
	for _, s := range symbols {
		b.Instruments = append(b.Instruments, domain.Instrument{
			Symbol: s, Venue: domain.VenueHyperliquid,
			Bid: 99, Mid: 100, Ask: 101,
			Carry: domain.Carry{Kind: domain.CarryFunding, HourlyPct: 0.001, Known: true},
		})
	}
	return b
}

func osBatch(ts time.Time, symbols ...string) domain.SnapshotBatch {
	b := domain.SnapshotBatch{Venue: domain.VenueOstium, Timestamp: ts}
	for _, s := range symbols {
		b.Instruments = append(b.Instruments, domain.Instrument{
			Symbol: s, Venue: domain.VenueOstium, Class: domain.ClassCommodity,
			Bid: 98, Mid: 99, Ask: 100,
			Carry: domain.Carry{Kind: domain.CarryRollover, HourlyPct: 0.0005, Known: true},
		})
	}
	return b
}

func TestRunOncePairsAndViews(t *testing.T) {
	e := testEngine()
	now := time.Now().UTC()

	e.ApplyHyperliquid(hlBatch(now, "xyz:GOLD", "BTC"))
	e.ApplyOstium(osBatch(now, "XAU", "SPX"))

	c := e.RunOnce()

	require.Len(t, c.Pairs, 1)
	p := c.Pairs[0]
	assert.Equal(t, "GOLD", p.Canonical)
	assert.Equal(t, 2, p.HyperliquidFee.Legs)
	assert.Equal(t, 1, p.OstiumFee.Legs)
	assert.NotZero(t, p.Arbitrage.Maker.TotalCostUSD)
	assert.NotEmpty(t, c.PassID)

	// Venue views carry every instrument, matched or not, with fees resolved
	// and the priority asset first.
	require.Len(t, c.Hyperliquid.Instruments, 2)
	assert.Equal(t, "xyz:GOLD", c.Hyperliquid.Instruments[0].Symbol)
	require.Len(t, c.Ostium.Instruments, 2)
	assert.Equal(t, "XAU", c.Ostium.Instruments[0].Symbol)
	assert.Equal(t, now, c.Hyperliquid.Timestamp)
}

func TestRunOnceNoDataYetVersusEmpty(t *testing.T) {
	e := testEngine()
	now := time.Now().UTC()

	// Ostium has answered with zero instruments; Hyperliquid has never
	// answered. The timestamps must tell the two apart.
	e.ApplyOstium(osBatch(now))
	c := e.RunOnce()

	assert.Empty(t, c.Pairs)
	assert.True(t, c.Hyperliquid.Timestamp.IsZero())
	assert.Equal(t, now, c.Ostium.Timestamp)
}

func TestSetFeeParamsRecomputes(t *testing.T) {
	e := testEngine()
	now := time.Now().UTC()
	e.ApplyHyperliquid(hlBatch(now, "BTC"))
	e.ApplyOstium(osBatch(now, "BTC"))

	before := e.RunOnce()
	e.SetFeeParams(domain.FeeParams{Tier: 6, DiscountPct: 0})
	after := e.RunOnce()

	require.Len(t, before.Pairs, 1)
	require.Len(t, after.Pairs, 1)
	assert.Greater(t,
		before.Pairs[0].HyperliquidFee.TakerPct,
		after.Pairs[0].HyperliquidFee.TakerPct,
	)
	assert.Equal(t, 6, after.FeeParams.Tier)
}

func TestRunPublishesToSinks(t *testing.T) {
	sink := newRecordingSink()
	e := testEngine(sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = e.Run(ctx)
	}()

	now := time.Now().UTC()
	e.ApplyHyperliquid(hlBatch(now, "BTC"))
	e.ApplyOstium(osBatch(now, "BTC"))

	var c domain.Comparison
	select {
	case c = <-sink.got:
	case <-time.After(2 * time.Second):
		t.Fatal("no comparison published")
	}
	assert.NotEmpty(t, c.PassID)

	cancel()
	<-done
}

func TestFailingSinkDoesNotBlockOthers(t *testing.T) {
	bad := newRecordingSink()
	bad.err = errors.New("sink down")
	good := newRecordingSink()
	e := testEngine(bad, good)

	now := time.Now().UTC()
	e.ApplyHyperliquid(hlBatch(now, "BTC"))
	e.ApplyOstium(osBatch(now, "BTC"))

	c := e.RunOnce()
	e.publish(context.Background(), c)

	select {
	case got := <-good.got:
		assert.Equal(t, c.PassID, got.PassID)
	default:
		t.Fatal("healthy sink never received the comparison")
	}
}

func TestKickCoalesces(t *testing.T) {
	e := testEngine()
	now := time.Now().UTC()

	// A burst of updates before the loop drains the channel collapses into
	// a single pending pass.
	for i := 0; i < 5; i++ {
		e.ApplyHyperliquid(hlBatch(now, "BTC"))
	}
	assert.Len(t, e.kick, 1)
}

func TestLatest(t *testing.T) {
	e := testEngine()
	_, ok := e.Latest()
	assert.False(t, ok)

	now := time.Now().UTC()
	e.ApplyHyperliquid(hlBatch(now, "BTC"))
	e.ApplyOstium(osBatch(now, "BTC"))
	c := e.RunOnce()

	got, ok := e.Latest()
	require.True(t, ok)
	assert.Equal(t, c.PassID, got.PassID)
}
