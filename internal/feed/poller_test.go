package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minglew/perpscope/internal/domain"
	"github.com/minglew/perpscope/internal/platform/hyperliquid"
	"github.com/minglew/perpscope/internal/platform/ostium"
)

type fakeApplier struct {
	hl []domain.SnapshotBatch
	os []domain.SnapshotBatch
}

func (a *fakeApplier) ApplyHyperliquid(b domain.SnapshotBatch) { a.hl = append(a.hl, b) }
func (a *fakeApplier) ApplyOstium(b domain.SnapshotBatch)      { a.os = append(a.os, b) }

type fakeHLFetcher struct {
	perps []hyperliquid.Perpetual
	err   error
}

func (f *fakeHLFetcher) FetchAll(context.Context) ([]hyperliquid.Perpetual, error) {
	return f.perps, f.err
}

type fakeOSFetcher struct {
	pairs  []ostium.Pair
	prices []ostium.Price
	err    error
}

func (f *fakeOSFetcher) GetPairs(context.Context) ([]ostium.Pair, error) { return f.pairs, f.err }
func (f *fakeOSFetcher) GetLatestPrices(context.Context) ([]ostium.Price, error) {
	return f.prices, nil
}

type fakeBlob struct {
	keys []string
	err  error
}

func (b *fakeBlob) Put(_ context.Context, path string, _ io.Reader, _ string) error {
	if b.err != nil {
		return b.err
	}
	b.keys = append(b.keys, path)
	return nil
}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestHyperliquidPollerAppliesBatch(t *testing.T) {
	fetcher := &fakeHLFetcher{perps: []hyperliquid.Perpetual{
		{Coin: "BTC", Ctx: hyperliquid.AssetCtx{DayNtlVlm: "350000000", MidPx: "95636.5", Funding: "0.0000125"}},
	}}
	applier := &fakeApplier{}

	p := NewHyperliquidPoller(fetcher, applier, nil, 2_000_000, discard())
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, applier.hl, 1)
	assert.Len(t, applier.hl[0].Instruments, 1)
	assert.False(t, applier.hl[0].Empty())
}

func TestHyperliquidPollerFetchErrorDoesNotApply(t *testing.T) {
	fetcher := &fakeHLFetcher{err: errors.New("api down")}
	applier := &fakeApplier{}

	p := NewHyperliquidPoller(fetcher, applier, nil, 0, discard())
	err := p.Run(context.Background())

	require.Error(t, err)
	assert.Empty(t, applier.hl, "a failed fetch must not replace the last good batch")
}

func TestOstiumPollerAppliesBatch(t *testing.T) {
	fetcher := &fakeOSFetcher{
		pairs: []ostium.Pair{{
			From: "XAU", To: "USD",
			LongOI: "1500000000000000000000", ShortOI: "900000000000000000000",
			RolloverFeePerBlock: "500000000",
			Group:               ostium.PairGroup{ID: "2"},
		}},
		prices: []ostium.Price{{From: "XAU", To: "USD", Bid: 2650.1, Mid: 2650.4, Ask: 2650.7}},
	}
	applier := &fakeApplier{}

	p := NewOstiumPoller(fetcher, applier, nil, nil, 2_000_000, discard())
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, applier.os, 1)
	assert.Len(t, applier.os[0].Instruments, 1)
}

func TestArchiverKeyLayout(t *testing.T) {
	blob := &fakeBlob{}
	a := NewBatchArchiver(blob, "raw", discard())

	ts := time.Date(2026, 8, 25, 12, 30, 0, 0, time.UTC)
	batch := domain.SnapshotBatch{
		Venue:       domain.VenueHyperliquid,
		Instruments: []domain.Instrument{{Symbol: "BTC"}},
		Timestamp:   ts,
	}
	require.NoError(t, a.Archive(context.Background(), batch))

	require.Len(t, blob.keys, 1)
	assert.True(t, strings.HasPrefix(blob.keys[0], "raw/hyperliquid/2026-08-25/"))
	assert.True(t, strings.HasSuffix(blob.keys[0], ".json"))
}

func TestArchiverSkipsEmptyBatch(t *testing.T) {
	blob := &fakeBlob{}
	a := NewBatchArchiver(blob, "raw", discard())

	require.NoError(t, a.Archive(context.Background(), domain.SnapshotBatch{}))
	assert.Empty(t, blob.keys)
}

func TestPollerArchiveFailureIsNonFatal(t *testing.T) {
	fetcher := &fakeHLFetcher{perps: []hyperliquid.Perpetual{
		{Coin: "BTC", Ctx: hyperliquid.AssetCtx{DayNtlVlm: "350000000", MidPx: "95636.5"}},
	}}
	applier := &fakeApplier{}
	archiver := NewBatchArchiver(&fakeBlob{err: errors.New("bucket gone")}, "raw", discard())

	p := NewHyperliquidPoller(fetcher, applier, archiver, 0, discard())
	assert.NoError(t, p.Run(context.Background()))
	assert.Len(t, applier.hl, 1)
}
