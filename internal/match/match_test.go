package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minglew/perpscope/internal/domain"
)

func hlInst(symbol string) domain.Instrument {
	return domain.Instrument{Symbol: symbol, Venue: domain.VenueHyperliquid, Mid: 100}
}

func osInst(symbol string) domain.Instrument {
	return domain.Instrument{Symbol: symbol, Venue: domain.VenueOstium, Mid: 100}
}

func batch(venue domain.Venue, insts ...domain.Instrument) domain.SnapshotBatch {
	return domain.SnapshotBatch{Venue: venue, Instruments: insts, Timestamp: time.Now()}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "GOLD", Canonical("xyz:GOLD"))
	assert.Equal(t, "GOLD", Canonical("gold"))
	assert.Equal(t, "GOLD", Canonical(" GOLD "))
	assert.Equal(t, "BTC", Canonical("a:b:BTC"))
	assert.Equal(t, "BTC", Canonical("BTC"))
}

func TestMatchIdentityAndAlias(t *testing.T) {
	tbl := NewTable(map[string]string{"XAU": "GOLD", "HG": "COPPER"}, nil)

	hl := batch(domain.VenueHyperliquid, hlInst("BTC"), hlInst("xyz:GOLD"), hlInst("xyz:COPPER"), hlInst("ETH"))
	os := batch(domain.VenueOstium, osInst("XAU"), osInst("btc"), osInst("HG"), osInst("SPX"))

	pairs := tbl.Match(hl, os)
	require.Len(t, pairs, 3)

	byKey := map[string]domain.MatchedPair{}
	for _, p := range pairs {
		byKey[p.Canonical] = p
	}

	// Identity match is case-insensitive.
	p, ok := byKey["BTC"]
	require.True(t, ok)
	assert.Equal(t, "BTC", p.Name)
	assert.Equal(t, "btc", p.Ostium.Symbol)

	// Alias match keeps both venue-native symbols and names the pair with both.
	p, ok = byKey["GOLD"]
	require.True(t, ok)
	assert.Equal(t, "GOLD / XAU", p.Name)
	assert.Equal(t, "xyz:GOLD", p.Hyperliquid.Symbol)
	assert.Equal(t, "XAU", p.Ostium.Symbol)

	// ETH and SPX are single-venue listings and must not pair.
	_, ok = byKey["ETH"]
	assert.False(t, ok)
	_, ok = byKey["SPX"]
	assert.False(t, ok)
}

func TestMatchSymmetricSafe(t *testing.T) {
	tbl := NewTable(map[string]string{"XAU": "GOLD"}, nil)

	hl := batch(domain.VenueHyperliquid, hlInst("xyz:GOLD"), hlInst("BTC"))
	os := batch(domain.VenueOstium, osInst("XAU"), osInst("BTC"))

	forward := tbl.Match(hl, os)
	reversed := tbl.Match(os, hl)

	require.Equal(t, len(forward), len(reversed))
	for i := range forward {
		assert.Equal(t, forward[i], reversed[i])
		assert.Equal(t, domain.VenueHyperliquid, reversed[i].Hyperliquid.Venue)
		assert.Equal(t, domain.VenueOstium, reversed[i].Ostium.Venue)
	}
}

func TestMatchPrioritySort(t *testing.T) {
	tbl := NewTable(
		map[string]string{"XAU": "GOLD", "XAG": "SILVER"},
		[]string{"GOLD", "SILVER", "COPPER"},
	)

	hl := batch(domain.VenueHyperliquid,
		hlInst("BTC"), hlInst("ETH"), hlInst("xyz:SILVER"), hlInst("xyz:GOLD"))
	os := batch(domain.VenueOstium,
		osInst("BTC"), osInst("ETH"), osInst("XAG"), osInst("XAU"))

	pairs := tbl.Match(hl, os)
	require.Len(t, pairs, 4)

	// Priority assets first in priority-list order, then insertion order.
	assert.Equal(t, "GOLD", pairs[0].Canonical)
	assert.Equal(t, "SILVER", pairs[1].Canonical)
	assert.Equal(t, "BTC", pairs[2].Canonical)
	assert.Equal(t, "ETH", pairs[3].Canonical)
}

func TestPriorityTieBreakLowestIndexWins(t *testing.T) {
	// SILVER appears twice in the priority list; the first entry's index is
	// the one that counts, so SILVER still sorts ahead of COPPER.
	tbl := NewTable(nil, []string{"SILVER", "COPPER", "SILVER"})

	hl := batch(domain.VenueHyperliquid, hlInst("COPPER"), hlInst("SILVER"))
	os := batch(domain.VenueOstium, osInst("COPPER"), osInst("SILVER"))

	pairs := tbl.Match(hl, os)
	require.Len(t, pairs, 2)
	assert.Equal(t, "SILVER", pairs[0].Canonical)
	assert.Equal(t, "COPPER", pairs[1].Canonical)
}

func TestPriorityMatchesAliasName(t *testing.T) {
	// The priority list may name the Ostium-side symbol; the pair still ranks.
	tbl := NewTable(map[string]string{"XAU": "GOLD"}, []string{"XAU"})

	hl := batch(domain.VenueHyperliquid, hlInst("BTC"), hlInst("xyz:GOLD"))
	os := batch(domain.VenueOstium, osInst("BTC"), osInst("XAU"))

	pairs := tbl.Match(hl, os)
	require.Len(t, pairs, 2)
	assert.Equal(t, "GOLD", pairs[0].Canonical)
}

func TestSortInstrumentsUsesAliasResolution(t *testing.T) {
	tbl := NewTable(map[string]string{"XAU": "GOLD"}, []string{"GOLD"})

	insts := []domain.Instrument{osInst("BTC"), osInst("XAU"), osInst("SPX")}
	tbl.SortInstruments(insts)

	assert.Equal(t, "XAU", insts[0].Symbol)
	assert.Equal(t, "BTC", insts[1].Symbol)
	assert.Equal(t, "SPX", insts[2].Symbol)
}

func TestMatchDuplicateOstiumKeyFirstWins(t *testing.T) {
	tbl := NewTable(map[string]string{"XAU": "GOLD"}, nil)

	hl := batch(domain.VenueHyperliquid, hlInst("xyz:GOLD"))
	os := batch(domain.VenueOstium, osInst("XAU"), osInst("GOLD"))

	pairs := tbl.Match(hl, os)
	require.Len(t, pairs, 1)
	assert.Equal(t, "XAU", pairs[0].Ostium.Symbol)
}

func TestMatchEmptyBatches(t *testing.T) {
	tbl := NewTable(nil, nil)

	hl := batch(domain.VenueHyperliquid, hlInst("BTC"))
	assert.Empty(t, tbl.Match(hl, batch(domain.VenueOstium)))
	assert.Empty(t, tbl.Match(batch(domain.VenueHyperliquid), batch(domain.VenueOstium)))
}
