package hyperliquid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minglew/perpscope/internal/domain"
)

func perp(coin, dex, volume, mid, funding string, impact []string) Perpetual {
	return Perpetual{
		Coin: coin,
		Dex:  dex,
		Ctx: AssetCtx{
			Funding:   funding,
			DayNtlVlm: volume,
			MidPx:     mid,
			ImpactPxs: impact,
		},
	}
}

func TestProcessFiltersAndNormalizes(t *testing.T) {
	now := time.Now().UTC()
	perps := []Perpetual{
		perp("BTC", "", "350000000", "95636.5", "0.0000125", []string{"95636.0", "95637.0"}),
		perp("DOGE", "", "1500000", "0.32", "0.0000125", nil), // below $2M volume
		perp("GOLD", "xyz", "5000000", "2650.4", "0.0000010", []string{"2650.1", "2650.7"}),
		perp("GHOST", "", "", "1.0", "", nil), // no volume reported
	}

	batch := Process(perps, 2_000_000, now)

	require.Len(t, batch.Instruments, 2)
	assert.Equal(t, domain.VenueHyperliquid, batch.Venue)
	assert.Equal(t, now, batch.Timestamp)

	// Ordered by volume descending.
	btc := batch.Instruments[0]
	assert.Equal(t, "BTC", btc.Symbol)
	assert.Equal(t, domain.ClassCrypto, btc.Class)
	assert.InDelta(t, 95636.0, btc.Bid, 1e-9)
	assert.InDelta(t, 95637.0, btc.Ask, 1e-9)
	// funding fraction 0.0000125/h is 0.00125 %/h
	assert.InDelta(t, 0.00125, btc.Carry.HourlyPct, 1e-12)
	assert.True(t, btc.Carry.Known)

	gold := batch.Instruments[1]
	assert.Equal(t, "xyz:GOLD", gold.Symbol)
	assert.Equal(t, domain.ClassCommodity, gold.Class)
}

func TestProcessMissingFundingIsUnknownNotZero(t *testing.T) {
	perps := []Perpetual{
		perp("BTC", "", "350000000", "95636.5", "", nil),
	}
	batch := Process(perps, 0, time.Now().UTC())

	require.Len(t, batch.Instruments, 1)
	c := batch.Instruments[0].Carry
	assert.False(t, c.Known)
	assert.Zero(t, c.HourlyPct)
}

func TestProcessMissingImpactFallsBackToMid(t *testing.T) {
	perps := []Perpetual{
		perp("ETH", "", "90000000", "3300.5", "0.0000125", nil),
	}
	batch := Process(perps, 0, time.Now().UTC())

	require.Len(t, batch.Instruments, 1)
	inst := batch.Instruments[0]
	assert.Equal(t, inst.Mid, inst.Bid)
	assert.Equal(t, inst.Mid, inst.Ask)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, domain.ClassCrypto, Classify(Perpetual{Coin: "BTC"}))
	assert.Equal(t, domain.ClassForex, Classify(Perpetual{Coin: "EUR", Dex: "xyz"}))
	assert.Equal(t, domain.ClassCommodity, Classify(Perpetual{Coin: "SILVER", Dex: "xyz"}))
	assert.Equal(t, domain.ClassIndex, Classify(Perpetual{Coin: "XYZ100", Dex: "xyz"}))
}

func TestPerpetualSymbol(t *testing.T) {
	assert.Equal(t, "BTC", Perpetual{Coin: "BTC"}.Symbol())
	assert.Equal(t, "xyz:GOLD", Perpetual{Coin: "GOLD", Dex: "xyz"}.Symbol())
}
