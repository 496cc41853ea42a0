package fees

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minglew/perpscope/internal/domain"
)

func TestHyperliquidDiscountApplied(t *testing.T) {
	r := NewResolver(domain.FeeParams{Tier: 0, DiscountPct: 4})

	fee := r.Hyperliquid("BTC")
	require.Equal(t, domain.FeeMakerTaker, fee.Kind)
	assert.InDelta(t, 0.045*0.96, fee.TakerPct, 1e-12)
	assert.InDelta(t, 0.015*0.96, fee.MakerPct, 1e-12)
	assert.Equal(t, 2, fee.Legs)
	assert.Zero(t, fee.FixedUSD)
}

func TestHyperliquidEffectiveFeeIdentity(t *testing.T) {
	// effectiveFee(tier, discount) == baseFee(tier) * (1 - discount/100)
	// for every tier and a range of discounts.
	for _, discount := range []float64{0, 4, 25, 100} {
		base := NewResolver(domain.FeeParams{Tier: 0, DiscountPct: 0})
		disc := NewResolver(domain.FeeParams{Tier: 0, DiscountPct: discount})
		mult := 1 - discount/100
		for tier := 0; tier <= MaxTier; tier++ {
			base.SetParams(domain.FeeParams{Tier: tier})
			disc.SetParams(domain.FeeParams{Tier: tier, DiscountPct: discount})
			for _, sym := range []string{"BTC", "SILVER", "GOLD"} {
				b, d := base.Hyperliquid(sym), disc.Hyperliquid(sym)
				assert.InDelta(t, b.TakerPct*mult, d.TakerPct, 1e-12, "taker %s tier %d disc %v", sym, tier, discount)
				assert.InDelta(t, b.MakerPct*mult, d.MakerPct, 1e-12, "maker %s tier %d disc %v", sym, tier, discount)
			}
		}
	}
}

func TestHyperliquidFeesMonotonicInTier(t *testing.T) {
	r := NewResolver(domain.FeeParams{DiscountPct: 4})
	for _, sym := range []string{"ETH", "EUR", "GOLD"} {
		t.Run(sym, func(t *testing.T) {
			prev := domain.Fee{TakerPct: 1e9, MakerPct: 1e9}
			for tier := 0; tier <= MaxTier; tier++ {
				r.SetParams(domain.FeeParams{Tier: tier, DiscountPct: 4})
				fee := r.Hyperliquid(sym)
				assert.LessOrEqual(t, fee.TakerPct, prev.TakerPct, "taker tier %d", tier)
				assert.LessOrEqual(t, fee.MakerPct, prev.MakerPct, "maker tier %d", tier)
				prev = fee
			}
		})
	}
}

func TestHyperliquidBucketSelection(t *testing.T) {
	r := NewResolver(domain.FeeParams{Tier: 0})

	tests := []struct {
		symbol string
		taker  float64
	}{
		{"BTC", 0.045},       // mainline crypto
		{"SILVER", 0.009},    // HIP-3 growth
		{"xyz:SILVER", 0.009}, // prefix also selects HIP-3
		{"GOLD", 0.09},       // HIP-3 standard: excluded from growth pricing
		{"xyz:GOLD", 0.09},
		{"EUR", 0.009},
		{"XYZ100", 0.009},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.InDelta(t, tt.taker, r.Hyperliquid(tt.symbol).TakerPct, 1e-12)
		})
	}
}

func TestOstiumAssetOverridePrecedence(t *testing.T) {
	r := NewResolver(domain.FeeParams{})

	// XAU has an asset override that beats the commodity class bucket.
	fee := r.Ostium("XAU", domain.ClassCommodity)
	require.Equal(t, domain.FeeFlat, fee.Kind)
	assert.InDelta(t, 0.03, fee.TakerPct, 1e-12)
	assert.Equal(t, fee.TakerPct, fee.MakerPct)
	assert.False(t, fee.Estimated)
	assert.InDelta(t, 0.10, fee.FixedUSD, 1e-12)
	assert.Equal(t, 1, fee.Legs)

	// No override for an index: the class bucket applies.
	fee = r.Ostium("SPX", domain.ClassIndex)
	assert.InDelta(t, 0.05, fee.TakerPct, 1e-12)
	assert.False(t, fee.Estimated)
}

func TestOstiumUnknownClassFallsBack(t *testing.T) {
	r := NewResolver(domain.FeeParams{})

	fee := r.Ostium("WIDGET", domain.AssetClass("exotic"))
	assert.InDelta(t, ostiumDefaultRate, fee.TakerPct, 1e-12)
	assert.True(t, fee.Estimated, "fallback rate must be flagged as an estimate")
}

func TestOstiumCryptoMakerTaker(t *testing.T) {
	r := NewResolver(domain.FeeParams{Tier: 3, DiscountPct: 50})

	// Tier and discount are Hyperliquid programs; Ostium crypto is flat.
	fee := r.Ostium("BTC", domain.ClassCrypto)
	require.Equal(t, domain.FeeMakerTaker, fee.Kind)
	assert.InDelta(t, 0.10, fee.TakerPct, 1e-12)
	assert.InDelta(t, 0.03, fee.MakerPct, 1e-12)
	assert.InDelta(t, 0.10, fee.FixedUSD, 1e-12)
}

func TestSetParamsClamps(t *testing.T) {
	r := NewResolver(domain.FeeParams{Tier: 99, DiscountPct: 250})
	p := r.Params()
	assert.Equal(t, MaxTier, p.Tier)
	assert.Equal(t, 100.0, p.DiscountPct)

	r.SetParams(domain.FeeParams{Tier: -3, DiscountPct: -1})
	p = r.Params()
	assert.Equal(t, 0, p.Tier)
	assert.Equal(t, 0.0, p.DiscountPct)
}

func TestRoundTripCostUSD(t *testing.T) {
	hl := domain.Fee{Kind: domain.FeeMakerTaker, TakerPct: 0.045, MakerPct: 0.015, Legs: 2}
	os := domain.Fee{Kind: domain.FeeFlat, TakerPct: 0.03, MakerPct: 0.03, FixedUSD: 0.10, Legs: 1}

	// HL charges the rate on both legs; Ostium once plus the oracle fee.
	assert.InDelta(t, 1000*(0.015/100)*2, hl.RoundTripCostUSD(1000, domain.ExecMaker), 1e-12)
	assert.InDelta(t, 1000*(0.03/100)+0.10, os.RoundTripCostUSD(1000, domain.ExecTaker), 1e-12)
}

func ExampleResolver_Hyperliquid() {
	r := NewResolver(domain.FeeParams{Tier: 0, DiscountPct: 4})
	fee := r.Hyperliquid("BTC")
	fmt.Printf("taker=%.4f%% maker=%.4f%%\n", fee.TakerPct, fee.MakerPct)
	// Output: taker=0.0432% maker=0.0144%
}
