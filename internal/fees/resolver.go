package fees

import (
	"strings"
	"sync"

	"github.com/minglew/perpscope/internal/domain"
)

// Resolver resolves venue fee schedules at the currently configured tier and
// discount. It is safe for concurrent use: the engine reads fees on every
// reconciliation pass while the HTTP layer may update the params at any time.
type Resolver struct {
	mu     sync.RWMutex
	params domain.FeeParams
}

// NewResolver creates a Resolver with the given initial fee params. Out-of-range
// values are clamped, not rejected.
func NewResolver(params domain.FeeParams) *Resolver {
	r := &Resolver{}
	r.SetParams(params)
	return r
}

// SetParams updates the tier and discount. Tier is clamped to [0, MaxTier],
// discount to [0, 100].
func (r *Resolver) SetParams(p domain.FeeParams) {
	p.Tier = clampInt(p.Tier, 0, MaxTier)
	p.DiscountPct = clampFloat(p.DiscountPct, 0, 100)
	r.mu.Lock()
	r.params = p
	r.mu.Unlock()
}

// Params returns the current tier and discount.
func (r *Resolver) Params() domain.FeeParams {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.params
}

// Resolve returns the fee for an instrument, dispatching on its venue.
func (r *Resolver) Resolve(inst domain.Instrument) domain.Fee {
	if inst.Venue == domain.VenueOstium {
		return r.Ostium(inst.Symbol, inst.Class)
	}
	return r.Hyperliquid(inst.Symbol)
}

// Hyperliquid resolves the Hyperliquid fee for a symbol. Symbols carrying a
// sub-market prefix ("xyz:GOLD") or listed on HIP-3 use the growth or standard
// schedule; everything else uses the mainline crypto schedule. The referral
// discount multiplies both rates after tier lookup.
func (r *Resolver) Hyperliquid(symbol string) domain.Fee {
	params := r.Params()

	isXyz := strings.Contains(symbol, ":")
	pure := pureSymbol(symbol)

	bucket := bucketPerpsBase
	if isXyz || hip3Assets[pure] {
		if hip3StandardAssets[pure] {
			bucket = bucketStandard
		} else {
			bucket = bucketGrowth
		}
	}

	base := hyperliquidSchedule[bucket][params.Tier]
	mult := 1 - params.DiscountPct/100

	return domain.Fee{
		Kind:     domain.FeeMakerTaker,
		TakerPct: base.Taker * mult,
		MakerPct: base.Maker * mult,
		Legs:     2, // rate charged on both open and close
	}
}

// Ostium resolves the Ostium fee for an asset. Crypto pairs use the
// maker/taker pair; traditional assets resolve to a flat rate with precedence
// asset override > class bucket > documented default, the last flagged as an
// estimate. Every trade pays the fixed oracle fee once; closing is free.
// The referral discount is a Hyperliquid program and does not apply here.
func (r *Resolver) Ostium(symbol string, class domain.AssetClass) domain.Fee {
	pure := pureSymbol(symbol)

	if class == domain.ClassCrypto {
		return domain.Fee{
			Kind:     domain.FeeMakerTaker,
			TakerPct: ostiumCrypto.Taker,
			MakerPct: ostiumCrypto.Maker,
			FixedUSD: oracleFeeUSD,
			Legs:     1,
		}
	}

	rate, estimated := ostiumDefaultRate, true
	if v, ok := ostiumAssetOverride[pure]; ok {
		rate, estimated = v, false
	} else if v, ok := ostiumClassRate[class]; ok {
		rate, estimated = v, false
	}

	return domain.Fee{
		Kind:      domain.FeeFlat,
		TakerPct:  rate,
		MakerPct:  rate,
		FixedUSD:  oracleFeeUSD,
		Legs:      1,
		Estimated: estimated,
	}
}

// pureSymbol strips any sub-market qualifier ("xyz:GOLD" -> "GOLD") and
// uppercases the remainder.
func pureSymbol(symbol string) string {
	if i := strings.LastIndex(symbol, ":"); i >= 0 {
		symbol = symbol[i+1:]
	}
	return strings.ToUpper(symbol)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
