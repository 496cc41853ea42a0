// Package fees resolves each venue's tiered, asset-class-dependent fee
// schedule into the normalized domain.Fee shape at a given volume tier and
// referral discount. Resolution is total: unknown classifications fall back to
// documented defaults instead of failing, so fee lookup can never stall the
// reconciliation pipeline.
package fees

import "github.com/minglew/perpscope/internal/domain"

// tierRate is one {taker%, maker%} entry of a tiered schedule.
type tierRate struct {
	Taker float64
	Maker float64
}

// MaxTier is the highest volume tier on the Hyperliquid schedule.
const MaxTier = 6

// Hyperliquid buckets. Rates are percentages; tier index is the volume tier.
// Fees are monotonically non-increasing as tier increases.
const (
	bucketPerpsBase = "perps_base"
	bucketGrowth    = "growth"
	bucketStandard  = "standard"
)

var hyperliquidSchedule = map[string][MaxTier + 1]tierRate{
	// Mainline crypto perps.
	bucketPerpsBase: {
		{0.045, 0.015},
		{0.04, 0.012},
		{0.035, 0.008},
		{0.03, 0.004},
		{0.028, 0},
		{0.026, 0},
		{0.024, 0},
	},
	// HIP-3 growth mode: heavily discounted to bootstrap liquidity on newly
	// listed RWA contracts (forex, most commodities, the XYZ100 index).
	bucketGrowth: {
		{0.009, 0.003},
		{0.008, 0.0024},
		{0.007, 0.0016},
		{0.006, 0.0008},
		{0.0056, 0},
		{0.0052, 0},
		{0.0048, 0},
	},
	// HIP-3 standard mode: no growth discount. Applies to GOLD only, whose
	// price already tracks the PAXG-USDC spot pair and so gets no
	// volume-incentive pricing.
	bucketStandard: {
		{0.09, 0.03},
		{0.08, 0.024},
		{0.07, 0.016},
		{0.06, 0.008},
		{0.056, 0},
		{0.052, 0},
		{0.048, 0},
	},
}

// hip3Assets are the symbols listed on Hyperliquid's HIP-3 (xyz) sub-market.
var hip3Assets = map[string]bool{
	"GOLD": true, "SILVER": true, "COPPER": true,
	"EUR": true, "GBP": true, "JPY": true, "AUD": true, "CAD": true, "CHF": true,
	"XYZ100": true,
}

// hip3StandardAssets are the HIP-3 symbols on the undiscounted standard
// schedule. Everything else on HIP-3 uses the growth schedule.
var hip3StandardAssets = map[string]bool{
	"GOLD": true,
}

// Ostium: crypto pairs use a flat maker/taker pair regardless of tier.
var ostiumCrypto = tierRate{Taker: 0.10, Maker: 0.03}

// Ostium traditional assets: flat open fee, no maker/taker distinction,
// closing free. Asset-specific overrides take priority over the class bucket.
var ostiumAssetOverride = map[string]float64{
	"XAU": 0.03, // gold
	"XAG": 0.15, // silver
	"XPT": 0.20, // platinum
	"XPD": 0.20, // palladium
	"HG":  0.15, // copper
	"CL":  0.10, // crude oil
}

var ostiumClassRate = map[domain.AssetClass]float64{
	domain.ClassForex: 0.03,
	domain.ClassIndex: 0.05,
	domain.ClassStock: 0.05,
}

// ostiumDefaultRate is the documented fallback when neither an asset override
// nor a class bucket matches. Matches the forex rate.
const ostiumDefaultRate = 0.03

// oracleFeeUSD is Ostium's fixed per-trade oracle charge, collected once at
// open. SL/TP-triggered closes are exempt, which this model ignores.
const oracleFeeUSD = 0.10
