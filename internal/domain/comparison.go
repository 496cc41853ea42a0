package domain

import "time"

// Execution is the order-placement assumption an estimate is computed under.
type Execution string

const (
	ExecMaker Execution = "maker"
	ExecTaker Execution = "taker"
)

// Estimate is the profitability analysis of one matched pair under a single
// execution assumption. All dollar amounts are in quote currency (USD).
//
// Break-even times use an explicit Reachable flag instead of Inf/NaN: when
// Reachable is false the Hours value is zero and meaningless.
type Estimate struct {
	TotalCostUSD       float64 `json:"total_cost_usd"`
	BreakEvenSpreadUSD float64 `json:"break_even_spread_usd"`
	CurrentSpreadUSD   float64 `json:"current_spread_usd"`

	// SpreadCanProfit: the observed spread alone covers the round-trip cost.
	SpreadCanProfit bool `json:"spread_can_profit"`
	// SpreadCanProfitStrict additionally subtracts the asset's expected
	// residual spread (the floor the pair is expected to converge to) before
	// comparing against break-even.
	SpreadCanProfitStrict bool `json:"spread_can_profit_strict"`

	FundingDiffPct   float64 `json:"funding_diff_pct"` // |A - B|, percent per hour
	FundingHours     float64 `json:"funding_hours"`
	FundingReachable bool    `json:"funding_reachable"`
	FundingValid     bool    `json:"funding_valid"` // reachable within the configured horizon

	ComboHours     float64 `json:"combo_hours"`
	ComboReachable bool    `json:"combo_reachable"`
	ComboValid     bool    `json:"combo_valid"`

	AnyCanProfit bool `json:"any_can_profit"`

	// ShortVenue/LongVenue label the hedge direction: the venue with the
	// higher mid is shorted. Consistent with the taker-leg fill selection.
	ShortVenue Venue `json:"short_venue"`
	LongVenue  Venue `json:"long_venue"`

	// LowConfidence is set when a carry rate was missing or a fee was
	// estimated via fallback; the numbers are best-effort, not authoritative.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// ArbResult bundles the two execution assumptions for one matched pair.
type ArbResult struct {
	Maker Estimate `json:"maker"`
	Taker Estimate `json:"taker"`
}

// MatchedPair references the two instrument snapshots that the alias table
// proves represent the same underlying asset. Pairs live for exactly one
// reconciliation cycle and are regenerated, never mutated.
type MatchedPair struct {
	// Name is the display name: the shared symbol, or "HL / OS" when the
	// venues disagree on naming.
	Name string `json:"name"`
	// Canonical is the canonical asset key both symbols resolved to.
	Canonical string `json:"canonical"`

	Hyperliquid Instrument `json:"hyperliquid"`
	Ostium      Instrument `json:"ostium"`
}

// PairComparison is one row of the published comparison: the matched pair,
// both venues' resolved fees, and the arbitrage analysis.
type PairComparison struct {
	MatchedPair

	HyperliquidFee Fee `json:"hyperliquid_fee"`
	OstiumFee      Fee `json:"ostium_fee"`

	Arbitrage ArbResult `json:"arbitrage"`
}

// FeeParams is the user-tunable fee configuration: volume tier and referral
// discount. Changing it triggers an immediate recompute from cached snapshots.
type FeeParams struct {
	Tier        int     `json:"tier"`         // 0..6
	DiscountPct float64 `json:"discount_pct"` // 0..100
}

// VenueInstrument is one venue's instrument annotated with its resolved fee,
// for single-venue display without requiring a cross-venue match.
type VenueInstrument struct {
	Instrument
	Fee Fee `json:"fee"`
}

// VenueView is one venue's full annotated instrument list.
type VenueView struct {
	Venue       Venue             `json:"venue"`
	Instruments []VenueInstrument `json:"instruments"`
	// Timestamp is zero when the venue has not delivered a batch yet.
	Timestamp time.Time `json:"timestamp"`
}

// Comparison is the atomic output of one reconciliation pass.
type Comparison struct {
	// PassID identifies the reconciliation pass that produced this view.
	PassID string `json:"pass_id"`

	Pairs []PairComparison `json:"pairs"`

	Hyperliquid VenueView `json:"hyperliquid"`
	Ostium      VenueView `json:"ostium"`

	FeeParams FeeParams `json:"fee_params"`

	// GeneratedAt is when the pass ran. The per-venue timestamps above tell
	// consumers how stale each side's data is; a zero venue timestamp means
	// "no data yet", which is distinct from an empty Pairs list.
	GeneratedAt time.Time `json:"generated_at"`
}
