package domain

// FeeKind tags the shape a venue's fee schedule resolved to. Flat fees carry
// the same rate in Taker and Maker so the calculator never branches on shape.
type FeeKind string

const (
	FeeMakerTaker FeeKind = "maker_taker"
	FeeFlat       FeeKind = "flat"
)

// Fee is a venue's fee schedule resolved for one instrument at the configured
// tier and discount. Rates are percentages of notional (0.03 means 0.03%).
type Fee struct {
	Kind     FeeKind `json:"kind"`
	TakerPct float64 `json:"taker_pct"`
	MakerPct float64 `json:"maker_pct"`

	// FixedUSD is a per-trade charge applied once at open (Ostium oracle fee).
	FixedUSD float64 `json:"fixed_usd,omitempty"`

	// Legs is the number of round-trip legs the percentage rate is charged on:
	// 2 where both open and close pay the rate (Hyperliquid), 1 where closing
	// is free (Ostium).
	Legs int `json:"legs"`

	// Estimated is true when resolution fell back to a default rate because
	// the classification was unknown. Never an error: a fallback fee is a
	// degraded-confidence estimate, not a failure.
	Estimated bool `json:"estimated,omitempty"`
}

// Rate returns the percentage rate for the given execution assumption.
func (f Fee) Rate(exec Execution) float64 {
	if exec == ExecMaker {
		return f.MakerPct
	}
	return f.TakerPct
}

// RoundTripCostUSD is the full round-trip cost of a position of size USD under
// the given execution assumption: the rate applied to each charged leg plus
// the fixed per-trade fee.
func (f Fee) RoundTripCostUSD(sizeUSD float64, exec Execution) float64 {
	return sizeUSD*(f.Rate(exec)/100)*float64(f.Legs) + f.FixedUSD
}
