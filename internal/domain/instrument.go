// Package domain defines the core types shared across the perpscope engine:
// instrument snapshots, resolved fees, matched pairs, arbitrage estimates, and
// the cache/bus/store interfaces implemented by the infrastructure packages.
package domain

import "time"

// Venue identifies one of the two monitored exchanges.
type Venue string

const (
	VenueHyperliquid Venue = "hyperliquid"
	VenueOstium      Venue = "ostium"
)

// AssetClass is the coarse asset classification used for fee resolution.
type AssetClass string

const (
	ClassCrypto    AssetClass = "crypto"
	ClassForex     AssetClass = "forex"
	ClassCommodity AssetClass = "commodity"
	ClassIndex     AssetClass = "index"
	ClassStock     AssetClass = "stock"
)

// CarryKind distinguishes a perpetual funding rate from the rollover carrying
// cost charged on non-crypto instruments.
type CarryKind string

const (
	CarryFunding  CarryKind = "funding"
	CarryRollover CarryKind = "rollover"
)

// Carry is the hourly funding or rollover rate of an instrument, normalized to
// percent-per-hour with the "long pays positive" sign convention. Rollover
// rates are sign-flipped at ingestion so the calculator sees one convention.
type Carry struct {
	Kind      CarryKind `json:"kind"`
	HourlyPct float64   `json:"hourly_pct"`
	// LongPct and ShortPct are the side-split hourly rates where the venue
	// reports them separately (Ostium crypto pairs); zero otherwise.
	LongPct  float64 `json:"long_pct,omitempty"`
	ShortPct float64 `json:"short_pct,omitempty"`
	// Known is false when the venue omitted the rate entirely. The rate is
	// then treated as zero and downstream results are flagged low-confidence.
	Known bool `json:"known"`
}

// Instrument is one venue's snapshot of a single tradable perpetual contract.
// Snapshots are immutable: a new poll replaces the whole batch, never patches
// individual fields.
type Instrument struct {
	Symbol string     `json:"symbol"` // venue-native symbol, may carry a dex prefix like "xyz:GOLD"
	Venue  Venue      `json:"venue"`
	Class  AssetClass `json:"class"`

	Bid float64 `json:"bid"`
	Mid float64 `json:"mid"`
	Ask float64 `json:"ask"`

	Carry Carry `json:"carry"`

	// LiquidityUSD is the venue's liquidity proxy: 24h notional volume on
	// Hyperliquid, total open interest on Ostium.
	LiquidityUSD float64 `json:"liquidity_usd"`

	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotBatch is the full instrument list from one venue at one instant.
type SnapshotBatch struct {
	Venue       Venue        `json:"venue"`
	Instruments []Instrument `json:"instruments"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Empty reports whether the batch has never been populated. A populated batch
// with zero instruments is NOT empty: it means the venue answered with no
// contracts passing the liquidity filter, which consumers must distinguish
// from "no data yet".
func (b SnapshotBatch) Empty() bool {
	return b.Timestamp.IsZero()
}
