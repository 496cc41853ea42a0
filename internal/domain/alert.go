package domain

import "time"

// Alert records one opportunity notification sent for a monitored asset.
type Alert struct {
	ID        string    `json:"id"`
	Asset     string    `json:"asset"` // canonical asset key
	Execution Execution `json:"execution"`

	CurrentSpreadUSD   float64 `json:"current_spread_usd"`
	BreakEvenSpreadUSD float64 `json:"break_even_spread_usd"`
	TotalCostUSD       float64 `json:"total_cost_usd"`

	CreatedAt time.Time `json:"created_at"`
}
