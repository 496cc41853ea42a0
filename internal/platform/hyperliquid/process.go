package hyperliquid

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/minglew/perpscope/internal/domain"
)

// forexAssets and commodityAssets classify the RWA symbols listed on builder
// dexes; anything unrecognized there is treated as an index product, while
// main-dex contracts are always crypto.
var forexAssets = map[string]bool{
	"EUR": true, "GBP": true, "JPY": true, "AUD": true, "CAD": true, "CHF": true,
}

var commodityAssets = map[string]bool{
	"GOLD": true, "SILVER": true, "COPPER": true,
}

// Classify maps a perpetual to its asset class.
func Classify(p Perpetual) domain.AssetClass {
	if p.Dex == "" {
		return domain.ClassCrypto
	}
	coin := strings.ToUpper(p.Coin)
	switch {
	case forexAssets[coin]:
		return domain.ClassForex
	case commodityAssets[coin]:
		return domain.ClassCommodity
	default:
		return domain.ClassIndex
	}
}

// Process filters and normalizes raw perpetuals into a snapshot batch.
// Contracts without a reported 24h volume, or below minVolumeUSD, are
// dropped; survivors are ordered by volume descending. The API's funding
// field is already an hourly fraction, converted here to percent per hour.
func Process(perps []Perpetual, minVolumeUSD float64, now time.Time) domain.SnapshotBatch {
	batch := domain.SnapshotBatch{
		Venue:     domain.VenueHyperliquid,
		Timestamp: now,
	}

	type ranked struct {
		inst   domain.Instrument
		volume float64
	}
	var kept []ranked

	for _, p := range perps {
		volume, ok := parseFloat(p.Ctx.DayNtlVlm)
		if !ok || volume < minVolumeUSD {
			continue
		}
		mid, ok := parseFloat(p.Ctx.MidPx)
		if !ok || mid <= 0 {
			continue
		}

		inst := domain.Instrument{
			Symbol:       p.Symbol(),
			Venue:        domain.VenueHyperliquid,
			Class:        Classify(p),
			Mid:          mid,
			Carry:        parseCarry(p.Ctx.Funding),
			LiquidityUSD: volume,
			UpdatedAt:    now,
		}

		// Impact prices stand in for top-of-book: [bid, ask]. Missing ones
		// degrade to the mid so the taker path still has a price.
		inst.Bid, inst.Ask = mid, mid
		if len(p.Ctx.ImpactPxs) >= 2 {
			if bid, ok := parseFloat(p.Ctx.ImpactPxs[0]); ok {
				inst.Bid = bid
			}
			if ask, ok := parseFloat(p.Ctx.ImpactPxs[1]); ok {
				inst.Ask = ask
			}
		}

		kept = append(kept, ranked{inst: inst, volume: volume})
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].volume > kept[j].volume })
	for _, r := range kept {
		batch.Instruments = append(batch.Instruments, r.inst)
	}
	return batch
}

func parseCarry(funding string) domain.Carry {
	f, ok := parseFloat(funding)
	if !ok {
		return domain.Carry{Kind: domain.CarryFunding}
	}
	return domain.Carry{
		Kind:      domain.CarryFunding,
		HourlyPct: f * 100,
		Known:     true,
	}
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
