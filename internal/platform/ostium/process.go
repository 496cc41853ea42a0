package ostium

import (
	"math"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/minglew/perpscope/internal/domain"
)

const (
	// Fixed-point scale of subgraph rate and OI fields.
	wad = 1e18
	// Arbitrum produces roughly 4 blocks per second.
	blocksPerHour = 4 * 3600
)

// groupClass maps the subgraph's numeric group IDs to asset classes.
var groupClass = map[string]domain.AssetClass{
	"0": domain.ClassCrypto,
	"1": domain.ClassForex,
	"2": domain.ClassCommodity,
	"3": domain.ClassStock,
	"4": domain.ClassIndex,
}

// groupNameClass resolves the group by name when the ID is absent.
var groupNameClass = map[string]domain.AssetClass{
	"crypto":      domain.ClassCrypto,
	"forex":       domain.ClassForex,
	"commodities": domain.ClassCommodity,
	"stocks":      domain.ClassStock,
	"indices":     domain.ClassIndex,
}

// Classify maps a pair's group to an asset class, defaulting to commodity for
// unrecognized groups since those dominate the venue's RWA listings.
func Classify(g PairGroup) domain.AssetClass {
	if c, ok := groupClass[g.ID]; ok {
		return c
	}
	if c, ok := groupNameClass[strings.ToLower(g.Name)]; ok {
		return c
	}
	return domain.ClassCommodity
}

// Process joins pairs with their latest prices and normalizes them into a
// snapshot batch. Pairs whose total open interest values below minOIUSD are
// dropped; survivors are ordered by open interest descending.
//
// Crypto pairs carry a per-second funding rate split by side; everything else
// carries a per-block rollover charge. Both are normalized to percent per
// hour under the "long pays positive" convention.
func Process(pairs []Pair, prices []Price, minOIUSD float64, now time.Time) domain.SnapshotBatch {
	batch := domain.SnapshotBatch{
		Venue:     domain.VenueOstium,
		Timestamp: now,
	}

	priceByPair := make(map[string]Price, len(prices))
	for _, p := range prices {
		priceByPair[p.From+"/"+p.To] = p
	}

	type ranked struct {
		inst domain.Instrument
		oi   float64
	}
	var kept []ranked

	for _, pair := range pairs {
		price, ok := priceByPair[pair.From+"/"+pair.To]
		if !ok || price.Mid <= 0 {
			continue
		}

		oiUSD := (wadToFloat(pair.LongOI) + wadToFloat(pair.ShortOI)) * price.Mid
		if oiUSD < minOIUSD {
			continue
		}

		class := Classify(pair.Group)
		kept = append(kept, ranked{
			inst: domain.Instrument{
				Symbol:       pair.From,
				Venue:        domain.VenueOstium,
				Class:        class,
				Bid:          price.Bid,
				Mid:          price.Mid,
				Ask:          price.Ask,
				Carry:        carryFor(pair, class),
				LiquidityUSD: oiUSD,
				UpdatedAt:    now,
			},
			oi: oiUSD,
		})
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].oi > kept[j].oi })
	for _, r := range kept {
		batch.Instruments = append(batch.Instruments, r.inst)
	}
	return batch
}

func carryFor(pair Pair, class domain.AssetClass) domain.Carry {
	if class == domain.ClassCrypto {
		long := wadToFloat(pair.CurFundingLong) * 3600 * 100
		short := wadToFloat(pair.CurFundingShort) * 3600 * 100
		if long == 0 && short == 0 {
			return domain.Carry{Kind: domain.CarryFunding}
		}
		return domain.Carry{
			Kind:      domain.CarryFunding,
			HourlyPct: math.Abs(long),
			LongPct:   math.Abs(long),
			ShortPct:  math.Abs(short),
			Known:     true,
		}
	}

	rollover := wadToFloat(pair.RolloverFeePerBlock) * blocksPerHour * 100
	if rollover == 0 {
		return domain.Carry{Kind: domain.CarryRollover}
	}
	// Rollover is charged regardless of side; represented as the long leg
	// paying, consistent with the funding convention.
	return domain.Carry{
		Kind:      domain.CarryRollover,
		HourlyPct: math.Abs(rollover),
		Known:     true,
	}
}

// wadToFloat parses a 1e18 fixed-point decimal string. Values too large for
// int64 are common for OI fields, so parsing goes through big.Float.
func wadToFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, ok := new(big.Float).SetString(s)
	if !ok {
		return 0
	}
	v, _ := new(big.Float).Quo(f, big.NewFloat(wad)).Float64()
	return v
}
