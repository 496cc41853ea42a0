// Package arb computes the round-trip cost and break-even analysis for one
// matched pair under the maker and taker execution assumptions. Everything
// here is pure computation over already-fetched data; malformed-but-present
// inputs degrade to flagged or unreachable results, never errors.
package arb

import (
	"math"

	"github.com/minglew/perpscope/internal/domain"
)

// Params are the per-pass calculation inputs.
type Params struct {
	// PositionSizeUSD is the notional per leg, in quote currency.
	PositionSizeUSD float64
	// MaxFundingHours is the horizon a funding or combined break-even must
	// fall within to count as profitable.
	MaxFundingHours float64
	// ExpectedSpreadUSD is the asset's residual spread floor: the strict
	// verdict subtracts it from the observed spread before comparing against
	// break-even. Zero means the pair is expected to converge fully.
	ExpectedSpreadUSD float64
}

// Calculate runs the full analysis for one matched pair. It is a pure
// function: identical inputs yield bit-identical results.
func Calculate(hl, os domain.Instrument, hlFee, osFee domain.Fee, p Params) domain.ArbResult {
	return domain.ArbResult{
		Maker: estimate(hl, os, hlFee, osFee, p, domain.ExecMaker),
		Taker: estimate(hl, os, hlFee, osFee, p, domain.ExecTaker),
	}
}

func estimate(hl, os domain.Instrument, hlFee, osFee domain.Fee, p Params, exec domain.Execution) domain.Estimate {
	est := domain.Estimate{
		LowConfidence: !hl.Carry.Known || !os.Carry.Known || hlFee.Estimated || osFee.Estimated,
	}

	// The venue with the higher mid is the short leg. This drives both the
	// taker fill selection below and the direction label.
	shortIsHL := hl.Mid > os.Mid
	if shortIsHL {
		est.ShortVenue, est.LongVenue = hl.Venue, os.Venue
	} else {
		est.ShortVenue, est.LongVenue = os.Venue, hl.Venue
	}

	var spread, refPrice float64
	switch exec {
	case domain.ExecTaker:
		// Each leg fills at the adverse side of the book: the short leg
		// sells into the bid, the long leg lifts the ask. A crossed or
		// locked book clamps to zero, meaning no executable edge.
		var shortFill, longFill float64
		if shortIsHL {
			shortFill, longFill = hl.Bid, os.Ask
		} else {
			shortFill, longFill = os.Bid, hl.Ask
		}
		spread = math.Max(0, shortFill-longFill)
		refPrice = (shortFill + longFill) / 2
	default:
		spread = math.Abs(hl.Mid - os.Mid)
		refPrice = (hl.Mid + os.Mid) / 2
	}

	s := p.PositionSizeUSD
	if s <= 0 || refPrice <= 0 {
		// Degenerate inputs: no division, everything unreachable.
		return est
	}

	totalCost := hlFee.RoundTripCostUSD(s, exec) + osFee.RoundTripCostUSD(s, exec)

	est.TotalCostUSD = totalCost
	est.CurrentSpreadUSD = spread
	est.BreakEvenSpreadUSD = totalCost * refPrice / s

	est.SpreadCanProfit = spread > est.BreakEvenSpreadUSD
	est.SpreadCanProfitStrict = spread-p.ExpectedSpreadUSD > est.BreakEvenSpreadUSD

	est.FundingDiffPct = math.Abs(hl.Carry.HourlyPct - os.Carry.HourlyPct)
	fundingPerHour := s * est.FundingDiffPct / 100
	if fundingPerHour > 0 {
		est.FundingHours = totalCost / fundingPerHour
		est.FundingReachable = true
		est.FundingValid = est.FundingHours > 0 && est.FundingHours <= p.MaxFundingHours
	}

	// Combined: the spread captured at entry offsets part of the cost, the
	// funding differential pays down the rest.
	remaining := totalCost - spread*s/refPrice
	switch {
	case remaining <= 0:
		est.ComboReachable = true
		est.ComboValid = true
	case fundingPerHour > 0:
		est.ComboHours = remaining / fundingPerHour
		est.ComboReachable = true
		est.ComboValid = est.ComboHours <= p.MaxFundingHours
	}

	est.AnyCanProfit = est.SpreadCanProfit || est.FundingValid || est.ComboValid
	return est
}
