// Package match canonicalizes venue symbols and pairs up the instruments
// listed on both venues. The alias table is authored against Hyperliquid
// naming, so Ostium symbols are translated toward it; a missing entry means
// the two venues already agree on the name (case-insensitive).
package match

import (
	"sort"
	"strings"

	"github.com/minglew/perpscope/internal/domain"
)

// Canonical strips a sub-market qualifier ("xyz:GOLD" -> "GOLD") and
// uppercases the remainder.
func Canonical(symbol string) string {
	if i := strings.LastIndex(symbol, ":"); i >= 0 {
		symbol = symbol[i+1:]
	}
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Table holds the alias mapping and the priority ordering used to match and
// sort instruments. It is immutable after construction.
type Table struct {
	aliases  map[string]string
	priority []string
	prioIdx  map[string]int
}

// NewTable builds a Table. Alias keys are Ostium symbols, values the
// Hyperliquid symbol they correspond to; both sides are canonicalized.
// Priority entries are canonicalized too and keep their given order.
func NewTable(aliases map[string]string, priority []string) *Table {
	t := &Table{
		aliases: make(map[string]string, len(aliases)),
		prioIdx: make(map[string]int, len(priority)),
	}
	for from, to := range aliases {
		t.aliases[Canonical(from)] = Canonical(to)
	}
	for _, p := range priority {
		c := Canonical(p)
		t.priority = append(t.priority, c)
		if _, ok := t.prioIdx[c]; !ok {
			// first matching entry wins the tie-break
			t.prioIdx[c] = len(t.priority) - 1
		}
	}
	return t
}

// Key resolves an instrument to its canonical asset key. Ostium symbols go
// through the alias table; Hyperliquid symbols are canonical by convention.
func (t *Table) Key(inst domain.Instrument) string {
	c := Canonical(inst.Symbol)
	if inst.Venue == domain.VenueOstium {
		if mapped, ok := t.aliases[c]; ok {
			return mapped
		}
	}
	return c
}

// Match pairs up instruments present on both venues. The two batches are
// identified by their Venue field, so argument order does not matter. Pairs
// come out priority-sorted, everything else in Hyperliquid insertion order.
func (t *Table) Match(a, b domain.SnapshotBatch) []domain.MatchedPair {
	hl, os := a, b
	if a.Venue == domain.VenueOstium {
		hl, os = b, a
	}

	// First Ostium listing per key wins; the alias table is injective so
	// duplicates only arise from bad venue data.
	osByKey := make(map[string]domain.Instrument, len(os.Instruments))
	for _, inst := range os.Instruments {
		k := t.Key(inst)
		if _, ok := osByKey[k]; !ok {
			osByKey[k] = inst
		}
	}

	var pairs []domain.MatchedPair
	for _, h := range hl.Instruments {
		k := t.Key(h)
		o, ok := osByKey[k]
		if !ok {
			continue
		}
		pairs = append(pairs, domain.MatchedPair{
			Name:        pairName(h, o),
			Canonical:   k,
			Hyperliquid: h,
			Ostium:      o,
		})
	}

	t.SortPairs(pairs)
	return pairs
}

// SortPairs orders pairs by the priority list, keeping insertion order for
// everything not on it.
func (t *Table) SortPairs(pairs []domain.MatchedPair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return t.pairRank(pairs[i]) < t.pairRank(pairs[j])
	})
}

// SortInstruments orders a single venue's list the same way the matched pairs
// are ordered, so the per-venue views line up with the comparison table.
func (t *Table) SortInstruments(insts []domain.Instrument) {
	sort.SliceStable(insts, func(i, j int) bool {
		return t.instRank(insts[i]) < t.instRank(insts[j])
	})
}

// pairRank is the lowest priority index any of the pair's names hits, or
// len(priority) when none do.
func (t *Table) pairRank(p domain.MatchedPair) int {
	return t.rank(p.Canonical, Canonical(p.Hyperliquid.Symbol), Canonical(p.Ostium.Symbol))
}

func (t *Table) instRank(inst domain.Instrument) int {
	return t.rank(t.Key(inst), Canonical(inst.Symbol))
}

func (t *Table) rank(names ...string) int {
	best := len(t.priority)
	for _, n := range names {
		if idx, ok := t.prioIdx[n]; ok && idx < best {
			best = idx
		}
	}
	return best
}

func pairName(hl, os domain.Instrument) string {
	h, o := Canonical(hl.Symbol), Canonical(os.Symbol)
	if h == o {
		return h
	}
	return h + " / " + o
}
