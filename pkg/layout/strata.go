package layout

import (
	"sort"

	"github.com/strataviz/alluvial/pkg/alluvial"
)

// StratumOrder controls the top-to-bottom stacking order of strata per axis.
type StratumOrder int

const (
	// StratumByWeightDesc stacks the heaviest stratum first (the default).
	StratumByWeightDesc StratumOrder = iota
	// StratumByWeightAsc stacks the lightest stratum first.
	StratumByWeightAsc
	// StratumFirstSeen preserves first-seen category order per axis.
	StratumFirstSeen
)

// Stratum is one category box at one axis: its aggregate weight and the
// contiguous vertical interval [YMin, YMax) it occupies.
type Stratum struct {
	X        int    // 1-based axis position
	Axis     string // axis label
	Category string
	Weight   float64
	YMin     float64
	YMax     float64
	Y        float64
}

// Strata computes the stratum boxes of every axis of the dataset. The
// result is axis-major: all strata of axis 1 in stacking order, then axis
// 2, and so on. Within a stratum the sum of its lodes' extents equals
// Weight; across an axis the intervals partition [0, axis total weight).
func Strata(ds *alluvial.Dataset, opts Options) ([]Stratum, error) {
	f, err := buildFrame(ds, opts)
	if err != nil {
		return nil, err
	}

	var out []Stratum
	for a := range f.axes {
		out = append(out, strataAt(f, a, opts.StratumOrder)...)
	}
	return out, nil
}

// strataAt groups the lodes of one axis by category, orders the groups, and
// assigns cumulative vertical intervals. Per-axis computations are
// independent of each other.
func strataAt(f *frame, axis int, order StratumOrder) []Stratum {
	weights := make(map[string]float64)
	var categories []string
	for _, l := range f.byAxis[axis] {
		c := l.stratum.Text()
		if _, seen := weights[c]; !seen {
			categories = append(categories, c)
		}
		weights[c] += l.weight
	}

	switch order {
	case StratumByWeightDesc:
		sort.SliceStable(categories, func(i, j int) bool {
			return weights[categories[i]] > weights[categories[j]]
		})
	case StratumByWeightAsc:
		sort.SliceStable(categories, func(i, j int) bool {
			return weights[categories[i]] < weights[categories[j]]
		})
	case StratumFirstSeen:
		// keep first-seen order
	}

	out := make([]Stratum, 0, len(categories))
	offset := 0.0
	for _, c := range categories {
		w := weights[c]
		out = append(out, Stratum{
			X:        axis + 1,
			Axis:     f.axes[axis],
			Category: c,
			Weight:   w,
			YMin:     offset,
			YMax:     offset + w,
			Y:        offset + w/2,
		})
		offset += w
	}
	return out
}

// stratumRanks maps each category of one axis to its stacking position.
// The calculators sort lodes by this rank first, which is what keeps the
// lodes of one stratum contiguous under a continuous running sum.
func stratumRanks(f *frame, axis int, order StratumOrder) map[string]int {
	strata := strataAt(f, axis, order)
	ranks := make(map[string]int, len(strata))
	for i, s := range strata {
		ranks[s.Category] = i
	}
	return ranks
}
