package layout

import (
	"sort"

	"github.com/strataviz/alluvial/pkg/alluvial"
	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/table"
)

// ComputeLodes positions every (entity, axis) lode of the dataset. Input in
// alluvia form is converted first; a missing weight column means weight 1
// per row.
//
// Per axis, lodes are traversed in the order chosen by opts.Guidance (or the
// explicit opts.Order matrix) and a continuous running sum of weights yields
// the [YMin, YMax) extents. There is no per-stratum reset: the sort's
// primary key is the stratum's stacking rank, so lodes of one stratum are
// already contiguous and inherit the stratum's interval exactly.
//
// The result is axis-major and deterministic: identical input row order and
// options produce bit-identical records.
func ComputeLodes(ds *alluvial.Dataset, opts Options) ([]LodeRecord, error) {
	f, err := buildFrame(ds, opts)
	if err != nil {
		return nil, err
	}
	if err := checkOrderShape(f, opts.Order); err != nil {
		return nil, err
	}

	ranks := make([]map[string]int, len(f.axes))
	for a := range f.axes {
		ranks[a] = stratumRanks(f, a, opts.StratumOrder)
	}

	var out []LodeRecord
	for a := range f.axes {
		ordered := orderLodes(f, a, ranks, opts)

		y := 0.0
		for _, l := range ordered {
			out = append(out, LodeRecord{
				X:       a + 1,
				Axis:    f.axes[a],
				Stratum: l.stratum.Text(),
				Entity:  f.entities[l.entity],
				Group:   f.groupNums[l.entity],
				Weight:  l.weight,
				YMin:    y,
				YMax:    y + l.weight,
				Y:       y + l.weight/2,
				Aes:     f.aesMap(l.aes),
			})
			y += l.weight
		}
	}
	return out, nil
}

// checkOrderShape validates an explicit order matrix eagerly, before any
// layout computation: entities × axes, entities in first-appearance order.
func checkOrderShape(f *frame, order [][]int) error {
	if order == nil {
		return nil
	}
	if len(order) != len(f.entities) {
		return errors.New(errors.ErrCodeOrderingShapeMismatch,
			"order matrix has %d rows, want %d (one per entity)", len(order), len(f.entities))
	}
	for i, row := range order {
		if len(row) != len(f.axes) {
			return errors.New(errors.ErrCodeOrderingShapeMismatch,
				"order matrix row %d has %d columns, want %d (one per axis)", i, len(row), len(f.axes))
		}
	}
	return nil
}

// orderLodes returns the lodes of one axis in stacking order. An explicit
// order matrix overrides the guidance strategy; the original input rank is
// always the final tie-break, keeping the sort total and deterministic.
func orderLodes(f *frame, axis int, ranks []map[string]int, opts Options) []lode {
	ordered := make([]lode, len(f.byAxis[axis]))
	copy(ordered, f.byAxis[axis])

	if opts.Order != nil {
		sort.SliceStable(ordered, func(i, j int) bool {
			a, b := ordered[i], ordered[j]
			if opts.Order[a.entity][axis] != opts.Order[b.entity][axis] {
				return opts.Order[a.entity][axis] < opts.Order[b.entity][axis]
			}
			return a.inputRank < b.inputRank
		})
		return ordered
	}

	g := opts.Guidance
	if !g.valid() {
		g = Zigzag()
	}
	prio := g.Priorities(len(f.axes), axis)
	// Secondary comparison direction alternates with axis parity for
	// strategies that interleave (zigzag).
	descSecondary := g.flip && axis%2 == 1

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		for pi, q := range prio {
			ra, rb := rankAt(f, ranks, a.entity, q), rankAt(f, ranks, b.entity, q)
			if ra != rb {
				if pi > 0 && descSecondary {
					return ra > rb
				}
				return ra < rb
			}
			if pi == 0 && opts.AesBind {
				for k := range a.aes {
					if c := table.Compare(a.aes[k], b.aes[k]); c != 0 {
						return c < 0
					}
				}
			}
		}
		return a.inputRank < b.inputRank
	})
	return ordered
}

// rankAt returns the stacking rank of an entity's category at an axis.
// Entities without a lode at that axis (possible under NADrop) rank first,
// keeping the comparison total.
func rankAt(f *frame, ranks []map[string]int, entity, axis int) int {
	if !f.has[entity][axis] {
		return -1
	}
	return ranks[axis][f.values[entity][axis].Text()]
}
