package layout

import (
	"github.com/strataviz/alluvial/pkg/alluvial"
	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/table"
)

// naLabel is the sentinel category for missing values kept by NAKeep.
const naLabel = "NA"

// lode is one (entity, axis) intersection in normalized form.
type lode struct {
	entity    int // index into frame.entities
	axis      int // 0-based axis index
	stratum   table.Value
	weight    float64
	aes       []table.Value
	inputRank int // emission order, the stable tie-break
}

// frame is the normalized view of a dataset the position calculators work
// on: lodes form, resolved axes and entities, per-axis lode lists, and the
// (entity, axis) category lookup used as sort keys.
type frame struct {
	axes      []string
	entities  []string  // canonical entity texts in first-appearance order
	groupNums []float64 // entity identifier cast to numeric, per entity
	aesCols   []string

	byAxis [][]lode        // [axis] lodes in input row order
	values [][]table.Value // [entity][axis] category, zero Value when absent
	has    [][]bool        // [entity][axis] coverage
}

// buildFrame normalizes a dataset to lodes form and indexes it. It applies
// the weight default (1 per row), the NA policy, and validates axis
// coverage: every entity must hold exactly one lode per axis, except that
// NADrop tolerates gaps created by dropped rows.
func buildFrame(ds *alluvial.Dataset, opts Options) (*frame, error) {
	lds, err := ds.Lodes()
	if err != nil {
		return nil, err
	}
	cfg := lds.Config.WithDefaults()
	t := lds.Table

	for _, c := range []string{cfg.Key, cfg.Value, cfg.ID} {
		if !t.HasColumn(c) {
			return nil, errors.New(errors.ErrCodeMalformedData,
				"lodes table is missing column %q", c)
		}
	}

	weightCol := opts.Weight
	if weightCol == "" {
		weightCol = cfg.Weight
	}
	weightIdx := -1
	if weightCol != "" {
		weightIdx = t.ColumnIndex(weightCol)
		if weightIdx < 0 {
			return nil, errors.New(errors.ErrCodeColumnNotFound,
				"weight column %q not found", weightCol)
		}
	}

	aesIdx := make([]int, len(opts.Aes))
	for i, c := range opts.Aes {
		aesIdx[i] = t.ColumnIndex(c)
		if aesIdx[i] < 0 {
			return nil, errors.New(errors.ErrCodeColumnNotFound,
				"aesthetic column %q not found", c)
		}
	}

	axes := alluvial.Axes(t, cfg.Key)
	if len(axes) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedData,
			"lodes table has no axis values in column %q", cfg.Key)
	}
	axisIdx := make(map[string]int, len(axes))
	for i, a := range axes {
		axisIdx[a] = i
	}

	f := &frame{
		axes:    axes,
		aesCols: opts.Aes,
		byAxis:  make([][]lode, len(axes)),
	}
	entityIdx := make(map[string]int)

	keyCol := t.ColumnIndex(cfg.Key)
	valueCol := t.ColumnIndex(cfg.Value)
	idCol := t.ColumnIndex(cfg.ID)

	for r := 0; r < t.NumRows(); r++ {
		stratum := t.CellAt(r, valueCol)
		if stratum.IsNA() {
			if cfg.NA == alluvial.NADrop {
				continue
			}
			stratum = table.String(naLabel)
		}

		idVal := t.CellAt(r, idCol)
		id := idVal.Text()
		e, seen := entityIdx[id]
		if !seen {
			e = len(f.entities)
			entityIdx[id] = e
			f.entities = append(f.entities, id)
			num, ok := idVal.Num()
			if !ok {
				num = float64(e + 1)
			}
			f.groupNums = append(f.groupNums, num)
			f.values = append(f.values, make([]table.Value, len(axes)))
			f.has = append(f.has, make([]bool, len(axes)))
		}

		a, ok := axisIdx[t.CellAt(r, keyCol).Text()]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal,
				"axis label %q not indexed", t.CellAt(r, keyCol).Text())
		}
		if f.has[e][a] {
			return nil, errors.New(errors.ErrCodeMalformedData,
				"duplicate (id, key) pair (%s, %s)", id, axes[a])
		}

		w := 1.0
		if weightIdx >= 0 {
			val := t.CellAt(r, weightIdx)
			if !val.IsNA() {
				n, ok := val.Num()
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidInput,
						"weight at row %d is not numeric", r)
				}
				w = n
			}
			if w < 0 {
				return nil, errors.New(errors.ErrCodeInvalidInput,
					"weight at row %d is negative", r)
			}
		}

		var aes []table.Value
		if len(aesIdx) > 0 {
			aes = make([]table.Value, len(aesIdx))
			for i, c := range aesIdx {
				aes[i] = t.CellAt(r, c)
			}
		}

		f.has[e][a] = true
		f.values[e][a] = stratum
		f.byAxis[a] = append(f.byAxis[a], lode{
			entity:    e,
			axis:      a,
			stratum:   stratum,
			weight:    w,
			aes:       aes,
			inputRank: r,
		})
	}

	// With NAKeep every entity must cover every axis; NADrop tolerates the
	// gaps it created.
	if cfg.NA != alluvial.NADrop {
		for e, cover := range f.has {
			for a, ok := range cover {
				if !ok {
					return nil, errors.New(errors.ErrCodeInconsistentAxisSet,
						"entity %s has no row at axis %s", f.entities[e], axes[a])
				}
			}
		}
	}
	return f, nil
}

// aesMap converts a lode's bound aesthetic values into the record form.
// Returns nil when no aesthetic columns are bound.
func (f *frame) aesMap(aes []table.Value) map[string]table.Value {
	if len(aes) == 0 {
		return nil
	}
	m := make(map[string]table.Value, len(aes))
	for i, c := range f.aesCols {
		m[c] = aes[i]
	}
	return m
}
