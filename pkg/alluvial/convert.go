package alluvial

import (
	"slices"

	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/table"
)

// ToLodes reshapes an alluvia-form table into lodes form: one output row per
// (entity, axis), grouped axis-major (all entities at axis 1, then axis 2,
// ...), matching the stratum-by-stratum traversal of the layout stage.
//
// The key column carries the axis column's name, the value column the
// entity's category at that axis. Entity ids come from cfg.ID when the
// column exists, otherwise stable 1-based row ordinals are generated.
// Weight and Keep columns are copied through per emitted row.
//
// With NADrop, rows whose category at an axis is missing are omitted;
// with NAKeep the missing cell is carried through as a sentinel category.
func ToLodes(t *table.Table, cfg Config) (*table.Table, error) {
	cfg = cfg.WithDefaults()

	axes, err := resolveAxes(t, cfg)
	if err != nil {
		return nil, err
	}
	if !isAlluviaForm(t, cfg) {
		return nil, errors.New(errors.ErrCodeMalformedData,
			"table is not in alluvia form")
	}

	weightIdx := -1
	if cfg.Weight != "" {
		weightIdx = t.ColumnIndex(cfg.Weight)
		if weightIdx < 0 {
			return nil, errors.New(errors.ErrCodeColumnNotFound,
				"weight column %q not found", cfg.Weight)
		}
	}

	keep := make([]string, 0, len(cfg.Keep))
	for _, c := range cfg.Keep {
		if !t.HasColumn(c) {
			return nil, errors.New(errors.ErrCodeColumnNotFound,
				"keep column %q not found", c)
		}
		if c == cfg.Weight || slices.Contains(axes, c) {
			continue
		}
		keep = append(keep, c)
	}

	cols := []string{cfg.ID, cfg.Key, cfg.Value}
	if weightIdx >= 0 {
		cols = append(cols, cfg.Weight)
	}
	cols = append(cols, keep...)

	out, err := table.New(cols...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedData, err,
			"conflicting output column names")
	}

	idIdx := t.ColumnIndex(cfg.ID)
	for _, axis := range axes {
		axisIdx := t.ColumnIndex(axis)
		for r := 0; r < t.NumRows(); r++ {
			val := t.CellAt(r, axisIdx)
			if cfg.NA == NADrop && val.IsNA() {
				continue
			}

			var id table.Value
			if idIdx >= 0 {
				id = t.CellAt(r, idIdx)
			} else {
				id = table.Number(float64(r + 1))
			}

			row := []table.Value{id, table.String(axis), val}
			if weightIdx >= 0 {
				row = append(row, t.CellAt(r, weightIdx))
			}
			for _, c := range keep {
				row = append(row, t.CellAt(r, t.ColumnIndex(c)))
			}
			if err := out.AppendRow(row...); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "emit lodes row")
			}
		}
	}
	return out, nil
}

// ToAlluvia reshapes a lodes-form table into alluvia form: one output row
// per entity, one column per distinct key value. Covariate columns (every
// column other than key, value, and id) are expected to be constant per
// entity; when they are not, cfg.Distill resolves each conflicting group,
// and a nil policy fails with AMBIGUOUS_DISTILLATION.
//
// An entity missing a row at some axis is a structural error
// (INCONSISTENT_AXIS_SET) unless cfg.NA is NADrop, in which case the gap
// becomes a missing cell.
func ToAlluvia(t *table.Table, cfg Config) (*table.Table, error) {
	cfg = cfg.WithDefaults()

	for _, c := range []string{cfg.Key, cfg.Value, cfg.ID} {
		if !t.HasColumn(c) {
			return nil, errors.New(errors.ErrCodeMalformedData,
				"table is not in lodes form: column %q not found", c)
		}
	}

	axes := axisLabels(t, cfg.Key)
	if len(axes) < 2 {
		return nil, errors.New(errors.ErrCodeMalformedData,
			"need at least 2 distinct axis values in column %q, got %d", cfg.Key, len(axes))
	}

	var covariates []string
	for _, c := range t.Columns() {
		if c != cfg.Key && c != cfg.Value && c != cfg.ID {
			covariates = append(covariates, c)
		}
	}

	keyIdx := t.ColumnIndex(cfg.Key)
	valueIdx := t.ColumnIndex(cfg.Value)
	idIdx := t.ColumnIndex(cfg.ID)

	// Group rows by entity in first-appearance order.
	rowsByID := make(map[string][]int)
	var idOrder []string
	idValue := make(map[string]table.Value)
	for r := 0; r < t.NumRows(); r++ {
		id := t.CellAt(r, idIdx).Text()
		if _, seen := rowsByID[id]; !seen {
			idOrder = append(idOrder, id)
			idValue[id] = t.CellAt(r, idIdx)
		}
		rowsByID[id] = append(rowsByID[id], r)
	}

	cols := append([]string{cfg.ID}, covariates...)
	cols = append(cols, axes...)
	out, err := table.New(cols...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedData, err,
			"axis values collide with existing column names")
	}

	for _, id := range idOrder {
		rows := rowsByID[id]

		// Category per axis, rejecting duplicate (id, key) pairs.
		byAxis := make(map[string]table.Value, len(rows))
		for _, r := range rows {
			key := t.CellAt(r, keyIdx).Text()
			if _, dup := byAxis[key]; dup {
				return nil, errors.New(errors.ErrCodeMalformedData,
					"duplicate (id, key) pair (%s, %s)", id, key)
			}
			byAxis[key] = t.CellAt(r, valueIdx)
		}

		outRow := []table.Value{idValue[id]}

		for _, c := range covariates {
			colIdx := t.ColumnIndex(c)
			values := make([]table.Value, len(rows))
			for i, r := range rows {
				values[i] = t.CellAt(r, colIdx)
			}
			v, err := distillGroup(values, cfg.Distill, id, c)
			if err != nil {
				return nil, err
			}
			outRow = append(outRow, v)
		}

		for _, axis := range axes {
			v, ok := byAxis[axis]
			if !ok {
				if cfg.NA != NADrop {
					return nil, errors.New(errors.ErrCodeInconsistentAxisSet,
						"entity %s has no row at axis %s", id, axis)
				}
				v = table.NA()
			}
			outRow = append(outRow, v)
		}

		if err := out.AppendRow(outRow...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "emit alluvia row")
		}
	}
	return out, nil
}

// distillGroup collapses one entity's values in one covariate column.
// Unanimous groups never invoke the policy, so the default nil policy only
// fails on genuine conflicts.
func distillGroup(values []table.Value, distill DistillFunc, id, col string) (table.Value, error) {
	if unanimous(values) {
		return values[0], nil
	}
	if distill == nil {
		return table.Value{}, errors.New(errors.ErrCodeAmbiguousDistillation,
			"entity %s has conflicting values in column %q and no distill policy was given", id, col)
	}
	return distill(values), nil
}
