package alluvial

import (
	"github.com/strataviz/alluvial/pkg/table"
)

// Detect inspects a table and classifies it as alluvia form, lodes form, or
// neither. Detection is pure: the table is never modified.
//
// The lodes check runs first because a lodes-form table with an id column
// named like an axis column could otherwise pass the alluvia convention
// match. Each check validates internal consistency, not just column
// presence: a table whose entities cover different axis sets is FormNone.
func Detect(t *table.Table, cfg Config) Form {
	if t == nil || t.NumRows() == 0 {
		return FormNone
	}
	cfg = cfg.WithDefaults()

	if isLodesForm(t, cfg) {
		return FormLodes
	}
	if isAlluviaForm(t, cfg) {
		return FormAlluvia
	}
	return FormNone
}

// isLodesForm checks that the key, value, and id columns exist, that every
// entity covers exactly the same axis set, and that no (id, key) pair is
// duplicated.
func isLodesForm(t *table.Table, cfg Config) bool {
	for _, c := range []string{cfg.Key, cfg.Value, cfg.ID} {
		if !t.HasColumn(c) {
			return false
		}
	}

	keyIdx := t.ColumnIndex(cfg.Key)
	idIdx := t.ColumnIndex(cfg.ID)

	// Per-entity axis coverage, with duplicate (id, key) detection.
	coverage := make(map[string]map[string]bool)
	var idOrder []string
	for r := 0; r < t.NumRows(); r++ {
		id := t.CellAt(r, idIdx).Text()
		key := t.CellAt(r, keyIdx).Text()
		keys, ok := coverage[id]
		if !ok {
			keys = make(map[string]bool)
			coverage[id] = keys
			idOrder = append(idOrder, id)
		}
		if keys[key] {
			return false // duplicate (id, key) pair
		}
		keys[key] = true
	}

	// Every entity must cover the identical key set.
	first := coverage[idOrder[0]]
	for _, id := range idOrder[1:] {
		keys := coverage[id]
		if len(keys) != len(first) {
			return false
		}
		for k := range keys {
			if !first[k] {
				return false
			}
		}
	}
	return true
}

// isAlluviaForm checks that at least two axis columns exist (explicit or by
// convention) and that rows are unique by entity identity: by the id column
// when one is present, by full-row identity otherwise.
func isAlluviaForm(t *table.Table, cfg Config) bool {
	axes, err := resolveAxes(t, cfg)
	if err != nil || len(axes) < 2 {
		return false
	}

	if t.HasColumn(cfg.ID) {
		idIdx := t.ColumnIndex(cfg.ID)
		seen := make(map[string]bool, t.NumRows())
		for r := 0; r < t.NumRows(); r++ {
			id := t.CellAt(r, idIdx).Text()
			if seen[id] {
				return false
			}
			seen[id] = true
		}
		return true
	}

	all := t.Columns()
	seen := make(map[string]bool, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		key := t.RowKey(r, all)
		if seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}
