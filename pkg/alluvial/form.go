package alluvial

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/table"
)

// Form classifies the shape of an input table.
type Form int

const (
	// FormNone means the table is neither valid alluvia nor lodes form.
	FormNone Form = iota
	// FormAlluvia is the wide form: one row per entity, one column per axis.
	FormAlluvia
	// FormLodes is the long form: one row per (entity, axis) pair.
	FormLodes
)

// String returns the form name used in CLI output and errors.
func (f Form) String() string {
	switch f {
	case FormAlluvia:
		return "alluvia"
	case FormLodes:
		return "lodes"
	default:
		return "none"
	}
}

// NAPolicy controls how missing category values are treated.
type NAPolicy int

const (
	// NAKeep retains missing values as an explicit sentinel category.
	NAKeep NAPolicy = iota
	// NADrop removes rows with missing category values before layout.
	NADrop
)

// Default logical column names for lodes form. Used when the corresponding
// Config field is empty.
const (
	DefaultKeyColumn   = "key"
	DefaultValueColumn = "value"
	DefaultIDColumn    = "id"
)

// Config names the logical columns of an input table and carries the
// conversion options. Column lookup happens once per operation; a missing
// required column fails fast with MALFORMED_ALLUVIAL_DATA.
type Config struct {
	// Key, Value, and ID name the lodes-form columns (axis indicator,
	// category, entity). Empty fields fall back to the defaults above.
	Key   string
	Value string
	ID    string

	// Axes names the alluvia-form axis columns in order. When empty, axis
	// columns are discovered by convention: the largest group of columns
	// sharing a common prefix followed by an integer suffix (sem1, sem2, ...).
	Axes []string

	// Weight names the weight column. Empty means every row weighs 1.
	Weight string

	// Keep lists extra columns copied through ToLodes unchanged.
	Keep []string

	// Distill resolves conflicting per-entity covariate values in
	// ToAlluvia. Nil means conflicts are an error.
	Distill DistillFunc

	// NA selects the missing-value policy.
	NA NAPolicy
}

// WithDefaults returns a copy with empty lodes column names filled in.
func (c Config) WithDefaults() Config {
	if c.Key == "" {
		c.Key = DefaultKeyColumn
	}
	if c.Value == "" {
		c.Value = DefaultValueColumn
	}
	if c.ID == "" {
		c.ID = DefaultIDColumn
	}
	return c
}

// Dataset is a table tagged with its detected form and the resolved
// configuration. Downstream stages consume a Dataset instead of re-inspecting
// the raw table. Produce one with Classify.
type Dataset struct {
	Form   Form
	Table  *table.Table
	Config Config
}

// Classify detects the table's form and returns a tagged Dataset.
// Returns MALFORMED_ALLUVIAL_DATA when the table is neither form.
func Classify(t *table.Table, cfg Config) (*Dataset, error) {
	cfg = cfg.WithDefaults()
	form := Detect(t, cfg)
	if form == FormNone {
		return nil, errors.New(errors.ErrCodeMalformedData,
			"table is neither alluvia nor lodes form")
	}
	return &Dataset{Form: form, Table: t, Config: cfg}, nil
}

// Lodes returns the dataset in lodes form, converting from alluvia form
// when necessary. Datasets already in lodes form are returned unchanged.
func (d *Dataset) Lodes() (*Dataset, error) {
	if d.Form == FormLodes {
		return d, nil
	}
	t, err := ToLodes(d.Table, d.Config)
	if err != nil {
		return nil, err
	}
	return &Dataset{Form: FormLodes, Table: t, Config: d.Config}, nil
}

// axisColPattern matches columns named as a non-digit prefix plus an
// integer suffix (axis1, sem2, wave10).
var axisColPattern = regexp.MustCompile(`^(.*\D)(\d+)$`)

// resolveAxes returns the alluvia-form axis columns: the explicit cfg.Axes
// when given (all must exist), otherwise the convention match. Returns at
// least two columns or an error.
func resolveAxes(t *table.Table, cfg Config) ([]string, error) {
	if len(cfg.Axes) > 0 {
		for _, a := range cfg.Axes {
			if !t.HasColumn(a) {
				return nil, errors.New(errors.ErrCodeColumnNotFound,
					"axis column %q not found", a)
			}
		}
		if len(cfg.Axes) < 2 {
			return nil, errors.New(errors.ErrCodeMalformedData,
				"need at least 2 axis columns, got %d", len(cfg.Axes))
		}
		return cfg.Axes, nil
	}

	axes := conventionAxes(t.Columns())
	if len(axes) < 2 {
		return nil, errors.New(errors.ErrCodeMalformedData,
			"no axis columns found by convention (want >=2 columns like axis1, axis2, ...)")
	}
	return axes, nil
}

// conventionAxes groups column names by prefix and returns the largest
// group with an integer suffix, ordered by suffix. Ties go to the prefix
// seen first, keeping the result deterministic for a fixed column order.
func conventionAxes(cols []string) []string {
	type member struct {
		name   string
		suffix int
	}
	groups := make(map[string][]member)
	var order []string

	for _, c := range cols {
		m := axisColPattern.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if _, seen := groups[m[1]]; !seen {
			order = append(order, m[1])
		}
		groups[m[1]] = append(groups[m[1]], member{name: c, suffix: n})
	}

	var best string
	for _, prefix := range order {
		if best == "" || len(groups[prefix]) > len(groups[best]) {
			best = prefix
		}
	}
	if best == "" || len(groups[best]) < 2 {
		return nil
	}

	members := groups[best]
	sort.SliceStable(members, func(i, j int) bool { return members[i].suffix < members[j].suffix })
	axes := make([]string, len(members))
	for i, m := range members {
		axes[i] = m.name
	}
	return axes
}

// Axes returns the axis labels of a lodes-form table: the distinct values
// of the key column in axis order. It is the exported entry point used by
// the layout stage; see axisLabels for the ordering rule.
func Axes(t *table.Table, keyCol string) []string {
	return axisLabels(t, keyCol)
}

// axisLabels returns the distinct key-column values of a lodes-form table
// in axis order: numeric ascending when every key is numeric, otherwise
// first-appearance order.
func axisLabels(t *table.Table, keyCol string) []string {
	seen := make(map[string]bool)
	var labels []string
	numeric := true
	nums := make(map[string]float64)

	keyIdx := t.ColumnIndex(keyCol)
	for r := 0; r < t.NumRows(); r++ {
		v := t.CellAt(r, keyIdx)
		k := v.Text()
		if seen[k] {
			continue
		}
		seen[k] = true
		labels = append(labels, k)
		if f, ok := v.Num(); ok {
			nums[k] = f
		} else {
			numeric = false
		}
	}

	if numeric {
		sort.SliceStable(labels, func(i, j int) bool { return nums[labels[i]] < nums[labels[j]] })
	}
	return labels
}
