// Package table provides a generic in-memory table with named columns and
// tagged cell values, the common currency of the alluvial engine.
//
// A Table is column-ordered and row-major: every row has exactly one Value
// per column. Values are a small tagged union over strings, numbers, and
// missing cells, which lets category columns, weight columns, and axis
// indicator columns share one representation without reflection.
//
// Tables are passed by value between pipeline stages: every transformation
// produces a new Table and never aliases back into its input. Table is not
// safe for concurrent mutation; read-only access can be shared freely.
package table

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrEmptyColumnName is returned by New when a column name is empty.
	ErrEmptyColumnName = errors.New("column name must not be empty")

	// ErrDuplicateColumn is returned by New and AddColumn when a column
	// name is already in use. Column names must be unique per table.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrRowArity is returned by AppendRow when the number of values does
	// not match the number of columns.
	ErrRowArity = errors.New("row arity does not match column count")

	// ErrUnknownColumn is returned by operations that reference a column
	// name not present in the table.
	ErrUnknownColumn = errors.New("unknown column")
)

// Kind discriminates the tagged Value union.
type Kind int

const (
	// KindMissing marks an absent cell (NA). The zero Value is missing.
	KindMissing Kind = iota
	// KindString marks a categorical value.
	KindString
	// KindNumber marks a numeric value (weights, axis positions).
	KindNumber
)

// Value is one table cell: a string, a number, or missing.
// The zero value is a missing cell.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// String constructs a string-valued cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number constructs a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// NA constructs a missing cell.
func NA() Value { return Value{} }

// Kind returns the value's discriminator.
func (v Value) Kind() Kind { return v.kind }

// IsNA reports whether the cell is missing.
func (v Value) IsNA() bool { return v.kind == KindMissing }

// Num returns the numeric content and true when the value is a number or a
// string that parses as one. Missing cells and non-numeric strings return
// 0 and false.
func (v Value) Num() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Text returns the canonical string form of the value. Numbers use the
// shortest representation that round-trips; missing cells return "NA".
// Two equal values always have the same Text, so it is safe as a map key.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	default:
		return "NA"
	}
}

// String implements fmt.Stringer using Text.
func (v Value) String() string { return v.Text() }

// Equal reports whether two values have the same kind and content.
// NaN numbers are never equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}

// Compare orders values deterministically for multi-key sorts:
// missing < number < string, numbers by magnitude, strings lexically.
// NaN sorts before all other numbers.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		switch {
		case a.num == b.num:
			return 0
		case math.IsNaN(a.num) && math.IsNaN(b.num):
			return 0
		case math.IsNaN(a.num):
			return -1
		case math.IsNaN(b.num):
			return 1
		case a.num < b.num:
			return -1
		default:
			return 1
		}
	case KindString:
		return strings.Compare(a.str, b.str)
	default:
		return 0
	}
}

// Parse converts raw text into a Value: empty strings and the literal "NA"
// become missing cells, numeric text becomes a number, anything else a string.
// This is the policy used by the CSV and SQLite sources.
func Parse(s string) Value {
	t := strings.TrimSpace(s)
	if t == "" || t == "NA" {
		return NA()
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return Number(f)
	}
	return String(s)
}

// Table is an ordered collection of named columns over row-major storage.
// Use New to create one; the zero value is not usable.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]Value
}

// New creates an empty table with the given column names.
// Returns ErrEmptyColumnName or ErrDuplicateColumn on invalid names.
func New(cols ...string) (*Table, error) {
	t := &Table{
		cols:  make([]string, 0, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if c == "" {
			return nil, ErrEmptyColumnName
		}
		if _, dup := t.index[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		t.index[c] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New but panics on error. Intended for tests and literals
// where column names are compile-time constants.
func MustNew(cols ...string) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// AppendRow adds one row. The number of values must equal the column count.
func (t *Table) AppendRow(vals ...Value) error {
	if len(vals) != len(t.cols) {
		return fmt.Errorf("%w: got %d values, want %d", ErrRowArity, len(vals), len(t.cols))
	}
	t.rows = append(t.rows, slices.Clone(vals))
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the column names in declaration order.
// The returned slice is a copy.
func (t *Table) Columns() []string { return slices.Clone(t.cols) }

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}
	return i
}

// Cell returns the value at (row, column name). The second result is false
// when the row is out of range or the column does not exist.
func (t *Table) Cell(row int, col string) (Value, bool) {
	i, ok := t.index[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return Value{}, false
	}
	return t.rows[row][i], true
}

// CellAt returns the value at (row, column position) without name lookup.
// Callers must have validated both indices.
func (t *Table) CellAt(row, col int) Value { return t.rows[row][col] }

// Row returns a copy of row i.
func (t *Table) Row(i int) []Value { return slices.Clone(t.rows[i]) }

// Column returns a copy of the named column's values, or ErrUnknownColumn.
func (t *Table) Column(name string) ([]Value, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]Value, len(t.rows))
	for r := range t.rows {
		out[r] = t.rows[r][i]
	}
	return out, nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{
		cols:  slices.Clone(t.cols),
		index: make(map[string]int, len(t.index)),
		rows:  make([][]Value, len(t.rows)),
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	for i, r := range t.rows {
		c.rows[i] = slices.Clone(r)
	}
	return c
}

// Select returns a new table containing only the named columns, in the
// given order. Returns ErrUnknownColumn if any name is absent.
func (t *Table) Select(cols ...string) (*Table, error) {
	idx := make([]int, len(cols))
	for i, c := range cols {
		j, ok := t.index[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		idx[i] = j
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		vals := make([]Value, len(idx))
		for i, j := range idx {
			vals[i] = row[j]
		}
		out.rows = append(out.rows, vals)
	}
	return out, nil
}

// Filter returns a new table containing the rows for which keep returns true.
// Row order is preserved.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := &Table{
		cols:  slices.Clone(t.cols),
		index: make(map[string]int, len(t.index)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for i, r := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, slices.Clone(r))
		}
	}
	return out
}

// RowKey builds a deterministic composite key from the row's values in the
// named columns. It is used for entity identity and duplicate detection.
// Column names absent from the table are ignored.
func (t *Table) RowKey(row int, cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		i, ok := t.index[c]
		if !ok {
			continue
		}
		v := t.rows[row][i]
		// Column separator plus a kind tag so "1" (string) and 1 (number)
		// never collide.
		fmt.Fprintf(&b, "\x1f%d:%s", v.kind, v.Text())
	}
	return b.String()
}
