package alluvial

import (
	"strings"

	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/table"
)

// DistillFunc collapses the values one entity holds in one column across
// axes into a single representative value. It is called with the values in
// original row order and must be deterministic for a fixed input order.
// The input slice is never empty.
type DistillFunc func(values []table.Value) table.Value

// DistillFirst keeps the first value in original row order.
func DistillFirst(values []table.Value) table.Value {
	return values[0]
}

// DistillLast keeps the last value in original row order.
func DistillLast(values []table.Value) table.Value {
	return values[len(values)-1]
}

// DistillMost keeps the most frequent value. Ties break to the value
// encountered first in original row order, so the result is deterministic.
func DistillMost(values []table.Value) table.Value {
	counts := make(map[string]int, len(values))
	firstAt := make(map[string]int, len(values))
	byKey := make(map[string]table.Value, len(values))

	for i, v := range values {
		k := v.Text()
		if _, seen := counts[k]; !seen {
			firstAt[k] = i
			byKey[k] = v
		}
		counts[k]++
	}

	bestKey := values[0].Text()
	for k, n := range counts {
		switch {
		case n > counts[bestKey]:
			bestKey = k
		case n == counts[bestKey] && firstAt[k] < firstAt[bestKey]:
			bestKey = k
		}
	}
	return byKey[bestKey]
}

// DistillByName resolves a built-in distillation policy name. The name set
// is closed; custom policies are passed as a DistillFunc directly.
func DistillByName(name string) (DistillFunc, error) {
	switch strings.ToLower(name) {
	case "first":
		return DistillFirst, nil
	case "last":
		return DistillLast, nil
	case "most":
		return DistillMost, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidDistill,
			"unknown distill policy %q (want first, last, or most)", name)
	}
}

// unanimous reports whether all values in the group are equal.
func unanimous(values []table.Value) bool {
	for _, v := range values[1:] {
		if !v.Equal(values[0]) {
			return false
		}
	}
	return true
}
