package layout

import (
	"strings"

	"github.com/strataviz/alluvial/pkg/errors"
)

// Guidance is a lode ordering strategy: for each axis it yields the axis
// priority sequence used as a multi-key sort when stacking lodes, most
// significant axis first. The axis's own position always leads.
//
// The zero value is not a usable strategy; construct one with Zigzag,
// LeftRight, RightLeft, Rightward, Leftward, Custom, or GuidanceByName.
// Operations that receive a zero Guidance fall back to Zigzag.
type Guidance struct {
	name       string
	priorities func(nAxes, axis int) []int
	flip       bool
}

// Name returns the strategy name ("zigzag", "leftright", ...).
func (g Guidance) Name() string { return g.name }

// Priorities returns the 0-based axis priority sequence for the given axis.
func (g Guidance) Priorities(nAxes, axis int) []int {
	return g.priorities(nAxes, axis)
}

func (g Guidance) valid() bool { return g.priorities != nil }

// Zigzag orders each axis by its own strata first, then by the neighbor
// axes outward with alternating direction (i+1, i-1, i+2, ...). The
// comparison direction of the secondary keys alternates with axis parity,
// interleaving the stacks of adjacent axes to reduce flow crossings.
func Zigzag() Guidance {
	return Guidance{
		name: "zigzag",
		flip: true,
		priorities: func(n, i int) []int {
			out := make([]int, 0, n)
			out = append(out, i)
			for d := 1; len(out) < n; d++ {
				if i+d < n {
					out = append(out, i+d)
				}
				if i-d >= 0 {
					out = append(out, i-d)
				}
			}
			return out
		},
	}
}

// LeftRight consults all axes to the left (nearest first), then all axes to
// the right: a fixed global directionality.
func LeftRight() Guidance {
	return Guidance{
		name: "leftright",
		priorities: func(n, i int) []int {
			out := make([]int, 0, n)
			out = append(out, i)
			for a := i - 1; a >= 0; a-- {
				out = append(out, a)
			}
			for a := i + 1; a < n; a++ {
				out = append(out, a)
			}
			return out
		},
	}
}

// RightLeft is the mirror of LeftRight: right neighbors first.
func RightLeft() Guidance {
	return Guidance{
		name: "rightleft",
		priorities: func(n, i int) []int {
			out := make([]int, 0, n)
			out = append(out, i)
			for a := i + 1; a < n; a++ {
				out = append(out, a)
			}
			for a := i - 1; a >= 0; a-- {
				out = append(out, a)
			}
			return out
		},
	}
}

// Rightward orders each axis by the single axis immediately to its right,
// ignoring all others. The last axis orders by itself alone.
func Rightward() Guidance {
	return Guidance{
		name: "rightward",
		priorities: func(n, i int) []int {
			if i+1 < n {
				return []int{i, i + 1}
			}
			return []int{i}
		},
	}
}

// Leftward orders each axis by the single axis immediately to its left,
// ignoring all others. The first axis orders by itself alone.
func Leftward() Guidance {
	return Guidance{
		name: "leftward",
		priorities: func(n, i int) []int {
			if i > 0 {
				return []int{i, i - 1}
			}
			return []int{i}
		},
	}
}

// Custom wraps a caller-supplied priority function as a Guidance. The
// function must return a permutation of a subset of 0..nAxes-1 starting
// with the axis itself, and must be deterministic.
func Custom(name string, priorities func(nAxes, axis int) []int) Guidance {
	return Guidance{name: name, priorities: priorities}
}

// GuidanceByName resolves a built-in strategy name. The set is closed;
// custom strategies are passed with Custom instead.
func GuidanceByName(name string) (Guidance, error) {
	switch strings.ToLower(name) {
	case "zigzag":
		return Zigzag(), nil
	case "leftright":
		return LeftRight(), nil
	case "rightleft":
		return RightLeft(), nil
	case "rightward":
		return Rightward(), nil
	case "leftward":
		return Leftward(), nil
	default:
		return Guidance{}, errors.New(errors.ErrCodeInvalidGuidance,
			"unknown lode guidance %q (want zigzag, leftright, rightleft, rightward, or leftward)", name)
	}
}
