package layout

import (
	"reflect"
	"testing"

	"github.com/strataviz/alluvial/pkg/errors"
)

func TestGuidancePriorities(t *testing.T) {
	tests := []struct {
		name  string
		g     Guidance
		nAxes int
		axis  int
		want  []int
	}{
		{name: "ZigzagMiddle", g: Zigzag(), nAxes: 5, axis: 2, want: []int{2, 3, 1, 4, 0}},
		{name: "ZigzagFirst", g: Zigzag(), nAxes: 4, axis: 0, want: []int{0, 1, 2, 3}},
		{name: "ZigzagLast", g: Zigzag(), nAxes: 4, axis: 3, want: []int{3, 2, 1, 0}},
		{name: "LeftRight", g: LeftRight(), nAxes: 4, axis: 2, want: []int{2, 1, 0, 3}},
		{name: "LeftRightFirst", g: LeftRight(), nAxes: 3, axis: 0, want: []int{0, 1, 2}},
		{name: "RightLeft", g: RightLeft(), nAxes: 4, axis: 1, want: []int{1, 2, 3, 0}},
		{name: "Rightward", g: Rightward(), nAxes: 3, axis: 0, want: []int{0, 1}},
		{name: "RightwardLast", g: Rightward(), nAxes: 3, axis: 2, want: []int{2}},
		{name: "Leftward", g: Leftward(), nAxes: 3, axis: 2, want: []int{2, 1}},
		{name: "LeftwardFirst", g: Leftward(), nAxes: 3, axis: 0, want: []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.g.Priorities(tt.nAxes, tt.axis)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s.Priorities(%d, %d) = %v, want %v",
					tt.g.Name(), tt.nAxes, tt.axis, got, tt.want)
			}
		})
	}
}

func TestGuidanceByName(t *testing.T) {
	for _, name := range []string{"zigzag", "leftright", "rightleft", "rightward", "leftward"} {
		g, err := GuidanceByName(name)
		if err != nil {
			t.Errorf("GuidanceByName(%q) = %v, want nil", name, err)
		}
		if g.Name() != name {
			t.Errorf("Name() = %q, want %q", g.Name(), name)
		}
	}

	if _, err := GuidanceByName("ZigZag"); err != nil {
		t.Errorf("GuidanceByName is case-insensitive, got %v", err)
	}

	_, err := GuidanceByName("diagonal")
	if !errors.Is(err, errors.ErrCodeInvalidGuidance) {
		t.Errorf("GuidanceByName(diagonal) = %v, want INVALID_GUIDANCE", err)
	}
}

func TestCustomGuidance(t *testing.T) {
	g := Custom("own-axis", func(n, i int) []int { return []int{i} })
	if !g.valid() {
		t.Fatal("Custom guidance is not valid")
	}
	if got := g.Priorities(4, 2); len(got) != 1 || got[0] != 2 {
		t.Errorf("Priorities(4, 2) = %v, want [2]", got)
	}
}
