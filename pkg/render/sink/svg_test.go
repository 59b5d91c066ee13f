package sink

import (
	"strings"
	"testing"

	"github.com/strataviz/alluvial/pkg/layout"
)

func testStrata() []layout.Stratum {
	return []layout.Stratum{
		{X: 1, Axis: "sem1", Category: "math", Weight: 2, YMin: 0, YMax: 2, Y: 1},
		{X: 1, Axis: "sem1", Category: "bio", Weight: 1, YMin: 2, YMax: 3, Y: 2.5},
		{X: 2, Axis: "sem2", Category: "cs", Weight: 3, YMin: 0, YMax: 3, Y: 1.5},
	}
}

func testFlows() []layout.FlowRecord {
	return []layout.FlowRecord{
		{Link: 1, X: 1, Side: layout.SideStart, Group: "1:1", Entity: "1", Stratum: "math", Weight: 2, YMin: 0, YMax: 2, Y: 1},
		{Link: 1, X: 2, Side: layout.SideEnd, Group: "1:1", Entity: "1", Stratum: "cs", Weight: 2, YMin: 0, YMax: 2, Y: 1},
		{Link: 1, X: 1, Side: layout.SideStart, Group: "1:2", Entity: "2", Stratum: "bio", Weight: 1, YMin: 2, YMax: 3, Y: 2.5},
		{Link: 1, X: 2, Side: layout.SideEnd, Group: "1:2", Entity: "2", Stratum: "cs", Weight: 1, YMin: 2, YMax: 3, Y: 2.5},
	}
}

func TestRenderSVG(t *testing.T) {
	out, err := RenderSVG(testStrata(), testFlows())
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	svg := string(out)

	if !strings.HasPrefix(svg, "<svg xmlns=") {
		t.Errorf("output does not start with an svg element: %.60s", svg)
	}
	if got := strings.Count(svg, "<rect"); got != 3 {
		t.Errorf("rect count = %d, want 3 (one per stratum)", got)
	}
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("path count = %d, want 2 (one per ribbon)", got)
	}
	if strings.Contains(svg, "<text") {
		t.Error("labels rendered without WithLabels")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	out, err := RenderSVG(testStrata(), testFlows(),
		WithSize(1024, 512), WithLabels(), WithFlowOpacity(0.8))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	svg := string(out)

	if !strings.Contains(svg, `viewBox="0 0 1024.0 512.0"`) {
		t.Errorf("viewBox missing custom size: %.120s", svg)
	}
	if got := strings.Count(svg, "<text"); got != 3 {
		t.Errorf("text count = %d, want 3", got)
	}
	if !strings.Contains(svg, `fill-opacity="0.80"`) {
		t.Error("custom flow opacity not applied")
	}
}

func TestRenderSVGPairingViolation(t *testing.T) {
	flows := testFlows()[:1] // orphan half-record
	_, err := RenderSVG(testStrata(), flows)
	if err == nil || !strings.Contains(err.Error(), "half-records") {
		t.Errorf("RenderSVG with orphan half = %v, want pairing error", err)
	}
}

func TestRenderSVGNoStrata(t *testing.T) {
	if _, err := RenderSVG(nil, nil); err == nil {
		t.Error("RenderSVG with no strata: want error, got nil")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	strata := []layout.Stratum{
		{X: 1, Axis: "a", Category: "R&D <lab>", Weight: 1, YMin: 0, YMax: 1, Y: 0.5},
	}
	out, err := RenderSVG(strata, nil, WithLabels())
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	svg := string(out)
	if !strings.Contains(svg, "R&amp;D &lt;lab&gt;") {
		t.Errorf("label not escaped: %s", svg)
	}
}

func TestCategoryColorsStablePerCategory(t *testing.T) {
	strata := []layout.Stratum{
		{X: 1, Category: "cs"},
		{X: 2, Category: "cs"},
		{X: 2, Category: "math"},
	}
	colors := categoryColors(strata)
	if colors["cs"] == "" || colors["math"] == "" {
		t.Fatalf("missing colors: %v", colors)
	}
	if colors["cs"] == colors["math"] {
		t.Error("distinct categories share a color")
	}
}
