package sink

import (
	"encoding/json"
	"testing"

	"github.com/strataviz/alluvial/pkg/layout"
	"github.com/strataviz/alluvial/pkg/table"
)

func TestRenderJSON(t *testing.T) {
	lodes := []layout.LodeRecord{
		{X: 1, Axis: "sem1", Stratum: "math", Entity: "1", Group: 1, Weight: 2, YMin: 0, YMax: 2, Y: 1,
			Aes: map[string]table.Value{"gender": table.String("F")}},
	}

	out, err := RenderJSON(testStrata(), lodes, testFlows(),
		WithJSONGuidance("zigzag"), WithJSONRunID("run-42"))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var decoded struct {
		RunID    string `json:"run_id"`
		Guidance string `json:"guidance"`
		Strata   []struct {
			X        int     `json:"x"`
			Category string  `json:"category"`
			YMax     float64 `json:"ymax"`
		} `json:"strata"`
		Lodes []struct {
			Entity string            `json:"entity"`
			Group  float64           `json:"group"`
			Aes    map[string]string `json:"aes"`
		} `json:"lodes"`
		Flows []struct {
			Side  string `json:"side"`
			Group string `json:"group"`
		} `json:"flows"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.RunID != "run-42" || decoded.Guidance != "zigzag" {
		t.Errorf("header = (%q, %q), want (run-42, zigzag)", decoded.RunID, decoded.Guidance)
	}
	if len(decoded.Strata) != 3 || len(decoded.Lodes) != 1 || len(decoded.Flows) != 4 {
		t.Errorf("record counts = (%d, %d, %d), want (3, 1, 4)",
			len(decoded.Strata), len(decoded.Lodes), len(decoded.Flows))
	}
	if decoded.Strata[0].Category != "math" || decoded.Strata[0].YMax != 2 {
		t.Errorf("strata[0] = %+v, want math with ymax 2", decoded.Strata[0])
	}
	if decoded.Lodes[0].Aes["gender"] != "F" {
		t.Errorf("lode aes = %v, want gender=F", decoded.Lodes[0].Aes)
	}
	if decoded.Flows[0].Side != "start" || decoded.Flows[1].Side != "end" {
		t.Errorf("flow sides = (%s, %s), want (start, end)", decoded.Flows[0].Side, decoded.Flows[1].Side)
	}
}

func TestRenderJSONIndent(t *testing.T) {
	compact, err := RenderJSON(testStrata(), nil, nil)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	pretty, err := RenderJSON(testStrata(), nil, nil, WithJSONIndent())
	if err != nil {
		t.Fatalf("RenderJSON (indent): %v", err)
	}
	if len(pretty) <= len(compact) {
		t.Error("indented output is not larger than compact output")
	}
}

func TestRenderJSONOmitsEmptySections(t *testing.T) {
	out, err := RenderJSON(testStrata(), nil, nil)
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"run_id", "guidance", "lodes", "flows"} {
		if _, present := decoded[key]; present {
			t.Errorf("empty %q section serialized, want omitted", key)
		}
	}
	if _, present := decoded["strata"]; !present {
		t.Error("strata section missing")
	}
}
