package sink

import (
	"encoding/json"

	"github.com/strataviz/alluvial/pkg/layout"
	"github.com/strataviz/alluvial/pkg/table"
)

// JSONOption configures RenderJSON.
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	guidance string
	runID    string
	indent   bool
}

// WithJSONGuidance records the guidance strategy name in the output for
// reproducible re-rendering.
func WithJSONGuidance(name string) JSONOption {
	return func(r *jsonRenderer) { r.guidance = name }
}

// WithJSONRunID records the pipeline run id in the output.
func WithJSONRunID(id string) JSONOption {
	return func(r *jsonRenderer) { r.runID = id }
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption {
	return func(r *jsonRenderer) { r.indent = true }
}

type jsonOutput struct {
	RunID    string        `json:"run_id,omitempty"`
	Guidance string        `json:"guidance,omitempty"`
	Strata   []jsonStratum `json:"strata"`
	Lodes    []jsonLode    `json:"lodes,omitempty"`
	Flows    []jsonFlow    `json:"flows,omitempty"`
}

type jsonStratum struct {
	X        int     `json:"x"`
	Axis     string  `json:"axis"`
	Category string  `json:"category"`
	Weight   float64 `json:"weight"`
	YMin     float64 `json:"ymin"`
	YMax     float64 `json:"ymax"`
	Y        float64 `json:"y"`
}

type jsonLode struct {
	X       int               `json:"x"`
	Axis    string            `json:"axis"`
	Stratum string            `json:"stratum"`
	Entity  string            `json:"entity"`
	Group   float64           `json:"group"`
	Weight  float64           `json:"weight"`
	YMin    float64           `json:"ymin"`
	YMax    float64           `json:"ymax"`
	Y       float64           `json:"y"`
	Aes     map[string]string `json:"aes,omitempty"`
}

type jsonFlow struct {
	Link    int               `json:"link"`
	X       int               `json:"x"`
	Side    string            `json:"side"`
	Group   string            `json:"group"`
	Entity  string            `json:"entity"`
	Stratum string            `json:"stratum"`
	Weight  float64           `json:"weight"`
	YMin    float64           `json:"ymin"`
	YMax    float64           `json:"ymax"`
	Y       float64           `json:"y"`
	Aes     map[string]string `json:"aes,omitempty"`
}

// RenderJSON emits the geometric records as JSON for external renderers.
// Record order is preserved exactly as computed.
func RenderJSON(strata []layout.Stratum, lodes []layout.LodeRecord, flows []layout.FlowRecord, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		RunID:    r.runID,
		Guidance: r.guidance,
		Strata:   make([]jsonStratum, 0, len(strata)),
	}
	for _, s := range strata {
		out.Strata = append(out.Strata, jsonStratum{
			X: s.X, Axis: s.Axis, Category: s.Category,
			Weight: s.Weight, YMin: s.YMin, YMax: s.YMax, Y: s.Y,
		})
	}
	for _, l := range lodes {
		out.Lodes = append(out.Lodes, jsonLode{
			X: l.X, Axis: l.Axis, Stratum: l.Stratum, Entity: l.Entity,
			Group: l.Group, Weight: l.Weight, YMin: l.YMin, YMax: l.YMax, Y: l.Y,
			Aes: aesTexts(l.Aes),
		})
	}
	for _, fl := range flows {
		out.Flows = append(out.Flows, jsonFlow{
			Link: fl.Link, X: fl.X, Side: fl.Side.String(), Group: fl.Group,
			Entity: fl.Entity, Stratum: fl.Stratum, Weight: fl.Weight,
			YMin: fl.YMin, YMax: fl.YMax, Y: fl.Y,
			Aes: aesTexts(fl.Aes),
		})
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func aesTexts(aes map[string]table.Value) map[string]string {
	if len(aes) == 0 {
		return nil
	}
	m := make(map[string]string, len(aes))
	for k, v := range aes {
		m[k] = v.Text()
	}
	return m
}
