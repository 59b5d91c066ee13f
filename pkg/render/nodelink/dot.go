// Package nodelink renders the alluvial flow network as a node-link
// diagram: one node per stratum, one weighted edge per aggregated flow.
// It produces Graphviz DOT and can render SVG in-process.
//
// This view complements the ribbon diagram of pkg/render/sink: it discards
// the computed vertical extents and shows only the network topology with
// edge weights, which is often easier to read for dense data.
package nodelink

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/strataviz/alluvial/pkg/layout"
)

// Options configures DOT generation.
type Options struct {
	// Detailed includes axis label and weight in node labels.
	// When false, only the category is shown.
	Detailed bool
}

// ToDOT converts strata and flows to Graphviz DOT. Strata become box nodes
// ranked left-to-right by axis; the two halves of each flow group become one
// edge between the start and end strata, labeled with the flow weight.
func ToDOT(strata []layout.Stratum, flows []layout.FlowRecord, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph alluvial {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	// One subgraph per axis keeps its strata in one rank.
	byAxis := make(map[int][]layout.Stratum)
	maxAxis := 0
	for _, s := range strata {
		byAxis[s.X] = append(byAxis[s.X], s)
		if s.X > maxAxis {
			maxAxis = s.X
		}
	}
	for x := 1; x <= maxAxis; x++ {
		fmt.Fprintf(&buf, "  subgraph axis%d {\n    rank=same;\n", x)
		for _, s := range byAxis[x] {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", nodeID(s.X, s.Category), fmtLabel(s, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	maxEdge := 0.0
	edges := flowEdges(flows)
	for _, e := range edges {
		if e.weight > maxEdge {
			maxEdge = e.weight
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=\"%g\", penwidth=%.2f];\n",
			e.from, e.to, e.weight, penWidth(e.weight, maxEdge))
	}

	buf.WriteString("}\n")
	return buf.String()
}

type edge struct {
	from, to string
	weight   float64
}

// flowEdges pairs half-records by group and accumulates edge weights per
// (start stratum, end stratum) pair, in first-appearance order.
func flowEdges(flows []layout.FlowRecord) []edge {
	start := make(map[string]layout.FlowRecord)
	for _, fl := range flows {
		if fl.Side == layout.SideStart {
			start[fl.Group] = fl
		}
	}

	weights := make(map[[2]string]float64)
	var order [][2]string
	for _, fl := range flows {
		if fl.Side != layout.SideEnd {
			continue
		}
		s, ok := start[fl.Group]
		if !ok {
			continue
		}
		key := [2]string{nodeID(s.X, s.Stratum), nodeID(fl.X, fl.Stratum)}
		if _, seen := weights[key]; !seen {
			order = append(order, key)
		}
		weights[key] += s.Weight
	}

	out := make([]edge, 0, len(order))
	for _, key := range order {
		out = append(out, edge{from: key[0], to: key[1], weight: weights[key]})
	}
	return out
}

func nodeID(axis int, category string) string {
	return fmt.Sprintf("%d/%s", axis, category)
}

func fmtLabel(s layout.Stratum, detailed bool) string {
	if !detailed {
		return s.Category
	}
	return fmt.Sprintf("%s\naxis: %s\nweight: %g", s.Category, s.Axis, s.Weight)
}

// penWidth scales edge thickness relative to the heaviest edge.
func penWidth(w, max float64) float64 {
	if max == 0 {
		return 1
	}
	return 1 + 4*w/max
}

// RenderSVG renders a DOT graph to SVG using Graphviz in-process.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
