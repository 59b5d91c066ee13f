package sink

import (
	"bytes"
	"fmt"

	"github.com/strataviz/alluvial/pkg/layout"
)

// Default frame dimensions in user units.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// axisBandFraction is the share of one axis slot occupied by the stratum
// rectangles; the rest is ribbon span.
const axisBandFraction = 0.22

// palette cycles per stratum category in first-appearance order.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac",
}

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width   float64
	height  float64
	margin  float64
	opacity float64
	labels  bool
}

// WithSize sets the frame dimensions.
func WithSize(width, height float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = width, height }
}

// WithLabels draws category labels inside the stratum rectangles.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithFlowOpacity sets the ribbon fill opacity (default 0.5).
func WithFlowOpacity(o float64) SVGOption { return func(r *svgRenderer) { r.opacity = o } }

// ribbon is a paired flow: the start and end half-records of one group id.
type ribbon struct {
	start layout.FlowRecord
	end   layout.FlowRecord
}

// RenderSVG draws the diagram: stratum rectangles per axis and flow ribbons
// per link. Strata and flows must come from the same dataset and options;
// the weight scale is taken from the strata.
func RenderSVG(strata []layout.Stratum, flows []layout.FlowRecord, opts ...SVGOption) ([]byte, error) {
	r := svgRenderer{width: DefaultWidth, height: DefaultHeight, margin: 24, opacity: 0.5}
	for _, opt := range opts {
		opt(&r)
	}

	ribbons, err := pairFlows(flows)
	if err != nil {
		return nil, err
	}

	nAxes, maxWeight := frameExtent(strata)
	if nAxes == 0 {
		return nil, fmt.Errorf("render svg: no strata to draw")
	}

	// Weight-to-pixel scale; y is flipped because SVG grows downward.
	innerH := r.height - 2*r.margin
	innerW := r.width - 2*r.margin
	slot := innerW / float64(nAxes)
	band := slot * axisBandFraction
	scaleY := innerH / maxWeight

	xLeft := func(axis int) float64 { // left edge of the axis band
		return r.margin + (float64(axis-1)+0.5)*slot - band/2
	}
	yPix := func(w float64) float64 { return r.margin + innerH - w*scaleY }

	colors := categoryColors(strata)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)

	for _, rb := range ribbons {
		renderRibbon(&buf, rb, xLeft, yPix, band, colors, r.opacity)
	}
	for _, s := range strata {
		renderStratum(&buf, s, xLeft, yPix, band, colors, r.labels)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// pairFlows matches the two half-records of every group id. A group id that
// does not appear exactly twice violates the link pairing invariant.
func pairFlows(flows []layout.FlowRecord) ([]ribbon, error) {
	byGroup := make(map[string][]layout.FlowRecord)
	var order []string
	for _, fl := range flows {
		if _, seen := byGroup[fl.Group]; !seen {
			order = append(order, fl.Group)
		}
		byGroup[fl.Group] = append(byGroup[fl.Group], fl)
	}

	ribbons := make([]ribbon, 0, len(order))
	for _, g := range order {
		halves := byGroup[g]
		if len(halves) != 2 {
			return nil, fmt.Errorf("render svg: flow group %q has %d half-records, want 2", g, len(halves))
		}
		a, b := halves[0], halves[1]
		if a.Side == layout.SideEnd {
			a, b = b, a
		}
		ribbons = append(ribbons, ribbon{start: a, end: b})
	}
	return ribbons, nil
}

func frameExtent(strata []layout.Stratum) (nAxes int, maxWeight float64) {
	totals := make(map[int]float64)
	for _, s := range strata {
		if s.X > nAxes {
			nAxes = s.X
		}
		totals[s.X] += s.Weight
	}
	for _, t := range totals {
		if t > maxWeight {
			maxWeight = t
		}
	}
	if maxWeight == 0 {
		maxWeight = 1
	}
	return nAxes, maxWeight
}

// categoryColors assigns palette colors to categories in first-appearance
// order across axes, so the same category keeps its color everywhere.
func categoryColors(strata []layout.Stratum) map[string]string {
	colors := make(map[string]string)
	var order []string
	for _, s := range strata {
		if _, seen := colors[s.Category]; !seen {
			colors[s.Category] = palette[len(order)%len(palette)]
			order = append(order, s.Category)
		}
	}
	return colors
}

func renderStratum(buf *bytes.Buffer, s layout.Stratum, xLeft func(int) float64, yPix func(float64) float64, band float64, colors map[string]string, labels bool) {
	x := xLeft(s.X)
	yTop := yPix(s.YMax)
	h := yPix(s.YMin) - yTop
	fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="#333" stroke-width="0.8"/>`+"\n",
		x, yTop, band, h, colors[s.Category])
	if labels {
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-size="12" fill="#111">%s</text>`+"\n",
			x+band/2, yPix(s.Y), escapeText(s.Category))
	}
}

// renderRibbon draws one flow as a closed path: two horizontal cubic Bézier
// edges joined by the vertical extents at each axis band edge.
func renderRibbon(buf *bytes.Buffer, rb ribbon, xLeft func(int) float64, yPix func(float64) float64, band float64, colors map[string]string, opacity float64) {
	x0 := xLeft(rb.start.X) + band // right edge of start band
	x1 := xLeft(rb.end.X)         // left edge of end band
	mx := (x0 + x1) / 2

	sTop, sBot := yPix(rb.start.YMax), yPix(rb.start.YMin)
	eTop, eBot := yPix(rb.end.YMax), yPix(rb.end.YMin)

	fmt.Fprintf(buf,
		`  <path d="M %.2f,%.2f C %.2f,%.2f %.2f,%.2f %.2f,%.2f L %.2f,%.2f C %.2f,%.2f %.2f,%.2f %.2f,%.2f Z" fill="%s" fill-opacity="%.2f"/>`+"\n",
		x0, sTop,
		mx, sTop, mx, eTop, x1, eTop,
		x1, eBot,
		mx, eBot, mx, sBot, x0, sBot,
		colors[rb.start.Stratum], opacity)
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
