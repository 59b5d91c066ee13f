// Package pipeline provides the core processing pipeline of the alluvial
// engine: load → classify → layout → render.
//
// This package ties the table sources, the reshaping core, the position
// calculators, and the rendering sinks together so the CLI and the HTTP
// server behave identically. Each stage can also be run independently
// through the Runner's exported methods.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Input:   "cohorts.csv",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/strataviz/alluvial/pkg/alluvial"
	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/layout"
	"github.com/strataviz/alluvial/pkg/table"
)

// Default values shared by the CLI and the HTTP server.
const (
	// DefaultWidth is the default frame width in user units.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in user units.
	DefaultHeight = 600.0

	// DefaultGuidance is the default lode ordering strategy.
	DefaultGuidance = "zigzag"
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatJSON     = "json"
	FormatDOT      = "dot"
	FormatNodeLink = "nodelink" // graphviz-rendered node-link SVG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatJSON:     true,
	FormatDOT:      true,
	FormatNodeLink: true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for HTTP requests.
type Options struct {
	// Load options. Exactly one of Input or Table must be set: Input names
	// a CSV file or a SQLite database (with Query), Table supplies the
	// data directly.
	Input string `json:"input,omitempty"`
	Query string `json:"query,omitempty"`

	// Schema options: logical column names and the explicit axis set.
	Key    string   `json:"key,omitempty"`
	Value  string   `json:"value,omitempty"`
	ID     string   `json:"id,omitempty"`
	Weight string   `json:"weight,omitempty"`
	Axes   []string `json:"axes,omitempty"`
	Keep   []string `json:"keep,omitempty"`
	Distill string  `json:"distill,omitempty"`
	NADrop bool     `json:"na_drop,omitempty"`

	// Layout options.
	Guidance         string   `json:"guidance,omitempty"`
	Aes              []string `json:"aes,omitempty"`
	AesBind          bool     `json:"aes_bind,omitempty"`
	StratumOrder     string   `json:"stratum_order,omitempty"` // "desc", "asc", "firstseen"
	AggregateWeights bool     `json:"aggregate_weights,omitempty"`
	Decreasing       *bool    `json:"decreasing,omitempty"` // nil preserves row order

	// Render options.
	Formats  []string `json:"formats,omitempty"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Labels   bool     `json:"labels,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // DOT node labels

	// Runtime options (not serialized).
	Table  *table.Table `json:"-"`
	Logger *log.Logger  `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this execution.
	RunID string

	// Form is the detected input form.
	Form alluvial.Form

	// Geometry computed by the layout stage.
	Strata []layout.Stratum
	Lodes  []layout.LodeRecord
	Flows  []layout.FlowRecord

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	Axes       int
	Entities   int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, json, dot, nodelink)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Input == "" && o.Table == nil {
		return errors.New(errors.ErrCodeInvalidInput, "either Input or Table is required")
	}
	if o.Input != "" && o.Table != nil {
		return errors.New(errors.ErrCodeInvalidInput, "Input and Table are mutually exclusive")
	}

	names := []string{o.Key, o.Value, o.ID, o.Weight}
	names = append(names, o.Axes...)
	names = append(names, o.Keep...)
	names = append(names, o.Aes...)
	if err := errors.ValidateColumnNames(names...); err != nil {
		return err
	}

	if o.Guidance == "" {
		o.Guidance = DefaultGuidance
	}
	if _, err := layout.GuidanceByName(o.Guidance); err != nil {
		return err
	}

	if o.Distill != "" {
		if _, err := alluvial.DistillByName(o.Distill); err != nil {
			return err
		}
	}

	switch strings.ToLower(o.StratumOrder) {
	case "", "desc", "asc", "firstseen":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid stratum order %q (want desc, asc, or firstseen)", o.StratumOrder)
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}

	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	o.validated = true
	return nil
}

// config converts the schema options into the core configuration struct.
func (o *Options) config() alluvial.Config {
	cfg := alluvial.Config{
		Key:    o.Key,
		Value:  o.Value,
		ID:     o.ID,
		Axes:   o.Axes,
		Weight: o.Weight,
		Keep:   o.Keep,
	}
	if o.Distill != "" {
		cfg.Distill, _ = alluvial.DistillByName(o.Distill)
	}
	if o.NADrop {
		cfg.NA = alluvial.NADrop
	}
	return cfg.WithDefaults()
}

// layoutOptions converts the layout options into the calculator form.
// Names were validated by ValidateAndSetDefaults.
func (o *Options) layoutOptions() layout.Options {
	g, _ := layout.GuidanceByName(o.Guidance)

	order := layout.StratumByWeightDesc
	switch strings.ToLower(o.StratumOrder) {
	case "asc":
		order = layout.StratumByWeightAsc
	case "firstseen":
		order = layout.StratumFirstSeen
	}

	decreasing := layout.TristateUnset
	if o.Decreasing != nil {
		if *o.Decreasing {
			decreasing = layout.TristateTrue
		} else {
			decreasing = layout.TristateFalse
		}
	}

	return layout.Options{
		Weight:           o.Weight,
		Guidance:         g,
		Aes:              o.Aes,
		AesBind:          o.AesBind,
		StratumOrder:     order,
		AggregateWeights: o.AggregateWeights,
		Decreasing:       decreasing,
	}
}
