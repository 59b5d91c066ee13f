package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/strataviz/alluvial/pkg/alluvial"
	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/layout"
	"github.com/strataviz/alluvial/pkg/render/nodelink"
	"github.com/strataviz/alluvial/pkg/render/sink"
	"github.com/strataviz/alluvial/pkg/source"
	"github.com/strataviz/alluvial/pkg/table"
)

// Runner executes the pipeline with injected dependencies.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a Runner. A nil logger falls back to the default.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Execute runs the full pipeline: load, classify, layout, render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		r = &Runner{Logger: opts.Logger}
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: load.
	start := time.Now()
	t, err := r.load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(start)
	result.Stats.Rows = t.NumRows()
	r.Logger.Info("loaded input", "rows", t.NumRows(), "cols", t.NumCols(), "duration", result.Stats.LoadTime)

	// Stage 2: classify and reshape.
	cfg := opts.config()
	ds, err := alluvial.Classify(t, cfg)
	if err != nil {
		return nil, err
	}
	result.Form = ds.Form
	r.Logger.Info("classified input", "form", ds.Form.String())

	// Stage 3: layout.
	start = time.Now()
	lopts := opts.layoutOptions()
	strata, err := layout.Strata(ds, lopts)
	if err != nil {
		return nil, err
	}
	lodes, err := layout.ComputeLodes(ds, lopts)
	if err != nil {
		return nil, err
	}
	flows, err := layout.ComputeFlows(ds, lopts)
	if err != nil {
		return nil, err
	}
	result.Strata = strata
	result.Lodes = lodes
	result.Flows = flows
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Axes = countAxes(strata)
	result.Stats.Entities = countEntities(lodes)
	r.Logger.Info("computed layout",
		"strata", len(strata), "lodes", len(lodes), "flows", len(flows),
		"duration", result.Stats.LayoutTime)

	// Stage 4: render.
	start = time.Now()
	for _, format := range opts.Formats {
		data, err := r.render(format, opts, result)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(start)
	r.Logger.Info("rendered artifacts", "formats", strings.Join(opts.Formats, ","), "duration", result.Stats.RenderTime)

	return result, nil
}

// load reads the input table from a file, a database, or the options.
func (r *Runner) load(ctx context.Context, opts Options) (*table.Table, error) {
	if opts.Table != nil {
		return opts.Table, nil
	}
	if opts.Query != "" {
		return source.ReadSQLite(ctx, opts.Input, opts.Query)
	}
	return source.ReadCSVFile(opts.Input)
}

// render produces one artifact for the given format.
func (r *Runner) render(format string, opts Options, result *Result) ([]byte, error) {
	switch format {
	case FormatSVG:
		svgOpts := []sink.SVGOption{sink.WithSize(opts.Width, opts.Height)}
		if opts.Labels {
			svgOpts = append(svgOpts, sink.WithLabels())
		}
		return sink.RenderSVG(result.Strata, result.Flows, svgOpts...)
	case FormatJSON:
		return sink.RenderJSON(result.Strata, result.Lodes, result.Flows,
			sink.WithJSONGuidance(opts.Guidance),
			sink.WithJSONRunID(result.RunID),
			sink.WithJSONIndent())
	case FormatDOT:
		dot := nodelink.ToDOT(result.Strata, result.Flows, nodelink.Options{Detailed: opts.Detailed})
		return []byte(dot), nil
	case FormatNodeLink:
		dot := nodelink.ToDOT(result.Strata, result.Flows, nodelink.Options{Detailed: opts.Detailed})
		return nodelink.RenderSVG(dot)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}

func countAxes(strata []layout.Stratum) int {
	seen := map[int]bool{}
	for _, s := range strata {
		seen[s.X] = true
	}
	return len(seen)
}

func countEntities(lodes []layout.LodeRecord) int {
	seen := map[float64]bool{}
	for _, l := range lodes {
		seen[l.Group] = true
	}
	return len(seen)
}
