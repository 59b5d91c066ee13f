package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
// These options control the layout strategy, ribbon aggregation, and the
// output formats.
type renderOpts struct {
	input      inputOpts
	output     string   // output file path (or base path for multiple formats)
	formats    []string // output formats: "svg", "json", "dot", "nodelink"
	configPath string   // optional TOML configuration file

	guidance   string // lode ordering strategy
	aes        string // comma-separated aesthetic columns
	aesBind    bool   // sort by aesthetics within strata
	order      string // stratum stacking: "desc", "asc", "firstseen"
	aggregate  bool   // merge same-category flows between adjacent axes
	decreasing string // "true", "false", or "" to preserve row order

	width    float64
	height   float64
	labels   bool
	detailed bool // DOT node labels carry weights
}

// newRenderCmd creates the render command for generating diagrams.
// It runs the full pipeline (load, classify, layout, render) and writes one
// artifact per requested format.
//
// Default settings:
//   - guidance: zigzag (prioritize the nearest axes, alternating outward)
//   - format: svg
//   - width: 800, height: 600
func newRenderCmd() *cobra.Command {
	var formatsStr string
	opts := renderOpts{
		width:  pipeline.DefaultWidth,
		height: pipeline.DefaultHeight,
	}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render an alluvial diagram from a table",
		Long: `Render reads a CSV file (or a SQLite database with --query), reshapes it
to lodes form if needed, computes the stratum and lode layout, and writes
the diagram in the requested formats.

Examples:
  alluvial render cohorts.csv -o cohorts.svg
  alluvial render survey.csv --guidance leftright --format svg,json
  alluvial render flows.csv --weight count --aggregate --labels`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := validateDecreasing(opts.decreasing); err != nil {
				return err
			}
			return runRender(cmd, args[0], &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, dot, nodelink (comma-separated)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVarP(&opts.guidance, "guidance", "g", "", "lode ordering: zigzag (default), leftright, rightleft, rightward, leftward")
	cmd.Flags().StringVar(&opts.aes, "aes", "", "comma-separated aesthetic columns bound into the output")
	cmd.Flags().BoolVar(&opts.aesBind, "aes-bind", false, "sort lodes by aesthetics within strata")
	cmd.Flags().StringVar(&opts.order, "stratum-order", "", "stratum stacking: desc (default), asc, firstseen")
	cmd.Flags().BoolVar(&opts.aggregate, "aggregate", false, "merge same-category flows between adjacent axes")
	cmd.Flags().StringVar(&opts.decreasing, "decreasing", "", "sort flows by weight: true, false (empty preserves row order)")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw stratum labels")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show weights in DOT node labels")

	return cmd
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// formatExt maps an output format to its file extension. The node-link
// format renders to SVG, so it gets a compound extension to avoid
// colliding with the ribbon diagram output.
func formatExt(format string) string {
	if format == pipeline.FormatNodeLink {
		return "nodelink.svg"
	}
	return format
}

// validateDecreasing checks the tri-state --decreasing flag.
func validateDecreasing(s string) error {
	switch s {
	case "", "true", "false":
		return nil
	}
	return errors.New(errors.ErrCodeInvalidInput,
		"invalid --decreasing value %q (must be true, false, or empty)", s)
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .json, .dot), it strips that
// extension. This is used when generating multiple files.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// pipelineOptions assembles pipeline options from the config file (lowest
// precedence) and the command-line flags.
func (o *renderOpts) pipelineOptions(path string) (pipeline.Options, error) {
	popts := pipeline.Options{
		Input:   path,
		Query:   o.input.query,
		Key:     o.input.key,
		Value:   o.input.value,
		ID:      o.input.id,
		Weight:  o.input.weight,
		Axes:    splitList(o.input.axes),
		Keep:    splitList(o.input.keep),
		NADrop:  o.input.naDrop,
		Formats: o.formats,
		Width:   o.width,
		Height:  o.height,
		Labels:  o.labels,
		Detailed: o.detailed,

		Guidance:         o.guidance,
		Aes:              splitList(o.aes),
		AesBind:          o.aesBind,
		StratumOrder:     o.order,
		AggregateWeights: o.aggregate,
	}
	switch o.decreasing {
	case "true":
		t := true
		popts.Decreasing = &t
	case "false":
		f := false
		popts.Decreasing = &f
	}

	if o.configPath == "" {
		return popts, nil
	}
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return popts, err
	}
	applyConfig(&popts, cfg)
	return popts, nil
}

// applyConfig fills empty pipeline options from the config file. Flags set
// on the command line are left untouched.
func applyConfig(popts *pipeline.Options, cfg *fileConfig) {
	if popts.Key == "" {
		popts.Key = cfg.Data.Key
	}
	if popts.Value == "" {
		popts.Value = cfg.Data.Value
	}
	if popts.ID == "" {
		popts.ID = cfg.Data.ID
	}
	if popts.Weight == "" {
		popts.Weight = cfg.Data.Weight
	}
	if len(popts.Axes) == 0 {
		popts.Axes = cfg.Data.Axes
	}
	if len(popts.Keep) == 0 {
		popts.Keep = cfg.Data.Keep
	}
	popts.NADrop = popts.NADrop || cfg.Data.NADrop

	if popts.Guidance == "" {
		popts.Guidance = cfg.Layout.Guidance
	}
	if len(popts.Aes) == 0 {
		popts.Aes = cfg.Layout.Aes
	}
	popts.AesBind = popts.AesBind || cfg.Layout.AesBind
	if popts.StratumOrder == "" {
		popts.StratumOrder = cfg.Layout.Order
	}
	popts.AggregateWeights = popts.AggregateWeights || cfg.Layout.Aggregate
	if popts.Decreasing == nil {
		popts.Decreasing = cfg.Layout.Decreasing
	}

	if cfg.Render.Width > 0 && popts.Width == pipeline.DefaultWidth {
		popts.Width = cfg.Render.Width
	}
	if cfg.Render.Height > 0 && popts.Height == pipeline.DefaultHeight {
		popts.Height = cfg.Render.Height
	}
	popts.Labels = popts.Labels || cfg.Render.Labels
	popts.Detailed = popts.Detailed || cfg.Render.Detailed
}

// runRender executes the pipeline and writes one artifact per format.
func runRender(cmd *cobra.Command, path string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	popts, err := opts.pipelineOptions(path)
	if err != nil {
		return err
	}
	popts.Logger = logger

	spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s", path))
	spinner.Start()

	runner := pipeline.NewRunner(logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError(fmt.Sprintf("Render failed: %v", errors.UserMessage(err)))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Rendered %s form: %d strata, %d flows",
		result.Form, len(result.Strata), len(result.Flows)))

	single := len(popts.Formats) == 1
	base := basePath(opts.output, path)
	for _, format := range popts.Formats {
		out := base + "." + formatExt(format)
		if single && opts.output != "" {
			out = opts.output
		}
		if err := os.WriteFile(out, result.Artifacts[format], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", out)
		}
		printInfo("%s %s", iconArrow, out)
	}
	return nil
}
