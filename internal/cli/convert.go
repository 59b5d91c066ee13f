package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strataviz/alluvial/pkg/alluvial"
	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/source"
	"github.com/strataviz/alluvial/pkg/table"
)

const (
	formLodes   = "lodes"
	formAlluvia = "alluvia"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	input   inputOpts
	to      string // target form: "lodes" or "alluvia"
	distill string // conflict policy for covariates: "first", "last", "most"
	output  string // output file path (stdout if empty)
}

// newConvertCmd creates the convert command for reshaping between forms.
//
// Converting to lodes pivots each axis column into (id, key, value) rows;
// converting to alluvia pivots axis rows back into one column per axis.
// Covariate columns that disagree within an entity need a --distill policy.
func newConvertCmd() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Reshape a table between the alluvia and lodes forms",
		Long: `Convert reshapes a table between the alluvia (wide, one row per entity)
and lodes (long, one row per entity-axis pair) forms.

Examples:
  alluvial convert cohorts.csv --to lodes -o cohorts_long.csv
  alluvial convert survey_long.csv --to alluvia --distill most
  alluvial convert results.db --query "SELECT * FROM cohorts" --to lodes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.to != formLodes && opts.to != formAlluvia {
				return errors.New(errors.ErrCodeInvalidInput,
					"invalid target form %q (must be %q or %q)", opts.to, formLodes, formAlluvia)
			}
			if opts.distill != "" {
				if err := errors.ValidateDistillName(opts.distill); err != nil {
					return err
				}
			}
			if err := opts.input.validate(); err != nil {
				return err
			}
			return runConvert(cmd, args[0], &opts)
		},
	}

	opts.input.register(cmd)
	cmd.Flags().StringVarP(&opts.to, "to", "t", formLodes, "target form: lodes or alluvia")
	cmd.Flags().StringVar(&opts.distill, "distill", "", "covariate conflict policy: first, last, most")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")

	return cmd
}

func runConvert(cmd *cobra.Command, path string, opts *convertOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	t, err := opts.input.load(ctx, path)
	if err != nil {
		return err
	}

	cfg := opts.input.config()
	if opts.distill != "" {
		cfg.Distill, err = alluvial.DistillByName(opts.distill)
		if err != nil {
			return err
		}
	}

	var out *table.Table
	switch opts.to {
	case formLodes:
		out, err = alluvial.ToLodes(t, cfg)
	case formAlluvia:
		out, err = alluvial.ToAlluvia(t, cfg)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Reshaped %d rows into %d %s rows", t.NumRows(), out.NumRows(), opts.to))

	return writeTable(out, opts.output)
}

// writeTable writes a table as CSV to path, or to stdout when path is empty.
func writeTable(t *table.Table, path string) error {
	if path == "" {
		return source.WriteCSV(os.Stdout, t)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	if err := source.WriteCSV(f, t); err != nil {
		return err
	}
	printSuccess("Wrote %s", StyleValue.Render(path))
	return nil
}
