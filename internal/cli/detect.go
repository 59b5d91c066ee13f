package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataviz/alluvial/pkg/alluvial"
)

// newDetectCmd creates the detect command. It reads a table, reports which
// form it satisfies (alluvia, lodes, or neither), and lists the axis set.
func newDetectCmd() *cobra.Command {
	var input inputOpts

	cmd := &cobra.Command{
		Use:   "detect [file]",
		Short: "Report the detected form and axis set of a table",
		Long: `Detect reads a CSV file (or a SQLite database with --query) and reports
whether it satisfies the alluvia (wide) or lodes (long) form, which axes it
spans, and how many entities it contains.

Examples:
  alluvial detect cohorts.csv
  alluvial detect survey.csv --key wave --value response --id subject
  alluvial detect results.db --query "SELECT * FROM cohorts"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := input.validate(); err != nil {
				return err
			}
			return runDetect(cmd, args[0], &input)
		},
	}

	input.register(cmd)
	return cmd
}

func runDetect(cmd *cobra.Command, path string, input *inputOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	t, err := input.load(ctx, path)
	if err != nil {
		return err
	}
	logger.Debugf("loaded %d rows, %d columns", t.NumRows(), t.NumCols())

	cfg := input.config()
	form := alluvial.Detect(t, cfg.WithDefaults())
	if form == alluvial.FormNone {
		printWarning("%s matches neither form", path)
		fmt.Println(StyleDim.Render("  columns: " + strings.Join(t.Columns(), ", ")))
		return nil
	}

	ds, err := alluvial.Classify(t, cfg)
	if err != nil {
		return err
	}
	lodes, err := ds.Lodes()
	if err != nil {
		return err
	}
	axes := alluvial.Axes(lodes.Table, lodes.Config.Key)

	printSuccess("%s is in %s form", path, StyleHighlight.Render(form.String()))
	printField("rows", "%d", t.NumRows())
	printField("axes", "%s", strings.Join(axes, " "+iconArrow+" "))
	printField("entities", "%d", countIDs(lodes))
	return nil
}

// countIDs counts distinct entity ids in a lodes-form dataset.
func countIDs(ds *alluvial.Dataset) int {
	idx := ds.Table.ColumnIndex(ds.Config.ID)
	if idx < 0 {
		return 0
	}
	seen := make(map[string]bool)
	for r := 0; r < ds.Table.NumRows(); r++ {
		seen[ds.Table.CellAt(r, idx).Text()] = true
	}
	return len(seen)
}
