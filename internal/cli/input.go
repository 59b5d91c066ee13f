package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strataviz/alluvial/pkg/alluvial"
	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/source"
	"github.com/strataviz/alluvial/pkg/table"
)

// inputOpts holds the flags shared by every command that reads a table:
// logical column names, the explicit axis set, and the input source.
type inputOpts struct {
	key    string // axis indicator column (lodes form)
	value  string // category column (lodes form)
	id     string // entity column
	weight string // weight column (empty means unit weights)
	axes   string // comma-separated axis columns (alluvia form)
	keep   string // comma-separated passthrough columns
	query  string // SQL query; input is treated as a SQLite database
	naDrop bool   // drop missing cells instead of keeping the NA category
}

// register attaches the shared schema flags to cmd.
func (o *inputOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.key, "key", "", "axis indicator column (default \"key\")")
	cmd.Flags().StringVar(&o.value, "value", "", "category column (default \"value\")")
	cmd.Flags().StringVar(&o.id, "id", "", "entity column (default \"id\")")
	cmd.Flags().StringVarP(&o.weight, "weight", "w", "", "weight column (default: unit weights)")
	cmd.Flags().StringVar(&o.axes, "axes", "", "comma-separated axis columns (default: discovered by convention)")
	cmd.Flags().StringVar(&o.keep, "keep", "", "comma-separated columns to pass through")
	cmd.Flags().StringVarP(&o.query, "query", "q", "", "SQL query (treats input as a SQLite database)")
	cmd.Flags().BoolVar(&o.naDrop, "na-drop", false, "drop missing cells instead of keeping an NA category")
}

// validate checks the column name flags before any file is opened, so a
// bad name fails fast instead of surfacing as a missing column later.
func (o *inputOpts) validate() error {
	names := []string{o.key, o.value, o.id, o.weight}
	names = append(names, splitList(o.axes)...)
	names = append(names, splitList(o.keep)...)
	return errors.ValidateColumnNames(names...)
}

// config converts the flags into the core configuration struct.
func (o *inputOpts) config() alluvial.Config {
	cfg := alluvial.Config{
		Key:    o.key,
		Value:  o.value,
		ID:     o.id,
		Weight: o.weight,
		Axes:   splitList(o.axes),
		Keep:   splitList(o.keep),
	}
	if o.naDrop {
		cfg.NA = alluvial.NADrop
	}
	return cfg
}

// load reads the input table from a CSV file, or from a SQLite database
// when --query is set.
func (o *inputOpts) load(ctx context.Context, path string) (*table.Table, error) {
	if o.query != "" {
		return source.ReadSQLite(ctx, path, o.query)
	}
	return source.ReadCSVFile(path)
}

// splitList splits a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
