package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strataviz/alluvial/pkg/alluvial"
	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/table"
)

func fixtureTable() *table.Table {
	tb := table.MustNew("id", "sem1", "sem2")
	tb.AppendRow(table.Number(1), table.String("math"), table.String("cs"))
	tb.AppendRow(table.Number(2), table.String("math"), table.String("math"))
	tb.AppendRow(table.Number(3), table.String("bio"), table.String("cs"))
	return tb
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Table: fixtureTable()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Guidance != DefaultGuidance {
		t.Errorf("Guidance = %q, want %q", opts.Guidance, DefaultGuidance)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = (%v, %v), want (%v, %v)", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}

	// Idempotent: a second call leaves everything alone.
	opts.Guidance = "mutated-after-validation"
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults: %v", err)
	}
	if opts.Guidance != "mutated-after-validation" {
		t.Error("second validation re-ran defaulting")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{
			name: "NoInput",
			opts: Options{},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "BothInputs",
			opts: Options{Input: "x.csv", Table: fixtureTable()},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "BadColumnName",
			opts: Options{Table: fixtureTable(), Weight: "a\x00b"},
			code: errors.ErrCodeInvalidInput,
		},
		{
			name: "BadGuidance",
			opts: Options{Table: fixtureTable(), Guidance: "diagonal"},
			code: errors.ErrCodeInvalidGuidance,
		},
		{
			name: "BadDistill",
			opts: Options{Table: fixtureTable(), Distill: "median"},
			code: errors.ErrCodeInvalidDistill,
		},
		{
			name: "BadFormat",
			opts: Options{Table: fixtureTable(), Formats: []string{"pdf"}},
			code: errors.ErrCodeInvalidFormat,
		},
		{
			name: "BadStratumOrder",
			opts: Options{Table: fixtureTable(), StratumOrder: "random"},
			code: errors.ErrCodeInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(nil)
	result, err := runner.Execute(context.Background(), Options{
		Table:   fixtureTable(),
		Formats: []string{FormatSVG, FormatJSON, FormatDOT, FormatNodeLink},
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.RunID)
	require.Equal(t, alluvial.FormAlluvia, result.Form)
	require.Len(t, result.Strata, 4)
	require.Len(t, result.Lodes, 6)
	require.Len(t, result.Flows, 6)

	require.Equal(t, 3, result.Stats.Rows)
	require.Equal(t, 2, result.Stats.Axes)
	require.Equal(t, 3, result.Stats.Entities)

	svg := result.Artifacts[FormatSVG]
	require.True(t, strings.HasPrefix(string(svg), "<svg"), "svg artifact: %.40s", svg)

	var decoded struct {
		RunID  string            `json:"run_id"`
		Strata []json.RawMessage `json:"strata"`
	}
	require.NoError(t, json.Unmarshal(result.Artifacts[FormatJSON], &decoded))
	require.Equal(t, result.RunID, decoded.RunID)
	require.Len(t, decoded.Strata, 4)

	require.Contains(t, string(result.Artifacts[FormatDOT]), "digraph alluvial")
	require.Contains(t, string(result.Artifacts[FormatNodeLink]), "<svg")
}

func TestExecuteFromCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohorts.csv")
	csv := "id,sem1,sem2\n1,math,cs\n2,bio,cs\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	runner := NewRunner(nil)
	result, err := runner.Execute(context.Background(), Options{Input: path})
	require.NoError(t, err)
	require.Equal(t, alluvial.FormAlluvia, result.Form)
	require.NotEmpty(t, result.Artifacts[FormatSVG])
}

func TestExecuteLayoutOptions(t *testing.T) {
	dec := true
	runner := NewRunner(nil)
	result, err := runner.Execute(context.Background(), Options{
		Table:      fixtureTable(),
		Guidance:   "leftright",
		Decreasing: &dec,
		Formats:    []string{FormatJSON},
	})
	require.NoError(t, err)

	var decoded struct {
		Guidance string `json:"guidance"`
	}
	require.NoError(t, json.Unmarshal(result.Artifacts[FormatJSON], &decoded))
	require.Equal(t, "leftright", decoded.Guidance)
}

func TestExecutePropagatesLayoutErrors(t *testing.T) {
	tb := table.MustNew("id", "key", "value")
	tb.AppendRow(table.Number(1), table.String("sem1"), table.String("a"))
	tb.AppendRow(table.Number(1), table.String("sem2"), table.String("b"))
	tb.AppendRow(table.Number(2), table.String("sem1"), table.String("a"))
	tb.AppendRow(table.Number(2), table.String("sem2"), table.String("b"))

	runner := NewRunner(nil)
	_, err := runner.Execute(context.Background(), Options{
		Table:  tb,
		Weight: "missing",
	})
	require.Error(t, err)
	require.Equal(t, errors.ErrCodeColumnNotFound, errors.GetCode(err))
}
