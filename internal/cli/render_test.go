package cli

import (
	"reflect"
	"testing"

	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,json", []string{"svg", "json"}},
		{"json,dot,svg", []string{"json", "dot", "svg"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateDecreasing(t *testing.T) {
	for _, ok := range []string{"", "true", "false"} {
		if err := validateDecreasing(ok); err != nil {
			t.Errorf("validateDecreasing(%q) = %v, want nil", ok, err)
		}
	}
	err := validateDecreasing("yes")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("validateDecreasing(%q) = %v, want INVALID_INPUT", "yes", err)
	}
}

func TestFormatExt(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{pipeline.FormatSVG, "svg"},
		{pipeline.FormatJSON, "json"},
		{pipeline.FormatDOT, "dot"},
		{pipeline.FormatNodeLink, "nodelink.svg"},
	}
	for _, tt := range tests {
		if got := formatExt(tt.format); got != tt.want {
			t.Errorf("formatExt(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"NoOutput", "", "data/cohorts.csv", "data/cohorts"},
		{"OutputWithFormatExt", "out/diagram.svg", "cohorts.csv", "out/diagram"},
		{"OutputWithJSONExt", "diagram.json", "cohorts.csv", "diagram"},
		{"OutputWithOtherExt", "diagram.png", "cohorts.csv", "diagram.png"},
		{"OutputBare", "diagram", "cohorts.csv", "diagram"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestApplyConfigPrecedence(t *testing.T) {
	dec := true
	cfg := &fileConfig{}
	cfg.Data.Weight = "count"
	cfg.Data.ID = "student"
	cfg.Layout.Guidance = "leftright"
	cfg.Layout.Decreasing = &dec
	cfg.Render.Width = 1024

	// Flags already set on the command line win over file values.
	popts := pipeline.Options{
		Weight: "freq",
		Width:  pipeline.DefaultWidth,
		Height: pipeline.DefaultHeight,
	}
	applyConfig(&popts, cfg)

	if popts.Weight != "freq" {
		t.Errorf("Weight = %q, want flag value %q", popts.Weight, "freq")
	}
	if popts.ID != "student" {
		t.Errorf("ID = %q, want config value %q", popts.ID, "student")
	}
	if popts.Guidance != "leftright" {
		t.Errorf("Guidance = %q, want %q", popts.Guidance, "leftright")
	}
	if popts.Decreasing == nil || !*popts.Decreasing {
		t.Errorf("Decreasing = %v, want true", popts.Decreasing)
	}
	if popts.Width != 1024 {
		t.Errorf("Width = %v, want 1024", popts.Width)
	}
	if popts.Height != pipeline.DefaultHeight {
		t.Errorf("Height = %v, want default %v", popts.Height, pipeline.DefaultHeight)
	}
}
