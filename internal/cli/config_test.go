package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/strataviz/alluvial/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alluvial.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[data]
id = "student"
weight = "count"
axes = ["sem1", "sem2", "sem3"]
na_drop = true

[layout]
guidance = "rightleft"
aes_bind = true
decreasing = false

[render]
width = 1024
labels = true
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Data.ID != "student" || cfg.Data.Weight != "count" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if !reflect.DeepEqual(cfg.Data.Axes, []string{"sem1", "sem2", "sem3"}) {
		t.Errorf("axes = %v", cfg.Data.Axes)
	}
	if !cfg.Data.NADrop {
		t.Error("na_drop not parsed")
	}
	if cfg.Layout.Guidance != "rightleft" || !cfg.Layout.AesBind {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.Decreasing == nil || *cfg.Layout.Decreasing {
		t.Errorf("decreasing = %v, want false", cfg.Layout.Decreasing)
	}
	if cfg.Render.Width != 1024 || !cfg.Render.Labels {
		t.Errorf("render = %+v", cfg.Render)
	}
}

func TestLoadConfigDecreasingUnset(t *testing.T) {
	path := writeConfig(t, "[layout]\nguidance = \"zigzag\"\n")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Layout.Decreasing != nil {
		t.Errorf("decreasing = %v, want nil when absent", *cfg.Layout.Decreasing)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("loadConfig = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := writeConfig(t, "[data\nid =")
	_, err := loadConfig(path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("loadConfig = %v, want INVALID_INPUT", err)
	}
}
