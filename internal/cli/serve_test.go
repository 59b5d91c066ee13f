package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/strataviz/alluvial/pkg/cache"
	"github.com/strataviz/alluvial/pkg/pipeline"
)

const serveCSV = `{"csv": "id,sem1,sem2\n1,math,cs\n2,math,math\n3,bio,cs\n", "options": {"formats": ["svg"]}}`

func postRender(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleRender(t *testing.T) {
	handler := handleRender(pipeline.NewRunner(nil), cache.NewNullCache(), time.Hour)

	rec := postRender(t, handler, serveCSV)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Run-Id") == "" {
		t.Error("X-Run-Id header missing")
	}
	if rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("X-Cache = %q, want miss", rec.Header().Get("X-Cache"))
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Errorf("body = %.40s, want an SVG document", rec.Body)
	}
}

func TestHandleRenderCacheHit(t *testing.T) {
	artifacts, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	handler := handleRender(pipeline.NewRunner(nil), artifacts, time.Hour)

	first := postRender(t, handler, serveCSV)
	if first.Code != http.StatusOK || first.Header().Get("X-Cache") != "miss" {
		t.Fatalf("first request: status = %d, X-Cache = %q", first.Code, first.Header().Get("X-Cache"))
	}

	second := postRender(t, handler, serveCSV)
	if second.Code != http.StatusOK {
		t.Fatalf("second request: status = %d", second.Code)
	}
	if second.Header().Get("X-Cache") != "hit" {
		t.Errorf("second request X-Cache = %q, want hit", second.Header().Get("X-Cache"))
	}
	if second.Body.String() != first.Body.String() {
		t.Error("cached artifact differs from rendered artifact")
	}
}

func TestHandleRenderErrors(t *testing.T) {
	handler := handleRender(pipeline.NewRunner(nil), cache.NewNullCache(), time.Hour)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"BadJSON", "{", http.StatusBadRequest},
		{"MissingCSV", `{"options": {}}`, http.StatusBadRequest},
		{
			"MultipleFormats",
			`{"csv": "id,sem1,sem2\n1,a,b\n", "options": {"formats": ["svg", "json"]}}`,
			http.StatusBadRequest,
		},
		{
			"MalformedData",
			`{"csv": "id,only\n1,a\n", "options": {}}`,
			http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postRender(t, handler, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
		})
	}
}
