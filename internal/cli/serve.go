package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/strataviz/alluvial/pkg/cache"
	"github.com/strataviz/alluvial/pkg/errors"
	"github.com/strataviz/alluvial/pkg/pipeline"
	"github.com/strataviz/alluvial/pkg/source"
)

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatDOT:      "text/vnd.graphviz",
	pipeline.FormatNodeLink: "image/svg+xml",
}

// renderRequest is the POST /render request body: inline CSV data plus
// pipeline options. Exactly one output format is rendered per request.
type renderRequest struct {
	CSV     string           `json:"csv"`
	Options pipeline.Options `json:"options"`
}

// newServeCmd creates the serve command exposing the pipeline over HTTP.
//
// Endpoints:
//   - GET  /healthz        liveness probe
//   - POST /render         render inline CSV data, responds with the artifact
func newServeCmd() *cobra.Command {
	var (
		addr     string
		cacheDir string
		cacheTTL time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		Long: `Serve starts an HTTP server exposing the render pipeline.

POST /render accepts a JSON body with inline CSV data and pipeline options,
and responds with the rendered artifact:

  {"csv": "id,sem1,sem2\n1,math,cs\n", "options": {"formats": ["svg"]}}

Rendering is deterministic, so with --cache-dir repeated requests are
answered from disk (the X-Cache header reports hit or miss).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr, cacheDir, cacheTTL)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "cache rendered artifacts in this directory")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", time.Hour, "artifact cache entry lifetime")
	return cmd
}

func runServe(cmd *cobra.Command, addr, cacheDir string, cacheTTL time.Duration) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	runner := pipeline.NewRunner(logger)

	artifacts := cache.NewNullCache()
	if cacheDir != "" {
		var err error
		artifacts, err = cache.NewFileCache(cacheDir)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "open cache %s", cacheDir)
		}
		defer artifacts.Close()
		logger.Info("artifact cache enabled", "dir", cacheDir, "ttl", cacheTTL)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Post("/render", handleRender(runner, artifacts, cacheTTL))

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut down when the command context is cancelled (SIGINT/SIGTERM).
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	logger.Info("listening", "addr", addr)
	printInfo("Serving on %s", StyleHighlight.Render(addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// handleRender renders inline CSV data and writes the artifact back.
// Artifacts are cached by request content so identical requests skip the
// pipeline entirely.
func handleRender(runner *pipeline.Runner, artifacts cache.Cache, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body renderRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			httpError(w, http.StatusBadRequest, "invalid JSON body: %v", err)
			return
		}
		if body.CSV == "" {
			httpError(w, http.StatusBadRequest, "csv field is required")
			return
		}

		t, err := source.ReadCSV(strings.NewReader(body.CSV))
		if err != nil {
			httpError(w, http.StatusBadRequest, "%s", errors.UserMessage(err))
			return
		}

		opts := body.Options
		opts.Input = ""
		opts.Table = t
		if len(opts.Formats) == 0 {
			opts.Formats = []string{pipeline.FormatSVG}
		}
		if len(opts.Formats) != 1 {
			httpError(w, http.StatusBadRequest, "exactly one format per request, got %d", len(opts.Formats))
			return
		}
		format := opts.Formats[0]

		key := cache.RenderKey([]byte(body.CSV), body.Options, format)
		if data, hit, err := artifacts.Get(req.Context(), key); err == nil && hit {
			w.Header().Set("Content-Type", contentTypes[format])
			w.Header().Set("X-Cache", "hit")
			w.WriteHeader(http.StatusOK)
			w.Write(data)
			return
		}

		result, err := runner.Execute(req.Context(), opts)
		if err != nil {
			status := http.StatusUnprocessableEntity
			if errors.GetCode(err) == errors.ErrCodeInternal {
				status = http.StatusInternalServerError
			}
			httpError(w, status, "%s", errors.UserMessage(err))
			return
		}

		data := result.Artifacts[format]
		if err := artifacts.Set(req.Context(), key, data, ttl); err != nil {
			runner.Logger.Warn("cache write failed", "err", err)
		}

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("X-Cache", "miss")
		w.Header().Set("X-Run-Id", result.RunID)
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

// httpError writes a JSON error response.
func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": fmt.Sprintf(format, args...)})
}
