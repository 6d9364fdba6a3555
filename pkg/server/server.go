// Package server exposes conversion over HTTP.
//
//	POST /v1/convert   HTML body, or multipart form with a "file" field
//	GET  /healthz      liveness
//
// A successful conversion answers with the PPTX bytes. The X-Slides and
// X-Cache headers report the slide count and whether the deck came from
// the cache. Errors are JSON objects with "error", "code" and
// "request_id" fields.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/html2deck/pkg/buildinfo"
	"github.com/matzehuels/html2deck/pkg/cache"
	apperr "github.com/matzehuels/html2deck/pkg/errors"
	"github.com/matzehuels/html2deck/pkg/observability"
	"github.com/matzehuels/html2deck/pkg/pipeline"
)

// Defaults for [Config].
const (
	DefaultAddr           = "127.0.0.1:8080"
	DefaultMaxUploadBytes = 32 << 20
	DefaultRequestTimeout = 2 * time.Minute
	DefaultShutdownGrace  = 10 * time.Second

	// CacheScope prefixes cache keys written by the service.
	CacheScope = "serve:"

	pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	defaultName     = "deck"
)

// Config configures a [Server].
type Config struct {
	Runner         *pipeline.Runner        // nil uses an uncached runner
	Options        pipeline.Options        // base options for every request
	Surfaces       pipeline.SurfaceFactory // starts rendering sessions
	Workers        int                     // concurrent conversions, at least 1
	MaxUploadBytes int64
	RequestTimeout time.Duration
	Logger         *log.Logger
}

// Server is the conversion service.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	pool   *pool
	router chi.Router
	logger *log.Logger
}

// New builds a server. It fails when the base options are invalid or no
// surface factory is given.
func New(cfg Config) (*Server, error) {
	if cfg.Surfaces == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidConfig, "server needs a surface factory")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	cfg.Options.Logger = cfg.Logger
	if err := cfg.Options.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	runner := cfg.Runner
	if runner == nil {
		runner = pipeline.NewRunner(cache.NewNullCache(), cache.NewScopedKeyer(nil, CacheScope), cfg.Logger)
	}

	s := &Server{
		cfg:    cfg,
		runner: runner,
		pool:   newPool(cfg.Workers, cfg.Surfaces, cfg.Logger),
		logger: cfg.Logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, apperr.New(apperr.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.failWith(w, r, http.StatusMethodNotAllowed, apperr.New(apperr.ErrCodeUnsupported, "%s not allowed on %s", r.Method, r.URL.Path))
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "workers", s.cfg.Workers)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close shuts down pooled rendering sessions.
func (s *Server) Close() error { return s.pool.Close() }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": buildinfo.Version,
		"workers": s.cfg.Workers,
	})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	id := RequestID(r.Context())
	logger := s.logger.With("request", id)

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	name, body, err := readUpload(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	dir, err := os.MkdirTemp(s.cfg.Options.TempDir, "html2deck-req-")
	if err != nil {
		s.fail(w, r, apperr.Wrap(apperr.ErrCodeInternal, err, "create request dir"))
		return
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, name+".html")
	output := filepath.Join(dir, name+pipeline.OutputExt)
	if err := os.WriteFile(input, body, 0o600); err != nil {
		s.fail(w, r, apperr.Wrap(apperr.ErrCodeInternal, err, "store upload"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()

	lease, err := s.pool.acquire(ctx)
	if err != nil {
		s.fail(w, r, apperr.Wrap(apperr.ErrCodeTimeout, err, "waiting for a free worker"))
		return
	}

	opts := s.cfg.Options
	opts.TempDir = dir
	opts.RunID = id
	opts.Logger = logger

	res, err := s.runner.ConvertFile(ctx, lease.source, input, output, opts)
	lease.release(err != nil && brokeSession(ctx, err))
	if err != nil {
		if ctx.Err() != nil && r.Context().Err() == nil {
			err = apperr.Wrap(apperr.ErrCodeTimeout, err, "conversion exceeded %s", s.cfg.RequestTimeout)
		}
		s.fail(w, r, err)
		return
	}

	f, err := os.Open(res.Output)
	if err != nil {
		s.fail(w, r, apperr.Wrap(apperr.ErrCodeOutput, err, "open output"))
		return
	}
	defer f.Close()

	cached := "miss"
	if res.Cached {
		cached = "hit"
	}
	h := w.Header()
	h.Set("Content-Type", pptxContentType)
	h.Set("Content-Length", strconv.Itoa(res.Size))
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+pipeline.OutputExt))
	h.Set("X-Slides", strconv.Itoa(res.Slides))
	h.Set("X-Cache", cached)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		logger.Debug("write response", "err", err)
	}
}

// readUpload returns the sanitized base name and the HTML bytes of a
// request. Multipart uploads must name an HTML file; raw bodies take their
// name from the "name" query parameter.
func readUpload(r *http.Request) (string, []byte, error) {
	var (
		name string
		body []byte
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		name, body, err = readMultipart(r)
	} else {
		name = r.URL.Query().Get("name")
		body, err = io.ReadAll(r.Body)
		if err != nil {
			err = uploadError(err)
		}
	}
	if err != nil {
		return "", nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", nil, apperr.New(apperr.ErrCodeInvalidInput, "empty document")
	}
	if name == "" {
		name = defaultName
	}
	return apperr.SanitizeName(name), body, nil
}

func readMultipart(r *http.Request) (string, []byte, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, apperr.New(apperr.ErrCodeInvalidInput, `multipart form has no "file" field`)
		}
		return "", nil, uploadError(err)
	}
	defer file.Close()
	if !pipeline.IsHTML(header.Filename) {
		return "", nil, apperr.New(apperr.ErrCodeInvalidInput, "not an html file: %s", header.Filename)
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", nil, uploadError(err)
	}
	return header.Filename, body, nil
}

func uploadError(err error) error {
	return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read upload")
}

// brokeSession reports whether err leaves the leased session unusable.
// Per-document failures keep it; load and session failures do not.
func brokeSession(ctx context.Context, err error) bool {
	var se *pipeline.SurfaceError
	if errors.As(err, &se) {
		return true
	}
	return ctx.Err() != nil || apperr.Is(err, apperr.ErrCodeBrowser)
}

// status maps an error to an HTTP status code.
func status(err error) int {
	var (
		tooBig *http.MaxBytesError
		se     *pipeline.SurfaceError
	)
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &se):
		return http.StatusServiceUnavailable
	case apperr.Is(err, apperr.ErrCodeTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case apperr.Is(err, apperr.ErrCodeNotFound):
		return http.StatusNotFound
	case apperr.IsClientError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.failWith(w, r, status(err), err)
}

func (s *Server) failWith(w http.ResponseWriter, r *http.Request, code int, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("conversion failed", "request", RequestID(r.Context()), "status", code, "err", err)
	} else {
		s.logger.Debug("rejected request", "request", RequestID(r.Context()), "status", code, "err", err)
	}

	errCode := apperr.GetCode(err)
	if errCode == "" {
		errCode = apperr.ErrCodeInternal
	}
	writeJSON(w, code, map[string]any{
		"error":      apperr.UserMessage(err),
		"code":       errCode,
		"request_id": RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
