package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/buildinfo"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/category"
	errs "github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/errors"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/grouplayout"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/observability"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/pipeline"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/rules"
	"github.com/mehdihasheminiaU3d/AAGen-sub000/pkg/snapshot"
)

// MaxRequestBytes bounds the size of a layout request body.
const MaxRequestBytes = 64 << 20

// LayoutRequest is the body of POST /v1/layout.
type LayoutRequest struct {
	Graph            snapshot.Graph `json:"graph"`
	Rules            *rules.File    `json:"rules,omitempty"`
	Strategy         string         `json:"strategy,omitempty"`
	DefaultMaxSizeMB float64        `json:"default_max_size_mb,omitempty"`
	Refresh          bool           `json:"refresh,omitempty"`
}

// LayoutResponse is the body of a successful POST /v1/layout.
type LayoutResponse struct {
	InputHash string                `json:"input_hash"`
	Groups    []*grouplayout.Group  `json:"groups"`
	Stats     Stats                 `json:"stats"`
	Reports   []category.RuleReport `json:"reports,omitempty"`
	Warnings  []errs.Warning        `json:"warnings,omitempty"`
	Cache     pipeline.CacheInfo    `json:"cache"`
}

// Stats summarizes a run. Durations are in milliseconds.
type Stats struct {
	Nodes      int   `json:"nodes"`
	Edges      int   `json:"edges"`
	Subgraphs  int   `json:"subgraphs"`
	Moves      int   `json:"moves"`
	Groups     int   `json:"groups"`
	Oversized  int   `json:"oversized"`
	DurationMS int64 `json:"duration_ms"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// NewServer builds a server around runner. A nil logger discards output.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request"))
		return
	}

	// Asset paths come from the client and must stay project-relative.
	for _, n := range req.Graph.Nodes {
		if n.Path == "" {
			continue
		}
		if err := errs.ValidatePath(n.Path); err != nil {
			s.writeError(w, errs.Wrap(errs.ErrCodeInvalidInput, err, "node %q", n.Path))
			return
		}
	}

	in, err := req.Graph.Decode()
	if err != nil {
		s.writeError(w, err)
		return
	}

	start := time.Now()
	result, err := s.runner.Execute(r.Context(), in, pipeline.Options{
		Strategy:         req.Strategy,
		Rules:            req.Rules,
		DefaultMaxSizeMB: req.DefaultMaxSizeMB,
		Refresh:          req.Refresh,
		Logger:           s.logger,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := LayoutResponse{
		InputHash: result.InputHash,
		Groups:    make([]*grouplayout.Group, 0, len(result.Layout.Order)),
		Reports:   result.Reports,
		Warnings:  result.Warnings,
		Cache:     result.CacheInfo,
		Stats: Stats{
			Nodes:      result.Stats.Nodes,
			Edges:      result.Stats.Edges,
			Subgraphs:  result.Stats.Subgraphs,
			Moves:      result.Stats.Moves,
			Groups:     result.Stats.Groups,
			Oversized:  result.Layout.Stats.Oversized,
			DurationMS: time.Since(start).Milliseconds(),
		},
	}
	for _, name := range result.Layout.Order {
		resp.Groups = append(resp.Groups, result.Layout.Groups[name])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "code", code, "err", err)
	} else {
		s.logger.Debug("request rejected", "code", code, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: errs.UserMessage(err)})
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	code := string(errs.GetCode(err))
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case code == string(errs.ErrCodeNotFound):
		return http.StatusNotFound
	case errs.IsConfig(err):
		return http.StatusUnprocessableEntity
	case code == string(errs.ErrCodeCanceled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case code == string(errs.ErrCodeUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
