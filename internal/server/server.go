// Package server exposes the floorplan pipeline over HTTP.
//
// # Endpoints
//
//	POST /v1/solve   solve an inline design, returns the report as JSON
//	POST /v1/graph   export the vertical constraint graph (DOT or SVG)
//	GET  /healthz    liveness probe
//
// Request bodies carry the design and symmetry pairs inline together with
// any option overrides. The timeout must be positive; it defaults to the
// configured solver timeout and is capped at the configured max_timeout.
//
//	{
//	  "design":  {"name": "opamp", "cells": [...], "pins": [...]},
//	  "pairs":   [{"primary": "m1.g", "secondary": "m2.g"}],
//	  "backend": "pb",
//	  "timeout": "30s"
//	}
//
// Errors are returned as {"code": "...", "error": "..."} with a status
// derived from the error code. An infeasible floorplan is not an error: the
// solve endpoint answers 200 with outcome "infeasible".
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/topfloor/pkg/config"
	"github.com/matzehuels/topfloor/pkg/errors"
	"github.com/matzehuels/topfloor/pkg/observability"
	"github.com/matzehuels/topfloor/pkg/pipeline"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Server serves the pipeline over HTTP.
type Server struct {
	runner   *pipeline.Runner
	defaults config.Config
	logger   *log.Logger
	router   chi.Router
}

// New creates a server that runs requests through runner. Options a
// request leaves unset come from cfg.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, defaults: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Post("/graph", s.handleGraph)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// Handlers
// =============================================================================

// request is the body of solve and graph requests.
type request struct {
	pipeline.Options
	Timeout string `json:"timeout,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.logger.Warn("solve failed", "request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.decode(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.Graph(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	switch res.Format {
	case pipeline.FormatSVG:
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// decode reads a request body and fills unset options from the server
// configuration. File paths are never accepted over HTTP.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	var req request
	if err := dec.Decode(&req); err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	if req.Design == nil {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "request has no design")
	}

	opts := req.Options
	def := pipeline.FromConfig(s.defaults)
	if opts.ResourcePerLength == 0 {
		opts.ResourcePerLength = def.ResourcePerLength
	}
	if opts.Objective == "" {
		opts.Objective = def.Objective
	}
	if opts.SymmetryAxis == nil {
		opts.SymmetryAxis = def.SymmetryAxis
	}
	if opts.Backend == "" {
		opts.Backend = def.Backend
	}
	if opts.MaxNodes == 0 {
		opts.MaxNodes = def.MaxNodes
	}
	timeout, err := s.timeout(req.Timeout)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts.Timeout = timeout
	opts.Logger = s.logger
	return opts, nil
}

// timeout resolves the solver timeout of a request. A missing value takes
// the configured default. The result is always positive and at most the
// configured maximum.
func (s *Server) timeout(raw string) (time.Duration, error) {
	limit := s.defaults.Solver.MaxTimeout.Std()
	d := s.defaults.Solver.Timeout.Std()
	if raw != "" {
		var err error
		d, err = time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return 0, errors.New(errors.ErrCodeInvalidConfig, "invalid timeout %q (want a positive duration)", raw)
		}
	}
	if limit <= 0 {
		limit = config.DefaultMaxTimeout
	}
	if d <= 0 || d > limit {
		d = limit
	}
	return d, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Code: code, Error: errors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeUnresolvedPin, errors.ErrCodeGraphInconsistent:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// =============================================================================
// Middleware
// =============================================================================

// observe reports every request to the registered HTTP hooks.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}
