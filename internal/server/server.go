// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fusionsite/internal/app"
	"fusionsite/internal/version"
	"fusionsite/pkg/api"
)

// Server routes v1 requests to an App.
type Server struct {
	app    *app.App
	log    *log.Logger
	router *chi.Mux
}

// New builds the router.
func New(a *app.App) *Server {
	s := &Server{app: a, log: a.Log, router: chi.NewRouter()}
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/enzymes", s.handleEnzymes)
		r.Post("/survey", s.handleSurvey)
		r.Post("/domestication", s.handleDomestication)
		r.Post("/optimize", s.handleOptimize)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRun)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// ListenAndServe serves on addr until ctx is done, then drains in-flight
// requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(),
			"bytes", ww.BytesWritten(), "took", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
}

func (s *Server) handleEnzymes(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.app.Enzymes())
}

func (s *Server) handleSurvey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sequence string `json:"sequence"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.app.Survey(req.Sequence)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDomestication(w http.ResponseWriter, r *http.Request) {
	var req api.DomesticationRequestV1
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.app.Domestication(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req api.OptimizeRequestV1
	if !s.decode(w, r, &req) {
		return
	}
	ctx := r.Context()
	if d := s.app.Cfg.Server.RequestTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	out, err := s.app.Optimize(ctx, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.app.Store == nil {
		s.writeError(w, app.ErrNoStore)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, api.ErrorV1{Error: fmt.Sprintf("invalid limit %q", v), Kind: "input", Field: "limit"})
			return
		}
		limit = n
	}
	runs, err := s.app.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.app.Store == nil {
		s.writeError(w, app.ErrNoStore)
		return
	}
	run, err := s.app.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, s.app.Cfg.Server.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, api.ErrorV1{Error: "invalid request body: " + err.Error(), Kind: "input"})
		return false
	}
	return true
}

// status codes per error kind
var statusOf = map[string]int{
	"input":        http.StatusBadRequest,
	"incompatible": http.StatusUnprocessableEntity,
	"not_found":    http.StatusNotFound,
	"cancelled":    http.StatusServiceUnavailable,
	"internal":     http.StatusInternalServerError,
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := app.ErrorKind(err)
	code := statusOf[kind]
	if kind == "internal" {
		s.log.Error("request failed", "err", err)
	}
	s.writeJSON(w, code, api.ErrorV1{Error: err.Error(), Kind: kind, Field: app.InputField(err)})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("write response", "err", err)
	}
}
