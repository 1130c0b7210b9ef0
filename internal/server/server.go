// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research agent over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/medaffairs/internal/agent"
	"github.com/pdiddy/medaffairs/internal/pubmed"
	"github.com/pdiddy/medaffairs/pkg/types"
)

// Researcher is the agent surface the handlers call.
type Researcher interface {
	Search(ctx context.Context, query string, opts agent.Options) ([]types.Article, error)
	Abstract(ctx context.Context, pmid string) pubmed.AbstractRecord
	Research(ctx context.Context, query string, task types.TaskType, opts agent.Options) agent.Result
}

// Server routes HTTP requests to a Researcher.
type Server struct {
	agent   Researcher
	version string
	log     logrus.FieldLogger
}

// New returns a Server. version is reported by /healthz.
func New(a Researcher, version string) *Server {
	return &Server{agent: a, version: version, log: logrus.WithField("component", "server")}
}

// Routes builds the router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/search", s.search).Methods(http.MethodGet)
	api.HandleFunc("/abstracts/{pmid:[0-9]+}", s.abstract).Methods(http.MethodGet)
	api.HandleFunc("/research", s.research).Methods(http.MethodPost)
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	opts := agent.Options{Phase: q.Get("phase")}
	var err error
	if opts.MaxResults, err = intParam(q.Get("max")); err != nil {
		writeError(w, http.StatusBadRequest, "max: "+err.Error())
		return
	}
	if opts.RecentYears, err = intParam(q.Get("recent")); err != nil {
		writeError(w, http.StatusBadRequest, "recent: "+err.Error())
		return
	}
	if c := q.Get("clinical"); c != "" {
		if opts.Clinical, err = strconv.ParseBool(c); err != nil {
			writeError(w, http.StatusBadRequest, "clinical: "+err.Error())
			return
		}
	}

	articles, err := s.agent.Search(r.Context(), query, opts)
	if err != nil {
		s.log.WithError(err).Error("search failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if articles == nil {
		articles = []types.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) abstract(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.Abstract(r.Context(), mux.Vars(r)["pmid"]))
}

// researchRequest is the body of POST /api/research.
type researchRequest struct {
	Query string `json:"query"`
	Task  string `json:"task"`
	agent.Options
}

func (s *Server) research(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	task, err := types.ParseTaskType(req.Task)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := s.agent.Research(r.Context(), req.Query, task, req.Options)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}
