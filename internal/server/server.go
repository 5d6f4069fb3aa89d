// Package server exposes the analysis pipeline over HTTP. This is a thin
// presentation layer: it hands the pipeline a string and renders whatever
// structured object comes back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rca-agent/internal/pipeline"
	"rca-agent/internal/storage"
)

// Request bodies are capped: the prompt builder truncates anyway, and an
// unbounded read is an easy way to fall over.
const maxBodyBytes = 10 << 20

type Server struct {
	analyzer *pipeline.Analyzer
	repo     *storage.Repository
	logger   *logrus.Logger
}

func New(analyzer *pipeline.Analyzer, repo *storage.Repository, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{analyzer: analyzer, repo: repo, logger: logger}
}

// Router builds the HTTP routing table.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	// Worst case is attempts x (call timeout + backoff); leave headroom.
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/health", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.analyze)
		r.Get("/logs", s.listLogs)
		r.Get("/logs/{id}", s.getLog)
		r.Post("/logs/{id}/feedback", s.submitFeedback)
	})
	return r
}

type ctxKeyRequestID struct{}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": ww.Header().Get("X-Request-ID"),
		}).Info("http request")
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	Log string `json:"log"`
}

// analyze runs the pipeline. The analysis itself cannot fail; a 500 here
// means the result could not be persisted, and the body still carries the
// analysis so the client does not lose it.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.analyzer.Analyze(r.Context(), req.Log)
	if err != nil {
		s.logger.WithError(err).Error("analysis persistence failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":    err.Error(),
			"analysis": resp,
		})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listLogs(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > 100 {
			n = 100
		}
		limit = n
	}

	records, err := s.repo.FetchLogs(limit)
	if err != nil {
		s.logger.WithError(err).Error("fetch logs failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch logs")
		return
	}
	if records == nil {
		records = []storage.LogRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}

	record, err := s.repo.FetchLogByID(id)
	if err != nil {
		s.logger.WithError(err).Error("fetch log failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch log")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "log not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

type feedbackRequest struct {
	Choice  string `json:"choice"`
	Comment string `json:"comment"`
}

func (s *Server) submitFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid log id")
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := storage.ValidateFeedbackChoice(req.Choice); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := s.repo.FetchLogByID(id)
	if err != nil {
		s.logger.WithError(err).Error("fetch log failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch log")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "log not found")
		return
	}

	fid, err := s.repo.InsertFeedback(id, req.Choice, req.Comment)
	if err != nil {
		s.logger.WithError(err).Error("insert feedback failed")
		writeError(w, http.StatusInternalServerError, "failed to store feedback")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": fid})
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
