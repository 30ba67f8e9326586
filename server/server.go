// Package server exposes the content-generation pipeline over HTTP:
// synchronous generation, async generation via the task queue, task status,
// health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xhad/scribe/internal/types"
	"github.com/xhad/scribe/pkg/pipeline"
)

type ServerConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
}

type Server struct {
	config   ServerConfig
	pipeline *pipeline.Pipeline
	queue    types.Queue // nil disables the async endpoints
	http     *http.Server
}

func NewWithConfig(config ServerConfig, p *pipeline.Pipeline, q types.Queue) *Server {
	if config.Host == "" {
		config.Host = "0.0.0.0"
	}
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 2 * time.Minute
	}

	s := &Server{
		config:   config,
		pipeline: p,
		queue:    q,
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/content/generate", instrument("generate", s.handleGenerate)).Methods(http.MethodPost)
	api.HandleFunc("/content/generate/async", instrument("generate_async", s.handleGenerateAsync)).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", instrument("task_status", s.handleTaskStatus)).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: router,
	}
	return s
}

// ListenAndServe blocks until the context is canceled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	result, err := s.pipeline.Run(ctx, req)
	if err != nil {
		// The pipeline already reduced stage detail to an opaque message.
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"result": result,
	})
}

func (s *Server) handleGenerateAsync(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "task queue not configured")
		return
	}

	req, err := decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode request")
		return
	}

	taskID, err := s.queue.Enqueue(r.Context(), payload)
	if err != nil {
		log.Printf("enqueue failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to enqueue task")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"ok":      true,
		"task_id": taskID,
	})
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "task queue not configured")
		return
	}

	taskID := mux.Vars(r)["id"]

	result, done, err := s.queue.Result(r.Context(), taskID)
	if err != nil {
		log.Printf("task lookup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch task")
		return
	}
	if !done {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"task_id": taskID,
			"status":  "pending",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"task_id": taskID,
		"status":  "finished",
		"result":  json.RawMessage(result),
	})
}

func decodeRequest(r *http.Request) (pipeline.Request, error) {
	var req pipeline.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %v", err)
	}
	if req.ContentRequest.Topic == "" {
		return req, fmt.Errorf("content_request.topic is required")
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
