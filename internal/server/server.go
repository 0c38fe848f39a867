// Package server exposes docx generation and download over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bobiverse/docxfill/internal/config"
	"github.com/bobiverse/docxfill/internal/storage"
)

// Server - HTTP handlers over template and output stores
type Server struct {
	templates storage.Store
	generated storage.Store

	renderTimeout time.Duration
	maxBodyBytes  int64
	debug         bool

	// id of generated document, without extension
	newID func() string

	mux *http.ServeMux
}

// New - server for given stores
func New(stores *storage.Stores, cfg config.Config) *Server {
	s := &Server{
		templates:     stores.Templates,
		generated:     stores.Generated,
		renderTimeout: cfg.RenderTimeout,
		maxBodyBytes:  cfg.MaxBodyBytes,
		debug:         cfg.Debug,
		newID:         uuid.NewString,
		mux:           http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("GET /api/download", s.handleDownload)
	s.mux.HandleFunc("GET /api/download/{filename}", s.handleDownload)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s
}

// Handler - routes wrapped with request logging
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// ListenAndServe - serve until ctx is done, then shut down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("listening on %s", addr)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	log.Printf("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
