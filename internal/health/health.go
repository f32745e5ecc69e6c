// Package health provides the plugin's HTTP health check endpoint.
//
// Docker, Kubernetes, and the host runtime's supervisor use this endpoint to
// monitor liveness. When the daemon is running and its links are up,
// /healthz returns 200 OK. /healthz?probe=providers additionally performs a
// live round-trip to every registered TTS server.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/engine"
)

// probeTimeout bounds one provider round-trip during a deep probe.
const probeTimeout = 5 * time.Second

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port   int
	eng    *engine.Engine
	ready  atomic.Bool
	server *http.Server
}

// New creates a new health check server.
func New(port int, eng *engine.Engine) *Server {
	return &Server{port: port, eng: eng}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleHealth)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if !s.ready.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not_ready"})
		return
	}

	if r.URL.Query().Get("probe") != "providers" {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		return
	}

	// Deep probe: one live round-trip per provider.
	providers := make(map[string]string)
	allOK := true
	for _, name := range s.eng.Providers() {
		p, err := s.eng.Resolve(name)
		if err != nil {
			continue
		}
		probeCtx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		if err := p.HealthCheck(probeCtx); err != nil {
			providers[name] = err.Error()
			allOK = false
		} else {
			providers[name] = "ok"
		}
		cancel()
	}

	status := "ok"
	if !allOK {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"providers": providers,
	})
}
