// Package http implements the HTTP host link.
//
// This link exposes a REST API for synthesis and provider discovery plus a
// WebSocket endpoint for hosts that stream requests over one connection. It
// is the surface most host runtimes use.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/engine"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/hostlink"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/plugin"
)

// maxRequestBody caps a synthesis request body.
const maxRequestBody = 1 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 45 * time.Second,
	// The host runtime may sit behind a different origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Link implements hostlink.Link over HTTP and WebSocket.
type Link struct {
	port   int
	eng    *engine.Engine
	server *http.Server
}

// New creates an HTTP link on the given port.
func New(port int, eng *engine.Engine) *Link {
	return &Link{port: port, eng: eng}
}

// Name returns the link identifier.
func (l *Link) Name() string { return "http" }

// Listen starts the HTTP server and routes requests to the handler.
func (l *Link) Listen(ctx context.Context, handler hostlink.Handler) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/synthesize", func(w http.ResponseWriter, r *http.Request) {
		l.handleSynthesize(w, r, handler)
	})
	mux.HandleFunc("GET /v1/providers", l.handleProviders)
	mux.HandleFunc("GET /v1/providers/{name}/voices", l.handleVoices)
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		l.handleWS(w, r, handler)
	})

	// Swagger UI serving the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	l.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", l.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http link listening", "port", l.port)

	go func() {
		<-ctx.Done()
		slog.Info("http link shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = l.server.Shutdown(shutdownCtx)
	}()

	if err := l.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleSynthesize processes a POST /v1/synthesize request.
//
// @Summary     Synthesize speech
// @Description Accepts a JSON synthesis request and returns the audio. With "Accept: audio/wav"
// @Description the body is the raw audio; otherwise a JSON result with base64 audio is returned.
// @Tags        synthesize
// @Accept      json
// @Produce     json
// @Produce     audio/wav
// @Param       request  body      plugin.Request  true  "Synthesis request"
// @Success     200  {object}  plugin.Result  "Synthesized audio"
// @Failure     400  {string}  string  "Invalid request body"
// @Failure     500  {string}  string  "Synthesis error"
// @Router      /v1/synthesize [post]
func (l *Link) handleSynthesize(w http.ResponseWriter, r *http.Request, handler hostlink.Handler) {
	var req plugin.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := handler(r.Context(), &req)
	if err != nil {
		slog.Error("synthesize failed", "error", err)
		http.Error(w, "synthesis error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Raw audio when the caller asks for it; JSON envelope otherwise.
	if r.Header.Get("Accept") == result.ContentType {
		w.Header().Set("Content-Type", result.ContentType)
		w.Header().Set("X-Request-Id", result.RequestID)
		_, _ = w.Write(result.Audio)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// handleProviders lists the registered providers.
//
// @Summary  List providers
// @Tags     providers
// @Produce  json
// @Success  200  {object}  map[string][]string
// @Router   /v1/providers [get]
func (l *Link) handleProviders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{"providers": l.eng.Providers()})
}

// handleVoices lists the voices of one provider.
//
// @Summary  List provider voices
// @Tags     providers
// @Produce  json
// @Param    name  path  string  true  "Provider name"
// @Success  200  {array}   tts.Voice
// @Failure  404  {string}  string  "Unknown provider"
// @Router   /v1/providers/{name}/voices [get]
func (l *Link) handleVoices(w http.ResponseWriter, r *http.Request) {
	p, err := l.eng.Resolve(r.PathValue("name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	voices, err := p.Voices(r.Context())
	if err != nil {
		slog.Error("voices listing failed", "provider", p.Name(), "error", err)
		http.Error(w, "voices error: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(voices)
}

// wsError is the JSON envelope sent for a failed websocket request.
type wsError struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
}

// wsResult is the JSON envelope announcing a result; the audio follows in a
// separate binary frame.
type wsResult struct {
	Type        string `json:"type"`
	RequestID   string `json:"request_id"`
	Provider    string `json:"provider"`
	ContentType string `json:"content_type"`
	SampleRate  int    `json:"sample_rate"`
	Channels    int    `json:"channels"`
	Cached      bool   `json:"cached,omitempty"`
}

// handleWS serves a persistent synthesis session: the host sends JSON
// requests and receives a JSON result envelope followed by one binary audio
// frame per request.
func (l *Link) handleWS(w http.ResponseWriter, r *http.Request, handler hostlink.Handler) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	slog.Debug("websocket session started", "remote", conn.RemoteAddr())

	for {
		var req plugin.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read failed", "error", err)
			}
			return
		}

		result, err := handler(r.Context(), &req)
		if err != nil {
			_ = conn.WriteJSON(wsError{Type: "error", RequestID: req.ID, Message: err.Error()})
			continue
		}

		envelope := wsResult{
			Type:        "result",
			RequestID:   result.RequestID,
			Provider:    result.Provider,
			ContentType: result.ContentType,
			SampleRate:  result.SampleRate,
			Channels:    result.Channels,
			Cached:      result.Cached,
		}
		if err := conn.WriteJSON(envelope); err != nil {
			slog.Warn("websocket write failed", "error", err)
			return
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, result.Audio); err != nil {
			slog.Warn("websocket audio write failed", "error", err)
			return
		}
	}
}

// Close gracefully shuts down the HTTP server.
func (l *Link) Close() error {
	if l.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return l.server.Shutdown(ctx)
	}
	return nil
}
