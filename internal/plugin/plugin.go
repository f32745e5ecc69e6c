// Package plugin defines the provider contract this daemon exposes to the
// host voice-orchestration runtime, and the request/result types flowing
// across it.
//
// The host addresses providers by name. Every provider implements the same
// narrow surface (synthesize, health check, config validation, shutdown)
// regardless of which TTS server variant sits behind it.
package plugin

import (
	"context"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/tts"
)

// Audio output formats a caller can request.
const (
	// FormatWAV re-wraps the PCM in a WAV container (the default).
	FormatWAV = "wav"

	// FormatPCM returns the raw samples as-is.
	FormatPCM = "pcm"
)

// Request is a single synthesis request from the host.
type Request struct {
	// ID is a unique identifier for the request. Assigned at the boundary
	// (UUID) when the caller leaves it empty.
	ID string `json:"id,omitempty"`

	// Provider names the registered provider to use. Empty selects the
	// configured default.
	Provider string `json:"provider,omitempty"`

	// Text is the text to speak.
	Text string `json:"text"`

	// Voice overrides the provider's default voice.
	Voice string `json:"voice,omitempty"`

	// Speed is the playback speed multiplier (1.0 = normal, 0 = default).
	Speed float64 `json:"speed,omitempty"`

	// Format selects the audio output format: "wav" (default) or "pcm".
	Format string `json:"format,omitempty"`
}

// Result is the outcome of a synthesis request. Audio marshals to base64 in
// JSON transports.
type Result struct {
	RequestID   string `json:"request_id"`
	Provider    string `json:"provider"`
	Voice       string `json:"voice,omitempty"`
	Audio       []byte `json:"audio,omitempty"`
	ContentType string `json:"content_type"`
	SampleRate  int    `json:"sample_rate"`
	Channels    int    `json:"channels"`

	// Cached is true when the audio came from the local synthesis cache
	// rather than a fresh server round-trip.
	Cached bool `json:"cached,omitempty"`
}

// Provider is the surface each registered TTS backend exposes to the host.
type Provider interface {
	// Name returns the registration name (e.g. "vibevoice", "chatterbox").
	Name() string

	// Synthesize speaks the request's text and returns the audio in the
	// requested format.
	Synthesize(ctx context.Context, req *Request) (*Result, error)

	// Voices lists the voices the backend offers.
	Voices(ctx context.Context) ([]tts.Voice, error)

	// HealthCheck probes the backing server once.
	HealthCheck(ctx context.Context) error

	// ValidateConfig verifies the provider's configuration without touching
	// the network. Called at startup; an error is fatal.
	ValidateConfig() error

	// Shutdown releases the provider's resources.
	Shutdown(ctx context.Context) error
}
