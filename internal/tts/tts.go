// Package tts defines the interface for text-to-speech synthesis backends.
//
// A Synthesizer fronts one remote TTS server. It returns raw PCM samples
// (the WAV container the server responds with is already unwrapped) so that
// callers can re-wrap, cache, or stream the audio however they need.
package tts

import "context"

// SynthesizeOpts controls synthesis behavior for a single request.
type SynthesizeOpts struct {
	// Voice overrides the backend's configured default voice.
	Voice string

	// Speed is the playback speed multiplier (1.0 = normal). Zero means
	// the backend default.
	Speed float64
}

// SynthesizeResult holds the output of a synthesis call.
type SynthesizeResult struct {
	// PCM is the raw sample payload extracted from the server's response.
	PCM []byte

	// SampleRate is the sample rate in Hz as declared by the container.
	SampleRate int

	// Channels is the number of audio channels (self-hosted TTS servers
	// emit mono).
	Channels int

	// Voice is the voice that was actually used.
	Voice string
}

// Voice describes one voice offered by a backend.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Language string `json:"language,omitempty"`
}

// Synthesizer converts text to audio via a remote TTS server.
type Synthesizer interface {
	// Synthesize generates audio from text. The full response body is
	// buffered before the container is unwrapped; partial input is never
	// demuxed.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Voices lists the voices the server offers. Servers without a voice
	// listing endpoint return an empty slice, not an error.
	Voices(ctx context.Context) ([]Voice, error)

	// Health performs a single round-trip to the server. No retries.
	Health(ctx context.Context) error

	// Close releases any resources held by the synthesizer.
	Close() error
}
