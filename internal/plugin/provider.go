package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/store"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/tts"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/wav"
)

// configValidator is implemented by synthesizers that can check their own
// connection settings offline.
type configValidator interface {
	ValidateConfig() error
}

// TTSProvider adapts a tts.Synthesizer into the host-facing Provider
// contract, adding request ids, optional clip caching, and output wrapping.
type TTSProvider struct {
	name  string
	synth tts.Synthesizer
	cache *store.Store // nil disables caching
}

// NewTTSProvider wraps a synthesizer as a named provider. cache may be nil.
func NewTTSProvider(name string, synth tts.Synthesizer, cache *store.Store) *TTSProvider {
	return &TTSProvider{name: name, synth: synth, cache: cache}
}

// Name returns the registration name.
func (p *TTSProvider) Name() string { return p.name }

// Synthesize speaks the request's text, consulting the clip cache first, and
// wraps the PCM in the requested output format.
func (p *TTSProvider) Synthesize(ctx context.Context, req *Request) (*Result, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("request has no text")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	logger := slog.With("provider", p.name, "request_id", req.ID)

	key := store.Key(p.name, req.Voice, req.Speed, req.Text)
	if p.cache != nil {
		clip, err := p.cache.Get(key)
		if err != nil {
			logger.Warn("cache lookup failed, synthesizing fresh", "error", err)
		} else if clip != nil {
			logger.Debug("cache hit", "pcm_bytes", len(clip.PCM))
			return p.wrap(req, clip.PCM, clip.SampleRate, clip.Channels, clip.Voice, true)
		}
	}

	res, err := p.synth.Synthesize(ctx, req.Text, tts.SynthesizeOpts{
		Voice: req.Voice,
		Speed: req.Speed,
	})
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", p.name, err)
	}

	if p.cache != nil {
		clip := &store.Clip{
			PCM:        res.PCM,
			SampleRate: res.SampleRate,
			Channels:   res.Channels,
			Voice:      res.Voice,
		}
		if err := p.cache.Put(key, p.name, clip); err != nil {
			logger.Warn("cache insert failed", "error", err)
		}
	}

	return p.wrap(req, res.PCM, res.SampleRate, res.Channels, res.Voice, false)
}

// wrap packages raw PCM into the requested output format.
func (p *TTSProvider) wrap(req *Request, pcm []byte, sampleRate, channels int, voice string, cached bool) (*Result, error) {
	if channels == 0 {
		channels = 1
	}

	result := &Result{
		RequestID:  req.ID,
		Provider:   p.name,
		Voice:      voice,
		SampleRate: sampleRate,
		Channels:   channels,
		Cached:     cached,
	}

	switch req.Format {
	case FormatPCM:
		result.Audio = pcm
		result.ContentType = "audio/pcm"
	case FormatWAV, "":
		result.Audio = wav.Encode(pcm, sampleRate, channels, 16)
		result.ContentType = "audio/wav"
	default:
		return nil, fmt.Errorf("unsupported output format %q", req.Format)
	}
	return result, nil
}

// Voices lists the backend's voices.
func (p *TTSProvider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return p.synth.Voices(ctx)
}

// HealthCheck probes the backing server once.
func (p *TTSProvider) HealthCheck(ctx context.Context) error {
	return p.synth.Health(ctx)
}

// ValidateConfig delegates to the synthesizer when it supports offline
// validation.
func (p *TTSProvider) ValidateConfig() error {
	if v, ok := p.synth.(configValidator); ok {
		return v.ValidateConfig()
	}
	return nil
}

// Shutdown closes the synthesizer. The shared cache is owned and closed by
// the daemon, not by individual providers.
func (p *TTSProvider) Shutdown(ctx context.Context) error {
	return p.synth.Close()
}
