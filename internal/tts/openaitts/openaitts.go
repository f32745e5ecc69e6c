// Package openaitts implements the TTS Synthesizer for self-hosted,
// OpenAI-API-compatible speech servers (VibeVoice, Chatterbox, and friends).
//
// The client POSTs a JSON synthesis request, buffers the WAV response body
// fully, and unwraps it into raw PCM with the wav demuxer. Which endpoint
// paths and field names are used comes from a Profile; everything else is
// identical across server variants.
package openaitts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/tts"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/wav"
)

// DefaultTimeout bounds a synthesis round-trip when the config sets none.
// Self-hosted servers can take a while on long passages and cold models.
const DefaultTimeout = 120 * time.Second

// maxErrorBody caps how much of an error response is read for diagnostics.
const maxErrorBody = 2048

// Config holds the connection settings for one server instance. It is built
// once at the boundary (from file and environment) and passed in explicitly;
// the client itself never consults the environment.
type Config struct {
	// BaseURL is the server root, e.g. "http://localhost:8000".
	BaseURL string

	// APIKey is sent as a bearer token when non-empty. Self-hosted servers
	// usually need none.
	APIKey string

	// Model is the default model name, when the profile has a model field.
	Model string

	// Voice is the default voice id.
	Voice string

	// Timeout bounds each round-trip. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client implements tts.Synthesizer against one server instance.
type Client struct {
	profile Profile
	cfg     Config
	httpc   *http.Client
}

// New creates a client for the given profile and connection config.
func New(profile Profile, cfg Config) *Client {
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		profile: profile,
		cfg:     cfg,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// ProfileName returns the name of the server variant this client speaks to.
func (c *Client) ProfileName() string { return c.profile.Name }

// ValidateConfig checks the connection settings without touching the
// network. Called once at startup.
func (c *Client) ValidateConfig() error {
	if c.cfg.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.cfg.BaseURL)
	}
	if c.profile.SpeechPath == "" || c.profile.TextField == "" {
		return fmt.Errorf("profile %q has no speech endpoint mapping", c.profile.Name)
	}
	return nil
}

// Synthesize sends text to the server and returns the demuxed audio.
func (c *Client) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	voice := opts.Voice
	if voice == "" {
		voice = c.cfg.Voice
	}

	body := map[string]any{
		c.profile.TextField: text,
	}
	if voice != "" {
		body[c.profile.VoiceField] = voice
	}
	if c.profile.ModelField != "" && c.cfg.Model != "" {
		body[c.profile.ModelField] = c.cfg.Model
	}
	if c.profile.SpeedField != "" && opts.Speed != 0 {
		body[c.profile.SpeedField] = opts.Speed
	}
	if c.profile.FormatField != "" {
		body[c.profile.FormatField] = "wav"
	}
	for k, v := range c.profile.Extra {
		body[k] = v
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshalling synthesis request: %w", err)
	}

	endpoint := c.cfg.BaseURL + c.profile.SpeechPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	slog.Debug("tts synthesize", "profile", c.profile.Name, "url", endpoint,
		"text_length", len(text), "voice", voice)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("tts request failed (status %d): %s", resp.StatusCode, serverMessage(raw))
	}

	// Buffer the whole container before unwrapping; the demuxer does not
	// work on partial input.
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading tts response: %w", err)
	}

	pcm, sampleRate := wav.Demux(audio)

	slog.Debug("tts synthesis complete", "profile", c.profile.Name,
		"wav_bytes", len(audio), "pcm_bytes", len(pcm), "sample_rate", sampleRate)

	return &tts.SynthesizeResult{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   1,
		Voice:      voice,
	}, nil
}

// Voices lists the voices the server offers. A server without a listing
// endpoint (none in the profile, or 404) yields an empty list.
func (c *Client) Voices(ctx context.Context) ([]tts.Voice, error) {
	if c.profile.VoicesPath == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+c.profile.VoicesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voices request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("voices request failed (status %d): %s", resp.StatusCode, serverMessage(raw))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading voices response: %w", err)
	}
	return parseVoices(raw), nil
}

// Health probes the server's liveness endpoint once. No retries; a failing
// server is surfaced to the host as-is.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+c.profile.HealthPath, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health check: status %d", resp.StatusCode)
	}
	return nil
}

// Close releases pooled connections.
func (c *Client) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

// serverMessage digs a human-readable message out of an error payload.
// Server variants disagree on the shape, so several paths are tried before
// falling back to the raw body.
func serverMessage(body []byte) string {
	for _, path := range []string{"error.message", "detail", "message", "error"} {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return strings.TrimSpace(string(body))
}

// parseVoices accepts both listing shapes seen across server variants:
// {"voices": [...]} and a bare top-level array, with entries that are either
// plain strings or objects.
func parseVoices(raw []byte) []tts.Voice {
	list := gjson.GetBytes(raw, "voices")
	if !list.IsArray() {
		list = gjson.ParseBytes(raw)
	}
	if !list.IsArray() {
		return nil
	}

	var voices []tts.Voice
	list.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			id := item.Get("id").String()
			if id == "" {
				id = item.Get("voice_id").String()
			}
			if id == "" {
				id = item.Get("name").String()
			}
			if id != "" {
				voices = append(voices, tts.Voice{
					ID:       id,
					Name:     item.Get("name").String(),
					Language: item.Get("language").String(),
				})
			}
			return true
		}
		if s := item.String(); s != "" {
			voices = append(voices, tts.Voice{ID: s})
		}
		return true
	})
	return voices
}
