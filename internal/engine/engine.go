// Package engine implements the request pipeline between host-link surfaces
// and registered providers.
//
// The engine resolves the provider named in the request (falling back to the
// configured default), runs the synthesis, and reports timing. Host links
// don't touch the registry directly; they only see the engine's Handle
// function.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/plugin"
)

// Engine routes synthesis requests to providers.
type Engine struct {
	registry        *plugin.Registry
	defaultProvider string
}

// New creates an engine over the given registry. defaultProvider is used for
// requests that don't name one.
func New(registry *plugin.Registry, defaultProvider string) *Engine {
	return &Engine{registry: registry, defaultProvider: defaultProvider}
}

// Resolve returns the provider a request with the given name would use.
func (e *Engine) Resolve(name string) (plugin.Provider, error) {
	if name == "" {
		name = e.defaultProvider
	}
	p, ok := e.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (registered: %s)",
			name, strings.Join(e.registry.Names(), ", "))
	}
	return p, nil
}

// Providers lists the registered provider names.
func (e *Engine) Providers() []string {
	return e.registry.Names()
}

// Handle processes a single synthesis request end to end. Host links pass
// this function their decoded requests.
func (e *Engine) Handle(ctx context.Context, req *plugin.Request) (*plugin.Result, error) {
	if req.Text == "" {
		return nil, fmt.Errorf("request has no text")
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	p, err := e.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	logger := slog.With("request_id", req.ID, "provider", p.Name())
	logger.Debug("synthesis started", "text_length", len(req.Text), "voice", req.Voice)

	result, err := p.Synthesize(ctx, req)
	if err != nil {
		logger.Error("synthesis failed", "error", err)
		return nil, err
	}

	logger.Info("synthesis complete",
		"duration", time.Since(start),
		"audio_bytes", len(result.Audio),
		"sample_rate", result.SampleRate,
		"cached", result.Cached)
	return result, nil
}
