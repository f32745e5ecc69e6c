// wopr-voice is a voice plugin daemon that exposes self-hosted,
// OpenAI-API-compatible text-to-speech servers (VibeVoice, Chatterbox) to a
// host voice-orchestration runtime.
//
// Usage:
//
//	wopr-voice [flags]
//	wopr-voice --config /path/to/wopr-voice.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/config"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/engine"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/health"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/hostlink"
	grpclink "github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/hostlink/grpc"
	httplink "github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/hostlink/http"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/plugin"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/store"
	"github.com/wopr-network/wopr-plugin-voice-vibevoice/internal/tts/openaitts"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/wopr-voice.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("wopr-voice %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("wopr-voice starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Open the clip cache if enabled.
	var cache *store.Store
	if cfg.Cache.Enabled {
		cache, err = store.Open(cfg.Cache.Path)
		if err != nil {
			slog.Error("failed to open clip cache", "path", cfg.Cache.Path, "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		slog.Info("clip cache enabled", "path", cfg.Cache.Path)
	}

	// Build and register the configured providers.
	registry := plugin.NewRegistry()
	for name, pc := range cfg.Providers {
		profile, ok := openaitts.ProfileByName(pc.Profile)
		if !ok {
			slog.Error("unknown provider profile", "provider", name,
				"profile", pc.Profile, "known", openaitts.ProfileNames())
			os.Exit(1)
		}

		client := openaitts.New(profile, openaitts.Config{
			BaseURL: pc.BaseURL,
			APIKey:  pc.APIKey,
			Model:   pc.Model,
			Voice:   pc.Voice,
			Timeout: time.Duration(pc.TimeoutSeconds) * time.Second,
		})

		provider := plugin.NewTTSProvider(name, client, cache)
		if err := provider.ValidateConfig(); err != nil {
			slog.Error("invalid provider configuration", "provider", name, "error", err)
			os.Exit(1)
		}
		if err := registry.Register(provider); err != nil {
			slog.Error("provider registration failed", "provider", name, "error", err)
			os.Exit(1)
		}
		slog.Info("registered provider", "provider", name,
			"profile", pc.Profile, "base_url", pc.BaseURL)
	}

	eng := engine.New(registry, cfg.DefaultProvider)

	// Initialize enabled host links.
	var links []hostlink.Link
	if cfg.HostLinks.HTTP.Enabled {
		links = append(links, httplink.New(cfg.HostLinks.HTTP.Port, eng))
	}
	if cfg.HostLinks.GRPC.Enabled {
		links = append(links, grpclink.New(cfg.HostLinks.GRPC.Port, eng))
	}

	if len(links) == 0 {
		slog.Error("no host links enabled, enable at least one in config")
		os.Exit(1)
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, eng)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all host links.
	var wg sync.WaitGroup
	for _, l := range links {
		wg.Add(1)
		go func(l hostlink.Link) {
			defer wg.Done()
			slog.Info("starting host link", "name", l.Name())
			if err := l.Listen(ctx, eng.Handle); err != nil {
				slog.Error("host link failed", "name", l.Name(), "error", err)
			}
		}(l)
	}

	// Mark as ready once all links are started.
	healthServer.SetReady(true)
	slog.Info("wopr-voice ready",
		"providers", len(cfg.Providers),
		"links", len(links),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	// Close all links, then shut the providers down.
	for _, l := range links {
		if err := l.Close(); err != nil {
			slog.Error("host link close error", "name", l.Name(), "error", err)
		}
	}
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	registry.Shutdown(shutdownCtx)
	shutdownCancel()

	slog.Info("wopr-voice stopped")
}
