package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wopr-voice.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HealthPort != 8081 {
		t.Errorf("HealthPort = %d, want 8081", cfg.Server.HealthPort)
	}
	if !cfg.HostLinks.HTTP.Enabled || cfg.HostLinks.HTTP.Port != 8080 {
		t.Errorf("HTTP link = %+v, want enabled on 8080", cfg.HostLinks.HTTP)
	}
	if cfg.DefaultProvider != "vibevoice" {
		t.Errorf("DefaultProvider = %q, want vibevoice", cfg.DefaultProvider)
	}
	// With no providers configured a local VibeVoice instance is assumed.
	pc, ok := cfg.Providers["vibevoice"]
	if !ok || pc.BaseURL == "" {
		t.Errorf("Providers = %+v, want implicit vibevoice entry", cfg.Providers)
	}
}

func TestLoad_Providers(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
default_provider: narrator
providers:
  narrator:
    profile: vibevoice
    base_url: http://tts-1:8000
    voice: alice
    timeout_seconds: 30
  chatterbox:
    profile: chatterbox
    base_url: http://tts-2:4123
cache:
  enabled: true
  path: /tmp/clips.db
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Providers) != 2 {
		t.Fatalf("len(Providers) = %d, want 2", len(cfg.Providers))
	}
	n := cfg.Providers["narrator"]
	if n.Profile != "vibevoice" || n.BaseURL != "http://tts-1:8000" || n.Voice != "alice" || n.TimeoutSeconds != 30 {
		t.Errorf("narrator = %+v", n)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Path != "/tmp/clips.db" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoad_APIKeyEnvRef(t *testing.T) {
	t.Setenv("TEST_VIBEVOICE_KEY", "sekrit")

	cfg, err := Load(writeConfig(t, `
providers:
  vibevoice:
    profile: vibevoice
    base_url: http://localhost:8000
    api_key: ${TEST_VIBEVOICE_KEY}
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Providers["vibevoice"].APIKey; got != "sekrit" {
		t.Errorf("APIKey = %q, want resolved env value", got)
	}
}

func TestLoad_UnknownDefaultProvider(t *testing.T) {
	_, err := Load(writeConfig(t, `
default_provider: missing
providers:
  vibevoice:
    profile: vibevoice
    base_url: http://localhost:8000
`))
	if err == nil {
		t.Fatal("Load() error = nil, want error for unknown default_provider")
	}
}
