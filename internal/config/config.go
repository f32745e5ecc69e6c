// Package config handles loading and validating the plugin configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the voice plugin daemon.
type Config struct {
	Server          ServerConfig              `mapstructure:"server"`
	HostLinks       HostLinksConfig           `mapstructure:"host_links"`
	DefaultProvider string                    `mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
	Cache           CacheConfig               `mapstructure:"cache"`
	Logging         LoggingConfig             `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// HostLinksConfig holds the configuration for each host-facing surface.
type HostLinksConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig configures the HTTP/WebSocket host link.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// GRPCConfig configures the gRPC host link.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// ProviderConfig holds the connection settings for one TTS server instance.
// Connection settings are explicit here rather than read from the process
// environment inside the adapters; environment lookup happens once, at this
// boundary.
type ProviderConfig struct {
	// Profile names the server variant (e.g. "vibevoice", "chatterbox").
	Profile string `mapstructure:"profile"`

	// BaseURL is the server root, e.g. "http://localhost:8000".
	BaseURL string `mapstructure:"base_url"`

	// APIKey is optional; "${VAR}" references are resolved from the
	// environment at load time.
	APIKey string `mapstructure:"api_key"`

	// Model is the default model name, for variants that take one.
	Model string `mapstructure:"model"`

	// Voice is the default voice id.
	Voice string `mapstructure:"voice"`

	// TimeoutSeconds bounds one synthesis round-trip. Zero uses the
	// adapter default.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// CacheConfig holds the synthesis clip cache settings.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and
// defaults. If configFile is non-empty it is used directly; otherwise the
// standard search order applies: ./wopr-voice.yaml, ./configs/wopr-voice.yaml,
// /etc/wopr-voice/wopr-voice.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("host_links.http.enabled", true)
	v.SetDefault("host_links.http.port", 8080)
	v.SetDefault("host_links.grpc.enabled", true)
	v.SetDefault("host_links.grpc.port", 50051)
	v.SetDefault("default_provider", "vibevoice")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "wopr-voice-cache.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("wopr-voice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/wopr-voice")
	}

	// Environment variables: WOPR_VOICE_SERVER_HEALTH_PORT, etc.
	v.SetEnvPrefix("WOPR_VOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// With no providers configured, assume one local VibeVoice server. The
	// base URL can still come from the environment.
	if len(cfg.Providers) == 0 {
		baseURL := os.Getenv("WOPR_VOICE_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:8000"
		}
		cfg.Providers = map[string]ProviderConfig{
			"vibevoice": {Profile: "vibevoice", BaseURL: baseURL},
		}
	}

	// Resolve env var references in sensitive fields (e.g. "${VIBEVOICE_API_KEY}")
	for name, pc := range cfg.Providers {
		pc.APIKey = resolveEnvRef(pc.APIKey)
		cfg.Providers[name] = pc
	}

	if _, ok := cfg.Providers[cfg.DefaultProvider]; !ok {
		return nil, fmt.Errorf("default_provider %q is not a configured provider", cfg.DefaultProvider)
	}

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
