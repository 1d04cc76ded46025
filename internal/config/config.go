// Package config provides configuration types, defaults, and persistence
// for niritile.
package config

import (
	"fmt"
	"time"
)

// Config holds all configuration options for niritile.
type Config struct {
	// Socket overrides the niri IPC socket path. When empty the daemon
	// falls back to the NIRI_SOCKET environment variable.
	Socket string `mapstructure:"socket" yaml:"socket"`

	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Dispatch  DispatchConfig  `mapstructure:"dispatch" yaml:"dispatch"`
	Reconnect ReconnectConfig `mapstructure:"reconnect" yaml:"reconnect"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
}

// LogConfig holds logging options.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level" yaml:"level"`
	// File is the log file path. Empty means stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// DispatchConfig holds outbound command dispatch options.
type DispatchConfig struct {
	// Cooldown suppresses identical commands issued within this window,
	// protecting the compositor from command storms when the event
	// stream bursts.
	Cooldown time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
	// DryRun logs commands instead of sending them.
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run"`
}

// ReconnectConfig bounds the exponential backoff used when the compositor
// connection is lost.
type ReconnectConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval" yaml:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval" yaml:"max_interval"`
	// ResetAfter resets the backoff once a connection has stayed healthy
	// this long, so a flapping compositor still backs off but a stable
	// one reconnects quickly after a one-off restart.
	ResetAfter time.Duration `mapstructure:"reset_after" yaml:"reset_after"`
}

// TracingConfig configures the OpenTelemetry tracing subsystem.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Exporter selects the export backend: "none", "file", "stdout", "otlp".
	Exporter string `mapstructure:"exporter" yaml:"exporter"`
	// FilePath is the output file for the "file" exporter.
	FilePath string `mapstructure:"file_path" yaml:"file_path"`
	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	// SampleRate is the fraction of event cycles to trace (1.0 = all).
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// Defaults returns the configuration used when no config file is present.
func Defaults() Config {
	return Config{
		Socket: "",
		Log: LogConfig{
			Level: "info",
			File:  "",
		},
		Dispatch: DispatchConfig{
			Cooldown: time.Second,
			DryRun:   false,
		},
		Reconnect: ReconnectConfig{
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     30 * time.Second,
			ResetAfter:      time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func Validate(cfg Config) error {
	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	if cfg.Dispatch.Cooldown < 0 {
		return fmt.Errorf("dispatch cooldown must not be negative, got %s", cfg.Dispatch.Cooldown)
	}
	if cfg.Reconnect.InitialInterval <= 0 {
		return fmt.Errorf("reconnect initial_interval must be positive, got %s", cfg.Reconnect.InitialInterval)
	}
	if cfg.Reconnect.MaxInterval < cfg.Reconnect.InitialInterval {
		return fmt.Errorf("reconnect max_interval %s is below initial_interval %s",
			cfg.Reconnect.MaxInterval, cfg.Reconnect.InitialInterval)
	}
	switch cfg.Tracing.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("unsupported tracing exporter %q", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing sample_rate must be within [0, 1], got %v", cfg.Tracing.SampleRate)
	}
	return nil
}
