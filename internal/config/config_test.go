package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Empty(t, cfg.Socket)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, time.Second, cfg.Dispatch.Cooldown)
	require.False(t, cfg.Dispatch.DryRun)
	require.Equal(t, 500*time.Millisecond, cfg.Reconnect.InitialInterval)
	require.Equal(t, 30*time.Second, cfg.Reconnect.MaxInterval)
	require.False(t, cfg.Tracing.Enabled)
	require.NoError(t, Validate(cfg))
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Defaults()
	cfg.Log.Level = "verbose"
	require.ErrorContains(t, Validate(cfg), "invalid log level")
}

func TestValidate_NegativeCooldown(t *testing.T) {
	cfg := Defaults()
	cfg.Dispatch.Cooldown = -time.Second
	require.ErrorContains(t, Validate(cfg), "cooldown")
}

func TestValidate_ReconnectBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Reconnect.InitialInterval = 0
	require.ErrorContains(t, Validate(cfg), "initial_interval")

	cfg = Defaults()
	cfg.Reconnect.MaxInterval = 100 * time.Millisecond
	require.ErrorContains(t, Validate(cfg), "max_interval")
}

func TestValidate_Tracing(t *testing.T) {
	cfg := Defaults()
	cfg.Tracing.Exporter = "jaeger"
	require.ErrorContains(t, Validate(cfg), "exporter")

	cfg = Defaults()
	cfg.Tracing.SampleRate = 1.5
	require.ErrorContains(t, Validate(cfg), "sample_rate")
}

func TestUnmarshal_FromFile(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")

	path := t.TempDir() + "/config.yaml"
	content := `
socket: /run/user/1000/niri.sock
log:
  level: debug
dispatch:
  cooldown: 250ms
  dry_run: true
reconnect:
  initial_interval: 1s
  max_interval: 2m
`
	require.NoError(t, writeFile(path, content))
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))

	require.Equal(t, "/run/user/1000/niri.sock", cfg.Socket)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 250*time.Millisecond, cfg.Dispatch.Cooldown)
	require.True(t, cfg.Dispatch.DryRun)
	require.Equal(t, time.Second, cfg.Reconnect.InitialInterval)
	require.Equal(t, 2*time.Minute, cfg.Reconnect.MaxInterval)
	// Untouched sections keep their defaults.
	require.Equal(t, time.Minute, cfg.Reconnect.ResetAfter)
	require.Equal(t, "file", cfg.Tracing.Exporter)
}
