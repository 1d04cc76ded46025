package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "niritile configuration")
}

// The template must stay valid YAML with the sections Config expects.
func TestDefaultConfigTemplate_IsValidYAML(t *testing.T) {
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &doc))

	for _, key := range []string{"socket", "log", "dispatch", "reconnect", "tracing"} {
		require.Contains(t, doc, key)
	}
}

// The template must round-trip to the same values Defaults() returns, so
// a freshly written config file changes nothing.
func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	want := Defaults()
	require.Equal(t, want.Socket, cfg.Socket)
	require.Equal(t, want.Log, cfg.Log)
	require.Equal(t, want.Dispatch, cfg.Dispatch)
	require.Equal(t, want.Reconnect, cfg.Reconnect)
	require.Equal(t, want.Tracing.Exporter, cfg.Tracing.Exporter)
	require.Equal(t, want.Tracing.OTLPEndpoint, cfg.Tracing.OTLPEndpoint)
	require.InDelta(t, want.Tracing.SampleRate, cfg.Tracing.SampleRate, 1e-9)
	require.Equal(t, time.Second, cfg.Dispatch.Cooldown)
}
