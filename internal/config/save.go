package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zjrosen/niritile/internal/log"
)

// DefaultConfigTemplate returns the commented YAML written on first run.
// Kept in sync with Defaults(); the config tests verify the round trip.
func DefaultConfigTemplate() string {
	return `# niritile configuration.
# All settings are optional; the values below are the built-in defaults.

# Path to the niri IPC socket. Empty uses $NIRI_SOCKET.
socket: ""

log:
  # One of: debug, info, warn, error.
  level: info
  # Log file path. Empty logs to stderr (journal under systemd).
  file: ""

dispatch:
  # Identical commands within this window are suppressed.
  cooldown: 1s
  # Log commands instead of sending them.
  dry_run: false

reconnect:
  initial_interval: 500ms
  max_interval: 30s
  # Backoff resets after the connection has been healthy this long.
  reset_after: 1m

tracing:
  enabled: false
  # One of: none, file, stdout, otlp.
  exporter: file
  file_path: ""
  otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments. Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}
