package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	w, err := New(Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	ch, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		require.Fail(t, "timeout waiting for change notification")
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

	w, err := New(Config{Path: path, DebounceDur: 100 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	ch, err := w.Start()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		require.Fail(t, "timeout waiting for change notification")
	}

	// The burst collapsed into a single notification.
	select {
	case <-ch:
		require.Fail(t, "expected burst to be debounced into one notification")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

	w, err := New(Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	ch, err := w.Start()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("b: 2\n"), 0o600))

	select {
	case <-ch:
		require.Fail(t, "unrelated file should not trigger a notification")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/config.yaml")
	require.Equal(t, "/tmp/config.yaml", cfg.Path)
	require.Equal(t, 500*time.Millisecond, cfg.DebounceDur)
}
