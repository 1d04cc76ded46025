// Package testutil provides fixtures for building compositor snapshots
// and event sequences in tests.
package testutil

import "github.com/zjrosen/niritile/internal/niri"

// WindowOption configures a window fixture.
type WindowOption func(*niri.Window)

// Floating marks the window as floating.
func Floating() WindowOption {
	return func(w *niri.Window) {
		w.IsFloating = true
	}
}

// WithWidth sets the window's layout width.
func WithWidth(width float64) WindowOption {
	return func(w *niri.Window) {
		w.Width = width
	}
}

// WithTitle sets the window title.
func WithTitle(title string) WindowOption {
	return func(w *niri.Window) {
		w.Title = title
	}
}

// Window builds a window fixture. Defaults: tiled, width 800.
func Window(id, workspace uint64, opts ...WindowOption) niri.Window {
	w := niri.Window{
		ID:          id,
		Title:       "window",
		AppID:       "test",
		WorkspaceID: workspace,
		IsFloating:  false,
		Width:       800,
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}
