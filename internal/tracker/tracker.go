// Package tracker implements the event-driven state machine that keeps
// per-workspace tiled-window counts and decides when to maximize a lone
// tiled window or restore its recorded width.
//
// The tracker is total: it never rejects an event. Notifications that
// cannot be reconciled with its state (unknown ids, duplicates) are
// no-ops with a diagnostic, because the compositor is the source of
// truth and a later event will straighten the bookkeeping out.
package tracker

import (
	"github.com/zjrosen/niritile/internal/log"
	"github.com/zjrosen/niritile/internal/niri"
)

// windowRecord is the tracker's view of one window.
type windowRecord struct {
	workspace uint64
	floating  bool
	// width is the last layout width the compositor reported for the
	// window. It deliberately ignores the daemon's own maximize commands:
	// the tracker re-derives truth from events, never from commands it
	// issued.
	width float64
	// maximized marks a window the daemon auto-maximized. Set iff a
	// restore record for its workspace names this window.
	maximized bool
}

// restoreRecord remembers the width a window had before it was
// auto-maximized. At most one exists per workspace, and only while that
// workspace holds exactly one tiled window that the daemon maximized.
type restoreRecord struct {
	windowID uint64
	width    float64
}

// Tracker owns all window/workspace state for the process. It is not
// safe for concurrent use; the daemon drives it from a single event
// loop.
type Tracker struct {
	windows  map[uint64]*windowRecord
	tiled    map[uint64]map[uint64]struct{} // workspace -> tiled window ids
	restores map[uint64]restoreRecord       // workspace -> pending restore
}

// New returns an empty tracker.
func New() *Tracker {
	t := &Tracker{}
	t.Reset()
	return t
}

// Reset discards all state. Called before reseeding after a reconnect:
// events missed during the outage cannot be replayed, so continuity must
// not be assumed.
func (t *Tracker) Reset() {
	t.windows = make(map[uint64]*windowRecord)
	t.tiled = make(map[uint64]map[uint64]struct{})
	t.restores = make(map[uint64]restoreRecord)
}

// Seed rebuilds the inventory from a snapshot without emitting actions.
// A lone tiled window discovered this way is not retroactively maximized:
// fabricating a restore record without an observed pre-maximize width
// risks destroying a layout the user configured while the daemon was not
// watching. Tracking begins with the next transition-triggering event.
func (t *Tracker) Seed(windows []niri.Window) {
	t.Reset()
	for _, w := range windows {
		t.windows[w.ID] = &windowRecord{
			workspace: w.WorkspaceID,
			floating:  w.IsFloating,
			width:     w.Width,
		}
		if !w.IsFloating {
			t.tiledSet(w.WorkspaceID)[w.ID] = struct{}{}
		}
	}
	log.Info(log.CatTracker, "seeded from snapshot",
		"windows", len(windows), "workspaces", len(t.tiled))
}

// HandleEvent applies one event and returns the corrective actions it
// implies, in order. Most events yield zero or one action; a workspace
// move is evaluated as a close in the old workspace followed by an open
// in the new one and can therefore yield two.
func (t *Tracker) HandleEvent(ev niri.Event) []Action {
	switch e := ev.(type) {
	case niri.WindowOpened:
		return t.handleOpened(e.Window)
	case niri.WindowClosed:
		return t.handleClosed(e.ID)
	case niri.WindowFloatingChanged:
		return t.handleFloatingChanged(e.ID, e.IsFloating)
	case niri.WindowMoved:
		return t.handleMoved(e.ID, e.WorkspaceID)
	case niri.WorkspaceActivated:
		// Informational only.
		return nil
	default:
		log.Warn(log.CatTracker, "ignoring unexpected event", "kind", ev.Kind())
		return nil
	}
}

func (t *Tracker) handleOpened(w niri.Window) []Action {
	if _, exists := t.windows[w.ID]; exists {
		// Duplicate notification: nothing changed, nothing to do.
		log.Debug(log.CatTracker, "duplicate open for tracked window", "window", w.ID)
		return nil
	}

	t.windows[w.ID] = &windowRecord{
		workspace: w.WorkspaceID,
		floating:  w.IsFloating,
		width:     w.Width,
	}
	if w.IsFloating {
		return nil
	}

	t.tiledSet(w.WorkspaceID)[w.ID] = struct{}{}
	return t.evaluate(w.WorkspaceID)
}

func (t *Tracker) handleClosed(id uint64) []Action {
	w, exists := t.windows[id]
	if !exists {
		log.Debug(log.CatTracker, "close for unknown window", "window", id)
		return nil
	}

	delete(t.windows, id)
	if w.floating {
		return nil
	}

	delete(t.tiledSet(w.workspace), id)
	return t.evaluate(w.workspace)
}

func (t *Tracker) handleFloatingChanged(id uint64, floating bool) []Action {
	w, exists := t.windows[id]
	if !exists {
		log.Debug(log.CatTracker, "floating change for unknown window", "window", id)
		return nil
	}
	if w.floating == floating {
		return nil
	}

	w.floating = floating
	if floating {
		// Leaving the tiled set: counts exactly as if closed.
		delete(t.tiledSet(w.workspace), id)
	} else {
		// Rejoining: counts exactly as if newly opened.
		t.tiledSet(w.workspace)[id] = struct{}{}
	}
	return t.evaluate(w.workspace)
}

func (t *Tracker) handleMoved(id uint64, newWorkspace uint64) []Action {
	w, exists := t.windows[id]
	if !exists {
		log.Debug(log.CatTracker, "move for unknown window", "window", id)
		return nil
	}
	if w.workspace == newWorkspace {
		return nil
	}

	oldWorkspace := w.workspace
	w.workspace = newWorkspace
	if w.floating {
		return nil
	}

	// Two independent transitions, old workspace first.
	delete(t.tiledSet(oldWorkspace), id)
	actions := t.evaluate(oldWorkspace)

	t.tiledSet(newWorkspace)[id] = struct{}{}
	return append(actions, t.evaluate(newWorkspace)...)
}

// evaluate applies the transition rules to a workspace after its tiled
// set changed.
func (t *Tracker) evaluate(workspace uint64) []Action {
	set := t.tiledSet(workspace)

	switch n := len(set); {
	case n == 0:
		// Nothing left to restore; drop the record silently.
		t.dropRestore(workspace)
		return nil

	case n == 1:
		if _, pending := t.restores[workspace]; pending {
			// The lone window is already the one we maximized.
			return nil
		}
		var id uint64
		for wid := range set {
			id = wid
		}
		w := t.windows[id]
		t.restores[workspace] = restoreRecord{windowID: id, width: w.width}
		w.maximized = true
		log.Info(log.CatTracker, "sole tiled window, maximizing",
			"workspace", workspace, "window", id, "restore_width", w.width)
		return []Action{Maximize{WindowID: id}}

	default:
		rec, pending := t.restores[workspace]
		if !pending {
			return nil
		}
		t.dropRestore(workspace)
		log.Info(log.CatTracker, "workspace no longer solitary, restoring",
			"workspace", workspace, "window", rec.windowID, "width", rec.width)
		return []Action{Restore{WindowID: rec.windowID, Width: rec.width}}
	}
}

func (t *Tracker) dropRestore(workspace uint64) {
	rec, ok := t.restores[workspace]
	if !ok {
		return
	}
	delete(t.restores, workspace)
	if w, exists := t.windows[rec.windowID]; exists {
		w.maximized = false
	}
}

func (t *Tracker) tiledSet(workspace uint64) map[uint64]struct{} {
	set, ok := t.tiled[workspace]
	if !ok {
		set = make(map[uint64]struct{})
		t.tiled[workspace] = set
	}
	return set
}

// TiledCount returns the number of tiled windows known in a workspace.
func (t *Tracker) TiledCount(workspace uint64) int {
	return len(t.tiled[workspace])
}

// PendingRestore reports the restore record for a workspace, if any.
func (t *Tracker) PendingRestore(workspace uint64) (windowID uint64, width float64, ok bool) {
	rec, ok := t.restores[workspace]
	return rec.windowID, rec.width, ok
}

// Workspaces returns the ids of all workspaces with bookkeeping state.
func (t *Tracker) Workspaces() []uint64 {
	ids := make([]uint64, 0, len(t.tiled))
	for id := range t.tiled {
		ids = append(ids, id)
	}
	return ids
}
