package tracker

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/niritile/internal/niri"
	"github.com/zjrosen/niritile/internal/testutil"
)

// refWindow mirrors the compositor's view of a window for the reference
// model driving the property test.
type refWindow struct {
	workspace uint64
	floating  bool
	width     float64
}

// TestProperty_RestoreRecordInvariant drives the tracker with random but
// causally valid event sequences and checks, after every event, that a
// restore record exists for a workspace iff that workspace holds exactly
// one tiled window and that window is the one the tracker maximized —
// with the width recorded at maximize time.
func TestProperty_RestoreRecordInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		trk := New()
		ref := make(map[uint64]*refWindow)
		// recordedWidth[workspace] is the width the last Maximize for
		// that workspace captured, per observed actions.
		recordedWidth := make(map[uint64]float64)
		recordedWindow := make(map[uint64]uint64)

		nextID := uint64(1)
		steps := rapid.IntRange(1, 80).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			ev := genEvent(rt, ref, &nextID)
			actions := trk.HandleEvent(ev)
			applyToRef(ref, ev)

			for _, action := range actions {
				switch a := action.(type) {
				case Maximize:
					w, ok := ref[a.WindowID]
					if !ok {
						rt.Fatalf("maximize for window %d the compositor does not know", a.WindowID)
					}
					recordedWindow[w.workspace] = a.WindowID
					recordedWidth[w.workspace] = w.width
				case Restore:
					w, ok := ref[a.WindowID]
					if !ok {
						rt.Fatalf("restore for window %d the compositor does not know", a.WindowID)
					}
					if recordedWindow[w.workspace] != a.WindowID {
						rt.Fatalf("restore for window %d but %d holds the record", a.WindowID, recordedWindow[w.workspace])
					}
					if a.Width != recordedWidth[w.workspace] {
						rt.Fatalf("restore width %v differs from recorded %v", a.Width, recordedWidth[w.workspace])
					}
				}
			}

			checkInvariant(rt, trk, ref)
		}
	})
}

// checkInvariant verifies the core state invariant on every workspace the
// tracker knows about.
func checkInvariant(rt *rapid.T, trk *Tracker, ref map[uint64]*refWindow) {
	for _, ws := range trk.Workspaces() {
		tiled := 0
		for _, w := range ref {
			if w.workspace == ws && !w.floating {
				tiled++
			}
		}
		if trk.TiledCount(ws) != tiled {
			rt.Fatalf("workspace %d: tracker count %d, reference count %d", ws, trk.TiledCount(ws), tiled)
		}

		id, _, ok := trk.PendingRestore(ws)
		if ok {
			if tiled != 1 {
				rt.Fatalf("workspace %d: restore record with %d tiled windows", ws, tiled)
			}
			w, exists := ref[id]
			if !exists || w.workspace != ws || w.floating {
				rt.Fatalf("workspace %d: restore record names window %d which is not its sole tiled window", ws, id)
			}
		}
	}
}

// genEvent draws one event. Most are causally valid against the reference
// model; a small fraction reference unknown windows to exercise the
// no-op-with-diagnostic path.
func genEvent(rt *rapid.T, ref map[uint64]*refWindow, nextID *uint64) niri.Event {
	ids := make([]uint64, 0, len(ref))
	for id := range ref {
		ids = append(ids, id)
	}

	kind := rapid.IntRange(0, 6).Draw(rt, "kind")
	workspace := uint64(rapid.IntRange(1, 3).Draw(rt, "workspace"))

	// With no windows yet, or occasionally anyway, open a new one.
	if len(ids) == 0 || kind == 0 {
		id := *nextID
		*nextID++
		width := float64(rapid.IntRange(100, 1920).Draw(rt, "width"))
		opts := []testutil.WindowOption{testutil.WithWidth(width)}
		if rapid.Bool().Draw(rt, "floating") {
			opts = append(opts, testutil.Floating())
		}
		return niri.WindowOpened{Window: testutil.Window(id, workspace, opts...)}
	}

	pick := func() uint64 {
		return ids[rapid.IntRange(0, len(ids)-1).Draw(rt, "pick")]
	}

	switch kind {
	case 1:
		return niri.WindowClosed{ID: pick()}
	case 2:
		return niri.WindowFloatingChanged{ID: pick(), IsFloating: rapid.Bool().Draw(rt, "toFloating")}
	case 3:
		return niri.WindowMoved{ID: pick(), WorkspaceID: workspace}
	case 4:
		return niri.WorkspaceActivated{ID: workspace}
	default:
		// Reference an id the compositor never issued.
		return niri.WindowClosed{ID: *nextID + 1000}
	}
}

// applyToRef advances the reference model the way the compositor would.
func applyToRef(ref map[uint64]*refWindow, ev niri.Event) {
	switch e := ev.(type) {
	case niri.WindowOpened:
		if _, exists := ref[e.Window.ID]; exists {
			return
		}
		ref[e.Window.ID] = &refWindow{
			workspace: e.Window.WorkspaceID,
			floating:  e.Window.IsFloating,
			width:     e.Window.Width,
		}
	case niri.WindowClosed:
		delete(ref, e.ID)
	case niri.WindowFloatingChanged:
		if w, exists := ref[e.ID]; exists {
			w.floating = e.IsFloating
		}
	case niri.WindowMoved:
		if w, exists := ref[e.ID]; exists {
			w.workspace = e.WorkspaceID
		}
	}
}

// TestProperty_DuplicateReplayEmitsNothing replays each event right after
// itself; the duplicate must emit no actions when it causes no count
// change.
func TestProperty_DuplicateReplayEmitsNothing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		trk := New()
		ref := make(map[uint64]*refWindow)
		nextID := uint64(1)
		steps := rapid.IntRange(1, 40).Draw(rt, "steps")

		for i := 0; i < steps; i++ {
			ev := genEvent(rt, ref, &nextID)
			trk.HandleEvent(ev)
			applyToRef(ref, ev)

			// Opens, closes, floating toggles, and moves all change state
			// on first application; replaying the identical event must
			// change nothing and emit nothing.
			duplicates := trk.HandleEvent(ev)
			if len(duplicates) != 0 {
				rt.Fatalf("duplicate %T emitted %v", ev, duplicates)
			}
		}
	})
}

// A focused sanity check that the rapid generators produce transitions
// that actually exercise the maximize path.
func TestGenEvent_ProducesActions(t *testing.T) {
	trk := New()
	actions := drain(trk, testutil.NewSequence().OpenTiled(1, 1, 640).Events())
	require.NotEmpty(t, actions)
}
