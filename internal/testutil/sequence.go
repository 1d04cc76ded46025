package testutil

import "github.com/zjrosen/niritile/internal/niri"

// Sequence accumulates compositor events in order for replay against the
// tracker.
type Sequence struct {
	events []niri.Event
}

// NewSequence creates an empty event sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Open appends a window-opened event for the given window fixture.
func (s *Sequence) Open(w niri.Window) *Sequence {
	s.events = append(s.events, niri.WindowOpened{Window: w})
	return s
}

// OpenTiled appends a window-opened event for a tiled window.
func (s *Sequence) OpenTiled(id, workspace uint64, width float64) *Sequence {
	return s.Open(Window(id, workspace, WithWidth(width)))
}

// OpenFloating appends a window-opened event for a floating window.
func (s *Sequence) OpenFloating(id, workspace uint64) *Sequence {
	return s.Open(Window(id, workspace, Floating()))
}

// Close appends a window-closed event.
func (s *Sequence) Close(id uint64) *Sequence {
	s.events = append(s.events, niri.WindowClosed{ID: id})
	return s
}

// Float appends a floating-changed event making the window float.
func (s *Sequence) Float(id uint64) *Sequence {
	s.events = append(s.events, niri.WindowFloatingChanged{ID: id, IsFloating: true})
	return s
}

// Tile appends a floating-changed event making the window tiled.
func (s *Sequence) Tile(id uint64) *Sequence {
	s.events = append(s.events, niri.WindowFloatingChanged{ID: id, IsFloating: false})
	return s
}

// Move appends a window-moved event.
func (s *Sequence) Move(id, workspace uint64) *Sequence {
	s.events = append(s.events, niri.WindowMoved{ID: id, WorkspaceID: workspace})
	return s
}

// Activate appends a workspace-activated event.
func (s *Sequence) Activate(workspace uint64) *Sequence {
	s.events = append(s.events, niri.WorkspaceActivated{ID: workspace})
	return s
}

// Events returns the accumulated events in order.
func (s *Sequence) Events() []niri.Event {
	return s.events
}
