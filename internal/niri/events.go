package niri

import (
	"encoding/json"
	"fmt"
)

// Event is a decoded compositor notification. The concrete types below are
// the only implementations; the tracker switches over them.
type Event interface {
	// Kind returns the event name used in logs and trace attributes.
	Kind() string
}

// WindowOpened reports a newly mapped window.
type WindowOpened struct {
	Window Window
}

// WindowClosed reports that a window no longer exists.
type WindowClosed struct {
	ID uint64
}

// WindowFloatingChanged reports a window toggling between tiled and
// floating.
type WindowFloatingChanged struct {
	ID         uint64
	IsFloating bool
}

// WindowMoved reports a window changing workspaces.
type WindowMoved struct {
	ID          uint64
	WorkspaceID uint64
}

// WorkspaceActivated reports the focused workspace changing. Informational
// only; it never affects tiled-window bookkeeping.
type WorkspaceActivated struct {
	ID uint64
}

func (WindowOpened) Kind() string          { return "window_opened" }
func (WindowClosed) Kind() string          { return "window_closed" }
func (WindowFloatingChanged) Kind() string { return "window_floating_changed" }
func (WindowMoved) Kind() string           { return "window_moved" }
func (WorkspaceActivated) Kind() string    { return "workspace_activated" }

// Wire payloads. Events arrive externally tagged, one JSON object per
// line, e.g. {"WindowClosed":{"id":7}}.
type windowOpenedPayload struct {
	Window Window `json:"window"`
}

type windowClosedPayload struct {
	ID uint64 `json:"id"`
}

type windowFloatingChangedPayload struct {
	ID         uint64 `json:"id"`
	IsFloating bool   `json:"is_floating"`
}

type windowMovedPayload struct {
	ID          uint64 `json:"id"`
	WorkspaceID uint64 `json:"workspace_id"`
}

type workspaceActivatedPayload struct {
	ID uint64 `json:"id"`
}

// decodeEvent parses one event line. Unrecognized tags and malformed
// payloads return an error; the stream drops them with a diagnostic
// rather than surfacing them to the caller.
func decodeEvent(line []byte) (Event, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(line, &tagged); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("expected exactly one event tag, got %d", len(tagged))
	}

	for tag, body := range tagged {
		switch tag {
		case "WindowOpened":
			var p windowOpenedPayload
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", tag, err)
			}
			return WindowOpened{Window: p.Window}, nil
		case "WindowClosed":
			var p windowClosedPayload
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", tag, err)
			}
			return WindowClosed{ID: p.ID}, nil
		case "WindowFloatingChanged":
			var p windowFloatingChangedPayload
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", tag, err)
			}
			return WindowFloatingChanged{ID: p.ID, IsFloating: p.IsFloating}, nil
		case "WindowMoved":
			var p windowMovedPayload
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", tag, err)
			}
			return WindowMoved{ID: p.ID, WorkspaceID: p.WorkspaceID}, nil
		case "WorkspaceActivated":
			var p workspaceActivatedPayload
			if err := json.Unmarshal(body, &p); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", tag, err)
			}
			return WorkspaceActivated{ID: p.ID}, nil
		default:
			return nil, fmt.Errorf("unrecognized event tag %q", tag)
		}
	}

	return nil, fmt.Errorf("empty event object")
}
