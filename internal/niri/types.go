// Package niri implements the IPC boundary to the niri compositor:
// snapshot and action requests over a Unix socket, and the decoded
// event stream the tracker consumes.
//
// The wire protocol is newline-delimited JSON: the client writes one
// request per line and reads one reply per line. A connection that has
// issued the EventStream request switches to receiving one event per
// line until the compositor closes it.
package niri

import "encoding/json"

// Window is the compositor's view of a window, as carried by snapshot
// replies and window events.
type Window struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	AppID       string  `json:"app_id"`
	WorkspaceID uint64  `json:"workspace_id"`
	IsFloating  bool    `json:"is_floating"`
	// Width is the window's current logical width within its workspace
	// layout. For a tiled window this is the tile width the layout
	// algorithm assigned it.
	Width float64 `json:"width"`
}

// Workspace identifies a workspace and whether it is currently active on
// its output.
type Workspace struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// reply is the envelope every request is answered with: exactly one of
// Ok or Err is set.
type reply struct {
	Ok  json.RawMessage `json:"Ok,omitempty"`
	Err *string         `json:"Err,omitempty"`
}

// okPayload covers the Ok variants the client cares about. "Handled" is
// carried as a bare string and left unparsed.
type okPayload struct {
	Windows    []Window    `json:"Windows,omitempty"`
	Workspaces []Workspace `json:"Workspaces,omitempty"`
}

// actionRequest is the externally tagged request body for compositor
// actions.
type actionRequest struct {
	Action map[string]any `json:"Action"`
}
