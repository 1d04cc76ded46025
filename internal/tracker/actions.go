package tracker

import "fmt"

// Action is a corrective command the tracker wants issued to the
// compositor. Maximize and Restore are the only implementations.
type Action interface {
	// Signature uniquely identifies the command for cooldown
	// suppression and logging.
	Signature() string
	// Window is the id of the window the command targets.
	Window() uint64
}

// Maximize expands the window to fill its workspace.
type Maximize struct {
	WindowID uint64
}

// Restore sets the window back to the width it had before the daemon
// maximized it.
type Restore struct {
	WindowID uint64
	Width    float64
}

func (a Maximize) Signature() string {
	return fmt.Sprintf("maximize:%d", a.WindowID)
}

func (a Maximize) Window() uint64 {
	return a.WindowID
}

func (a Restore) Signature() string {
	return fmt.Sprintf("restore:%d:%.2f", a.WindowID, a.Width)
}

func (a Restore) Window() uint64 {
	return a.WindowID
}
