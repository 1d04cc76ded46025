package tracing

// Span attribute keys used across the daemon.
const (
	// Event attributes
	AttrEventKind = "event.kind"
	AttrWindowID  = "window.id"
	AttrWorkspace = "workspace.id"

	// Action attributes
	AttrActionCount = "action.count"
	AttrActions     = "action.kinds"

	// Connection attributes
	AttrSessionID  = "session.id"
	AttrSocketPath = "socket.path"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanEventCycle = "event.cycle"
	SpanSnapshot   = "daemon.snapshot"
	SpanDispatch   = "dispatch.command"
)

// Event names for span events.
const (
	EventDecoded          = "event.decoded"
	EventActionEmitted    = "action.emitted"
	EventActionSuppressed = "action.suppressed"
	EventDispatchFailed   = "dispatch.failed"
)
