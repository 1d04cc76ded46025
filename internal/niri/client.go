package niri

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"

	"github.com/zjrosen/niritile/internal/log"
)

// SocketEnv is the environment variable niri exports with its IPC socket
// path.
const SocketEnv = "NIRI_SOCKET"

// ResolveSocketPath picks the socket path: an explicit override wins,
// then the NIRI_SOCKET environment variable.
func ResolveSocketPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if path := os.Getenv(SocketEnv); path != "" {
		return path, nil
	}
	return "", fmt.Errorf("no socket path configured and %s is not set", SocketEnv)
}

// Client issues requests to the compositor. Each request dials its own
// connection; the protocol is one request line answered by one reply
// line. The client is stateless and safe for sequential reuse across
// reconnects.
type Client struct {
	socketPath string
	dialer     net.Dialer
}

// NewClient creates a client for the given socket path.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// SocketPath returns the path the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	conn, err := c.dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", c.socketPath, err)
	}
	return conn, nil
}

// roundTrip sends one request and decodes the Ok payload of the reply.
func (c *Client) roundTrip(ctx context.Context, request any) (json.RawMessage, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := writeRequest(conn, request); err != nil {
		return nil, err
	}

	rep, err := readReply(bufio.NewReader(conn))
	if err != nil {
		return nil, err
	}
	if rep.Err != nil {
		return nil, fmt.Errorf("compositor rejected request: %s", *rep.Err)
	}
	return rep.Ok, nil
}

func writeRequest(conn net.Conn, request any) error {
	data, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("writing request: %w", err)
	}
	return nil
}

func readReply(r *bufio.Reader) (reply, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return reply{}, fmt.Errorf("reading reply: %w", err)
	}
	var rep reply
	if err := json.Unmarshal(line, &rep); err != nil {
		return reply{}, fmt.Errorf("decoding reply: %w", err)
	}
	return rep, nil
}

// Windows returns the compositor's current window inventory. This is the
// snapshot query the daemon reseeds the tracker from after a reconnect.
func (c *Client) Windows(ctx context.Context) ([]Window, error) {
	raw, err := c.roundTrip(ctx, "Windows")
	if err != nil {
		return nil, err
	}
	var payload okPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding windows: %w", err)
	}
	return payload.Windows, nil
}

// Workspaces returns the compositor's current workspaces.
func (c *Client) Workspaces(ctx context.Context) ([]Workspace, error) {
	raw, err := c.roundTrip(ctx, "Workspaces")
	if err != nil {
		return nil, err
	}
	var payload okPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding workspaces: %w", err)
	}
	return payload.Workspaces, nil
}

// MaximizeWindow asks the compositor to expand the window to fill its
// workspace.
func (c *Client) MaximizeWindow(ctx context.Context, id uint64) error {
	req := actionRequest{Action: map[string]any{
		"MaximizeWindow": map[string]any{"id": id},
	}}
	_, err := c.roundTrip(ctx, req)
	return err
}

// SetWindowWidth asks the compositor to set the window's logical width.
func (c *Client) SetWindowWidth(ctx context.Context, id uint64, width float64) error {
	req := actionRequest{Action: map[string]any{
		"SetWindowWidth": map[string]any{"id": id, "width": width},
	}}
	_, err := c.roundTrip(ctx, req)
	return err
}

// Subscribe opens the event stream. The returned stream owns a dedicated
// connection and is not restartable: once it reports ErrConnectionLost the
// caller must subscribe again on a fresh stream.
func (c *Client) Subscribe(ctx context.Context) (*EventStream, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}

	reader := bufio.NewReader(conn)

	if err := writeRequest(conn, "EventStream"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	// The subscription is acknowledged with a normal reply before events
	// start flowing.
	rep, err := readReply(reader)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if rep.Err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("compositor rejected event stream: %s", *rep.Err)
	}

	log.Debug(log.CatIPC, "event stream established", "socket", c.socketPath)

	return &EventStream{conn: conn, reader: reader}, nil
}
