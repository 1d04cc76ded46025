package niri

import (
	"bufio"
	"errors"
	"net"
	"strings"

	"github.com/zjrosen/niritile/internal/log"
)

// ErrConnectionLost is returned by EventStream.Next when the compositor
// connection ends, for any reason. The stream is finished; events missed
// while disconnected cannot be replayed, so the owner must resubscribe
// and resynchronize from a fresh snapshot.
var ErrConnectionLost = errors.New("niri: connection lost")

// EventStream yields decoded events in the order the compositor emitted
// them. It performs no reordering or deduplication; that is the tracker's
// job. Undecodable lines are dropped with a diagnostic.
type EventStream struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Next blocks until the next event is available or the connection ends.
// On connection end it returns ErrConnectionLost; all subsequent calls do
// the same.
func (s *EventStream) Next() (Event, error) {
	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			return nil, ErrConnectionLost
		}

		trimmed := strings.TrimSpace(string(line))
		if trimmed == "" {
			continue
		}

		ev, err := decodeEvent([]byte(trimmed))
		if err != nil {
			// Never fatal: a malformed notification must not take the
			// daemon down.
			log.Warn(log.CatStream, "dropping undecodable event", "reason", err.Error())
			continue
		}
		return ev, nil
	}
}

// Close terminates the stream's connection. A blocked Next unblocks and
// returns ErrConnectionLost.
func (s *EventStream) Close() error {
	return s.conn.Close()
}
