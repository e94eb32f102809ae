// Package smoketest implements the TCP echo service and a client for it.
package smoketest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
)

const (
	// DefaultAddr is where Client connects when no destination is given.
	DefaultAddr = "127.0.0.1:5001"
	// DefaultPayload is what the client sends when no payload is given.
	DefaultPayload = "Hello world!"
)

// HandleConnection reads until the peer shuts down its write side, then
// writes back everything it read.
func HandleConnection(conn net.Conn, log *slog.Logger) {
	buf, err := io.ReadAll(conn)
	if err != nil {
		log.Debug("failed to read from connection", "error", err)
		return
	}
	if _, err := conn.Write(buf); err != nil {
		log.Warn("failed to write to connection", "error", err)
		return
	}
	log.Debug("echoed", "bytes", len(buf))
}

type closeWriter interface {
	CloseWrite() error
}

// Client sends payload to addr, half-closes the connection and returns
// everything the server sends back before closing.
func Client(ctx context.Context, addr string, payload []byte) ([]byte, error) {
	if addr == "" {
		addr = DefaultAddr
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	if _, err := conn.Write(payload); err != nil {
		return nil, fmt.Errorf("failed to write payload: %w", err)
	}
	if cw, ok := conn.(closeWriter); ok {
		if err := cw.CloseWrite(); err != nil {
			return nil, fmt.Errorf("failed to shut down write side: %w", err)
		}
	}

	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	return reply, nil
}
