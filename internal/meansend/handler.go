package meansend

import (
	"errors"
	"io"
	"log/slog"
	"net"
)

// HandleConnection serves one means-to-an-end session. Messages with an
// unknown type byte are skipped; the session ends when the peer closes or a
// read or write fails.
func HandleConnection(conn net.Conn, log *slog.Logger) {
	var db DB
	defer func() {
		log.Debug("session ended", "prices", db.Len())
	}()

	var buf [MessageSize]byte
	for {
		if _, err := io.ReadFull(conn, buf[:]); err != nil {
			switch {
			case errors.Is(err, io.EOF):
			case errors.Is(err, io.ErrUnexpectedEOF):
				log.Debug("peer closed mid-message")
			default:
				log.Debug("failed to read from connection", "error", err)
			}
			return
		}

		msg, err := Decode(buf)
		if err != nil {
			log.Debug("ignoring message", "error", err)
			continue
		}

		switch m := msg.(type) {
		case Insert:
			db.Insert(m.Timestamp, m.Price)
		case Query:
			mean := db.Query(m.MinTime, m.MaxTime)
			resp := EncodeMean(mean)
			if _, err := conn.Write(resp[:]); err != nil {
				log.Warn("failed to write to connection", "error", err)
				return
			}
		}
	}
}
