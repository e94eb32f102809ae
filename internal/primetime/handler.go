package primetime

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
)

// malformedResponse is sent once before closing on a bad request.
var malformedResponse = []byte("ERROR")

// HandleConnection serves one prime time session. Every well-formed request
// gets a response line; the first malformed one gets ERROR and ends the
// session.
func HandleConnection(conn net.Conn, log *slog.Logger) {
	r := bufio.NewReader(conn)
	enc := json.NewEncoder(conn)

	for {
		line, err := r.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			log.Debug("failed to read from connection", "error", err)
			return
		}
		if len(line) == 0 {
			return
		}

		req, perr := ParseRequest(line)
		if perr != nil {
			log.Debug("malformed request", "error", perr)
			if _, werr := conn.Write(malformedResponse); werr != nil {
				log.Warn("failed to write to connection", "error", werr)
			}
			return
		}

		resp := Response{Method: MethodIsPrime, Prime: req.IsPrime()}
		if werr := enc.Encode(&resp); werr != nil {
			log.Warn("failed to write to connection", "error", werr)
			return
		}
		log.Debug("answered request", "number", req.Number.String(), "prime", resp.Prime)

		if err != nil {
			// the final request arrived without a newline
			return
		}
	}
}
