package meansend_test

import (
	"encoding/binary"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/portbound/protohackers/internal/meansend"
	"github.com/portbound/protohackers/internal/server"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type session struct {
	t    *testing.T
	conn net.Conn
}

func (s *session) send(m meansend.Message) {
	s.t.Helper()
	b := meansend.Encode(m)
	s.write(b[:])
}

func (s *session) write(b []byte) {
	s.t.Helper()
	s.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := s.conn.Write(b); err != nil {
		s.t.Fatalf("failed to write: %v", err)
	}
}

func (s *session) query(min, max int32) int32 {
	s.t.Helper()
	s.send(meansend.Query{MinTime: min, MaxTime: max})
	var buf [meansend.ResponseSize]byte
	s.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(s.conn, buf[:]); err != nil {
		s.t.Fatalf("failed to read query response: %v", err)
	}
	return int32(binary.BigEndian.Uint32(buf[:]))
}

func pipeSession(t *testing.T) (*session, <-chan struct{}) {
	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer server.Close()
		meansend.HandleConnection(server, discard)
	}()
	t.Cleanup(func() { client.Close() })
	return &session{t: t, conn: client}, done
}

func waitClosed(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for HandleConnection to return")
	}
}

func TestHandleConnection(t *testing.T) {
	s, done := pipeSession(t)

	s.send(meansend.Insert{Timestamp: 12345, Price: 101})
	s.send(meansend.Insert{Timestamp: 12346, Price: 102})
	s.send(meansend.Insert{Timestamp: 12347, Price: 100})
	s.send(meansend.Insert{Timestamp: 40960, Price: 5})

	if got := s.query(12288, 16384); got != 101 {
		t.Errorf("want: 101, got: %d", got)
	}
	if got := s.query(16384, 12288); got != 0 {
		t.Errorf("want: 0 for inverted range, got: %d", got)
	}

	s.conn.Close()
	waitClosed(t, done)
}

func TestHandleConnection_SkipsUnknownType(t *testing.T) {
	s, done := pipeSession(t)

	s.send(meansend.Insert{Timestamp: 1, Price: 10})
	s.write([]byte{'X', 0, 0, 0, 1, 0, 0, 0, 99})
	s.send(meansend.Insert{Timestamp: 2, Price: 20})

	if got := s.query(0, 10); got != 15 {
		t.Errorf("want: 15, got: %d", got)
	}

	s.conn.Close()
	waitClosed(t, done)
}

func TestHandleConnection_PartialMessage(t *testing.T) {
	s, done := pipeSession(t)

	s.send(meansend.Insert{Timestamp: 1, Price: 10})
	s.write([]byte{'Q', 0, 0})
	s.conn.Close()

	waitClosed(t, done)
}

func TestServer_IndependentSessions(t *testing.T) {
	srv := server.New("127.0.0.1:0", 5, meansend.HandleConnection, server.WithLogger(discard))
	if err := srv.Listen(); err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	go srv.Serve()
	defer srv.Close()

	dial := func() *session {
		conn, err := net.Dial("tcp", srv.Addr().String())
		if err != nil {
			t.Fatalf("failed to connect: %v", err)
		}
		t.Cleanup(func() { conn.Close() })
		return &session{t: t, conn: conn}
	}

	s1, s2, s3 := dial(), dial(), dial()
	for _, p := range []struct {
		s          *session
		base, step int32
	}{{s1, 0, 100}, {s2, 1000, 200}, {s3, 2000, 300}} {
		p.s.send(meansend.Insert{Timestamp: p.base + 300, Price: p.step})
		p.s.send(meansend.Insert{Timestamp: p.base + 400, Price: p.step + 100})
		p.s.send(meansend.Insert{Timestamp: p.base + 650, Price: p.step + 150})
	}

	checks := []struct {
		s        *session
		min, max int32
		want     int32
	}{
		{s1, 200, 700, 183},
		{s1, 200, 500, 150},
		{s2, 1200, 1700, 283},
		{s2, 1200, 1500, 250},
		{s3, 2200, 2700, 383},
		{s3, 2200, 2500, 350},
		// each connection sees only its own prices
		{s1, 0, 3000, 183},
		{s2, 0, 3000, 283},
	}
	for _, c := range checks {
		if got := c.s.query(c.min, c.max); got != c.want {
			t.Errorf("Query(%d, %d): want: %d, got: %d", c.min, c.max, c.want, got)
		}
	}

	s1.send(meansend.Insert{Timestamp: 300, Price: 300})
	if got := s1.query(200, 700); got != 250 {
		t.Errorf("want: 250 after overwrite, got: %d", got)
	}
	if got := s2.query(1200, 1700); got != 283 {
		t.Errorf("want: other session unchanged at 283, got: %d", got)
	}
}
