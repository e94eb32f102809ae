//go:build linux || darwin || freebsd || netbsd || openbsd

package server

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// control sets SO_REUSEADDR and TCP_NODELAY on the listening socket. Accepted
// sockets inherit TCP_NODELAY.
func control(_, _ string, c syscall.RawConn) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		if serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); serr != nil {
			return
		}
		serr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	})
	if err != nil {
		return err
	}
	if serr != nil {
		return fmt.Errorf("setsockopt: %w", serr)
	}
	return nil
}
