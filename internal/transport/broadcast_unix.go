//go:build unix

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// setBroadcast toggles SO_BROADCAST on sockets backed by a file descriptor.
// Virtual connections have none and are left untouched.
func setBroadcast(conn any, enabled bool) error {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return fmt.Errorf("raw socket: %w", err)
	}

	value := 0
	if enabled {
		value = 1
	}

	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, value)
	})
	if err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	if sockErr != nil {
		return fmt.Errorf("set SO_BROADCAST: %w", sockErr)
	}
	return nil
}
