//go:build !unix

package transport

// The Go runtime already enables SO_BROADCAST on UDP sockets here.
func setBroadcast(conn any, enabled bool) error {
	return nil
}
