// Package transport provides the datagram transport a session talks to the
// appliance over.
//
// UDP binds a local port on a pion transport.Net, delivers every received datagram
// to a handler from its own read loop, and sends datagrams to host:port targets.
// Production code uses the real network (stdnet); tests swap in a pion vnet so that
// a simulated appliance and the client can talk without touching the host stack.
//
//	udp, err := transport.NewUDP(transport.UDPConfig{})
//	if err != nil {
//	    return err
//	}
//	defer udp.Close()
//
//	err = udp.Listen(0, func(d *transport.Datagram) {
//	    events <- d
//	})
//
// Broadcast is off by default. SetBroadcast toggles SO_BROADCAST on platforms and
// connections that expose a raw socket; elsewhere it is a no-op.
package transport
