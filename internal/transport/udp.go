package transport

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pion/logging"
	pionnet "github.com/pion/transport/v3"
	"github.com/pion/transport/v3/stdnet"

	"github.com/muurk/greelink/internal/protocol"
)

// MaxDatagramSize is the largest datagram the transport reads or writes.
const MaxDatagramSize = 65507

// Datagram is one received packet and the address it came from.
type Datagram struct {
	Data []byte
	Addr *net.UDPAddr
}

// Handler is called from the read loop for every received datagram.
type Handler func(d *Datagram)

// UDPConfig configures the UDP transport.
type UDPConfig struct {
	// Net is the network to bind on. If nil, the host network (stdnet) is used.
	Net pionnet.Net

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// UDP is a datagram transport bound to one local port.
type UDP struct {
	nw      pionnet.Net
	conn    pionnet.UDPConn
	handler Handler
	closeCh chan struct{}
	wg      sync.WaitGroup
	log     logging.LeveledLogger

	mu     sync.RWMutex
	closed bool
}

// NewUDP creates an unbound UDP transport. Call Listen to bind it.
func NewUDP(config UDPConfig) (*UDP, error) {
	u := &UDP{
		nw:      config.Net,
		closeCh: make(chan struct{}),
	}

	if config.LoggerFactory != nil {
		u.log = config.LoggerFactory.NewLogger("transport-udp")
	}

	if u.nw == nil {
		nw, err := stdnet.NewNet()
		if err != nil {
			return nil, err
		}
		u.nw = nw
	}

	return u, nil
}

// Listen binds localPort (0 picks an ephemeral port) on all IPv4 addresses and
// starts the read loop. A bind failure is returned as a protocol TransportBind error.
func (u *UDP) Listen(localPort int, handler Handler) error {
	if handler == nil {
		return ErrNoHandler
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ErrClosed
	}
	if u.conn != nil {
		return ErrAlreadyListening
	}

	conn, err := u.nw.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: localPort})
	if err != nil {
		return protocol.NewTransportBindError(localPort, err)
	}
	u.conn = conn
	u.handler = handler

	if u.log != nil {
		u.log.Infof("listening on %s", conn.LocalAddr())
	}

	u.wg.Add(1)
	go u.readLoop(conn)

	return nil
}

// SetBroadcast enables or disables sending to broadcast addresses.
func (u *UDP) SetBroadcast(enabled bool) error {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if u.closed {
		return ErrClosed
	}
	if u.conn == nil {
		return ErrNotListening
	}

	return setBroadcast(u.conn, enabled)
}

// Send writes data to host:port. host may be an IP literal or a resolvable name.
func (u *UDP) Send(data []byte, host string, port int) error {
	u.mu.RLock()
	conn := u.conn
	closed := u.closed
	u.mu.RUnlock()

	if closed {
		return ErrClosed
	}
	if conn == nil {
		return ErrNotListening
	}
	if len(data) > MaxDatagramSize {
		return ErrMessageTooLarge
	}

	addr, err := u.nw.ResolveUDPAddr("udp4", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}

	if u.log != nil {
		u.log.Debugf("sending %d bytes to %v", len(data), addr)
	}

	if _, err := conn.WriteTo(data, addr); err != nil {
		if u.log != nil {
			u.log.Warnf("send failed: %v", err)
		}
		return err
	}

	return nil
}

// LocalAddr returns the bound address, or nil before Listen.
func (u *UDP) LocalAddr() net.Addr {
	u.mu.RLock()
	defer u.mu.RUnlock()

	if u.conn == nil {
		return nil
	}
	return u.conn.LocalAddr()
}

// Close stops the read loop and releases the socket.
func (u *UDP) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return ErrClosed
	}
	u.closed = true
	conn := u.conn
	u.mu.Unlock()

	close(u.closeCh)

	if conn != nil {
		if u.log != nil {
			u.log.Info("stopping UDP transport")
		}
		// Set a short deadline to unblock any pending reads
		_ = conn.SetReadDeadline(time.Now())
		_ = conn.Close()
	}
	u.wg.Wait()

	return nil
}

func (u *UDP) readLoop(conn pionnet.UDPConn) {
	defer u.wg.Done()

	buf := make([]byte, MaxDatagramSize)

	for {
		select {
		case <-u.closeCh:
			return
		default:
		}

		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			select {
			case <-u.closeCh:
				return
			default:
				if u.log != nil {
					u.log.Warnf("UDP read error: %v", err)
				}
				continue
			}
		}

		if n == 0 {
			continue
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		if u.log != nil {
			u.log.Debugf("received %d bytes from %v", n, addr)
		}

		u.handler(&Datagram{Data: data, Addr: toUDPAddr(addr)})
	}
}

func toUDPAddr(addr net.Addr) *net.UDPAddr {
	if a, ok := addr.(*net.UDPAddr); ok {
		return a
	}
	if addr == nil {
		return nil
	}
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil
	}
	p, _ := strconv.Atoi(port)
	return &net.UDPAddr{IP: net.ParseIP(host), Port: p}
}
