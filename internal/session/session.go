package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"go.uber.org/zap"

	"github.com/muurk/greelink/internal/catalog"
	"github.com/muurk/greelink/internal/logging"
	"github.com/muurk/greelink/internal/metrics"
	"github.com/muurk/greelink/internal/protocol"
	"github.com/muurk/greelink/internal/transport"
)

// Defaults applied to zero Config fields.
const (
	DefaultPort           = protocol.DefaultPort
	DefaultPollInterval   = 3 * time.Second
	DefaultReconnectDelay = 60 * time.Second
)

const (
	inboundQueueSize = 64
	commandQueueSize = 32
)

var (
	// ErrNotBound is returned by SendCommand before the bind handshake completed.
	ErrNotBound = errors.New("session: not bound")

	// ErrLengthMismatch is returned by SendCommand when codes and values differ in length.
	ErrLengthMismatch = protocol.ErrLengthMismatch

	// ErrQueueFull is returned by SendCommand when the event loop is not draining commands.
	ErrQueueFull = errors.New("session: command queue full")

	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("session: already running")
)

// State is the handshake progress of a Session.
type State int

const (
	Disconnected State = iota
	AwaitingHandshake
	AwaitingBindConfirmation
	Bound
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case AwaitingHandshake:
		return "awaiting-handshake"
	case AwaitingBindConfirmation:
		return "awaiting-bind-confirmation"
	case Bound:
		return "bound"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Transport is the datagram transport a Session owns.
type Transport interface {
	Listen(localPort int, handler transport.Handler) error
	SetBroadcast(enabled bool) error
	Send(data []byte, host string, port int) error
}

// Config configures a Session.
type Config struct {
	// Host is the appliance address or a broadcast address for discovery.
	Host string
	// Port is the appliance port. Default 7000.
	Port int
	// LocalPort is the local bind port; 0 picks an ephemeral port.
	LocalPort int
	// PollInterval is the status request period once bound. Default 3s.
	PollInterval time.Duration
	// ReconnectDelay is the wait between failed connect attempts. Default 60s.
	ReconnectDelay time.Duration

	// OnStatus is called with all known properties after every status report.
	OnStatus func(Properties)
	// OnUpdate is called with all known properties after every command result.
	OnUpdate func(Properties)
	// OnConnected is called once, when the session becomes bound.
	OnConnected func(DeviceInfo)
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = DefaultReconnectDelay
	}
	return c
}

type command struct {
	codes  []string
	values []int
}

// Session is the client side of one appliance connection.
type Session struct {
	cfg     Config
	tr      Transport
	codec   *protocol.Codec
	metrics *metrics.SessionMetrics

	inbound  chan *transport.Datagram
	commands chan command
	running  atomic.Bool

	// startPolling is signalled from the bindok handler; the loop owns the ticker.
	startPolling bool
	listening    bool

	sent     atomic.Uint64
	received atomic.Uint64

	mu      sync.RWMutex
	state   State
	version protocol.Version
	dev     device
}

// New creates a Session in the Disconnected state. Nothing is sent until Run.
func New(cfg Config, tr Transport, opts ...Option) *Session {
	s := &Session{
		cfg:      cfg.withDefaults(),
		tr:       tr,
		codec:    protocol.NewCodec(),
		inbound:  make(chan *transport.Datagram, inboundQueueSize),
		commands: make(chan command, commandQueueSize),
		state:    Disconnected,
		version:  protocol.V1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run connects and then serves the session until ctx is done.
//
// The connect step is retried every ReconnectDelay. If ctx ends before it succeeds,
// Run returns the last connect error. Otherwise Run returns nil when ctx ends.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(s.cfg.ReconnectDelay), ctx)
	err := backoff.RetryNotify(s.connect, b, func(err error, wait time.Duration) {
		logging.Warn("Connect failed, retrying",
			zap.Error(err),
			zap.Duration("retry_in", wait),
		)
	})
	if err != nil {
		return err
	}

	s.loop(ctx)
	return nil
}

// connect enters AwaitingHandshake: bind once, enable broadcast, send the scan.
func (s *Session) connect() error {
	if !s.listening {
		if err := s.tr.Listen(s.cfg.LocalPort, s.enqueue); err != nil {
			return err
		}
		s.listening = true
	}

	if err := s.tr.SetBroadcast(true); err != nil {
		return fmt.Errorf("failed to enable broadcast: %w", err)
	}

	s.setState(AwaitingHandshake)

	scan := protocol.EncodeScan()
	if err := s.tr.Send(scan, s.cfg.Host, s.cfg.Port); err != nil {
		return fmt.Errorf("failed to send scan to %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	s.countSent(s.cfg.Host, s.cfg.Port, scan)

	logging.Info("Scan sent",
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
	)
	return nil
}

// enqueue is the transport handler. It never blocks the read loop.
func (s *Session) enqueue(d *transport.Datagram) {
	select {
	case s.inbound <- d:
	default:
		logging.Warn("Inbound queue full, dropping datagram", zap.Stringer("addr", d.Addr))
	}
}

func (s *Session) loop(ctx context.Context) {
	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case d := <-s.inbound:
			if err := s.handleDatagram(d); err != nil {
				s.logDrop(d, err)
			}

		case <-tick:
			s.requestStatus()

		case cmd := <-s.commands:
			s.sendCommand(cmd)
		}

		if s.startPolling && ticker == nil {
			s.startPolling = false
			s.requestStatus()
			ticker = time.NewTicker(s.cfg.PollInterval)
			tick = ticker.C
		}
	}
}

func (s *Session) logDrop(d *transport.Datagram, err error) {
	switch {
	case protocol.IsDecodeError(err):
		s.metrics.IncDecodeError()
	case protocol.IsUnexpectedPayload(err):
		var perr *protocol.Error
		if errors.As(err, &perr) {
			s.metrics.IncUnexpected(string(perr.Kind))
		}
	}
	logging.Warn("Dropping datagram",
		zap.Stringer("addr", d.Addr),
		zap.Error(err),
	)
}

// send writes an encoded packet. Transport errors are logged and absorbed.
func (s *Session) send(data []byte, host string, port int) {
	if err := s.tr.Send(data, host, port); err != nil {
		logging.Warn("Send failed",
			zap.String("host", host),
			zap.Int("port", port),
			zap.Error(err),
		)
		return
	}
	s.countSent(host, port, data)
}

func (s *Session) countSent(host string, port int, data []byte) {
	s.sent.Add(1)
	s.metrics.IncSent()
	logging.LogPacket("sent", fmt.Sprintf("%s:%d", host, port), data)
}

// requestStatus polls every catalog code.
func (s *Session) requestStatus() {
	s.mu.RLock()
	id, key, host, port, v := s.dev.id, s.dev.key, s.dev.host, s.dev.port, s.version
	s.mu.RUnlock()

	data, err := s.codec.Encode(protocol.NewStatusRequest(id, catalog.Codes()), id, []byte(key), protocol.SeqSteady, v)
	if err != nil {
		logging.Error("Failed to encode status request", zap.Error(err))
		return
	}
	logging.Debug("Requesting status", zap.String("device_id", id))
	s.send(data, host, port)
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != st {
		logging.Debug("Session state", zap.Stringer("from", s.state), zap.Stringer("to", st))
	}
	s.state = st
}

// State returns the current handshake state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Version returns the negotiated encryption version.
func (s *Session) Version() protocol.Version {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Device returns a snapshot of the appliance state.
func (s *Session) Device() Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Device{
		DeviceInfo: s.dev.info(s.version),
		Bound:      s.dev.bound,
		Key:        s.dev.key,
		Properties: s.dev.props.Clone(),
	}
}

// PacketsSent is the number of datagrams handed to the transport.
func (s *Session) PacketsSent() uint64 { return s.sent.Load() }

// PacketsReceived is the number of datagrams received, including dropped ones.
func (s *Session) PacketsReceived() uint64 { return s.received.Load() }
