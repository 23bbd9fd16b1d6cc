package session

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muurk/greelink/internal/protocol"
	"github.com/muurk/greelink/internal/transport"
)

const (
	deviceHost = "10.0.0.5"
	deviceKey  = "Zx8Yc7Wb6Va5Ut4S"
)

var deviceAddr = &net.UDPAddr{IP: net.ParseIP(deviceHost), Port: protocol.DefaultPort}

type sentPacket struct {
	data []byte
	host string
	port int
}

// fakeTransport records sends and lets tests inject listen failures.
type fakeTransport struct {
	mu         sync.Mutex
	listenErrs []error
	listens    int
	handler    transport.Handler
	broadcast  bool
	sendErr    error
	sent       []sentPacket
	sentCh     chan sentPacket
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sentCh: make(chan sentPacket, 64)}
}

func (f *fakeTransport) Listen(localPort int, handler transport.Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listens++
	if len(f.listenErrs) > 0 {
		err := f.listenErrs[0]
		f.listenErrs = f.listenErrs[1:]
		return err
	}
	f.handler = handler
	return nil
}

func (f *fakeTransport) SetBroadcast(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = enabled
	return nil
}

func (f *fakeTransport) Send(data []byte, host string, port int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	p := sentPacket{data: data, host: host, port: port}
	f.sent = append(f.sent, p)
	select {
	case f.sentCh <- p:
	default:
	}
	return nil
}

func (f *fakeTransport) packets() []sentPacket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentPacket(nil), f.sent...)
}

func (f *fakeTransport) last(t *testing.T) sentPacket {
	t.Helper()
	p := f.packets()
	require.NotEmpty(t, p, "nothing was sent")
	return p[len(p)-1]
}

// datagram seals payload the way an appliance would and wraps it as received from deviceAddr.
func datagram(t *testing.T, payload any, cid string, key string, seq protocol.Sequence, v protocol.Version) *transport.Datagram {
	t.Helper()
	env := protocol.Envelope{
		TCID: "app",
		CID:  cid,
		I:    int(seq),
		T:    protocol.EnvelopeType,
	}
	data, err := protocol.NewCodec().Wrap(env, payload, []byte(key), v)
	require.NoError(t, err)
	return &transport.Datagram{Data: data, Addr: deviceAddr}
}

// openSent decrypts a packet the session sent and returns its envelope and payload fields.
func openSent(t *testing.T, p sentPacket, key string, v protocol.Version) (*protocol.Envelope, map[string]any) {
	t.Helper()
	env, payload, err := protocol.NewCodec().Decode(p.data, []byte(key), v)
	require.NoError(t, err)
	u, ok := payload.(*protocol.UnknownPayload)
	require.True(t, ok, "outbound payload decoded as %T", payload)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(u.Raw, &fields))
	return env, fields
}

// bindSession walks s through dev and bindok on version v.
func bindSession(t *testing.T, s *Session, v protocol.Version) {
	t.Helper()
	ver := "V1.1.13"
	if v == protocol.V2 {
		ver = "V2.0.0"
	}
	dev := &protocol.DevPayload{T: protocol.KindDev, CID: "A1B2", Mac: "A1B2", Name: "AC1", Ver: ver}
	require.NoError(t, s.handleDatagram(datagram(t, dev, "A1B2", "", protocol.SeqHandshake, protocol.V1)))

	ok := &protocol.BindOKPayload{T: protocol.KindBindOK, Mac: "A1B2", Key: deviceKey}
	require.NoError(t, s.handleDatagram(datagram(t, ok, "A1B2", "", protocol.SeqHandshake, v)))
	require.Equal(t, Bound, s.State())
}

func newTestSession(t *testing.T, cfg Config, opts ...Option) (*Session, *fakeTransport) {
	t.Helper()
	if cfg.Host == "" {
		cfg.Host = deviceHost
	}
	ft := newFakeTransport()
	s := New(cfg, ft, opts...)
	require.NoError(t, s.connect())
	return s, ft
}

var errBindBusy = errors.New("address already in use")
