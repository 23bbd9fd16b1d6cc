package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/greelink/internal/catalog"
	"github.com/muurk/greelink/internal/protocol"
)

// waitSent returns the next packet whose decoded payload type is kind.
func waitSent(t *testing.T, ft *fakeTransport, key string, v protocol.Version, kind string) map[string]any {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case p := <-ft.sentCh:
			if string(p.data) == string(protocol.EncodeScan()) {
				if kind == "scan" {
					return nil
				}
				continue
			}
			_, fields := openSent(t, p, key, v)
			if fields["t"] == kind {
				return fields
			}
		case <-deadline:
			t.Fatalf("no %s packet sent", kind)
			return nil
		}
	}
}

func TestRunRetriesConnect(t *testing.T) {
	ft := newFakeTransport()
	ft.listenErrs = []error{errBindBusy, errBindBusy}
	s := New(Config{Host: deviceHost, ReconnectDelay: 10 * time.Millisecond}, ft)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitSent(t, ft, "", protocol.V1, "scan")
	assert.Equal(t, AwaitingHandshake, s.State())

	ft.mu.Lock()
	assert.Equal(t, 3, ft.listens)
	ft.mu.Unlock()

	cancel()
	assert.NoError(t, <-done)
}

func TestRunReturnsLastConnectErrorOnCancel(t *testing.T) {
	ft := newFakeTransport()
	ft.listenErrs = []error{errBindBusy, errBindBusy, errBindBusy}
	s := New(Config{Host: deviceHost, ReconnectDelay: time.Hour}, ft)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, errBindBusy)
	assert.Equal(t, Disconnected, s.State())
}

func TestRunTwice(t *testing.T) {
	ft := newFakeTransport()
	s := New(Config{Host: deviceHost}, ft)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()
	waitSent(t, ft, "", protocol.V1, "scan")

	assert.ErrorIs(t, s.Run(ctx), ErrAlreadyRunning)
}

func TestRunHandshakePollAndCommand(t *testing.T) {
	ft := newFakeTransport()
	connected := make(chan DeviceInfo, 1)
	s := New(Config{
		Host:         deviceHost,
		PollInterval: 20 * time.Millisecond,
		OnConnected:  func(info DeviceInfo) { connected <- info },
	}, ft)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	waitSent(t, ft, "", protocol.V1, "scan")

	ft.mu.Lock()
	deliver := ft.handler
	ft.mu.Unlock()
	require.NotNil(t, deliver)

	dev := &protocol.DevPayload{T: protocol.KindDev, CID: "A1B2", Mac: "A1B2", Name: "AC1", Ver: "V2.0.0"}
	deliver(datagram(t, dev, "A1B2", "", protocol.SeqHandshake, protocol.V1))
	bind := waitSent(t, ft, "", protocol.V2, "bind")
	assert.Equal(t, "A1B2", bind["mac"])

	ok := &protocol.BindOKPayload{T: protocol.KindBindOK, Mac: "A1B2", Key: deviceKey}
	deliver(datagram(t, ok, "A1B2", "", protocol.SeqHandshake, protocol.V2))

	select {
	case info := <-connected:
		assert.Equal(t, "A1B2", info.ID)
		assert.Equal(t, protocol.V2, info.Version)
	case <-time.After(2 * time.Second):
		t.Fatal("OnConnected not called")
	}

	// immediate poll, then periodic ones
	waitSent(t, ft, deviceKey, protocol.V2, "status")
	waitSent(t, ft, deviceKey, protocol.V2, "status")

	require.NoError(t, s.SetTemperature(24, catalog.Celsius))
	cmd := waitSent(t, ft, deviceKey, protocol.V2, "cmd")
	assert.Equal(t, []any{"TemUn", "SetTem"}, cmd["opt"])
	assert.Equal(t, []any{float64(0), float64(24)}, cmd["p"])
}

func TestSendCommandValidation(t *testing.T) {
	s, _ := newTestSession(t, Config{})
	assert.ErrorIs(t, s.SendCommand([]string{"Pow"}, []int{1}), ErrNotBound)

	bindSession(t, s, protocol.V1)
	assert.ErrorIs(t, s.SendCommand([]string{"Pow", "Mod"}, []int{1}), ErrLengthMismatch)
	assert.ErrorIs(t, s.SendCommand(nil, nil), protocol.ErrEmptyCommand)
	assert.NoError(t, s.SendCommand([]string{"Pow"}, []int{1}))
}

func TestSendCommandQueueFull(t *testing.T) {
	s, _ := newTestSession(t, Config{})
	bindSession(t, s, protocol.V1)

	for i := 0; i < commandQueueSize; i++ {
		require.NoError(t, s.SetPower(true))
	}
	assert.ErrorIs(t, s.SetPower(true), ErrQueueFull)
}

func TestSendFailureIsAbsorbed(t *testing.T) {
	s, ft := newTestSession(t, Config{})
	bindSession(t, s, protocol.V1)
	sent := s.PacketsSent()

	ft.mu.Lock()
	ft.sendErr = errors.New("network unreachable")
	ft.mu.Unlock()

	require.NoError(t, s.SetPower(false))
	s.sendCommand(<-s.commands)
	s.requestStatus()

	assert.Equal(t, sent, s.PacketsSent())
	assert.Equal(t, Bound, s.State())
}

func TestSetters(t *testing.T) {
	tests := []struct {
		name   string
		call   func(s *Session) error
		codes  []any
		values []any
	}{
		{"power", func(s *Session) error { return s.SetPower(true) }, []any{"Pow"}, []any{1.0}},
		{"temperature", func(s *Session) error { return s.SetTemperature(77, catalog.Fahrenheit) }, []any{"TemUn", "SetTem"}, []any{1.0, 77.0}},
		{"mode", func(s *Session) error { return s.SetMode(catalog.ModeHeat) }, []any{"Mod"}, []any{4.0}},
		{"fan", func(s *Session) error { return s.SetFanSpeed(catalog.FanHigh) }, []any{"WdSpd"}, []any{5.0}},
		{"swing hor", func(s *Session) error { return s.SetSwingHorizontal(catalog.SwingHorFull) }, []any{"SwingLfRig"}, []any{1.0}},
		{"swing vert", func(s *Session) error { return s.SetSwingVertical(catalog.SwingVertFixedBottom) }, []any{"SwUpDn"}, []any{6.0}},
		{"power save", func(s *Session) error { return s.SetPowerSave(true) }, []any{"SvSt"}, []any{1.0}},
		{"lights", func(s *Session) error { return s.SetLights(false) }, []any{"Lig"}, []any{0.0}},
		{"health", func(s *Session) error { return s.SetHealth(true) }, []any{"Health"}, []any{1.0}},
		{"quiet", func(s *Session) error { return s.SetQuiet(catalog.QuietMode2) }, []any{"Quiet"}, []any{2.0}},
		{"blow", func(s *Session) error { return s.SetBlow(true) }, []any{"Blo"}, []any{1.0}},
		{"air", func(s *Session) error { return s.SetAir(catalog.AirOutside) }, []any{"Air"}, []any{2.0}},
		{"sleep", func(s *Session) error { return s.SetSleep(true) }, []any{"SwhSlp"}, []any{1.0}},
		{"turbo", func(s *Session) error { return s.SetTurbo(true) }, []any{"Tur"}, []any{1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ft := newTestSession(t, Config{})
			bindSession(t, s, protocol.V1)

			require.NoError(t, tt.call(s))
			s.sendCommand(<-s.commands)

			p := ft.last(t)
			assert.Equal(t, deviceHost, p.host)
			assert.Equal(t, protocol.DefaultPort, p.port)

			env, fields := openSent(t, p, deviceKey, protocol.V1)
			assert.Equal(t, 0, env.I)
			assert.Empty(t, env.Tag)
			assert.Equal(t, "cmd", fields["t"])
			assert.Equal(t, tt.codes, fields["opt"])
			assert.Equal(t, tt.values, fields["p"])
		})
	}
}
