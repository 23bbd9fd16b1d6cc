package session

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/greelink/internal/logging"
	"github.com/muurk/greelink/internal/metrics"
	"github.com/muurk/greelink/internal/protocol"
	"github.com/muurk/greelink/internal/transport"
)

// v2FirmwarePrefix marks firmware that speaks encryption version 2.
const v2FirmwarePrefix = "V2."

// handleDatagram decodes one inbound datagram and applies it. A non-nil error means
// the datagram was dropped without changing state.
func (s *Session) handleDatagram(d *transport.Datagram) error {
	s.received.Add(1)
	s.metrics.IncReceived()
	if d.Addr != nil {
		logging.LogPacket("received", d.Addr.String(), d.Data)
	}

	s.mu.RLock()
	key, v := s.dev.key, s.version
	s.mu.RUnlock()

	env, payload, err := s.codec.Decode(d.Data, []byte(key), v)
	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case *protocol.DevPayload:
		return s.handleDev(env, p, d)
	case *protocol.BindOKPayload:
		return s.handleBindOK(p, d)
	case *protocol.DatPayload:
		return s.handleDat(p)
	case *protocol.ResPayload:
		return s.handleRes(p)
	case *protocol.UnknownPayload:
		return protocol.NewUnexpectedPayloadError(p.Kind(), "unknown payload type")
	default:
		return protocol.NewUnexpectedPayloadError(payload.Kind(), fmt.Sprintf("unhandled payload %T", payload))
	}
}

func (s *Session) handleDev(env *protocol.Envelope, p *protocol.DevPayload, d *transport.Datagram) error {
	s.mu.Lock()
	if s.state != AwaitingHandshake {
		st := s.state
		s.mu.Unlock()
		return protocol.NewUnexpectedPayloadError(p.Kind(), "dev reply in state "+st.String())
	}

	upgrade := s.version == protocol.V1 && strings.HasPrefix(p.Ver, v2FirmwarePrefix)
	id := env.CID
	if upgrade {
		id = p.DeclaredID()
	}
	if id == "" {
		s.mu.Unlock()
		return protocol.NewUnexpectedPayloadError(p.Kind(), "dev reply without device id")
	}

	if upgrade {
		s.version = protocol.V2
	}
	s.dev.id = id
	s.dev.name = p.Name
	s.dev.firmware = p.Ver
	s.dev.mac = p.Mac
	s.setSource(d)
	s.state = AwaitingBindConfirmation
	host, port, v := s.dev.host, s.dev.port, s.version
	s.mu.Unlock()

	logging.Info("Device discovered",
		zap.String("device_id", id),
		zap.String("name", p.Name),
		zap.String("firmware", p.Ver),
		zap.Stringer("version", v),
		zap.Stringer("addr", d.Addr),
	)

	data, err := s.codec.Encode(protocol.NewBindRequest(id), id, nil, protocol.SeqHandshake, v)
	if err != nil {
		logging.Error("Failed to encode bind request", zap.Error(err))
		return nil
	}
	s.send(data, host, port)
	return nil
}

func (s *Session) handleBindOK(p *protocol.BindOKPayload, d *transport.Datagram) error {
	s.mu.Lock()
	if s.state != AwaitingBindConfirmation || s.dev.id == "" {
		st := s.state
		s.mu.Unlock()
		return protocol.NewUnexpectedPayloadError(p.Kind(), "bindok in state "+st.String())
	}

	s.dev.key = p.Key
	s.dev.bound = true
	s.setSource(d)
	s.state = Bound
	info := s.dev.info(s.version)
	s.mu.Unlock()

	s.metrics.SetBound()
	s.startPolling = true

	logging.Info("Device bound",
		zap.String("device_id", info.ID),
		zap.String("addr", fmt.Sprintf("%s:%d", info.Host, info.Port)),
		zap.Stringer("version", info.Version),
	)

	if s.cfg.OnConnected != nil {
		s.cfg.OnConnected(info)
	}
	return nil
}

func (s *Session) handleDat(p *protocol.DatPayload) error {
	props, err := s.applyProperties(p.Kind(), p.Cols, p.Dat)
	if err != nil {
		return err
	}
	s.metrics.IncPropertyUpdate(metrics.KindStatus)
	if s.cfg.OnStatus != nil {
		s.cfg.OnStatus(props)
	}
	return nil
}

func (s *Session) handleRes(p *protocol.ResPayload) error {
	props, err := s.applyProperties(p.Kind(), p.Opt, p.Values())
	if err != nil {
		return err
	}
	s.metrics.IncPropertyUpdate(metrics.KindResult)
	if s.cfg.OnUpdate != nil {
		s.cfg.OnUpdate(props)
	}
	return nil
}

// applyProperties writes the pairs if bound and returns a copy of all properties.
func (s *Session) applyProperties(kind protocol.Kind, codes []string, values []any) (Properties, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dev.bound {
		return nil, protocol.NewUnexpectedPayloadError(kind, "payload before bind")
	}
	if len(codes) != len(values) {
		logging.Warn("Property lists differ in length",
			zap.String("kind", string(kind)),
			zap.Int("codes", len(codes)),
			zap.Int("values", len(values)),
		)
	}
	n := s.dev.apply(codes, values)
	logging.Debug("Properties updated", zap.String("kind", string(kind)), zap.Int("count", n))
	return s.dev.props.Clone(), nil
}

// setSource records the datagram source as the device address. Caller holds mu.
func (s *Session) setSource(d *transport.Datagram) {
	if d.Addr == nil {
		return
	}
	s.dev.host = d.Addr.IP.String()
	s.dev.port = d.Addr.Port
}
