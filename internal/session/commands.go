package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/greelink/internal/catalog"
	"github.com/muurk/greelink/internal/logging"
	"github.com/muurk/greelink/internal/protocol"
)

// SendCommand queues a cmd packet setting codes[i] to values[i] and returns
// immediately. Delivery is best effort: send failures are logged, not returned.
func (s *Session) SendCommand(codes []string, values []int) error {
	if s.State() != Bound {
		return ErrNotBound
	}
	if len(codes) != len(values) {
		return fmt.Errorf("%w: %d codes, %d values", ErrLengthMismatch, len(codes), len(values))
	}
	if len(codes) == 0 {
		return protocol.ErrEmptyCommand
	}

	cmd := command{
		codes:  append([]string(nil), codes...),
		values: append([]int(nil), values...),
	}
	select {
	case s.commands <- cmd:
		return nil
	default:
		return ErrQueueFull
	}
}

// sendCommand runs on the event loop.
func (s *Session) sendCommand(cmd command) {
	req, err := protocol.NewCommandRequest(cmd.codes, cmd.values)
	if err != nil {
		logging.Error("Invalid command", zap.Error(err))
		return
	}

	s.mu.RLock()
	id, key, host, port, v := s.dev.id, s.dev.key, s.dev.host, s.dev.port, s.version
	s.mu.RUnlock()

	data, err := s.codec.Encode(req, id, []byte(key), protocol.SeqSteady, v)
	if err != nil {
		logging.Error("Failed to encode command", zap.Error(err))
		return
	}

	logging.Info("Sending command",
		zap.String("device_id", id),
		zap.Strings("codes", cmd.codes),
		zap.Ints("values", cmd.values),
	)
	s.send(data, host, port)
}

func (s *Session) set(code string, value int) error {
	return s.SendCommand([]string{code}, []int{value})
}

// SetPower switches the appliance on or off.
func (s *Session) SetPower(on bool) error {
	return s.set(catalog.CodePower, catalog.OnOff(on))
}

// SetTemperature sets the target temperature in the given unit.
func (s *Session) SetTemperature(value int, unit catalog.TemperatureUnit) error {
	return s.SendCommand(
		[]string{catalog.CodeTemperatureUnit, catalog.CodeTemperature},
		[]int{int(unit), value},
	)
}

func (s *Session) SetMode(m catalog.Mode) error {
	return s.set(catalog.CodeMode, int(m))
}

func (s *Session) SetFanSpeed(f catalog.FanSpeed) error {
	return s.set(catalog.CodeFanSpeed, int(f))
}

func (s *Session) SetSwingHorizontal(sw catalog.SwingHorizontal) error {
	return s.set(catalog.CodeSwingHorizontal, int(sw))
}

func (s *Session) SetSwingVertical(sw catalog.SwingVertical) error {
	return s.set(catalog.CodeSwingVertical, int(sw))
}

func (s *Session) SetPowerSave(on bool) error {
	return s.set(catalog.CodePowerSave, catalog.OnOff(on))
}

func (s *Session) SetLights(on bool) error {
	return s.set(catalog.CodeLights, catalog.OnOff(on))
}

func (s *Session) SetHealth(on bool) error {
	return s.set(catalog.CodeHealth, catalog.OnOff(on))
}

func (s *Session) SetQuiet(q catalog.Quiet) error {
	return s.set(catalog.CodeQuiet, int(q))
}

// SetBlow toggles the X-Fan function that dries the coil after cooling.
func (s *Session) SetBlow(on bool) error {
	return s.set(catalog.CodeBlow, catalog.OnOff(on))
}

func (s *Session) SetAir(a catalog.Air) error {
	return s.set(catalog.CodeAir, int(a))
}

func (s *Session) SetSleep(on bool) error {
	return s.set(catalog.CodeSleep, catalog.OnOff(on))
}

func (s *Session) SetTurbo(on bool) error {
	return s.set(catalog.CodeTurbo, catalog.OnOff(on))
}
