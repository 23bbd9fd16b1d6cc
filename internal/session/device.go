package session

import (
	"maps"

	"github.com/muurk/greelink/internal/protocol"
)

// Properties maps protocol codes to the last value the appliance reported.
// Values are int for integral numbers; other JSON values are kept as decoded.
type Properties map[string]any

// Int returns the value of code as an int.
func (p Properties) Int(code string) (int, bool) {
	v, ok := p[code].(int)
	return v, ok
}

// Clone returns a copy of p.
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	return maps.Clone(p)
}

// DeviceInfo identifies the bound appliance.
type DeviceInfo struct {
	ID       string
	Name     string
	Firmware string
	Mac      string
	Host     string
	Port     int
	Version  protocol.Version
}

// Device is a point-in-time snapshot of the session's view of the appliance.
type Device struct {
	DeviceInfo
	Bound      bool
	Key        string
	Properties Properties
}

// device is the mutable state owned by the event loop.
type device struct {
	id       string
	name     string
	firmware string
	mac      string
	host     string
	port     int
	bound    bool
	key      string
	props    Properties
}

func (d *device) info(v protocol.Version) DeviceInfo {
	return DeviceInfo{
		ID:       d.id,
		Name:     d.name,
		Firmware: d.firmware,
		Mac:      d.mac,
		Host:     d.host,
		Port:     d.port,
		Version:  v,
	}
}

// apply sets codes[i] to values[i], last write wins. Extra entries on either side
// are ignored. It returns the number of pairs applied.
func (d *device) apply(codes []string, values []any) int {
	if d.props == nil {
		d.props = make(Properties, len(codes))
	}
	n := min(len(codes), len(values))
	for i := 0; i < n; i++ {
		d.props[codes[i]] = values[i]
	}
	return n
}
