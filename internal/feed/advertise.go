package feed

import (
	"fmt"
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/greelink/internal/version"
)

const (
	// ServiceType is the mDNS service type of the feed.
	ServiceType = "_greelink._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// MDNSServer is a registered mDNS service.
type MDNSServer interface {
	Shutdown()
}

// Registrar registers mDNS services. The zeroconf implementation is used unless
// a test substitutes its own.
type Registrar interface {
	Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error)
}

type zeroconfRegistrar struct{}

func (zeroconfRegistrar) Register(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (MDNSServer, error) {
	return zeroconf.Register(instance, service, domain, port, txt, ifaces)
}

// AdvertiseConfig describes the feed announcement.
type AdvertiseConfig struct {
	Instance string
	Port     int
	DeviceID string

	// Registrar defaults to zeroconf.
	Registrar Registrar
}

// Advertise announces the feed on ServiceType. Call Shutdown on the result to
// withdraw it.
func Advertise(cfg AdvertiseConfig) (MDNSServer, error) {
	if cfg.Instance == "" {
		return nil, fmt.Errorf("instance name is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}

	reg := cfg.Registrar
	if reg == nil {
		reg = zeroconfRegistrar{}
	}

	txt := []string{
		"path=/ws",
		"version=" + version.Version,
	}
	if cfg.DeviceID != "" {
		txt = append(txt, "device="+cfg.DeviceID)
	}

	srv, err := reg.Register(cfg.Instance, ServiceType, ServiceDomain, cfg.Port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	return srv, nil
}

// PortOf extracts the numeric port from a listen address such as ":8765".
func PortOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(p)
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
