// Package config provides the greelink client configuration file.
//
// The file is YAML and describes the appliance to talk to, the logging setup and
// the optional metrics and status feed listeners. Every field has a default, so a missing file is
// not an error.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/greelink/config.yaml or $HOME/.config/greelink/config.yaml
//   - macOS: $HOME/.config/greelink/config.yaml
//   - Windows: %LOCALAPPDATA%\greelink\config.yaml
//
// # Example
//
//	version: 1
//	device:
//	  host: 192.168.1.255
//	  port: 7000
//	  local_port: 0
//	  poll_interval: 3s
//	  reconnect_delay: 1m0s
//	logging:
//	  level: info
//	  file:
//	    filename: /var/log/greelink.log
//	    max_size_mb: 10
//	metrics:
//	  listen: 127.0.0.1:9107
//	feed:
//	  listen: :8765
//	  advertise: true
//	  instance: living-room
//
// # Security
//
// The session key is issued by the appliance on every bind and is never written to
// this file.
package config
