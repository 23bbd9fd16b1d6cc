package config

import (
	"fmt"
	"time"

	"github.com/muurk/greelink/internal/logging"
	"github.com/muurk/greelink/internal/protocol"
	"github.com/muurk/greelink/internal/session"
)

// CurrentVersion is the only config file version understood.
const CurrentVersion = 1

// Config is the root of the configuration file.
type Config struct {
	Version int           `yaml:"version"`
	Device  DeviceConfig  `yaml:"device"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Feed    FeedConfig    `yaml:"feed"`
}

// DeviceConfig describes how to reach the appliance.
type DeviceConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	LocalPort      int           `yaml:"local_port"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string     `yaml:"level,omitempty"`
	File  FileConfig `yaml:"file,omitempty"`
}

// FileConfig is the optional rotated log file.
type FileConfig struct {
	Filename   string `yaml:"filename,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
	Compress   bool   `yaml:"compress,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// FeedConfig enables the WebSocket status feed when Listen is set.
type FeedConfig struct {
	Listen    string `yaml:"listen,omitempty"`
	Advertise bool   `yaml:"advertise,omitempty"`
	Instance  string `yaml:"instance,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Device: DeviceConfig{
			Port:           protocol.DefaultPort,
			PollInterval:   session.DefaultPollInterval,
			ReconnectDelay: session.DefaultReconnectDelay,
		},
		Logging: LoggingConfig{
			File: FileConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
	}
}

// Validate checks the values a session cannot run with.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Device.Host == "" {
		return fmt.Errorf("device.host is required")
	}
	if c.Device.Port < 1 || c.Device.Port > 65535 {
		return fmt.Errorf("device.port %d out of range", c.Device.Port)
	}
	if c.Device.LocalPort < 0 || c.Device.LocalPort > 65535 {
		return fmt.Errorf("device.local_port %d out of range", c.Device.LocalPort)
	}
	if c.Device.PollInterval <= 0 {
		return fmt.Errorf("device.poll_interval must be positive")
	}
	if c.Device.ReconnectDelay <= 0 {
		return fmt.Errorf("device.reconnect_delay must be positive")
	}
	if c.Feed.Advertise && c.Feed.Listen == "" {
		return fmt.Errorf("feed.advertise requires feed.listen")
	}
	return nil
}

// SessionConfig converts the device section into a session configuration.
// Callbacks are left for the caller to set.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		Host:           c.Device.Host,
		Port:           c.Device.Port,
		LocalPort:      c.Device.LocalPort,
		PollInterval:   c.Device.PollInterval,
		ReconnectDelay: c.Device.ReconnectDelay,
	}
}

// LogFile converts the logging file section for logging.InitializeWithFile.
func (c *Config) LogFile() logging.FileConfig {
	return logging.FileConfig{
		Filename:   c.Logging.File.Filename,
		MaxSizeMB:  c.Logging.File.MaxSizeMB,
		MaxBackups: c.Logging.File.MaxBackups,
		MaxAgeDays: c.Logging.File.MaxAgeDays,
		Compress:   c.Logging.File.Compress,
	}
}
