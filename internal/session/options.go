package session

import (
	"github.com/muurk/greelink/internal/metrics"
	"github.com/muurk/greelink/internal/protocol"
)

// Option configures optional Session collaborators.
type Option func(*Session)

// WithMetrics records packet and drop counters into m.
func WithMetrics(m *metrics.SessionMetrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithCodec replaces the packet codec.
func WithCodec(c *protocol.Codec) Option {
	return func(s *Session) {
		if c != nil {
			s.codec = c
		}
	}
}
