// Package metrics exposes Prometheus counters for a greelink session.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greelink"

// Property update kinds used as the "kind" label.
const (
	KindStatus = "status"
	KindResult = "result"
)

// NewRegistry creates a registry with the Go and process collectors registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the HTTP handler serving reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// SessionMetrics are the per-session counters. A nil *SessionMetrics is valid and
// records nothing.
type SessionMetrics struct {
	PacketsSent        prometheus.Counter
	PacketsReceived    prometheus.Counter
	DecodeErrors       prometheus.Counter
	UnexpectedPayloads *prometheus.CounterVec // labels: kind
	PropertyUpdates    *prometheus.CounterVec // labels: kind=status|result
	Bound              prometheus.Gauge
}

// NewSessionMetrics registers and returns the session metrics.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_sent_total",
			Help:      "Datagrams sent to the appliance.",
		}),
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_received_total",
			Help:      "Datagrams received from the appliance.",
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Inbound datagrams dropped because they could not be decoded.",
		}),
		UnexpectedPayloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unexpected_payloads_total",
			Help:      "Decoded payloads dropped because the session state did not allow them.",
		}, []string{"kind"}),
		PropertyUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "property_updates_total",
			Help:      "Status and command-result payloads applied to the device properties.",
		}, []string{"kind"}),
		Bound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_bound",
			Help:      "1 once the session is bound to the appliance.",
		}),
	}
	reg.MustRegister(m.PacketsSent, m.PacketsReceived, m.DecodeErrors, m.UnexpectedPayloads, m.PropertyUpdates, m.Bound)
	return m
}

func (m *SessionMetrics) IncSent() {
	if m != nil {
		m.PacketsSent.Inc()
	}
}

func (m *SessionMetrics) IncReceived() {
	if m != nil {
		m.PacketsReceived.Inc()
	}
}

func (m *SessionMetrics) IncDecodeError() {
	if m != nil {
		m.DecodeErrors.Inc()
	}
}

func (m *SessionMetrics) IncUnexpected(kind string) {
	if m != nil {
		m.UnexpectedPayloads.WithLabelValues(kind).Inc()
	}
}

func (m *SessionMetrics) IncPropertyUpdate(kind string) {
	if m != nil {
		m.PropertyUpdates.WithLabelValues(kind).Inc()
	}
}

func (m *SessionMetrics) SetBound() {
	if m != nil {
		m.Bound.Set(1)
	}
}
