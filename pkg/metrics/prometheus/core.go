// Package prometheus provides Prometheus-backed implementations of the
// metrics interfaces in pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/vxi11/pkg/metrics"
)

type coreMetrics struct {
	callDuration   *prometheus.HistogramVec
	callsTotal     *prometheus.CounterVec
	bytesTotal     *prometheus.CounterVec
	linksCreated   prometheus.Counter
	linksDestroyed prometheus.Counter
	activeLinks    prometheus.Gauge
	interrupts     prometheus.Counter
}

// NewCoreMetrics returns a Prometheus-backed metrics.CoreMetrics, or nil
// if metrics.InitRegistry has not been called.
func NewCoreMetrics() *coreMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &coreMetrics{
		callDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vxi11_core_call_duration_seconds",
				Help:    "Duration of Core channel RPC calls by procedure.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
		callsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "vxi11_core_calls_total",
				Help: "Total Core channel RPC calls by procedure and outcome.",
			},
			[]string{"procedure", "error_code"},
		),
		bytesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "vxi11_core_bytes_total",
				Help: "Bytes transferred over the Core channel by direction.",
			},
			[]string{"direction"},
		),
		linksCreated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vxi11_links_created_total",
			Help: "Total create_link calls that succeeded.",
		}),
		linksDestroyed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vxi11_links_destroyed_total",
			Help: "Total destroy_link calls issued.",
		}),
		activeLinks: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "vxi11_active_links",
			Help: "Current number of established VXI-11 links.",
		}),
		interrupts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vxi11_interrupts_total",
			Help: "Total service requests delivered via the Interrupt channel.",
		}),
	}
}

func (m *coreMetrics) RecordCall(procedure string, duration time.Duration, errorCode string) {
	if m == nil {
		return
	}
	m.callDuration.WithLabelValues(procedure).Observe(duration.Seconds())
	m.callsTotal.WithLabelValues(procedure, errorCode).Inc()
}

func (m *coreMetrics) RecordBytesTransferred(direction string, bytes uint64) {
	if m == nil {
		return
	}
	m.bytesTotal.WithLabelValues(direction).Add(float64(bytes))
}

func (m *coreMetrics) RecordLinkEstablished() {
	if m == nil {
		return
	}
	m.linksCreated.Inc()
}

func (m *coreMetrics) RecordLinkDestroyed() {
	if m == nil {
		return
	}
	m.linksDestroyed.Inc()
}

func (m *coreMetrics) SetActiveLinks(count int32) {
	if m == nil {
		return
	}
	m.activeLinks.Set(float64(count))
}

func (m *coreMetrics) RecordInterrupt() {
	if m == nil {
		return
	}
	m.interrupts.Inc()
}

type discoveryMetrics struct {
	roundDuration *prometheus.HistogramVec
	roundReplies  prometheus.Histogram
}

// NewDiscoveryMetrics returns a Prometheus-backed metrics.DiscoveryMetrics,
// or nil if metrics.InitRegistry has not been called.
func NewDiscoveryMetrics() *discoveryMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	reg := metrics.GetRegistry()

	return &discoveryMetrics{
		roundDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vxi11_discovery_round_duration_seconds",
				Help:    "Duration of a Portmap broadcast discovery round.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		roundReplies: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "vxi11_discovery_round_replies",
			Help:    "Number of peers that replied in a discovery round.",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}),
	}
}

func (m *discoveryMetrics) RecordDiscoveryRound(repliesReceived int, duration time.Duration) {
	if m == nil {
		return
	}
	result := "replies"
	if repliesReceived == 0 {
		result = "empty"
	}
	m.roundDuration.WithLabelValues(result).Observe(duration.Seconds())
	m.roundReplies.Observe(float64(repliesReceived))
}
