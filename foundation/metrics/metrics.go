// Package metrics exposes prometheus instrumentation for the replay service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the replay service metrics on a private registry
type Collector struct {
	reg *prometheus.Registry

	ActiveSessions prometheus.Gauge

	LiveFramesAccepted  prometheus.Counter
	LiveFramesDiscarded prometheus.Counter
	LiveReconnects      prometheus.Counter

	MarkerPublished   prometheus.Counter
	MarkerPublishErrs prometheus.Counter

	CorrelationDuration prometheus.Histogram
}

// NewCollector creates and registers the replay service metrics
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "replay_active_sessions",
			Help: "Number of currently loaded replay sessions.",
		}),
		LiveFramesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_live_frames_accepted_total",
			Help: "Total live gps frames accepted by the feed reconciler.",
		}),
		LiveFramesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_live_frames_discarded_total",
			Help: "Total live gps frames discarded as stale or duplicate.",
		}),
		LiveReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_live_reconnects_total",
			Help: "Total websocket reconnect attempts on the live feed.",
		}),
		MarkerPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_marker_published_total",
			Help: "Total marker updates published over NATS.",
		}),
		MarkerPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "replay_marker_publish_errors_total",
			Help: "Total NATS publish errors for marker updates.",
		}),
		CorrelationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "replay_correlation_duration_seconds",
			Help:    "Duration of stop correlation computations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	reg.MustRegister(
		c.ActiveSessions,
		c.LiveFramesAccepted, c.LiveFramesDiscarded, c.LiveReconnects,
		c.MarkerPublished, c.MarkerPublishErrs,
		c.CorrelationDuration,
	)

	return c
}

// Handler returns the http handler serving the collector registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
