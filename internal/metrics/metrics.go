// Package metrics exposes the content repository counters to Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "journal"

type Metrics struct {
	quotaRejections  *prometheus.CounterVec
	writeRetries     prometheus.Counter
	orphanSweeps     prometheus.Counter
	orphansRemoved   prometheus.Counter
	artifactFailures prometheus.Counter
	mediaIngested    *prometheus.CounterVec
	mediaRejected    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when it is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quotaRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Post list writes rejected for lack of space, by stage.",
		}, []string{"stage"}),
		writeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_retries_total",
			Help:      "Post list writes retried after an orphan sweep.",
		}),
		orphanSweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_sweeps_total",
			Help:      "Completed orphan media sweeps.",
		}),
		orphansRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphans_removed_total",
			Help:      "Media payloads removed by orphan sweeps.",
		}),
		artifactFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_failures_total",
			Help:      "Markdown artifacts that could not be generated or stored.",
		}),
		mediaIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_ingested_total",
			Help:      "Accepted media uploads, by media type.",
		}, []string{"type"}),
		mediaRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_rejected_total",
			Help:      "Rejected media uploads, by reason.",
		}, []string{"reason"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.quotaRejections,
			m.writeRetries,
			m.orphanSweeps,
			m.orphansRemoved,
			m.artifactFailures,
			m.mediaIngested,
			m.mediaRejected,
		)
	}

	return m
}

// QuotaRejected records a write refused at stage "budget" or "store".
func (m *Metrics) QuotaRejected(stage string) {
	if m == nil {
		return
	}
	m.quotaRejections.WithLabelValues(stage).Inc()
}

func (m *Metrics) WriteRetried() {
	if m == nil {
		return
	}
	m.writeRetries.Inc()
}

func (m *Metrics) OrphansSwept(removed int) {
	if m == nil {
		return
	}
	m.orphanSweeps.Inc()
	m.orphansRemoved.Add(float64(removed))
}

func (m *Metrics) ArtifactFailed() {
	if m == nil {
		return
	}
	m.artifactFailures.Inc()
}

func (m *Metrics) MediaIngested(mediaType string) {
	if m == nil {
		return
	}
	m.mediaIngested.WithLabelValues(mediaType).Inc()
}

func (m *Metrics) MediaRejected(reason string) {
	if m == nil {
		return
	}
	m.mediaRejected.WithLabelValues(reason).Inc()
}
