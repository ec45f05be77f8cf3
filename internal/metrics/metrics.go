package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "siteplan_"

	ResultApplied  = "applied"
	ResultRejected = "rejected"
	ResultSuccess  = "success"
	ResultError    = "error"
)

var (
	registerOnce sync.Once

	operationsTotal *prometheus.CounterVec
	dropOutcomes    *prometheus.CounterVec
	exportsTotal    *prometheus.CounterVec
	exportLatency   *prometheus.HistogramVec
	snapshotSaves   *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	connectedUsers  prometheus.Gauge
)

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		operationsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "operations_total",
				Help: "Floorplan operations by type and result",
			},
			[]string{"type", "result"},
		)
		dropOutcomes = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "drop_outcomes_total",
				Help: "Device drops by resolution outcome",
			},
			[]string{"outcome"},
		)
		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Device schedule exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Device schedule export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)
		snapshotSaves = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_saves_total",
				Help: "Floorplan snapshot saves by result",
			},
			[]string{"result"},
		)
		activeSessions = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "collab_sessions",
				Help: "Projects with at least one connected editor",
			},
		)
		connectedUsers = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "collab_clients",
				Help: "Connected websocket clients",
			},
		)

		prometheus.MustRegister(
			operationsTotal,
			dropOutcomes,
			exportsTotal,
			exportLatency,
			snapshotSaves,
			activeSessions,
			connectedUsers,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveOperation(opType, result string) {
	if operationsTotal == nil {
		return
	}
	operationsTotal.WithLabelValues(opType, result).Inc()
}

func ObserveDrop(outcome string) {
	if dropOutcomes == nil {
		return
	}
	dropOutcomes.WithLabelValues(outcome).Inc()
}

func ObserveExport(format, result string, seconds float64) {
	if exportsTotal == nil {
		return
	}
	exportsTotal.WithLabelValues(format, result).Inc()
	exportLatency.WithLabelValues(format).Observe(seconds)
}

func ObserveSnapshotSave(result string) {
	if snapshotSaves == nil {
		return
	}
	snapshotSaves.WithLabelValues(result).Inc()
}

func SetSessions(n int) {
	if activeSessions == nil {
		return
	}
	activeSessions.Set(float64(n))
}

func SetClients(n int) {
	if connectedUsers == nil {
		return
	}
	connectedUsers.Set(float64(n))
}
