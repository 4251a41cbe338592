// Package middleware provides cross-cutting concerns for the scheduler and
// runner: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-netsched/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks module execution latency, network runs, cycle rejections and
// schedule sizes.
type PrometheusMetrics struct {
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	cyclesDetected   prometheus.Counter
	systemGauges     *prometheus.GaugeVec
	scheduleNodes    prometheus.Histogram
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics in the global Prometheus registry.
// It panics if called twice in the same process; use NewPrometheusMetricsWith
// and a dedicated registry for anything but the main binary.
func NewPrometheusMetrics() *PrometheusMetrics {
	return NewPrometheusMetricsWith(prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWith creates a PrometheusMetrics instance whose metrics
// are registered with reg.
func NewPrometheusMetricsWith(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netsched_operation_duration_seconds",
				Help:    "Execution time of scheduler and module operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "module"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netsched_operations_total",
				Help: "Total number of operations performed, by outcome.",
			},
			[]string{"operation", "status"},
		),
		cyclesDetected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "netsched_cycles_detected_total",
				Help: "Number of schedule requests rejected because the network contains a cycle.",
			},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "netsched_state",
				Help: "Current state values such as the length of the last schedule.",
			},
			[]string{"metric"},
		),
		scheduleNodes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "netsched_schedule_nodes",
				Help:    "Distribution of scheduling node counts per computed schedule.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, moduleLabel(labels)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "cycles_detected_total":
		pm.cyclesDetected.Add(value)
		pm.operationCounter.WithLabelValues("schedule", "cycle").Add(value)
	case "network_runs":
		status := labels["status"]
		if status == "" {
			status = "success"
		}
		pm.operationCounter.WithLabelValues("run", status).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, "success").Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram. Schedule sizes have a dedicated
// histogram; everything else is observed as an operation duration.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	if metric == "schedule_nodes" {
		pm.scheduleNodes.Observe(value)
		return
	}
	pm.executionLatency.WithLabelValues(metric, moduleLabel(labels)).Observe(value)
}

func moduleLabel(labels map[string]string) string {
	if m := labels["module"]; m != "" {
		return m
	}
	return "unknown"
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
