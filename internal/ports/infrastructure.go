package ports

import (
	"time"
)

// MetricsCollector receives operational measurements from the scheduler and
// the runner. A nil collector disables recording everywhere it is accepted.
//
// Names currently emitted:
//
//	RecordLatency   "module_execute", "schedule", "detect_cycles"  labels: module
//	RecordCounter   "network_runs"                                  labels: status
//	RecordCounter   "cycles_detected_total"
//	RecordGauge     "schedule_nodes"
//	RecordHistogram "schedule_nodes"
type MetricsCollector interface {
	// RecordLatency records how long operation took.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter adds value to a counter, such as runs by outcome or
	// cycle rejections.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets a gauge, such as the length of the last schedule.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram observes a value, such as the node count of a
	// computed schedule.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
