package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-netsched/internal/domain"
)

// Test that our interfaces can be implemented correctly

// mockMetricsCollector implements MetricsCollector interface
type mockMetricsCollector struct {
	latencies  []time.Duration
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
}

// newMockMetricsCollector creates a new mock metrics collector for testing.
func newMockMetricsCollector() *mockMetricsCollector {
	return &mockMetricsCollector{
		latencies:  []time.Duration{},
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
	}
}

func (m *mockMetricsCollector) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	m.latencies = append(m.latencies, duration)
}

func (m *mockMetricsCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	m.counters[metric] += value
}

func (m *mockMetricsCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	m.gauges[metric] = value
}

func (m *mockMetricsCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	m.histograms[metric] = append(m.histograms[metric], value)
}

// mockModule implements ExecutableModule with a single input and output.
type mockModule struct {
	name     string
	input    any
	executed []domain.Segment
}

func (m *mockModule) InstanceName() string { return m.name }
func (m *mockModule) InputCount() int      { return 1 }
func (m *mockModule) OutputCount() int     { return 1 }

func (m *mockModule) SetInput(idx int, value any) error {
	if idx != 0 {
		return ErrPortOutOfRange
	}
	m.input = value
	return nil
}

func (m *mockModule) Output(idx int) (any, error) {
	if idx != 0 {
		return nil, ErrPortOutOfRange
	}
	return m.input, nil
}

func (m *mockModule) Execute(ctx context.Context, seg domain.Segment) error {
	m.executed = append(m.executed, seg)
	return ctx.Err()
}

// mockConsumerQuery answers consumer queries from a fixed adjacency map.
type mockConsumerQuery map[domain.Module][]domain.Module

func (q mockConsumerQuery) ConsumerModules(m domain.Module) []domain.Module { return q[m] }

func TestInterfaces_Implementation(t *testing.T) {
	var _ MetricsCollector = (*mockMetricsCollector)(nil)
	var _ ExecutableModule = (*mockModule)(nil)
	var _ ConsumerQuery = mockConsumerQuery(nil)
}

func TestExecutableModule_Ports(t *testing.T) {
	m := &mockModule{name: "passthrough"}

	require.NoError(t, m.SetInput(0, 42))
	out, err := m.Output(0)
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	assert.ErrorIs(t, m.SetInput(1, 0), ErrPortOutOfRange)
	_, err = m.Output(3)
	assert.ErrorIs(t, err, ErrPortOutOfRange)

	require.NoError(t, m.Execute(context.Background(), domain.SegmentNone))
	assert.Equal(t, []domain.Segment{domain.SegmentNone}, m.executed)
}

func TestExecutableModule_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := &mockModule{name: "cancelled"}
	assert.ErrorIs(t, m.Execute(ctx, domain.SegmentNone), context.Canceled)
}

func TestMetricsCollector_Recording(t *testing.T) {
	metrics := newMockMetricsCollector()
	labels := map[string]string{"operation": "schedule"}

	// Test RecordLatency
	metrics.RecordLatency("schedule", 100*time.Millisecond, labels)
	assert.Len(t, metrics.latencies, 1, "RecordLatency() should record one duration")
	assert.Equal(t, 100*time.Millisecond, metrics.latencies[0], "RecordLatency() duration mismatch")

	// Test RecordCounter
	metrics.RecordCounter("cycles_detected", 1, labels)
	metrics.RecordCounter("cycles_detected", 2, labels)
	assert.Equal(t, float64(3), metrics.counters["cycles_detected"], "RecordCounter() sum mismatch")

	// Test RecordGauge
	metrics.RecordGauge("schedule_nodes", 10, labels)
	metrics.RecordGauge("schedule_nodes", 5, labels)
	assert.Equal(t, float64(5), metrics.gauges["schedule_nodes"], "RecordGauge() value mismatch")

	// Test RecordHistogram
	metrics.RecordHistogram("network_size", 12, labels)
	metrics.RecordHistogram("network_size", 40, labels)
	assert.Len(t, metrics.histograms["network_size"], 2, "RecordHistogram() should record two values")
}
