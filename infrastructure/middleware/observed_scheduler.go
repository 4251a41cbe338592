package middleware

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

var _ ports.Scheduler = (*ObservedScheduler)(nil)

// tracerName is the instrumentation scope of scheduler spans.
const tracerName = "netsched"

// ObservedScheduler wraps a ports.Scheduler with OpenTelemetry spans and
// metrics. The scheduler port takes no context, so spans are parented on
// the context given at construction.
type ObservedScheduler struct {
	ctx     context.Context
	next    ports.Scheduler
	metrics ports.MetricsCollector
}

// NewObservedScheduler creates an ObservedScheduler delegating to next.
// metrics may be nil.
func NewObservedScheduler(ctx context.Context, next ports.Scheduler, metrics ports.MetricsCollector) *ObservedScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ObservedScheduler{ctx: ctx, next: next, metrics: metrics}
}

// DetectCycles implements ports.Scheduler.
func (o *ObservedScheduler) DetectCycles(nodes []domain.SchedulingNode) bool {
	_, span := otel.Tracer(tracerName).Start(o.ctx, "Scheduler.DetectCycles",
		trace.WithAttributes(attribute.Int("netsched.nodes", len(nodes))),
	)
	defer span.End()

	start := time.Now()
	cyclic := o.next.DetectCycles(nodes)
	o.recordLatency("detect_cycles", time.Since(start))

	span.SetAttributes(attribute.Bool("netsched.cyclic", cyclic))
	if cyclic {
		span.SetStatus(codes.Error, domain.ErrCyclesDetected.Error())
		o.recordCounter("cycles_detected_total")
		return true
	}
	span.SetStatus(codes.Ok, "")
	return false
}

// Schedule implements ports.Scheduler.
func (o *ObservedScheduler) Schedule(nodes []domain.SchedulingNode) (domain.Schedule, error) {
	_, span := otel.Tracer(tracerName).Start(o.ctx, "Scheduler.Schedule",
		trace.WithAttributes(attribute.Int("netsched.nodes", len(nodes))),
	)
	defer span.End()

	start := time.Now()
	sched, err := o.next.Schedule(nodes)
	o.recordLatency("schedule", time.Since(start))

	if err != nil {
		var cycleErr *domain.CyclesDetectedError
		if errors.As(err, &cycleErr) {
			span.AddEvent("cycle.detected", trace.WithAttributes(
				attribute.String("cycle.path", cycleErr.Path()),
				attribute.Int("cycle.length", len(cycleErr.Cycle)),
			))
			o.recordCounter("cycles_detected_total")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("netsched.schedule_length", len(sched)))
	if o.metrics != nil {
		o.metrics.RecordGauge("schedule_nodes", float64(len(sched)), nil)
		o.metrics.RecordHistogram("schedule_nodes", float64(len(sched)), nil)
	}
	span.SetStatus(codes.Ok, "")
	return sched, nil
}

func (o *ObservedScheduler) recordLatency(op string, d time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordLatency(op, d, map[string]string{"module": "scheduler"})
}

func (o *ObservedScheduler) recordCounter(metric string) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordCounter(metric, 1, nil)
}
