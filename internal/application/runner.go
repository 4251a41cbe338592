package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/ports"
)

// Runner drives a module network through its schedule. For every node it
// copies producer outputs into the module's inputs and then executes the
// module for the node's segment.
// A Runner never executes anything when the network contains a cycle.
type Runner struct {
	// manager supplies modules and wiring.
	manager ports.ModuleManager
	// scheduler computes the execution order.
	scheduler ports.Scheduler
	// concurrency bounds how many nodes of one level run at once.
	// Values below 2 run the schedule strictly sequentially.
	concurrency int
	// limiter throttles module executions when non-nil.
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics ports.MetricsCollector
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithConcurrency runs independent nodes of the same level concurrently,
// at most n at a time.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) { r.concurrency = n }
}

// WithRateLimit throttles module executions to limit per second with the
// given burst. A non-positive limit disables throttling.
func WithRateLimit(limit float64, burst int) RunnerOption {
	return func(r *Runner) {
		if limit <= 0 {
			r.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics records per-module latency and run outcomes.
func WithMetrics(m ports.MetricsCollector) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a Runner over mm that orders nodes with sched.
func NewRunner(mm ports.ModuleManager, sched ports.Scheduler, opts ...RunnerOption) *Runner {
	r := &Runner{
		manager:   mm,
		scheduler: sched,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run schedules modules and executes the resulting order. It returns the
// schedule that was executed.
// Run stops at the first failing module and returns a *ports.ModuleError.
// A *domain.CyclesDetectedError is returned unchanged and nothing runs.
func (r *Runner) Run(ctx context.Context, modules []domain.Module) (domain.Schedule, error) {
	start := time.Now()

	sched, err := r.scheduler.Schedule(SchedulingNodes(modules))
	if err != nil {
		r.recordRun("rejected")
		r.logger.WarnContext(ctx, "network not runnable", "error", err)
		return nil, err
	}

	levels := 0
	if r.concurrency > 1 {
		groups := Levels(sched, r.manager)
		levels = len(groups)
		err = r.runLevels(ctx, groups)
	} else {
		err = r.runSequential(ctx, sched)
	}
	if err != nil {
		r.recordRun("error")
		return sched, err
	}

	r.recordRun("success")
	r.logger.InfoContext(ctx, "network run complete",
		"nodes", len(sched),
		"levels", levels,
		"duration", time.Since(start))
	return sched, nil
}

// RunAll runs every module managed by the runner's network.
func (r *Runner) RunAll(ctx context.Context) (domain.Schedule, error) {
	return r.Run(ctx, r.manager.Modules())
}

func (r *Runner) runSequential(ctx context.Context, sched domain.Schedule) error {
	for _, n := range sched {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.runNode(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// runLevels executes groups in order. Nodes within a group have no
// producer in the same group, so they may run concurrently.
func (r *Runner) runLevels(ctx context.Context, groups [][]domain.SchedulingNode) error {
	for i, group := range groups {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)

		for _, n := range group {
			g.Go(func() error {
				return r.runNode(gctx, n)
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		r.logger.DebugContext(ctx, "level complete", "level", i, "nodes", len(group))
	}
	return nil
}

// runNode transfers inputs into n's module and executes it.
func (r *Runner) runNode(ctx context.Context, n domain.SchedulingNode) error {
	name := domain.ModuleName(n.Module)

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return ports.NewModuleError(name, "rate_limit", err)
		}
	}

	m, ok := n.Module.(ports.ExecutableModule)
	if !ok {
		return ports.NewModuleError(name, "execute", fmt.Errorf("module type %T is not executable", n.Module))
	}

	if err := r.transferInputs(m); err != nil {
		return err
	}

	start := time.Now()
	err := m.Execute(ctx, n.Segment)
	elapsed := time.Since(start)

	if r.metrics != nil {
		r.metrics.RecordLatency("module_execute", elapsed, map[string]string{"module": name})
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "module failed", "node", n.String(), "error", err)
		return ports.NewModuleError(name, "execute", err)
	}

	r.logger.DebugContext(ctx, "module executed", "node", n.String(), "duration", elapsed)
	return nil
}

// transferInputs copies the current output of every producer wired into m.
func (r *Runner) transferInputs(m ports.ExecutableModule) error {
	for _, c := range r.manager.ProducersOf(m) {
		producer, ok := c.Producer.(ports.ExecutableModule)
		if !ok {
			return ports.NewModuleError(domain.ModuleName(c.Producer), "output",
				fmt.Errorf("module type %T is not executable", c.Producer))
		}

		value, err := producer.Output(c.OutputIdx)
		if err != nil {
			return ports.NewModuleError(producer.InstanceName(), "output", err)
		}
		if err := m.SetInput(c.InputIdx, value); err != nil {
			return ports.NewModuleError(m.InstanceName(), "set_input", err)
		}
	}
	return nil
}

func (r *Runner) recordRun(status string) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordCounter("network_runs", 1, map[string]string{"status": status})
}

// Levels groups a schedule into execution levels. A node's level is one
// more than the highest level among its scheduled producers, so nodes of
// the same level never feed each other. Within a level, schedule order is
// preserved. The initial segment of a display module has no producers.
func Levels(sched domain.Schedule, mm ports.ModuleManager) [][]domain.SchedulingNode {
	level := make(map[domain.SchedulingNode]int, len(sched))
	var groups [][]domain.SchedulingNode

	for _, n := range sched {
		l := 0
		if !(n.View && n.Segment == domain.SegmentInitial) {
			for _, c := range mm.ProducersOf(n.Module) {
				p := domain.NewNode(c.Producer)
				if domain.IsView(c.Producer) {
					p = domain.NewViewNode(c.Producer, domain.SegmentInitial)
				}
				if pl, ok := level[p]; ok && pl+1 > l {
					l = pl + 1
				}
			}
		}

		level[n] = l
		for len(groups) <= l {
			groups = append(groups, nil)
		}
		groups[l] = append(groups[l], n)
	}

	return groups
}
