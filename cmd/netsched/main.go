// Command netsched loads module networks, checks them for cycles, prints
// their execution order and runs them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-netsched/infrastructure/middleware"
	"github.com/ahrav/go-netsched/infrastructure/modules"
	"github.com/ahrav/go-netsched/internal/application"
	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/network"
	"github.com/ahrav/go-netsched/internal/ports"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli holds state shared by all subcommands once persistent flags are parsed.
type cli struct {
	logLevel  string
	logFormat string
	strategy  string

	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "netsched",
		Short: "Dataflow network scheduler",
		Long: `netsched orders the modules of a dataflow network so that every producer
runs before its consumers, and refuses networks that contain a cycle.

Networks are described in YAML (.yaml/.yml), HCL (.hcl) or Graphviz DOT
(.dot/.gv). Display modules are scheduled twice: a final segment that
consumes the frame and an initial segment that prepares the next one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(c.logLevel, c.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().StringVar(&c.strategy, "strategy", "path-copy", "cycle detection: path-copy or three-color")

	root.AddCommand(c.checkCmd())
	root.AddCommand(c.scheduleCmd())
	root.AddCommand(c.runCmd())
	root.AddCommand(c.graphCmd())
	return root
}

// newLogger builds a slog.Logger writing to w.
func newLogger(levelStr, formatStr string, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q: use debug, info, warn or error", levelStr)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(formatStr) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q: use text or json", formatStr)
	}
}

// load reads a network file and returns its manager and a scheduler over it.
func (c *cli) load(ctx context.Context, path string) (*network.Manager, *application.Scheduler, error) {
	strategy, err := application.ParseCycleStrategy(c.strategy)
	if err != nil {
		return nil, nil, err
	}

	loader, err := application.NewNetworkLoader(
		application.NewDefaultModuleRegistry(),
		application.WithLoaderLogger(c.logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create loader: %w", err)
	}

	mm, err := loader.LoadFromFile(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return mm, application.NewScheduler(mm, application.WithCycleStrategy(strategy)), nil
}

// ─── check ───────────────────────────────────────────────────────────────────

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <network>",
		Short: "Report whether a network contains a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mm, sched, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			nodes := application.SchedulingNodes(mm.Modules())
			if cycle := sched.FindCycle(nodes); cycle != nil {
				cycleErr := domain.NewCyclesDetectedError(cycle)
				fmt.Fprintf(cmd.OutOrStdout(), "CYCLE: %s\n", cycleErr.Path())
				return cycleErr
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: no cycles (%d modules, %d nodes)\n", mm.Len(), len(nodes))
			return nil
		},
	}
}

// ─── schedule ────────────────────────────────────────────────────────────────

func (c *cli) scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <network>",
		Short: "Print the execution order of a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mm, sched, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			order, err := sched.ScheduleModules(mm.Modules())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, n := range order {
				fmt.Fprintf(out, "%3d  %s\n", i+1, n)
			}
			return nil
		},
	}
}

// ─── run ─────────────────────────────────────────────────────────────────────

func (c *cli) runCmd() *cobra.Command {
	var (
		concurrency  int
		rateLimit    float64
		printMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "run <network>",
		Short: "Execute a network once and print what its viewers received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mm, sched, err := c.load(ctx, args[0])
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			metrics := middleware.NewPrometheusMetricsWith(reg)

			opts := []application.RunnerOption{
				application.WithLogger(c.logger),
				application.WithMetrics(metrics),
				application.WithConcurrency(concurrency),
			}
			if rateLimit > 0 {
				opts = append(opts, application.WithRateLimit(rateLimit, 1))
			}

			runner := application.NewRunner(mm, middleware.NewObservedScheduler(ctx, sched, metrics), opts...)
			if _, err := runner.RunAll(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, m := range mm.Modules() {
				viewer, ok := m.(*modules.ViewerModule)
				if !ok {
					continue
				}
				for _, frame := range viewer.Frames() {
					fmt.Fprintf(out, "%s: %v\n", viewer.InstanceName(), frame)
				}
			}

			if printMetrics {
				return writeMetrics(cmd.ErrOrStderr(), reg)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "modules executed in parallel within a level (1 runs sequentially)")
	cmd.Flags().Float64Var(&rateLimit, "rate", 0, "maximum module executions per second (0 is unlimited)")
	cmd.Flags().BoolVar(&printMetrics, "metrics", false, "print Prometheus metrics to stderr after the run")
	return cmd
}

// writeMetrics dumps every gathered family in the Prometheus text format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return ports.NewMetricsError("*", "gather", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return ports.NewMetricsError(mf.GetName(), "write", err)
		}
	}
	return nil
}

// isCycle reports whether err is a cycle rejection.
func isCycle(err error) bool {
	return errors.Is(err, domain.ErrCyclesDetected)
}
