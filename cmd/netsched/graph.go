package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-netsched/internal/domain"
	"github.com/ahrav/go-netsched/internal/network"
)

func (c *cli) graphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph <network>",
		Short: "Print a summary of a network as text or Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mm, sched, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			// A cyclic network is still drawn, just without positions.
			order, err := sched.ScheduleModules(mm.Modules())
			if err != nil && !isCycle(err) {
				return err
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "dot":
				dot, err := network.RenderDOT(mm, order)
				if err != nil {
					return fmt.Errorf("render dot: %w", err)
				}
				fmt.Fprint(out, dot)
			case "text", "":
				renderText(out, mm, order, err)
			default:
				return fmt.Errorf("unknown format %q: use text or dot", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or dot")
	return cmd
}

// renderText writes modules, connections and either the schedule or the
// reason there is none.
func renderText(w io.Writer, mm *network.Manager, order domain.Schedule, schedErr error) {
	conns := mm.Connections()
	fmt.Fprintf(w, "Network: %d modules, %d connections\n", mm.Len(), len(conns))

	fmt.Fprintln(w, "\nModules:")
	for _, m := range mm.Modules() {
		kind := "module"
		if domain.IsView(m) {
			kind = "viewer"
		}
		fmt.Fprintf(w, "  %-16s %s\n", m.InstanceName(), kind)
	}

	fmt.Fprintln(w, "\nConnections:")
	if len(conns) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, conn := range conns {
		fmt.Fprintf(w, "  %s:%d -> %s:%d\n",
			conn.Producer.InstanceName(), conn.OutputIdx,
			conn.Consumer.InstanceName(), conn.InputIdx)
	}

	if schedErr != nil {
		fmt.Fprintf(w, "\nUnschedulable: %v\n", schedErr)
		return
	}
	fmt.Fprintln(w, "\nSchedule:")
	for i, n := range order {
		fmt.Fprintf(w, "  %3d  %s\n", i+1, n)
	}
}
