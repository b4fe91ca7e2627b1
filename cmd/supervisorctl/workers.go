package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/execution-hub/supervisor/internal/domain/worker"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List the worker catalogue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		printWorkers(cmd, c.Registry().All())
		return nil
	},
}

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health [worker-id]",
	Short: "Probe one worker, or all workers when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newContainer()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd, healthTimeout)
		defer cancel()

		if len(args) == 1 {
			d, err := c.Monitor().Check(ctx, args[0])
			if err != nil {
				return err
			}
			printWorkers(cmd, []worker.Descriptor{d})
			return nil
		}
		c.Monitor().SweepOnce(ctx)
		printWorkers(cmd, c.Registry().All())
		return nil
	},
}

func init() {
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 30*time.Second, "overall timeout")
}

func printWorkers(cmd *cobra.Command, workers []worker.Descriptor) {
	out := cmd.OutOrStdout()
	if len(workers) == 0 {
		fmt.Fprintln(out, "No workers registered.")
		return
	}
	fmt.Fprintf(out, "%-32s %-24s %-9s %-30s\n", "ID", "Name", "Health", "Base URL")
	fmt.Fprintln(out, repeatStr("-", 98))
	for _, w := range workers {
		fmt.Fprintf(out, "%-32s %-24s %-9s %-30s\n", truncStr(w.ID, 31), truncStr(w.Name(), 23), w.Health, w.BaseURL)
	}
}
