// Command stpsim runs a spanning-tree topology simulation from a
// topology description file and reports how it converges.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iti/stpsim"
)

func main() {
	cmd := &cobra.Command{
		Use:           "stpsim",
		Short:         "IEEE 802.1D spanning tree simulator",
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCmd(), newBreakCmd())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func newRunCmd() *cobra.Command {
	var maxTicks int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run <topology-file>",
		Short: "run a topology to convergence and print its final state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)
			defer logger.Sync()

			desc, err := stpsim.ReadTopologyDesc(args[0])
			if err != nil {
				return err
			}

			trace := stpsim.NewTraceManager(verbose, logger)
			topo, err := desc.Build(trace)
			if err != nil {
				return err
			}

			converged := topo.Run(maxTicks)
			logger.Info("simulation finished",
				zap.Bool("converged", converged),
				zap.Int("ticks", topo.Ticks()),
				zap.Bool("loop_free", topo.IsLoopFree()),
			)

			for _, b := range topo.Bridges() {
				fmt.Println(b.Snapshot())
			}
			if !converged {
				return fmt.Errorf("topology did not converge within %d ticks", maxTicks)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 200, "give up if convergence is not reached within this many ticks")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace every BPDU exchange and state transition")
	return cmd
}

func newBreakCmd() *cobra.Command {
	var maxTicks int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "break <topology-file> <bridge-mac> <port>",
		Short: "run a topology to convergence, break one link, and run to reconvergence",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(verbose)
			defer logger.Sync()

			desc, err := stpsim.ReadTopologyDesc(args[0])
			if err != nil {
				return err
			}

			var port int
			if _, err := fmt.Sscanf(args[2], "%d", &port); err != nil {
				return fmt.Errorf("invalid port %q: %w", args[2], err)
			}

			trace := stpsim.NewTraceManager(verbose, logger)
			topo, err := desc.Build(trace)
			if err != nil {
				return err
			}

			if !topo.Run(maxTicks) {
				return fmt.Errorf("topology did not converge before the requested break")
			}
			logger.Info("converged before break", zap.Int("ticks", topo.Ticks()))

			if err := topo.DeleteLink(args[1], port); err != nil {
				return err
			}

			reconverged := topo.Run(maxTicks)
			logger.Info("simulation finished",
				zap.Bool("reconverged", reconverged),
				zap.Int("ticks", topo.Ticks()),
				zap.Bool("loop_free", topo.IsLoopFree()),
			)

			for _, b := range topo.Bridges() {
				fmt.Println(b.Snapshot())
			}
			if !reconverged {
				return fmt.Errorf("topology did not reconverge within %d ticks of the break", maxTicks)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 200, "give up if convergence is not reached within this many ticks")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "trace every BPDU exchange and state transition")
	return cmd
}
