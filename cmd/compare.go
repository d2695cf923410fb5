package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/chart"
	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
)

var (
	compareFlags    problemFlags
	comparePlotPath string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare plain and Aitken-accelerated fixed-point iteration",
	Long: `Runs fixed-point iteration twice from the same start, once plain and once
with Aitken acceleration, and reports how many iterations acceleration saved.

  rootlab compare --g "cos(x)" --x0 1 --plot errors.png`,
	RunE: runCompare,
}

func init() {
	compareFlags.register(compareCmd, "fixed-point")
	compareCmd.Flags().StringVar(&comparePlotPath, "plot", "", "Write the error estimates of both runs on a log scale")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	compareFlags.method = string(solve.MethodFixedPoint)
	rc, err := compareFlags.runConfig()
	if err != nil {
		return err
	}

	c, err := runner.Compare(cmd.Context(), rc)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), render.Comparison(c))

	if comparePlotPath != "" {
		err := chart.ErrorPlot(comparePlotPath, "fixed point  x = "+rc.G, map[string][]solve.Step{
			"plain":  c.Plain.Steps,
			"aitken": c.Accelerated.Steps,
		})
		if err != nil {
			return err
		}
		slog.Info("wrote plot", "path", comparePlotPath)
	}
	return nil
}
