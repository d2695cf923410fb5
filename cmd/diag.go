package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
)

var (
	diagFlags   problemFlags
	diagSamples int
)

var diagCmd = &cobra.Command{
	Use:   "diag",
	Short: "Check the Newton-Fourier convergence conditions on an interval",
	Long: `Samples f' and f'' on [a, b] and reports whether f'' keeps its sign,
whether f' stays away from zero, and the error constant M. The result is
advisory: Newton may still converge when the conditions fail.

  rootlab diag -f "x^3 - 2*x - 5" --a 2 --b 3`,
	RunE: runDiag,
}

func init() {
	diagFlags.register(diagCmd, "newton")
	diagCmd.Flags().IntVar(&diagSamples, "samples", 0, "Sample points (default from config, 50)")
	rootCmd.AddCommand(diagCmd)
}

func runDiag(cmd *cobra.Command, args []string) error {
	if diagFlags.fn == "" {
		return errors.New("diag requires --func")
	}
	if !(diagFlags.a < diagFlags.b) {
		return fmt.Errorf("%w: need a < b, got [%g, %g]", solve.ErrInvalidRange, diagFlags.a, diagFlags.b)
	}

	samples := diagSamples
	if samples <= 0 {
		samples = cfg.Solver.FourierSamples
	}

	report, err := runner.Diagnose(runner.RunConfig{
		Method: solve.MethodNewton,
		Func:   diagFlags.fn,
		Deriv:  diagFlags.deriv,
		A:      diagFlags.a,
		B:      diagFlags.b,
	}, samples)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, render.TitleStyle.Render(fmt.Sprintf("newton diagnostic  f(x) = %s  on [%g, %g]", diagFlags.fn, diagFlags.a, diagFlags.b)))
	fmt.Fprintln(w, render.Diagnostic(report))
	return nil
}
