package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/chart"
	"github.com/cwbudde/rootlab/internal/expr"
	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
	"github.com/cwbudde/rootlab/internal/store"
)

var (
	solveFlags problemFlags
	saveRun    bool
	plotPath   string
	csvPath    string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run one solver and print its iteration table",
	Long: `Runs a single root-finding method and prints every iteration.

  rootlab solve -m bisection -f "x^2 - 2" --a 1 --b 2
  rootlab solve -m newton -f "x^3 - x - 1" --deriv "3*x^2 - 1" --x0 1.5
  rootlab solve -m fixed-point --g "cos(x)" --x0 1 --aitken`,
	RunE: runSolve,
}

func init() {
	solveFlags.register(solveCmd, "bisection")
	solveCmd.Flags().BoolVar(&saveRun, "save", false, "Persist the run under the data directory")
	solveCmd.Flags().StringVar(&plotPath, "plot", "", "Write a plot of the function and iterates (png, svg, pdf)")
	solveCmd.Flags().StringVar(&csvPath, "csv", "", "Write the iteration history as CSV")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	rc, err := solveFlags.runConfig()
	if err != nil {
		return err
	}

	out, runErr := runner.Run(cmd.Context(), rc)

	var derr *solve.DerivativeError
	if errors.As(runErr, &derr) && len(derr.Partial) > 0 {
		steps := make([]solve.Step, len(derr.Partial))
		for i, s := range derr.Partial {
			steps[i] = s
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.Table(steps))
	}
	if runErr != nil && !errors.Is(runErr, solve.ErrZeroDerivative) && !isPrecondition(runErr) {
		return runErr
	}

	if saveRun {
		if err := persistRun(rc, out, runErr); err != nil {
			return err
		}
	}
	if runErr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), render.ErrorStyle.Render(runErr.Error()))
		return runErr
	}

	fmt.Fprint(cmd.OutOrStdout(), render.Report(title(rc), out))

	if csvPath != "" {
		if err := writeCSV(csvPath, out.Steps); err != nil {
			return err
		}
		slog.Info("wrote iteration history", "path", csvPath)
	}
	if plotPath != "" {
		if err := plotRun(plotPath, rc, out); err != nil {
			return err
		}
		slog.Info("wrote plot", "path", plotPath)
	}
	return nil
}

// isPrecondition reports whether err is an input rejection that is worth
// recording as a failed run
func isPrecondition(err error) bool {
	return errors.Is(err, solve.ErrInvalidBracket) ||
		errors.Is(err, solve.ErrInvalidTolerance) ||
		errors.Is(err, solve.ErrInvalidMaxIter)
}

func title(rc runner.RunConfig) string {
	switch rc.Method {
	case solve.MethodFixedPoint:
		name := "fixed point"
		if rc.Aitken {
			name += " + Aitken"
		}
		return fmt.Sprintf("%s  x = %s  x0 = %g", name, rc.G, rc.X0)
	case solve.MethodNewton:
		return fmt.Sprintf("%s  f(x) = %s  x0 = %g", rc.Method, rc.Func, rc.X0)
	default:
		return fmt.Sprintf("%s  f(x) = %s  on [%g, %g]", rc.Method, rc.Func, rc.A, rc.B)
	}
}

func persistRun(rc runner.RunConfig, out *runner.Outcome, runErr error) error {
	st, err := store.NewFSStore(cfg.General.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	id := uuid.New().String()
	if err := st.SaveRun(store.NewRunRecord(id, rc, out, runErr)); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if out != nil {
		if err := store.SaveTrace(st.BaseDir(), id, out.Steps); err != nil {
			return fmt.Errorf("failed to save trace: %w", err)
		}
	}
	slog.Info("saved run", "run_id", id, "method", rc.Method)
	return nil
}

func writeCSV(path string, steps []solve.Step) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render.WriteCSV(f, steps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// plotRun draws f (or g together with y = x) over the bracket, or over the
// range of the iterates for the open methods
func plotRun(path string, rc runner.RunConfig, out *runner.Outcome) error {
	iterates := make([]float64, 0, len(out.Steps)+1)
	for _, s := range out.Steps {
		iterates = append(iterates, s.Estimate())
	}

	lo, hi := rc.A, rc.B
	if rc.Method == solve.MethodNewton || rc.Method == solve.MethodFixedPoint {
		lo, hi = spanOf(append(iterates, rc.X0))
	}

	var series []chart.Series
	if rc.Method == solve.MethodFixedPoint {
		g, err := expr.Parse(rc.G)
		if err != nil {
			return err
		}
		series = []chart.Series{
			{Name: "g(x)", F: g.Func()},
			{Name: "y = x", F: func(x float64) float64 { return x }},
		}
	} else {
		f, err := expr.Parse(rc.Func)
		if err != nil {
			return err
		}
		series = []chart.Series{{Name: "f(x)", F: f.Func()}}
	}

	return chart.FunctionPlot(path, series, chart.FunctionOptions{
		Title:    title(rc),
		XMin:     lo,
		XMax:     hi,
		Iterates: iterates,
	})
}

// spanOf returns a padded range covering every finite value
func spanOf(xs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo, hi = min(lo, x), max(hi, x)
	}
	if lo > hi {
		return -1, 1
	}
	pad := 0.25 * (hi - lo)
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}
