package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/chart"
	"github.com/cwbudde/rootlab/internal/expr"
	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
)

var (
	scanFlags    problemFlags
	scanFrom     float64
	scanTo       float64
	scanStep     float64
	scanOnly     bool
	scanPlotPath string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Locate sign changes on a grid, then solve inside each bracket",
	Long: `Walks f over [from, to] in fixed steps and reports every sub-interval where
f changes sign. Unless --only is given, the chosen method is then run on each
bracket: bracketing methods use the interval directly, Newton starts at its
midpoint and fixed point at the endpoint with the smaller residual.

  rootlab scan -f "x^3 - 2*x - 5" --from -5 --to 5 -m newton`,
	RunE: runScan,
}

func init() {
	scanFlags.register(scanCmd, "bisection")
	scanCmd.Flags().Float64Var(&scanFrom, "from", -10, "Start of the scanned range")
	scanCmd.Flags().Float64Var(&scanTo, "to", 10, "End of the scanned range")
	scanCmd.Flags().Float64Var(&scanStep, "step", 0, "Grid spacing (default from config, 0.5)")
	scanCmd.Flags().BoolVar(&scanOnly, "only", false, "Report brackets without solving")
	scanCmd.Flags().StringVar(&scanPlotPath, "plot", "", "Write a plot of f with the brackets marked")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFlags.fn == "" {
		return errors.New("scan requires --func")
	}
	e, err := expr.Parse(scanFlags.fn)
	if err != nil {
		return err
	}
	f := e.Func()

	step := scanStep
	if step == 0 {
		step = cfg.Solver.ScanStep
	}

	res, err := solve.Scan(f, scanFrom, scanTo, step)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, render.TitleStyle.Render(fmt.Sprintf("scan  f(x) = %s  on [%g, %g] step %g", scanFlags.fn, scanFrom, scanTo, step)))
	fmt.Fprint(w, render.Scan(res))

	if scanPlotPath != "" {
		err := chart.FunctionPlot(scanPlotPath, []chart.Series{{Name: "f(x)", F: f}}, chart.FunctionOptions{
			Title:    "f(x) = " + scanFlags.fn,
			XMin:     scanFrom,
			XMax:     scanTo,
			Brackets: res.Brackets,
		})
		if err != nil {
			return err
		}
		slog.Info("wrote plot", "path", scanPlotPath)
	}

	if scanOnly || len(res.Brackets) == 0 {
		return nil
	}

	base, err := scanFlags.runConfig()
	if err != nil {
		return err
	}

	var g solve.Func
	if base.Method == solve.MethodFixedPoint {
		ge, err := expr.Parse(base.G)
		if err != nil {
			return err
		}
		g = ge.Func()
	}

	for i, br := range res.Brackets {
		rc := base
		switch rc.Method {
		case solve.MethodNewton:
			rc.X0 = br.Midpoint()
		case solve.MethodFixedPoint:
			seed, err := solve.SelectFixedPointSeed(f, g, br.A, br.B)
			if err != nil {
				fmt.Fprintln(w, render.ErrorStyle.Render(fmt.Sprintf("bracket %d: %v", i+1, err)))
				continue
			}
			rc.X0 = seed
		default:
			rc.A, rc.B = br.A, br.B
		}

		out, err := runner.Run(cmd.Context(), rc)
		if err != nil {
			if cmd.Context().Err() != nil {
				return err
			}
			fmt.Fprintln(w, render.ErrorStyle.Render(fmt.Sprintf("bracket %d: %v", i+1, err)))
			continue
		}
		fmt.Fprint(w, render.Report(fmt.Sprintf("bracket %d  [%g, %g]", i+1, br.A, br.B), out))
	}
	return nil
}
