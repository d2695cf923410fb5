package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/expr"
	"github.com/cwbudde/rootlab/internal/opt"
	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
)

var (
	seedFlags   problemFlags
	seedLo      float64
	seedHi      float64
	seedIters   int
	seedPop     int
	seedRandom  int64
	seedNoSolve bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Find a starting point with the mayfly optimizer, then refine it",
	Long: `Minimizes f(x)^2 over [lo, hi] with the mayfly algorithm to obtain a
starting point when no bracket is known, then runs Newton (or fixed point
with --g) from it.

  rootlab seed -f "exp(-x) - x" --lo -5 --hi 5`,
	RunE: runSeed,
}

func init() {
	seedFlags.register(seedCmd, "newton")
	seedCmd.Flags().Float64Var(&seedLo, "lo", -10, "Lower end of the search range")
	seedCmd.Flags().Float64Var(&seedHi, "hi", 10, "Upper end of the search range")
	seedCmd.Flags().IntVar(&seedIters, "iters", 0, "Optimizer iterations (default from config)")
	seedCmd.Flags().IntVar(&seedPop, "pop", 0, "Optimizer population size (default from config)")
	seedCmd.Flags().Int64Var(&seedRandom, "seed", 0, "Random seed (default from config)")
	seedCmd.Flags().BoolVar(&seedNoSolve, "no-solve", false, "Only report the seed")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedFlags.fn == "" {
		return errors.New("seed requires --func")
	}
	e, err := expr.Parse(seedFlags.fn)
	if err != nil {
		return err
	}

	iters, pop, rnd := cfg.Optimizer.MaxIters, cfg.Optimizer.PopSize, cfg.Optimizer.Seed
	if seedIters > 0 {
		iters = seedIters
	}
	if seedPop > 0 {
		pop = seedPop
	}
	if cmd.Flags().Changed("seed") {
		rnd = seedRandom
	}

	s, err := opt.SeedSearch(opt.NewMayfly(iters, pop, rnd), e.Func(), seedLo, seedHi)
	if err != nil {
		return err
	}
	slog.Info("seed found", "x", s.X, "residual", s.Residual)

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, render.TitleStyle.Render(fmt.Sprintf("seed  f(x) = %s  on [%g, %g]", seedFlags.fn, seedLo, seedHi)))
	fmt.Fprintf(w, "x0 = %.12g  |f(x0)| = %.3e\n\n", s.X, s.Residual)

	if seedNoSolve {
		return nil
	}

	if seedFlags.g != "" {
		seedFlags.method = string(solve.MethodFixedPoint)
	}
	rc, err := seedFlags.runConfig()
	if err != nil {
		return err
	}
	if rc.Method != solve.MethodNewton && rc.Method != solve.MethodFixedPoint {
		return fmt.Errorf("seed refines with newton or fixed-point, not %s", rc.Method)
	}
	rc.X0 = s.X

	out, err := runner.Run(cmd.Context(), rc)
	if err != nil {
		return err
	}
	fmt.Fprint(w, render.Report(title(rc), out))
	return nil
}
