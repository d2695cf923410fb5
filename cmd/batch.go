package main

import (
	"errors"
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/config"
	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/runner"
)

var (
	batchFile    string
	batchWorkers int
	batchSave    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Solve every problem listed in a config file",
	Long: `Runs the [[problems]] (TOML) or problems: (YAML) entries of a config file
concurrently and prints one summary row per problem. Without --file the
problems of the active config are used.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "Problem file (.toml, .yaml)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", runtime.NumCPU(), "Concurrent solves")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "Persist every run under the data directory")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	source := cfg
	if batchFile != "" {
		var err error
		if source, err = config.Load(batchFile); err != nil {
			return err
		}
	}

	problems := source.Batch()
	if len(problems) == 0 {
		return errors.New("no problems configured")
	}

	results := runner.RunBatch(cmd.Context(), problems, batchWorkers)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMETHOD\tROOT\tITERATIONS\tSTATUS")
	fmt.Fprintln(w, "----\t------\t----\t----------\t------")

	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s\t%s\t-\t-\t%s\n", r.Name, r.Config.Method, render.ErrorStyle.Render(r.Err.Error()))
		case r.Outcome.Converged:
			fmt.Fprintf(w, "%s\t%s\t%.12g\t%d\t%s\n", r.Name, r.Config.Method, r.Outcome.Root, r.Outcome.Iterations, render.ConvergedStyle.Render("converged"))
		default:
			fmt.Fprintf(w, "%s\t%s\t%.12g\t%d\t%s\n", r.Name, r.Config.Method, r.Outcome.Root, r.Outcome.Iterations, render.ExhaustedStyle.Render("exhausted"))
		}

		if batchSave && (r.Outcome != nil || isPrecondition(r.Err)) {
			if err := persistRun(r.Config, r.Outcome, r.Err); err != nil {
				return err
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d problems failed\n", failed, len(results))
	}
	return cmd.Context().Err()
}
