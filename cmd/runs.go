package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/store"
)

var (
	runsDataDir   string
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage saved runs",
	Long: `Manage runs saved with --save: list them, show a trace, rerun one to
check that it still reproduces, or clean old ones.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved runs",
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a saved run and its iteration trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var rerunCmd = &cobra.Command{
	Use:   "rerun <run-id>",
	Short: "Rerun a saved run and check that the result is identical",
	Args:  cobra.ExactArgs(1),
	RunE:  runRerun,
}

var cleanRunsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old runs",
	Long: `Delete saved runs based on a retention policy: keep only the newest N,
delete those older than N days, or both.`,
	RunE: runCleanRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(rerunCmd)
	runsCmd.AddCommand(cleanRunsCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "", "Base directory for saved runs (default from config)")

	cleanRunsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N runs (0 = keep all)")
	cleanRunsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete runs older than N days (0 = no age limit)")
	cleanRunsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func openRunStore() (*store.FSStore, error) {
	dir := runsDataDir
	if dir == "" {
		dir = cfg.General.DataDir
	}
	st, err := store.NewFSStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}
	return st, nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	st, err := openRunStore()
	if err != nil {
		return err
	}

	infos, err := st.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tMETHOD\tEXPRESSION\tROOT\tITERATIONS\tSTATUS\tSIZE")
	fmt.Fprintln(w, "------\t---------\t------\t----------\t----\t----------\t------\t----")

	for _, info := range infos {
		size, err := getDirSize(filepath.Join(st.BaseDir(), "runs", info.ID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		status := "converged"
		switch {
		case info.Failed:
			status = "failed"
		case !info.Converged:
			status = "exhausted"
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.10g\t%d\t%s\t%s\n",
			shortID(info.ID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Method,
			info.Expression,
			float64(info.Root),
			info.Iterations,
			status,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Fprintf(out, "\nTotal runs: %d\n", len(infos))
	return nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	st, err := openRunStore()
	if err != nil {
		return err
	}

	rec, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.TitleStyle.Render(fmt.Sprintf("run %s  %s", rec.ID, rec.Config.Method)))
	if rec.Error != "" {
		fmt.Fprintln(out, render.ErrorStyle.Render(rec.Error))
	} else {
		fmt.Fprintf(out, "root %.12g after %d iterations (converged=%v)\n", float64(rec.Root), rec.Iterations, rec.Converged)
	}

	entries, err := store.LoadTrace(st.BaseDir(), rec.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "k\testimate\terror\t")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%.10f\t%.3e\t\n", e.Iteration, float64(e.Estimate), float64(e.Error))
	}
	return w.Flush()
}

func runRerun(cmd *cobra.Command, args []string) error {
	st, err := openRunStore()
	if err != nil {
		return err
	}

	rec, err := st.LoadRun(args[0])
	if err != nil {
		return err
	}

	out, runErr := runner.Run(cmd.Context(), rec.Config)
	if rec.Error != "" {
		if runErr == nil || runErr.Error() != rec.Error {
			return &store.MismatchError{Field: "Error", Expected: rec.Error, Actual: fmt.Sprint(runErr)}
		}
		fmt.Fprintln(cmd.OutOrStdout(), render.ConvergedStyle.Render("reproduced: "+rec.Error))
		return nil
	}
	if runErr != nil {
		return runErr
	}

	if err := rec.Reproduces(out); err != nil {
		return err
	}
	slog.Info("run reproduced", "run_id", rec.ID, "method", rec.Config.Method, "iterations", out.Iterations)
	fmt.Fprint(cmd.OutOrStdout(), render.Report("rerun of "+shortID(rec.ID), out))
	return nil
}

func runCleanRuns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	st, err := openRunStore()
	if err != nil {
		return err
	}

	infos, err := st.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No runs to clean.")
		return nil
	}

	toDelete := selectRunsForDeletion(infos, keepLast, olderThanDays)
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No runs match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d run(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s, %s)\n",
			shortID(info.ID),
			info.Method,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Fprint(out, "\nProceed with deletion? [y/N]: ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.TrimSpace(response)
		if response != "y" && response != "Y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := st.DeleteRun(info.ID); err != nil {
			slog.Error("failed to delete run", "run_id", info.ID, "error", err)
			failed++
		} else {
			slog.Info("deleted run", "run_id", info.ID)
			deleted++
		}
	}

	fmt.Fprintf(out, "\nDeleted %d run(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRunsForDeletion applies the retention policy. A run matching both
// rules is listed once.
func selectRunsForDeletion(infos []store.RunInfo, keepLast int, olderThanDays int) []store.RunInfo {
	var toDelete []store.RunInfo
	selected := make(map[string]bool)

	if olderThanDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -olderThanDays)
		for _, info := range infos {
			if info.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	if keepLast > 0 && len(infos) > keepLast {
		sorted := make([]store.RunInfo, len(infos))
		copy(sorted, infos)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		})

		for _, info := range sorted[:len(sorted)-keepLast] {
			if !selected[info.ID] {
				toDelete = append(toDelete, info)
				selected[info.ID] = true
			}
		}
	}

	return toDelete
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
