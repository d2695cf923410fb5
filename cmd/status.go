package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/rootlab/internal/render"
	"github.com/cwbudde/rootlab/internal/server"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [run-id]",
	Short: "Query server status or a specific run",
	Long: `Queries the server for run status information.
If no run-id is provided, lists all runs.
If run-id is provided, shows detailed status for that run.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(cmd.OutOrStdout(), fmt.Sprintf("%s/api/v1/runs", serverURL))
	}
	jobID := args[0]
	return getJobStatus(cmd.OutOrStdout(), fmt.Sprintf("%s/api/v1/runs/%s", serverURL, jobID), jobID)
}

func fetchJSON(url string, v any) (int, error) {
	resp, err := http.Get(url)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("server returned error: %s", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func listJobs(w io.Writer, url string) error {
	var jobs []server.Job
	if _, err := fetchJSON(url, &jobs); err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Fprintln(w, "No runs found")
		return nil
	}

	fmt.Fprintf(w, "Found %d run(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Fprintf(w, "Run ID: %s\n", job.ID)
		fmt.Fprintf(w, "  State: %s\n", job.State)
		fmt.Fprintf(w, "  Method: %s\n", job.Config.Method)
		if job.State == server.StateCompleted {
			fmt.Fprintf(w, "  Root: %.12g (%d iterations, converged=%v)\n", float64(job.Root), job.Iterations, job.Converged)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func getJobStatus(w io.Writer, url, jobID string) error {
	var job server.Job
	status, err := fetchJSON(url, &job)
	if status == http.StatusNotFound {
		return fmt.Errorf("run not found: %s", jobID)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Run: %s\n", job.ID)
	fmt.Fprintf(w, "State: %s\n", job.State)
	fmt.Fprintln(w)

	c := job.Config
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "  Method: %s\n", c.Method)
	if c.Func != "" {
		fmt.Fprintf(w, "  f(x): %s\n", c.Func)
	}
	if c.G != "" {
		fmt.Fprintf(w, "  g(x): %s\n", c.G)
	}
	fmt.Fprintf(w, "  Tolerance: %g\n", c.Tol)
	fmt.Fprintf(w, "  Max iterations: %d\n", c.MaxIter)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Result:")
	switch {
	case job.Error != "":
		fmt.Fprintf(w, "  %s\n", render.ErrorStyle.Render(job.Error))
	case job.State == server.StateCompleted:
		fmt.Fprintf(w, "  Root: %.12g\n", float64(job.Root))
		fmt.Fprintf(w, "  Iterations: %d\n", job.Iterations)
		fmt.Fprintf(w, "  Converged: %v\n", job.Converged)
		fmt.Fprintf(w, "  Elapsed: %s\n", job.Elapsed.Round(time.Microsecond))
	default:
		fmt.Fprintln(w, "  pending")
	}
	return nil
}
