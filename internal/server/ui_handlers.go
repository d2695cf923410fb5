package server

import (
	"net/http"

	"github.com/cwbudde/rootlab/internal/ui"
)

// handleIndex handles GET /
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	jobs := s.jobs.ListJobs()
	items := make([]ui.RunListItem, len(jobs))
	for i, job := range jobs {
		expression := job.Config.Func
		if expression == "" {
			expression = job.Config.G
		}
		items[i] = ui.RunListItem{
			ID:         job.ID,
			State:      string(job.State),
			Method:     string(job.Config.Method),
			Expression: expression,
			Root:       float64(job.Root),
			Iterations: job.Iterations,
			Converged:  job.Converged,
			StartTime:  job.StartTime,
			EndTime:    job.EndTime,
			Error:      job.Error,
		}
	}

	if err := ui.RunList(items).Render(r.Context(), w); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
}
