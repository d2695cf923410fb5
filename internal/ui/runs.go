// Package ui renders the HTML pages served by the solver server.
package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// RunListItem is one row of the run list page
type RunListItem struct {
	ID         string
	State      string
	Method     string
	Expression string
	Root       float64
	Iterations int
	Converged  bool
	StartTime  time.Time
	EndTime    *time.Time
	Error      string
}

func (it RunListItem) result() string {
	switch {
	case it.Error != "":
		return it.Error
	case it.State != "completed":
		return "-"
	case it.Converged:
		return "root " + strconv.FormatFloat(it.Root, 'g', 12, 64)
	default:
		return "exhausted at " + strconv.FormatFloat(it.Root, 'g', 12, 64)
	}
}

func (it RunListItem) duration() string {
	if it.EndTime == nil {
		return "-"
	}
	return it.EndTime.Sub(it.StartTime).Round(time.Microsecond).String()
}

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>rootlab runs</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { padding: 0.3rem 0.8rem; border-bottom: 1px solid #ddd; text-align: left; }
.state-completed { color: #2a7; }
.state-failed { color: #c33; }
.state-cancelled { color: #888; }
</style>
</head>
<body>
<h1>Runs</h1>
`

// RunList renders all runs, newest first as given
func RunList(items []RunListItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}
		if len(items) == 0 {
			if _, err := io.WriteString(w, "<p>No runs yet.</p>\n</body>\n</html>\n"); err != nil {
				return err
			}
			return nil
		}

		if _, err := io.WriteString(w, "<table>\n<tr><th>ID</th><th>State</th><th>Method</th><th>Expression</th><th>Iterations</th><th>Result</th><th>Duration</th><th>Trace</th></tr>\n"); err != nil {
			return err
		}
		for _, it := range items {
			_, err := fmt.Fprintf(w,
				"<tr><td><code>%s</code></td><td class=\"state-%s\">%s</td><td>%s</td><td><code>%s</code></td><td>%d</td><td>%s</td><td>%s</td><td><a href=\"/api/v1/runs/%s/trace.csv\">csv</a></td></tr>\n",
				templ.EscapeString(it.ID),
				templ.EscapeString(it.State),
				templ.EscapeString(it.State),
				templ.EscapeString(it.Method),
				templ.EscapeString(it.Expression),
				it.Iterations,
				templ.EscapeString(it.result()),
				templ.EscapeString(it.duration()),
				templ.EscapeString(it.ID),
			)
			if err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</table>\n</body>\n</html>\n")
		return err
	})
}
