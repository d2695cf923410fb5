// Package render formats solver histories for terminals and files.
package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/rootlab/internal/solve"
)

// Table renders steps as an aligned plain-text table with a "k" column
// followed by the method-specific columns. Values that are absent (NaN)
// print as "-". An empty history renders as the empty string.
func Table(steps []solve.Step) string {
	if len(steps) == 0 {
		return ""
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)

	cols := steps[0].Columns()
	fmt.Fprintf(w, "k\t%s\t\n", strings.Join(cols, "\t"))
	for _, s := range steps {
		cells := make([]string, 0, len(cols)+1)
		cells = append(cells, strconv.Itoa(s.Index()))
		for i, v := range s.Values() {
			cells = append(cells, formatValue(cols[i], v))
		}
		fmt.Fprintf(w, "%s\t\n", strings.Join(cells, "\t"))
	}
	w.Flush()

	return buf.String()
}

func formatValue(col string, v float64) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case col == "error" || strings.HasPrefix(col, "f"):
		return strconv.FormatFloat(v, 'e', 3, 64)
	default:
		return strconv.FormatFloat(v, 'f', 10, 64)
	}
}

// WriteCSV writes steps as CSV with a header row. Absent values are empty cells.
func WriteCSV(w io.Writer, steps []solve.Step) error {
	cw := csv.NewWriter(w)
	if len(steps) > 0 {
		if err := cw.Write(append([]string{"k"}, steps[0].Columns()...)); err != nil {
			return err
		}
	}
	for _, s := range steps {
		row := []string{strconv.Itoa(s.Index())}
		for _, v := range s.Values() {
			if math.IsNaN(v) {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
