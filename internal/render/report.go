package render

import (
	"fmt"
	"strings"

	"github.com/cwbudde/rootlab/internal/runner"
	"github.com/cwbudde/rootlab/internal/solve"
)

// Report renders a titled iteration table followed by a status panel
func Report(title string, out *runner.Outcome) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(Table(out.Steps))
	b.WriteString("\n")
	b.WriteString(PanelStyle.Render(Summary(out)))
	b.WriteString("\n")

	return b.String()
}

// Summary is the one-block result description used under tables
func Summary(out *runner.Outcome) string {
	status := ConvergedStyle.Render("converged")
	if !out.Converged {
		status = ExhaustedStyle.Render("not converged (iteration budget exhausted)")
	}

	lines := []string{
		fmt.Sprintf("method:     %s", out.Method),
		fmt.Sprintf("status:     %s", status),
		fmt.Sprintf("root:       %.12g", out.Root),
		fmt.Sprintf("iterations: %d", out.Iterations),
		MutedStyle.Render(fmt.Sprintf("elapsed:    %s", out.Elapsed)),
	}
	if s := out.Stagnation; s != nil {
		lines = append(lines, ExhaustedStyle.Render(
			fmt.Sprintf("endpoint %s stayed at %g for %d iterations", s.Side, s.Value, s.Count)))
	}
	return strings.Join(lines, "\n")
}

// Comparison renders a plain-versus-Aitken fixed-point comparison
func Comparison(c *runner.Comparison) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Fixed point without acceleration"))
	b.WriteString("\n")
	b.WriteString(Table(c.Plain.Steps))
	b.WriteString("\n")
	b.WriteString(TitleStyle.Render("Fixed point with Aitken acceleration"))
	b.WriteString("\n")
	b.WriteString(Table(c.Accelerated.Steps))
	b.WriteString("\n")

	saved := fmt.Sprintf("plain: %d iterations, aitken: %d iterations, saved: %d",
		c.Plain.Iterations, c.Accelerated.Iterations, c.Saved())
	b.WriteString(PanelStyle.Render(saved))
	b.WriteString("\n")
	return b.String()
}

// Scan renders the brackets and exact roots found by a scan
func Scan(res *solve.ScanResult) string {
	var b strings.Builder
	if len(res.Brackets) == 0 && len(res.ExactRoots) == 0 {
		b.WriteString(ExhaustedStyle.Render("no sign change found"))
		b.WriteString("\n")
		return b.String()
	}
	for i, br := range res.Brackets {
		fmt.Fprintf(&b, "bracket %d: [%g, %g]\n", i+1, br.A, br.B)
	}
	for _, x := range res.ExactRoots {
		fmt.Fprintf(&b, "exact root: %g\n", x)
	}
	if res.Skipped > 0 {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("%d grid points skipped (non-finite)", res.Skipped)))
		b.WriteString("\n")
	}
	return b.String()
}

// Diagnostic renders a Newton-Fourier report
func Diagnostic(r solve.FourierReport) string {
	verdict := ConvergedStyle.Render("monotonic convergence expected")
	if !r.Monotonic() {
		verdict = ExhaustedStyle.Render("conditions not met: convergence not guaranteed")
	}
	return PanelStyle.Render(strings.Join([]string{
		fmt.Sprintf("f'' keeps its sign: %v", r.ConcavityConstant),
		fmt.Sprintf("f' nonzero:         %v", r.FPrimeNonzero),
		fmt.Sprintf("sup|f''|:           %g", r.FSecondMax),
		fmt.Sprintf("M estimate:         %g", r.MEstimate),
		verdict,
	}, "\n"))
}
