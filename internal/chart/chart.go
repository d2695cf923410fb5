// Package chart draws functions, brackets and solver iterates with gonum/plot.
// The output format follows the file extension (png, svg, pdf, ...).
package chart

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/cwbudde/rootlab/internal/solve"
)

// DefaultSamples is the number of points used to trace a curve
const DefaultSamples = 400

// ErrNothingToPlot is returned when no finite point could be drawn
var ErrNothingToPlot = errors.New("chart: no finite values to draw")

// Series is a named curve
type Series struct {
	Name string
	F    solve.Func
}

// FunctionOptions configures FunctionPlot
type FunctionOptions struct {
	Title    string
	XMin     float64
	XMax     float64
	Samples  int
	Brackets []solve.Bracket
	Iterates []float64
}

// FunctionPlot draws each series over [XMin, XMax] together with the x axis,
// the bracket endpoints and the iterates on the first series, and saves the
// figure to path.
func FunctionPlot(path string, series []Series, opts FunctionOptions) error {
	if !(opts.XMin < opts.XMax) {
		return solve.ErrInvalidRange
	}
	if opts.Samples < 2 {
		opts.Samples = DefaultSamples
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = opts.XMin, opts.XMax
	p.Add(plotter.NewGrid())

	drawn := 0
	for i, s := range series {
		segments := sample(s.F, opts.XMin, opts.XMax, opts.Samples)
		for j, seg := range segments {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return fmt.Errorf("chart: %s: %w", s.Name, err)
			}
			l.Color = plotutil.Color(i)
			l.Width = vg.Points(1.5)
			p.Add(l)
			if j == 0 {
				p.Legend.Add(s.Name, l)
			}
			drawn += len(seg)
		}
	}
	if drawn == 0 {
		return ErrNothingToPlot
	}

	axis, err := plotter.NewLine(plotter.XYs{{X: opts.XMin, Y: 0}, {X: opts.XMax, Y: 0}})
	if err != nil {
		return err
	}
	axis.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(axis)

	if len(series) > 0 {
		f := series[0].F
		if len(opts.Brackets) > 0 {
			pts := make(plotter.XYs, 0, 2*len(opts.Brackets))
			for _, b := range opts.Brackets {
				pts = append(pts, plotter.XY{X: b.A, Y: 0}, plotter.XY{X: b.B, Y: 0})
			}
			if err := addScatter(p, "brackets", pts, draw.BoxGlyph{}, 1); err != nil {
				return err
			}
		}
		if len(opts.Iterates) > 0 {
			pts := make(plotter.XYs, 0, len(opts.Iterates))
			for _, x := range opts.Iterates {
				if y := f(x); isFinite(x) && isFinite(y) {
					pts = append(pts, plotter.XY{X: x, Y: y})
				}
			}
			if len(pts) > 0 {
				if err := addScatter(p, "iterates", pts, draw.CircleGlyph{}, 2); err != nil {
					return err
				}
			}
		}
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// ErrorPlot draws the error estimate of each history against the iteration
// index on a logarithmic y axis. Non-positive errors are left out.
func ErrorPlot(path, title string, histories map[string][]solve.Step) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "error"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	var args []interface{}
	for _, name := range slices.Sorted(maps.Keys(histories)) {
		pts := make(plotter.XYs, 0, len(histories[name]))
		for _, s := range histories[name] {
			if e := s.ErrorEstimate(); e > 0 && isFinite(e) {
				pts = append(pts, plotter.XY{X: float64(s.Index()), Y: e})
			}
		}
		if len(pts) > 0 {
			args = append(args, name, pts)
		}
	}
	if len(args) == 0 {
		return ErrNothingToPlot
	}

	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func addScatter(p *plot.Plot, name string, pts plotter.XYs, shape draw.GlyphDrawer, color int) error {
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Color = plotutil.Color(color)
	s.GlyphStyle.Radius = vg.Points(3)
	p.Add(s)
	p.Legend.Add(name, s)
	return nil
}

// sample evaluates f on an even grid and splits the curve wherever f is
// not finite, so poles are not joined across.
func sample(f solve.Func, lo, hi float64, n int) []plotter.XYs {
	var segments []plotter.XYs
	var cur plotter.XYs
	h := (hi - lo) / float64(n-1)
	for i := 0; i < n; i++ {
		x := lo + float64(i)*h
		y := f(x)
		if !isFinite(y) {
			if len(cur) > 1 {
				segments = append(segments, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, plotter.XY{X: x, Y: y})
	}
	if len(cur) > 1 {
		segments = append(segments, cur)
	}
	return segments
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
