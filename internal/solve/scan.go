package solve

import (
	"log/slog"
	"math"
)

// ScanResult holds the outcome of a sign-change scan
type ScanResult struct {
	// Brackets are the grid sub-intervals over which f changes sign, in ascending order
	Brackets []Bracket `json:"brackets"`

	// ExactRoots are grid points where f evaluated to exactly zero
	ExactRoots []float64 `json:"exactRoots,omitempty"`

	// Skipped counts grid points where f was NaN or Inf
	Skipped int `json:"skipped,omitempty"`
}

// Scan walks the grid xMin, xMin+step, ... <= xMax and reports every
// sub-interval [x-step, x] where f(x-step)*f(x) < 0. Grid points are computed
// as xMin + i*step so the walk does not accumulate rounding drift. Points
// where f is not finite are skipped and the comparison resumes from the
// next finite value.
func Scan(f Func, xMin, xMax, step float64) (*ScanResult, error) {
	if !(xMin < xMax) {
		return nil, ErrInvalidRange
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, ErrInvalidStep
	}

	res := &ScanResult{}
	n := int(math.Floor((xMax-xMin)/step + 1e-9))

	havePrev := false
	var xPrev, fPrev float64
	for i := 0; i <= n; i++ {
		x := xMin + float64(i)*step
		fx := f(x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) {
			res.Skipped++
			slog.Debug("scan skipped non-finite value", "x", x)
			havePrev = false
			continue
		}
		if fx == 0 {
			res.ExactRoots = append(res.ExactRoots, x)
		}
		if havePrev && fPrev*fx < 0 {
			res.Brackets = append(res.Brackets, Bracket{A: xPrev, B: x})
			slog.Debug("scan found sign change", "a", xPrev, "b", x)
		}
		xPrev, fPrev, havePrev = x, fx, true
	}

	return res, nil
}
