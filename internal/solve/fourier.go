package solve

import "math"

// DefaultFourierSamples is the number of grid points CheckFourierConditions
// uses when samples < 2.
const DefaultFourierSamples = 50

// fPrimeFloor is the |f'| level treated as zero by the diagnostic.
const fPrimeFloor = 1e-12

// FourierReport summarises the Newton-Fourier conditions sampled on an interval
type FourierReport struct {
	// ConcavityConstant is true when f'' keeps a single sign on every finite sample
	ConcavityConstant bool `json:"concavityConstant"`

	// FPrimeNonzero is true when |f'| > 1e-12 on every sample
	FPrimeNonzero bool `json:"fPrimeNonzero"`

	// MEstimate is 0.5 * sup|f''| * sup 1/|f'|
	MEstimate float64 `json:"mEstimate"`

	// FSecondMax is sup|f''| over the samples
	FSecondMax float64 `json:"fSecondMax"`
}

// Monotonic reports whether both conditions hold. Newton's method started
// on the side where f*f'' > 0 then converges monotonically.
func (r FourierReport) Monotonic() bool {
	return r.ConcavityConstant && r.FPrimeNonzero
}

// CheckFourierConditions samples f' and f'' on [a, b] and estimates whether
// Newton's method converges monotonically there. The result is advisory and
// never gates a solver run.
func CheckFourierConditions(fPrime, fSecond Func, a, b float64, samples int) FourierReport {
	if samples < 2 {
		samples = DefaultFourierSamples
	}
	if a > b {
		a, b = b, a
	}

	h := (b - a) / float64(samples-1)
	var sign float64
	seen := false
	concavity := true
	nonzero := true
	supFpp, supInvFp := math.Inf(-1), math.Inf(-1)

	for i := 0; i < samples; i++ {
		x := a + float64(i)*h
		fpp := fSecond(x)
		fp := fPrime(x)

		if !math.IsNaN(fpp) && !math.IsInf(fpp, 0) {
			s := signOf(fpp)
			if !seen {
				sign, seen = s, true
			} else if s != sign {
				concavity = false
			}
			supFpp = math.Max(supFpp, math.Abs(fpp))
		}

		if !(math.Abs(fp) > fPrimeFloor) {
			nonzero = false
		}
		if inv := 1 / math.Abs(fp); !math.IsNaN(inv) {
			supInvFp = math.Max(supInvFp, inv)
		}
	}

	return FourierReport{
		ConcavityConstant: concavity,
		FPrimeNonzero:     nonzero,
		MEstimate:         0.5 * supFpp * supInvFp,
		FSecondMax:        supFpp,
	}
}

func signOf(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
