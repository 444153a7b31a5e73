package dopri87

import "math"

// Config holds the PI-style step-control constants of spec.md §4.4.
type Config struct {
	Safety     float64
	Tol        float64
	HMin, HMax float64
}

// DefaultConfig returns the constants from spec.md §4.4.
func DefaultConfig() Config {
	return Config{Safety: 0.9, Tol: 1e-12, HMin: 1e-8, HMax: 0.5}
}

// System evaluates the vector field for one RK stage. Stage is 0-based
// (stage 0 is the initial evaluation at y0). Implementations that need
// per-stage sign bookkeeping (spec.md §4.4's turning-point management)
// inspect/mutate their own state before computing and returning dy/dλ —
// the tableau itself is sign-agnostic.
type System interface {
	Eval(stage int, y []float64) []float64
}

// Step performs one embedded 13-stage evaluation from y0, returning the
// 8th-order solution y8 and the component-wise difference (y8-y7) used as
// the local error vector. It does not decide acceptance or the next step
// size; callers combine ErrNorm with Config via NextStepSize.
func Step(sys System, y0 []float64, h float64) (y8, errVec []float64) {
	n := len(y0)
	k := make([][]float64, Stages)
	ytmp := make([]float64, n)

	for i := 0; i < Stages; i++ {
		copy(ytmp, y0)
		for j := 0; j < i; j++ {
			aij := A[i][j]
			if aij == 0 {
				continue
			}
			for d := 0; d < n; d++ {
				ytmp[d] += h * aij * k[j][d]
			}
		}
		k[i] = sys.Eval(i, ytmp)
	}

	y8 = make([]float64, n)
	y7 := make([]float64, n)
	copy(y8, y0)
	copy(y7, y0)
	for i := 0; i < Stages; i++ {
		for d := 0; d < n; d++ {
			y8[d] += h * B8[i] * k[i][d]
			y7[d] += h * B7[i] * k[i][d]
		}
	}
	errVec = make([]float64, n)
	for d := 0; d < n; d++ {
		errVec[d] = y8[d] - y7[d]
	}
	return y8, errVec
}

// ErrNorm returns the max-coordinate-wise local error estimate of spec.md
// §4.4.
func ErrNorm(errVec []float64) float64 {
	max := 0.0
	for _, e := range errVec {
		if a := math.Abs(e); a > max {
			max = a
		}
	}
	return max
}

// NextStepSize implements spec.md §4.4's PI-style controller:
// h_next = h * min(5, max(0.2, safety*(tol/err)^(1/8))), clamped to
// [h_min, h_max]. An effectively-zero error (err < 1e-14) expands h by x5
// directly, matching the spec's explicit carve-out.
func NextStepSize(cfg Config, h, err float64) float64 {
	var factor float64
	if err < 1e-14 {
		factor = 5
	} else {
		factor = cfg.Safety * math.Pow(cfg.Tol/err, 1.0/8.0)
		if factor > 5 {
			factor = 5
		} else if factor < 0.2 {
			factor = 0.2
		}
	}
	hNext := h * factor
	if hNext < cfg.HMin {
		hNext = cfg.HMin
	} else if hNext > cfg.HMax {
		hNext = cfg.HMax
	}
	return hNext
}

// Accept reports whether a step with the given error estimate should be
// accepted: err <= tol, or h is already at h_min (spec.md §4.4's
// reject-and-retry rule, with h_min as the forced-accept floor).
func Accept(cfg Config, h, err float64) bool {
	return err <= cfg.Tol || h <= cfg.HMin
}
