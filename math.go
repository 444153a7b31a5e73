package kerr

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	deg2rad = math.Pi / 180

	// zeroε is the generic "close enough to zero" tolerance used by the
	// vector helpers below. Clamps specific to the geodesic RHS live in
	// geodesic.go and use their own, tighter, thresholds.
	zeroε = 1e-12
)

// norm returns the Euclidean norm of a 3-vector.
func norm(v []float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// unit returns the unit vector of a, or the zero vector if a is (numerically)
// the zero vector.
func unit(a []float64) []float64 {
	n := norm(a)
	if floats.EqualWithinAbs(n, 0, zeroε) {
		return []float64{0, 0, 0}
	}
	b := make([]float64, len(a))
	for i, val := range a {
		b[i] = val / n
	}
	return b
}

// sign returns +1 or -1, treating anything within zeroε of 0 as positive.
// sign_r/sign_θ are always ±1, never 0 — this is the single place that
// invariant is enforced.
func sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, zeroε) {
		return 1
	}
	return v / math.Abs(v)
}

// dotVec performs an inner product via BLAS.
func dotVec(a, b []float64) float64 {
	return mat.Dot(mat.NewVecDense(len(a), a), mat.NewVecDense(len(b), b))
}

// cross performs the 3-vector cross product a×b.
func cross(a, b []float64) []float64 {
	return []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// wrapTheta wraps θ defensively into [0, π] by reflection across the poles.
// This is the numerical safety net of spec.md §3's invariant; genuine polar
// turning points are tracked explicitly via sign_θ in the integrator.
func wrapTheta(θ float64) float64 {
	θ = math.Mod(θ, 2*math.Pi)
	if θ < 0 {
		θ += 2 * math.Pi
	}
	if θ > math.Pi {
		θ = 2*math.Pi - θ
	}
	return θ
}

// wrapPhi wraps φ defensively into [0, 2π).
func wrapPhi(φ float64) float64 {
	φ = math.Mod(φ, 2*math.Pi)
	if φ < 0 {
		φ += 2 * math.Pi
	}
	return φ
}
