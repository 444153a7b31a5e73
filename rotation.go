package kerr

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// r2 is a rotation about the 2nd (y) axis.
func r2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// mulVec3 multiplies a 3x3 matrix by a 3-vector. No dimension check: callers
// only ever feed it the rotations above.
func mulVec3(m *mat.Dense, v []float64) []float64 {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, v))
	return []float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

// sphericalTriad returns the standard orthonormal spherical basis (ê_r, ê_θ,
// ê_φ) at (θ, φ), expressed in world Cartesian components. This is the
// "BL-aligned orthonormal triad" of spec.md §4.2 step 2 — BL coordinates
// share Kerr's asymptotic spherical angles, so the triad is built the same
// way flat-space spherical unit vectors are, evaluated at the observer's
// (θ₀, φ₀).
func sphericalTriad(θ, φ float64) (er, eθ, eφ []float64) {
	sθ, cθ := math.Sincos(θ)
	sφ, cφ := math.Sincos(φ)
	er = []float64{sθ * cφ, sθ * sφ, cθ}
	eθ = []float64{cθ * cφ, cθ * sφ, -sθ}
	eφ = []float64{-sφ, cφ, 0}
	return
}
