package kerr

import (
	"fmt"
	"math"
)

// OrbitDirection tags the sense of circular disc orbits relative to the
// black hole's spin, the way the teacher tags control laws with a
// stringable enum.
type OrbitDirection uint8

const (
	// Prograde orbits co-rotate with the black hole's spin.
	Prograde OrbitDirection = iota + 1
	// Retrograde orbits counter-rotate.
	Retrograde
)

// String implements fmt.Stringer.
func (d OrbitDirection) String() string {
	switch d {
	case Prograde:
		return "prograde"
	case Retrograde:
		return "retrograde"
	default:
		panic("unknown orbit direction")
	}
}

// BlackHole is a Kerr black hole: mass M (geometric units, M=1 in
// computation) and dimensionless spin a ∈ [0, M).
type BlackHole struct {
	Mass float64
	Spin float64
}

// NewBlackHole validates and returns a BlackHole. This is a configuration
// error per spec.md §7: it fails fast and is never produced mid-render.
func NewBlackHole(mass, spin float64) (BlackHole, error) {
	if mass <= 0 {
		return BlackHole{}, &ConfigError{Field: "mass", Msg: fmt.Sprintf("must be > 0, got %v", mass)}
	}
	if spin < 0 || spin >= mass {
		return BlackHole{}, &ConfigError{Field: "spin", Msg: fmt.Sprintf("must satisfy 0 <= a < M (M=%v), got %v", mass, spin)}
	}
	return BlackHole{Mass: mass, Spin: spin}, nil
}

// Horizon returns the outer event horizon radius r₊ = M + sqrt(M²-a²).
func (bh BlackHole) Horizon() float64 {
	return bh.Mass + math.Sqrt(bh.Mass*bh.Mass-bh.Spin*bh.Spin)
}

// IsSchwarzschild reports whether the spin is (numerically) zero, in which
// case orbit direction is semantically ignored throughout the package.
func (bh BlackHole) IsSchwarzschild() bool {
	return bh.Spin < zeroε
}

// ISCO returns the innermost stable circular orbit radius for the given
// orbit direction, via the Bardeen–Press–Teukolsky formula. For a
// Schwarzschild hole (a=0) it returns 6M regardless of direction.
func (bh BlackHole) ISCO(dir OrbitDirection) float64 {
	if bh.IsSchwarzschild() {
		return 6 * bh.Mass
	}
	m, a := bh.Mass, bh.Spin/bh.Mass // â = a/M, the dimensionless spin
	z1 := 1 + math.Cbrt(1-a*a)*(math.Cbrt(1+a)+math.Cbrt(1-a))
	z2 := math.Sqrt(3*a*a + z1*z1)
	var s float64
	switch dir {
	case Prograde:
		s = -1
	case Retrograde:
		s = 1
	default:
		panic("unknown orbit direction")
	}
	return m * (3 + z2 + s*math.Sqrt((3-z1)*(3+z1+2*z2)))
}
