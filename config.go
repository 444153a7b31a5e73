package kerr

import (
	"time"

	"github.com/spf13/viper"
)

// Tolerances collects the numerical constants of the adaptive integrator
// (spec.md §4.4). Grounded on the teacher's smdConfig()/_smdconfig viper
// overlay in config.go, narrowed to this domain: there is no SPICE/ephemeris
// directory to discover, only integration constants that a caller might
// reasonably want to retune for a particular preset.
type Tolerances struct {
	Safety          float64 // PI step-control safety factor.
	Tol             float64 // target local error per step.
	HMin, HMax      float64 // clamp on the adaptive step size.
	MaxSteps        int     // per-ray step budget before heuristic termination.
	CaptureFactor   float64 // capture radius = r₊ * CaptureFactor.
	EscapeRadius    float64 // escape radius, in units of M.
	BisectionMaxIter int    // cap on equator-crossing bisection iterations.
	BisectionθTol   float64 // |θ-π/2| convergence threshold for bisection.
	BisectionλTol   float64 // λ-interval convergence threshold for bisection.

	// DiscOuterRadius is r_out, the outer edge of the thin disc (units of
	// M). r_in is always bh.ISCO(direction); spec.md §4.4/§4.6 reference
	// r_out without pinning a numeric default, so this is the one domain
	// constant this module pins on the caller's behalf.
	DiscOuterRadius float64

	// DiagnosticTimeout bounds how long the optional startup diagnostic
	// grid (spec.md §4.5) is allowed to run; it is not part of the physics
	// and has no effect on render output.
	DiagnosticTimeout time.Duration
}

// DefaultTolerances returns the compiled-in defaults from spec.md §4.4.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Safety:           0.9,
		Tol:              1e-12,
		HMin:             1e-8,
		HMax:             0.5,
		MaxSteps:         10000,
		CaptureFactor:    1.01,
		EscapeRadius:     1000,
		BisectionMaxIter: 20,
		BisectionθTol:    1e-12,
		BisectionλTol:    1e-15,
		DiscOuterRadius:  50.0,
		DiagnosticTimeout: 5 * time.Second,
	}
}

// LoadTolerances overlays a "tolerances" section of v onto DefaultTolerances,
// the way the teacher's smdConfig overlays conf.toml onto zero-value
// defaults. Any key absent from v keeps its compiled-in default — embedders
// who don't care about viper just call DefaultTolerances directly.
func LoadTolerances(v *viper.Viper) Tolerances {
	t := DefaultTolerances()
	if v == nil {
		return t
	}
	if v.IsSet("tolerances.safety") {
		t.Safety = v.GetFloat64("tolerances.safety")
	}
	if v.IsSet("tolerances.tol") {
		t.Tol = v.GetFloat64("tolerances.tol")
	}
	if v.IsSet("tolerances.h_min") {
		t.HMin = v.GetFloat64("tolerances.h_min")
	}
	if v.IsSet("tolerances.h_max") {
		t.HMax = v.GetFloat64("tolerances.h_max")
	}
	if v.IsSet("tolerances.max_steps") {
		t.MaxSteps = v.GetInt("tolerances.max_steps")
	}
	if v.IsSet("tolerances.capture_factor") {
		t.CaptureFactor = v.GetFloat64("tolerances.capture_factor")
	}
	if v.IsSet("tolerances.escape_radius") {
		t.EscapeRadius = v.GetFloat64("tolerances.escape_radius")
	}
	if v.IsSet("tolerances.bisection_max_iter") {
		t.BisectionMaxIter = v.GetInt("tolerances.bisection_max_iter")
	}
	if v.IsSet("tolerances.bisection_theta_tol") {
		t.BisectionθTol = v.GetFloat64("tolerances.bisection_theta_tol")
	}
	if v.IsSet("tolerances.bisection_lambda_tol") {
		t.BisectionλTol = v.GetFloat64("tolerances.bisection_lambda_tol")
	}
	if v.IsSet("tolerances.disc_outer_radius") {
		t.DiscOuterRadius = v.GetFloat64("tolerances.disc_outer_radius")
	}
	return t
}

// Preset maps a CLI-style inclination label to a camera inclination in
// degrees, per spec.md §6's `--preset` surface. Parsing the flag itself is
// the front-end's job; this lookup is the piece of domain knowledge (which
// labels exist, what they mean) the core owns.
func Preset(label string) (inclinationDeg float64, ok bool) {
	switch label {
	case "30deg":
		return 30.0, true
	case "45deg":
		return 45.0, true
	case "60deg":
		return 60.0, true
	case "75deg":
		return 75.0, true
	default:
		return 0, false
	}
}

// BlackHoleTypePreset maps the `--black-hole-type` label to (spin,
// direction), per spec.md §6.
func BlackHoleTypePreset(label string) (spin float64, dir OrbitDirection, ok bool) {
	switch label {
	case "prograde":
		return 0.9, Prograde, true
	case "retrograde":
		return 0.9, Retrograde, true
	case "schwarzschild":
		return 0.0, Prograde, true // direction is ignored for a=0.
	default:
		return 0, 0, false
	}
}
