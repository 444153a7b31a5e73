package kerr

import (
	"math"

	"github.com/kerrcam/geotrace/internal/dopri87"
)

// rayIntegrator adapts one ray's RHS to dopri87.System, carrying the
// per-stage sign_r/sign_θ bookkeeping of spec.md §4.4's stage-evaluation
// rule. A fresh rayIntegrator is built for every attempted step so stage
// signs never leak across step retries.
type rayIntegrator struct {
	bh                         BlackHole
	ps                         PhotonState
	y0                         []float64 // (r, θ, φ) at the start of this step.
	stageSignR, stageSignTheta float64
}

// Eval implements dopri87.System. For stage 0 the candidate equals y0, so
// the finite-difference terms are inert and only the potential-sign rule
// (a potential <= 0 at y0) can flip the base signs; interior stages
// reselect sign_r/sign_θ by the combination of
// finite-difference continuity (primary) and potential sign (secondary
// correction) that spec.md §4.4 specifies.
func (ri *rayIntegrator) Eval(stage int, y []float64) []float64 {
	r, θ, φ := y[0], y[1], y[2]

	sr := ri.stageSignR
	if dr := r - ri.y0[0]; math.Abs(dr) > 1e-12 {
		sr = sign(dr)
	}
	if radialPotential(ri.bh, ri.ps, r) <= 0 {
		sr = -sr
	}

	sθ := ri.stageSignTheta
	if dθ := θ - ri.y0[1]; math.Abs(dθ) > 1e-12 {
		sθ = sign(dθ)
	}
	if polarPotential(ri.bh, ri.ps, θ) <= 0 {
		sθ = -sθ
	}

	ri.stageSignR, ri.stageSignTheta = sr, sθ

	drdλ, dθdλ, dφdλ := rhs(ri.bh, ri.ps, IntegrationState{R: r, Theta: θ, Phi: φ, SignR: sr, SignTheta: sθ})
	return []float64{drdλ, dθdλ, dφdλ}
}

// satInc increments a turning-point counter, saturating at 255 per
// spec.md §3's invariant.
func satInc(u uint8) uint8 {
	if u == 255 {
		return 255
	}
	return u + 1
}

// finiteState reports whether a candidate (r, θ, φ) is entirely finite.
func finiteState(r, θ, φ float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) &&
		!math.IsNaN(θ) && !math.IsInf(θ, 0) &&
		!math.IsNaN(φ) && !math.IsInf(φ, 0)
}

// updateSigns implements spec.md §4.4's post-step turning-point rule:
// finite-difference direction provides primary continuity, the potential
// sign-change test is a secondary correction layered on top.
func updateSigns(bh BlackHole, ps PhotonState, curSignR, curSignTheta, rBefore, θBefore, rAfter, θAfter float64) (newSignR, newSignTheta float64, flippedR, flippedTheta bool) {
	Rbefore := radialPotential(bh, ps, rBefore)
	Rafter := radialPotential(bh, ps, rAfter)
	flipR := (Rbefore > 0 && math.Abs(Rafter) < 1e-24) || (Rbefore*Rafter < 0)

	newSignR = curSignR
	if dr := rAfter - rBefore; math.Abs(dr) > 1e-12 {
		newSignR = sign(dr)
	}
	if flipR {
		newSignR = -newSignR
	}
	flippedR = newSignR != curSignR

	Θbefore := polarPotential(bh, ps, θBefore)
	Θafter := polarPotential(bh, ps, θAfter)
	flipTheta := (Θbefore > 0 && math.Abs(Θafter) < 1e-24) || (Θbefore*Θafter < 0)

	newSignTheta = curSignTheta
	if dθ := θAfter - θBefore; math.Abs(dθ) > 1e-12 {
		newSignTheta = sign(dθ)
	}
	if flipTheta {
		newSignTheta = -newSignTheta
	}
	flippedTheta = newSignTheta != curSignTheta
	return
}

// crossingPoint is the refined state produced by locateCrossing.
type crossingPoint struct {
	R, Theta, Phi, Lambda float64
}

// locateCrossing implements spec.md §4.4's event-location bisection: a
// re-entrant single DOPRI8 sub-step from the pre-crossing state, the
// fractional affine offset chosen by linear interpolation of θ vs. λ,
// converging on |θ-π/2| or a shrinking λ-interval.
func locateCrossing(bh BlackHole, ps PhotonState, signR, signTheta float64, preR, preθ, preφ, preλ float64, h float64, tol Tolerances) crossingPoint {
	const halfPi = math.Pi / 2
	loOffset, hiOffset := 0.0, h
	θLo, θHi := preθ-halfPi, 0.0
	{
		// θ at the full-step end is recovered by the caller via hiOffset=h;
		// compute it once up front so the first interpolation has both
		// bracket ends populated.
		ri := &rayIntegrator{bh: bh, ps: ps, y0: []float64{preR, preθ, preφ}, stageSignR: signR, stageSignTheta: signTheta}
		y8, _ := dopri87.Step(ri, ri.y0, h)
		θHi = wrapTheta(y8[1]) - halfPi
	}

	best := crossingPoint{R: preR, Theta: preθ, Phi: preφ, Lambda: preλ}
	for i := 0; i < tol.BisectionMaxIter; i++ {
		if math.Abs(θHi-θLo) < 1e-300 {
			break
		}
		// Linear interpolation of θ vs λ for the next trial offset.
		frac := -θLo / (θHi - θLo)
		offset := loOffset + frac*(hiOffset-loOffset)
		if offset <= loOffset || offset >= hiOffset {
			offset = (loOffset + hiOffset) / 2
		}

		ri := &rayIntegrator{bh: bh, ps: ps, y0: []float64{preR, preθ, preφ}, stageSignR: signR, stageSignTheta: signTheta}
		y8, _ := dopri87.Step(ri, ri.y0, offset)
		θTrial := wrapTheta(y8[1])
		best = crossingPoint{R: y8[0], Theta: θTrial, Phi: wrapPhi(y8[2]), Lambda: preλ + offset}

		d := θTrial - halfPi
		if math.Abs(d) < tol.BisectionθTol || (hiOffset-loOffset) < tol.BisectionλTol {
			break
		}
		if sign(d) == sign(θLo) {
			loOffset, θLo = offset, d
		} else {
			hiOffset, θHi = offset, d
		}
	}
	return best
}

// IntegrateRay traces one ray from its initial PhotonState, collecting up
// to rc.MaxOrders ordered disc crossings, per spec.md §4.4/§4.5. dir
// selects the disc orbit direction used to determine the disc's inner
// edge (bh.ISCO(dir)); the outer edge is tol.DiscOuterRadius.
func IntegrateRay(bh BlackHole, ps PhotonState, signθ0 float64, dir OrbitDirection, rc RenderConfig, tol Tolerances) []RayResult {
	const halfPi = math.Pi / 2
	discInner := bh.ISCO(dir)
	discOuter := tol.DiscOuterRadius
	captureR := bh.Horizon() * tol.CaptureFactor

	cfg := dopri87.Config{Safety: tol.Safety, Tol: tol.Tol, HMin: tol.HMin, HMax: tol.HMax}
	results := make([]RayResult, rc.MaxOrders)
	filled := 0

	state := IntegrationState{R: ps.R, Theta: ps.Theta, Phi: ps.Phi, Phi0: ps.Phi, SignR: -1, SignTheta: signθ0}
	h := tol.HMax / 10

	fill := func(reason TerminationReason) {
		for o := filled; o < rc.MaxOrders; o++ {
			rec := TerminationRecord{Reason: reason, TurnsR: state.TurnsR, TurnsTheta: state.TurnsTheta}
			results[o] = RayResult{Termination: &rec}
		}
	}

	for steps := 0; steps < tol.MaxSteps; steps++ {
		if filled >= rc.MaxOrders {
			return results
		}

		y0 := []float64{state.R, state.Theta, state.Phi}
		ri := &rayIntegrator{bh: bh, ps: ps, y0: y0, stageSignR: state.SignR, stageSignTheta: state.SignTheta}
		y8, errVec := dopri87.Step(ri, y0, h)
		errNorm := dopri87.ErrNorm(errVec)

		if !dopri87.Accept(cfg, h, errNorm) {
			h = dopri87.NextStepSize(cfg, h, errNorm)
			continue
		}

		rBefore, θBefore, φBefore := state.R, state.Theta, state.Phi
		rAfter := y8[0]
		θAfter := wrapTheta(y8[1])
		φAfter := wrapPhi(y8[2])

		if !finiteState(rAfter, θAfter, φAfter) {
			fill(Aborted)
			return results
		}

		newSignR, newSignTheta, flippedR, flippedTheta := updateSigns(bh, ps, state.SignR, state.SignTheta, rBefore, θBefore, rAfter, θAfter)
		if flippedR {
			state.TurnsR = satInc(state.TurnsR)
		}
		if flippedTheta {
			state.TurnsTheta = satInc(state.TurnsTheta)
		}

		if (θBefore-halfPi)*(θAfter-halfPi) < 0 {
			cp := locateCrossing(bh, ps, state.SignR, state.SignTheta, rBefore, θBefore, φBefore, state.Lambda, h, tol)
			if cp.R >= discInner && cp.R <= discOuter {
				g := redshiftFactor(bh, ps, cp.R, halfPi)
				crossState := IntegrationState{R: cp.R, Theta: cp.Theta, Phi: cp.Phi, Phi0: state.Phi0, SignR: state.SignR, SignTheta: state.SignTheta}
				rec := CrossingRecord{
					R: cp.R, Theta: cp.Theta, Phi: cp.Phi,
					E: ps.E, Lz: ps.Lz, Q: ps.Q,
					B:         ps.ImpactParameter(),
					G:         g,
					Lambda:    cp.Lambda,
					PhiWraps:  crossState.PhiWraps(),
					Order:     filled,
					NullError: nullInvariant(bh, ps, IntegrationState{R: cp.R, Theta: cp.Theta, Phi: cp.Phi, SignR: state.SignR, SignTheta: state.SignTheta}),
					TurnsR:    state.TurnsR, TurnsTheta: state.TurnsTheta,
				}
				results[filled] = RayResult{Crossing: &rec}
				filled++
			}
		}

		state.R, state.Theta, state.Phi = rAfter, θAfter, φAfter
		state.SignR, state.SignTheta = newSignR, newSignTheta
		state.Lambda += h

		if state.R < captureR {
			fill(Captured)
			return results
		}
		if state.R > tol.EscapeRadius {
			fill(Escaped)
			return results
		}

		h = dopri87.NextStepSize(cfg, h, errNorm)
	}

	// Step budget exhausted: classify heuristically per spec.md §4.4.
	switch {
	case state.R < 10*bh.Mass:
		fill(Captured)
	case state.R > 100*bh.Mass:
		fill(Escaped)
	case state.SignR < 0:
		fill(Captured)
	default:
		fill(Escaped)
	}
	return results
}
