package kerr

import "math"

// radialPotential returns R(r) = [(r²+a²)E - aL_z]² - Δ[Q+(L_z-aE)²].
func radialPotential(bh BlackHole, ps PhotonState, r float64) float64 {
	a := bh.Spin
	p := (r*r+a*a)*ps.E - a*ps.Lz
	return p*p - delta(r, bh.Mass, a)*ps.K(a)
}

// polarPotential returns Θ(θ) = Q + a²E²cos²θ - (L_z²/sin²θ)cos²θ. This is
// the Carter-separated form consistent with the initializer's Q definition
// (spec.md §9's resolved ambiguity: the plus-sign a²E² variant, not the
// historical minus-sign bug).
func polarPotential(bh BlackHole, ps PhotonState, θ float64) float64 {
	a := bh.Spin
	sθ, cθ := math.Sincos(θ)
	return ps.Q + a*a*ps.E*ps.E*cθ*cθ - (ps.Lz*ps.Lz/(sθ*sθ))*cθ*cθ
}

// clampPotential saturates a negative potential to exactly zero (the
// turning-point semantics of spec.md §4.3), reporting whether the
// magnitude of the negative excursion is large enough that the caller
// should prepare for a sign flip rather than treat it as numerical noise.
func clampPotential(v float64) (clamped float64, prepareFlip bool) {
	if v >= 0 {
		return v, false
	}
	if v > -1e-24 {
		return 0, false
	}
	return 0, true
}

// rhs evaluates dr/dλ, dθ/dλ, dφ/dλ at the given state, per spec.md §4.3.
func rhs(bh BlackHole, ps PhotonState, s IntegrationState) (drdλ, dθdλ, dφdλ float64) {
	a, m := bh.Spin, bh.Mass
	r, θ := s.R, s.Theta
	Σ := sigma(r, θ, a)

	R, _ := clampPotential(radialPotential(bh, ps, r))
	drdλ = s.SignR * math.Sqrt(R) / Σ

	sθ := math.Sin(θ)
	if sθ*sθ < 1e-10 {
		// Numerical guard, not a physical statement: avoid blowing up near
		// the poles where 1/sin²θ diverges.
		return drdλ, 0, 0
	}

	Θ, _ := clampPotential(polarPotential(bh, ps, θ))
	dθdλ = s.SignTheta * math.Sqrt(Θ) / Σ

	Δ := delta(r, m, a)
	dφdλ = (a*ps.E*(r*r+a*a-Δ) + ps.Lz*(1-Δ/Σ)/(sθ*sθ)) / Σ
	return
}

// keplerianΩ returns the Keplerian orbital angular velocity of disc
// material at radius r, Ω(r) = sqrt(M)/(r^1.5 + a*sqrt(M)).
func keplerianΩ(bh BlackHole, r float64) float64 {
	sqrtM := math.Sqrt(bh.Mass)
	return sqrtM / (math.Pow(r, 1.5) + bh.Spin*sqrtM)
}

// redshiftFactor returns |g| = |ν_obs/ν_emit| at a disc crossing, per
// spec.md §4.3: the disc is modelled as Keplerian, u^t is recovered from
// the unit-timelike normalisation, and g = -(u^t k_t + u^φ k_φ).
func redshiftFactor(bh BlackHole, ps PhotonState, r, θ float64) float64 {
	g := evalMetric(bh, r, θ)
	Ω := keplerianΩ(bh, r)
	norm := g.Gtt + 2*Ω*g.Gtφ + Ω*Ω*g.Gφφ
	ut := math.Sqrt(-1 / norm)
	uφ := Ω * ut
	kt, kφ := -ps.E, ps.Lz
	return math.Abs(-(ut*kt + uφ*kφ))
}

// contravariantMomentum recovers (k^t, k^r, k^θ, k^φ) from the conserved
// quantities and the current sign/state, per spec.md §4.3's Carter
// separation.
func contravariantMomentum(bh BlackHole, ps PhotonState, s IntegrationState) (kt, kr, kθ, kφ float64) {
	a, m := bh.Spin, bh.Mass
	r, θ := s.R, s.Theta
	Σ := sigma(r, θ, a)
	Δ := delta(r, m, a)
	sθ := math.Sin(θ)

	P := (r*r+a*a)*ps.E - a*ps.Lz
	kt = ((r*r+a*a)/Δ*P - a*(a*ps.E*sθ*sθ-ps.Lz)) / Σ
	kφ = (a/Δ*P - (a*ps.E - ps.Lz/(sθ*sθ))) / Σ

	R, _ := clampPotential(radialPotential(bh, ps, r))
	kr = s.SignR * math.Sqrt(R) / Σ
	if sθ*sθ < 1e-10 {
		kθ = 0
	} else {
		Θ, _ := clampPotential(polarPotential(bh, ps, θ))
		kθ = s.SignTheta * math.Sqrt(Θ) / Σ
	}
	return
}

// nullInvariant returns |g_μν k^μ k^ν| at the given state, the per-crossing
// quality metric of spec.md §4.3 (not an integration constraint).
func nullInvariant(bh BlackHole, ps PhotonState, s IntegrationState) float64 {
	g := evalMetric(bh, s.R, s.Theta)
	kt, kr, kθ, kφ := contravariantMomentum(bh, ps, s)
	v := g.Gtt*kt*kt + 2*g.Gtφ*kt*kφ + g.Grr*kr*kr + g.Gθθ*kθ*kθ + g.Gφφ*kφ*kφ
	return math.Abs(v)
}
