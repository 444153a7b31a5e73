package kerr

import (
	"math"
	"testing"
)

// TestCartesianBLRoundTrip is invariant 6: for r > 3M, θ ∈ [0.05, π-0.05],
// φ ∈ [0, 2π), Cartesian→BL→Cartesian deviates by < 1e-10 per component.
func TestCartesianBLRoundTrip(t *testing.T) {
	a := 0.9
	rs := []float64{3.5, 5, 10, 50}
	thetas := []float64{0.05, 0.7, math.Pi / 2, 2.4, math.Pi - 0.05}
	phis := []float64{0, 1.0, math.Pi, 4.5}

	for _, r := range rs {
		for _, θ := range thetas {
			for _, φ := range phis {
				p := blToCartesian(r, θ, φ, a)
				r2, θ2, φ2 := cartesianToBL(p, a)
				p2 := blToCartesian(r2, θ2, φ2, a)
				for i := range p {
					if math.Abs(p[i]-p2[i]) > 1e-10 {
						t.Fatalf("round-trip mismatch at r=%v θ=%v φ=%v: p=%v p2=%v", r, θ, φ, p, p2)
					}
				}
			}
		}
	}
}

func TestMetricReducesToSchwarzschildAtZeroSpin(t *testing.T) {
	const m = 1.0
	r, θ := 10.0, math.Pi/3
	g := evalMetric(BlackHole{Mass: m, Spin: 0}, r, θ)

	wantGtt := -(1 - 2*m/r)
	if math.Abs(g.Gtt-wantGtt) > 1e-12 {
		t.Fatalf("Gtt = %v, want %v", g.Gtt, wantGtt)
	}
	if g.Gtφ != 0 {
		t.Fatalf("Gtφ = %v, want 0 at a=0", g.Gtφ)
	}
	if got := frameDragω(r, θ, m, 0); got != 0 {
		t.Fatalf("frameDragω = %v, want 0 at a=0", got)
	}
}

func TestDeltaVanishesAtHorizon(t *testing.T) {
	bh, _ := NewBlackHole(1, 0.6)
	rPlus := bh.Horizon()
	if got := delta(rPlus, bh.Mass, bh.Spin); math.Abs(got) > 1e-9 {
		t.Fatalf("delta(r+) = %v, want ~0", got)
	}
}
