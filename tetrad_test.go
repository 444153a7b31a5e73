package kerr

import (
	"math"
	"testing"
)

func mustCamera(t *testing.T, distance, inclinationDeg, fovDeg float64) Camera {
	t.Helper()
	cam, err := NewCamera(distance, inclinationDeg, fovDeg)
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	return cam
}

// TestInitTetradDebugChecksPass exercises spec.md §4.2's three debug-mode
// consistency checks across a grid of rays; none should panic.
func TestInitTetradDebugChecksPass(t *testing.T) {
	bh, _ := NewBlackHole(1, 0.9)
	cam := mustCamera(t, 50, 60, 60)
	rc, err := NewRenderConfig(9, 9, 1)
	if err != nil {
		t.Fatalf("NewRenderConfig: %v", err)
	}

	for y := 0; y < rc.Height; y++ {
		for x := 0; x < rc.Width; x++ {
			ray := PixelRay(cam, rc, x, y)
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("InitTetrad panicked at (%d,%d): %v", x, y, r)
					}
				}()
				ps, signθ0, err := InitTetrad(bh, ray.Origin, ray.Direction, true)
				if err != nil {
					t.Fatalf("InitTetrad at (%d,%d): %v", x, y, err)
				}
				if ps.K(bh.Spin) < -1e-10 {
					t.Fatalf("K = %v at (%d,%d), want >= -1e-10", ps.K(bh.Spin), x, y)
				}
				if signθ0 != 1 && signθ0 != -1 {
					t.Fatalf("signθ0 = %v, want ±1", signθ0)
				}
			}()
		}
	}
}

func TestInitTetradDegenerateAtPole(t *testing.T) {
	bh, _ := NewBlackHole(1, 0.5)
	// A direction straight along the polar axis through the observer's own
	// position puts θ0 at (numerically) the pole for an observer placed on
	// the axis itself.
	origin := []float64{0, 0, 50}
	n := []float64{0, 0, -1}
	_, _, err := InitTetrad(bh, origin, n, false)
	if err == nil {
		t.Fatal("expected ErrDegenerateTetrad for an on-axis observer")
	}
}

func TestRedshiftFactorPositiveOutsideISCO(t *testing.T) {
	bh, _ := NewBlackHole(1, 0.9)
	rISCO := bh.ISCO(Prograde)
	ps := PhotonState{E: 1, Lz: 2}
	g := redshiftFactor(bh, ps, rISCO*1.5, math.Pi/2)
	if g <= 0 || math.IsNaN(g) {
		t.Fatalf("redshiftFactor = %v, want finite positive value", g)
	}
}
