package kerr

import "testing"

func TestIntegrateRayProducesExactlyMaxOrdersSlots(t *testing.T) {
	bh, _ := NewBlackHole(1, 0.9)
	cam, _ := NewCamera(50, 60, 60)
	rc, _ := NewRenderConfig(8, 8, 3)
	tol := DefaultTolerances()

	for y := 0; y < rc.Height; y++ {
		for x := 0; x < rc.Width; x++ {
			ray := PixelRay(cam, rc, x, y)
			ps, signθ0, err := InitTetrad(bh, ray.Origin, ray.Direction, false)
			if err != nil {
				continue
			}
			results := IntegrateRay(bh, ps, signθ0, Prograde, rc, tol)
			if len(results) != rc.MaxOrders {
				t.Fatalf("len(results) = %d, want %d", len(results), rc.MaxOrders)
			}
			for k, r := range results {
				if (r.Crossing == nil) == (r.Termination == nil) {
					t.Fatalf("pixel (%d,%d) order %d: exactly one of Crossing/Termination must be set, got Crossing=%v Termination=%v", x, y, k, r.Crossing, r.Termination)
				}
			}
		}
	}
}

func TestIntegrateRayHitsLieBetweenISCOAndOuterEdge(t *testing.T) {
	bh, _ := NewBlackHole(1, 0.9)
	cam, _ := NewCamera(50, 60, 60)
	rc, _ := NewRenderConfig(16, 16, 1)
	tol := DefaultTolerances()
	rISCO := bh.ISCO(Prograde)

	for y := 0; y < rc.Height; y++ {
		for x := 0; x < rc.Width; x++ {
			ray := PixelRay(cam, rc, x, y)
			ps, signθ0, err := InitTetrad(bh, ray.Origin, ray.Direction, false)
			if err != nil {
				continue
			}
			results := IntegrateRay(bh, ps, signθ0, Prograde, rc, tol)
			if c := results[0].Crossing; c != nil {
				if c.R < rISCO-1e-6 || c.R > tol.DiscOuterRadius+1e-6 {
					t.Fatalf("hit at (%d,%d): r=%v outside [%v,%v]", x, y, c.R, rISCO, tol.DiscOuterRadius)
				}
			}
		}
	}
}

func TestTurnCountersSaturateAt255(t *testing.T) {
	if got := satInc(255); got != 255 {
		t.Fatalf("satInc(255) = %v, want 255", got)
	}
	if got := satInc(0); got != 1 {
		t.Fatalf("satInc(0) = %v, want 1", got)
	}
}
