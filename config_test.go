package kerr

import "testing"

func TestDefaultTolerances(t *testing.T) {
	tol := DefaultTolerances()
	if tol.Safety != 0.9 {
		t.Fatalf("Safety = %v, want 0.9", tol.Safety)
	}
	if tol.Tol != 1e-12 {
		t.Fatalf("Tol = %v, want 1e-12", tol.Tol)
	}
	if tol.HMin != 1e-8 || tol.HMax != 0.5 {
		t.Fatalf("HMin/HMax = %v/%v, want 1e-8/0.5", tol.HMin, tol.HMax)
	}
	if tol.MaxSteps != 10000 {
		t.Fatalf("MaxSteps = %v, want 10000", tol.MaxSteps)
	}
	if tol.CaptureFactor != 1.01 {
		t.Fatalf("CaptureFactor = %v, want 1.01", tol.CaptureFactor)
	}
	if tol.EscapeRadius != 1000 {
		t.Fatalf("EscapeRadius = %v, want 1000", tol.EscapeRadius)
	}
	if tol.BisectionMaxIter != 20 {
		t.Fatalf("BisectionMaxIter = %v, want 20", tol.BisectionMaxIter)
	}
}

func TestPreset(t *testing.T) {
	cases := []struct {
		label   string
		wantDeg float64
		wantOK  bool
	}{
		{"30deg", 30, true},
		{"45deg", 45, true},
		{"60deg", 60, true},
		{"75deg", 75, true},
		{"bogus", 0, false},
	}
	for _, c := range cases {
		deg, ok := Preset(c.label)
		if ok != c.wantOK || (ok && deg != c.wantDeg) {
			t.Fatalf("Preset(%q) = (%v,%v), want (%v,%v)", c.label, deg, ok, c.wantDeg, c.wantOK)
		}
	}
}

func TestBlackHoleTypePreset(t *testing.T) {
	spin, dir, ok := BlackHoleTypePreset("prograde")
	if !ok || spin != 0.9 || dir != Prograde {
		t.Fatalf("BlackHoleTypePreset(prograde) = (%v,%v,%v)", spin, dir, ok)
	}
	spin, dir, ok = BlackHoleTypePreset("retrograde")
	if !ok || spin != 0.9 || dir != Retrograde {
		t.Fatalf("BlackHoleTypePreset(retrograde) = (%v,%v,%v)", spin, dir, ok)
	}
	spin, _, ok = BlackHoleTypePreset("schwarzschild")
	if !ok || spin != 0 {
		t.Fatalf("BlackHoleTypePreset(schwarzschild) = (%v,_,%v)", spin, ok)
	}
	if _, _, ok = BlackHoleTypePreset("unknown"); ok {
		t.Fatal("expected BlackHoleTypePreset(unknown) to report !ok")
	}
}
