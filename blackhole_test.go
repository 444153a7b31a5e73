package kerr

import (
	"math"
	"testing"
)

// TestISCOSchwarzschild is scenario S1: a = 0, ISCO at exactly 6M for both
// orbit directions.
func TestISCOSchwarzschild(t *testing.T) {
	bh, err := NewBlackHole(1, 0)
	if err != nil {
		t.Fatalf("NewBlackHole: %v", err)
	}
	if got := bh.ISCO(Prograde); got != 6 {
		t.Fatalf("ISCO(prograde) = %v, want 6", got)
	}
	if got := bh.ISCO(Retrograde); got != 6 {
		t.Fatalf("ISCO(retrograde) = %v, want 6", got)
	}
}

// TestISCOKerr09 is scenario S2: a = 0.9M, ISCO ≈ 2.3209M prograde,
// ≈ 8.7177M retrograde (tolerance 1e-3 M).
func TestISCOKerr09(t *testing.T) {
	bh, err := NewBlackHole(1, 0.9)
	if err != nil {
		t.Fatalf("NewBlackHole: %v", err)
	}
	if got := bh.ISCO(Prograde); math.Abs(got-2.3209) > 1e-3 {
		t.Fatalf("ISCO(prograde) = %v, want ~2.3209", got)
	}
	if got := bh.ISCO(Retrograde); math.Abs(got-8.7177) > 1e-3 {
		t.Fatalf("ISCO(retrograde) = %v, want ~8.7177", got)
	}
}

func TestNewBlackHoleValidation(t *testing.T) {
	cases := []struct {
		name       string
		mass, spin float64
		wantErr    bool
	}{
		{"valid schwarzschild", 1, 0, false},
		{"valid kerr", 1, 0.9, false},
		{"zero mass", 0, 0, true},
		{"negative mass", -1, 0, true},
		{"negative spin", 1, -0.1, true},
		{"spin equals mass (extremal excluded)", 1, 1, true},
		{"spin exceeds mass", 1, 1.5, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewBlackHole(c.mass, c.spin)
			if (err != nil) != c.wantErr {
				t.Fatalf("NewBlackHole(%v, %v) error = %v, wantErr %v", c.mass, c.spin, err, c.wantErr)
			}
		})
	}
}

func TestHorizon(t *testing.T) {
	bh, _ := NewBlackHole(1, 0)
	if got := bh.Horizon(); got != 2 {
		t.Fatalf("Horizon() = %v, want 2", got)
	}
	bh2, _ := NewBlackHole(1, 0.9)
	want := 1 + math.Sqrt(1-0.81)
	if got := bh2.Horizon(); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Horizon() = %v, want %v", got, want)
	}
}

func TestIsSchwarzschild(t *testing.T) {
	bh, _ := NewBlackHole(1, 0)
	if !bh.IsSchwarzschild() {
		t.Fatal("expected a=0 to be Schwarzschild")
	}
	bh2, _ := NewBlackHole(1, 0.5)
	if bh2.IsSchwarzschild() {
		t.Fatal("expected a=0.5 to not be Schwarzschild")
	}
}
