package trail

import "testing"

// Invariant 3: trail_buf is always >= 0, and decays geometrically with zero
// input.
func TestDecayIsNonNegativeAndGeometric(t *testing.T) {
	trail := NewBuffer(4, 4)
	trail.Data[5] = 100
	density := make([]int32, 16)

	const decay = float32(0.9)
	prev := trail.Data[5]
	for i := 0; i < 10; i++ {
		Decay(trail, density, decay)
		if trail.Data[5] < 0 {
			t.Fatalf("trail went negative at step %d: %v", i, trail.Data[5])
		}
		if trail.Data[5] > prev || absF(trail.Data[5]-prev*decay) > 1e-4 {
			t.Fatalf("trail did not decay geometrically with zero input at step %d: %v -> %v", i, prev, trail.Data[5])
		}
		prev = trail.Data[5]
	}
}

func TestDecayAccumulatesDensity(t *testing.T) {
	trail := NewBuffer(2, 2)
	density := []int32{10, 0, 0, 0}
	Decay(trail, density, 0.9)
	if trail.Data[0] != 10 {
		t.Fatalf("trail[0] = %v, want 10", trail.Data[0])
	}
	Decay(trail, density, 0.9)
	want := float32(10)*0.9 + 10
	if absF(trail.Data[0]-want) > 1e-4 {
		t.Fatalf("trail[0] = %v, want %v", trail.Data[0], want)
	}
}

func TestHalfLifeFramesMatchesFormula(t *testing.T) {
	hl := HalfLifeFrames(0.9)
	// log(0.5)/log(0.9) ≈ 6.5788 frames.
	if hl <= 0 || absF(hl-6.5788) > 1e-3 {
		t.Fatalf("half-life = %v, want ~6.5788", hl)
	}
	// Lower decay factor means faster decay, shorter half-life.
	hlFast := HalfLifeFrames(0.5)
	if hlFast >= hl {
		t.Fatalf("half-life(0.5)=%v should be < half-life(0.9)=%v", hlFast, hl)
	}
}

func TestBloomIsNonNegativeAndZeroBelowThreshold(t *testing.T) {
	trail := NewBuffer(8, 8)
	// Flat field below threshold everywhere.
	for i := range trail.Data {
		trail.Data[i] = 1
	}
	out := NewBuffer(8, 8)
	Bloom(trail, 5, out)
	for i, v := range out.Data {
		if v < 0 {
			t.Fatalf("bloom[%d] = %v, want >= 0", i, v)
		}
		if v != 0 {
			t.Fatalf("bloom[%d] = %v, want 0 (all input below threshold)", i, v)
		}
	}
}

func TestBloomSpreadsAPointSource(t *testing.T) {
	trail := NewBuffer(9, 9)
	trail.Data[4*9+4] = 100
	out := NewBuffer(9, 9)
	Bloom(trail, 0, out)
	if out.Data[4*9+4] <= 0 {
		t.Fatalf("bloom center = %v, want > 0", out.Data[4*9+4])
	}
	if out.Data[4*9+5] <= 0 {
		t.Fatalf("bloom neighbor = %v, want > 0 (Gaussian spread)", out.Data[4*9+5])
	}
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
