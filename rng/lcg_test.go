package rng

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestFirstDraws(t *testing.T) {
	r := New(0)

	// s1 = 1013904223
	got := r.Float64()
	want := 1013904223.0 / 4294967296.0
	if got != want {
		t.Fatalf("first draw = %v, want %v", got, want)
	}
	if r.State() != 1013904223 {
		t.Errorf("state = %d, want 1013904223", r.State())
	}

	// s2 = 1013904223*1664525 + 1013904223 mod 2^32
	wantState := uint32((uint64(1013904223)*1664525 + 1013904223) % (1 << 32))
	r.Float64()
	if r.State() != wantState {
		t.Errorf("second state = %d, want %d", r.State(), wantState)
	}
}

func TestSameSeedSameStream(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 1000; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
}

func TestUnitInterval(t *testing.T) {
	r := New(7)
	for i := 0; i < 10000; i++ {
		v := r.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("draw %d out of [0,1): %v", i, v)
		}
	}
}

func TestGaussianMoments(t *testing.T) {
	r := New(99)
	samples := make([]float64, 20000)
	for i := range samples {
		samples[i] = r.Gaussian()
	}

	mean, std := stat.MeanStdDev(samples, nil)
	if math.Abs(mean) > 0.05 {
		t.Errorf("mean = %v, want ~0", mean)
	}
	if math.Abs(std-1) > 0.05 {
		t.Errorf("stddev = %v, want ~1", std)
	}
}

func TestGaussianConsumesTwoDraws(t *testing.T) {
	a := New(42)
	b := New(42)

	a.Gaussian()
	b.Float64()
	b.Float64()
	if a.State() != b.State() {
		t.Errorf("gaussian consumed a different number of draws: %d vs %d", a.State(), b.State())
	}
}
