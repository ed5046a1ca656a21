package score

import (
	"math"
	"testing"
)

func TestDistance_Score(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{0, 100},
		{0.3, 70},
		{0.5, 50},
		{0.51, 49},
		{1, 0},
		{1.6, 0},
		{2, 0},
		{-0.2, 100}, // clamped
	}
	for _, tc := range tests {
		if got := Distance.Score(tc.raw); got != tc.want {
			t.Errorf("Distance.Score(%v) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestSimilarity_Score(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{1, 100},
		{0.7, 70},
		{0.5, 50},
		{0, 0},
		{-0.4, 0},
		{1.3, 100},
	}
	for _, tc := range tests {
		if got := Similarity.Score(tc.raw); got != tc.want {
			t.Errorf("Similarity.Score(%v) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestScore_NaNIsZero(t *testing.T) {
	if got := Distance.Score(math.NaN()); got != 0 {
		t.Errorf("Distance.Score(NaN) = %d, want 0", got)
	}
	if got := Similarity.Score(math.NaN()); got != 0 {
		t.Errorf("Similarity.Score(NaN) = %d, want 0", got)
	}
}

func TestScore_Monotonic(t *testing.T) {
	prevDist := Distance.Score(0)
	prevSim := Similarity.Score(-1)
	for i := 1; i <= 400; i++ {
		raw := float64(i) / 200 // 0.005 .. 2.0
		d := Distance.Score(raw)
		if d > prevDist {
			t.Fatalf("distance score increased: score(%v)=%d > %d", raw, d, prevDist)
		}
		prevDist = d

		s := Similarity.Score(raw - 1) // -0.995 .. 1.0
		if s < prevSim {
			t.Fatalf("similarity score decreased: score(%v)=%d < %d", raw-1, s, prevSim)
		}
		prevSim = s
	}
}

func TestPasses_FloorIsExact(t *testing.T) {
	if Passes(49) {
		t.Error("49 must be excluded")
	}
	if !Passes(50) {
		t.Error("50 must be included")
	}
	if !Passes(100) {
		t.Error("100 must be included")
	}
}

func TestParse(t *testing.T) {
	if c, err := Parse(""); err != nil || c != Distance {
		t.Errorf("Parse(\"\") = %q, %v; want distance", c, err)
	}
	if c, err := Parse("similarity"); err != nil || c != Similarity {
		t.Errorf("Parse(similarity) = %q, %v", c, err)
	}
	if _, err := Parse("dot"); err == nil {
		t.Error("expected error for unknown convention")
	}
}
