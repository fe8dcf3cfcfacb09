package netcode

import (
	"math"
	"math/rand"
	"testing"
)

func TestFoldDelta(t *testing.T) {
	tests := []struct {
		diff   int32
		folded uint32
	}{
		{0, 0},
		{-1, 1},
		{1, 2},
		{-2, 3},
		{2, 4},
		{3, 6},
		{-3, 5},
		{math.MaxInt32, math.MaxUint32 - 1},
		{math.MinInt32, math.MaxUint32},
	}
	for _, tt := range tests {
		if got := FoldDelta(uint32(tt.diff)); got != tt.folded {
			t.Errorf("FoldDelta(%d) = %d, expected %d", tt.diff, got, tt.folded)
		}
		if got := int32(UnfoldDelta(tt.folded)); got != tt.diff {
			t.Errorf("UnfoldDelta(%d) = %d, expected %d", tt.folded, got, tt.diff)
		}
	}
}

func TestIntDeltaExamples(t *testing.T) {
	// baseline 100, value 97: diff 3, folded 6
	if got := intDelta(97, 100); got != 6 {
		t.Errorf("intDelta(97, 100) = %d, expected 6", got)
	}
	if got := 100 - int32(UnfoldDelta(6)); got != 97 {
		t.Errorf("reconstructed %d, expected 97", got)
	}

	// baseline 100, value 103: diff -3, folded 5
	if got := intDelta(103, 100); got != 5 {
		t.Errorf("intDelta(103, 100) = %d, expected 5", got)
	}
	if got := 100 - int32(UnfoldDelta(5)); got != 103 {
		t.Errorf("reconstructed %d, expected 103", got)
	}
}

func TestFoldDeltaRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		diff := rng.Uint32()
		if got := UnfoldDelta(FoldDelta(diff)); got != diff {
			t.Fatalf("UnfoldDelta(FoldDelta(%d)) = %d", diff, got)
		}
	}
}
