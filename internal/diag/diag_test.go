package diag

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	got := Summarize([]int64{2, 4, 4, 4, 5, 5, 7, 9})
	if got.Mean != 5 || got.Median != 4.5 || math.Abs(got.StdDev-2) > 1e-9 {
		t.Errorf("Summarize() = %+v", got)
	}
	if z := Summarize(nil); z.Mean != 0 || z.Median != 0 || z.StdDev != 0 {
		t.Errorf("пустое окно: %+v", z)
	}
	odd := Summarize([]int64{-30, 10, 5})
	if odd.Median != 5 {
		t.Errorf("Median = %v, want 5", odd.Median)
	}
}
