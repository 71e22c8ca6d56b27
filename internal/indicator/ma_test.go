package indicator

import (
	"math"
	"testing"
)

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	got := SMA(prices, 3)
	want := []float64{2, 3, 4}

	if len(got) != len(want) {
		t.Fatalf("len(SMA()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("SMA()[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestSMA_InsufficientData(t *testing.T) {
	if got := SMA([]float64{1, 2}, 3); len(got) != 0 {
		t.Errorf("SMA(short) = %v, want empty", got)
	}
	if got := SMA([]float64{1, 2, 3}, 0); len(got) != 0 {
		t.Errorf("SMA(period 0) = %v, want empty", got)
	}
}

func TestEMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	got := EMA(prices, 3)

	if len(got) != 3 {
		t.Fatalf("len(EMA()) = %d, want 3", len(got))
	}
	// Seeded with SMA(1,2,3) = 2, then (4-2)*0.5+2 = 3, (5-3)*0.5+3 = 4.
	want := []float64{2, 3, 4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("EMA()[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestAlignedSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	values, valid := AlignedSMA(prices, 3)

	if len(values) != len(prices) || len(valid) != len(prices) {
		t.Fatalf("AlignedSMA lengths = %d/%d, want %d", len(values), len(valid), len(prices))
	}
	for i := 0; i < 2; i++ {
		if valid[i] {
			t.Errorf("valid[%d] = true inside warm-up, want false", i)
		}
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		idx := i + 2
		if !valid[idx] {
			t.Errorf("valid[%d] = false, want true", idx)
		}
		if math.Abs(values[idx]-w) > 1e-9 {
			t.Errorf("values[%d] = %f, want %f", idx, values[idx], w)
		}
	}
}

func TestAlignedSMA_ShortSeries(t *testing.T) {
	values, valid := AlignedSMA([]float64{1, 2}, 5)
	if len(values) != 2 {
		t.Fatalf("len(values) = %d, want 2", len(values))
	}
	for i := range valid {
		if valid[i] {
			t.Errorf("valid[%d] = true with no full window, want false", i)
		}
	}
}
