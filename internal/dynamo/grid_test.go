package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(8, 4.0)
	if err != nil {
		t.Fatalf("new grid failed: %v", err)
	}

	if g.Dx != 0.5 {
		t.Errorf("expected dx 0.5, got %f", g.Dx)
	}
	if len(g.X) != 8 || len(g.K) != 8 {
		t.Fatalf("expected 8 positions and wavenumbers, got %d and %d", len(g.X), len(g.K))
	}
	if g.X[0] != -2.0 {
		t.Errorf("expected first position -2, got %f", g.X[0])
	}
	if g.X[7] != 1.5 {
		t.Errorf("expected last position 1.5 (half-open domain), got %f", g.X[7])
	}

	// fftfreq(8, 0.5) * 2pi = [0,1,2,3,-4,-3,-2,-1] * 2pi/4
	want := []float64{0, 1, 2, 3, -4, -3, -2, -1}
	for i, f := range want {
		expected := f * 2 * math.Pi / 4.0
		if math.Abs(g.K[i]-expected) > 1e-12 {
			t.Errorf("k[%d] = %f, want %f", i, g.K[i], expected)
		}
	}
}

func TestNewGrid_OddLength(t *testing.T) {
	g, err := NewGrid(5, 5.0)
	if err != nil {
		t.Fatalf("new grid failed: %v", err)
	}

	want := []float64{0, 1, 2, -2, -1}
	for i, f := range want {
		expected := f * 2 * math.Pi / 5.0
		if math.Abs(g.K[i]-expected) > 1e-12 {
			t.Errorf("k[%d] = %f, want %f", i, g.K[i], expected)
		}
	}
}

func TestGrid_SortedK(t *testing.T) {
	g, err := NewGrid(8, 4.0)
	if err != nil {
		t.Fatalf("new grid failed: %v", err)
	}

	sorted, order := g.SortedK()
	for i := 1; i < len(sorted); i++ {
		if sorted[i] <= sorted[i-1] {
			t.Fatalf("sorted k not ascending at %d: %v", i, sorted)
		}
	}
	for i, idx := range order {
		if g.K[idx] != sorted[i] {
			t.Errorf("order[%d]=%d maps to %f, want %f", i, idx, g.K[idx], sorted[i])
		}
	}
	if g.KMax() != 4*2*math.Pi/4.0 {
		t.Errorf("unexpected kmax %f", g.KMax())
	}
}

func TestNewGrid_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		length float64
	}{
		{"zero points", 0, 1.0},
		{"single point", 1, 1.0},
		{"negative length", 16, -1.0},
		{"zero length", 16, 0},
		{"nan length", 16, math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.n, tt.length)
			if !errors.Is(err, ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}
