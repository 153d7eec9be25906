package overlay

import (
	"testing"

	"laser-pointer/src/geometry"
)

func TestIndicatorSize(t *testing.T) {
	tests := []struct {
		scale float64
		want  int
	}{
		{1, 46},
		{1.7, 78},
		{0.5, 23},
		{5, 230},
		{0, 1},
	}
	for _, tt := range tests {
		got := IndicatorSize(tt.scale)
		if got.Width != tt.want || got.Height != tt.want {
			t.Errorf("IndicatorSize(%v) = %+v, expected %d", tt.scale, got, tt.want)
		}
	}
}

func TestMemoryIndicator(t *testing.T) {
	m := NewMemoryIndicator(1)
	if m.Visible() {
		t.Fatal("expected indicator to start hidden")
	}
	m.Show()
	m.Move(10, -20)
	m.Resize(2)
	if !m.Visible() || m.Position() != (geometry.Point{X: 10, Y: -20}) || m.Moves() != 1 {
		t.Fatalf("unexpected state: visible=%v pos=%+v moves=%d", m.Visible(), m.Position(), m.Moves())
	}
	if m.Size().Width != 92 {
		t.Fatalf("expected resized width 92, got %d", m.Size().Width)
	}
}
