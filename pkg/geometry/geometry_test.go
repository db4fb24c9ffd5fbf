package geometry

import (
	"math"
	"testing"
)

func TestFitScale(t *testing.T) {
	tests := []struct {
		name string
		src  Size
		dst  Size
		want float64
	}{
		{"wide into square", NewSize(400, 200), NewSize(100, 100), 0.25},
		{"tall into square", NewSize(200, 400), NewSize(100, 100), 0.25},
		{"exact", NewSize(300, 200), NewSize(300, 200), 1},
		{"upscale", NewSize(50, 25), NewSize(200, 200), 4},
		{"empty src", NewSize(0, 10), NewSize(10, 10), 0},
	}
	for _, tt := range tests {
		if got := FitScale(tt.src, tt.dst); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: FitScale = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCenterIn(t *testing.T) {
	got := CenterIn(NewSize(100, 50), NewSize(200, 200))
	if got != Pt(50, 75) {
		t.Errorf("CenterIn = %+v, want (50,75)", got)
	}
}

func TestBoundLongSide(t *testing.T) {
	got := BoundLongSide(NewSize(4000, 2000), 1200)
	if got.Width != 1200 || got.Height != 600 {
		t.Errorf("BoundLongSide = %+v, want 1200x600", got)
	}
}

func TestAffineInverseRoundTrip(t *testing.T) {
	tr := Placement(10, 20, 0.5)
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("expected invertible transform")
	}
	p := Pt(33, 44)
	back := inv.Apply(tr.Apply(p))
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Errorf("round trip = %+v, want %+v", back, p)
	}
}

func TestAffineBounds(t *testing.T) {
	r := Placement(5, 5, 2).Bounds(NewSize(10, 20))
	want := NewRect(5, 5, 20, 40)
	if r != want {
		t.Errorf("Bounds = %+v, want %+v", r, want)
	}
}

func TestComposeAppliesRightFirst(t *testing.T) {
	tr := Translation(10, 0).Compose(Scale(2, 2))
	got := tr.Apply(Pt(1, 1))
	if got != Pt(12, 2) {
		t.Errorf("Compose apply = %+v, want (12,2)", got)
	}
}
