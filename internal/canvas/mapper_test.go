package canvas

import (
	"errors"
	"math"
	"testing"

	"hazardhunt/internal/geometry"
)

func TestMapper_ToNatural(t *testing.T) {
	m := NewMapper(Size{Width: 400, Height: 300}, Size{Width: 800, Height: 600})

	got, err := m.ToNatural(geometry.Point{X: 200, Y: 150})
	if err != nil {
		t.Fatalf("ToNatural: %v", err)
	}
	if got.X != 400 || got.Y != 300 {
		t.Errorf("got (%v,%v), want (400,300)", got.X, got.Y)
	}
}

func TestMapper_ToNatural_IndependentAxes(t *testing.T) {
	// Non-uniform scaling: the axes must not share a scale factor.
	m := NewMapper(Size{Width: 400, Height: 600}, Size{Width: 800, Height: 600})

	got, err := m.ToNatural(geometry.Point{X: 100, Y: 100})
	if err != nil {
		t.Fatalf("ToNatural: %v", err)
	}
	if got.X != 200 || got.Y != 100 {
		t.Errorf("got (%v,%v), want (200,100)", got.X, got.Y)
	}
}

func TestMapper_NotMeasured(t *testing.T) {
	m := NewMapper(Size{}, Size{Width: 800, Height: 600})

	if m.Ready() {
		t.Error("zero rendered size should not be ready")
	}
	_, err := m.ToNatural(geometry.Point{X: 10, Y: 10})
	if !errors.Is(err, ErrNotMeasured) {
		t.Errorf("err = %v, want ErrNotMeasured", err)
	}
}

func TestMapper_RoundTrip(t *testing.T) {
	pairs := []struct {
		rendered, natural Size
	}{
		{Size{Width: 400, Height: 300}, Size{Width: 800, Height: 600}},
		{Size{Width: 1024, Height: 768}, Size{Width: 640, Height: 480}},
		{Size{Width: 333, Height: 217}, Size{Width: 1920, Height: 1080}},
	}
	for _, pair := range pairs {
		m := NewMapper(pair.rendered, pair.natural)
		orig := geometry.Point{X: 123.4, Y: 56.78}

		natural, err := m.ToNatural(orig)
		if err != nil {
			t.Fatalf("ToNatural: %v", err)
		}
		back, err := m.ToScreen(natural)
		if err != nil {
			t.Fatalf("ToScreen: %v", err)
		}
		if math.Abs(back.X-orig.X) > 1e-9 || math.Abs(back.Y-orig.Y) > 1e-9 {
			t.Errorf("round trip %+v -> %+v for %+v", orig, back, pair)
		}
	}
}
