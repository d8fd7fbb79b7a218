package geometry

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name       string
		v, lo, hi  float64
		expected   float64
	}{
		{"below range", 5, 10, 500, 10},
		{"above range", 900, 10, 500, 500},
		{"inside range", 120, 10, 500, 120},
		{"at lower bound", 10, 10, 500, 10},
		{"at upper bound", 500, 10, 500, 500},
		{"negative input", -3, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.v, tt.lo, tt.hi)
			if got != tt.expected {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.expected)
			}
		})
	}
}

func TestClampIdempotent(t *testing.T) {
	inputs := []float64{-50, 0, 9.999, 10, 42, 499, 500, 500.0001, 1e9}
	for _, v := range inputs {
		once := Clamp(v, 10, 500)
		twice := Clamp(once, 10, 500)
		if once != twice {
			t.Errorf("Clamp not idempotent for %v: %v != %v", v, once, twice)
		}
	}
}

func TestClampPoint(t *testing.T) {
	p := ClampPoint(Point2D{X: 150, Y: -10}, 0, 100)
	if p.X != 100 || p.Y != 0 {
		t.Errorf("ClampPoint(150,-10) = (%v,%v), want (100,0)", p.X, p.Y)
	}
}

func TestCoverScale(t *testing.T) {
	tests := []struct {
		name     string
		src, dst Size
		expected float64
	}{
		// Wide source into square dest: height is the limiting axis.
		{"wide source", NewSize(200, 100), NewSize(100, 100), 1.0},
		// Tall source into square dest: width is the limiting axis.
		{"tall source", NewSize(100, 200), NewSize(100, 100), 1.0},
		{"same aspect", NewSize(800, 600), NewSize(400, 300), 0.5},
		{"upscale", NewSize(100, 100), NewSize(300, 200), 3.0},
		{"zero source", NewSize(0, 100), NewSize(100, 100), 0},
		{"zero dest", NewSize(100, 100), NewSize(100, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverScale(tt.src, tt.dst)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CoverScale(%v, %v) = %v, want %v", tt.src, tt.dst, got, tt.expected)
			}
		})
	}
}

func TestCoverScaleCovers(t *testing.T) {
	// For any positive sizes, scaling the source by CoverScale must cover
	// the destination on both axes.
	cases := []struct{ src, dst Size }{
		{NewSize(800, 600), NewSize(640, 360)},
		{NewSize(1200, 900), NewSize(640, 360)},
		{NewSize(333, 777), NewSize(1024, 400)},
	}
	for _, c := range cases {
		s := CoverScale(c.src, c.dst)
		if c.src.Width*s < c.dst.Width-1e-9 || c.src.Height*s < c.dst.Height-1e-9 {
			t.Errorf("CoverScale(%v, %v) = %v does not cover", c.src, c.dst, s)
		}
	}
}

func TestPointDistance(t *testing.T) {
	a := NewPoint2D(0, 0)
	b := NewPoint2D(3, 4)
	if d := a.Distance(b); math.Abs(d-5) > 1e-9 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestAffineApplyInverse(t *testing.T) {
	tr := Translation(10, 20).Compose(Scaling(2, 3))
	p := NewPoint2D(5, 7)

	q := tr.Apply(p)
	if q.X != 20 || q.Y != 41 {
		t.Fatalf("Apply = (%v,%v), want (20,41)", q.X, q.Y)
	}

	inv, ok := tr.Inverse()
	if !ok {
		t.Fatal("transform should be invertible")
	}
	back := inv.Apply(q)
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
		t.Errorf("round trip = (%v,%v), want (%v,%v)", back.X, back.Y, p.X, p.Y)
	}
}

func TestFitAffine(t *testing.T) {
	// Known transform: scale by (2,3), translate by (10,-5).
	want := Translation(10, -5).Compose(Scaling(2, 3))

	src := []Point2D{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {3, 2}}
	dst := make([]Point2D, len(src))
	for i, p := range src {
		dst[i] = want.Apply(p)
	}

	got, err := FitAffine(src, dst)
	if err != nil {
		t.Fatalf("FitAffine failed: %v", err)
	}

	for _, p := range src {
		a := want.Apply(p)
		b := got.Apply(p)
		if math.Abs(a.X-b.X) > 1e-6 || math.Abs(a.Y-b.Y) > 1e-6 {
			t.Errorf("fitted transform disagrees at %v: got (%v,%v), want (%v,%v)", p, b.X, b.Y, a.X, a.Y)
		}
	}
}

func TestFitAffineErrors(t *testing.T) {
	if _, err := FitAffine([]Point2D{{0, 0}}, []Point2D{{0, 0}}); err == nil {
		t.Error("expected error for too few points")
	}
	if _, err := FitAffine([]Point2D{{0, 0}, {1, 1}, {2, 2}}, []Point2D{{0, 0}}); err == nil {
		t.Error("expected error for count mismatch")
	}
}
