package geo

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestOrderCorners(t *testing.T) {
	shuffled := [4]Point{
		{X: 90, Y: 80}, // BR
		{X: 10, Y: 12}, // TL
		{X: 8, Y: 85},  // BL
		{X: 95, Y: 10}, // TR
	}
	q := OrderCorners(shuffled)
	if q[TopLeft] != (Point{X: 10, Y: 12}) {
		t.Fatalf("unexpected top-left: %+v", q[TopLeft])
	}
	if q[TopRight] != (Point{X: 95, Y: 10}) {
		t.Fatalf("unexpected top-right: %+v", q[TopRight])
	}
	if q[BottomRight] != (Point{X: 90, Y: 80}) {
		t.Fatalf("unexpected bottom-right: %+v", q[BottomRight])
	}
	if q[BottomLeft] != (Point{X: 8, Y: 85}) {
		t.Fatalf("unexpected bottom-left: %+v", q[BottomLeft])
	}
}

func TestQuadrilateralArea(t *testing.T) {
	q := Quadrilateral{{0, 0}, {10, 0}, {10, 5}, {0, 5}}
	if got := q.Area(); !almostEqual(got, 50, 1e-9) {
		t.Fatalf("Area() = %v, want 50", got)
	}
}

func TestQuadrilateralPerimeter(t *testing.T) {
	q := Quadrilateral{{0, 0}, {10, 0}, {10, 5}, {0, 5}}
	if got := q.Perimeter(); !almostEqual(got, 30, 1e-9) {
		t.Fatalf("Perimeter() = %v, want 30", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Quadrilateral
		minArea float64
		wantErr bool
	}{
		{
			name: "valid rectangle",
			q:    Quadrilateral{{0, 0}, {100, 0}, {100, 60}, {0, 60}},
		},
		{
			name:    "area below threshold",
			q:       Quadrilateral{{0, 0}, {4, 0}, {4, 4}, {0, 4}},
			minArea: 100,
			wantErr: true,
		},
		{
			name:    "self-intersecting bowtie",
			q:       Quadrilateral{{0, 0}, {100, 60}, {100, 0}, {0, 60}},
			wantErr: true,
		},
		{
			name:    "collinear corners",
			q:       Quadrilateral{{0, 0}, {50, 0}, {100, 0}, {0, 60}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate(tt.minArea)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAngleDeviation(t *testing.T) {
	rect := Quadrilateral{{0, 0}, {100, 0}, {100, 60}, {0, 60}}
	if dev := rect.AngleDeviation(); !almostEqual(dev, 0, 1e-6) {
		t.Fatalf("rectangle deviation = %v, want 0", dev)
	}
	skewed := Quadrilateral{{10, 0}, {100, 5}, {95, 70}, {0, 60}}
	if dev := skewed.AngleDeviation(); dev <= 0 {
		t.Fatalf("skewed deviation = %v, want > 0", dev)
	}
}

func TestHomographyIdentity(t *testing.T) {
	q := Quadrilateral{{0, 0}, {99, 0}, {99, 49}, {0, 49}}
	h, err := NewHomography(q, q)
	if err != nil {
		t.Fatalf("NewHomography() error = %v", err)
	}
	for _, p := range []Point{{0, 0}, {50, 25}, {99, 49}, {12.5, 33.25}} {
		got := h.Apply(p)
		if !almostEqual(got.X, p.X, 1e-6) || !almostEqual(got.Y, p.Y, 1e-6) {
			t.Fatalf("Apply(%+v) = %+v, want unchanged", p, got)
		}
	}
}

func TestHomographyMapsCorners(t *testing.T) {
	src := Quadrilateral{{12, 8}, {200, 20}, {190, 150}, {5, 140}}
	dst := Quadrilateral{{0, 0}, {180, 0}, {180, 130}, {0, 130}}
	h, err := NewHomography(src, dst)
	if err != nil {
		t.Fatalf("NewHomography() error = %v", err)
	}
	for i := 0; i < 4; i++ {
		got := h.Apply(src[i])
		if !almostEqual(got.X, dst[i].X, 1e-6) || !almostEqual(got.Y, dst[i].Y, 1e-6) {
			t.Fatalf("corner %d mapped to %+v, want %+v", i, got, dst[i])
		}
	}
}

func TestHomographyInvertRoundTrip(t *testing.T) {
	src := Quadrilateral{{12, 8}, {200, 20}, {190, 150}, {5, 140}}
	dst := Quadrilateral{{0, 0}, {180, 0}, {180, 130}, {0, 130}}
	h, err := NewHomography(src, dst)
	if err != nil {
		t.Fatalf("NewHomography() error = %v", err)
	}
	inv, err := h.Invert()
	if err != nil {
		t.Fatalf("Invert() error = %v", err)
	}
	p := Point{X: 60, Y: 45}
	back := inv.Apply(h.Apply(p))
	if !almostEqual(back.X, p.X, 1e-6) || !almostEqual(back.Y, p.Y, 1e-6) {
		t.Fatalf("round trip moved %+v to %+v", p, back)
	}
}

func TestHomographyDegenerate(t *testing.T) {
	// Three collinear source corners cannot define a projective map.
	src := Quadrilateral{{0, 0}, {50, 0}, {100, 0}, {0, 100}}
	dst := Quadrilateral{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	if _, err := NewHomography(src, dst); err == nil {
		t.Fatalf("expected error for collinear corners")
	}
}

func TestScale(t *testing.T) {
	q := Quadrilateral{{1, 2}, {3, 4}, {5, 6}, {7, 8}}
	got := q.Scale(2)
	want := Quadrilateral{{2, 4}, {6, 8}, {10, 12}, {14, 16}}
	if got != want {
		t.Fatalf("Scale(2) = %+v, want %+v", got, want)
	}
}
