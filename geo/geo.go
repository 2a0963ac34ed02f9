package geo

import (
	"fmt"
	"math"
)

// Point is a 2-D position in pixel coordinates with the origin in the
// upper-left corner of the image.
type Point struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Quadrilateral holds four corners in the canonical order top-left,
// top-right, bottom-right, bottom-left.
type Quadrilateral [4]Point

// Corner indices into a Quadrilateral.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// OrderCorners arranges four unordered points into the canonical
// TL, TR, BR, BL ordering. The top-left corner minimizes x+y, the
// bottom-right maximizes it; the remaining two are split on x-y.
func OrderCorners(pts [4]Point) Quadrilateral {
	var q Quadrilateral
	minSum, maxSum := math.MaxFloat64, -math.MaxFloat64
	minDiff, maxDiff := math.MaxFloat64, -math.MaxFloat64
	for _, p := range pts {
		if s := p.X + p.Y; s < minSum {
			minSum = s
			q[TopLeft] = p
		}
		if s := p.X + p.Y; s > maxSum {
			maxSum = s
			q[BottomRight] = p
		}
		if d := p.X - p.Y; d > maxDiff {
			maxDiff = d
			q[TopRight] = p
		}
		if d := p.X - p.Y; d < minDiff {
			minDiff = d
			q[BottomLeft] = p
		}
	}
	return q
}

// Area returns the enclosed area computed with the shoelace formula.
// The result is non-negative regardless of winding.
func (q Quadrilateral) Area() float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		sum += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return math.Abs(sum) / 2
}

// Perimeter returns the sum of the four edge lengths.
func (q Quadrilateral) Perimeter() float64 {
	var sum float64
	for i := 0; i < 4; i++ {
		sum += q[i].Dist(q[(i+1)%4])
	}
	return sum
}

// IsConvex reports whether the corners form a convex polygon. All
// cross products of consecutive edges must share a sign and be
// non-zero; this also rules out self-intersection and collinear
// corners.
func (q Quadrilateral) IsConvex() bool {
	var sign float64
	for i := 0; i < 4; i++ {
		a := q[i]
		b := q[(i+1)%4]
		c := q[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if cross == 0 {
			return false
		}
		if sign == 0 {
			sign = cross
		} else if sign*cross < 0 {
			return false
		}
	}
	return true
}

// Validate rejects quadrilaterals that would break downstream
// rectification: self-intersecting or concave shapes and areas below
// minArea.
func (q Quadrilateral) Validate(minArea float64) error {
	if !q.IsConvex() {
		return fmt.Errorf("quadrilateral is not a simple convex polygon")
	}
	if a := q.Area(); a < minArea {
		return fmt.Errorf("quadrilateral area %.1f below minimum %.1f", a, minArea)
	}
	return nil
}

// AngleDeviation returns the summed absolute deviation of the four
// corner angles from 90 degrees, in degrees. A perfect rectangle
// scores zero; the detector uses this as a tie-breaker between
// candidates of similar area.
func (q Quadrilateral) AngleDeviation() float64 {
	var total float64
	for i := 0; i < 4; i++ {
		prev := q[(i+3)%4]
		cur := q[i]
		next := q[(i+1)%4]
		v1x, v1y := prev.X-cur.X, prev.Y-cur.Y
		v2x, v2y := next.X-cur.X, next.Y-cur.Y
		n1 := math.Hypot(v1x, v1y)
		n2 := math.Hypot(v2x, v2y)
		if n1 == 0 || n2 == 0 {
			total += 90
			continue
		}
		cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
		cos = math.Max(-1, math.Min(1, cos))
		angle := math.Acos(cos) * 180 / math.Pi
		total += math.Abs(angle - 90)
	}
	return total
}

// Scale returns a copy of q with every corner multiplied by factor.
// Used to map corners detected on a downscaled frame back to full
// resolution.
func (q Quadrilateral) Scale(factor float64) Quadrilateral {
	var out Quadrilateral
	for i, p := range q {
		out[i] = Point{X: p.X * factor, Y: p.Y * factor}
	}
	return out
}
