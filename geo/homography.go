package geo

import (
	"fmt"
	"math"
)

// Homography is a 3x3 projective transform in row-major order with the
// bottom-right element normalized to 1.
type Homography struct {
	m [9]float64
}

// NewHomography solves for the projective transform that maps the four
// corners of src onto the corresponding corners of dst. The four
// correspondences yield an 8x8 linear system solved by Gaussian
// elimination with partial pivoting.
func NewHomography(src, dst Quadrilateral) (*Homography, error) {
	var a [8][9]float64 // augmented matrix
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y
		a[2*i] = [9]float64{x, y, 1, 0, 0, 0, -u * x, -u * y, u}
		a[2*i+1] = [9]float64{0, 0, 0, x, y, 1, -v * x, -v * y, v}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for row := col + 1; row < 8; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("homography system is singular (degenerate corners)")
		}
		a[col], a[pivot] = a[pivot], a[col]
		for row := col + 1; row < 8; row++ {
			f := a[row][col] / a[col][col]
			for k := col; k < 9; k++ {
				a[row][k] -= f * a[col][k]
			}
		}
	}

	var h [8]float64
	for row := 7; row >= 0; row-- {
		sum := a[row][8]
		for k := row + 1; k < 8; k++ {
			sum -= a[row][k] * h[k]
		}
		h[row] = sum / a[row][row]
	}

	return &Homography{m: [9]float64{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}}, nil
}

// Apply maps p through the transform.
func (h *Homography) Apply(p Point) Point {
	w := h.m[6]*p.X + h.m[7]*p.Y + h.m[8]
	if w == 0 {
		return Point{}
	}
	return Point{
		X: (h.m[0]*p.X + h.m[1]*p.Y + h.m[2]) / w,
		Y: (h.m[3]*p.X + h.m[4]*p.Y + h.m[5]) / w,
	}
}

// Invert returns the inverse transform, computed from the adjugate.
func (h *Homography) Invert() (*Homography, error) {
	m := h.m
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
	if math.Abs(det) < 1e-12 {
		return nil, fmt.Errorf("homography is not invertible")
	}
	adj := [9]float64{
		m[4]*m[8] - m[5]*m[7], m[2]*m[7] - m[1]*m[8], m[1]*m[5] - m[2]*m[4],
		m[5]*m[6] - m[3]*m[8], m[0]*m[8] - m[2]*m[6], m[2]*m[3] - m[0]*m[5],
		m[3]*m[7] - m[4]*m[6], m[1]*m[6] - m[0]*m[7], m[0]*m[4] - m[1]*m[3],
	}
	var out Homography
	scale := adj[8] / det
	if scale == 0 {
		for i := range adj {
			out.m[i] = adj[i] / det
		}
		return &out, nil
	}
	// Renormalize so the bottom-right element is 1.
	for i := range adj {
		out.m[i] = adj[i] / det / scale
	}
	return &out, nil
}
