// Package rectify warps a detected document quadrilateral into an
// axis-aligned rectangular image.
package rectify

import (
	"errors"
	"fmt"
	"math"

	"github.com/wudi/docscan/frame"
	"github.com/wudi/docscan/geo"
)

// ErrDegenerateQuadrilateral reports that the estimated output
// rectangle is too small to resample through safely.
var ErrDegenerateQuadrilateral = errors.New("rectify: degenerate quadrilateral")

// Params control the output sizing policy.
type Params struct {
	// MinOutputDim is the smallest accepted target width or height in
	// pixels; below it the quadrilateral is considered degenerate.
	// Default 32.
	MinOutputDim int
	// MaxOutputDim caps the target size against pathological corner
	// estimates. Default 4096.
	MaxOutputDim int
}

func (p Params) withDefaults() Params {
	if p.MinOutputDim <= 0 {
		p.MinOutputDim = 32
	}
	if p.MaxOutputDim <= 0 {
		p.MaxOutputDim = 4096
	}
	return p
}

// Rectifier performs perspective correction. The zero value is not
// usable; construct with New.
type Rectifier struct {
	params Params
}

// New constructs a rectifier; zero-valued params fall back to
// defaults.
func New(params Params) *Rectifier {
	return &Rectifier{params: params.withDefaults()}
}

// TargetSize estimates the output rectangle from the longest
// opposite-edge pairs of q. Corners sit at pixel centers, so an edge
// length of n spans n+1 pixels.
func TargetSize(q geo.Quadrilateral) (int, int) {
	top := q[geo.TopLeft].Dist(q[geo.TopRight])
	bottom := q[geo.BottomLeft].Dist(q[geo.BottomRight])
	left := q[geo.TopLeft].Dist(q[geo.BottomLeft])
	right := q[geo.TopRight].Dist(q[geo.BottomRight])
	w := int(math.Round(math.Max(top, bottom))) + 1
	h := int(math.Round(math.Max(left, right))) + 1
	return w, h
}

// Rectify resamples f through the projective transform that maps q
// onto the target rectangle. The operation is deterministic: identical
// inputs always produce the identical output frame.
func (r *Rectifier) Rectify(f *frame.Frame, q geo.Quadrilateral) (*frame.Frame, error) {
	w, h := TargetSize(q)
	if w < r.params.MinOutputDim || h < r.params.MinOutputDim {
		return nil, fmt.Errorf("%w: target %dx%d below minimum %d",
			ErrDegenerateQuadrilateral, w, h, r.params.MinOutputDim)
	}
	if w > r.params.MaxOutputDim {
		w = r.params.MaxOutputDim
	}
	if h > r.params.MaxOutputDim {
		h = r.params.MaxOutputDim
	}

	// Map output pixels back into the source, so solve dst -> src.
	dst := geo.Quadrilateral{
		{X: 0, Y: 0},
		{X: float64(w - 1), Y: 0},
		{X: float64(w - 1), Y: float64(h - 1)},
		{X: 0, Y: float64(h - 1)},
	}
	hom, err := geo.NewHomography(dst, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateQuadrilateral, err)
	}

	channels := f.Channels()
	out := make([]uint8, w*h*channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src := hom.Apply(geo.Point{X: float64(x), Y: float64(y)})
			sampleBilinear(f, src.X, src.Y, out[(y*w+x)*channels:(y*w+x)*channels+channels])
		}
	}
	if channels == frame.ChannelsGray {
		return frame.NewGray(w, h, out, f.CapturedAt())
	}
	return frame.NewRGBA(w, h, out, f.CapturedAt())
}

// sampleBilinear writes the interpolated sample at (x, y) into dst,
// one byte per channel. Coordinates outside the source clamp to the
// border.
func sampleBilinear(f *frame.Frame, x, y float64, dst []uint8) {
	w, h := f.Width(), f.Height()
	x = math.Max(0, math.Min(float64(w-1), x))
	y = math.Max(0, math.Min(float64(h-1), y))
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= w {
		x1 = w - 1
	}
	if y1 >= h {
		y1 = h - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)

	pix := f.Pix()
	ch := f.Channels()
	for c := 0; c < ch; c++ {
		p00 := float64(pix[(y0*w+x0)*ch+c])
		p10 := float64(pix[(y0*w+x1)*ch+c])
		p01 := float64(pix[(y1*w+x0)*ch+c])
		p11 := float64(pix[(y1*w+x1)*ch+c])
		top := p00 + (p10-p00)*fx
		bot := p01 + (p11-p01)*fx
		dst[c] = uint8(math.Round(top + (bot-top)*fy))
	}
}
