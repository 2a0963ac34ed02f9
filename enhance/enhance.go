// Package enhance normalizes a rectified document image for OCR:
// adaptive contrast equalization followed by binarization or
// sharpening. Tuning favors recognition accuracy over visual fidelity.
package enhance

import (
	"fmt"

	"github.com/wudi/docscan/frame"
)

// Mode selects the final enhancement step.
type Mode string

const (
	// ModeBinarize applies Otsu global thresholding after
	// equalization, producing a black-and-white page.
	ModeBinarize Mode = "binarize"
	// ModeSharpen applies an unsharp mask instead of thresholding,
	// keeping grayscale detail.
	ModeSharpen Mode = "sharpen"
)

// Params tune the enhancement chain. The defaults mirror the original
// scanner: CLAHE with clip limit 2.0 on an 8x8 tile grid, then Otsu.
type Params struct {
	Mode Mode
	// ClipLimit bounds per-tile histogram peaks as a multiple of the
	// uniform bin height. Default 2.0.
	ClipLimit float64
	// TileGrid is the number of equalization tiles per axis. Default 8.
	TileGrid int
	// SharpenAmount scales the unsharp mask in ModeSharpen. Default 1.0.
	SharpenAmount float64
}

func (p Params) withDefaults() Params {
	if p.Mode == "" {
		p.Mode = ModeBinarize
	}
	if p.ClipLimit <= 0 {
		p.ClipLimit = 2.0
	}
	if p.TileGrid <= 0 {
		p.TileGrid = 8
	}
	if p.SharpenAmount <= 0 {
		p.SharpenAmount = 1.0
	}
	return p
}

// Enhancer applies the deterministic normalization chain.
type Enhancer struct {
	params Params
}

// New constructs an enhancer; zero-valued params fall back to
// defaults.
func New(params Params) *Enhancer {
	return &Enhancer{params: params.withDefaults()}
}

// Enhance produces a new single-channel frame at the input resolution.
// The only failure path is a malformed input frame; that is a
// defensive check, not expected in normal flow.
func (e *Enhancer) Enhance(f *frame.Frame) (*frame.Frame, error) {
	if f == nil || f.Width() == 0 || f.Height() == 0 {
		return nil, fmt.Errorf("enhance: malformed input frame")
	}
	gray := f.Gray()
	w, h := gray.Width(), gray.Height()

	equalized := clahe(gray.Pix(), w, h, e.params.ClipLimit, e.params.TileGrid)

	var out []uint8
	switch e.params.Mode {
	case ModeSharpen:
		out = unsharpMask(equalized, w, h, e.params.SharpenAmount)
	default:
		thr := otsuThreshold(equalized)
		out = make([]uint8, len(equalized))
		for i, v := range equalized {
			if v > thr {
				out[i] = 255
			}
		}
	}
	return frame.NewGray(w, h, out, f.CapturedAt())
}
