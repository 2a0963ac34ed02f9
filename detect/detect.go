// Package detect locates the quadrilateral outline of a document
// within a frame. The stages mirror the classic contour approach:
// grayscale, Gaussian blur, Sobel edges, closed-contour enumeration,
// polygon approximation, candidate selection.
package detect

import (
	"errors"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/wudi/docscan/frame"
	"github.com/wudi/docscan/geo"
	"github.com/wudi/docscan/observability"
)

// ErrNoDocumentFound reports that no contour qualified as a document
// boundary. Downstream stages never receive a degenerate guess.
var ErrNoDocumentFound = errors.New("detect: no document boundary found")

// Params are the detector's tunables. The original tuning is unknown,
// so every threshold is configurable rather than hard-coded.
type Params struct {
	// MinAreaFraction is the minimum candidate area as a fraction of
	// the frame area. Default 0.1.
	MinAreaFraction float64
	// ApproxEpsilonFraction scales the polygon approximation tolerance
	// by the contour perimeter. Default 0.02.
	ApproxEpsilonFraction float64
	// AreaTieFraction treats candidates within this relative area of
	// the largest as ties, resolved by corner-angle deviation from 90
	// degrees. Default 0.05.
	AreaTieFraction float64
	// MinEdgeThreshold floors the Otsu edge threshold so sensor noise
	// on near-uniform frames does not produce spurious contours.
	// Default 10.
	MinEdgeThreshold uint8
	// MaxProcessingDim caps the working resolution; larger frames are
	// downscaled for detection and the corners mapped back. Default
	// 1000.
	MaxProcessingDim int
}

func (p Params) withDefaults() Params {
	if p.MinAreaFraction <= 0 {
		p.MinAreaFraction = 0.1
	}
	if p.ApproxEpsilonFraction <= 0 {
		p.ApproxEpsilonFraction = 0.02
	}
	if p.AreaTieFraction <= 0 {
		p.AreaTieFraction = 0.05
	}
	if p.MinEdgeThreshold == 0 {
		p.MinEdgeThreshold = 10
	}
	if p.MaxProcessingDim <= 0 {
		p.MaxProcessingDim = 1000
	}
	return p
}

// Detector finds document boundaries in frames.
type Detector struct {
	params Params
	log    observability.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger attaches a logger to the detector.
func WithLogger(log observability.Logger) Option {
	return func(d *Detector) { d.log = log }
}

// New constructs a detector; zero-valued params fall back to defaults.
func New(params Params, opts ...Option) *Detector {
	d := &Detector{params: params.withDefaults(), log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type candidate struct {
	quad geo.Quadrilateral
	area float64
	dev  float64
}

// Detect returns the document boundary in f, or ErrNoDocumentFound.
func (d *Detector) Detect(f *frame.Frame) (geo.Quadrilateral, error) {
	work := f.Gray()
	ratio := 1.0
	if maxDim := max(work.Width(), work.Height()); maxDim > d.params.MaxProcessingDim {
		ratio = float64(maxDim) / float64(d.params.MaxProcessingDim)
		work = downscale(work, ratio)
		d.log.Debug("downscaled frame for detection",
			observability.Int("width", work.Width()),
			observability.Int("height", work.Height()))
	}
	w, h := work.Width(), work.Height()

	blurred := gaussian3x3(work.Pix(), w, h)
	mag := sobelMagnitude(blurred, w, h)
	thr := otsuThreshold(mag)
	if thr < d.params.MinEdgeThreshold {
		thr = d.params.MinEdgeThreshold
	}
	edges := make([]uint8, len(mag))
	any := false
	for i, v := range mag {
		if v > thr {
			edges[i] = 1
			any = true
		}
	}
	if !any {
		return geo.Quadrilateral{}, ErrNoDocumentFound
	}

	minArea := d.params.MinAreaFraction * float64(w) * float64(h)
	var candidates []candidate
	for _, contour := range traceContours(edges, w, h) {
		perimeter := contourPerimeter(contour)
		poly := approxPolygon(contour, d.params.ApproxEpsilonFraction*perimeter)
		if len(poly) != 4 {
			continue
		}
		quad := geo.OrderCorners([4]geo.Point{poly[0], poly[1], poly[2], poly[3]})
		if quad.Validate(minArea) != nil {
			continue
		}
		candidates = append(candidates, candidate{
			quad: quad,
			area: quad.Area(),
			dev:  quad.AngleDeviation(),
		})
	}
	if len(candidates) == 0 {
		return geo.Quadrilateral{}, ErrNoDocumentFound
	}

	best := pickBest(candidates, d.params.AreaTieFraction)
	if ratio != 1 {
		best = best.Scale(ratio)
	}
	d.log.Debug("document boundary found",
		observability.Int("candidates", len(candidates)),
		observability.Float64("area", best.Area()),
		observability.Float64("perimeter", best.Perimeter()))
	return best, nil
}

// pickBest prefers the largest candidate; candidates within tieFrac of
// that area compete on least corner-angle deviation from 90 degrees.
func pickBest(candidates []candidate, tieFrac float64) geo.Quadrilateral {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.area > best.area {
			best = c
		}
	}
	winner := best
	for _, c := range candidates {
		if c.area >= best.area*(1-tieFrac) && c.dev < winner.dev {
			winner = c
		}
	}
	return winner.quad
}

func contourPerimeter(pts []geo.Point) float64 {
	var sum float64
	for i := range pts {
		sum += pts[i].Dist(pts[(i+1)%len(pts)])
	}
	return sum
}

func downscale(f *frame.Frame, ratio float64) *frame.Frame {
	w := int(math.Round(float64(f.Width()) / ratio))
	h := int(math.Round(float64(f.Height()) / ratio))
	src := f.ToImage()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return frame.FromImage(dst, f.CapturedAt())
}
