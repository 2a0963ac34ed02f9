package ocr

import (
	"context"
	"errors"
)

// ErrEngineUnavailable reports that the OCR engine could not be
// invoked at all (missing binary, missing language data). It is
// distinct from a page with no recognizable text, which is a success
// with zero blocks.
var ErrEngineUnavailable = errors.New("ocr: engine unavailable")

// Region describes a rectangular area in pixel coordinates with the
// origin in the upper-left corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// CenterY returns the vertical center of the region.
func (r Region) CenterY() float64 { return r.Y + r.Height/2 }

// Input encapsulates a single enhanced page image submitted for
// recognition.
type Input struct {
	// ID is an optional caller-provided identifier echoed back in the
	// corresponding Result.
	ID string
	// Image is the encoded image payload (PNG).
	Image []byte
	// DPI carries the effective dots-per-inch; zero means unknown.
	DPI int
	// Languages lists trained-data hints (e.g. "eng", "deu").
	Languages []string
	// Metadata passes engine-specific knobs (e.g. the Tesseract page
	// segmentation mode) without hard-coding them into the API.
	Metadata map[string]string
}

// TextWord is a single recognized token with its confidence in [0,1].
type TextWord struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// TextLine groups words that share a baseline.
type TextLine struct {
	Text       string
	Bounds     Region
	Words      []TextWord
	Confidence float64
}

// TextBlock is one element of the recognized sequence: a line cluster
// with positional metadata, ordered by natural reading order.
type TextBlock struct {
	Text       string
	Bounds     Region
	Lines      []TextLine
	Confidence float64
}

// Result captures OCR output for a single input image. Zero blocks is
// a valid result: a blank page recognizes to nothing.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PlainText is the linearized recognized text.
	PlainText string
	// Blocks carries the structured output in reading order.
	Blocks []TextBlock
	// Language is the dominant language hint, if known.
	Language string
}

// MeanConfidence averages block confidences; zero when no blocks.
func (r Result) MeanConfidence() float64 {
	if len(r.Blocks) == 0 {
		return 0
	}
	var sum float64
	for _, b := range r.Blocks {
		sum += b.Confidence
	}
	return sum / float64(len(r.Blocks))
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// BatchEngine handles multiple images in one call, for providers that
// amortize setup costs.
type BatchEngine interface {
	Engine
	RecognizeBatch(ctx context.Context, inputs []Input) ([]Result, error)
}
