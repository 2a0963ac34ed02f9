// Package pipeline sequences the scan stages — capture, boundary
// detection, rectification, enhancement, text extraction — and applies
// the partial-failure policy so the caller always receives the best
// available artifact.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wudi/docscan/capture"
	"github.com/wudi/docscan/frame"
	"github.com/wudi/docscan/geo"
	"github.com/wudi/docscan/observability"
	"github.com/wudi/docscan/ocr"
)

// ErrScanInProgress rejects a scan request while another run holds the
// capture device. It is a precondition failure: no pipeline state is
// touched.
var ErrScanInProgress = errors.New("pipeline: scan already in progress")

// Stage identifies a pipeline state. A run moves through them in
// order; a failure makes the stage terminal.
type Stage string

const (
	StageCapturing  Stage = "capturing"
	StageDetecting  Stage = "detecting"
	StageRectifying Stage = "rectifying"
	StageEnhancing  Stage = "enhancing"
	StageExtracting Stage = "extracting"
	StageCompleted  Stage = "completed"
)

// Status classifies the overall outcome of a run.
type Status string

const (
	// StatusSuccess means every stage completed.
	StatusSuccess Status = "success"
	// StatusPartial means a stage degraded but a usable artifact
	// survived (raw photo or image without text).
	StatusPartial Status = "partial"
	// StatusFailed means no image is available at all.
	StatusFailed Status = "failed"
)

// Result is the immutable outcome of one pipeline run. It is never
// mutated after creation; the next run supersedes it.
type Result struct {
	// ID uniquely identifies the run.
	ID string
	// Status is the overall outcome.
	Status Status
	// FailedStage and Reason describe what degraded, so the UI can
	// explain e.g. "document edges not found; showing raw photo".
	// Both are empty on success.
	FailedStage Stage
	Reason      string
	// Image is the best available artifact: the enhanced page on
	// success, the raw capture when the document could not be
	// isolated, nil when capture itself failed.
	Image *frame.Frame
	// PlainText is the linearized recognized text.
	PlainText string
	// Blocks is the recognized sequence in reading order; empty on a
	// blank page and on degraded runs.
	Blocks []ocr.TextBlock
	// MeanConfidence averages block confidences; zero when extraction
	// failed or found nothing.
	MeanConfidence float64
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Detector finds the document boundary in a frame.
type Detector interface {
	Detect(f *frame.Frame) (geo.Quadrilateral, error)
}

// Rectifier warps the detected quadrilateral into a rectangle.
type Rectifier interface {
	Rectify(f *frame.Frame, q geo.Quadrilateral) (*frame.Frame, error)
}

// Enhancer normalizes a rectified image for recognition.
type Enhancer interface {
	Enhance(f *frame.Frame) (*frame.Frame, error)
}

// Pipeline runs the scan stages synchronously in a single goroutine.
type Pipeline struct {
	detector  Detector
	rectifier Rectifier
	enhancer  Enhancer
	engine    ocr.Engine
	inputOpts []ocr.InputOption
	log       observability.Logger
	now       func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger attaches a logger to the pipeline.
func WithLogger(log observability.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithInputOptions sets the OCR input options applied to every run
// (languages, DPI, page segmentation mode).
func WithInputOptions(opts ...ocr.InputOption) Option {
	return func(p *Pipeline) { p.inputOpts = opts }
}

// New wires the four stages and the OCR engine into a pipeline.
func New(detector Detector, rectifier Rectifier, enhancer Enhancer, engine ocr.Engine, opts ...Option) *Pipeline {
	p := &Pipeline{
		detector:  detector,
		rectifier: rectifier,
		enhancer:  enhancer,
		engine:    engine,
		log:       observability.NopLogger{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one scan against src and always returns a Result; stage
// failures are folded into the partial/failed status model instead of
// propagating.
func (p *Pipeline) Run(ctx context.Context, src capture.Source) *Result {
	res := &Result{ID: uuid.NewString(), StartedAt: p.now()}
	log := p.log.With(observability.String("scan_id", res.ID))

	raw, err := p.timed(log, StageCapturing, observability.MetricCaptureTime, func() (*frame.Frame, error) {
		return src.Capture(ctx)
	})
	if err != nil {
		// No artifact at all: the run failed outright.
		return p.finish(log, res, StatusFailed, StageCapturing, err)
	}

	quad, err := p.timedQuad(log, func() (geo.Quadrilateral, error) {
		return p.detector.Detect(raw)
	})
	if err != nil {
		// Best effort: keep the raw photo, skip text extraction.
		res.Image = raw
		return p.finish(log, res, StatusPartial, StageDetecting, err)
	}

	rectified, err := p.timed(log, StageRectifying, observability.MetricRectifyTime, func() (*frame.Frame, error) {
		return p.rectifier.Rectify(raw, quad)
	})
	if err != nil {
		res.Image = raw
		return p.finish(log, res, StatusPartial, StageRectifying, err)
	}

	enhanced, err := p.timed(log, StageEnhancing, observability.MetricEnhanceTime, func() (*frame.Frame, error) {
		return p.enhancer.Enhance(rectified)
	})
	if err != nil {
		res.Image = rectified
		return p.finish(log, res, StatusPartial, StageEnhancing, err)
	}
	res.Image = enhanced

	extractStart := p.now()
	ocrRes, err := p.extract(ctx, enhanced)
	log.Debug("stage finished",
		observability.String("stage", string(StageExtracting)),
		observability.Duration(observability.MetricExtractTime, p.now().Sub(extractStart)))
	if err != nil {
		// Keep the enhanced image; the empty sequence plus zero
		// confidence signal that extraction failed.
		return p.finish(log, res, StatusPartial, StageExtracting, err)
	}

	res.PlainText = ocrRes.PlainText
	res.Blocks = ocr.SortReadingOrder(ocrRes.Blocks)
	res.MeanConfidence = ocrRes.MeanConfidence()
	return p.finish(log, res, StatusSuccess, StageCompleted, nil)
}

func (p *Pipeline) extract(ctx context.Context, enhanced *frame.Frame) (ocr.Result, error) {
	in, err := ocr.InputFromFrame(enhanced, p.inputOpts...)
	if err != nil {
		return ocr.Result{}, err
	}
	return p.engine.Recognize(ctx, in)
}

func (p *Pipeline) timed(log observability.Logger, stage Stage, metric string, fn func() (*frame.Frame, error)) (*frame.Frame, error) {
	start := p.now()
	f, err := fn()
	log.Debug("stage finished",
		observability.String("stage", string(stage)),
		observability.Duration(metric, p.now().Sub(start)))
	return f, err
}

func (p *Pipeline) timedQuad(log observability.Logger, fn func() (geo.Quadrilateral, error)) (geo.Quadrilateral, error) {
	start := p.now()
	q, err := fn()
	log.Debug("stage finished",
		observability.String("stage", string(StageDetecting)),
		observability.Duration(observability.MetricDetectTime, p.now().Sub(start)))
	return q, err
}

func (p *Pipeline) finish(log observability.Logger, res *Result, status Status, stage Stage, err error) *Result {
	res.Status = status
	res.FinishedAt = p.now()
	if err != nil {
		res.FailedStage = stage
		res.Reason = err.Error()
		log.Warn("scan degraded",
			observability.String("status", string(status)),
			observability.String("stage", string(stage)),
			observability.Error("reason", err),
			observability.Duration(observability.MetricScanTime, res.FinishedAt.Sub(res.StartedAt)))
		return res
	}
	log.Info("scan completed",
		observability.Int("blocks", len(res.Blocks)),
		observability.Float64("confidence", res.MeanConfidence),
		observability.Duration(observability.MetricScanTime, res.FinishedAt.Sub(res.StartedAt)))
	return res
}
