// Package docscan assembles the document scanning pipeline behind the
// three operations the web layer needs: probe the camera, run a scan,
// read the last result.
package docscan

import (
	"context"
	"fmt"
	"time"

	"github.com/wudi/docscan/capture"
	"github.com/wudi/docscan/config"
	"github.com/wudi/docscan/detect"
	"github.com/wudi/docscan/enhance"
	"github.com/wudi/docscan/observability"
	"github.com/wudi/docscan/ocr"
	"github.com/wudi/docscan/ocr/tesseract"
	"github.com/wudi/docscan/pipeline"
	"github.com/wudi/docscan/rectify"
	"github.com/wudi/docscan/store"
)

// SourceKind selects where a scan's frame comes from.
type SourceKind string

const (
	// SourceCamera captures from the configured video device.
	SourceCamera SourceKind = "camera"
	// SourceUpload decodes the request payload instead.
	SourceUpload SourceKind = "upload"
)

// ScanRequest is the input to RunScan.
type ScanRequest struct {
	Source  SourceKind
	Payload []byte
}

// Service owns the pipeline, the camera handle and the result store.
// All state is injected and explicit; nothing lives in package-level
// globals.
type Service struct {
	camera capture.Source
	runner *pipeline.Runner
	store  *store.Store
	log    observability.Logger
}

// Option overrides a Service dependency, mainly for tests and
// alternative OCR providers.
type Option func(*serviceDeps)

type serviceDeps struct {
	camera capture.Source
	engine ocr.Engine
	log    observability.Logger
}

// WithFrameSource replaces the camera-backed frame source.
func WithFrameSource(src capture.Source) Option {
	return func(d *serviceDeps) { d.camera = src }
}

// WithEngine replaces the default Tesseract OCR engine.
func WithEngine(engine ocr.Engine) Option {
	return func(d *serviceDeps) { d.engine = engine }
}

// WithLogger attaches a logger to the service and all stages.
func WithLogger(log observability.Logger) Option {
	return func(d *serviceDeps) { d.log = log }
}

// New builds a Service from cfg.
func New(cfg config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	deps := serviceDeps{log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(&deps)
	}
	if deps.camera == nil {
		deps.camera = capture.NewCamera(
			capture.WithDevice(cfg.Capture.Device),
			capture.WithResolution(cfg.Capture.Width, cfg.Capture.Height),
			capture.WithWarmup(cfg.Capture.WarmupFrames),
			capture.WithTimeout(time.Duration(cfg.Capture.TimeoutSeconds)*time.Second),
			capture.WithLogger(deps.log),
		)
	}
	if deps.engine == nil {
		deps.engine = tesseract.New()
	}

	detector := detect.New(detect.Params{
		MinAreaFraction:       cfg.Detect.MinAreaFraction,
		ApproxEpsilonFraction: cfg.Detect.ApproxEpsilonFraction,
		AreaTieFraction:       cfg.Detect.AreaTieFraction,
		MaxProcessingDim:      cfg.Detect.MaxProcessingDim,
	}, detect.WithLogger(deps.log))
	rectifier := rectify.New(rectify.Params{
		MinOutputDim: cfg.Rectify.MinOutputDim,
		MaxOutputDim: cfg.Rectify.MaxOutputDim,
	})
	enhancer := enhance.New(enhance.Params{
		Mode:          enhance.Mode(cfg.Enhance.Mode),
		ClipLimit:     cfg.Enhance.ClipLimit,
		TileGrid:      cfg.Enhance.TileGrid,
		SharpenAmount: cfg.Enhance.SharpenAmount,
	})

	p := pipeline.New(detector, rectifier, enhancer, deps.engine,
		pipeline.WithLogger(deps.log),
		pipeline.WithInputOptions(
			ocr.WithLanguages(cfg.OCR.Languages...),
			ocr.WithDPI(cfg.OCR.DPI),
			ocr.WithTesseractPSM(cfg.OCR.PSM),
		),
	)
	runner, err := pipeline.NewRunner(p)
	if err != nil {
		return nil, err
	}
	return &Service{
		camera: deps.camera,
		runner: runner,
		store:  &store.Store{},
		log:    deps.log,
	}, nil
}

// CheckCameraAvailable probes the capture device. Absence of a camera
// is reported, never raised: the service still starts without one.
func (s *Service) CheckCameraAvailable() bool {
	return s.camera.Available()
}

// RunScan executes one scan and stores its result. Upload requests
// decode the payload instead of touching the camera. A scan already in
// progress is rejected with pipeline.ErrScanInProgress before any
// pipeline state is touched; rejected requests never reach the store.
func (s *Service) RunScan(ctx context.Context, req ScanRequest) (*pipeline.Result, error) {
	var src capture.Source
	switch req.Source {
	case SourceCamera:
		src = s.camera
	case SourceUpload:
		src = capture.NewBytesSource(req.Payload)
	default:
		return nil, fmt.Errorf("docscan: unknown scan source %q", req.Source)
	}
	res, err := s.runner.Run(ctx, src)
	if err != nil {
		return nil, err
	}
	s.store.Put(res)
	return res, nil
}

// LastResult returns the most recent completed scan, or false if no
// run has completed yet.
func (s *Service) LastResult() (*pipeline.Result, bool) {
	return s.store.Get()
}

// Busy reports whether a scan is currently in progress.
func (s *Service) Busy() bool { return s.runner.Busy() }

// Close releases the scan runner.
func (s *Service) Close() { s.runner.Close() }
