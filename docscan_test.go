package docscan

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/wudi/docscan/config"
	"github.com/wudi/docscan/ocr"
	"github.com/wudi/docscan/pipeline"
)

type stubEngine struct {
	result ocr.Result
	err    error
	calls  int
}

func (e *stubEngine) Name() string { return "stub" }

func (e *stubEngine) Recognize(context.Context, ocr.Input) (ocr.Result, error) {
	e.calls++
	if e.err != nil {
		return ocr.Result{}, e.err
	}
	return e.result, nil
}

// documentPNG renders a page-like dark quadrilateral on white so the
// detector has something to find.
func documentPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 400, 300))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Gray{Y: 255}}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(60, 50, 340, 250), &image.Uniform{C: color.Gray{Y: 30}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, engine ocr.Engine) *Service {
	t.Helper()
	svc, err := New(config.Default(), WithEngine(engine))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func TestRunScanUpload(t *testing.T) {
	engine := &stubEngine{result: ocr.Result{
		PlainText: "hello",
		Blocks:    []ocr.TextBlock{{Text: "hello", Confidence: 0.9}},
	}}
	svc := newTestService(t, engine)

	res, err := svc.RunScan(context.Background(), ScanRequest{
		Source:  SourceUpload,
		Payload: documentPNG(t),
	})
	if err != nil {
		t.Fatalf("RunScan() error = %v", err)
	}
	if res.Status != pipeline.StatusSuccess {
		t.Fatalf("Status = %q (stage %q: %s)", res.Status, res.FailedStage, res.Reason)
	}
	if res.PlainText != "hello" {
		t.Fatalf("PlainText = %q", res.PlainText)
	}
	if engine.calls != 1 {
		t.Fatalf("engine called %d times", engine.calls)
	}
	if res.Image == nil {
		t.Fatalf("success result missing image")
	}
}

func TestRunScanUploadMalformed(t *testing.T) {
	svc := newTestService(t, &stubEngine{})

	res, err := svc.RunScan(context.Background(), ScanRequest{
		Source:  SourceUpload,
		Payload: []byte("not an image"),
	})
	if err != nil {
		t.Fatalf("RunScan() error = %v, malformed input folds into the result", err)
	}
	if res.Status != pipeline.StatusFailed || res.FailedStage != pipeline.StageCapturing {
		t.Fatalf("got %q at %q, want failed at capturing", res.Status, res.FailedStage)
	}
}

func TestRunScanUnknownSource(t *testing.T) {
	svc := newTestService(t, &stubEngine{})
	if _, err := svc.RunScan(context.Background(), ScanRequest{Source: "tape"}); err == nil {
		t.Fatalf("expected error for unknown source")
	}
	if _, ok := svc.LastResult(); ok {
		t.Fatalf("rejected request must not touch the store")
	}
}

func TestLastResultLifecycle(t *testing.T) {
	engine := &stubEngine{}
	svc := newTestService(t, engine)

	if _, ok := svc.LastResult(); ok {
		t.Fatalf("LastResult() before any scan should be empty")
	}

	first, err := svc.RunScan(context.Background(), ScanRequest{Source: SourceUpload, Payload: documentPNG(t)})
	if err != nil {
		t.Fatalf("RunScan() error = %v", err)
	}
	got, ok := svc.LastResult()
	if !ok || got != first {
		t.Fatalf("LastResult() = %v, want the first run's result", got)
	}

	second, err := svc.RunScan(context.Background(), ScanRequest{Source: SourceUpload, Payload: documentPNG(t)})
	if err != nil {
		t.Fatalf("RunScan() error = %v", err)
	}
	got, ok = svc.LastResult()
	if !ok || got != second {
		t.Fatalf("LastResult() after second run = %v, want the new result", got)
	}
	if first.ID == second.ID {
		t.Fatalf("runs must have distinct ids")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Enhance.Mode = "invert"
	if _, err := New(cfg, WithEngine(&stubEngine{})); err == nil {
		t.Fatalf("expected config validation error")
	}
}
