package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/docscan/frame"
	"github.com/wudi/docscan/ocr"
)

// ensureTesseractAvailable checks that the tesseract binary is
// reachable before running integration tests.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func textImage(t *testing.T, text string) *frame.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 240, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString(text)
	return frame.FromImage(img, time.Now())
}

func TestEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	in, err := ocr.InputFromFrame(textImage(t, "Hello scan"),
		ocr.WithID("test-1"),
		ocr.WithLanguages("eng"),
		ocr.WithDPI(300),
	)
	if err != nil {
		t.Fatalf("InputFromFrame() error = %v", err)
	}
	res, err := New().Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	got := strings.ToLower(res.PlainText)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "scan") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
	if len(res.Blocks) == 0 || len(res.Blocks[0].Lines) == 0 {
		t.Fatalf("expected structured blocks")
	}
	if res.InputID != "test-1" {
		t.Fatalf("unexpected input id: %s", res.InputID)
	}
}

func TestEngineBlankPage(t *testing.T) {
	ensureTesseractAvailable(t)

	blank, err := frame.NewGray(200, 100, whitePix(200*100), time.Now())
	if err != nil {
		t.Fatalf("NewGray() error = %v", err)
	}
	in, err := ocr.InputFromFrame(blank, ocr.WithLanguages("eng"), ocr.WithDPI(300))
	if err != nil {
		t.Fatalf("InputFromFrame() error = %v", err)
	}
	res, err := New().Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() on blank page error = %v, want success", err)
	}
	if res.PlainText != "" {
		t.Fatalf("blank page text = %q, want empty", res.PlainText)
	}
	if len(res.Blocks) != 0 {
		t.Fatalf("blank page blocks = %d, want 0", len(res.Blocks))
	}
}

func whitePix(n int) []uint8 {
	pix := make([]uint8, n)
	for i := range pix {
		pix[i] = 255
	}
	return pix
}
