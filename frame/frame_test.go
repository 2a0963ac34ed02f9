package frame

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"
)

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte("not an image"), time.Now())
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("Decode() error = %v, want ErrDecode", err)
	}
}

func TestDecodePNGRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f, err := Decode(buf.Bytes(), ts)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.Width() != 3 || f.Height() != 2 {
		t.Fatalf("unexpected size %dx%d", f.Width(), f.Height())
	}
	if f.Channels() != ChannelsRGBA {
		t.Fatalf("unexpected channels %d", f.Channels())
	}
	if !f.CapturedAt().Equal(ts) {
		t.Fatalf("unexpected timestamp %v", f.CapturedAt())
	}
	got := f.ToImage().(*image.RGBA).RGBAAt(1, 1)
	if got != (color.RGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Fatalf("pixel (1,1) = %+v", got)
	}
}

func TestGrayConversion(t *testing.T) {
	pix := []uint8{
		255, 0, 0, 255,
		0, 255, 0, 255,
	}
	f, err := NewRGBA(2, 1, pix, time.Now())
	if err != nil {
		t.Fatalf("NewRGBA() error = %v", err)
	}
	g := f.Gray()
	if g.Channels() != ChannelsGray {
		t.Fatalf("Gray() channels = %d", g.Channels())
	}
	if got := g.GrayAt(0, 0); got != 76 {
		t.Fatalf("red luma = %d, want 76", got)
	}
	if got := g.GrayAt(1, 0); got != 150 {
		t.Fatalf("green luma = %d, want 150", got)
	}
	// Converting an already-gray frame returns the same frame.
	if g.Gray() != g {
		t.Fatalf("Gray() of a gray frame should be identity")
	}
}

func TestGrayAtOutOfBounds(t *testing.T) {
	f, err := NewGray(2, 2, []uint8{10, 20, 30, 40}, time.Now())
	if err != nil {
		t.Fatalf("NewGray() error = %v", err)
	}
	if got := f.GrayAt(-1, 0); got != 0 {
		t.Fatalf("out-of-bounds read = %d, want 0", got)
	}
	if got := f.GrayAt(2, 1); got != 0 {
		t.Fatalf("out-of-bounds read = %d, want 0", got)
	}
}

func TestNewBufferValidation(t *testing.T) {
	if _, err := NewGray(2, 2, []uint8{1, 2, 3}, time.Now()); err == nil {
		t.Fatalf("expected error for short gray buffer")
	}
	if _, err := NewRGBA(0, 2, nil, time.Now()); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestEncodePNG(t *testing.T) {
	f, err := NewGray(4, 4, make([]uint8, 16), time.Now())
	if err != nil {
		t.Fatalf("NewGray() error = %v", err)
	}
	data, err := f.EncodePNG()
	if err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	back, err := Decode(data, time.Now())
	if err != nil {
		t.Fatalf("Decode(encoded) error = %v", err)
	}
	if back.Width() != 4 || back.Height() != 4 {
		t.Fatalf("unexpected decoded size %dx%d", back.Width(), back.Height())
	}
}

func TestEncodeJPEG(t *testing.T) {
	pix := make([]uint8, 8*6)
	for i := range pix {
		pix[i] = uint8(i * 4)
	}
	f, err := NewGray(8, 6, pix, time.Now())
	if err != nil {
		t.Fatalf("NewGray() error = %v", err)
	}
	data, err := f.EncodeJPEG(90)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	back, err := Decode(data, time.Now())
	if err != nil {
		t.Fatalf("Decode(encoded) error = %v", err)
	}
	if back.Width() != 8 || back.Height() != 6 {
		t.Fatalf("unexpected decoded size %dx%d", back.Width(), back.Height())
	}
}
