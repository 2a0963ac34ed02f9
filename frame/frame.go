// Package frame holds the pixel buffer type passed between scan
// pipeline stages. Frames are treated as immutable: a stage never
// writes into the buffer of a frame it received, it derives a new one.
package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrDecode reports that an uploaded payload could not be decoded as
// an image.
var ErrDecode = errors.New("frame: decode image")

// Channel counts supported by Frame.
const (
	ChannelsGray = 1
	ChannelsRGBA = 4
)

// Frame is an immutable 2-D grid of pixel samples plus the moment it
// was captured or decoded.
type Frame struct {
	pix        []uint8
	width      int
	height     int
	channels   int
	capturedAt time.Time
}

// NewGray wraps a single-channel buffer of length w*h. The frame takes
// ownership of pix; the caller must not modify it afterwards.
func NewGray(w, h int, pix []uint8, capturedAt time.Time) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("frame: invalid dimensions %dx%d", w, h)
	}
	if len(pix) != w*h {
		return nil, fmt.Errorf("frame: gray buffer length %d, want %d", len(pix), w*h)
	}
	return &Frame{pix: pix, width: w, height: h, channels: ChannelsGray, capturedAt: capturedAt}, nil
}

// NewRGBA wraps a four-channel buffer of length 4*w*h. The frame takes
// ownership of pix; the caller must not modify it afterwards.
func NewRGBA(w, h int, pix []uint8, capturedAt time.Time) (*Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("frame: invalid dimensions %dx%d", w, h)
	}
	if len(pix) != 4*w*h {
		return nil, fmt.Errorf("frame: rgba buffer length %d, want %d", len(pix), 4*w*h)
	}
	return &Frame{pix: pix, width: w, height: h, channels: ChannelsRGBA, capturedAt: capturedAt}, nil
}

// FromImage copies a decoded image into a frame. Grayscale sources map
// to a single-channel frame, everything else to RGBA.
func FromImage(img image.Image, capturedAt time.Time) *Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if g, ok := img.(*image.Gray); ok {
		pix := make([]uint8, w*h)
		for y := 0; y < h; y++ {
			copy(pix[y*w:(y+1)*w], g.Pix[y*g.Stride:y*g.Stride+w])
		}
		f, _ := NewGray(w, h, pix, capturedAt)
		return f
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	f, _ := NewRGBA(w, h, rgba.Pix, capturedAt)
	return f
}

// Decode parses an encoded still image (PNG, JPEG, TIFF, BMP) into a
// frame. Malformed input is reported as ErrDecode.
func Decode(data []byte, capturedAt time.Time) (*Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromImage(img, capturedAt), nil
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.height }

// Channels returns the samples per pixel (1 for gray, 4 for RGBA).
func (f *Frame) Channels() int { return f.channels }

// CapturedAt returns the capture or decode timestamp.
func (f *Frame) CapturedAt() time.Time { return f.capturedAt }

// Pix exposes the underlying sample buffer without copying. The buffer
// is shared; callers must treat it as read-only.
func (f *Frame) Pix() []uint8 { return f.pix }

// GrayAt returns the intensity at (x, y). For RGBA frames the BT.601
// luma of the pixel is returned. Out-of-bounds coordinates yield 0.
func (f *Frame) GrayAt(x, y int) uint8 {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return 0
	}
	if f.channels == ChannelsGray {
		return f.pix[y*f.width+x]
	}
	i := (y*f.width + x) * 4
	return luma(f.pix[i], f.pix[i+1], f.pix[i+2])
}

// Gray returns a single-channel view of the frame. Grayscale frames
// are returned as-is; RGBA frames are converted with BT.601 weights.
func (f *Frame) Gray() *Frame {
	if f.channels == ChannelsGray {
		return f
	}
	pix := make([]uint8, f.width*f.height)
	for i := 0; i < f.width*f.height; i++ {
		pix[i] = luma(f.pix[i*4], f.pix[i*4+1], f.pix[i*4+2])
	}
	out, _ := NewGray(f.width, f.height, pix, f.capturedAt)
	return out
}

// ToImage copies the frame into a standard library image.
func (f *Frame) ToImage() image.Image {
	if f.channels == ChannelsGray {
		img := image.NewGray(image.Rect(0, 0, f.width, f.height))
		copy(img.Pix, f.pix)
		return img
	}
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	copy(img.Pix, f.pix)
	return img
}

// EncodePNG serializes the frame as PNG.
func (f *Frame) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, f.ToImage()); err != nil {
		return nil, fmt.Errorf("frame: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeJPEG serializes the frame as JPEG with the given quality
// (1-100).
func (f *Frame) EncodeJPEG(quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.ToImage(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("frame: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func luma(r, g, b uint8) uint8 {
	// BT.601 integer approximation, same weights image.Gray uses.
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b) + 500) / 1000)
}
