// Package capture abstracts where scan frames come from: a live
// camera device or an uploaded still image.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wudi/docscan/frame"
)

var (
	// ErrUnavailable reports that no capture device is reachable.
	ErrUnavailable = errors.New("capture: device unavailable")
	// ErrTimeout reports that no frame arrived within the bounded wait.
	ErrTimeout = errors.New("capture: frame wait timed out")
)

// Source yields raw frames for the scan pipeline.
//
// Available is a capability probe: it reports whether a device is
// usable and never fails — an absent device degrades to false.
// Capture returns the next frame or ErrUnavailable / ErrTimeout; it
// must not block past the context deadline.
type Source interface {
	Available() bool
	Capture(ctx context.Context) (*frame.Frame, error)
}

// BytesSource serves a single uploaded image instead of a device.
type BytesSource struct {
	data []byte
	now  func() time.Time
}

// NewBytesSource wraps an encoded still image payload.
func NewBytesSource(data []byte) *BytesSource {
	return &BytesSource{data: data, now: time.Now}
}

// Available always reports true: the payload is already in hand.
func (s *BytesSource) Available() bool { return true }

// Capture decodes the payload. Malformed input surfaces as
// frame.ErrDecode so the pipeline can classify it as a capture-stage
// failure.
func (s *BytesSource) Capture(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return frame.Decode(s.data, s.now())
}
