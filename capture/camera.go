package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/wudi/docscan/frame"
	"github.com/wudi/docscan/observability"
)

// Camera captures frames from a local video device through OpenCV.
// At most one open/read cycle runs at a time; the device handle is
// opened per capture and released before returning.
type Camera struct {
	deviceID     int
	width        int
	height       int
	warmupFrames int
	warmupDelay  time.Duration
	timeout      time.Duration
	log          observability.Logger

	mu sync.Mutex
}

// CameraOption configures a Camera.
type CameraOption func(*Camera)

// WithDevice selects the video device index (default 0).
func WithDevice(id int) CameraOption {
	return func(c *Camera) { c.deviceID = id }
}

// WithResolution requests a capture resolution from the driver. The
// driver may ignore the request; the actual frame size wins.
func WithResolution(w, h int) CameraOption {
	return func(c *Camera) { c.width, c.height = w, h }
}

// WithWarmup sets how many frames are grabbed and discarded before the
// kept frame, letting the sensor adjust exposure (default 5).
func WithWarmup(frames int) CameraOption {
	return func(c *Camera) { c.warmupFrames = frames }
}

// WithTimeout bounds the total wait for a usable frame (default 30s).
func WithTimeout(d time.Duration) CameraOption {
	return func(c *Camera) { c.timeout = d }
}

// WithLogger attaches a logger to the camera.
func WithLogger(log observability.Logger) CameraOption {
	return func(c *Camera) { c.log = log }
}

// NewCamera constructs a camera source with the original scanner's
// defaults: device 0, 1920x1080, five warm-up frames, 30s timeout.
func NewCamera(opts ...CameraOption) *Camera {
	c := &Camera{
		deviceID:     0,
		width:        1920,
		height:       1080,
		warmupFrames: 5,
		warmupDelay:  100 * time.Millisecond,
		timeout:      30 * time.Second,
		log:          observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available probes the device: open, grab one frame, release. Any
// failure reports false rather than an error.
func (c *Camera) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	vc, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return false
	}
	defer vc.Close()
	if !vc.IsOpened() {
		return false
	}
	mat := gocv.NewMat()
	defer mat.Close()
	return vc.Read(&mat) && !mat.Empty()
}

// Capture grabs a frame from the device. The wait is bounded by the
// configured timeout and by the context deadline, whichever ends
// first.
func (c *Camera) Capture(ctx context.Context) (*frame.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	vc, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: open device %d: %v", ErrUnavailable, c.deviceID, err)
	}
	defer vc.Close()
	if !vc.IsOpened() {
		return nil, fmt.Errorf("%w: device %d not opened", ErrUnavailable, c.deviceID)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.height))

	c.log.Debug("camera opened",
		observability.Int("device", c.deviceID),
		observability.Int("warmup_frames", c.warmupFrames))

	mat := gocv.NewMat()
	defer mat.Close()

	// Let the sensor settle on exposure before keeping a frame.
	for i := 0; i < c.warmupFrames; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: during warm-up: %v", ErrTimeout, err)
		}
		if !vc.Read(&mat) {
			return nil, fmt.Errorf("%w: device %d stopped producing frames", ErrUnavailable, c.deviceID)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: during warm-up: %v", ErrTimeout, ctx.Err())
		case <-time.After(c.warmupDelay):
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if !vc.Read(&mat) || mat.Empty() {
		return nil, fmt.Errorf("%w: device %d returned no frame", ErrUnavailable, c.deviceID)
	}
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("capture: convert frame: %w", err)
	}

	f := frame.FromImage(img, time.Now())
	c.log.Info("frame captured",
		observability.Int("width", f.Width()),
		observability.Int("height", f.Height()))
	return f, nil
}
