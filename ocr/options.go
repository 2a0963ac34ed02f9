package ocr

import (
	"fmt"
	"strconv"

	"github.com/wudi/docscan/frame"
)

// InputOption mutates an OCR input built from a frame.
type InputOption func(*Input)

// WithID sets the caller-provided identifier.
func WithID(id string) InputOption {
	return func(in *Input) { in.ID = id }
}

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// WithTesseractPSM sets the page segmentation mode for Tesseract.
// The original scanner ran with mode 6 (assume a uniform block of
// text).
func WithTesseractPSM(mode int) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_pageseg_mode"] = strconv.Itoa(mode)
	}
}

// WithTesseractWhitelist restricts recognition to the given
// characters.
func WithTesseractWhitelist(chars string) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata["tessedit_char_whitelist"] = chars
	}
}

// InputFromFrame encodes an enhanced frame as PNG and wraps it as an
// OCR input.
func InputFromFrame(f *frame.Frame, opts ...InputOption) (Input, error) {
	data, err := f.EncodePNG()
	if err != nil {
		return Input{}, fmt.Errorf("encode frame: %w", err)
	}
	in := Input{Image: data}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}
