// Package config holds every tunable of the scan pipeline in one
// place. The original tuning of the detection thresholds is unknown,
// so all of them are file-configurable rather than baked in.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config aggregates the per-stage settings.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Detect  DetectConfig  `yaml:"detect"`
	Rectify RectifyConfig `yaml:"rectify"`
	Enhance EnhanceConfig `yaml:"enhance"`
	OCR     OCRConfig     `yaml:"ocr"`
	Log     LogConfig     `yaml:"log"`
}

// CaptureConfig mirrors the original launch defaults: device 0,
// 1920x1080, 30 second timeout.
type CaptureConfig struct {
	Device         int `yaml:"device"`
	Width          int `yaml:"width"`
	Height         int `yaml:"height"`
	WarmupFrames   int `yaml:"warmup_frames"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type DetectConfig struct {
	MinAreaFraction       float64 `yaml:"min_area_fraction"`
	ApproxEpsilonFraction float64 `yaml:"approx_epsilon_fraction"`
	AreaTieFraction       float64 `yaml:"area_tie_fraction"`
	MaxProcessingDim      int     `yaml:"max_processing_dim"`
}

type RectifyConfig struct {
	MinOutputDim int `yaml:"min_output_dim"`
	MaxOutputDim int `yaml:"max_output_dim"`
}

type EnhanceConfig struct {
	Mode          string  `yaml:"mode"` // binarize or sharpen
	ClipLimit     float64 `yaml:"clip_limit"`
	TileGrid      int     `yaml:"tile_grid"`
	SharpenAmount float64 `yaml:"sharpen_amount"`
}

type OCRConfig struct {
	Languages []string `yaml:"languages"`
	PSM       int      `yaml:"psm"`
	DPI       int      `yaml:"dpi"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration matching the original scanner's
// behavior.
func Default() Config {
	return Config{
		Capture: CaptureConfig{
			Device:         0,
			Width:          1920,
			Height:         1080,
			WarmupFrames:   5,
			TimeoutSeconds: 30,
		},
		Detect: DetectConfig{
			MinAreaFraction:       0.1,
			ApproxEpsilonFraction: 0.02,
			AreaTieFraction:       0.05,
			MaxProcessingDim:      1000,
		},
		Rectify: RectifyConfig{
			MinOutputDim: 32,
			MaxOutputDim: 4096,
		},
		Enhance: EnhanceConfig{
			Mode:          "binarize",
			ClipLimit:     2.0,
			TileGrid:      8,
			SharpenAmount: 1.0,
		},
		OCR: OCRConfig{
			Languages: []string{"eng"},
			PSM:       6,
			DPI:       300,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. A missing path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Capture.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: capture timeout must be positive")
	}
	if c.Detect.MinAreaFraction <= 0 || c.Detect.MinAreaFraction >= 1 {
		return fmt.Errorf("config: detect min_area_fraction must be in (0,1)")
	}
	if c.Rectify.MinOutputDim <= 0 || c.Rectify.MaxOutputDim < c.Rectify.MinOutputDim {
		return fmt.Errorf("config: rectify output bounds are inconsistent")
	}
	switch c.Enhance.Mode {
	case "binarize", "sharpen":
	default:
		return fmt.Errorf("config: enhance mode %q is not binarize or sharpen", c.Enhance.Mode)
	}
	if c.OCR.PSM < 0 || c.OCR.PSM > 13 {
		return fmt.Errorf("config: ocr psm %d outside 0-13", c.OCR.PSM)
	}
	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("config: at least one ocr language is required")
	}
	return nil
}
