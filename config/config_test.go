package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() is invalid: %v", err)
	}
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Capture.Width != 1920 || cfg.OCR.PSM != 6 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	body := []byte("capture:\n  device: 2\n  timeout_seconds: 10\nenhance:\n  mode: sharpen\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Capture.Device != 2 || cfg.Capture.TimeoutSeconds != 10 {
		t.Fatalf("capture overrides not applied: %+v", cfg.Capture)
	}
	if cfg.Enhance.Mode != "sharpen" {
		t.Fatalf("enhance override not applied: %+v", cfg.Enhance)
	}
	// Untouched sections keep their defaults.
	if cfg.Capture.Width != 1920 {
		t.Fatalf("width default lost: %d", cfg.Capture.Width)
	}
	if cfg.Detect.MinAreaFraction != 0.1 {
		t.Fatalf("detect default lost: %v", cfg.Detect.MinAreaFraction)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	if err := os.WriteFile(path, []byte("enhance:\n  mode: invert\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for unknown enhance mode")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Capture.TimeoutSeconds = 0 }},
		{"area fraction too large", func(c *Config) { c.Detect.MinAreaFraction = 1.5 }},
		{"inverted rectify bounds", func(c *Config) { c.Rectify.MaxOutputDim = 8 }},
		{"psm out of range", func(c *Config) { c.OCR.PSM = 99 }},
		{"no languages", func(c *Config) { c.OCR.Languages = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
