package observability

import (
	"errors"
	"testing"
	"time"
)

func TestFields(t *testing.T) {
	err := errors.New("boom")
	tests := []struct {
		field Field
		key   string
		value interface{}
	}{
		{String("stage", "detect"), "stage", "detect"},
		{Int("width", 640), "width", 640},
		{Float64("confidence", 0.85), "confidence", 0.85},
		{Duration("elapsed", 2 * time.Second), "elapsed", 2 * time.Second},
		{Error("err", err), "err", err},
	}
	for _, tt := range tests {
		if tt.field.Key() != tt.key {
			t.Fatalf("Key() = %q, want %q", tt.field.Key(), tt.key)
		}
		if tt.field.Value() != tt.value {
			t.Fatalf("Value() = %v, want %v", tt.field.Value(), tt.value)
		}
	}
}

func TestNopLogger(t *testing.T) {
	var log Logger = NopLogger{}
	log.Debug("ignored")
	log.Info("ignored", Int("n", 1))
	log.Warn("ignored")
	log.Error("ignored", Error("err", errors.New("x")))
	if log.With(String("k", "v")) != (NopLogger{}) {
		t.Fatalf("With() should return a NopLogger")
	}
}
