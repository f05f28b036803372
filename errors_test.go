package avif

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  Error
		want string
	}{
		{ErrUnknown, "avif: unknown error"},
		{ErrNoCodecAvailable, "avif: no codec available"},
		{ErrNoImagesRemaining, "avif: no images remaining"},
		{ErrInvalidImageGrid, "avif: invalid image grid"},
		{ErrIncompatibleImage, "avif: incompatible image"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error(%d) = %q, want %q", int(tt.err), got, tt.want)
		}
	}
}

func TestErrorAllKindsHaveMessages(t *testing.T) {
	for e := ErrUnknown; e <= ErrInvalidToneMappedImage; e++ {
		msg := e.Error()
		if !strings.HasPrefix(msg, "avif: ") {
			t.Errorf("Error(%d) = %q, missing prefix", int(e), msg)
		}
		if strings.Contains(msg, "unknown error type") {
			t.Errorf("Error(%d) has no registered message", int(e))
		}
	}
}

func TestErrorUnknownCode(t *testing.T) {
	got := Error(9999).Error()
	if !strings.Contains(got, "unknown error type") {
		t.Errorf("Error(9999) = %q, want unknown-type message", got)
	}
}

func TestErrorFromCode(t *testing.T) {
	if got := ErrorFromCode(uint32(ErrTruncatedData)); got != ErrTruncatedData {
		t.Errorf("ErrorFromCode roundtrip = %v, want %v", got, ErrTruncatedData)
	}
	if got := ErrorFromCode(999).Error(); !strings.Contains(got, "unknown error type") {
		t.Errorf("ErrorFromCode(999) = %q, want unknown-type message", got)
	}
}

func TestErrorWrapping(t *testing.T) {
	wrapped := fmt.Errorf("%w: backend exploded", ErrEncodeColorFailed)
	if !errors.Is(wrapped, ErrEncodeColorFailed) {
		t.Error("wrapped error does not match ErrEncodeColorFailed")
	}
	if errors.Is(wrapped, ErrEncodeAlphaFailed) {
		t.Error("wrapped error matches the wrong kind")
	}
}
