package avif

import (
	"errors"
	"testing"
)

func TestNewRGBImageValidation(t *testing.T) {
	buf := make([]byte, 4*4*4)
	tests := []struct {
		name   string
		w, h   int
		depth  int
		format RGBFormat
		buf    []byte
		wantOK bool
	}{
		{"ok rgba", 4, 4, 8, RGBFormatRGBA, buf, true},
		{"short buffer", 4, 4, 8, RGBFormatRGBA, buf[:4*4*4-1], false},
		{"zero width", 0, 4, 8, RGBFormatRGBA, buf, false},
		{"bad depth", 4, 4, 9, RGBFormatRGBA, buf, false},
		{"565 at 8", 4, 4, 8, RGBFormatRGB565, buf, true},
		{"565 wide", 4, 4, 10, RGBFormatRGB565, buf, false},
		{"gray 16", 4, 4, 16, RGBFormatGray, buf, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRGBImage(tt.w, tt.h, tt.depth, tt.format, tt.buf)
			if tt.wantOK && err != nil {
				t.Errorf("NewRGBImage: %v", err)
			}
			if !tt.wantOK && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("NewRGBImage = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRGBFormatQueries(t *testing.T) {
	tests := []struct {
		format   RGBFormat
		channels int
		alpha    bool
		gray     bool
	}{
		{RGBFormatRGB, 3, false, false},
		{RGBFormatRGBA, 4, true, false},
		{RGBFormatARGB, 4, true, false},
		{RGBFormatBGR, 3, false, false},
		{RGBFormatBGRA, 4, true, false},
		{RGBFormatABGR, 4, true, false},
		{RGBFormatRGB565, 3, false, false},
		{RGBFormatGray, 1, false, true},
		{RGBFormatGrayA, 2, true, true},
		{RGBFormatAGray, 2, true, true},
	}
	for _, tt := range tests {
		if got := tt.format.ChannelCount(); got != tt.channels {
			t.Errorf("%d ChannelCount = %d, want %d", tt.format, got, tt.channels)
		}
		if got := tt.format.HasAlpha(); got != tt.alpha {
			t.Errorf("%d HasAlpha = %v, want %v", tt.format, got, tt.alpha)
		}
		if got := tt.format.IsGray(); got != tt.gray {
			t.Errorf("%d IsGray = %v, want %v", tt.format, got, tt.gray)
		}
	}
}

func TestPixelSize(t *testing.T) {
	tests := []struct {
		format RGBFormat
		depth  int
		want   int
	}{
		{RGBFormatRGB, 8, 3},
		{RGBFormatRGBA, 8, 4},
		{RGBFormatRGBA, 10, 8},
		{RGBFormatRGB565, 8, 2},
		{RGBFormatGrayA, 12, 4},
	}
	for _, tt := range tests {
		rgb := &RGBImage{Format: tt.format, Depth: tt.depth}
		if got := rgb.PixelSize(); got != tt.want {
			t.Errorf("PixelSize(%d, depth %d) = %d, want %d", tt.format, tt.depth, got, tt.want)
		}
	}
}

func TestReadWritePixelLayouts(t *testing.T) {
	for _, format := range []RGBFormat{
		RGBFormatRGB, RGBFormatRGBA, RGBFormatARGB,
		RGBFormatBGR, RGBFormatBGRA, RGBFormatABGR,
	} {
		rgb, err := NewRGBImage(2, 2, 8, format, make([]byte, 2*2*4))
		if err != nil {
			t.Fatalf("NewRGBImage(%d): %v", format, err)
		}
		rgb.writePixel(1, 1, 10, 20, 30, 40)
		r, g, b, a := rgb.readPixel(1, 1)
		if r != 10 || g != 20 || b != 30 {
			t.Errorf("format %d roundtrip = (%d,%d,%d), want (10,20,30)", format, r, g, b)
		}
		wantA := uint16(40)
		if !format.HasAlpha() {
			wantA = 255
		}
		if a != wantA {
			t.Errorf("format %d alpha = %d, want %d", format, a, wantA)
		}
	}
}

func TestRGB565PackUnpack(t *testing.T) {
	rgb, _ := NewRGBImage(1, 1, 8, RGBFormatRGB565, make([]byte, 2))
	rgb.writePixel(0, 0, 255, 255, 255, 0)
	r, g, b, a := rgb.readPixel(0, 0)
	if r != 255 || g != 255 || b != 255 {
		t.Errorf("white roundtrip = (%d,%d,%d), want (255,255,255)", r, g, b)
	}
	if a != 255 {
		t.Errorf("565 alpha = %d, want opaque", a)
	}
	// 5/6-bit quantization keeps values within one step after expansion.
	rgb.writePixel(0, 0, 100, 100, 100, 0)
	r, g, b, _ = rgb.readPixel(0, 0)
	if d := int(r) - 100; d < -8 || d > 8 {
		t.Errorf("red after 565 roundtrip = %d, too far from 100", r)
	}
	if d := int(g) - 100; d < -4 || d > 4 {
		t.Errorf("green after 565 roundtrip = %d, too far from 100", g)
	}
	if d := int(b) - 100; d < -8 || d > 8 {
		t.Errorf("blue after 565 roundtrip = %d, too far from 100", b)
	}
}

func TestPremultiplyAlpha(t *testing.T) {
	rgb, _ := NewRGBImage(1, 1, 8, RGBFormatRGBA, []byte{200, 100, 50, 128})
	if err := rgb.PremultiplyAlpha(); err != nil {
		t.Fatalf("PremultiplyAlpha: %v", err)
	}
	r, g, b, _ := rgb.readPixel(0, 0)
	if r != 100 || g != 50 || b != 25 {
		t.Errorf("premultiplied = (%d,%d,%d), want (100,50,25)", r, g, b)
	}
	if !rgb.AlphaPremultiplied {
		t.Error("AlphaPremultiplied not recorded")
	}
	if err := rgb.UnpremultiplyAlpha(); err != nil {
		t.Fatalf("UnpremultiplyAlpha: %v", err)
	}
	r, g, b, _ = rgb.readPixel(0, 0)
	// Inverse within one step of the original values.
	for i, pair := range [][2]int{{int(r), 200}, {int(g), 100}, {int(b), 50}} {
		if d := pair[0] - pair[1]; d < -1 || d > 1 {
			t.Errorf("channel %d after unpremultiply = %d, want ~%d", i, pair[0], pair[1])
		}
	}
}

func TestPremultiplyAlphaWithoutAlpha(t *testing.T) {
	rgb, _ := NewRGBImage(1, 1, 8, RGBFormatRGB, make([]byte, 3))
	if err := rgb.PremultiplyAlpha(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("PremultiplyAlpha = %v, want ErrInvalidArgument", err)
	}
	if err := rgb.UnpremultiplyAlpha(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("UnpremultiplyAlpha = %v, want ErrInvalidArgument", err)
	}
}
