package avif

import (
	"errors"
	"testing"
)

func TestNewImageValidation(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		depth  int
		format PixelFormat
		want   error
	}{
		{"zero width", 0, 10, 8, PixelFormatYUV420, ErrInvalidArgument},
		{"zero height", 10, 0, 8, PixelFormatYUV420, ErrInvalidArgument},
		{"bad depth", 10, 10, 9, PixelFormatYUV420, ErrInvalidArgument},
		{"no format", 10, 10, 8, PixelFormatNone, ErrInvalidArgument},
		{"too large", 1 << 20, 1 << 20, 8, PixelFormatYUV420, ErrOutOfMemory},
		{"ok", 10, 10, 10, PixelFormatYUV422, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImage(tt.w, tt.h, tt.depth, tt.format)
			if !errors.Is(err, tt.want) && err != tt.want {
				t.Errorf("NewImage = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlaneDimensions(t *testing.T) {
	tests := []struct {
		format           PixelFormat
		w, h             int
		chromaW, chromaH int
	}{
		{PixelFormatYUV444, 13, 9, 13, 9},
		{PixelFormatYUV422, 13, 9, 7, 9},
		{PixelFormatYUV420, 13, 9, 7, 5},
		{PixelFormatYUV400, 13, 9, 0, 0},
	}
	for _, tt := range tests {
		img, err := NewImage(tt.w, tt.h, 8, tt.format)
		if err != nil {
			t.Fatalf("NewImage(%v): %v", tt.format, err)
		}
		if got := img.PlaneWidth(PlaneY); got != tt.w {
			t.Errorf("%v luma width = %d, want %d", tt.format, got, tt.w)
		}
		if got := img.PlaneWidth(PlaneU); got != tt.chromaW {
			t.Errorf("%v chroma width = %d, want %d", tt.format, got, tt.chromaW)
		}
		if got := img.PlaneHeight(PlaneV); got != tt.chromaH {
			t.Errorf("%v chroma height = %d, want %d", tt.format, got, tt.chromaH)
		}
	}
}

func TestAllocateFreePlanes(t *testing.T) {
	img, _ := NewImage(16, 8, 8, PixelFormatYUV420)
	if err := img.AllocatePlanes(PlanesAll); err != nil {
		t.Fatalf("AllocatePlanes: %v", err)
	}
	if img.PlaneData(PlaneY) == nil || img.PlaneData(PlaneU) == nil || img.PlaneData(PlaneA) == nil {
		t.Fatal("planes not allocated")
	}
	yData := &img.PlaneData(PlaneY)[0]

	// Repeated allocation keeps existing planes.
	if err := img.AllocatePlanes(PlanesAll); err != nil {
		t.Fatalf("second AllocatePlanes: %v", err)
	}
	if &img.PlaneData(PlaneY)[0] != yData {
		t.Error("re-allocation replaced an existing plane")
	}

	img.FreePlanes(PlanesA)
	if img.PlaneData(PlaneA) != nil {
		t.Error("alpha plane survived FreePlanes")
	}
	if img.PlaneData(PlaneY) == nil {
		t.Error("YUV planes freed by alpha-only FreePlanes")
	}
	img.FreePlanes(PlanesAll)
	img.FreePlanes(PlanesAll) // idempotent
	if img.PlaneData(PlaneY) != nil {
		t.Error("luma plane survived FreePlanes")
	}
}

func TestAllocateWithoutFormat(t *testing.T) {
	img := &Image{Width: 8, Height: 8, Depth: 8}
	if err := img.AllocatePlanes(PlanesYUV); !errors.Is(err, ErrNoYUVFormatSelected) {
		t.Errorf("AllocatePlanes = %v, want ErrNoYUVFormatSelected", err)
	}
}

func TestStealPlanes(t *testing.T) {
	src, _ := NewImage(8, 8, 8, PixelFormatYUV444)
	src.AllocatePlanes(PlanesAll)
	src.PlaneData(PlaneY)[0] = 0x42

	dst := &Image{}
	src.StealPlanes(dst, PlanesAll)

	if src.PlaneData(PlaneY) != nil || src.PlaneData(PlaneA) != nil {
		t.Error("source still owns planes after steal")
	}
	if dst.PlaneData(PlaneY) == nil || dst.PlaneData(PlaneY)[0] != 0x42 {
		t.Error("destination did not receive the luma plane")
	}
	if dst.PlaneRowBytes(PlaneY) != 8 {
		t.Errorf("destination luma stride = %d, want 8", dst.PlaneRowBytes(PlaneY))
	}
}

func TestCopyIsDeep(t *testing.T) {
	img, _ := NewImage(4, 4, 8, PixelFormatYUV420)
	img.AllocatePlanes(PlanesAll)
	img.ICC = []byte{1, 2, 3}
	img.PlaneData(PlaneY)[0] = 7

	clone, err := img.Copy()
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	clone.PlaneData(PlaneY)[0] = 9
	clone.ICC[0] = 99
	if img.PlaneData(PlaneY)[0] != 7 {
		t.Error("clone shares the luma plane")
	}
	if img.ICC[0] != 1 {
		t.Error("clone shares the ICC blob")
	}
}

func TestIsOpaque(t *testing.T) {
	img, _ := NewImage(4, 4, 10, PixelFormatYUV444)
	if !img.IsOpaque() {
		t.Error("image without alpha plane should be opaque")
	}
	img.AllocatePlanes(PlanesAll)
	img.plane(PlaneA).Fill(1023)
	if !img.IsOpaque() {
		t.Error("max-valued alpha should be opaque")
	}
	img.plane(PlaneA).SetSample(3, 2, 1022)
	if img.IsOpaque() {
		t.Error("one translucent sample should defeat opacity")
	}
}

func TestUsesU16(t *testing.T) {
	for _, tt := range []struct {
		depth int
		want  bool
	}{{8, false}, {10, true}, {12, true}} {
		img, _ := NewImage(2, 2, tt.depth, PixelFormatYUV444)
		if got := img.UsesU16(); got != tt.want {
			t.Errorf("depth %d UsesU16 = %v, want %v", tt.depth, got, tt.want)
		}
	}
}
