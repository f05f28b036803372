package avif

import (
	"errors"
	"testing"
)

func TestScaleRejectsZeroTarget(t *testing.T) {
	img, _ := NewImage(8, 8, 8, PixelFormatYUV444)
	img.AllocatePlanes(PlanesYUV)
	if err := img.Scale(0, 8, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Scale(0, 8) = %v, want ErrInvalidArgument", err)
	}
	if err := img.Scale(8, 0, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Scale(8, 0) = %v, want ErrInvalidArgument", err)
	}
}

func TestScalePreservesConstantPlanes(t *testing.T) {
	img, _ := NewImage(16, 16, 8, PixelFormatYUV420)
	img.AllocatePlanes(PlanesAll)
	img.plane(PlaneY).Fill(200)
	img.plane(PlaneU).Fill(100)
	img.plane(PlaneV).Fill(50)
	img.plane(PlaneA).Fill(255)

	if err := img.Scale(7, 5, 4); err != nil {
		t.Fatalf("Scale: %v", err)
	}
	if img.Width != 7 || img.Height != 5 {
		t.Fatalf("dimensions = %dx%d, want 7x5", img.Width, img.Height)
	}
	if got := img.PlaneWidth(PlaneU); got != 4 {
		t.Errorf("chroma width = %d, want 4", got)
	}
	for _, tt := range []struct {
		p    Plane
		want uint16
	}{{PlaneY, 200}, {PlaneU, 100}, {PlaneV, 50}, {PlaneA, 255}} {
		pl := img.plane(tt.p)
		for y := 0; y < pl.Height; y++ {
			for x := 0; x < pl.Width; x++ {
				if got := pl.Sample(x, y); got != tt.want {
					t.Fatalf("plane %d sample (%d,%d) = %d, want %d", tt.p, x, y, got, tt.want)
				}
			}
		}
	}
}

func TestScaleSameSizeIsNoop(t *testing.T) {
	img, _ := NewImage(8, 8, 8, PixelFormatYUV444)
	img.AllocatePlanes(PlanesYUV)
	data := &img.PlaneData(PlaneY)[0]
	if err := img.Scale(8, 8, 1); err != nil {
		t.Fatalf("Scale: %v", err)
	}
	if &img.PlaneData(PlaneY)[0] != data {
		t.Error("same-size scale reallocated planes")
	}
}
