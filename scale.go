package avif

import "github.com/deepteams/avif/internal/dsp"

// Scale resamples all allocated planes in place to the new dimensions,
// preserving depth and subsampling ratio. An area (box) filter is used in
// both directions. maxThreads is a hint for row-parallel work and does not
// affect the output.
func (img *Image) Scale(newWidth, newHeight, maxThreads int) error {
	if newWidth <= 0 || newHeight <= 0 {
		return ErrInvalidArgument
	}
	if uint64(newWidth)*uint64(newHeight) > maxImagePixels {
		return ErrOutOfMemory
	}
	if newWidth == img.Width && newHeight == img.Height {
		return nil
	}
	workers := clampThreads(maxThreads)

	// Build the target geometry first, then resample plane by plane.
	out, err := NewImage(newWidth, newHeight, img.Depth, img.YUVFormat)
	if err != nil {
		return err
	}
	var flags PlanesFlag
	if img.yuvPlanes[0] != nil {
		flags |= PlanesYUV
	}
	if img.alphaPlane != nil {
		flags |= PlanesA
	}
	if flags == 0 {
		// Planeless image: only the dimensions change.
		img.Width = newWidth
		img.Height = newHeight
		return nil
	}
	if err := out.AllocatePlanes(flags); err != nil {
		return err
	}

	planes := []Plane{PlaneY, PlaneU, PlaneV, PlaneA}
	for _, p := range planes {
		src := img.PlaneData(p)
		if src == nil || out.PlaneData(p) == nil {
			continue
		}
		dsp.ResamplePlane(img.plane(p), out.plane(p), workers)
	}

	img.Width = newWidth
	img.Height = newHeight
	img.yuvPlanes = out.yuvPlanes
	img.yuvRowBytes = out.yuvRowBytes
	if flags&PlanesA != 0 {
		img.alphaPlane = out.alphaPlane
		img.alphaRowBytes = out.alphaRowBytes
	}
	return nil
}
