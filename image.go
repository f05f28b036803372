package avif

import "github.com/deepteams/avif/internal/dsp"

// Image is a planar YUV image with an optional alpha plane. Plane buffers
// are exclusively owned by the image: they are released by FreePlanes and
// moved (never shared) by StealPlanes. Sample storage is one byte per
// sample at depth 8 and two little-endian bytes at depths 10 and 12.
type Image struct {
	Width  int
	Height int
	Depth  int

	YUVFormat PixelFormat
	YUVRange  Range

	ColorPrimaries          ColorPrimaries
	TransferCharacteristics TransferCharacteristics
	MatrixCoefficients      MatrixCoefficients

	// AlphaPremultiplied records whether the color planes are stored
	// pre-scaled by alpha.
	AlphaPremultiplied bool

	// Optional metadata blobs, carried verbatim. Parsing them is a
	// container concern.
	ICC  []byte
	Exif []byte
	XMP  []byte

	yuvPlanes   [3][]byte
	yuvRowBytes [3]int

	alphaPlane    []byte
	alphaRowBytes int
}

// NewImage creates a planar image with no planes allocated. Dimensions
// must be positive, depth one of 8, 10, 12 and format a concrete
// subsampling layout. Images larger than the pixel cap report
// ErrOutOfMemory.
func NewImage(width, height, depth int, format PixelFormat) (*Image, error) {
	if width <= 0 || height <= 0 || !validDepth(depth) || !format.valid() {
		return nil, ErrInvalidArgument
	}
	if uint64(width)*uint64(height) > maxImagePixels {
		return nil, ErrOutOfMemory
	}
	return &Image{
		Width:                   width,
		Height:                  height,
		Depth:                   depth,
		YUVFormat:               format,
		YUVRange:                RangeFull,
		ColorPrimaries:          ColorPrimariesUnspecified,
		TransferCharacteristics: TransferCharacteristicsUnspecified,
		MatrixCoefficients:      MatrixCoefficientsUnspecified,
	}, nil
}

// UsesU16 reports whether samples occupy two bytes (depth above 8).
func (img *Image) UsesU16() bool { return img.Depth > 8 }

func (img *Image) sampleBytes() int {
	if img.Depth > 8 {
		return 2
	}
	return 1
}

// PlaneWidth returns the width in samples of the given plane, zero when
// the format has no such plane.
func (img *Image) PlaneWidth(p Plane) int {
	switch p {
	case PlaneY, PlaneA:
		return img.Width
	default:
		if img.YUVFormat.monochrome() {
			return 0
		}
		sx, _ := img.YUVFormat.chromaShift()
		return (img.Width + (1 << sx) - 1) >> sx
	}
}

// PlaneHeight returns the height in rows of the given plane.
func (img *Image) PlaneHeight(p Plane) int {
	switch p {
	case PlaneY, PlaneA:
		return img.Height
	default:
		if img.YUVFormat.monochrome() {
			return 0
		}
		_, sy := img.YUVFormat.chromaShift()
		return (img.Height + (1 << sy) - 1) >> sy
	}
}

// PlaneData returns the plane's buffer, nil when unallocated.
func (img *Image) PlaneData(p Plane) []byte {
	if p == PlaneA {
		return img.alphaPlane
	}
	return img.yuvPlanes[p]
}

// PlaneRowBytes returns the plane's row stride in bytes.
func (img *Image) PlaneRowBytes(p Plane) int {
	if p == PlaneA {
		return img.alphaRowBytes
	}
	return img.yuvRowBytes[p]
}

// HasAlpha reports whether an alpha plane is allocated.
func (img *Image) HasAlpha() bool { return img.alphaPlane != nil }

// AllocatePlanes allocates the selected plane groups. Already-allocated
// planes are left untouched, making repeated calls idempotent. Allocating
// YUV planes on an image without a concrete format reports
// ErrNoYUVFormatSelected.
func (img *Image) AllocatePlanes(flags PlanesFlag) error {
	if flags&PlanesYUV != 0 {
		if !img.YUVFormat.valid() {
			return ErrNoYUVFormatSelected
		}
		if img.yuvPlanes[0] == nil {
			img.yuvRowBytes[0] = img.Width * img.sampleBytes()
			img.yuvPlanes[0] = make([]byte, img.yuvRowBytes[0]*img.Height)
		}
		if !img.YUVFormat.monochrome() {
			cw := img.PlaneWidth(PlaneU)
			ch := img.PlaneHeight(PlaneU)
			for p := PlaneU; p <= PlaneV; p++ {
				if img.yuvPlanes[p] != nil {
					continue
				}
				img.yuvRowBytes[p] = cw * img.sampleBytes()
				img.yuvPlanes[p] = make([]byte, img.yuvRowBytes[p]*ch)
			}
		}
	}
	if flags&PlanesA != 0 && img.alphaPlane == nil {
		img.alphaRowBytes = img.Width * img.sampleBytes()
		img.alphaPlane = make([]byte, img.alphaRowBytes*img.Height)
	}
	return nil
}

// FreePlanes releases the selected plane groups. Freeing planes that were
// never allocated is a no-op.
func (img *Image) FreePlanes(flags PlanesFlag) {
	if flags&PlanesYUV != 0 {
		for p := range img.yuvPlanes {
			img.yuvPlanes[p] = nil
			img.yuvRowBytes[p] = 0
		}
	}
	if flags&PlanesA != 0 {
		img.alphaPlane = nil
		img.alphaRowBytes = 0
	}
}

// StealPlanes moves ownership of the selected plane groups to dst,
// leaving this image planeless for those groups. Stealing YUV planes also
// carries the depth and subsampling format, since the buffers are only
// meaningful under them.
func (img *Image) StealPlanes(dst *Image, flags PlanesFlag) {
	if flags&PlanesYUV != 0 {
		dst.FreePlanes(PlanesYUV)
		dst.yuvPlanes = img.yuvPlanes
		dst.yuvRowBytes = img.yuvRowBytes
		dst.Depth = img.Depth
		dst.YUVFormat = img.YUVFormat
		img.yuvPlanes = [3][]byte{}
		img.yuvRowBytes = [3]int{}
	}
	if flags&PlanesA != 0 {
		dst.alphaPlane = img.alphaPlane
		dst.alphaRowBytes = img.alphaRowBytes
		img.alphaPlane = nil
		img.alphaRowBytes = 0
	}
}

// Copy returns a deep clone: dimensions, metadata and all allocated
// pixel data.
func (img *Image) Copy() (*Image, error) {
	out, err := NewImage(img.Width, img.Height, img.Depth, img.YUVFormat)
	if err != nil {
		return nil, err
	}
	out.YUVRange = img.YUVRange
	out.ColorPrimaries = img.ColorPrimaries
	out.TransferCharacteristics = img.TransferCharacteristics
	out.MatrixCoefficients = img.MatrixCoefficients
	out.AlphaPremultiplied = img.AlphaPremultiplied
	out.ICC = cloneBytes(img.ICC)
	out.Exif = cloneBytes(img.Exif)
	out.XMP = cloneBytes(img.XMP)

	for p := PlaneY; p <= PlaneV; p++ {
		if img.yuvPlanes[p] != nil {
			out.yuvPlanes[p] = cloneBytes(img.yuvPlanes[p])
			out.yuvRowBytes[p] = img.yuvRowBytes[p]
		}
	}
	if img.alphaPlane != nil {
		out.alphaPlane = cloneBytes(img.alphaPlane)
		out.alphaRowBytes = img.alphaRowBytes
	}
	return out, nil
}

// IsOpaque reports whether the image has no alpha plane or every alpha
// sample is at the maximum representable value.
func (img *Image) IsOpaque() bool {
	if img.alphaPlane == nil {
		return true
	}
	a := img.plane(PlaneA)
	maxValue := a.MaxValue()
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.Sample(x, y) != maxValue {
				return false
			}
		}
	}
	return true
}

// plane returns a dsp view of an allocated plane.
func (img *Image) plane(p Plane) *dsp.Plane {
	return &dsp.Plane{
		Data:     img.PlaneData(p),
		RowBytes: img.PlaneRowBytes(p),
		Width:    img.PlaneWidth(p),
		Height:   img.PlaneHeight(p),
		Depth:    img.Depth,
	}
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
