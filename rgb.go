package avif

import "github.com/deepteams/avif/internal/dsp"

// RGBFormat describes the channel layout of an interleaved RGB buffer.
type RGBFormat int

const (
	RGBFormatRGB RGBFormat = iota
	RGBFormatRGBA
	RGBFormatARGB
	RGBFormatBGR
	RGBFormatBGRA
	RGBFormatABGR
	// RGBFormatRGB565 packs 5-bit red, 6-bit green and 5-bit blue into a
	// little-endian 16-bit word. Only valid at depth 8.
	RGBFormatRGB565
	RGBFormatGray
	RGBFormatGrayA
	RGBFormatAGray
)

// ChannelCount returns the number of channels in the layout (565 counts
// its three packed channels).
func (f RGBFormat) ChannelCount() int {
	switch f {
	case RGBFormatRGB, RGBFormatBGR, RGBFormatRGB565:
		return 3
	case RGBFormatGray:
		return 1
	case RGBFormatGrayA, RGBFormatAGray:
		return 2
	default:
		return 4
	}
}

// HasAlpha reports whether the layout carries an alpha channel.
func (f RGBFormat) HasAlpha() bool {
	switch f {
	case RGBFormatRGBA, RGBFormatARGB, RGBFormatBGRA, RGBFormatABGR,
		RGBFormatGrayA, RGBFormatAGray:
		return true
	default:
		return false
	}
}

// IsGray reports whether the layout is grayscale.
func (f RGBFormat) IsGray() bool {
	switch f {
	case RGBFormatGray, RGBFormatGrayA, RGBFormatAGray:
		return true
	default:
		return false
	}
}

func (f RGBFormat) valid() bool {
	return f >= RGBFormatRGB && f <= RGBFormatAGray
}

// ChromaUpsampling selects the chroma reconstruction filter for
// YUV -> RGB conversion.
type ChromaUpsampling int

const (
	ChromaUpsamplingAutomatic ChromaUpsampling = iota
	ChromaUpsamplingFastest
	ChromaUpsamplingBestQuality
	ChromaUpsamplingNearest
	ChromaUpsamplingBilinear
)

// ChromaDownsampling selects the chroma reduction filter for
// RGB -> YUV conversion.
type ChromaDownsampling int

const (
	ChromaDownsamplingAutomatic ChromaDownsampling = iota
	ChromaDownsamplingFastest
	ChromaDownsamplingBestQuality
	ChromaDownsamplingAverage
	ChromaDownsamplingSharp
)

// RGBImage is an interleaved RGB view over a caller-owned pixel buffer.
// The buffer is borrowed for the lifetime of the image: it is never freed
// here and must stay alive (and unmutated by other goroutines) for the
// duration of any conversion.
type RGBImage struct {
	Width  int
	Height int
	// Depth is the bits per channel: 8, 10, 12 or 16. Depths above 8
	// store each channel as a little-endian 16-bit word.
	Depth  int
	Format RGBFormat

	ChromaUpsampling   ChromaUpsampling
	ChromaDownsampling ChromaDownsampling

	// IgnoreAlpha treats the buffer's alpha channel as absent.
	IgnoreAlpha bool
	// AlphaPremultiplied records whether color channels are pre-scaled
	// by alpha.
	AlphaPremultiplied bool
	// IsFloat marks 16-bit channels as IEEE half floats. Only supported
	// as a conversion target.
	IsFloat bool
	// MaxThreads is a hint for row-parallel conversion work (clamped to
	// 1024). It never changes the output.
	MaxThreads int

	// Pixels is the borrowed pixel buffer; RowBytes the row stride.
	Pixels   []byte
	RowBytes int
}

// NewRGBImage wraps a caller-owned pixel buffer. The row stride is the
// tight width*PixelSize; buffers shorter than stride*height are rejected
// with ErrInvalidArgument.
func NewRGBImage(width, height, depth int, format RGBFormat, pixels []byte) (*RGBImage, error) {
	if width <= 0 || height <= 0 || !format.valid() {
		return nil, ErrInvalidArgument
	}
	if depth != 8 && depth != 10 && depth != 12 && depth != 16 {
		return nil, ErrInvalidArgument
	}
	if format == RGBFormatRGB565 && depth != 8 {
		return nil, ErrInvalidArgument
	}
	rgb := &RGBImage{
		Width:      width,
		Height:     height,
		Depth:      depth,
		Format:     format,
		MaxThreads: 1,
	}
	rgb.RowBytes = width * rgb.PixelSize()
	if len(pixels) < rgb.RowBytes*height {
		return nil, ErrInvalidArgument
	}
	rgb.Pixels = pixels
	return rgb, nil
}

// PixelSize returns the storage size of one pixel in bytes.
func (rgb *RGBImage) PixelSize() int {
	if rgb.Format == RGBFormatRGB565 {
		return 2
	}
	bytesPerChannel := 1
	if rgb.Depth > 8 {
		bytesPerChannel = 2
	}
	return rgb.Format.ChannelCount() * bytesPerChannel
}

// ChannelCount returns the number of channels per pixel.
func (rgb *RGBImage) ChannelCount() int { return rgb.Format.ChannelCount() }

// HasAlpha reports whether the layout carries alpha and it is not ignored.
func (rgb *RGBImage) HasAlpha() bool {
	return rgb.Format.HasAlpha() && !rgb.IgnoreAlpha
}

// IsGray reports whether the layout is grayscale.
func (rgb *RGBImage) IsGray() bool { return rgb.Format.IsGray() }

// maxChannel returns the largest representable channel value.
func (rgb *RGBImage) maxChannel() int { return 1<<rgb.Depth - 1 }

// channelOffsets returns the per-channel positions of r, g, b, a within a
// pixel, with -1 for channels the layout lacks. Not meaningful for 565.
func (rgb *RGBImage) channelOffsets() (r, g, b, a int) {
	switch rgb.Format {
	case RGBFormatRGB:
		return 0, 1, 2, -1
	case RGBFormatRGBA:
		return 0, 1, 2, 3
	case RGBFormatARGB:
		return 1, 2, 3, 0
	case RGBFormatBGR:
		return 2, 1, 0, -1
	case RGBFormatBGRA:
		return 2, 1, 0, 3
	case RGBFormatABGR:
		return 3, 2, 1, 0
	case RGBFormatGray:
		return 0, 0, 0, -1
	case RGBFormatGrayA:
		return 0, 0, 0, 1
	case RGBFormatAGray:
		return 1, 1, 1, 0
	default:
		return 0, 1, 2, -1
	}
}

func (rgb *RGBImage) loadChannel(off int) uint16 {
	if rgb.Depth > 8 {
		return uint16(rgb.Pixels[off]) | uint16(rgb.Pixels[off+1])<<8
	}
	return uint16(rgb.Pixels[off])
}

func (rgb *RGBImage) storeChannel(off int, v uint16) {
	if rgb.Depth > 8 {
		rgb.Pixels[off] = byte(v)
		rgb.Pixels[off+1] = byte(v >> 8)
		return
	}
	rgb.Pixels[off] = byte(v)
}

// readPixel returns the channel values at (x, y). Layouts without alpha
// report fully opaque.
func (rgb *RGBImage) readPixel(x, y int) (r, g, b, a uint16) {
	if rgb.Format == RGBFormatRGB565 {
		off := y*rgb.RowBytes + 2*x
		v := uint16(rgb.Pixels[off]) | uint16(rgb.Pixels[off+1])<<8
		r5 := v >> 11
		g6 := (v >> 5) & 0x3f
		b5 := v & 0x1f
		// Expand with bit replication.
		r = r5<<3 | r5>>2
		g = g6<<2 | g6>>4
		b = b5<<3 | b5>>2
		return r, g, b, 255
	}
	bytesPerChannel := 1
	if rgb.Depth > 8 {
		bytesPerChannel = 2
	}
	base := y*rgb.RowBytes + x*rgb.PixelSize()
	ro, go_, bo, ao := rgb.channelOffsets()
	r = rgb.loadChannel(base + ro*bytesPerChannel)
	g = rgb.loadChannel(base + go_*bytesPerChannel)
	b = rgb.loadChannel(base + bo*bytesPerChannel)
	if ao >= 0 {
		a = rgb.loadChannel(base + ao*bytesPerChannel)
	} else {
		a = uint16(rgb.maxChannel())
	}
	return r, g, b, a
}

// writePixel stores channel values at (x, y), ignoring channels the
// layout lacks. Gray layouts receive the g value.
func (rgb *RGBImage) writePixel(x, y int, r, g, b, a uint16) {
	if rgb.Format == RGBFormatRGB565 {
		off := y*rgb.RowBytes + 2*x
		v := (r>>3)<<11 | (g>>2)<<5 | b>>3
		rgb.Pixels[off] = byte(v)
		rgb.Pixels[off+1] = byte(v >> 8)
		return
	}
	bytesPerChannel := 1
	if rgb.Depth > 8 {
		bytesPerChannel = 2
	}
	base := y*rgb.RowBytes + x*rgb.PixelSize()
	ro, go_, bo, ao := rgb.channelOffsets()
	if rgb.Format.IsGray() {
		rgb.storeChannel(base+ro*bytesPerChannel, g)
	} else {
		rgb.storeChannel(base+ro*bytesPerChannel, r)
		rgb.storeChannel(base+go_*bytesPerChannel, g)
		rgb.storeChannel(base+bo*bytesPerChannel, b)
	}
	if ao >= 0 {
		rgb.storeChannel(base+ao*bytesPerChannel, a)
	}
}

// PremultiplyAlpha scales the color channels by alpha in place.
// Layouts without alpha report ErrInvalidArgument; float buffers are not
// supported.
func (rgb *RGBImage) PremultiplyAlpha() error {
	return rgb.multiplyAlpha(false)
}

// UnpremultiplyAlpha reverses PremultiplyAlpha in place. Fully
// transparent pixels stay zero.
func (rgb *RGBImage) UnpremultiplyAlpha() error {
	return rgb.multiplyAlpha(true)
}

func (rgb *RGBImage) multiplyAlpha(inverse bool) error {
	if !rgb.Format.HasAlpha() {
		return ErrInvalidArgument
	}
	if rgb.IsFloat {
		return ErrNotImplemented
	}
	maxValue := rgb.maxChannel()
	dsp.WorkRows(clampThreads(rgb.MaxThreads), rgb.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < rgb.Width; x++ {
				r, g, b, a := rgb.readPixel(x, y)
				if int(a) == maxValue {
					continue
				}
				if inverse {
					r = dsp.UnpremultiplySample(r, a, maxValue)
					g = dsp.UnpremultiplySample(g, a, maxValue)
					b = dsp.UnpremultiplySample(b, a, maxValue)
				} else {
					r = dsp.PremultiplySample(r, a, maxValue)
					g = dsp.PremultiplySample(g, a, maxValue)
					b = dsp.PremultiplySample(b, a, maxValue)
				}
				rgb.writePixel(x, y, r, g, b, a)
			}
		}
	})
	rgb.AlphaPremultiplied = !inverse
	return nil
}
