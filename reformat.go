package avif

import (
	"math"

	"github.com/deepteams/avif/internal/dsp"
	"github.com/deepteams/avif/internal/pool"
)

// Conversion between interleaved RGB buffers and planar YUV images. Both
// directions run through a shared float pipeline (normalize, matrix,
// quantize) so that a full-range 4:4:4 roundtrip at equal depth stays
// within one code value per channel. The row partition handed to worker
// goroutines depends only on the image geometry, never on the thread
// count, so results are identical for any MaxThreads setting.

// FromRGB converts the RGB buffer into the image's planar representation,
// allocating YUV planes (and an alpha plane when the buffer carries
// alpha). The image's depth, format, range and matrix coefficients select
// the target encoding.
func (img *Image) FromRGB(rgb *RGBImage) error {
	if rgb == nil || rgb.Pixels == nil {
		return ErrReformatFailed
	}
	if img.Width != rgb.Width || img.Height != rgb.Height {
		return ErrReformatFailed
	}
	// Checked before any allocation: the borrowed buffer may have been
	// re-sliced since construction.
	if len(rgb.Pixels) < rgb.RowBytes*rgb.Height {
		return ErrInvalidArgument
	}
	if rgb.IsFloat {
		return ErrNotImplemented
	}
	if !validDepth(img.Depth) {
		return ErrUnsupportedDepth
	}
	if !img.YUVFormat.valid() {
		return ErrNoYUVFormatSelected
	}
	identity := img.MatrixCoefficients == MatrixCoefficientsIdentity
	if identity && img.YUVFormat != PixelFormatYUV444 {
		return ErrReformatFailed
	}

	flags := PlanesYUV
	if rgb.HasAlpha() {
		flags |= PlanesA
	}
	if err := img.AllocatePlanes(flags); err != nil {
		return err
	}

	workers := clampThreads(rgb.MaxThreads)
	fullRange := img.YUVRange == RangeFull
	maxRGB := float64(rgb.maxChannel())
	shiftX, shiftY := img.YUVFormat.chromaShift()
	subsampled := shiftX != 0 || shiftY != 0

	switch {
	case identity:
		img.fromRGBIdentity(rgb, workers, fullRange, maxRGB)
	case img.sharpEligible(rgb):
		img.fromRGBSharp(rgb, workers, fullRange)
	default:
		if rgb.ChromaDownsampling == ChromaDownsamplingSharp {
			// Requested explicitly but the depth/format combination is
			// outside what the iterative filter supports.
			return ErrNotImplemented
		}
		kr, kg, kb := dsp.Coefficients(int(img.MatrixCoefficients))
		yPlane := img.plane(PlaneY)
		uPlane := img.plane(PlaneU)
		vPlane := img.plane(PlaneV)
		mono := img.YUVFormat.monochrome()

		var fullU, fullV []float32
		if !mono && subsampled {
			fullU = pool.GetFloat32(img.Width * img.Height)
			fullV = pool.GetFloat32(img.Width * img.Height)
		}
		dsp.WorkRows(workers, img.Height, func(y0, y1 int) {
			for py := y0; py < y1; py++ {
				for px := 0; px < img.Width; px++ {
					r, g, b := rgb.normalizedColor(px, py, maxRGB, img.AlphaPremultiplied)
					y, u, v := dsp.RGBToYUV(r, g, b, kr, kg, kb)
					yPlane.SetSample(px, py, dsp.QuantizeLuma(y, img.Depth, fullRange))
					switch {
					case mono:
					case subsampled:
						fullU[py*img.Width+px] = float32(u)
						fullV[py*img.Width+px] = float32(v)
					default:
						uPlane.SetSample(px, py, dsp.QuantizeChroma(u, img.Depth, fullRange))
						vPlane.SetSample(px, py, dsp.QuantizeChroma(v, img.Depth, fullRange))
					}
				}
			}
		})
		if fullU != nil {
			if rgb.ChromaDownsampling == ChromaDownsamplingFastest {
				dsp.DownsampleNearest(fullU, img.Width, img.Height, uPlane, shiftX, shiftY, fullRange, workers)
				dsp.DownsampleNearest(fullV, img.Width, img.Height, vPlane, shiftX, shiftY, fullRange, workers)
			} else {
				dsp.DownsampleAverage(fullU, img.Width, img.Height, uPlane, shiftX, shiftY, fullRange, workers)
				dsp.DownsampleAverage(fullV, img.Width, img.Height, vPlane, shiftX, shiftY, fullRange, workers)
			}
			pool.PutFloat32(fullU)
			pool.PutFloat32(fullV)
		}
	}

	if img.HasAlpha() {
		img.alphaFromRGB(rgb, workers)
	}
	return nil
}

// ToYUV converts the buffer into a new planar image with the given
// subsampling. The image inherits the buffer's depth (16-bit buffers
// narrow to 12 bits), full range and BT.601 matrix coefficients;
// construct an Image and call FromRGB directly for other targets.
func (rgb *RGBImage) ToYUV(format PixelFormat) (*Image, error) {
	depth := rgb.Depth
	if !validDepth(depth) {
		depth = 12
	}
	img, err := NewImage(rgb.Width, rgb.Height, depth, format)
	if err != nil {
		return nil, err
	}
	img.MatrixCoefficients = MatrixCoefficientsBT601
	img.AlphaPremultiplied = rgb.AlphaPremultiplied && rgb.HasAlpha()
	if err := img.FromRGB(rgb); err != nil {
		return nil, err
	}
	return img, nil
}

// sharpEligible reports whether the iterative sharp downsampler can serve
// this conversion: 8-bit on both sides, 4:2:0 target, and a downsampling
// mode that asks for it ("automatic" prefers it where available).
func (img *Image) sharpEligible(rgb *RGBImage) bool {
	switch rgb.ChromaDownsampling {
	case ChromaDownsamplingSharp, ChromaDownsamplingAutomatic:
	default:
		return false
	}
	return img.YUVFormat == PixelFormatYUV420 && img.Depth == 8 && rgb.Depth == 8
}

func (img *Image) fromRGBIdentity(rgb *RGBImage, workers int, fullRange bool, maxRGB float64) {
	// Identity (GBR) stores G in Y, B in U and R in V; every channel is
	// quantized with the luma rule.
	yPlane := img.plane(PlaneY)
	uPlane := img.plane(PlaneU)
	vPlane := img.plane(PlaneV)
	dsp.WorkRows(workers, img.Height, func(y0, y1 int) {
		for py := y0; py < y1; py++ {
			for px := 0; px < img.Width; px++ {
				r, g, b := rgb.normalizedColor(px, py, maxRGB, img.AlphaPremultiplied)
				yPlane.SetSample(px, py, dsp.QuantizeLuma(g, img.Depth, fullRange))
				uPlane.SetSample(px, py, dsp.QuantizeLuma(b, img.Depth, fullRange))
				vPlane.SetSample(px, py, dsp.QuantizeLuma(r, img.Depth, fullRange))
			}
		}
	})
}

func (img *Image) fromRGBSharp(rgb *RGBImage, workers int, fullRange bool) {
	// The iterative filter consumes packed 8-bit RGB; stage the buffer in
	// that shape, reconciling alpha premultiplication along the way.
	stride := 3 * img.Width
	staged := pool.Get(stride * img.Height)
	dsp.WorkRows(workers, img.Height, func(y0, y1 int) {
		for py := y0; py < y1; py++ {
			row := staged[py*stride:]
			for px := 0; px < img.Width; px++ {
				r, g, b, a := rgb.readPixel(px, py)
				if rgb.HasAlpha() && int(a) != 255 {
					if rgb.AlphaPremultiplied && !img.AlphaPremultiplied {
						r = dsp.UnpremultiplySample(r, a, 255)
						g = dsp.UnpremultiplySample(g, a, 255)
						b = dsp.UnpremultiplySample(b, a, 255)
					} else if !rgb.AlphaPremultiplied && img.AlphaPremultiplied {
						r = dsp.PremultiplySample(r, a, 255)
						g = dsp.PremultiplySample(g, a, 255)
						b = dsp.PremultiplySample(b, a, 255)
					}
				}
				row[3*px] = byte(r)
				row[3*px+1] = byte(g)
				row[3*px+2] = byte(b)
			}
		}
	})
	kr, _, kb := dsp.Coefficients(int(img.MatrixCoefficients))
	m := dsp.ComputeSharpMatrix(kr, kb, img.Depth, fullRange)
	dsp.SharpRGBToYUV420(staged, img.Width, img.Height, stride,
		img.plane(PlaneY), img.plane(PlaneU), img.plane(PlaneV), m)
	pool.Put(staged)
}

// normalizedColor reads pixel (x, y), reconciles alpha premultiplication
// with the target's convention, and returns r, g, b in [0, 1].
func (rgb *RGBImage) normalizedColor(x, y int, maxRGB float64, wantPremultiplied bool) (r, g, b float64) {
	ri, gi, bi, ai := rgb.readPixel(x, y)
	r = float64(ri) / maxRGB
	g = float64(gi) / maxRGB
	b = float64(bi) / maxRGB
	if !rgb.HasAlpha() {
		return r, g, b
	}
	a := float64(ai) / maxRGB
	if rgb.AlphaPremultiplied && !wantPremultiplied {
		if a > 0 {
			r /= a
			g /= a
			b /= a
		}
	} else if !rgb.AlphaPremultiplied && wantPremultiplied {
		r *= a
		g *= a
		b *= a
	}
	return r, g, b
}

// alphaFromRGB fills the alpha plane. Alpha is always stored full range;
// without a source channel the plane is set fully opaque.
func (img *Image) alphaFromRGB(rgb *RGBImage, workers int) {
	aPlane := img.plane(PlaneA)
	if !rgb.HasAlpha() {
		aPlane.Fill(uint16(1<<img.Depth - 1))
		return
	}
	dsp.WorkRows(workers, img.Height, func(y0, y1 int) {
		for py := y0; py < y1; py++ {
			for px := 0; px < img.Width; px++ {
				_, _, _, a := rgb.readPixel(px, py)
				aPlane.SetSample(px, py, dsp.RescaleSample(a, rgb.Depth, img.Depth))
			}
		}
	})
}

// ToRGB converts the image's planes into the caller's RGB buffer. The
// buffer's format, depth and chroma upsampling mode select the output
// encoding; 4:2:0 and 4:2:2 chroma is reconstructed with the bilinear
// diamond filter unless the buffer asks for nearest.
func (img *Image) ToRGB(rgb *RGBImage) error {
	if rgb == nil || rgb.Pixels == nil {
		return ErrReformatFailed
	}
	if img.Width != rgb.Width || img.Height != rgb.Height {
		return ErrReformatFailed
	}
	if !validDepth(img.Depth) {
		return ErrUnsupportedDepth
	}
	if img.PlaneData(PlaneY) == nil {
		return ErrReformatFailed
	}
	if rgb.IsFloat && rgb.Depth != 16 {
		return ErrInvalidArgument
	}
	identity := img.MatrixCoefficients == MatrixCoefficientsIdentity
	if identity && img.YUVFormat != PixelFormatYUV444 {
		return ErrReformatFailed
	}
	if identity && (img.PlaneData(PlaneU) == nil || img.PlaneData(PlaneV) == nil) {
		return ErrReformatFailed
	}

	workers := clampThreads(rgb.MaxThreads)
	fullRange := img.YUVRange == RangeFull
	kr, kg, kb := dsp.Coefficients(int(img.MatrixCoefficients))
	shiftX, shiftY := img.YUVFormat.chromaShift()

	yPlane := img.plane(PlaneY)
	uPlane := img.plane(PlaneU)
	vPlane := img.plane(PlaneV)
	var aPlane *dsp.Plane
	if img.HasAlpha() {
		aPlane = img.plane(PlaneA)
	}
	hasChroma := uPlane.Data != nil && vPlane.Data != nil && !img.YUVFormat.monochrome()
	nearest := rgb.ChromaUpsampling == ChromaUpsamplingNearest ||
		rgb.ChromaUpsampling == ChromaUpsamplingFastest
	maxImg := float64(int(1)<<img.Depth - 1)

	dsp.WorkRows(workers, img.Height, func(y0, y1 int) {
		for py := y0; py < y1; py++ {
			for px := 0; px < img.Width; px++ {
				var r, g, b float64
				switch {
				case identity:
					g = dsp.DequantizeLuma(yPlane.Sample(px, py), img.Depth, fullRange)
					b = dsp.DequantizeLuma(uPlane.Sample(px, py), img.Depth, fullRange)
					r = dsp.DequantizeLuma(vPlane.Sample(px, py), img.Depth, fullRange)
				case !hasChroma:
					y := dsp.DequantizeLuma(yPlane.Sample(px, py), img.Depth, fullRange)
					r, g, b = y, y, y
				default:
					y := dsp.DequantizeLuma(yPlane.Sample(px, py), img.Depth, fullRange)
					var uc, vc uint16
					if nearest {
						uc = dsp.UpsampleNearest(uPlane, px, py, shiftX, shiftY)
						vc = dsp.UpsampleNearest(vPlane, px, py, shiftX, shiftY)
					} else {
						uc = dsp.UpsampleBilinear(uPlane, px, py, shiftX, shiftY)
						vc = dsp.UpsampleBilinear(vPlane, px, py, shiftX, shiftY)
					}
					u := dsp.DequantizeChroma(uc, img.Depth, fullRange)
					v := dsp.DequantizeChroma(vc, img.Depth, fullRange)
					r, g, b = dsp.YUVToRGB(y, u, v, kr, kg, kb)
				}

				a := 1.0
				if aPlane != nil {
					a = float64(aPlane.Sample(px, py)) / maxImg
				}
				if img.AlphaPremultiplied && !rgb.AlphaPremultiplied {
					if a > 0 {
						r /= a
						g /= a
						b /= a
					}
				} else if !img.AlphaPremultiplied && rgb.AlphaPremultiplied {
					r *= a
					g *= a
					b *= a
				}
				rgb.writeColor(px, py, r, g, b, a)
			}
		}
	})
	return nil
}

// writeColor quantizes normalized channel values into the buffer's depth
// (or half-float encoding) and stores them.
func (rgb *RGBImage) writeColor(x, y int, r, g, b, a float64) {
	if rgb.IsFloat {
		rgb.writePixel(x, y, floatToHalf(r), floatToHalf(g), floatToHalf(b), floatToHalf(a))
		return
	}
	rgb.writePixel(x, y,
		dsp.QuantizeLuma(r, rgb.Depth, true),
		dsp.QuantizeLuma(g, rgb.Depth, true),
		dsp.QuantizeLuma(b, rgb.Depth, true),
		dsp.QuantizeLuma(a, rgb.Depth, true))
}

// floatToHalf converts a value clamped to [0, 1] to IEEE 754 binary16
// bits, rounding to nearest-even.
func floatToHalf(v float64) uint16 {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	bits := math.Float32bits(float32(v))
	exp := int(bits>>23&0xff) - 127
	mant := bits & 0x7fffff
	switch {
	case exp > 15:
		return 0x7c00
	case exp >= -14:
		m := mant >> 13
		if mant&0x1fff > 0x1000 || mant&0x1fff == 0x1000 && m&1 == 1 {
			m++
		}
		return uint16(exp+15)<<10 + uint16(m)
	case exp >= -24:
		mant |= 0x800000
		shift := uint(-exp - 1)
		m := mant >> shift
		rem := mant & (1<<shift - 1)
		half := uint32(1) << (shift - 1)
		if rem > half || rem == half && m&1 == 1 {
			m++
		}
		return uint16(m)
	default:
		return 0
	}
}
