package dsp

import "math"

// YUV quantization and coefficient selection. The float pipeline here is
// shared by both conversion directions so that quantize/dequantize pairs
// are exact inverses up to rounding.

// Coefficients returns the (kr, kg, kb) luma weights for a CICP
// matrix-coefficients code. Codes this package does not interpret fall
// back to BT.601, matching libavif's default.
func Coefficients(matrix int) (kr, kg, kb float64) {
	switch matrix {
	case 1: // BT.709
		kr, kb = 0.2126, 0.0722
	case 9, 10: // BT.2020 (non-constant and constant luminance share weights)
		kr, kb = 0.2627, 0.0593
	case 5, 6: // BT.470BG / BT.601
		kr, kb = 0.299, 0.114
	default:
		kr, kb = 0.299, 0.114
	}
	return kr, 1 - kr - kb, kb
}

func roundClip(v float64, maxValue int) uint16 {
	i := int(math.Floor(v + 0.5))
	if i < 0 {
		return 0
	}
	if i > maxValue {
		return uint16(maxValue)
	}
	return uint16(i)
}

// QuantizeLuma maps a luma value in [0, 1] to a depth-bit code.
func QuantizeLuma(v float64, depth int, fullRange bool) uint16 {
	maxValue := 1<<depth - 1
	if fullRange {
		return roundClip(v*float64(maxValue), maxValue)
	}
	// Limited range: 16..235 footroom/headroom at 8 bits, scaled up with depth.
	scale := float64(int(1) << (depth - 8))
	return roundClip((219*v+16)*scale, maxValue)
}

// DequantizeLuma is the inverse of QuantizeLuma. The result may fall
// slightly outside [0, 1] for out-of-range limited codes; callers clamp at
// the final quantization step.
func DequantizeLuma(code uint16, depth int, fullRange bool) float64 {
	maxValue := float64(int(1)<<depth - 1)
	if fullRange {
		return float64(code) / maxValue
	}
	scale := float64(int(1) << (depth - 8))
	return (float64(code)/scale - 16) / 219
}

// QuantizeChroma maps a chroma value in [-0.5, 0.5] to a depth-bit code
// centered at 2^(depth-1).
func QuantizeChroma(v float64, depth int, fullRange bool) uint16 {
	maxValue := 1<<depth - 1
	center := float64(int(1) << (depth - 1))
	if fullRange {
		return roundClip(v*float64(maxValue)+center, maxValue)
	}
	scale := float64(int(224) << (depth - 8))
	return roundClip(v*scale+center, maxValue)
}

// DequantizeChroma is the inverse of QuantizeChroma.
func DequantizeChroma(code uint16, depth int, fullRange bool) float64 {
	center := float64(int(1) << (depth - 1))
	if fullRange {
		return (float64(code) - center) / float64(int(1)<<depth-1)
	}
	scale := float64(int(224) << (depth - 8))
	return (float64(code) - center) / scale
}

// RGBToYUV converts normalized r, g, b in [0, 1] to (y, u, v) with y in
// [0, 1] and u, v in [-0.5, 0.5].
func RGBToYUV(r, g, b, kr, kg, kb float64) (y, u, v float64) {
	y = kr*r + kg*g + kb*b
	u = (b - y) / (2 * (1 - kb))
	v = (r - y) / (2 * (1 - kr))
	return y, u, v
}

// YUVToRGB is the inverse of RGBToYUV. Results may fall outside [0, 1]
// and must be clamped by the caller's final quantization.
func YUVToRGB(y, u, v, kr, kg, kb float64) (r, g, b float64) {
	r = y + 2*(1-kr)*v
	b = y + 2*(1-kb)*u
	g = (y - kr*r - kb*b) / kg
	return r, g, b
}
