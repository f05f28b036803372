// Package dsp implements the sample-level kernels behind the avif package:
// depth-generic plane access, YUV quantization, chroma resampling, alpha
// premultiplication and plane rescaling. All kernels are pure functions of
// their inputs; parallel callers partition work by row so results do not
// depend on the worker count.
package dsp

// Plane is a depth-generic view of one image plane. Samples are single
// bytes at depth 8 and little-endian uint16 words at depths above 8.
type Plane struct {
	Data     []byte
	RowBytes int
	Width    int
	Height   int
	Depth    int
}

// Wide reports whether samples occupy two bytes.
func (p *Plane) Wide() bool { return p.Depth > 8 }

// SampleBytes returns the storage size of one sample.
func (p *Plane) SampleBytes() int {
	if p.Depth > 8 {
		return 2
	}
	return 1
}

// MaxValue returns the largest representable sample value.
func (p *Plane) MaxValue() uint16 { return uint16(1<<p.Depth - 1) }

// Sample returns the sample at (x, y).
func (p *Plane) Sample(x, y int) uint16 {
	if p.Depth > 8 {
		off := y*p.RowBytes + 2*x
		return uint16(p.Data[off]) | uint16(p.Data[off+1])<<8
	}
	return uint16(p.Data[y*p.RowBytes+x])
}

// SetSample stores v at (x, y). v must already be clipped to the depth.
func (p *Plane) SetSample(x, y int, v uint16) {
	if p.Depth > 8 {
		off := y*p.RowBytes + 2*x
		p.Data[off] = byte(v)
		p.Data[off+1] = byte(v >> 8)
		return
	}
	p.Data[y*p.RowBytes+x] = byte(v)
}

// Row returns the raw bytes of row y, trimmed to the sample width.
func (p *Plane) Row(y int) []byte {
	off := y * p.RowBytes
	return p.Data[off : off+p.Width*p.SampleBytes()]
}

// Fill sets every sample of the plane to v.
func (p *Plane) Fill(v uint16) {
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			p.SetSample(x, y, v)
		}
	}
}

// RescaleSample converts a sample between bit depths with rounding, so that
// the extremes map to the extremes (0 -> 0, max -> max).
func RescaleSample(v uint16, from, to int) uint16 {
	if from == to {
		return v
	}
	fromMax := 1<<from - 1
	toMax := 1<<to - 1
	return uint16((int(v)*toMax + fromMax/2) / fromMax)
}
