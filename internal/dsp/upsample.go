package dsp

// Chroma upsampling for YUV -> RGB conversion. The bilinear kernel is the
// diamond 4-tap filter ((9*a + 3*b + 3*c + d + 8) >> 4) used by fancy
// upsamplers, collapsed per axis when that axis is not subsampled.

// chromaTaps returns the two tap indices and whether the axis blends at
// all for luma coordinate x on an axis subsampled by shift. Chroma samples
// sit between even/odd luma pairs, so the secondary tap mirrors across the
// half-texel boundary, clamped at the plane edges.
func chromaTaps(x, shift, limit int) (i0, i1 int, blend bool) {
	if shift == 0 {
		if x >= limit {
			x = limit - 1
		}
		return x, x, false
	}
	i0 = x >> shift
	if x&1 == 0 {
		i1 = i0 - 1
	} else {
		i1 = i0 + 1
	}
	if i0 >= limit {
		i0 = limit - 1
	}
	if i1 < 0 {
		i1 = 0
	} else if i1 >= limit {
		i1 = limit - 1
	}
	return i0, i1, true
}

// UpsampleNearest returns the chroma code co-located with luma (x, y).
func UpsampleNearest(c *Plane, x, y, shiftX, shiftY int) uint16 {
	cx := x >> shiftX
	cy := y >> shiftY
	if cx >= c.Width {
		cx = c.Width - 1
	}
	if cy >= c.Height {
		cy = c.Height - 1
	}
	return c.Sample(cx, cy)
}

// UpsampleBilinear returns the chroma code for luma position (x, y) using
// the 4-tap diamond kernel with edge mirroring.
func UpsampleBilinear(c *Plane, x, y, shiftX, shiftY int) uint16 {
	x0, x1, bx := chromaTaps(x, shiftX, c.Width)
	y0, y1, by := chromaTaps(y, shiftY, c.Height)

	switch {
	case !bx && !by:
		return c.Sample(x0, y0)
	case bx && !by:
		return uint16((3*int(c.Sample(x0, y0)) + int(c.Sample(x1, y0)) + 2) >> 2)
	case !bx && by:
		return uint16((3*int(c.Sample(x0, y0)) + int(c.Sample(x0, y1)) + 2) >> 2)
	default:
		a := int(c.Sample(x0, y0))
		b := int(c.Sample(x1, y0))
		d := int(c.Sample(x0, y1))
		e := int(c.Sample(x1, y1))
		return uint16((9*a + 3*b + 3*d + e + 8) >> 4)
	}
}
