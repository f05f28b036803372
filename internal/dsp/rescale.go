package dsp

// Plane rescaling for Image.Scale. A separable area (box) filter: every
// destination sample averages the source span it covers, with fractional
// coverage at the span edges. The same filter handles both shrinking and
// growing; for growth the span narrows below one sample and the filter
// degenerates to linear interpolation between the two covered samples.

// span1D accumulates the coverage-weighted sum of src samples over the
// source interval [pos0, pos1) along one axis, via the sample callback.
func span1D(pos0, pos1 float64, limit int, sample func(i int) float64) float64 {
	i0 := int(pos0)
	i1 := int(pos1)
	if i1 >= limit {
		i1 = limit - 1
	}
	if i0 > i1 {
		i0 = i1
	}
	if i0 == i1 {
		return sample(i0) * (pos1 - pos0)
	}
	sum := sample(i0) * (float64(i0+1) - pos0)
	for i := i0 + 1; i < i1; i++ {
		sum += sample(i)
	}
	sum += sample(i1) * (pos1 - float64(i1))
	return sum
}

// ResamplePlane fills dst from src. Source and destination depths must
// match; dimensions are taken from the plane views. Destination rows are
// processed independently across workers.
func ResamplePlane(src, dst *Plane, workers int) {
	if src.Width == dst.Width && src.Height == dst.Height {
		for y := 0; y < src.Height; y++ {
			copy(dst.Row(y), src.Row(y))
		}
		return
	}

	xRatio := float64(src.Width) / float64(dst.Width)
	yRatio := float64(src.Height) / float64(dst.Height)
	maxValue := int(dst.MaxValue())

	WorkRows(workers, dst.Height, func(oy0, oy1 int) {
		for oy := oy0; oy < oy1; oy++ {
			sy0 := float64(oy) * yRatio
			sy1 := float64(oy+1) * yRatio
			area := (sy1 - sy0) * xRatio
			for ox := 0; ox < dst.Width; ox++ {
				sx0 := float64(ox) * xRatio
				sx1 := float64(ox+1) * xRatio
				sum := span1D(sy0, sy1, src.Height, func(y int) float64 {
					return span1D(sx0, sx1, src.Width, func(x int) float64 {
						return float64(src.Sample(x, y))
					})
				})
				dst.SetSample(ox, oy, roundClip(sum/area, maxValue))
			}
		}
	})
}
