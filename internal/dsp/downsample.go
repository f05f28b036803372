package dsp

// Chroma downsampling for RGB -> YUV conversion. The full-resolution
// chroma signal is computed by the caller as float32 values in
// [-0.5, 0.5]; these kernels reduce it to the subsampled plane and
// quantize in one pass.

// DownsampleAverage fills the chroma plane by box-filtering the footprint
// implied by the subsampling shifts, clamping partial footprints at the
// right/bottom edges. Rows are processed independently across workers.
func DownsampleAverage(full []float32, width, height int, c *Plane, shiftX, shiftY int, fullRange bool, workers int) {
	WorkRows(workers, c.Height, func(cy0, cy1 int) {
		for cy := cy0; cy < cy1; cy++ {
			for cx := 0; cx < c.Width; cx++ {
				var sum float64
				var count int
				for dy := 0; dy < 1<<shiftY; dy++ {
					y := cy<<shiftY + dy
					if y >= height {
						continue
					}
					for dx := 0; dx < 1<<shiftX; dx++ {
						x := cx<<shiftX + dx
						if x >= width {
							continue
						}
						sum += float64(full[y*width+x])
						count++
					}
				}
				c.SetSample(cx, cy, QuantizeChroma(sum/float64(count), c.Depth, fullRange))
			}
		}
	})
}

// DownsampleNearest fills the chroma plane by decimation, keeping the
// top-left sample of each footprint.
func DownsampleNearest(full []float32, width, height int, c *Plane, shiftX, shiftY int, fullRange bool, workers int) {
	WorkRows(workers, c.Height, func(cy0, cy1 int) {
		for cy := cy0; cy < cy1; cy++ {
			y := cy << shiftY
			if y >= height {
				y = height - 1
			}
			for cx := 0; cx < c.Width; cx++ {
				x := cx << shiftX
				if x >= width {
					x = width - 1
				}
				c.SetSample(cx, cy, QuantizeChroma(float64(full[y*width+x]), c.Depth, fullRange))
			}
		}
	})
}
