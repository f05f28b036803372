package dsp

import "sync"

// WorkRows runs fn over [0, rows) split into contiguous ranges across at
// most workers goroutines. The call blocks until all ranges complete. The
// partition depends only on rows and workers, never on scheduling, so
// kernels that write disjoint rows produce byte-identical output for any
// worker count.
func WorkRows(workers, rows int, fn func(y0, y1 int)) {
	if rows <= 0 {
		return
	}
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		fn(0, rows)
		return
	}
	chunk := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for y0 := 0; y0 < rows; y0 += chunk {
		y1 := y0 + chunk
		if y1 > rows {
			y1 = rows
		}
		wg.Add(1)
		go func(a, b int) {
			defer wg.Done()
			fn(a, b)
		}(y0, y1)
	}
	wg.Wait()
}
