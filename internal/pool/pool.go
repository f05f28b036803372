// Package pool provides bucketed sync.Pool instances for the scratch
// buffers used by the conversion and scaling paths. Buffers are grouped
// into size classes sized for plane rows and full-resolution chroma
// signals.
package pool

import "sync"

// Size classes. Plane-sized buffers dominate, so the classes run larger
// than a generic byte pool would.
const (
	Size4K  = 4096
	Size64K = 65536
	Size1M  = 1 << 20
	Size16M = 1 << 24
)

var byteSizes = [4]int{Size4K, Size64K, Size1M, Size16M}

func bucketIndex(size int) int {
	switch {
	case size <= Size4K:
		return 0
	case size <= Size64K:
		return 1
	case size <= Size1M:
		return 2
	default:
		return 3
	}
}

var bytePools [4]sync.Pool

func init() {
	for i := range bytePools {
		sz := byteSizes[i]
		bytePools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of length size, possibly with larger capacity.
// The caller must call Put when done.
func Get(size int) []byte {
	bp := bytePools[bucketIndex(size)].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice obtained from Get to its pool.
func Put(b []byte) {
	c := cap(b)
	if c < Size4K {
		return
	}
	bytePools[bucketIndex(c)].Put(&b)
}

// float32 scratch for full-resolution chroma signals. A single unbucketed
// pool suffices: the conversion paths request whole-image buffers whose
// sizes repeat call to call.
var f32Pool sync.Pool

// GetFloat32 returns a float32 slice of the requested length.
func GetFloat32(length int) []float32 {
	if v := f32Pool.Get(); v != nil {
		s := *(v.(*[]float32))
		if cap(s) >= length {
			return s[:length]
		}
	}
	return make([]float32, length)
}

// PutFloat32 returns a slice obtained from GetFloat32.
func PutFloat32(s []float32) {
	f32Pool.Put(&s)
}
