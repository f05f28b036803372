// Package codec defines the encoder/decoder backend interface and a
// process-wide registry. Backends register themselves from init so that
// importing a backend package is all it takes to make it available.
package codec

import (
	"errors"
	"sync"
)

// Params carries one frame's planes plus the encode configuration. The
// plane slices are borrowed from the caller for the duration of the call.
type Params struct {
	Width      int
	Height     int
	Depth      int
	Format     int // chroma subsampling: 444, 422, 420 or 400
	FullRange  bool
	Monochrome bool

	// Planes holds Y, U, V in that order (U and V nil for monochrome);
	// RowBytes the matching strides.
	Planes   [][]byte
	RowBytes []int

	Speed         int
	Quality       int
	MinQuantizer  int
	MaxQuantizer  int
	TileRowsLog2  int
	TileColsLog2  int
	AutoTiling    bool
	MaxThreads    int
	ForceKeyframe bool
	// Options carries codec-specific key/value pairs, passed through
	// uninterpreted.
	Options map[string]string
}

// Frame is a decoded frame: planes in the same order and meaning as
// Params.Planes, owned by the caller after return.
type Frame struct {
	Width      int
	Height     int
	Depth      int
	Format     int
	FullRange  bool
	Monochrome bool
	Planes     [][]byte
	RowBytes   []int
}

// Codec is one backend. Encode returns a compressed payload for the
// frame; Decode reverses it. A backend may support only one direction.
type Codec interface {
	Name() string
	CanEncode() bool
	CanDecode() bool
	Encode(p *Params) ([]byte, error)
	Decode(payload []byte) (*Frame, error)
}

// ErrNotFound reports that no registered backend satisfies a request.
var ErrNotFound = errors.New("codec: no backend available")

var (
	mu       sync.RWMutex
	backends = map[string]Codec{}
	order    []string
)

// Register adds a backend under its name, replacing any previous
// registration with the same name.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	name := c.Name()
	if _, ok := backends[name]; !ok {
		order = append(order, name)
	}
	backends[name] = c
}

// Get returns the backend registered under name.
func Get(name string) (Codec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := backends[name]
	return c, ok
}

// List returns the registered backend names in registration order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Resolve picks a backend by name, or by registration order for "auto"
// (or empty), restricted to backends supporting the needed direction.
func Resolve(name string, needEncode bool) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	usable := func(c Codec) bool {
		if needEncode {
			return c.CanEncode()
		}
		return c.CanDecode()
	}
	if name != "" && name != "auto" {
		c, ok := backends[name]
		if !ok || !usable(c) {
			return nil, ErrNotFound
		}
		return c, nil
	}
	for _, n := range order {
		if c := backends[n]; usable(c) {
			return c, nil
		}
	}
	return nil, ErrNotFound
}
