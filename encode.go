package avif

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/deepteams/avif/internal/codec"
	"github.com/deepteams/avif/internal/mux"
)

// AddImageFlags modifies how a frame joins the sequence.
type AddImageFlags uint32

const (
	AddImageNone AddImageFlags = 0
	// AddImageForceKeyframe marks the frame as a sync sample regardless
	// of the keyframe interval.
	AddImageForceKeyframe AddImageFlags = 1 << 0
	// AddImageSingle asserts this is the only frame the session will
	// ever receive.
	AddImageSingle AddImageFlags = 1 << 1
)

type encoderState int

const (
	stateConfiguring encoderState = iota
	stateAccumulating
	stateFinished
)

// Encoder is a stateful encoding session: configure it, add one or more
// frames (or a grid), then finish to obtain the output stream. Setters
// take effect for frames added after the call; changing configuration
// once frames have been added is unsupported. An Encoder must not be
// shared between goroutines without external synchronization.
type Encoder struct {
	codecName    string
	maxThreads   int
	speed        int
	quality      int
	qualityAlpha int

	minQuantizer      int
	maxQuantizer      int
	minQuantizerAlpha int
	maxQuantizerAlpha int

	tileRowsLog2 int
	tileColsLog2 int
	autoTiling   bool

	keyframeInterval int
	timescale        uint64
	// repetitions holds the stored loop count: the play count minus one,
	// with -1 meaning loop forever.
	repetitions int
	dedup       bool
	opts        map[string]string

	state encoderState
	cdc   codec.Codec
	asm   *mux.Assembler

	// Geometry pinned by the first frame.
	width, height int
	depth         int
	format        PixelFormat
	fullRange     bool
	hasAlpha      bool

	framesSinceKeyframe int
	lastColorHash       uint64
	lastAlphaHash       uint64
	haveLastHash        bool
	sealed              bool
}

// NewEncoder returns a session with the default configuration: automatic
// codec selection, single-threaded, speed 6, quality 60 (alpha lossless at
// 100), timescale 1 and infinite looping.
func NewEncoder() *Encoder {
	return &Encoder{
		codecName:         "auto",
		maxThreads:        1,
		speed:             6,
		quality:           60,
		qualityAlpha:      100,
		maxQuantizer:      63,
		maxQuantizerAlpha: 63,
		timescale:         1,
		repetitions:       -1,
		asm:               mux.NewAssembler(),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetCodec selects the backend by name; "auto" picks the first backend
// that can encode.
func (e *Encoder) SetCodec(name string) { e.codecName = name }

// SetMaxThreads sets the worker hint for the codec (clamped to 1024).
// It never affects the output bytes.
func (e *Encoder) SetMaxThreads(n int) { e.maxThreads = clampThreads(n) }

// SetSpeed sets the effort/speed tradeoff, 0 (slowest) to 10 (fastest).
func (e *Encoder) SetSpeed(speed int) { e.speed = clampInt(speed, 0, 10) }

// SetQuality sets the color quality, 0 to 100 (lossless).
func (e *Encoder) SetQuality(q int) { e.quality = clampInt(q, 0, 100) }

// SetQualityAlpha sets the alpha quality, 0 to 100 (lossless).
func (e *Encoder) SetQualityAlpha(q int) { e.qualityAlpha = clampInt(q, 0, 100) }

// SetQuantizerRange sets the color quantizer bounds, each 0 to 63.
func (e *Encoder) SetQuantizerRange(min, max int) {
	e.minQuantizer = clampInt(min, 0, 63)
	e.maxQuantizer = clampInt(max, 0, 63)
}

// SetQuantizerAlphaRange sets the alpha quantizer bounds, each 0 to 63.
func (e *Encoder) SetQuantizerAlphaRange(min, max int) {
	e.minQuantizerAlpha = clampInt(min, 0, 63)
	e.maxQuantizerAlpha = clampInt(max, 0, 63)
}

// SetTiling sets the log2 tile split counts, each clamped to 0..6.
func (e *Encoder) SetTiling(rowsLog2, colsLog2 int) {
	e.tileRowsLog2 = clampInt(rowsLog2, 0, 6)
	e.tileColsLog2 = clampInt(colsLog2, 0, 6)
}

// SetAutoTiling lets the codec choose the tile split, overriding SetTiling.
func (e *Encoder) SetAutoTiling(enabled bool) { e.autoTiling = enabled }

// SetKeyframeInterval forces a sync sample at least every n frames;
// 0 disables the interval.
func (e *Encoder) SetKeyframeInterval(n int) {
	if n < 0 {
		n = 0
	}
	e.keyframeInterval = n
}

// SetTimescale sets the number of timestamp units per second.
func (e *Encoder) SetTimescale(timescale uint64) {
	if timescale == 0 {
		timescale = 1
	}
	e.timescale = timescale
}

// SetRepetitionCount sets how many times the sequence plays: 0 means loop
// forever, a positive count plays that many times. The value is carried
// internally (and on the wire) as count minus one, so 0 becomes the
// infinite marker.
func (e *Encoder) SetRepetitionCount(count int) {
	e.repetitions = count - 1
	if e.repetitions < -1 {
		e.repetitions = -1
	}
}

// SetDuplicateFrameDetection merges consecutive identical frames into one
// frame with the combined duration.
func (e *Encoder) SetDuplicateFrameDetection(enabled bool) { e.dedup = enabled }

// SetCodecSpecificOption passes a key/value pair through to the codec
// uninterpreted. Keys and values must not contain NUL bytes.
func (e *Encoder) SetCodecSpecificOption(key, value string) error {
	if strings.ContainsRune(key, 0) || strings.ContainsRune(value, 0) {
		return ErrInvalidArgument
	}
	if e.opts == nil {
		e.opts = map[string]string{}
	}
	e.opts[key] = value
	return nil
}

func formatCode(f PixelFormat) int {
	switch f {
	case PixelFormatYUV444:
		return 444
	case PixelFormatYUV422:
		return 422
	case PixelFormatYUV420:
		return 420
	default:
		return 400
	}
}

// AddImage appends a frame with the given duration in timescale units
// (0 counts as 1). The first frame pins the sequence geometry; later
// frames must match it or the call reports ErrIncompatibleImage.
func (e *Encoder) AddImage(img *Image, duration uint64, flags AddImageFlags) error {
	if e.state == stateFinished {
		return ErrInvalidArgument
	}
	if e.sealed {
		// A single frame or a grid already sealed the sequence.
		return ErrInvalidArgument
	}
	if img == nil || img.PlaneData(PlaneY) == nil {
		return ErrNoContent
	}
	if err := e.checkAlphaGeometry(img); err != nil {
		return err
	}
	single := flags&AddImageSingle != 0
	if single && e.state != stateConfiguring {
		return ErrInvalidArgument
	}
	if duration == 0 {
		duration = 1
	}

	if e.state == stateConfiguring {
		if err := e.begin(img); err != nil {
			return err
		}
	} else if img.Width != e.width || img.Height != e.height || img.Depth != e.depth ||
		img.YUVFormat != e.format || (img.YUVRange == RangeFull) != e.fullRange ||
		img.HasAlpha() != e.hasAlpha {
		return ErrIncompatibleImage
	}

	force := flags&AddImageForceKeyframe != 0
	colorHash, alphaHash := frameHashes(img)
	if e.dedup && e.haveLastHash && !force &&
		colorHash == e.lastColorHash && alphaHash == e.lastAlphaHash {
		e.asm.ExtendLastDuration(duration)
		return nil
	}

	sync := force || e.asm.NumFrames() == 0 ||
		(e.keyframeInterval > 0 && e.framesSinceKeyframe >= e.keyframeInterval)
	if err := e.encodeFrame(img, duration, sync); err != nil {
		return err
	}
	if sync {
		e.framesSinceKeyframe = 0
	}
	e.framesSinceKeyframe++
	e.lastColorHash = colorHash
	e.lastAlphaHash = alphaHash
	e.haveLastHash = true
	e.sealed = single
	return nil
}

// AddImageGrid appends a tiled composite built from cols x rows cell
// images in row-major order. It is only valid before any AddImage call
// and seals the session against further adds.
func (e *Encoder) AddImageGrid(cols, rows int, cells []*Image, flags AddImageFlags) error {
	if e.state == stateFinished {
		return ErrInvalidArgument
	}
	if e.state != stateConfiguring || e.sealed {
		return ErrInvalidImageGrid
	}
	if cols < 1 || cols > 256 || rows < 1 || rows > 256 || cols*rows != len(cells) {
		return ErrInvalidImageGrid
	}
	for _, c := range cells {
		if c == nil || c.PlaneData(PlaneY) == nil {
			return ErrNoContent
		}
	}
	first := cells[0]
	cellW, cellH := first.Width, first.Height
	shiftX, shiftY := first.YUVFormat.chromaShift()
	for i, c := range cells {
		if c.Depth != first.Depth || c.YUVFormat != first.YUVFormat ||
			c.YUVRange != first.YUVRange || c.HasAlpha() != first.HasAlpha() {
			return ErrInvalidImageGrid
		}
		if err := e.checkAlphaGeometry(c); err != nil {
			return err
		}
		col, row := i%cols, i/cols
		lastCol, lastRow := col == cols-1, row == rows-1
		switch {
		case !lastCol && c.Width != cellW,
			lastCol && c.Width > cellW,
			!lastRow && c.Height != cellH,
			lastRow && c.Height > cellH:
			return ErrInvalidImageGrid
		}
		// Interior cell edges must land on chroma sample boundaries.
		if !lastCol && c.Width&(1<<shiftX-1) != 0 {
			return ErrInvalidImageGrid
		}
		if !lastRow && c.Height&(1<<shiftY-1) != 0 {
			return ErrInvalidImageGrid
		}
	}
	lastW := cells[cols-1].Width
	lastH := cells[(rows-1)*cols].Height

	if err := e.begin(first); err != nil {
		return err
	}
	e.width = (cols-1)*cellW + lastW
	e.height = (rows-1)*cellH + lastH
	e.asm.SetSequence(e.width, e.height, e.depth, formatCode(e.format), e.fullRange)
	e.asm.SetGrid(mux.Grid{Cols: cols, Rows: rows, CellW: cellW, CellH: cellH})

	for _, c := range cells {
		if err := e.encodeFrame(c, 1, true); err != nil {
			return err
		}
	}
	e.sealed = true
	return nil
}

// begin resolves the codec, pins the sequence geometry from the first
// frame and moves the session to the accumulating state.
func (e *Encoder) begin(img *Image) error {
	cdc, err := codec.Resolve(e.codecName, true)
	if err != nil {
		return ErrNoCodecAvailable
	}
	e.cdc = cdc
	e.width = img.Width
	e.height = img.Height
	e.depth = img.Depth
	e.format = img.YUVFormat
	e.fullRange = img.YUVRange == RangeFull
	e.hasAlpha = img.HasAlpha()
	e.asm.SetSequence(e.width, e.height, e.depth, formatCode(e.format), e.fullRange)
	e.asm.SetTiming(e.timescale, e.repetitions)
	e.asm.SetMetadata(img.ICC, img.Exif, img.XMP)
	e.state = stateAccumulating
	return nil
}

// checkAlphaGeometry verifies the alpha plane covers the color geometry.
func (e *Encoder) checkAlphaGeometry(img *Image) error {
	if !img.HasAlpha() {
		return nil
	}
	rowBytes := img.PlaneRowBytes(PlaneA)
	data := img.PlaneData(PlaneA)
	sampleBytes := 1
	if img.UsesU16() {
		sampleBytes = 2
	}
	if rowBytes < img.Width*sampleBytes || len(data) < rowBytes*img.Height {
		return ErrColorAlphaSizeMismatch
	}
	return nil
}

func (e *Encoder) encodeFrame(img *Image, duration uint64, sync bool) error {
	color, err := e.cdc.Encode(e.params(img, false, sync))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeColorFailed, err)
	}
	var alpha []byte
	if img.HasAlpha() {
		alpha, err = e.cdc.Encode(e.params(img, true, sync))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncodeAlphaFailed, err)
		}
	}
	return e.asm.AddFrame(color, alpha, duration, sync)
}

// params builds the codec input for the color planes or, with alpha set,
// the alpha plane as a monochrome frame.
func (e *Encoder) params(img *Image, alpha, sync bool) *codec.Params {
	p := &codec.Params{
		Width:         img.Width,
		Height:        img.Height,
		Depth:         img.Depth,
		FullRange:     img.YUVRange == RangeFull,
		Speed:         e.speed,
		Quality:       e.quality,
		MinQuantizer:  e.minQuantizer,
		MaxQuantizer:  e.maxQuantizer,
		TileRowsLog2:  e.tileRowsLog2,
		TileColsLog2:  e.tileColsLog2,
		AutoTiling:    e.autoTiling,
		MaxThreads:    e.maxThreads,
		ForceKeyframe: sync,
		Options:       e.opts,
	}
	if alpha {
		p.Format = 400
		p.Monochrome = true
		p.FullRange = true
		p.Quality = e.qualityAlpha
		p.MinQuantizer = e.minQuantizerAlpha
		p.MaxQuantizer = e.maxQuantizerAlpha
		p.Planes = [][]byte{img.PlaneData(PlaneA)}
		p.RowBytes = []int{img.PlaneRowBytes(PlaneA)}
		return p
	}
	p.Format = formatCode(img.YUVFormat)
	p.Monochrome = img.YUVFormat.monochrome()
	if p.Monochrome {
		p.Planes = [][]byte{img.PlaneData(PlaneY)}
		p.RowBytes = []int{img.PlaneRowBytes(PlaneY)}
	} else {
		p.Planes = [][]byte{img.PlaneData(PlaneY), img.PlaneData(PlaneU), img.PlaneData(PlaneV)}
		p.RowBytes = []int{
			img.PlaneRowBytes(PlaneY), img.PlaneRowBytes(PlaneU), img.PlaneRowBytes(PlaneV),
		}
	}
	return p
}

// frameHashes digests the plane contents for duplicate detection.
func frameHashes(img *Image) (color, alpha uint64) {
	h := xxhash.New()
	for _, p := range []Plane{PlaneY, PlaneU, PlaneV} {
		if d := img.PlaneData(p); d != nil {
			h.Write(d)
		}
	}
	color = h.Sum64()
	if d := img.PlaneData(PlaneA); d != nil {
		alpha = xxhash.Sum64(d)
	}
	return color, alpha
}

// Finish flushes the accumulated frames into the output stream and moves
// the session to its terminal state. The returned buffer is owned by the
// caller. Calling Finish before any frame was added reports
// ErrNoImagesRemaining; calling it twice reports ErrInvalidArgument.
func (e *Encoder) Finish() ([]byte, error) {
	if e.state == stateFinished {
		return nil, ErrInvalidArgument
	}
	if e.state == stateConfiguring || e.asm.NumFrames() == 0 {
		return nil, ErrNoImagesRemaining
	}
	var buf bytes.Buffer
	if err := e.asm.Assemble(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOError, err)
	}
	e.state = stateFinished
	e.asm = nil
	e.cdc = nil
	return buf.Bytes(), nil
}

// Write encodes a still image: AddImage with the single-frame flag
// followed by Finish.
func (e *Encoder) Write(img *Image) ([]byte, error) {
	if err := e.AddImage(img, 1, AddImageSingle); err != nil {
		return nil, err
	}
	return e.Finish()
}

// Close abandons the session, releasing accumulated frame data without
// producing output. It is safe to call at any point and more than once.
func (e *Encoder) Close() {
	e.state = stateFinished
	e.asm = nil
	e.cdc = nil
}
