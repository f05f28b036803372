// Package mux assembles the encoder's output stream: a flat sequence of
// FourCC chunks (4-byte id + little-endian size + payload, padded to even
// offsets) carrying a sequence header, optional grid descriptor and
// metadata, and one FRAM chunk per encoded frame.
package mux

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ChunkID is a FourCC chunk identifier.
type ChunkID = uint32

func fourCC(s string) ChunkID {
	return binary.LittleEndian.Uint32([]byte(s))
}

var (
	FourCCASEQ = fourCC("ASEQ")
	FourCCFRAM = fourCC("FRAM")
	FourCCGRID = fourCC("GRID")
	FourCCICCP = fourCC("ICCP")
	FourCCEXIF = fourCC("EXIF")
	FourCCXMP  = fourCC("XMP ")
)

const (
	chunkHeaderSize = 8
	streamVersion   = 1

	// InfiniteRepetitions is the on-wire marker for an unbounded loop.
	InfiniteRepetitions = 0xFFFFFFFF
)

// Sequence header flags.
const (
	flagFullRange = 1 << 0
	flagAlpha     = 1 << 1
)

// Frame flags.
const (
	frameFlagSync  = 1 << 0
	frameFlagAlpha = 1 << 1
)

var (
	ErrNoFrames      = errors.New("mux: no frames to assemble")
	ErrFrameEmpty    = errors.New("mux: frame payload is empty")
	ErrNotConfigured = errors.New("mux: sequence parameters not set")
)

type muxFrame struct {
	color    []byte
	alpha    []byte
	duration uint64
	sync     bool
}

// Grid describes a tiled layout: every cell but the last row/column has
// the uniform cell size.
type Grid struct {
	Cols, Rows   int
	CellW, CellH int
}

// Assembler accumulates encoded frames and writes the output stream.
type Assembler struct {
	width, height int
	depth         int
	format        int
	fullRange     bool

	timescale uint64
	// repetitions holds the stored loop count (play count minus one);
	// negative means loop forever.
	repetitions int

	icc, exif, xmp []byte
	grid           *Grid
	frames         []muxFrame
}

func NewAssembler() *Assembler {
	return &Assembler{timescale: 1, repetitions: -1}
}

// SetSequence records the stream geometry shared by every frame.
func (a *Assembler) SetSequence(width, height, depth, format int, fullRange bool) {
	a.width = width
	a.height = height
	a.depth = depth
	a.format = format
	a.fullRange = fullRange
}

// SetTiming records the timescale (timestamp units per second) and the
// stored repetition count (play count minus one; negative = infinite).
func (a *Assembler) SetTiming(timescale uint64, storedRepetitions int) {
	if timescale == 0 {
		timescale = 1
	}
	a.timescale = timescale
	a.repetitions = storedRepetitions
}

// SetMetadata records the optional metadata payloads; nil skips a chunk.
func (a *Assembler) SetMetadata(icc, exif, xmp []byte) {
	a.icc = icc
	a.exif = exif
	a.xmp = xmp
}

// SetGrid records the tiled-layout descriptor.
func (a *Assembler) SetGrid(g Grid) {
	a.grid = &g
}

// AddFrame appends an encoded frame. alpha may be nil.
func (a *Assembler) AddFrame(color, alpha []byte, duration uint64, sync bool) error {
	if len(color) == 0 {
		return ErrFrameEmpty
	}
	a.frames = append(a.frames, muxFrame{color: color, alpha: alpha, duration: duration, sync: sync})
	return nil
}

// ExtendLastDuration adds to the duration of the most recent frame; used
// when consecutive identical frames are merged.
func (a *Assembler) ExtendLastDuration(duration uint64) {
	if len(a.frames) > 0 {
		a.frames[len(a.frames)-1].duration += duration
	}
}

// NumFrames returns the number of frames added so far.
func (a *Assembler) NumFrames() int { return len(a.frames) }

func (a *Assembler) hasAlpha() bool {
	for _, f := range a.frames {
		if f.alpha != nil {
			return true
		}
	}
	return false
}

// Assemble writes the complete stream to w.
func (a *Assembler) Assemble(w io.Writer) error {
	if a.width <= 0 || a.height <= 0 {
		return ErrNotConfigured
	}
	if len(a.frames) == 0 {
		return ErrNoFrames
	}
	if err := a.writeSequenceHeader(w); err != nil {
		return err
	}
	if a.grid != nil {
		if err := a.writeGrid(w); err != nil {
			return err
		}
	}
	for _, c := range []struct {
		id   ChunkID
		data []byte
	}{{FourCCICCP, a.icc}, {FourCCEXIF, a.exif}, {FourCCXMP, a.xmp}} {
		if c.data == nil {
			continue
		}
		if err := writeChunk(w, c.id, c.data); err != nil {
			return err
		}
	}
	for _, f := range a.frames {
		if err := a.writeFrame(w, f); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) writeSequenceHeader(w io.Writer) error {
	payload := make([]byte, 0, 32)
	payload = binary.LittleEndian.AppendUint16(payload, streamVersion)
	var flags uint8
	if a.fullRange {
		flags |= flagFullRange
	}
	if a.hasAlpha() {
		flags |= flagAlpha
	}
	payload = append(payload, uint8(a.depth), flags)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(a.width))
	payload = binary.LittleEndian.AppendUint32(payload, uint32(a.height))
	payload = binary.LittleEndian.AppendUint16(payload, uint16(a.format))
	payload = binary.LittleEndian.AppendUint16(payload, 0)
	payload = binary.LittleEndian.AppendUint64(payload, a.timescale)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(a.frames)))
	rep := uint32(InfiniteRepetitions)
	if a.repetitions >= 0 {
		rep = uint32(a.repetitions)
	}
	payload = binary.LittleEndian.AppendUint32(payload, rep)
	return writeChunk(w, FourCCASEQ, payload)
}

func (a *Assembler) writeGrid(w io.Writer) error {
	payload := make([]byte, 0, 12)
	payload = binary.LittleEndian.AppendUint16(payload, uint16(a.grid.Cols))
	payload = binary.LittleEndian.AppendUint16(payload, uint16(a.grid.Rows))
	payload = binary.LittleEndian.AppendUint32(payload, uint32(a.grid.CellW))
	payload = binary.LittleEndian.AppendUint32(payload, uint32(a.grid.CellH))
	return writeChunk(w, FourCCGRID, payload)
}

func (a *Assembler) writeFrame(w io.Writer, f muxFrame) error {
	size := 16 + len(f.color) + len(f.alpha)
	payload := make([]byte, 0, size)
	payload = binary.LittleEndian.AppendUint64(payload, f.duration)
	var flags uint8
	if f.sync {
		flags |= frameFlagSync
	}
	if f.alpha != nil {
		flags |= frameFlagAlpha
	}
	payload = append(payload, flags, 0, 0, 0)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(f.color)))
	payload = append(payload, f.color...)
	if f.alpha != nil {
		payload = binary.LittleEndian.AppendUint32(payload, uint32(len(f.alpha)))
		payload = append(payload, f.alpha...)
	}
	return writeChunk(w, FourCCFRAM, payload)
}

func writeChunk(w io.Writer, id ChunkID, payload []byte) error {
	var hdr [chunkHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], id)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if len(payload)%2 != 0 {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}
	return nil
}

// Chunk is a parsed chunk; Data sub-slices the input.
type Chunk struct {
	ID   ChunkID
	Data []byte
}

var ErrInvalidChunkHeader = errors.New("mux: invalid chunk header: need at least 8 bytes")

// ReadChunk reads one chunk from data and returns it plus the bytes
// consumed including the padding byte.
func ReadChunk(data []byte) (Chunk, int, error) {
	if len(data) < chunkHeaderSize {
		return Chunk{}, 0, ErrInvalidChunkHeader
	}
	id := binary.LittleEndian.Uint32(data[0:4])
	size := int(binary.LittleEndian.Uint32(data[4:8]))
	end := chunkHeaderSize + size
	if end > len(data) {
		return Chunk{}, 0, fmt.Errorf("mux: chunk payload truncated: need %d bytes, have %d", end, len(data))
	}
	consumed := end
	if size%2 != 0 && consumed < len(data) {
		consumed++
	}
	return Chunk{ID: id, Data: data[chunkHeaderSize:end]}, consumed, nil
}
