package mux

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestAssembleRequiresFrames(t *testing.T) {
	a := NewAssembler()
	a.SetSequence(8, 8, 8, 420, true)
	var buf bytes.Buffer
	if err := a.Assemble(&buf); err != ErrNoFrames {
		t.Errorf("Assemble = %v, want ErrNoFrames", err)
	}
}

func TestAssembleRequiresSequence(t *testing.T) {
	a := NewAssembler()
	a.AddFrame([]byte{1}, nil, 1, true)
	var buf bytes.Buffer
	if err := a.Assemble(&buf); err != ErrNotConfigured {
		t.Errorf("Assemble = %v, want ErrNotConfigured", err)
	}
}

func TestAddFrameRejectsEmpty(t *testing.T) {
	a := NewAssembler()
	if err := a.AddFrame(nil, nil, 1, true); err != ErrFrameEmpty {
		t.Errorf("AddFrame = %v, want ErrFrameEmpty", err)
	}
}

func TestSequenceHeaderLayout(t *testing.T) {
	a := NewAssembler()
	a.SetSequence(640, 480, 10, 422, true)
	a.SetTiming(30, 4)
	a.AddFrame([]byte{1, 2, 3}, []byte{9}, 100, true)

	var buf bytes.Buffer
	if err := a.Assemble(&buf); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	c, consumed, err := ReadChunk(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}
	if c.ID != FourCCASEQ {
		t.Fatalf("first chunk id = %#08x, want ASEQ", c.ID)
	}
	p := c.Data
	if got := binary.LittleEndian.Uint16(p[0:]); got != streamVersion {
		t.Errorf("version = %d", got)
	}
	if p[2] != 10 {
		t.Errorf("depth = %d, want 10", p[2])
	}
	if p[3]&flagFullRange == 0 || p[3]&flagAlpha == 0 {
		t.Errorf("flags = %#02x, want full-range and alpha set", p[3])
	}
	if w := binary.LittleEndian.Uint32(p[4:]); w != 640 {
		t.Errorf("width = %d", w)
	}
	if h := binary.LittleEndian.Uint32(p[8:]); h != 480 {
		t.Errorf("height = %d", h)
	}
	if f := binary.LittleEndian.Uint16(p[12:]); f != 422 {
		t.Errorf("format = %d", f)
	}
	if ts := binary.LittleEndian.Uint64(p[16:]); ts != 30 {
		t.Errorf("timescale = %d", ts)
	}
	if n := binary.LittleEndian.Uint32(p[24:]); n != 1 {
		t.Errorf("frame count = %d", n)
	}
	if rep := binary.LittleEndian.Uint32(p[28:]); rep != 4 {
		t.Errorf("repetitions = %d, want stored 4", rep)
	}

	// Next chunk is the frame.
	c2, _, err := ReadChunk(buf.Bytes()[consumed:])
	if err != nil {
		t.Fatalf("ReadChunk(frame): %v", err)
	}
	if c2.ID != FourCCFRAM {
		t.Fatalf("second chunk id = %#08x, want FRAM", c2.ID)
	}
	fp := c2.Data
	if d := binary.LittleEndian.Uint64(fp[0:]); d != 100 {
		t.Errorf("duration = %d", d)
	}
	if fp[8]&frameFlagSync == 0 || fp[8]&frameFlagAlpha == 0 {
		t.Errorf("frame flags = %#02x", fp[8])
	}
	if n := binary.LittleEndian.Uint32(fp[12:]); n != 3 {
		t.Errorf("color payload size = %d, want 3", n)
	}
	if !bytes.Equal(fp[16:19], []byte{1, 2, 3}) {
		t.Error("color payload mismatch")
	}
}

func TestInfiniteRepetitionMarker(t *testing.T) {
	a := NewAssembler()
	a.SetSequence(4, 4, 8, 444, false)
	a.SetTiming(1, -1)
	a.AddFrame([]byte{1}, nil, 1, true)
	var buf bytes.Buffer
	if err := a.Assemble(&buf); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	c, _, err := ReadChunk(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if rep := binary.LittleEndian.Uint32(c.Data[28:]); rep != InfiniteRepetitions {
		t.Errorf("repetitions = %#08x, want infinite marker", rep)
	}
}

func TestGridChunk(t *testing.T) {
	a := NewAssembler()
	a.SetSequence(64, 64, 8, 420, true)
	a.SetGrid(Grid{Cols: 2, Rows: 2, CellW: 32, CellH: 32})
	a.AddFrame([]byte{1}, nil, 1, true)
	var buf bytes.Buffer
	if err := a.Assemble(&buf); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	_, consumed, _ := ReadChunk(buf.Bytes())
	c, _, err := ReadChunk(buf.Bytes()[consumed:])
	if err != nil {
		t.Fatal(err)
	}
	if c.ID != FourCCGRID {
		t.Fatalf("chunk id = %#08x, want GRID", c.ID)
	}
	if cols := binary.LittleEndian.Uint16(c.Data[0:]); cols != 2 {
		t.Errorf("cols = %d", cols)
	}
	if cw := binary.LittleEndian.Uint32(c.Data[4:]); cw != 32 {
		t.Errorf("cell width = %d", cw)
	}
}

func TestExtendLastDuration(t *testing.T) {
	a := NewAssembler()
	a.SetSequence(4, 4, 8, 444, true)
	a.AddFrame([]byte{1}, nil, 5, true)
	a.ExtendLastDuration(7)
	var buf bytes.Buffer
	if err := a.Assemble(&buf); err != nil {
		t.Fatal(err)
	}
	_, consumed, _ := ReadChunk(buf.Bytes())
	c, _, _ := ReadChunk(buf.Bytes()[consumed:])
	if d := binary.LittleEndian.Uint64(c.Data[0:]); d != 12 {
		t.Errorf("duration = %d, want 12", d)
	}
}

func TestMetadataChunks(t *testing.T) {
	a := NewAssembler()
	a.SetSequence(4, 4, 8, 444, true)
	a.SetMetadata([]byte{0xCC}, nil, []byte("<x/>"))
	a.AddFrame([]byte{1}, nil, 1, true)
	var buf bytes.Buffer
	if err := a.Assemble(&buf); err != nil {
		t.Fatal(err)
	}
	var ids []ChunkID
	rest := buf.Bytes()
	for len(rest) > 0 {
		c, n, err := ReadChunk(rest)
		if err != nil {
			t.Fatalf("ReadChunk: %v", err)
		}
		ids = append(ids, c.ID)
		rest = rest[n:]
	}
	want := []ChunkID{FourCCASEQ, FourCCICCP, FourCCXMP, FourCCFRAM}
	if len(ids) != len(want) {
		t.Fatalf("chunk ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("chunk %d = %#08x, want %#08x", i, ids[i], want[i])
		}
	}
}
