// Package rawcodec is the always-available backend: it stores each plane
// as an independent zstd frame behind a small geometry header. It is not
// AV1 — it exists so encoding sessions work on every platform and so the
// payload path stays byte-deterministic for testing.
package rawcodec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/deepteams/avif/internal/codec"
)

const (
	magic   = 0x52565941 // "AYVR" little-endian
	version = 1
)

const (
	flagFullRange  = 1 << 0
	flagMonochrome = 1 << 1
)

type rawCodec struct{}

func init() {
	codec.Register(rawCodec{})
}

func (rawCodec) Name() string    { return "raw" }
func (rawCodec) CanEncode() bool { return true }
func (rawCodec) CanDecode() bool { return true }

// level maps the 0..10 speed scale onto zstd levels: slow speeds buy
// compression, fast speeds buy throughput.
func level(speed int) zstd.EncoderLevel {
	switch {
	case speed <= 2:
		return zstd.SpeedBestCompression
	case speed <= 5:
		return zstd.SpeedBetterCompression
	case speed <= 8:
		return zstd.SpeedDefault
	default:
		return zstd.SpeedFastest
	}
}

func (rawCodec) Encode(p *codec.Params) ([]byte, error) {
	if p.Width <= 0 || p.Height <= 0 || len(p.Planes) == 0 || p.Planes[0] == nil {
		return nil, errors.New("rawcodec: no planes to encode")
	}
	// Single-goroutine encoder: output must not depend on scheduling.
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(level(p.Speed)),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()

	var flags uint8
	if p.FullRange {
		flags |= flagFullRange
	}
	if p.Monochrome {
		flags |= flagMonochrome
	}
	out := make([]byte, 0, 64)
	out = binary.LittleEndian.AppendUint32(out, magic)
	out = append(out, version, uint8(p.Depth), flags, uint8(len(p.Planes)))
	out = binary.LittleEndian.AppendUint32(out, uint32(p.Width))
	out = binary.LittleEndian.AppendUint32(out, uint32(p.Height))
	out = binary.LittleEndian.AppendUint16(out, uint16(p.Format))

	for i, plane := range p.Planes {
		if plane == nil {
			out = binary.LittleEndian.AppendUint32(out, 0)
			out = binary.LittleEndian.AppendUint32(out, 0)
			continue
		}
		compressed := enc.EncodeAll(plane, nil)
		out = binary.LittleEndian.AppendUint32(out, uint32(p.RowBytes[i]))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(compressed)))
		out = append(out, compressed...)
	}
	return out, nil
}

func (rawCodec) Decode(payload []byte) (*codec.Frame, error) {
	const headerSize = 18
	if len(payload) < headerSize {
		return nil, errors.New("rawcodec: truncated header")
	}
	if binary.LittleEndian.Uint32(payload) != magic {
		return nil, errors.New("rawcodec: bad magic")
	}
	if payload[4] != version {
		return nil, fmt.Errorf("rawcodec: unsupported version %d", payload[4])
	}
	f := &codec.Frame{
		Depth:      int(payload[5]),
		FullRange:  payload[6]&flagFullRange != 0,
		Monochrome: payload[6]&flagMonochrome != 0,
		Width:      int(binary.LittleEndian.Uint32(payload[8:])),
		Height:     int(binary.LittleEndian.Uint32(payload[12:])),
		Format:     int(binary.LittleEndian.Uint16(payload[16:])),
	}
	planeCount := int(payload[7])

	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	rest := payload[headerSize:]
	for i := 0; i < planeCount; i++ {
		if len(rest) < 8 {
			return nil, errors.New("rawcodec: truncated plane header")
		}
		rowBytes := int(binary.LittleEndian.Uint32(rest))
		size := int(binary.LittleEndian.Uint32(rest[4:]))
		rest = rest[8:]
		if rowBytes == 0 && size == 0 {
			f.Planes = append(f.Planes, nil)
			f.RowBytes = append(f.RowBytes, 0)
			continue
		}
		if len(rest) < size {
			return nil, errors.New("rawcodec: truncated plane data")
		}
		plane, err := dec.DecodeAll(rest[:size], nil)
		if err != nil {
			return nil, err
		}
		rest = rest[size:]
		f.Planes = append(f.Planes, plane)
		f.RowBytes = append(f.RowBytes, rowBytes)
	}
	return f, nil
}
