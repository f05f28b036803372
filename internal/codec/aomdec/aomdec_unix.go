//go:build unix

// Package aomdec registers a decode-only AV1 backend backed by a
// dynamically loaded libaom. Registration is best-effort: when the
// library is absent the package stays silent and the backend simply
// never appears in the registry.
package aomdec

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/deepteams/avif/internal/codec"
)

// ABI versions mirrored from aom_image.h / aom_codec.h / aom_decoder.h.
// An out-of-date constant makes init_ver fail cleanly with ABI_MISMATCH,
// which Decode reports as an error rather than corrupting memory.
const (
	imageABIVersion   = 9
	codecABIVersion   = 7 + imageABIVersion
	decoderABIVersion = 6 + codecABIVersion
)

const imgFmtHighBitDepth = 0x800

// aomCodecCtx mirrors aom_codec_ctx_t far enough for init/decode/destroy.
type aomCodecCtx struct {
	name      uintptr
	iface     uintptr
	err       int32
	_         [4]byte
	errDetail uintptr
	initFlags int64
	config    uintptr
	priv      uintptr
}

// aomDecCfg mirrors aom_codec_dec_cfg_t.
type aomDecCfg struct {
	threads          uint32
	w                uint32
	h                uint32
	allowLowBitDepth uint32
}

// aomImage mirrors the leading fields of aom_image_t; the library owns
// the struct and the plane memory, so only offsets up to the strides are
// read.
type aomImage struct {
	fmt_         int32
	cp           int32
	tc           int32
	mc           int32
	colorRange   int32
	csp          int32
	_            [4]byte
	metadata     uintptr
	w            uint32
	h            uint32
	bitDepth     uint32
	dW           uint32
	dH           uint32
	rW           uint32
	rH           uint32
	xChromaShift uint32
	yChromaShift uint32
	_            [4]byte
	planes       [3]uintptr
	strides      [3]int32
}

var (
	av1DX      func() uintptr
	decInitVer func(ctx *aomCodecCtx, iface uintptr, cfg *aomDecCfg, flags int64, ver int32) int32
	decode     func(ctx *aomCodecCtx, data *byte, size uintptr, userPriv uintptr) int32
	getFrame   func(ctx *aomCodecCtx, iter *uintptr) *aomImage
	destroy    func(ctx *aomCodecCtx) int32
)

func libNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"libaom.3.dylib", "libaom.dylib"}
	}
	return []string{"libaom.so.3", "libaom.so"}
}

func init() {
	var lib uintptr
	var err error
	for _, name := range libNames() {
		lib, err = purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			break
		}
	}
	if err != nil || lib == 0 {
		return
	}
	purego.RegisterLibFunc(&av1DX, lib, "aom_codec_av1_dx")
	purego.RegisterLibFunc(&decInitVer, lib, "aom_codec_dec_init_ver")
	purego.RegisterLibFunc(&decode, lib, "aom_codec_decode")
	purego.RegisterLibFunc(&getFrame, lib, "aom_codec_get_frame")
	purego.RegisterLibFunc(&destroy, lib, "aom_codec_destroy")
	codec.Register(aomCodec{})
}

type aomCodec struct{}

func (aomCodec) Name() string    { return "aom" }
func (aomCodec) CanEncode() bool { return false }
func (aomCodec) CanDecode() bool { return true }

func (aomCodec) Encode(*codec.Params) ([]byte, error) {
	return nil, errors.New("aomdec: decode-only backend")
}

func (aomCodec) Decode(payload []byte) (*codec.Frame, error) {
	if len(payload) == 0 {
		return nil, errors.New("aomdec: empty payload")
	}
	var ctx aomCodecCtx
	cfg := aomDecCfg{threads: 1}
	if rc := decInitVer(&ctx, av1DX(), &cfg, 0, decoderABIVersion); rc != 0 {
		return nil, fmt.Errorf("aomdec: init failed: %d", rc)
	}
	defer destroy(&ctx)

	if rc := decode(&ctx, &payload[0], uintptr(len(payload)), 0); rc != 0 {
		return nil, fmt.Errorf("aomdec: decode failed: %d", rc)
	}
	var iter uintptr
	img := getFrame(&ctx, &iter)
	if img == nil {
		return nil, errors.New("aomdec: no frame produced")
	}
	return copyFrame(img), nil
}

// copyFrame snapshots the library-owned image into Go memory before the
// codec context is destroyed.
func copyFrame(img *aomImage) *codec.Frame {
	f := &codec.Frame{
		Width:     int(img.dW),
		Height:    int(img.dH),
		Depth:     int(img.bitDepth),
		FullRange: img.colorRange != 0,
	}
	sampleBytes := 1
	if img.fmt_&imgFmtHighBitDepth != 0 {
		sampleBytes = 2
	}
	switch {
	case img.planes[1] == 0:
		f.Format = 400
		f.Monochrome = true
	case img.xChromaShift == 0 && img.yChromaShift == 0:
		f.Format = 444
	case img.yChromaShift == 0:
		f.Format = 422
	default:
		f.Format = 420
	}
	for p := 0; p < 3; p++ {
		if img.planes[p] == 0 {
			f.Planes = append(f.Planes, nil)
			f.RowBytes = append(f.RowBytes, 0)
			continue
		}
		w, h := int(img.dW), int(img.dH)
		if p > 0 {
			w = (w + (1 << img.xChromaShift) - 1) >> img.xChromaShift
			h = (h + (1 << img.yChromaShift) - 1) >> img.yChromaShift
		}
		rowBytes := w * sampleBytes
		stride := int(img.strides[p])
		src := unsafe.Slice((*byte)(unsafe.Pointer(img.planes[p])), stride*(h-1)+rowBytes)
		dst := make([]byte, rowBytes*h)
		for y := 0; y < h; y++ {
			copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*stride:])
		}
		f.Planes = append(f.Planes, dst)
		f.RowBytes = append(f.RowBytes, rowBytes)
	}
	return f
}
