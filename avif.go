package avif

// PixelFormat selects the chroma subsampling layout of a planar Image.
type PixelFormat int

const (
	PixelFormatNone PixelFormat = iota
	PixelFormatYUV444
	PixelFormatYUV422
	PixelFormatYUV420
	PixelFormatYUV400
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatYUV444:
		return "YUV444"
	case PixelFormatYUV422:
		return "YUV422"
	case PixelFormatYUV420:
		return "YUV420"
	case PixelFormatYUV400:
		return "YUV400"
	default:
		return "none"
	}
}

// chromaShift returns the log2 downscale factors of the chroma planes
// relative to luma. Monochrome reports full shifts but has no chroma
// planes at all.
func (f PixelFormat) chromaShift() (shiftX, shiftY int) {
	switch f {
	case PixelFormatYUV422:
		return 1, 0
	case PixelFormatYUV420:
		return 1, 1
	case PixelFormatYUV400:
		return 1, 1
	default:
		return 0, 0
	}
}

// monochrome reports whether the format carries no chroma planes.
func (f PixelFormat) monochrome() bool { return f == PixelFormatYUV400 }

func (f PixelFormat) valid() bool {
	return f >= PixelFormatYUV444 && f <= PixelFormatYUV400
}

// Range selects between limited (studio swing) and full sample ranges.
type Range int

const (
	RangeLimited Range = iota
	RangeFull
)

func (r Range) String() string {
	if r == RangeFull {
		return "full"
	}
	return "limited"
}

// CICP color description codes per ITU-T H.273. Only the values this
// package interprets are named; any other code passes through untouched.
type (
	ColorPrimaries          uint16
	TransferCharacteristics uint16
	MatrixCoefficients      uint16
)

const (
	ColorPrimariesBT709       ColorPrimaries = 1
	ColorPrimariesUnspecified ColorPrimaries = 2
	ColorPrimariesBT601       ColorPrimaries = 6
	ColorPrimariesBT2020      ColorPrimaries = 9
)

const (
	TransferCharacteristicsBT709       TransferCharacteristics = 1
	TransferCharacteristicsUnspecified TransferCharacteristics = 2
	TransferCharacteristicsLinear      TransferCharacteristics = 8
	TransferCharacteristicsSRGB        TransferCharacteristics = 13
	TransferCharacteristicsPQ          TransferCharacteristics = 16
	TransferCharacteristicsHLG         TransferCharacteristics = 18
)

const (
	MatrixCoefficientsIdentity    MatrixCoefficients = 0
	MatrixCoefficientsBT709       MatrixCoefficients = 1
	MatrixCoefficientsUnspecified MatrixCoefficients = 2
	MatrixCoefficientsBT470BG     MatrixCoefficients = 5
	MatrixCoefficientsBT601       MatrixCoefficients = 6
	MatrixCoefficientsBT2020NCL   MatrixCoefficients = 9
)

// Plane identifies one plane of an Image.
type Plane int

const (
	PlaneY Plane = iota
	PlaneU
	PlaneV
	PlaneA
)

// PlanesFlag selects plane groups for AllocatePlanes, FreePlanes and
// StealPlanes.
type PlanesFlag uint32

const (
	PlanesYUV PlanesFlag = 1 << iota
	PlanesA

	PlanesAll = PlanesYUV | PlanesA
)

// maxThreadCount caps every thread-count hint accepted by this package.
const maxThreadCount = 1024

// maxImagePixels caps width*height for a planar image. Allocations beyond
// this report ErrOutOfMemory before any buffer is created.
const maxImagePixels = 16384 * 16384

// clampThreads normalizes a thread-count hint to [1, maxThreadCount].
func clampThreads(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxThreadCount {
		return maxThreadCount
	}
	return n
}

func validDepth(depth int) bool {
	return depth == 8 || depth == 10 || depth == 12
}
