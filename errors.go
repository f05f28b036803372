package avif

import "fmt"

// Error is the closed set of failure kinds reported by this package.
// Every fallible operation returns exactly one kind on failure, possibly
// wrapped with context; match with errors.Is. The numeric values track
// libavif's avifResult codes so that raw codes received from a foreign
// collaborator can be mapped with ErrorFromCode.
type Error int

const (
	ErrUnknown Error = iota + 1
	ErrInvalidFtyp
	ErrNoContent
	ErrNoYUVFormatSelected
	ErrReformatFailed
	ErrUnsupportedDepth
	ErrEncodeColorFailed
	ErrEncodeAlphaFailed
	ErrBMFFParseFailed
	ErrMissingImageItem
	ErrDecodeColorFailed
	ErrDecodeAlphaFailed
	ErrColorAlphaSizeMismatch
	ErrISPESizeMismatch
	ErrNoCodecAvailable
	ErrNoImagesRemaining
	ErrInvalidExifPayload
	ErrInvalidImageGrid
	ErrInvalidCodecSpecificOption
	ErrTruncatedData
	ErrIONotSet
	ErrIOError
	ErrWaitingOnIO
	ErrInvalidArgument
	ErrNotImplemented
	ErrOutOfMemory
	ErrIncompatibleImage
	ErrEncodeGainMapFailed
	ErrDecodeGainMapFailed
	ErrInvalidToneMappedImage
)

var errorMessages = map[Error]string{
	ErrUnknown:                    "unknown error",
	ErrInvalidFtyp:                "invalid file type",
	ErrNoContent:                  "no content",
	ErrNoYUVFormatSelected:        "no YUV format selected",
	ErrReformatFailed:             "reformat failed",
	ErrUnsupportedDepth:           "unsupported depth",
	ErrEncodeColorFailed:          "encode color failed",
	ErrEncodeAlphaFailed:          "encode alpha failed",
	ErrBMFFParseFailed:            "BMFF parse failed",
	ErrMissingImageItem:           "missing image item",
	ErrDecodeColorFailed:          "decode color failed",
	ErrDecodeAlphaFailed:          "decode alpha failed",
	ErrColorAlphaSizeMismatch:     "color/alpha size mismatch",
	ErrISPESizeMismatch:           "ISPE size mismatch",
	ErrNoCodecAvailable:           "no codec available",
	ErrNoImagesRemaining:          "no images remaining",
	ErrInvalidExifPayload:         "invalid EXIF payload",
	ErrInvalidImageGrid:           "invalid image grid",
	ErrInvalidCodecSpecificOption: "invalid codec specific option",
	ErrTruncatedData:              "truncated data",
	ErrIONotSet:                   "IO not set",
	ErrIOError:                    "IO error",
	ErrWaitingOnIO:                "waiting on IO",
	ErrInvalidArgument:            "invalid argument",
	ErrNotImplemented:             "not implemented",
	ErrOutOfMemory:                "out of memory",
	ErrIncompatibleImage:          "incompatible image",
	ErrEncodeGainMapFailed:        "encode gain map failed",
	ErrDecodeGainMapFailed:        "decode gain map failed",
	ErrInvalidToneMappedImage:     "invalid tone mapped image",
}

// Error renders the stable message for the kind. Codes outside the named
// set render as "unknown error type: N" for forward compatibility with
// collaborators that report newer result codes.
func (e Error) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return "avif: " + msg
	}
	return fmt.Sprintf("avif: unknown error type: %d", int(e))
}

// ErrorFromCode maps a raw result code to an Error. Unrecognized codes are
// preserved as-is and render through the unknown-type message.
func ErrorFromCode(code uint32) Error {
	return Error(code)
}
