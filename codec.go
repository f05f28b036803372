package avif

import (
	"github.com/deepteams/avif/internal/codec"

	// Registered backends. The raw backend is always present; the aom
	// backend appears only when libaom can be loaded at runtime.
	_ "github.com/deepteams/avif/internal/codec/aomdec"
	_ "github.com/deepteams/avif/internal/codec/rawcodec"
)

// Backend names accepted by Encoder.SetCodec.
const (
	CodecAuto = "auto"
	CodecRaw  = "raw"
	CodecAOM  = "aom"
)

// AvailableCodecs returns the registered backend names in registration
// order.
func AvailableCodecs() []string {
	return codec.List()
}
