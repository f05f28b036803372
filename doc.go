// Package avif provides the image model and encoding-session layer for the
// AVIF (AV1 Image File Format) image format.
//
// AVIF stores still or animated images as one or more independently decodable
// YUV-plane images plus an optional alpha plane, together with color-space
// metadata. This package implements:
//
//   - Image: a planar YUV(+alpha) container with exclusive plane ownership
//     and full CICP color metadata (8/10/12-bit, 4:4:4/4:2:2/4:2:0/4:0:0).
//   - RGBImage: an interleaved RGB view over a caller-owned pixel buffer,
//     supporting ten channel layouts including packed RGB565 and grayscale.
//   - Bidirectional RGB <-> YUV conversion with configurable chroma
//     down/upsampling (average, sharp, nearest, bilinear), full and limited
//     range, and alpha premultiplication handling.
//   - Encoder: a stateful encoding session that accepts a sequence of images
//     (animation) or a grid of images (tiled composition) and produces one
//     encoded byte stream.
//
// AV1 entropy coding is delegated to pluggable codec backends selected by
// name; see Encoder.SetCodec. Container (ISOBMFF) box serialization, file
// I/O and CLI concerns are outside this package and consume its Image and
// output-buffer types from the outside.
//
// Basic usage for encoding a still image:
//
//	rgb, err := avif.NewRGBImage(w, h, 8, avif.RGBFormatRGBA, pixels)
//	...
//	img, err := rgb.ToYUV(avif.PixelFormatYUV420)
//	...
//	enc := avif.NewEncoder()
//	data, err := enc.Write(img)
//
// No type in this package is safe for concurrent use; callers must
// serialize access to each Image, RGBImage and Encoder instance.
package avif
