// Package compress provides the codecs that turn filtered chunk bytes into compressed payloads.
//
// A codec is selected per container by format.CodecType and a compression level. Every
// chunk records the codec id it was written with, so decoding looks the codec up again
// through GetCodec instead of trusting the container configuration.
//
// # Supported Algorithms
//
//	| Codec       | Library                      | Levels                          |
//	|-------------|------------------------------|---------------------------------|
//	| CodecNone   | -                            | ignored, data stored verbatim   |
//	| CodecLZ4    | pierrec/lz4/v4               | 1-9 all use the fast compressor |
//	| CodecLZ4HC  | pierrec/lz4/v4 CompressorHC  | 1-9 map to lz4.Level1..Level9   |
//	| CodecZstd   | klauspost/compress/zstd      | 1-9 map to four encoder speeds  |
//	| CodecS2     | klauspost/compress/s2        | Encode / EncodeBetter / Best    |
//	| CodecFlate  | klauspost/compress/flate     | 1-9 map 1:1                     |
//
// Building with -tags gozstd (and cgo) replaces the pure Go Zstd encoder with
// valyala/gozstd, which exposes the native 1-22 level range.
//
// # Level 0
//
// Level 0 means "store verbatim" for every codec: Compress returns its input and
// never fails.
//
// # Destination Buffers
//
// Decompress writes into a caller supplied buffer. Every stream records its decoded
// length (natively for Zstd and S2, through a uvarint prefix for LZ4 and DEFLATE), so a
// short destination is reported as errs.ErrDestinationTooSmall before any decoding work,
// and malformed input as errs.ErrCorruptStream. Both arrive wrapped in *errs.CodecError.
//
// # Incompressible Data
//
// Compress returns ErrIncompressible when the output would not be smaller than the
// input. The chunk encoder then stores the chunk verbatim.
//
// # Custom Codecs
//
// Register adds a Codec with an id >= format.CodecCustom:
//
//	type myCodec struct{}
//
//	func (myCodec) Type() format.CodecType { return format.CodecCustom + 1 }
//	func (myCodec) Compress(level, typesize int, src []byte) ([]byte, error) { ... }
//	func (myCodec) Decompress(src, dst []byte) (int, error) { ... }
//
//	_ = compress.Register(myCodec{})
//
// # Thread Safety
//
// All codecs are safe for concurrent use. Encoders and decoders are pooled internally.
package compress
