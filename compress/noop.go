package compress

import "github.com/arloliu/schunk/format"

// NoOpCodec stores data verbatim.
//
// It is the codec behind format.CodecNone and the degenerate level 0 of every
// other codec. Compress never fails.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a verbatim codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Type returns format.CodecNone.
func (c NoOpCodec) Type() format.CodecType {
	return format.CodecNone
}

// Compress returns src unchanged without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCodec) Compress(_ int, _ int, src []byte) ([]byte, error) {
	return src, nil
}

// Decompress copies src into dst.
func (c NoOpCodec) Decompress(src []byte, dst []byte) (int, error) {
	if len(dst) < len(src) {
		return 0, destinationTooSmall(format.CodecNone, len(src), len(dst))
	}

	return copy(dst, src), nil
}
