package compress

import (
	"errors"

	"github.com/arloliu/schunk/format"
	"github.com/klauspost/compress/s2"
)

// S2Codec provides S2 compression. S2 blocks record their decoded length.
//
// Level mapping: 1-3 s2.Encode, 4-6 s2.EncodeBetter, 7-9 s2.EncodeBest.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Type returns format.CodecS2.
func (c S2Codec) Type() format.CodecType {
	return format.CodecS2
}

// Compress compresses src using S2 compression.
func (c S2Codec) Compress(level int, _ int, src []byte) ([]byte, error) {
	if err := checkLevel(format.CodecS2, level); err != nil {
		return nil, err
	}
	if level == 0 || len(src) == 0 {
		return src, nil
	}

	maxLen := s2.MaxEncodedLen(len(src))
	if maxLen < 0 {
		return nil, compressFailed(format.CodecS2, errors.New("input too large"))
	}
	dst := make([]byte, maxLen)

	var compressed []byte
	switch {
	case level <= 3:
		compressed = s2.Encode(dst, src)
	case level <= 6:
		compressed = s2.EncodeBetter(dst, src)
	default:
		compressed = s2.EncodeBest(dst, src)
	}

	if len(compressed) >= len(src) {
		return nil, ErrIncompressible
	}

	return compressed, nil
}

// Decompress decodes an S2 block into dst.
func (c S2Codec) Decompress(src []byte, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	size, err := s2.DecodedLen(src)
	if err != nil {
		return 0, corruptStream(format.CodecS2, err)
	}
	if size > len(dst) {
		return 0, destinationTooSmall(format.CodecS2, size, len(dst))
	}

	out, err := s2.Decode(dst[:size], src)
	if err != nil {
		return 0, corruptStream(format.CodecS2, err)
	}

	return len(out), nil
}
