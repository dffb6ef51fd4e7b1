package compress

import (
	"github.com/arloliu/schunk/format"
	"github.com/klauspost/compress/zstd"
)

// ZstdCodec provides Zstandard compression.
//
// The pure Go encoder (klauspost/compress/zstd) is used by default. Building with
// the gozstd tag and cgo enabled switches to valyala/gozstd with native levels.
//
// Level mapping for the pure Go encoder:
//   - 1-2: zstd.SpeedFastest
//   - 3-5: zstd.SpeedDefault
//   - 6-8: zstd.SpeedBetterCompression
//   - 9:   zstd.SpeedBestCompression
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstd codec.
//
// Example:
//
//	codec := compress.NewZstdCodec()
//	compressed, err := codec.Compress(5, 8, data)
//	if err != nil {
//		return err
//	}
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

// Type returns format.CodecZstd.
func (c ZstdCodec) Type() format.CodecType {
	return format.CodecZstd
}

func zstdEncoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 2:
		return zstd.SpeedFastest
	case level <= 5:
		return zstd.SpeedDefault
	case level <= 8:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// zstdCheckFrameSize rejects frames whose declared content size exceeds dst.
// Frames without a content size are checked after decoding.
func zstdCheckFrameSize(src []byte, dst []byte) error {
	var h zstd.Header
	if err := h.Decode(src); err != nil {
		return corruptStream(format.CodecZstd, err)
	}
	if h.HasFCS && h.FrameContentSize > uint64(len(dst)) {
		return destinationTooSmall(format.CodecZstd, int(h.FrameContentSize), len(dst))
	}

	return nil
}

// zstdFinish validates the decoded output and moves it into dst if the decoder
// had to grow past dst's capacity.
func zstdFinish(out []byte, dst []byte) (int, error) {
	if len(out) > len(dst) {
		return 0, destinationTooSmall(format.CodecZstd, len(out), len(dst))
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}

	return len(out), nil
}
