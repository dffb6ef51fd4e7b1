//go:build !gozstd || !cgo

package compress

import (
	"fmt"
	"sync"

	"github.com/arloliu/schunk/format"
	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd decoder is designed to operate without allocations
// after a warmup.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1), // chunk-level parallelism comes from the worker pool
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPools holds one encoder pool per zstd.EncoderLevel.
var zstdEncoderPools [zstd.SpeedBestCompression + 1]sync.Pool

func init() {
	for lvl := zstd.SpeedFastest; lvl <= zstd.SpeedBestCompression; lvl++ {
		encLevel := lvl
		zstdEncoderPools[encLevel].New = func() any {
			encoder, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(encLevel),
				zstd.WithEncoderConcurrency(1),
				zstd.WithEncoderCRC(false), // chunk records carry their own checksum
			)
			if err != nil {
				panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
			}

			return encoder
		}
	}
}

// Compress compresses src using a pooled encoder for the mapped level.
func (c ZstdCodec) Compress(level int, _ int, src []byte) ([]byte, error) {
	if err := checkLevel(format.CodecZstd, level); err != nil {
		return nil, err
	}
	if level == 0 || len(src) == 0 {
		return src, nil
	}

	encPool := &zstdEncoderPools[zstdEncoderLevel(level)]
	encoder, _ := encPool.Get().(*zstd.Encoder)
	defer encPool.Put(encoder)

	// EncodeAll is stateless - safe to use with pooled encoder
	compressed := encoder.EncodeAll(src, make([]byte, 0, len(src)))
	if len(compressed) >= len(src) {
		return nil, ErrIncompressible
	}

	return compressed, nil
}

// Decompress decodes a Zstd frame into dst using a pooled decoder.
func (c ZstdCodec) Decompress(src []byte, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if err := zstdCheckFrameSize(src, dst); err != nil {
		return 0, err
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, corruptStream(format.CodecZstd, err)
	}

	return zstdFinish(out, dst)
}
