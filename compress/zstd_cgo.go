//go:build gozstd && cgo

package compress

import (
	"github.com/arloliu/schunk/format"
	"github.com/valyala/gozstd"
)

// gozstdLevel maps 1..9 onto native zstd levels 1..22.
func gozstdLevel(level int) int {
	if level >= format.MaxLevel {
		return 22
	}

	return level*2 - 1
}

// Compress compresses src using the cgo zstd binding.
func (c ZstdCodec) Compress(level int, _ int, src []byte) ([]byte, error) {
	if err := checkLevel(format.CodecZstd, level); err != nil {
		return nil, err
	}
	if level == 0 || len(src) == 0 {
		return src, nil
	}

	compressed := gozstd.CompressLevel(make([]byte, 0, len(src)), src, gozstdLevel(level))
	if len(compressed) >= len(src) {
		return nil, ErrIncompressible
	}

	return compressed, nil
}

// Decompress decodes a Zstd frame into dst using the cgo zstd binding.
func (c ZstdCodec) Decompress(src []byte, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if err := zstdCheckFrameSize(src, dst); err != nil {
		return 0, err
	}

	out, err := gozstd.Decompress(dst[:0], src)
	if err != nil {
		return 0, corruptStream(format.CodecZstd, err)
	}

	return zstdFinish(out, dst)
}
