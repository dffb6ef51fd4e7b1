package compress

import (
	"errors"
	"sync"

	"github.com/arloliu/schunk/format"
	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal hash tables that benefit from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4HCCompressorPool pools lz4.CompressorHC instances. The level is set per call.
var lz4HCCompressorPool = sync.Pool{
	New: func() any {
		return &lz4.CompressorHC{}
	},
}

// lz4HCLevels maps levels 1..9 to HC search depths; level 0 never compresses.
var lz4HCLevels = [format.MaxLevel]lz4.CompressionLevel{
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// LZ4Codec provides LZ4 block compression. All non-zero levels use the fast
// compressor; use LZ4HCCodec for level-dependent effort.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates a new LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Type returns format.CodecLZ4.
func (c LZ4Codec) Type() format.CodecType {
	return format.CodecLZ4
}

// Compress compresses src with a pooled lz4.Compressor.
//
// Returns ErrIncompressible when the block would not shrink.
func (c LZ4Codec) Compress(level int, _ int, src []byte) ([]byte, error) {
	if err := checkLevel(format.CodecLZ4, level); err != nil {
		return nil, err
	}
	if level == 0 || len(src) == 0 {
		return src, nil
	}

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	return lz4Block(format.CodecLZ4, src, lc.CompressBlock)
}

// Decompress decodes an LZ4 block produced by Compress into dst.
func (c LZ4Codec) Decompress(src []byte, dst []byte) (int, error) {
	return lz4Decompress(format.CodecLZ4, src, dst)
}

// LZ4HCCodec provides high-compression LZ4. Level n maps to lz4.Level<n>.
// Output is block compatible with LZ4Codec.
type LZ4HCCodec struct{}

var _ Codec = (*LZ4HCCodec)(nil)

// NewLZ4HCCodec creates a new LZ4HC codec.
func NewLZ4HCCodec() LZ4HCCodec {
	return LZ4HCCodec{}
}

// Type returns format.CodecLZ4HC.
func (c LZ4HCCodec) Type() format.CodecType {
	return format.CodecLZ4HC
}

// Compress compresses src with a pooled lz4.CompressorHC at the mapped depth.
func (c LZ4HCCodec) Compress(level int, _ int, src []byte) ([]byte, error) {
	if err := checkLevel(format.CodecLZ4HC, level); err != nil {
		return nil, err
	}
	if level == 0 || len(src) == 0 {
		return src, nil
	}

	hc, _ := lz4HCCompressorPool.Get().(*lz4.CompressorHC)
	defer lz4HCCompressorPool.Put(hc)
	hc.Level = lz4HCLevels[level-1]

	return lz4Block(format.CodecLZ4HC, src, hc.CompressBlock)
}

// Decompress decodes an LZ4 block produced by Compress into dst.
func (c LZ4HCCodec) Decompress(src []byte, dst []byte) (int, error) {
	return lz4Decompress(format.CodecLZ4HC, src, dst)
}

func lz4Block(codec format.CodecType, src []byte, compressBlock func(src, dst []byte) (int, error)) ([]byte, error) {
	out := appendSizePrefix(make([]byte, 0, lz4.CompressBlockBound(len(src))+binaryMaxVarintLen), len(src))
	prefixLen := len(out)

	n, err := compressBlock(src, out[prefixLen:cap(out)])
	if err != nil {
		return nil, compressFailed(codec, err)
	}

	// CompressBlock returns 0 when it decides the data is incompressible.
	if n == 0 || prefixLen+n >= len(src) {
		return nil, ErrIncompressible
	}

	return out[:prefixLen+n], nil
}

func lz4Decompress(codec format.CodecType, src []byte, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	size, body, err := readSizePrefix(src)
	if err != nil {
		return 0, corruptStream(codec, err)
	}
	if size > len(dst) {
		return 0, destinationTooSmall(codec, size, len(dst))
	}
	if size == 0 {
		return 0, nil
	}

	n, err := lz4.UncompressBlock(body, dst[:size])
	if err != nil {
		return 0, corruptStream(codec, err)
	}
	if n != size {
		return 0, corruptStream(codec, errors.New("decoded length differs from size prefix"))
	}

	return n, nil
}
