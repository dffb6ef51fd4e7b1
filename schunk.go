// Package schunk provides an in-memory, append-only container of compressed
// fixed-size chunks of typed data.
//
// A super-chunk stores a long array as a sequence of equally sized chunks. Each
// chunk is filtered (shuffle, bit-shuffle, delta, precision truncation),
// compressed with a pluggable codec (Zstd, S2, LZ4, LZ4HC, Flate) and kept as an
// immutable self-describing record. Chunks are decompressed independently by
// index, so a caller can stream through data far larger than the memory it
// would take uncompressed.
//
// # Core Features
//
//   - Ordered filter pipelines of up to 6 reversible transforms per container
//   - Lossy precision truncation with a bounded relative error
//   - Verbatim storage when data does not compress, so chunks never grow by more
//     than a 32-byte header
//   - Parallel batch append and decompress over shared worker pools, with
//     output independent of the thread count
//   - xxHash checksums on every chunk payload
//
// # Basic Usage
//
//	sc, err := schunk.NewDefault(200 * 8) // 200 float64 per chunk
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sc.Destroy()
//
//	buf := schunk.Float64Bytes(values)
//	idx, csize, err := sc.Append(buf)
//
//	dst := make([]byte, sc.ChunkSize())
//	_, err = sc.DecompressChunk(idx, dst)
//	restored := schunk.BytesFloat64(dst)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the superchunk
// package. For custom codecs, filters or chunk-level access use the compress,
// filter, chunk and superchunk packages directly.
package schunk

import (
	"math"

	"github.com/arloliu/schunk/config"
	"github.com/arloliu/schunk/endian"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
	"github.com/arloliu/schunk/superchunk"
)

// New creates a container with explicit compression and decompression parameters.
//
// Parameters:
//   - cparams: Typesize, codec, level, filter pipeline and compression threads
//   - dparams: Decompression threads
//   - chunkSize: Logical bytes per chunk, a positive multiple of cparams.Typesize
//   - opts: Optional container settings (superchunk.WithLogger, WithMetrics, WithName)
//
// Returns:
//   - *superchunk.SuperChunk: The created container
//   - error: A wrapped errs sentinel when a parameter is invalid
//
// Example:
//
//	sc, err := schunk.New(superchunk.CParams{
//	    Typesize: 8,
//	    Codec:    format.CodecZstd,
//	    Level:    5,
//	    Filters:  filter.Pipeline{{Type: format.FilterShuffle}},
//	    Threads:  4,
//	}, superchunk.DParams{Threads: 4}, 1<<20)
func New(cparams superchunk.CParams, dparams superchunk.DParams, chunkSize int, opts ...superchunk.Option) (*superchunk.SuperChunk, error) {
	return superchunk.New(cparams, dparams, chunkSize, opts...)
}

// NewDefault creates a container with recommended settings for float64 data.
//
// It uses:
//   - 8-byte elements
//   - Byte shuffle (groups exponent and mantissa bytes)
//   - LZ4 at level 5 (fast, good ratio on shuffled floats)
//   - One compression and one decompression thread
//
// Parameters:
//   - chunkSize: Logical bytes per chunk, a positive multiple of 8
//   - opts: Optional container settings
func NewDefault(chunkSize int, opts ...superchunk.Option) (*superchunk.SuperChunk, error) {
	return superchunk.New(superchunk.DefaultCParams(), superchunk.DefaultDParams(), chunkSize, opts...)
}

// NewLossy creates a float64 container that keeps bits significant mantissa
// bits before shuffling and compressing with Zstd.
//
// Decoded values differ from the originals by at most |x| * 2^-bits. Zeros,
// subnormals, infinities and NaNs are stored exactly. A bits value of 23 keeps
// float32-equivalent precision.
func NewLossy(chunkSize int, bits uint8, threads int, opts ...superchunk.Option) (*superchunk.SuperChunk, error) {
	cparams := superchunk.CParams{
		Typesize: 8,
		Codec:    format.CodecZstd,
		Level:    format.DefaultLevel,
		Filters: filter.Pipeline{
			{Type: format.FilterTruncPrec, Meta: bits},
			{Type: format.FilterShuffle},
		},
		Threads: threads,
	}

	return superchunk.New(cparams, superchunk.DParams{Threads: threads}, chunkSize, opts...)
}

// NewFromConfig creates a container from a loaded configuration file.
func NewFromConfig(cfg *config.Config, opts ...superchunk.Option) (*superchunk.SuperChunk, error) {
	cparams, err := cfg.CParams()
	if err != nil {
		return nil, err
	}

	return superchunk.New(cparams, cfg.DParams(), cfg.ChunkSize.Int(), opts...)
}

// Float64Bytes encodes values as little-endian bytes, the element layout the
// filters expect.
func Float64Bytes(values []float64) []byte {
	buf := make([]byte, len(values)*8)
	PutFloat64s(buf, values)

	return buf
}

// PutFloat64s encodes values into dst, which must hold len(values)*8 bytes.
func PutFloat64s(dst []byte, values []float64) {
	engine := endian.ChunkEngine()
	for i, v := range values {
		engine.PutUint64(dst[i*8:], math.Float64bits(v))
	}
}

// BytesFloat64 decodes little-endian float64 elements.
func BytesFloat64(buf []byte) []float64 {
	values := make([]float64, len(buf)/8)
	ReadFloat64s(values, buf)

	return values
}

// ReadFloat64s decodes len(dst) elements from buf.
func ReadFloat64s(dst []float64, buf []byte) {
	engine := endian.ChunkEngine()
	for i := range dst {
		dst[i] = math.Float64frombits(engine.Uint64(buf[i*8:]))
	}
}
