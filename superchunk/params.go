package superchunk

import (
	"fmt"

	"github.com/arloliu/schunk/chunk"
	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
)

// CParams are the compression parameters of a container.
type CParams struct {
	// Typesize is the element width in bytes the filters operate on, 1..255.
	Typesize int
	// Codec compresses the filtered chunk bytes.
	Codec format.CodecType
	// Level is the compression level, 0..9. Level 0 stores chunks verbatim.
	Level int
	// Filters run in order before compression, at most filter.MaxFilters slots.
	Filters filter.Pipeline
	// Threads is the size of the worker pool used by batch appends.
	Threads int
}

// DefaultCParams returns 8-byte elements, byte shuffle, LZ4 at level 5, one thread.
func DefaultCParams() CParams {
	return CParams{
		Typesize: 8,
		Codec:    format.CodecLZ4,
		Level:    format.DefaultLevel,
		Filters:  filter.Pipeline{{Type: format.FilterShuffle}},
		Threads:  1,
	}
}

// Validate checks every field.
func (p CParams) Validate() error {
	if p.Threads < 1 {
		return fmt.Errorf("%w: compression threads %d", errs.ErrInvalidThreadCount, p.Threads)
	}

	return p.chunkConfig().Validate()
}

func (p CParams) chunkConfig() chunk.Config {
	return chunk.Config{
		Typesize: p.Typesize,
		Codec:    p.Codec,
		Level:    p.Level,
		Filters:  p.Filters,
	}
}

func (p CParams) clone() CParams {
	p.Filters = append(filter.Pipeline(nil), p.Filters...)
	return p
}

// DParams are the decompression parameters of a container.
type DParams struct {
	// Threads is the size of the worker pool used by batch decompression.
	Threads int
}

// DefaultDParams returns one decompression thread.
func DefaultDParams() DParams {
	return DParams{Threads: 1}
}

// Validate checks every field.
func (p DParams) Validate() error {
	if p.Threads < 1 {
		return fmt.Errorf("%w: decompression threads %d", errs.ErrInvalidThreadCount, p.Threads)
	}

	return nil
}

// Stats is a point-in-time snapshot of container counters.
type Stats struct {
	NBytes  int64 // total logical bytes appended
	CBytes  int64 // total compressed bytes stored, headers included
	NChunks int
}

// Ratio returns NBytes / CBytes, or 0 for an empty container.
func (s Stats) Ratio() float64 {
	if s.CBytes == 0 {
		return 0
	}

	return float64(s.NBytes) / float64(s.CBytes)
}
