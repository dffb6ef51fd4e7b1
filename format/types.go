package format

import (
	"fmt"
	"strings"
)

type (
	CodecType  uint8
	FilterType uint8
)

const (
	CodecNone   CodecType = 0x1 // CodecNone stores chunk bytes verbatim.
	CodecZstd   CodecType = 0x2 // CodecZstd represents Zstandard compression.
	CodecS2     CodecType = 0x3 // CodecS2 represents S2 compression.
	CodecLZ4    CodecType = 0x4 // CodecLZ4 represents LZ4 block compression.
	CodecLZ4HC  CodecType = 0x5 // CodecLZ4HC represents high-compression LZ4.
	CodecFlate  CodecType = 0x6 // CodecFlate represents DEFLATE compression.
	CodecCustom CodecType = 0x80

	FilterNone       FilterType = 0x0 // FilterNone is an empty pipeline slot.
	FilterShuffle    FilterType = 0x1 // FilterShuffle transposes element bytes.
	FilterBitShuffle FilterType = 0x2 // FilterBitShuffle transposes element bits.
	FilterDelta      FilterType = 0x3 // FilterDelta XORs each element with its predecessor.
	FilterTruncPrec  FilterType = 0x4 // FilterTruncPrec drops low mantissa bits (lossy).
	FilterCustom     FilterType = 0x80
)

// Compression level bounds. Level 0 stores data verbatim regardless of codec.
const (
	MinLevel     = 0
	MaxLevel     = 9
	DefaultLevel = 5
)

func (c CodecType) String() string {
	switch c {
	case CodecNone:
		return "None"
	case CodecZstd:
		return "Zstd"
	case CodecS2:
		return "S2"
	case CodecLZ4:
		return "LZ4"
	case CodecLZ4HC:
		return "LZ4HC"
	case CodecFlate:
		return "Flate"
	default:
		if c >= CodecCustom {
			return fmt.Sprintf("Custom(%#x)", uint8(c))
		}

		return "Unknown"
	}
}

func (f FilterType) String() string {
	switch f {
	case FilterNone:
		return "None"
	case FilterShuffle:
		return "Shuffle"
	case FilterBitShuffle:
		return "BitShuffle"
	case FilterDelta:
		return "Delta"
	case FilterTruncPrec:
		return "TruncPrec"
	default:
		if f >= FilterCustom {
			return fmt.Sprintf("Custom(%#x)", uint8(f))
		}

		return "Unknown"
	}
}

// ParseCodecType parses a codec name such as "zstd" or "lz4hc" (case-insensitive).
func ParseCodecType(name string) (CodecType, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return CodecNone, nil
	case "zstd":
		return CodecZstd, nil
	case "s2":
		return CodecS2, nil
	case "lz4":
		return CodecLZ4, nil
	case "lz4hc":
		return CodecLZ4HC, nil
	case "flate", "deflate":
		return CodecFlate, nil
	default:
		return 0, fmt.Errorf("unknown codec: %q", name)
	}
}

// ParseFilterType parses a filter name such as "shuffle" or "trunc_prec" (case-insensitive).
func ParseFilterType(name string) (FilterType, error) {
	switch strings.ToLower(name) {
	case "none", "":
		return FilterNone, nil
	case "shuffle":
		return FilterShuffle, nil
	case "bitshuffle":
		return FilterBitShuffle, nil
	case "delta":
		return FilterDelta, nil
	case "trunc_prec", "truncprec":
		return FilterTruncPrec, nil
	default:
		return 0, fmt.Errorf("unknown filter: %q", name)
	}
}
