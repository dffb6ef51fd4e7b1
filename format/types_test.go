package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCodecType(t *testing.T) {
	tests := []struct {
		name string
		want CodecType
	}{
		{"none", CodecNone},
		{"ZSTD", CodecZstd},
		{"s2", CodecS2},
		{"lz4", CodecLZ4},
		{"LZ4HC", CodecLZ4HC},
		{"deflate", CodecFlate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCodecType(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := ParseCodecType("blosclz")
	require.Error(t, err)
}

func TestParseFilterType(t *testing.T) {
	got, err := ParseFilterType("trunc_prec")
	require.NoError(t, err)
	require.Equal(t, FilterTruncPrec, got)

	got, err = ParseFilterType("BitShuffle")
	require.NoError(t, err)
	require.Equal(t, FilterBitShuffle, got)

	_, err = ParseFilterType("gorilla")
	require.Error(t, err)
}

func TestTypeStrings(t *testing.T) {
	require.Equal(t, "LZ4HC", CodecLZ4HC.String())
	require.Equal(t, "Unknown", CodecType(0x7f).String())
	require.Equal(t, "Custom(0x81)", CodecType(0x81).String())
	require.Equal(t, "TruncPrec", FilterTruncPrec.String())
	require.Equal(t, "Unknown", FilterType(0x10).String())
}
