package chunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
)

func TestNewHeader(t *testing.T) {
	h := NewHeader()

	require.Equal(t, uint16(MagicChunkV1Opt), h.MagicNumber())
	require.False(t, h.IsMemcpyed())
	require.False(t, h.HasChecksum())
	require.Empty(t, h.Pipeline())
}

func TestHeader_Flags(t *testing.T) {
	h := NewHeader()

	h.SetMemcpyed(true)
	require.True(t, h.IsMemcpyed())
	h.SetMemcpyed(false)
	require.False(t, h.IsMemcpyed())

	h.SetChecksum(0xdeadbeef)
	require.True(t, h.HasChecksum())
	require.Equal(t, uint32(0xdeadbeef), h.Checksum)
	require.Equal(t, uint16(MagicChunkV1Opt), h.MagicNumber())
}

func TestHeader_BytesParse(t *testing.T) {
	original := NewHeader()
	original.Codec = format.CodecZstd
	original.Level = 5
	original.Typesize = 8
	original.LogicalSize = 1600
	original.PayloadSize = 321
	original.SetChecksum(0x01020304)
	require.NoError(t, original.SetPipeline(filter.Pipeline{
		{Type: format.FilterTruncPrec, Meta: 23},
		{},
		{Type: format.FilterShuffle},
	}))

	data := original.Bytes()
	require.Len(t, data, HeaderSize)

	var parsed Header
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, original, parsed)
	require.Equal(t, filter.Pipeline{
		{Type: format.FilterTruncPrec, Meta: 23},
		{Type: format.FilterShuffle},
	}, parsed.Pipeline())
}

func TestHeader_ByteLayout(t *testing.T) {
	h := NewHeader()
	h.Codec = format.CodecLZ4
	h.Level = 3
	h.Typesize = 4
	h.LogicalSize = 0x00010000
	h.PayloadSize = 0x00000100
	h.SetMemcpyed(true)
	h.SetChecksum(0xAABBCCDD)

	b := h.Bytes()
	require.Equal(t, byte(0x13), b[0]) // magic low nibble + both flags
	require.Equal(t, byte(0xBC), b[1])
	require.Equal(t, byte(format.CodecLZ4), b[2])
	require.Equal(t, byte(3), b[3])
	require.Equal(t, byte(4), b[4])
	require.Equal(t, []byte{0x00, 0x00, 0x01, 0x00}, b[20:24])
	require.Equal(t, []byte{0x00, 0x01, 0x00, 0x00}, b[24:28])
	require.Equal(t, []byte{0xDD, 0xCC, 0xBB, 0xAA}, b[28:32])
}

func TestHeader_ParseErrors(t *testing.T) {
	valid := func() Header {
		h := NewHeader()
		h.Codec = format.CodecLZ4
		h.Level = 1
		h.Typesize = 8
		h.LogicalSize = 64
		h.PayloadSize = 10

		return h
	}

	t.Run("wrong size", func(t *testing.T) {
		var h Header
		require.ErrorIs(t, h.Parse([]byte{1, 2, 3}), errs.ErrInvalidHeader)

		_, err := ParseHeader(make([]byte, HeaderSize-1))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("bad magic", func(t *testing.T) {
		data := valid().Bytes()
		data[1] = 0x00

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("reserved bits", func(t *testing.T) {
		data := valid().Bytes()
		data[0] |= 0x04

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("zero typesize", func(t *testing.T) {
		h := valid()
		h.Typesize = 0
		require.ErrorIs(t, h.Validate(), errs.ErrInvalidHeader)
	})

	t.Run("logical not multiple of typesize", func(t *testing.T) {
		h := valid()
		h.LogicalSize = 65
		require.ErrorIs(t, h.Validate(), errs.ErrInvalidHeader)
	})

	t.Run("too many filters", func(t *testing.T) {
		data := valid().Bytes()
		data[5] = filter.MaxFilters + 1

		_, err := ParseHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("verbatim size mismatch", func(t *testing.T) {
		h := valid()
		h.SetMemcpyed(true)
		require.ErrorIs(t, h.Validate(), errs.ErrInvalidHeader)
	})
}

func TestParseHeader_TrailingPayload(t *testing.T) {
	h := NewHeader()
	h.Typesize = 1
	h.LogicalSize = 3
	h.PayloadSize = 3
	h.SetMemcpyed(true)

	data := append(h.Bytes(), 1, 2, 3)
	parsed, err := ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, h, parsed)
}
