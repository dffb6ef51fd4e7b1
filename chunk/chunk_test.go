package chunk

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/schunk/compress"
	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
)

func seriesBytes(n int) []byte {
	buf := make([]byte, n*8)
	for i := range n {
		v := float64(i)*0.001 + 10
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}

	return buf
}

func randomBytes(n int, seed int64) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(buf)

	return buf
}

func allCodecs() []format.CodecType {
	return []format.CodecType{
		format.CodecNone, format.CodecZstd, format.CodecS2,
		format.CodecLZ4, format.CodecLZ4HC, format.CodecFlate,
	}
}

func TestEncodeDecode_Lossless(t *testing.T) {
	pipelines := map[string]filter.Pipeline{
		"none":       nil,
		"shuffle":    {{Type: format.FilterShuffle}},
		"bitshuffle": {{Type: format.FilterBitShuffle}},
		"delta+shuf": {{Type: format.FilterDelta}, {Type: format.FilterShuffle}},
	}
	src := seriesBytes(2000)

	for _, codec := range allCodecs() {
		for name, p := range pipelines {
			for _, level := range []int{0, 1, 5, 9} {
				cfg := Config{Typesize: 8, Codec: codec, Level: level, Filters: p}
				c, err := Encode(src, cfg)
				require.NoError(t, err, "%s/%s/%d", codec, name, level)
				require.Equal(t, len(src), c.LogicalSize())

				dst := make([]byte, len(src))
				n, err := c.Decode(dst)
				require.NoError(t, err)
				require.Equal(t, len(src), n)
				require.Equal(t, src, dst, "%s/%s/%d", codec, name, level)
			}
		}
	}
}

func TestEncode_Compresses(t *testing.T) {
	src := seriesBytes(2000)
	c, err := Encode(src, Config{Typesize: 8, Codec: format.CodecZstd, Level: 5, Filters: filter.Pipeline{{Type: format.FilterShuffle}}})
	require.NoError(t, err)

	info := c.Info()
	require.False(t, info.Memcpyed)
	require.True(t, info.Checksum)
	require.Less(t, info.CompressedSize, len(src))
	require.Greater(t, info.Ratio(), 1.0)
	require.Equal(t, filter.Pipeline{{Type: format.FilterShuffle}}, info.Filters)
}

func TestEncode_LevelZeroIsVerbatim(t *testing.T) {
	src := seriesBytes(200)
	c, err := Encode(src, Config{Typesize: 8, Codec: format.CodecZstd, Level: 0, Filters: filter.Pipeline{{Type: format.FilterShuffle}}})
	require.NoError(t, err)

	require.Equal(t, len(src)+HeaderSize, c.CompressedSize())
	require.True(t, c.Header().IsMemcpyed())
	require.Empty(t, c.Header().Pipeline())
	require.Equal(t, src, c.Bytes()[HeaderSize:])
}

func TestEncode_IncompressibleIsVerbatim(t *testing.T) {
	src := randomBytes(4096, 1)

	for _, codec := range allCodecs() {
		c, err := Encode(src, Config{Typesize: 8, Codec: codec, Level: 9, Filters: filter.Pipeline{{Type: format.FilterShuffle}}})
		require.NoError(t, err)
		require.Equal(t, len(src)+HeaderSize, c.CompressedSize(), codec.String())
		require.True(t, c.Info().Memcpyed)

		dst := make([]byte, len(src))
		_, err = c.Decode(dst)
		require.NoError(t, err)
		require.Equal(t, src, dst)
	}
}

func TestEncode_LossyBound(t *testing.T) {
	values := make([]float64, 1000)
	for i := range values {
		values[i] = math.Cos(float64(i)/7) * 123.456
	}
	src := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(src[i*8:], math.Float64bits(v))
	}

	cfg := Config{
		Typesize: 8, Codec: format.CodecLZ4, Level: 5,
		Filters: filter.Pipeline{{Type: format.FilterTruncPrec, Meta: 23}, {Type: format.FilterShuffle}},
	}
	c, err := Encode(src, cfg)
	require.NoError(t, err)

	dst := make([]byte, len(src))
	_, err = c.Decode(dst)
	require.NoError(t, err)

	for i, want := range values {
		got := math.Float64frombits(binary.LittleEndian.Uint64(dst[i*8:]))
		require.LessOrEqual(t, math.Abs(want-got), math.Abs(want)*math.Ldexp(1, -23))
	}
}

func TestEncode_Errors(t *testing.T) {
	src := seriesBytes(10)

	tests := []struct {
		name    string
		src     []byte
		cfg     Config
		wantErr error
	}{
		{"zero typesize", src, Config{Typesize: 0, Codec: format.CodecLZ4, Level: 1}, errs.ErrInvalidTypesize},
		{"typesize too big", src, Config{Typesize: 256, Codec: format.CodecLZ4, Level: 1}, errs.ErrInvalidTypesize},
		{"level too high", src, Config{Typesize: 8, Codec: format.CodecLZ4, Level: 10}, errs.ErrInvalidLevel},
		{"negative level", src, Config{Typesize: 8, Codec: format.CodecLZ4, Level: -1}, errs.ErrInvalidLevel},
		{"unknown codec", src, Config{Typesize: 8, Codec: format.CodecType(0x55), Level: 1}, errs.ErrUnknownCodec},
		{"bad filter meta", src, Config{Typesize: 8, Codec: format.CodecLZ4, Level: 1, Filters: filter.Pipeline{{Type: format.FilterTruncPrec, Meta: 60}}}, errs.ErrInvalidMetadata},
		{"partial element", src[:20], Config{Typesize: 8, Codec: format.CodecLZ4, Level: 1}, errs.ErrSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.src, tt.cfg)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecode_SizeMismatch(t *testing.T) {
	src := seriesBytes(100)
	c, err := Encode(src, Config{Typesize: 8, Codec: format.CodecLZ4, Level: 5})
	require.NoError(t, err)

	dst := make([]byte, len(src)-8)
	for i := range dst {
		dst[i] = 0xAB
	}
	_, err = c.Decode(dst)
	require.ErrorIs(t, err, errs.ErrSizeMismatch)
	for _, b := range dst {
		require.Equal(t, byte(0xAB), b)
	}
}

// relabeledCodec delegates to a built-in codec under a custom id.
type relabeledCodec struct {
	compress.Codec
	id format.CodecType
}

func (c relabeledCodec) Type() format.CodecType { return c.id }

func TestDecode_UnregisteredCodec(t *testing.T) {
	base, err := compress.GetCodec(format.CodecS2)
	require.NoError(t, err)
	custom := relabeledCodec{Codec: base, id: format.CodecCustom + 7}
	require.NoError(t, compress.Register(custom))

	src := seriesBytes(400)
	c, err := Encode(src, Config{Typesize: 8, Codec: custom.id, Level: 5})
	require.NoError(t, err)
	require.False(t, c.Header().IsMemcpyed())

	compress.Unregister(custom.id)

	dst := make([]byte, len(src))
	_, err = c.Decode(dst)
	require.ErrorIs(t, err, errs.ErrUnknownCodec)

	var codecErr *errs.CodecError
	require.ErrorAs(t, err, &codecErr)
	require.Equal(t, "decompress", codecErr.Op)
	require.True(t, errs.IsCodecError(err))
	require.Equal(t, make([]byte, len(src)), dst)
}

func TestFromBytes(t *testing.T) {
	src := seriesBytes(500)
	c, err := Encode(src, Config{Typesize: 8, Codec: format.CodecS2, Level: 5, Filters: filter.Pipeline{{Type: format.FilterDelta}}})
	require.NoError(t, err)

	raw := c.Bytes()
	restored, err := FromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, c.Header(), restored.Header())

	// restored chunk owns its bytes
	raw[HeaderSize] ^= 0xFF
	dst := make([]byte, len(src))
	_, err = restored.Decode(dst)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestFromBytes_Errors(t *testing.T) {
	src := seriesBytes(500)
	c, err := Encode(src, Config{Typesize: 8, Codec: format.CodecZstd, Level: 3})
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		raw := c.Bytes()
		_, err := FromBytes(raw[:len(raw)-1])
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := FromBytes(make([]byte, 5))
		require.ErrorIs(t, err, errs.ErrInvalidHeader)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		raw := c.Bytes()
		raw[len(raw)-1] ^= 0x01
		_, err := FromBytes(raw)
		require.ErrorIs(t, err, errs.ErrCorruptStream)
		require.True(t, errs.IsCodecError(err))
	})

	t.Run("unknown codec", func(t *testing.T) {
		raw := c.Bytes()
		raw[2] = 0x70
		_, err := FromBytes(raw)
		require.ErrorIs(t, err, errs.ErrUnknownCodec)
	})

	t.Run("unknown filter", func(t *testing.T) {
		raw := c.Bytes()
		raw[5] = 1
		raw[6] = 0x66
		_, err := FromBytes(raw)
		require.ErrorIs(t, err, errs.ErrUnknownFilter)
	})
}

func TestDecode_CorruptPayloadWithoutChecksum(t *testing.T) {
	src := seriesBytes(500)
	c, err := Encode(src, Config{Typesize: 8, Codec: format.CodecZstd, Level: 5, Filters: filter.Pipeline{{Type: format.FilterShuffle}}})
	require.NoError(t, err)
	require.False(t, c.Info().Memcpyed)

	raw := c.Bytes()
	// drop the checksum flag and mangle the payload so the codec sees it
	raw[0] &^= ChecksumMask
	for i := HeaderSize; i < len(raw); i++ {
		raw[i] = 0xFF
	}

	bad, err := FromBytes(raw)
	require.NoError(t, err)

	dst := make([]byte, len(src))
	_, err = bad.Decode(dst)
	require.Error(t, err)
	require.True(t, errs.IsCodecError(err))
	for _, b := range dst {
		require.Zero(t, b)
	}
}

func TestDecode_Concurrent(t *testing.T) {
	src := seriesBytes(4000)
	c, err := Encode(src, Config{Typesize: 8, Codec: format.CodecZstd, Level: 5, Filters: filter.Pipeline{{Type: format.FilterShuffle}, {Type: format.FilterDelta}}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errCh := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dst := make([]byte, len(src))
			if _, err := c.Decode(dst); err != nil {
				errCh <- err
				return
			}
			for i := range dst {
				if dst[i] != src[i] {
					errCh <- errors.New("decoded bytes differ")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}
}

func TestInfo_Ratio(t *testing.T) {
	require.Zero(t, Info{}.Ratio())
	require.InDelta(t, 2.0, Info{LogicalSize: 200, CompressedSize: 100}.Ratio(), 1e-12)
}
