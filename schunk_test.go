package schunk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/schunk/config"
	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
	"github.com/arloliu/schunk/superchunk"
)

func TestFloat64Bytes_RoundTrip(t *testing.T) {
	values := []float64{0, -0.5, math.Pi, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(-1)}

	buf := Float64Bytes(values)
	require.Len(t, buf, len(values)*8)
	require.Equal(t, values, BytesFloat64(buf))

	// element 2 is pi, little-endian
	require.Equal(t, byte(0x18), buf[16])
	require.Equal(t, byte(0x40), buf[23])
}

func TestNewDefault(t *testing.T) {
	sc, err := NewDefault(200 * 8)
	require.NoError(t, err)
	defer sc.Destroy()

	cparams := sc.CParams()
	require.Equal(t, 8, cparams.Typesize)
	require.Equal(t, format.CodecLZ4, cparams.Codec)
	require.Equal(t, filter.Pipeline{{Type: format.FilterShuffle}}, cparams.Filters)

	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(i) * 3
	}
	idx, _, err := sc.Append(Float64Bytes(values))
	require.NoError(t, err)

	dst := make([]byte, sc.ChunkSize())
	_, err = sc.DecompressChunk(idx, dst)
	require.NoError(t, err)
	require.Equal(t, values, BytesFloat64(dst))
}

func TestNewDefault_InvalidChunkSize(t *testing.T) {
	_, err := NewDefault(12)
	require.ErrorIs(t, err, errs.ErrInvalidChunkSize)
}

func TestNew(t *testing.T) {
	sc, err := New(superchunk.CParams{
		Typesize: 4,
		Codec:    format.CodecS2,
		Level:    3,
		Filters:  filter.Pipeline{{Type: format.FilterBitShuffle}},
		Threads:  2,
	}, superchunk.DParams{Threads: 2}, 4096, superchunk.WithName("custom"))
	require.NoError(t, err)
	defer sc.Destroy()

	require.Equal(t, "custom", sc.Name())
	require.Equal(t, 4096, sc.ChunkSize())
}

func TestNewLossy(t *testing.T) {
	sc, err := NewLossy(1000*8, 23, 2)
	require.NoError(t, err)
	defer sc.Destroy()

	values := make([]float64, 1000)
	for i := range values {
		values[i] = 1e-3 * float64(i) * math.Sqrt2
	}
	_, _, err = sc.Append(Float64Bytes(values))
	require.NoError(t, err)

	dst := make([]byte, sc.ChunkSize())
	_, err = sc.DecompressChunk(0, dst)
	require.NoError(t, err)

	got := make([]float64, len(values))
	ReadFloat64s(got, dst)
	for i, v := range values {
		require.LessOrEqual(t, math.Abs(v-got[i]), math.Abs(v)*math.Ldexp(1, -23))
	}

	stats, err := sc.Stats()
	require.NoError(t, err)
	require.Greater(t, stats.Ratio(), 1.0)
}

func TestNewLossy_InvalidBits(t *testing.T) {
	_, err := NewLossy(800, 60, 1)
	require.ErrorIs(t, err, errs.ErrInvalidMetadata)
}

func TestNewFromConfig(t *testing.T) {
	cfg, err := config.Parse([]byte(`
compression:
  codec: flate
  level: 6
  filters: [{kind: delta}, {kind: shuffle}]
chunk_size: 8KB
`))
	require.NoError(t, err)

	sc, err := NewFromConfig(cfg)
	require.NoError(t, err)
	defer sc.Destroy()

	require.Equal(t, 8*1024, sc.ChunkSize())
	require.Equal(t, format.CodecFlate, sc.CParams().Codec)
	require.Len(t, sc.CParams().Filters, 2)
}
