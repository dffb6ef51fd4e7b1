package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
)

func TestLoadAndValidate(t *testing.T) {
	yaml := `
compression:
  typesize: 8
  codec: zstd
  level: 5
  threads: 4
  filters:
    - kind: trunc_prec
      meta: 23
    - kind: shuffle
decompression:
  threads: 4
chunk_size: 1600
logging:
  level: debug
  format: console
`
	dir := t.TempDir()
	path := filepath.Join(dir, "schunk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1600, cfg.ChunkSize.Int())
	require.Equal(t, "debug", cfg.Logging.Level)

	cparams, err := cfg.CParams()
	require.NoError(t, err)
	require.Equal(t, 8, cparams.Typesize)
	require.Equal(t, format.CodecZstd, cparams.Codec)
	require.Equal(t, 5, cparams.Level)
	require.Equal(t, 4, cparams.Threads)
	require.Equal(t, filter.Pipeline{
		{Type: format.FilterTruncPrec, Meta: 23},
		{Type: format.FilterShuffle},
	}, cparams.Filters)
	require.Equal(t, 4, cfg.DParams().Threads)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	cparams, err := cfg.CParams()
	require.NoError(t, err)
	require.Equal(t, format.CodecLZ4, cparams.Codec)
	require.Equal(t, filter.Pipeline{{Type: format.FilterShuffle}}, cparams.Filters)
}

func TestParse_FiltersReplaced(t *testing.T) {
	cfg, err := Parse([]byte("compression:\n  filters: []\n"))
	require.NoError(t, err)

	cparams, err := cfg.CParams()
	require.NoError(t, err)
	require.Empty(t, cparams.Filters)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{"unknown codec", "compression:\n  codec: brotli\n", errs.ErrUnknownCodec},
		{"unknown filter", "compression:\n  filters: [{kind: rot13}]\n", errs.ErrUnknownFilter},
		{"meta out of range", "compression:\n  filters: [{kind: shuffle, meta: 300}]\n", errs.ErrInvalidMetadata},
		{"trunc meta", "compression:\n  filters: [{kind: trunc_prec, meta: 60}]\n", errs.ErrInvalidMetadata},
		{"level", "compression:\n  level: 11\n", errs.ErrInvalidLevel},
		{"typesize", "compression:\n  typesize: 0\n", errs.ErrInvalidTypesize},
		{"threads", "compression:\n  threads: 0\n", errs.ErrInvalidThreadCount},
		{"dthreads", "decompression:\n  threads: -1\n", errs.ErrInvalidThreadCount},
		{"chunk size zero", "chunk_size: 0\n", errs.ErrInvalidChunkSize},
		{"chunk size not multiple", "chunk_size: 1001\n", errs.ErrInvalidChunkSize},
		{"log level", "logging:\n  level: verbose\n", nil},
		{"log format", "logging:\n  format: xml\n", nil},
		{"metrics listen", "metrics:\n  enabled: true\n  listen: \"\"\n", nil},
		{"bad yaml", "compression: [", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParseByteSizes(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"1KB", 1024},
		{"256MB", 256 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"100B", 100},
		{"1600", 1600},
		{" 64 KB", 64 * 1024},
	}

	for _, tt := range tests {
		result, err := parseByteSize(tt.input)
		require.NoError(t, err, tt.input)
		require.Equal(t, tt.expected, result, tt.input)
	}

	for _, bad := range []string{"", "lots", "1.5MB", "12abc", "4 4KB", "-1KB", "0x10", "9223372036854775807KB", "99999999999999999999"} {
		_, err := parseByteSize(bad)
		require.Error(t, err, bad)
	}
}

func TestParse_FractionalChunkSizeRejected(t *testing.T) {
	_, err := Parse([]byte("chunk_size: 1.5MB\n"))
	require.Error(t, err)
}

func TestByteSize_YAML(t *testing.T) {
	cfg, err := Parse([]byte("chunk_size: 64KB\n"))
	require.NoError(t, err)
	require.Equal(t, ByteSize(64*1024), cfg.ChunkSize)
}

func TestNewLogger(t *testing.T) {
	for _, lc := range []LoggingConfig{
		{Level: "debug", Format: "console"},
		{Level: "info", Format: "json"},
		{Level: "warn"},
		{Level: "error"},
		{},
	} {
		logger, err := NewLogger(lc)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}

	logger, err := NewLogger(LoggingConfig{Level: "warn"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.InfoLevel))
	require.True(t, logger.Core().Enabled(zap.WarnLevel))

	_, err = NewLogger(LoggingConfig{Level: "trace"})
	require.Error(t, err)
}
