// Package config loads container settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
	"github.com/arloliu/schunk/superchunk"
)

type Config struct {
	Compression   CompressionConfig   `yaml:"compression"`
	Decompression DecompressionConfig `yaml:"decompression"`
	ChunkSize     ByteSize            `yaml:"chunk_size"`
	Logging       LoggingConfig       `yaml:"logging"`
	Metrics       MetricsConfig       `yaml:"metrics"`
}

type CompressionConfig struct {
	Typesize int            `yaml:"typesize"`
	Codec    string         `yaml:"codec"`
	Level    int            `yaml:"level"`
	Filters  []FilterConfig `yaml:"filters"`
	Threads  int            `yaml:"threads"`
}

type FilterConfig struct {
	Kind string `yaml:"kind"`
	Meta int    `yaml:"meta"`
}

type DecompressionConfig struct {
	Threads int `yaml:"threads"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
}

// Load reads, parses and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML on top of DefaultConfig and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings the same way superchunk.New would.
func (c *Config) Validate() error {
	cparams, err := c.CParams()
	if err != nil {
		return err
	}
	if err := cparams.Validate(); err != nil {
		return fmt.Errorf("compression: %w", err)
	}
	if err := c.DParams().Validate(); err != nil {
		return fmt.Errorf("decompression: %w", err)
	}

	if c.ChunkSize <= 0 || c.ChunkSize > math.MaxInt32 {
		return fmt.Errorf("chunk_size: %w: %d", errs.ErrInvalidChunkSize, c.ChunkSize)
	}
	if int64(c.ChunkSize)%int64(cparams.Typesize) != 0 {
		return fmt.Errorf("chunk_size: %w: %d is not a multiple of typesize %d",
			errs.ErrInvalidChunkSize, c.ChunkSize, cparams.Typesize)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return errors.New("metrics.listen is required when metrics are enabled")
	}

	return nil
}

// CParams converts the compression section.
func (c *Config) CParams() (superchunk.CParams, error) {
	codec, err := format.ParseCodecType(c.Compression.Codec)
	if err != nil {
		return superchunk.CParams{}, fmt.Errorf("compression.codec: %w: %w", errs.ErrUnknownCodec, err)
	}

	pipeline := make(filter.Pipeline, 0, len(c.Compression.Filters))
	for i, fc := range c.Compression.Filters {
		kind, err := format.ParseFilterType(fc.Kind)
		if err != nil {
			return superchunk.CParams{}, fmt.Errorf("compression.filters[%d]: %w: %w", i, errs.ErrUnknownFilter, err)
		}
		if fc.Meta < 0 || fc.Meta > math.MaxUint8 {
			return superchunk.CParams{}, fmt.Errorf("compression.filters[%d]: %w: meta %d out of byte range",
				i, errs.ErrInvalidMetadata, fc.Meta)
		}
		pipeline = append(pipeline, filter.Slot{Type: kind, Meta: uint8(fc.Meta)})
	}

	return superchunk.CParams{
		Typesize: c.Compression.Typesize,
		Codec:    codec,
		Level:    c.Compression.Level,
		Filters:  pipeline,
		Threads:  c.Compression.Threads,
	}, nil
}

// DParams converts the decompression section.
func (c *Config) DParams() superchunk.DParams {
	return superchunk.DParams{Threads: c.Decompression.Threads}
}

// ByteSize wraps int64 for YAML unmarshaling of strings like "64KB" or "4MB".
type ByteSize int64

// Int returns the size as an int.
func (b ByteSize) Int() int {
	return int(b)
}

func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		// Try as integer
		var n int64
		if err2 := value.Decode(&n); err2 != nil {
			return err
		}
		*b = ByteSize(n)

		return nil
	}

	parsed, err := parseByteSize(s)
	if err != nil {
		return err
	}
	*b = ByteSize(parsed)

	return nil
}

func (b ByteSize) MarshalYAML() (any, error) {
	return int64(b), nil
}

func parseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, errors.New("empty byte size")
	}

	var multiplier int64 = 1
	numStr := s

	switch {
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = s[:len(s)-2]
	case strings.HasSuffix(s, "B"):
		numStr = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid byte size %q: negative", s)
	}
	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("invalid byte size %q: overflows int64", s)
	}

	return n * multiplier, nil
}
