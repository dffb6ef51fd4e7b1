package chunk

import (
	"errors"
	"fmt"

	"github.com/arloliu/schunk/compress"
	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
	"github.com/arloliu/schunk/internal/hash"
	"github.com/arloliu/schunk/internal/pool"
)

// Config selects how a chunk is encoded.
type Config struct {
	Typesize int
	Codec    format.CodecType
	Level    int
	Filters  filter.Pipeline
}

// Validate checks the typesize, level, codec and filter pipeline.
func (c Config) Validate() error {
	if c.Typesize < 1 || c.Typesize > MaxTypesize {
		return fmt.Errorf("%w: %d (want 1..%d)", errs.ErrInvalidTypesize, c.Typesize, MaxTypesize)
	}
	if err := compress.ValidateLevel(c.Level); err != nil {
		return err
	}
	if _, err := compress.GetCodec(c.Codec); err != nil {
		return err
	}

	return c.Filters.Validate(c.Typesize)
}

// Chunk is an immutable compressed record: a Header followed by the payload.
//
// A Chunk carries its own codec and filter snapshot, so decoding never needs
// the parameters it was encoded with.
type Chunk struct {
	header Header
	data   []byte // header bytes + payload
}

// Encode filters and compresses src into a new chunk.
//
// The chunk is stored verbatim (unfiltered, memcpyed flag set) when Level is 0,
// when the codec reports the input incompressible, or when the compressed output
// would not be smaller than src. A verbatim chunk is exactly len(src)+HeaderSize
// bytes.
func Encode(src []byte, cfg Config) (*Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(src) > MaxLogicalSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", errs.ErrInvalidLength, len(src), MaxLogicalSize)
	}
	if len(src)%cfg.Typesize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of typesize %d", errs.ErrSizeMismatch, len(src), cfg.Typesize)
	}

	if cfg.Level == 0 {
		return encodeVerbatim(src, cfg), nil
	}

	codec, err := compress.GetCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}

	filtered := src
	if active := len(cfg.Filters.Active()); active > 0 {
		bufA := pool.GetScratch(len(src))
		defer pool.PutScratch(bufA)

		var scratchB []byte
		if active > 1 {
			bufB := pool.GetScratch(len(src))
			defer pool.PutScratch(bufB)
			scratchB = bufB.B
		}

		filtered, err = cfg.Filters.Forward(cfg.Typesize, src, bufA.B, scratchB)
		if err != nil {
			return nil, err
		}
	}

	payload, err := codec.Compress(cfg.Level, cfg.Typesize, filtered)
	if err != nil {
		if errors.Is(err, compress.ErrIncompressible) {
			return encodeVerbatim(src, cfg), nil
		}

		return nil, err
	}
	if len(payload) >= len(src) {
		return encodeVerbatim(src, cfg), nil
	}

	h := newHeader(cfg, len(src))
	if err := h.SetPipeline(cfg.Filters); err != nil {
		return nil, err
	}

	return assemble(h, payload), nil
}

func newHeader(cfg Config, logical int) Header {
	h := NewHeader()
	h.Codec = cfg.Codec
	h.Level = uint8(cfg.Level)       //nolint:gosec // validated 0..9
	h.Typesize = uint8(cfg.Typesize) //nolint:gosec // validated 1..255
	h.LogicalSize = uint32(logical)  //nolint:gosec // bounded by MaxLogicalSize

	return h
}

func encodeVerbatim(src []byte, cfg Config) *Chunk {
	h := newHeader(cfg, len(src))
	h.SetMemcpyed(true)

	return assemble(h, src)
}

func assemble(h Header, payload []byte) *Chunk {
	h.PayloadSize = uint32(len(payload)) //nolint:gosec // never larger than the logical size
	h.SetChecksum(hash.Checksum(payload))

	data := make([]byte, HeaderSize+len(payload))
	h.PutBytes(data)
	copy(data[HeaderSize:], payload)

	return &Chunk{header: h, data: data}
}

// FromBytes parses and validates an encoded chunk. raw is copied.
func FromBytes(raw []byte) (*Chunk, error) {
	h, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	if len(raw) != HeaderSize+int(h.PayloadSize) {
		return nil, fmt.Errorf("%w: %d bytes, header declares %d", errs.ErrInvalidHeader, len(raw), HeaderSize+int(h.PayloadSize))
	}

	if !h.IsMemcpyed() {
		if _, err := compress.GetCodec(h.Codec); err != nil {
			return nil, err
		}
		if err := h.Pipeline().Validate(int(h.Typesize)); err != nil {
			return nil, err
		}
	}

	c := &Chunk{header: h, data: append([]byte(nil), raw...)}
	if err := c.verify(); err != nil {
		return nil, err
	}

	return c, nil
}

// Header returns the parsed chunk header.
func (c *Chunk) Header() Header {
	return c.header
}

// LogicalSize returns the uncompressed size in bytes.
func (c *Chunk) LogicalSize() int {
	return int(c.header.LogicalSize)
}

// CompressedSize returns the full record size, header included.
func (c *Chunk) CompressedSize() int {
	return len(c.data)
}

// Bytes returns a copy of the encoded record.
func (c *Chunk) Bytes() []byte {
	return append([]byte(nil), c.data...)
}

func (c *Chunk) payload() []byte {
	return c.data[HeaderSize:]
}

func (c *Chunk) verify() error {
	if !c.header.HasChecksum() {
		return nil
	}

	if sum := hash.Checksum(c.payload()); sum != c.header.Checksum {
		return &errs.CodecError{
			Codec: c.header.Codec.String(),
			Op:    "verify",
			Err:   fmt.Errorf("%w: checksum %#08x, header %#08x", errs.ErrCorruptStream, sum, c.header.Checksum),
		}
	}

	return nil
}

// Decode restores the logical bytes of the chunk into dst.
//
// len(dst) must equal LogicalSize. Decoding happens in scratch memory and dst
// is written only on success.
func (c *Chunk) Decode(dst []byte) (int, error) {
	logical := c.LogicalSize()
	if len(dst) != logical {
		return 0, fmt.Errorf("%w: destination %d bytes, chunk holds %d", errs.ErrSizeMismatch, len(dst), logical)
	}
	if err := c.verify(); err != nil {
		return 0, err
	}

	if c.header.IsMemcpyed() {
		copy(dst, c.payload())
		return logical, nil
	}

	codec, err := compress.GetCodec(c.header.Codec)
	if err != nil {
		return 0, &errs.CodecError{Codec: c.header.Codec.String(), Op: "decompress", Err: err}
	}

	raw := pool.GetScratch(logical)
	defer pool.PutScratch(raw)

	n, err := codec.Decompress(c.payload(), raw.B)
	if err != nil {
		return 0, err
	}
	if n != logical {
		return 0, &errs.CodecError{
			Codec: c.header.Codec.String(),
			Op:    "decompress",
			Err:   fmt.Errorf("%w: decoded %d bytes, header declares %d", errs.ErrCorruptStream, n, logical),
		}
	}

	pipeline := c.header.Pipeline()
	if len(pipeline) == 0 {
		copy(dst, raw.B)
		return logical, nil
	}

	tmp := pool.GetScratch(logical)
	defer pool.PutScratch(tmp)

	out, err := pipeline.Reverse(int(c.header.Typesize), raw.B, tmp.B, raw.B)
	if err != nil {
		return 0, err
	}
	copy(dst, out)

	return logical, nil
}

// Info summarizes a chunk header.
type Info struct {
	Codec          format.CodecType
	Level          int
	Typesize       int
	Filters        filter.Pipeline
	LogicalSize    int
	CompressedSize int
	Memcpyed       bool
	Checksum       bool
}

// Ratio returns LogicalSize / CompressedSize.
func (i Info) Ratio() float64 {
	if i.CompressedSize == 0 {
		return 0
	}

	return float64(i.LogicalSize) / float64(i.CompressedSize)
}

// Info returns a summary of the chunk header.
func (c *Chunk) Info() Info {
	return Info{
		Codec:          c.header.Codec,
		Level:          int(c.header.Level),
		Typesize:       int(c.header.Typesize),
		Filters:        c.header.Pipeline(),
		LogicalSize:    c.LogicalSize(),
		CompressedSize: c.CompressedSize(),
		Memcpyed:       c.header.IsMemcpyed(),
		Checksum:       c.header.HasChecksum(),
	}
}
