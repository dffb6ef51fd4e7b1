package chunk

import (
	"fmt"

	"github.com/arloliu/schunk/endian"
	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/filter"
	"github.com/arloliu/schunk/format"
)

// Header is the fixed-size header at the start of every chunk.
//
// Layout (little-endian):
//
//	0-1   options (magic in bits 4-15, flags in bits 0-3)
//	2     codec type
//	3     compression level
//	4     typesize
//	5     filter count
//	6-11  filter types
//	12-17 filter metas
//	18-19 reserved
//	20-23 logical size
//	24-27 payload size
//	28-31 payload checksum
type Header struct {
	// Options is a packed field for flags and magic number.
	// Bit 0 is set when the payload holds the logical bytes verbatim.
	// Bit 1 is set when Checksum is valid.
	// Bit 2-3 are reserved, must be 0.
	// Bit 4-15 are the magic number (0xBC10 for version 1).
	Options uint16 // byte offset 0-1

	Codec    format.CodecType // byte offset 2
	Level    uint8            // byte offset 3
	Typesize uint8            // byte offset 4

	// FilterCount is the number of used filter slots.
	FilterCount uint8 // byte offset 5
	// FilterTypes and FilterMetas hold the pipeline snapshot in forward order.
	FilterTypes [filter.MaxFilters]format.FilterType // byte offset 6-11
	FilterMetas [filter.MaxFilters]uint8             // byte offset 12-17

	LogicalSize uint32 // byte offset 20-23
	PayloadSize uint32 // byte offset 24-27
	Checksum    uint32 // byte offset 28-31
}

// NewHeader creates a header carrying the version 1 magic number.
func NewHeader() Header {
	return Header{Options: MagicChunkV1Opt}
}

// IsMemcpyed returns whether the payload is stored verbatim.
func (h Header) IsMemcpyed() bool {
	return h.Options&MemcpyedMask != 0
}

// SetMemcpyed sets or clears the stored-verbatim flag.
func (h *Header) SetMemcpyed(enabled bool) {
	if enabled {
		h.Options |= MemcpyedMask
	} else {
		h.Options &^= MemcpyedMask
	}
}

// HasChecksum returns whether the header carries a payload checksum.
func (h Header) HasChecksum() bool {
	return h.Options&ChecksumMask != 0
}

// SetChecksum stores sum and sets the checksum-present flag.
func (h *Header) SetChecksum(sum uint32) {
	h.Options |= ChecksumMask
	h.Checksum = sum
}

// MagicNumber returns the magic number from the options field.
func (h Header) MagicNumber() uint16 {
	return h.Options & MagicNumberMask
}

// Pipeline returns the filter snapshot recorded in the header.
func (h Header) Pipeline() filter.Pipeline {
	n := int(h.FilterCount)
	if n > filter.MaxFilters {
		n = filter.MaxFilters
	}

	p := make(filter.Pipeline, n)
	for i := range p {
		p[i] = filter.Slot{Type: h.FilterTypes[i], Meta: h.FilterMetas[i]}
	}

	return p
}

// SetPipeline records the active slots of p.
func (h *Header) SetPipeline(p filter.Pipeline) error {
	active := p.Active()
	if len(active) > filter.MaxFilters {
		return fmt.Errorf("%w: %d > %d", errs.ErrTooManyFilters, len(active), filter.MaxFilters)
	}

	h.FilterTypes = [filter.MaxFilters]format.FilterType{}
	h.FilterMetas = [filter.MaxFilters]uint8{}
	for i, slot := range active {
		h.FilterTypes[i] = slot.Type
		h.FilterMetas[i] = slot.Meta
	}
	h.FilterCount = uint8(len(active)) //nolint:gosec // bounded by MaxFilters

	return nil
}

// Validate checks the magic number, reserved bits and size fields.
func (h Header) Validate() error {
	if h.MagicNumber() != MagicChunkV1Opt {
		return fmt.Errorf("%w: magic %#04x", errs.ErrInvalidHeader, h.MagicNumber())
	}
	if h.Options&ReservedBitsMask != 0 {
		return fmt.Errorf("%w: reserved bits set", errs.ErrInvalidHeader)
	}
	if h.Typesize == 0 {
		return fmt.Errorf("%w: zero typesize", errs.ErrInvalidHeader)
	}
	if int(h.FilterCount) > filter.MaxFilters {
		return fmt.Errorf("%w: %d filters", errs.ErrInvalidHeader, h.FilterCount)
	}
	if h.LogicalSize > MaxLogicalSize {
		return fmt.Errorf("%w: logical size %d", errs.ErrInvalidHeader, h.LogicalSize)
	}
	if h.LogicalSize%uint32(h.Typesize) != 0 {
		return fmt.Errorf("%w: logical size %d is not a multiple of typesize %d", errs.ErrInvalidHeader, h.LogicalSize, h.Typesize)
	}
	if h.IsMemcpyed() && (h.PayloadSize != h.LogicalSize || h.FilterCount != 0) {
		return fmt.Errorf("%w: verbatim chunk with payload %d, logical %d, %d filters",
			errs.ErrInvalidHeader, h.PayloadSize, h.LogicalSize, h.FilterCount)
	}

	return nil
}

// Parse parses the header from a byte slice of exactly HeaderSize bytes.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: %d bytes, want %d", errs.ErrInvalidHeader, len(data), HeaderSize)
	}

	engine := endian.ChunkEngine()

	h.Options = engine.Uint16(data[optionsOffset:])
	h.Codec = format.CodecType(data[codecOffset])
	h.Level = data[levelOffset]
	h.Typesize = data[typesizeOffset]
	h.FilterCount = data[filterCountOffset]
	for i := range filter.MaxFilters {
		h.FilterTypes[i] = format.FilterType(data[filterTypesOffset+i])
		h.FilterMetas[i] = data[filterMetasOffset+i]
	}
	h.LogicalSize = engine.Uint32(data[logicalSizeOffset:])
	h.PayloadSize = engine.Uint32(data[payloadSizeOffset:])
	h.Checksum = engine.Uint32(data[checksumOffset:])

	return h.Validate()
}

// Bytes serializes the header into a new HeaderSize byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.PutBytes(b)

	return b
}

// PutBytes serializes the header into the first HeaderSize bytes of b.
func (h Header) PutBytes(b []byte) {
	_ = b[HeaderSize-1]

	engine := endian.ChunkEngine()

	engine.PutUint16(b[optionsOffset:], h.Options)
	b[codecOffset] = uint8(h.Codec)
	b[levelOffset] = h.Level
	b[typesizeOffset] = h.Typesize
	b[filterCountOffset] = h.FilterCount
	for i := range filter.MaxFilters {
		b[filterTypesOffset+i] = uint8(h.FilterTypes[i])
		b[filterMetasOffset+i] = h.FilterMetas[i]
	}
	b[reservedOffset] = 0
	b[reservedOffset+1] = 0
	engine.PutUint32(b[logicalSizeOffset:], h.LogicalSize)
	engine.PutUint32(b[payloadSizeOffset:], h.PayloadSize)
	engine.PutUint32(b[checksumOffset:], h.Checksum)
}

// ParseHeader parses a Header from the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, want at least %d", errs.ErrInvalidHeader, len(data), HeaderSize)
	}

	var h Header
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}
