package chunk

import (
	"math"

	"github.com/arloliu/schunk/filter"
)

const (
	// Bit masks of the options field
	MemcpyedMask     = 0x0001 // Mask for the stored-verbatim bit (bit 0)
	ChecksumMask     = 0x0002 // Mask for the checksum-present bit (bit 1)
	ReservedBitsMask = 0x000C // Mask for reserved bits (bits 2-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicChunkV1Opt is the version 1 magic number of the chunk format.
	MagicChunkV1Opt = 0xBC10
)

// Header field offsets and sizes.
const (
	HeaderSize        = 32 // fixed header size in bytes
	optionsOffset     = 0
	codecOffset       = 2
	levelOffset       = 3
	typesizeOffset    = 4
	filterCountOffset = 5
	filterTypesOffset = 6
	filterMetasOffset = filterTypesOffset + filter.MaxFilters
	reservedOffset    = filterMetasOffset + filter.MaxFilters
	logicalSizeOffset = 20
	payloadSizeOffset = 24
	checksumOffset    = 28

	MaxLogicalSize = math.MaxInt32 // largest logical size a chunk may hold
	MaxTypesize    = math.MaxUint8
)
