// Package endian provides the byte order used by schunk chunk records and filters.
//
// Chunk headers and every typed element a filter touches are little-endian,
// independent of the host. EndianEngine combines binary.ByteOrder and
// binary.AppendByteOrder so callers can both read and append with one value.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// ChunkEngine returns the engine used for chunk headers and filter element access.
func ChunkEngine() EndianEngine {
	return binary.LittleEndian
}
