// Package chunk implements the self-describing compressed record stored by a
// super-chunk.
//
// A chunk is a 32-byte Header followed by the codec payload. The header records
// the codec, level, typesize and the filter pipeline snapshot used at encode
// time, the logical (uncompressed) size, the payload size and an xxHash-based
// payload checksum. All multi-byte header fields are little-endian.
//
// Encoding runs the filter pipeline forward and then the codec. When the codec
// cannot shrink the data, or the level is 0, the unfiltered bytes are stored
// verbatim and the memcpyed flag is set, so a chunk never grows by more than
// HeaderSize bytes.
//
// Chunks are immutable and safe for concurrent Decode calls.
package chunk
