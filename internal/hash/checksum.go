package hash

import "github.com/cespare/xxhash/v2"

// Checksum returns the low 32 bits of the xxHash64 of data.
// It is the integrity value stored in every chunk header.
func Checksum(data []byte) uint32 {
	return uint32(xxhash.Sum64(data))
}

// Sum64 computes the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}
