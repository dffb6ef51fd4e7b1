package filter

import "github.com/arloliu/schunk/format"

// BitShuffleFilter transposes element bits: bit j of byte b of every element is
// gathered into bit plane b*8+j. Planes are built over the largest multiple of 8
// elements; the remaining elements are copied unchanged after the planes.
// Lossless; metadata is ignored.
type BitShuffleFilter struct{}

var _ Filter = BitShuffleFilter{}

// Type returns format.FilterBitShuffle.
func (BitShuffleFilter) Type() format.FilterType {
	return format.FilterBitShuffle
}

// Lossy returns false.
func (BitShuffleFilter) Lossy() bool {
	return false
}

// Forward writes the bit planes of src into dst.
func (BitShuffleFilter) Forward(typesize int, _ uint8, src, dst []byte) error {
	if err := checkSpan(typesize, src, dst); err != nil {
		return err
	}

	n := len(src) / typesize
	aligned := n - n%8
	planeBytes := aligned / 8
	body := aligned * typesize

	clear(dst[:body])
	for i := 0; i < aligned; i++ {
		bit := byte(1) << (i % 8)
		col := i / 8
		for b := 0; b < typesize; b++ {
			v := src[i*typesize+b]
			for j := 0; j < 8; j++ {
				if v&(1<<j) != 0 {
					dst[(b*8+j)*planeBytes+col] |= bit
				}
			}
		}
	}
	copy(dst[body:], src[body:])

	return nil
}

// Reverse rebuilds elements from bit planes.
func (BitShuffleFilter) Reverse(typesize int, _ uint8, src, dst []byte) error {
	if err := checkSpan(typesize, src, dst); err != nil {
		return err
	}

	n := len(src) / typesize
	aligned := n - n%8
	planeBytes := aligned / 8
	body := aligned * typesize

	clear(dst[:body])
	for i := 0; i < aligned; i++ {
		bit := byte(1) << (i % 8)
		col := i / 8
		for b := 0; b < typesize; b++ {
			var v byte
			for j := 0; j < 8; j++ {
				if src[(b*8+j)*planeBytes+col]&bit != 0 {
					v |= 1 << j
				}
			}
			dst[i*typesize+b] = v
		}
	}
	copy(dst[body:], src[body:])

	return nil
}
