package filter

import "github.com/arloliu/schunk/format"

// ShuffleFilter groups element bytes by position: all byte 0s first, then all
// byte 1s, and so on. Adjacent values of similar magnitude share their high
// bytes, which become long runs after shuffling. Lossless; metadata is ignored.
type ShuffleFilter struct{}

var _ Filter = ShuffleFilter{}

// Type returns format.FilterShuffle.
func (ShuffleFilter) Type() format.FilterType {
	return format.FilterShuffle
}

// Lossy returns false.
func (ShuffleFilter) Lossy() bool {
	return false
}

// Forward transposes src (n elements of typesize bytes) into typesize byte planes.
func (ShuffleFilter) Forward(typesize int, _ uint8, src, dst []byte) error {
	if err := checkSpan(typesize, src, dst); err != nil {
		return err
	}
	if typesize == 1 {
		copy(dst, src)
		return nil
	}

	n := len(src) / typesize
	for i := 0; i < n; i++ {
		elem := src[i*typesize : (i+1)*typesize]
		for b, v := range elem {
			dst[b*n+i] = v
		}
	}

	return nil
}

// Reverse restores element order from byte planes.
func (ShuffleFilter) Reverse(typesize int, _ uint8, src, dst []byte) error {
	if err := checkSpan(typesize, src, dst); err != nil {
		return err
	}
	if typesize == 1 {
		copy(dst, src)
		return nil
	}

	n := len(src) / typesize
	for i := 0; i < n; i++ {
		elem := dst[i*typesize : (i+1)*typesize]
		for b := range elem {
			elem[b] = src[b*n+i]
		}
	}

	return nil
}
