package filter

import "github.com/arloliu/schunk/format"

// DeltaFilter replaces each element with its XOR against the previous element.
// Slowly varying series turn into mostly-zero high bytes. The first element is
// kept as is. Lossless; metadata is ignored.
type DeltaFilter struct{}

var _ Filter = DeltaFilter{}

// Type returns format.FilterDelta.
func (DeltaFilter) Type() format.FilterType {
	return format.FilterDelta
}

// Lossy returns false.
func (DeltaFilter) Lossy() bool {
	return false
}

// Forward XOR-encodes src into dst.
func (DeltaFilter) Forward(typesize int, _ uint8, src, dst []byte) error {
	if err := checkSpan(typesize, src, dst); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}

	copy(dst[:typesize], src[:typesize])
	for i := typesize; i < len(src); i++ {
		dst[i] = src[i] ^ src[i-typesize]
	}

	return nil
}

// Reverse XOR-decodes src into dst. Each element depends on the decoded
// previous one, so the loop reads back from dst.
func (DeltaFilter) Reverse(typesize int, _ uint8, src, dst []byte) error {
	if err := checkSpan(typesize, src, dst); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}

	copy(dst[:typesize], src[:typesize])
	for i := typesize; i < len(src); i++ {
		dst[i] = src[i] ^ dst[i-typesize]
	}

	return nil
}
