package filter

import (
	"fmt"

	"github.com/arloliu/schunk/endian"
	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/format"
)

// Mantissa widths of IEEE 754 binary32 and binary64.
const (
	Float32MantissaBits = 23
	Float64MantissaBits = 52
)

const (
	float32ExpMask = uint32(0xFF) << Float32MantissaBits
	float64ExpMask = uint64(0x7FF) << Float64MantissaBits
)

// TruncPrecFilter zeroes the low mantissa bits of floating point elements,
// keeping meta significant mantissa bits. It is LOSSY: the decoded value y of
// an element x satisfies |x - y| <= |x| * 2^-meta.
//
// Zeros, subnormals, infinities and NaNs pass through unchanged. Subnormals have
// no implicit leading bit, so truncating them would break the relative bound,
// and masking a NaN payload can turn it into an infinity.
//
// Supported typesizes are 4 (float32, meta <= 23) and 8 (float64, meta <= 52).
// A meta of 23 on float64 data keeps float32-equivalent precision.
type TruncPrecFilter struct{}

var (
	_ Filter        = TruncPrecFilter{}
	_ MetaValidator = TruncPrecFilter{}
)

// Type returns format.FilterTruncPrec.
func (TruncPrecFilter) Type() format.FilterType {
	return format.FilterTruncPrec
}

// Lossy returns true.
func (TruncPrecFilter) Lossy() bool {
	return true
}

// ValidateMeta checks that typesize is a float width and meta fits its mantissa.
func (TruncPrecFilter) ValidateMeta(typesize int, meta uint8) error {
	bits, ok := mantissaBits(typesize)
	if !ok {
		return fmt.Errorf("%w: precision truncation needs typesize 4 or 8, got %d", errs.ErrInvalidMetadata, typesize)
	}
	if int(meta) > bits {
		return fmt.Errorf("%w: %d significant bits requested, typesize %d holds %d", errs.ErrInvalidMetadata, meta, typesize, bits)
	}

	return nil
}

// Forward copies src into dst with the low mantissa bits cleared.
func (f TruncPrecFilter) Forward(typesize int, meta uint8, src, dst []byte) error {
	if err := checkSpan(typesize, src, dst); err != nil {
		return err
	}
	if err := f.ValidateMeta(typesize, meta); err != nil {
		return err
	}

	engine := endian.ChunkEngine()
	switch typesize {
	case 4:
		mask := ^uint32(0) << (Float32MantissaBits - int(meta))
		for i := 0; i < len(src); i += 4 {
			v := engine.Uint32(src[i:])
			if exp := v & float32ExpMask; exp != 0 && exp != float32ExpMask {
				v &= mask
			}
			engine.PutUint32(dst[i:], v)
		}
	case 8:
		mask := ^uint64(0) << (Float64MantissaBits - int(meta))
		for i := 0; i < len(src); i += 8 {
			v := engine.Uint64(src[i:])
			if exp := v & float64ExpMask; exp != 0 && exp != float64ExpMask {
				v &= mask
			}
			engine.PutUint64(dst[i:], v)
		}
	}

	return nil
}

// Reverse copies src into dst. The truncated bits cannot be recovered.
func (f TruncPrecFilter) Reverse(typesize int, meta uint8, src, dst []byte) error {
	if err := checkSpan(typesize, src, dst); err != nil {
		return err
	}
	if err := f.ValidateMeta(typesize, meta); err != nil {
		return err
	}
	copy(dst, src)

	return nil
}

func mantissaBits(typesize int) (int, bool) {
	switch typesize {
	case 4:
		return Float32MantissaBits, true
	case 8:
		return Float64MantissaBits, true
	default:
		return 0, false
	}
}
