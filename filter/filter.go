package filter

import (
	"fmt"
	"sync"

	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/format"
)

// Direction selects the transform applied by a filter.
type Direction uint8

const (
	Forward Direction = iota // Forward runs before compression.
	Reverse                  // Reverse runs after decompression.
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}

	return "forward"
}

// Filter is a length-preserving transform over typed elements.
//
// src and dst always have the same length and never overlap. Implementations
// must be safe for concurrent use.
type Filter interface {
	// Type returns the id stored in chunk pipeline snapshots.
	Type() format.FilterType

	// Forward transforms src into dst before compression.
	Forward(typesize int, meta uint8, src, dst []byte) error

	// Reverse undoes Forward after decompression. For lossy filters Reverse only
	// restores the layout; the precision dropped by Forward is gone.
	Reverse(typesize int, meta uint8, src, dst []byte) error

	// Lossy reports whether Reverse(Forward(x)) may differ from x.
	Lossy() bool
}

// MetaValidator is implemented by filters that constrain their metadata.
type MetaValidator interface {
	ValidateMeta(typesize int, meta uint8) error
}

var builtinFilters = map[format.FilterType]Filter{
	format.FilterShuffle:    ShuffleFilter{},
	format.FilterBitShuffle: BitShuffleFilter{},
	format.FilterDelta:      DeltaFilter{},
	format.FilterTruncPrec:  TruncPrecFilter{},
}

var (
	customMu      sync.RWMutex
	customFilters = map[format.FilterType]Filter{}
)

// Get returns the filter registered for filterType.
func Get(filterType format.FilterType) (Filter, error) {
	if f, ok := builtinFilters[filterType]; ok {
		return f, nil
	}

	customMu.RLock()
	f, ok := customFilters[filterType]
	customMu.RUnlock()
	if ok {
		return f, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnknownFilter, filterType)
}

// Register makes a custom filter available to pipelines.
// Custom filter ids must be >= format.FilterCustom.
func Register(f Filter) error {
	t := f.Type()
	if t < format.FilterCustom {
		return fmt.Errorf("%w: custom filter id %#x below %#x", errs.ErrUnknownFilter, uint8(t), uint8(format.FilterCustom))
	}

	customMu.Lock()
	defer customMu.Unlock()

	if _, ok := customFilters[t]; ok {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateFilter, t)
	}
	customFilters[t] = f

	return nil
}

// Unregister removes a custom filter.
func Unregister(filterType format.FilterType) {
	customMu.Lock()
	delete(customFilters, filterType)
	customMu.Unlock()
}

// Apply runs one filter in the given direction, validating metadata first.
// Failures are returned as *errs.FilterError.
func Apply(f Filter, dir Direction, typesize int, meta uint8, src, dst []byte) error {
	return run(f, 0, dir, typesize, meta, src, dst)
}

func run(f Filter, position int, dir Direction, typesize int, meta uint8, src, dst []byte) error {
	var err error
	if mv, ok := f.(MetaValidator); ok {
		err = mv.ValidateMeta(typesize, meta)
	}
	if err == nil {
		if dir == Reverse {
			err = f.Reverse(typesize, meta, src, dst)
		} else {
			err = f.Forward(typesize, meta, src, dst)
		}
	}
	if err != nil {
		return &errs.FilterError{
			Filter:   f.Type().String(),
			Position: position,
			Reverse:  dir == Reverse,
			Err:      err,
		}
	}

	return nil
}

// checkSpan validates the common filter preconditions.
func checkSpan(typesize int, src, dst []byte) error {
	if typesize <= 0 {
		return fmt.Errorf("%w: %d", errs.ErrInvalidTypesize, typesize)
	}
	if len(src) != len(dst) {
		return fmt.Errorf("%w: src %d bytes, dst %d bytes", errs.ErrSizeMismatch, len(src), len(dst))
	}
	if len(src)%typesize != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of typesize %d", errs.ErrSizeMismatch, len(src), typesize)
	}

	return nil
}
