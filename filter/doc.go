// Package filter provides the reversible, length-preserving transforms applied to
// chunk bytes before compression.
//
// A Pipeline holds up to MaxFilters (kind, metadata) slots. Encoding runs each
// filter's Forward in slot order; decoding runs Reverse in the opposite order.
// Filters never change the length of the data, and every span must be a whole
// number of typesize elements.
//
// Built-in filters:
//   - ShuffleFilter (format.FilterShuffle): byte planes, lossless
//   - BitShuffleFilter (format.FilterBitShuffle): bit planes, lossless
//   - DeltaFilter (format.FilterDelta): XOR with the previous element, lossless
//   - TruncPrecFilter (format.FilterTruncPrec): mantissa truncation, lossy
//
// Errors are reported as *errs.FilterError wrapping errs.ErrInvalidMetadata,
// errs.ErrSizeMismatch or errs.ErrInvalidTypesize.
package filter
