// Package errs defines the error values returned by schunk packages.
//
// Sentinel errors identify the failure kind and are matched with errors.Is.
// CodecError and FilterError identify the pipeline stage that failed and are
// matched with errors.As. BatchError reports every failed task of a batch call.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Usage errors.
var (
	ErrInvalidLength    = errors.New("buffer length does not match container chunk size")
	ErrIndexOutOfRange  = errors.New("chunk index out of range")
	ErrSizeMismatch     = errors.New("buffer size mismatch")
	ErrDestroyedHandle  = errors.New("super-chunk has been destroyed")
	ErrInvalidChunkSize = errors.New("invalid chunk size")
)

// Configuration errors.
var (
	ErrInvalidTypesize    = errors.New("invalid typesize")
	ErrInvalidLevel       = errors.New("invalid compression level")
	ErrInvalidThreadCount = errors.New("invalid thread count")
	ErrUnknownCodec       = errors.New("unknown codec")
	ErrUnknownFilter      = errors.New("unknown filter")
	ErrTooManyFilters     = errors.New("too many filters in pipeline")
	ErrDuplicateCodec     = errors.New("codec already registered")
	ErrDuplicateFilter    = errors.New("filter already registered")
)

// Filter errors.
var (
	ErrInvalidMetadata = errors.New("invalid filter metadata")
)

// Codec and chunk format errors.
var (
	ErrCorruptStream       = errors.New("corrupt compressed stream")
	ErrDestinationTooSmall = errors.New("destination buffer too small")
	ErrInvalidHeader       = errors.New("invalid chunk header")
)

// CodecError reports a failure inside a codec.
type CodecError struct {
	Codec string
	Op    string
	Err   error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("codec %s %s: %v", e.Codec, e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// FilterError reports a failure inside a filter of a pipeline.
type FilterError struct {
	Filter   string
	Position int // slot in the pipeline
	Reverse  bool
	Err      error
}

func (e *FilterError) Error() string {
	dir := "forward"
	if e.Reverse {
		dir = "reverse"
	}

	return fmt.Sprintf("filter %s (slot %d, %s): %v", e.Filter, e.Position, dir, e.Err)
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// TaskFailure is one failed entry of a batch operation.
type TaskFailure struct {
	Position int // position in the submitted batch
	Index    int // chunk index, -1 when the chunk was never committed
	Err      error
}

// BatchError reports the failed entries of a batch operation in submission order.
type BatchError struct {
	Op       string
	Failures []TaskFailure
}

func (e *BatchError) Error() string {
	if len(e.Failures) == 0 {
		return e.Op + ": batch failed"
	}

	var sb strings.Builder
	first := e.Failures[0]
	fmt.Fprintf(&sb, "%s: %d of batch failed, first at position %d", e.Op, len(e.Failures), first.Position)
	if first.Index >= 0 {
		fmt.Fprintf(&sb, " (chunk %d)", first.Index)
	}
	fmt.Fprintf(&sb, ": %v", first.Err)

	return sb.String()
}

// Unwrap returns every task error, first failure first.
func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}

	return out
}

// First returns the first failure in submission order.
func (e *BatchError) First() error {
	if len(e.Failures) == 0 {
		return nil
	}

	return e.Failures[0].Err
}

// Failed reports whether the batch entry at position failed.
func (e *BatchError) Failed(position int) bool {
	for _, f := range e.Failures {
		if f.Position == position {
			return true
		}
	}

	return false
}

// IsCodecError reports whether err was produced by a codec.
func IsCodecError(err error) bool {
	var ce *CodecError
	return errors.As(err, &ce)
}

// IsFilterError reports whether err was produced by a filter.
func IsFilterError(err error) bool {
	var fe *FilterError
	return errors.As(err, &fe)
}
