package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/format"
)

// ErrIncompressible is returned by Compress when the encoded form would not be
// smaller than the input. Chunk encoding falls back to verbatim storage on it.
var ErrIncompressible = errors.New("data is incompressible")

// Compressor compresses one chunk worth of filtered bytes.
type Compressor interface {
	// Compress compresses src at the given level (format.MinLevel..format.MaxLevel).
	//
	// typesize is the element width of src. It is a hint: implementations may use it
	// to tune their match finder, the built-in codecs ignore it.
	//
	// Level 0 must return src unchanged and never fail. The returned slice may alias
	// src; callers copy it into their own storage.
	Compress(level int, typesize int, src []byte) ([]byte, error)
}

// Decompressor restores bytes produced by the matching Compressor.
type Decompressor interface {
	// Decompress decodes src into dst and returns the number of bytes written.
	//
	// Error conditions:
	//   - errs.ErrDestinationTooSmall if len(dst) is less than the size recorded in src
	//   - errs.ErrCorruptStream if src is malformed
	//
	// Errors are returned as *errs.CodecError.
	Decompress(src []byte, dst []byte) (int, error)
}

// Codec combines compression and decompression for one codec id.
//
// Implementations must be safe for concurrent use: one Codec value serves every
// worker of every container.
type Codec interface {
	Type() format.CodecType
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CodecType]Codec{
	format.CodecNone:  NewNoOpCodec(),
	format.CodecZstd:  NewZstdCodec(),
	format.CodecS2:    NewS2Codec(),
	format.CodecLZ4:   NewLZ4Codec(),
	format.CodecLZ4HC: NewLZ4HCCodec(),
	format.CodecFlate: NewFlateCodec(),
}

var (
	customMu     sync.RWMutex
	customCodecs = map[format.CodecType]Codec{}
)

// GetCodec returns the codec registered for codecType.
func GetCodec(codecType format.CodecType) (Codec, error) {
	if codec, ok := builtinCodecs[codecType]; ok {
		return codec, nil
	}

	customMu.RLock()
	codec, ok := customCodecs[codecType]
	customMu.RUnlock()
	if ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnknownCodec, codecType)
}

// Register makes a custom codec available to containers and chunk decoding.
//
// Custom codec ids must be >= format.CodecCustom; built-in ids cannot be replaced.
func Register(codec Codec) error {
	t := codec.Type()
	if t < format.CodecCustom {
		return fmt.Errorf("%w: custom codec id %#x below %#x", errs.ErrUnknownCodec, uint8(t), uint8(format.CodecCustom))
	}

	customMu.Lock()
	defer customMu.Unlock()

	if _, ok := customCodecs[t]; ok {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateCodec, t)
	}
	customCodecs[t] = codec

	return nil
}

// Unregister removes a custom codec. Chunks encoded with it can no longer be decoded.
func Unregister(codecType format.CodecType) {
	customMu.Lock()
	delete(customCodecs, codecType)
	customMu.Unlock()
}

// ValidateLevel checks that level is within format.MinLevel..format.MaxLevel.
func ValidateLevel(level int) error {
	if level < format.MinLevel || level > format.MaxLevel {
		return fmt.Errorf("%w: %d not in [%d, %d]", errs.ErrInvalidLevel, level, format.MinLevel, format.MaxLevel)
	}

	return nil
}

func corruptStream(codec format.CodecType, cause error) error {
	err := errs.ErrCorruptStream
	if cause != nil {
		err = fmt.Errorf("%w: %w", errs.ErrCorruptStream, cause)
	}

	return &errs.CodecError{Codec: codec.String(), Op: "decompress", Err: err}
}

func destinationTooSmall(codec format.CodecType, need, have int) error {
	return &errs.CodecError{
		Codec: codec.String(),
		Op:    "decompress",
		Err:   fmt.Errorf("%w: need %d bytes, have %d", errs.ErrDestinationTooSmall, need, have),
	}
}

func compressFailed(codec format.CodecType, cause error) error {
	return &errs.CodecError{Codec: codec.String(), Op: "compress", Err: cause}
}

// checkLevel validates level for a Compress call.
func checkLevel(codec format.CodecType, level int) error {
	if err := ValidateLevel(level); err != nil {
		return compressFailed(codec, err)
	}

	return nil
}
