package compress

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/arloliu/schunk/format"
	"github.com/klauspost/compress/flate"
)

// flateWriterPools holds one writer pool per compression level (index 1..9).
var flateWriterPools [format.MaxLevel + 1]sync.Pool

func init() {
	for level := 1; level <= format.MaxLevel; level++ {
		lvl := level
		flateWriterPools[lvl].New = func() any {
			w, err := flate.NewWriter(nil, lvl)
			if err != nil {
				// levels 1..9 are always valid for flate.NewWriter
				panic(err)
			}

			return w
		}
	}
}

// FlateCodec provides DEFLATE compression. Levels map 1:1 to flate levels.
type FlateCodec struct{}

var _ Codec = (*FlateCodec)(nil)

// NewFlateCodec creates a new DEFLATE codec.
func NewFlateCodec() FlateCodec {
	return FlateCodec{}
}

// Type returns format.CodecFlate.
func (c FlateCodec) Type() format.CodecType {
	return format.CodecFlate
}

// Compress compresses src with a pooled flate.Writer.
func (c FlateCodec) Compress(level int, _ int, src []byte) ([]byte, error) {
	if err := checkLevel(format.CodecFlate, level); err != nil {
		return nil, err
	}
	if level == 0 || len(src) == 0 {
		return src, nil
	}

	buf := bytes.NewBuffer(appendSizePrefix(make([]byte, 0, len(src)/2+binaryMaxVarintLen), len(src)))

	wPool := &flateWriterPools[level]
	w, _ := wPool.Get().(*flate.Writer)
	defer wPool.Put(w)
	w.Reset(buf)

	if _, err := w.Write(src); err != nil {
		return nil, compressFailed(format.CodecFlate, err)
	}
	if err := w.Close(); err != nil {
		return nil, compressFailed(format.CodecFlate, err)
	}

	if buf.Len() >= len(src) {
		return nil, ErrIncompressible
	}

	return buf.Bytes(), nil
}

// Decompress decodes a DEFLATE stream produced by Compress into dst.
func (c FlateCodec) Decompress(src []byte, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}

	size, body, err := readSizePrefix(src)
	if err != nil {
		return 0, corruptStream(format.CodecFlate, err)
	}
	if size > len(dst) {
		return 0, destinationTooSmall(format.CodecFlate, size, len(dst))
	}

	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()

	if _, err := io.ReadFull(r, dst[:size]); err != nil {
		return 0, corruptStream(format.CodecFlate, err)
	}

	// The stream must end exactly at the declared size.
	var probe [1]byte
	if n, err := r.Read(probe[:]); n != 0 || !errors.Is(err, io.EOF) {
		if err == nil || errors.Is(err, io.EOF) {
			err = errors.New("stream longer than size prefix")
		}

		return 0, corruptStream(format.CodecFlate, err)
	}

	return size, nil
}
