package compress

import (
	"encoding/binary"
	"errors"
	"math"
)

// Block codecs that do not record the decoded length themselves (LZ4, DEFLATE)
// prefix their output with it as a uvarint.

const binaryMaxVarintLen = binary.MaxVarintLen64

var errBadSizePrefix = errors.New("invalid size prefix")

func appendSizePrefix(dst []byte, n int) []byte {
	return binary.AppendUvarint(dst, uint64(n))
}

func readSizePrefix(src []byte) (int, []byte, error) {
	n, k := binary.Uvarint(src)
	if k <= 0 || n > math.MaxInt32 {
		return 0, nil, errBadSizePrefix
	}

	return int(n), src[k:], nil
}
