package pool

import "sync"

// Scratch buffer sizing for chunk encode/decode.
const (
	ScratchDefaultSize  = 1024 * 256       // 256KiB
	ScratchMaxThreshold = 1024 * 1024 * 16 // 16MiB
)

// ByteBuffer is a reusable byte slice holder.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new empty ByteBuffer with the given capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Resize sets the buffer length to n, reallocating when the capacity is too small.
// Contents are unspecified after a reallocation.
func (bb *ByteBuffer) Resize(n int) []byte {
	if n < 0 {
		panic("Resize: negative length")
	}

	if cap(bb.B) < n {
		bb.B = make([]byte, n)
		return bb.B
	}

	bb.B = bb.B[:n]

	return bb.B
}

// ByteBufferPool is a sync.Pool of ByteBuffers.
//
// Buffers whose capacity grew beyond maxThreshold are dropped on Put so a single
// oversized chunk does not pin memory for the life of the process.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool producing buffers of defaultSize capacity.
// A maxThreshold of 0 disables the size check.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var scratchPool = NewByteBufferPool(ScratchDefaultSize, ScratchMaxThreshold)

// GetScratch returns a pooled buffer resized to n bytes.
func GetScratch(n int) *ByteBuffer {
	bb := scratchPool.Get()
	bb.Resize(n)

	return bb
}

// PutScratch returns a buffer obtained from GetScratch.
func PutScratch(bb *ByteBuffer) {
	scratchPool.Put(bb)
}
