package superchunk

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arloliu/schunk/chunk"
	"github.com/arloliu/schunk/errs"
	"github.com/arloliu/schunk/internal/options"
	"github.com/arloliu/schunk/internal/workerpool"
	"github.com/arloliu/schunk/metrics"
)

// SuperChunk is an append-only container of equally sized compressed chunks.
//
// Appends must be serialized by the caller; the container serializes them anyway
// so a racing append never corrupts state. Decompression of committed chunks is
// safe from any number of goroutines, including while an append is running.
type SuperChunk struct {
	name      string
	cparams   CParams
	dparams   DParams
	chunkSize int
	chunkCfg  chunk.Config

	logger  *zap.Logger
	metrics *metrics.Recorder

	cpool *workerpool.Pool
	dpool *workerpool.Pool

	appendMu sync.Mutex

	mu        sync.RWMutex
	chunks    []*chunk.Chunk
	nbytes    int64
	cbytes    int64
	destroyed bool
}

// New creates an empty container holding chunks of chunkSize logical bytes.
//
// chunkSize must be positive and a multiple of cparams.Typesize. The worker
// pools for cparams.Threads and dparams.Threads are shared with every other
// container using the same sizes.
func New(cparams CParams, dparams DParams, chunkSize int, opts ...Option) (*SuperChunk, error) {
	if err := cparams.Validate(); err != nil {
		return nil, err
	}
	if err := dparams.Validate(); err != nil {
		return nil, err
	}
	if chunkSize <= 0 || chunkSize > chunk.MaxLogicalSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrInvalidChunkSize, chunkSize)
	}
	if chunkSize%cparams.Typesize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of typesize %d", errs.ErrInvalidChunkSize, chunkSize, cparams.Typesize)
	}

	o := defaultOptions()
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}

	cpool, err := workerpool.Acquire(cparams.Threads)
	if err != nil {
		return nil, err
	}
	dpool, err := workerpool.Acquire(dparams.Threads)
	if err != nil {
		cpool.Release()
		return nil, err
	}

	cparams = cparams.clone()
	sc := &SuperChunk{
		name:      o.Name,
		cparams:   cparams,
		dparams:   dparams,
		chunkSize: chunkSize,
		chunkCfg:  cparams.chunkConfig(),
		logger:    o.Logger.With(zap.String("container", o.Name)),
		metrics:   o.Metrics,
		cpool:     cpool,
		dpool:     dpool,
	}

	sc.logger.Debug("container created",
		zap.Int("typesize", cparams.Typesize),
		zap.Stringer("codec", cparams.Codec),
		zap.Int("level", cparams.Level),
		zap.Int("filters", len(cparams.Filters.Active())),
		zap.Int("chunk_size", chunkSize),
		zap.Int("cthreads", cparams.Threads),
		zap.Int("dthreads", dparams.Threads),
	)

	return sc, nil
}

// Name returns the container name.
func (s *SuperChunk) Name() string {
	return s.name
}

// ChunkSize returns the logical size of every chunk.
func (s *SuperChunk) ChunkSize() int {
	return s.chunkSize
}

// CParams returns a copy of the compression parameters.
func (s *SuperChunk) CParams() CParams {
	return s.cparams.clone()
}

// DParams returns the decompression parameters.
func (s *SuperChunk) DParams() DParams {
	return s.dparams
}

// Append compresses buf into a new chunk and commits it.
//
// len(buf) must equal ChunkSize. It returns the new chunk index and its
// compressed size. A failed Append leaves the container unchanged.
func (s *SuperChunk) Append(buf []byte) (int, int, error) {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	if err := s.checkAlive(); err != nil {
		return -1, 0, err
	}

	start := time.Now()
	c, err := s.encode(buf)
	if err != nil {
		s.metrics.ObserveError(s.name, metrics.OpAppend, err)
		return -1, 0, err
	}

	index := s.commit(c)
	s.metrics.ObserveEncodeDuration(s.name, time.Since(start))
	s.logger.Debug("chunk appended",
		zap.Int("index", index),
		zap.Int("csize", c.CompressedSize()),
		zap.Bool("verbatim", c.Header().IsMemcpyed()),
	)

	return index, c.CompressedSize(), nil
}

// AppendBatch compresses every buffer on the compression pool and commits them
// in submission order.
//
// The commit is atomic: if any buffer fails, nothing is added and the returned
// *errs.BatchError lists the failed positions, first failure first. On success
// it returns the index of the first new chunk.
func (s *SuperChunk) AppendBatch(bufs [][]byte) (int, error) {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	if err := s.checkAlive(); err != nil {
		return -1, err
	}
	if len(bufs) == 0 {
		s.mu.RLock()
		defer s.mu.RUnlock()

		return len(s.chunks), nil
	}

	start := time.Now()
	encoded := make([]*chunk.Chunk, len(bufs))
	results := s.cpool.Run(len(bufs), func(i int) error {
		c, err := s.encode(bufs[i])
		if err != nil {
			return err
		}
		encoded[i] = c

		return nil
	})

	if failures := collectFailures(results, func(int) int { return -1 }); len(failures) > 0 {
		err := &errs.BatchError{Op: "append batch", Failures: failures}
		s.metrics.ObserveError(s.name, metrics.OpAppend, failures[0].Err)
		s.logger.Warn("batch append rejected",
			zap.Int("batch", len(bufs)),
			zap.Int("failed", len(failures)),
			zap.Error(failures[0].Err),
		)

		return -1, err
	}

	first := s.commit(encoded...)
	s.metrics.ObserveEncodeDuration(s.name, time.Since(start))
	s.logger.Debug("batch appended", zap.Int("first", first), zap.Int("count", len(encoded)))

	return first, nil
}

// AppendChunk validates an encoded chunk produced by this package, copies it and
// commits it. Its logical size must equal ChunkSize.
func (s *SuperChunk) AppendChunk(raw []byte) (int, error) {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	if err := s.checkAlive(); err != nil {
		return -1, err
	}

	c, err := chunk.FromBytes(raw)
	if err == nil && c.LogicalSize() != s.chunkSize {
		err = fmt.Errorf("%w: chunk holds %d bytes, container chunk size is %d", errs.ErrInvalidLength, c.LogicalSize(), s.chunkSize)
	}
	if err != nil {
		s.metrics.ObserveError(s.name, metrics.OpAppend, err)
		return -1, err
	}

	index := s.commit(c)
	s.logger.Debug("raw chunk appended", zap.Int("index", index), zap.Int("csize", c.CompressedSize()))

	return index, nil
}

// DecompressChunk decodes chunk index into dst and returns the bytes written.
//
// len(dst) must equal ChunkSize. dst is left untouched on any error.
func (s *SuperChunk) DecompressChunk(index int, dst []byte) (int, error) {
	start := time.Now()

	c, err := s.chunkAt(index)
	if err == nil {
		var n int
		if n, err = c.Decode(dst); err == nil {
			s.metrics.ObserveDecompress(s.name, 1)
			s.metrics.ObserveDecodeDuration(s.name, time.Since(start))

			return n, nil
		}
	}

	s.metrics.ObserveError(s.name, metrics.OpDecompress, err)

	return 0, err
}

// DecompressChunks decodes indices[i] into dsts[i] for every i on the
// decompression pool and blocks until all of them finished.
//
// Successful entries are written even when others fail. Failed entries leave
// their destination untouched and are listed in the returned *errs.BatchError.
func (s *SuperChunk) DecompressChunks(indices []int, dsts [][]byte) error {
	if len(indices) != len(dsts) {
		return fmt.Errorf("%w: %d indices, %d destinations", errs.ErrSizeMismatch, len(indices), len(dsts))
	}
	if err := s.checkAlive(); err != nil {
		return err
	}
	if len(indices) == 0 {
		return nil
	}

	start := time.Now()
	results := s.dpool.Run(len(indices), func(i int) error {
		c, err := s.chunkAt(indices[i])
		if err != nil {
			return err
		}
		_, err = c.Decode(dsts[i])

		return err
	})

	failures := collectFailures(results, func(pos int) int {
		if s.inRange(indices[pos]) {
			return indices[pos]
		}

		return -1
	})
	s.metrics.ObserveDecompress(s.name, len(indices)-len(failures))
	s.metrics.ObserveDecodeDuration(s.name, time.Since(start))
	if len(failures) == 0 {
		return nil
	}

	s.metrics.ObserveError(s.name, metrics.OpDecompress, failures[0].Err)
	s.logger.Warn("batch decompress failed",
		zap.Int("batch", len(indices)),
		zap.Int("failed", len(failures)),
		zap.Error(failures[0].Err),
	)

	return &errs.BatchError{Op: "decompress batch", Failures: failures}
}

// ChunkBytes returns a copy of the encoded chunk at index.
func (s *SuperChunk) ChunkBytes(index int) ([]byte, error) {
	c, err := s.chunkAt(index)
	if err != nil {
		return nil, err
	}

	return c.Bytes(), nil
}

// ChunkInfo returns the header summary of the chunk at index.
func (s *SuperChunk) ChunkInfo(index int) (chunk.Info, error) {
	c, err := s.chunkAt(index)
	if err != nil {
		return chunk.Info{}, err
	}

	return c.Info(), nil
}

// Stats returns a snapshot of the container counters.
func (s *SuperChunk) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return Stats{}, errs.ErrDestroyedHandle
	}

	return Stats{NBytes: s.nbytes, CBytes: s.cbytes, NChunks: len(s.chunks)}, nil
}

// Destroy releases every chunk and the container's worker pool references.
// Any later call on the container, Destroy included, fails with
// errs.ErrDestroyedHandle.
func (s *SuperChunk) Destroy() error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return errs.ErrDestroyedHandle
	}
	s.destroyed = true
	n := len(s.chunks)
	s.chunks = nil
	s.nbytes, s.cbytes = 0, 0
	s.mu.Unlock()

	s.cpool.Release()
	s.dpool.Release()
	s.logger.Debug("container destroyed", zap.Int("chunks", n))

	return nil
}

func (s *SuperChunk) encode(buf []byte) (*chunk.Chunk, error) {
	if len(buf) != s.chunkSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidLength, len(buf), s.chunkSize)
	}

	return chunk.Encode(buf, s.chunkCfg)
}

// commit appends encoded chunks under the write lock and returns the index of
// the first one.
func (s *SuperChunk) commit(chunks ...*chunk.Chunk) int {
	s.mu.Lock()
	first := len(s.chunks)
	for _, c := range chunks {
		s.chunks = append(s.chunks, c)
		s.nbytes += int64(c.LogicalSize())
		s.cbytes += int64(c.CompressedSize())
	}
	s.mu.Unlock()

	for _, c := range chunks {
		s.metrics.ObserveAppend(s.name, c.LogicalSize(), c.CompressedSize(), c.Header().IsMemcpyed())
	}

	return first
}

func (s *SuperChunk) checkAlive() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return errs.ErrDestroyedHandle
	}

	return nil
}

func (s *SuperChunk) chunkAt(index int) (*chunk.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, errs.ErrDestroyedHandle
	}
	if index < 0 || index >= len(s.chunks) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, index, len(s.chunks))
	}

	return s.chunks[index], nil
}

func (s *SuperChunk) inRange(index int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return index >= 0 && index < len(s.chunks)
}

func collectFailures(results []error, indexOf func(pos int) int) []errs.TaskFailure {
	var failures []errs.TaskFailure
	for pos, err := range results {
		if err != nil {
			failures = append(failures, errs.TaskFailure{Position: pos, Index: indexOf(pos), Err: err})
		}
	}

	return failures
}
