// Package superchunk implements an append-only, in-memory container of
// compressed chunks.
//
// Every chunk holds exactly ChunkSize logical bytes. Appending runs the
// container's filter pipeline and codec; decompressing uses the snapshot
// recorded in each chunk, so the container parameters only matter for new
// chunks. Chunk indices are assigned in append order and never change.
//
// Batch operations (AppendBatch, DecompressChunks) fan out over process-wide
// worker pools sized by CParams.Threads and DParams.Threads. Results land in
// per-task slots, so the output never depends on the thread count.
//
// Example:
//
//	sc, err := superchunk.New(superchunk.DefaultCParams(), superchunk.DefaultDParams(), 1600)
//	if err != nil {
//	    return err
//	}
//	defer sc.Destroy()
//
//	idx, _, err := sc.Append(buf)
//	...
//	_, err = sc.DecompressChunk(idx, dst)
package superchunk
