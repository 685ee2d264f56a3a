package renderer

import (
	"runtime"

	"github.com/alitto/pond/v2"
)

// WorkerPool bounds the number of tiles rendered concurrently, grounded
// on the teacher's pkg/renderer/worker_pool.go hand-rolled
// channel-backed pool (TileTask/TileResult over a fixed worker count),
// but built on alitto/pond/v2's goroutine pool instead of hand-rolling
// the worker loop and shutdown bookkeeping ourselves.
type WorkerPool struct {
	pool pond.Pool
}

// NewWorkerPool creates a pool with numWorkers concurrent slots; 0
// (or a negative count) uses runtime.NumCPU() slots.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{pool: pond.NewPool(numWorkers)}
}

// Submit queues fn to run on a pool goroutine; it never blocks once
// the pool has a free slot, matching the teacher's buffered-channel
// queueing semantics.
func (wp *WorkerPool) Submit(fn func()) {
	wp.pool.Submit(fn)
}

// Wait blocks until every submitted task has completed and then stops
// the pool (pond's StopAndWait). A stopped pool takes no further tasks,
// so each pass of the renderer submits to a fresh WorkerPool.
func (wp *WorkerPool) Wait() {
	wp.pool.StopAndWait()
}

// Running reports the number of in-flight tasks, used for progress
// reporting over internal/server.
func (wp *WorkerPool) Running() int {
	return wp.pool.Running()
}
