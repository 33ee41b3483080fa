package cluster

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/imagedupe/phashcluster/pkg/phash"
)

// WorkerPool is a fixed-size pool of goroutines that scan disjoint slices
// of the working set on behalf of the driver. Workers never mutate the
// working set's layout; they only set Processed on records within their own
// assigned, disjoint index range, so no per-record lock is required (see
// Driver for the disjointness guarantee).
type WorkerPool struct {
	numWorkers int
	tasks      *TaskQueue
	results    *ResultQueue
	logger     *logrus.Logger

	// records is the current working set, published by the driver before
	// each fan-out round. Writes happen-before the corresponding task Push,
	// and reads happen-after the corresponding WaitAndPop, so the channel
	// communication itself provides the synchronization the Go memory model
	// requires; no additional lock is needed.
	records []*ImageRecord

	wg sync.WaitGroup
}

// NewWorkerPool creates a pool of numWorkers goroutines, not yet started.
func NewWorkerPool(numWorkers int, logger *logrus.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &WorkerPool{
		numWorkers: numWorkers,
		tasks:      NewTaskQueue(numWorkers),
		results:    NewResultQueue(numWorkers),
		logger:     logger,
	}
}

// Start launches the worker goroutines. Each loops on tasks.WaitAndPop until
// the task queue is closed by Stop. Workers are not cancellable mid-task:
// a task popped off the queue always runs to completion, so cancellation is
// honored only at the driver's cluster boundary, never inside a fan-out.
func (wp *WorkerPool) Start() {
	wp.logger.Debugf("starting worker pool: %d workers", wp.numWorkers)
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.loop(i)
	}
}

func (wp *WorkerPool) loop(id int) {
	defer wp.wg.Done()
	for {
		task, ok := wp.tasks.WaitAndPop()
		if !ok {
			wp.logger.Debugf("worker %d exiting: task queue closed", id)
			return
		}
		wp.results.Push(scanSlice(wp.records, task))
	}
}

// scanSlice implements the worker contract (C7): scan [task.Begin,
// task.End) in order, absorbing every record that is not already processed,
// carries a real hash (word 0 != 0), and is within task.Threshold of
// task.Seed.
func scanSlice(records []*ImageRecord, task Task) TaskResult {
	var entries []ClusterEntry

	for i := task.Begin; i < task.End; i++ {
		rec := records[i]
		if !rec.Eligible() {
			continue
		}

		within, err := phash.Within(task.Seed, rec.Fingerprint, task.Threshold)
		if err != nil || !within {
			continue
		}

		rec.Processed = true
		entries = append(entries, ClusterEntry{
			ImageID:     rec.ImageID,
			Fingerprint: rec.Fingerprint,
		})
	}

	return TaskResult{Entries: entries}
}

// SetWorkingSet publishes the working set that subsequent tasks will index
// into. The driver must call this before Submit-ing any task for a new
// working set, and must not mutate the set's layout (reallocate or
// compact it) while tasks are outstanding.
func (wp *WorkerPool) SetWorkingSet(records []*ImageRecord) {
	wp.records = records
}

// Submit enqueues a task for the pool to process.
func (wp *WorkerPool) Submit(t Task) {
	wp.tasks.Push(t)
}

// Join blocks until exactly n results have been received and returns their
// merged entries in arrival order, per the driver's join-by-count contract.
func (wp *WorkerPool) Join(n int) []ClusterEntry {
	var merged []ClusterEntry
	for i := 0; i < n; i++ {
		res := wp.results.WaitAndPop()
		merged = append(merged, res.Entries...)
	}
	return merged
}

// Stop closes the task queue and waits for every worker goroutine to exit.
func (wp *WorkerPool) Stop() {
	wp.tasks.Close()
	wp.wg.Wait()
	wp.logger.Debugf("worker pool stopped")
}
