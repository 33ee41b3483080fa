package cluster

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Config configures a Driver run.
type Config struct {
	ThreadsNum         int
	Threshold          uint32
	CompactionInterval time.Duration
}

// Emitter receives emitted clusters in strictly increasing ClusterID order,
// one at a time. Each Cluster carries a freshly allocated Entries slice that
// the driver does not touch again, so an emitter may retain it.
type Emitter interface {
	Emit(c Cluster) error
}

// Driver is the single-threaded outer loop (C6): it picks the next
// unprocessed fingerprint as a cluster seed, fans the residual out to a
// worker pool, joins by count, emits the cluster, and periodically
// compacts the working set.
//
// Cluster member order is nondeterministic across runs with
// ThreadsNum > 1 (tasks complete in unspecified order); the set of members
// for a given input is deterministic, and ClusterIDs are always assigned in
// strict driver order.
type Driver struct {
	cfg    Config
	pool   *WorkerPool
	logger *logrus.Logger

	working []*ImageRecord
	cur     int

	nextClusterID uint64
	deflate       atomic.Bool
}

// NewDriver creates a driver over the given working set. The slice order at
// construction determines cluster-seed priority and must remain stable
// until the first compaction.
func NewDriver(cfg Config, working []*ImageRecord, logger *logrus.Logger) *Driver {
	if cfg.ThreadsNum <= 0 {
		cfg.ThreadsNum = 1
	}
	return &Driver{
		cfg:           cfg,
		pool:          NewWorkerPool(cfg.ThreadsNum, logger),
		logger:        logger,
		working:       working,
		nextClusterID: 1,
	}
}

// Run executes the outer loop to completion, emitting every cluster via
// emit, and returns when the working set is exhausted or ctx is cancelled
// at a cluster boundary.
func (d *Driver) Run(ctx context.Context, emit Emitter) error {
	d.logger.Infof("clusterizer starting: %d records, threshold=%d, threads=%d",
		len(d.working), d.cfg.Threshold, d.cfg.ThreadsNum)
	d.pool.Start()
	defer d.pool.Stop()

	timer := NewCompactionTimer(d.cfg.CompactionInterval, &d.deflate)
	timerCtx, cancelTimer := context.WithCancel(ctx)
	defer cancelTimer()
	go timer.Run(timerCtx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Warnf("clusterizer interrupted at cluster boundary, %d of %d records processed",
				d.cur, len(d.working))
			return ctx.Err()
		default:
		}

		if d.cur >= len(d.working) {
			d.logger.Infof("clusterizer done: %d clusters emitted", d.nextClusterID-1)
			return nil
		}

		seedRec := d.working[d.cur]
		if seedRec.Processed || seedRec.Fingerprint.Empty() {
			d.cur++
			continue
		}

		cluster, err := d.openCluster(seedRec)
		if err != nil {
			return err
		}

		if err := emit.Emit(cluster); err != nil {
			return err
		}
		d.logger.Debugf("emitted cluster %d: %d members", cluster.ClusterID, len(cluster.Entries))

		if d.cur >= len(d.working) {
			d.logger.Infof("clusterizer done: %d clusters emitted", d.nextClusterID-1)
			return nil
		}

		if d.deflate.Load() {
			d.deflate.Store(false)
			d.compact()
		}
	}
}

// openCluster implements step 3 of the outer loop: seed selection, fan-out
// decision, dispatch, and join.
func (d *Driver) openCluster(seedRec *ImageRecord) (Cluster, error) {
	seed := seedRec.Fingerprint
	entries := []ClusterEntry{{ImageID: seedRec.ImageID, Fingerprint: seed}}
	seedRec.Processed = true
	d.cur++

	clusterID := d.nextClusterID
	d.nextClusterID++

	if d.cur >= len(d.working) {
		return Cluster{ClusterID: clusterID, Entries: entries}, nil
	}

	residual := len(d.working) - d.cur
	begin := d.cur
	end := len(d.working)

	slices := fanOutSlices(residual, d.cfg.ThreadsNum)
	if slices > 1 {
		d.logger.Debugf("cluster %d: fanning out %d residual records across %d slices", clusterID, residual, slices)
	}

	d.pool.SetWorkingSet(d.working)
	for _, bounds := range computeSliceBounds(begin, end, slices) {
		d.pool.Submit(Task{
			Seed:      seed,
			Threshold: d.cfg.Threshold,
			Begin:     bounds[0],
			End:       bounds[1],
		})
	}

	joined := d.pool.Join(slices)
	entries = append(entries, joined...)

	return Cluster{ClusterID: clusterID, Entries: entries}, nil
}

// fanOutSlices implements the tie-break policy of spec.md §4.6: split into
// ThreadsNum slices only once the residual exceeds 1000 per thread,
// otherwise a single slice avoids paying synchronization cost.
func fanOutSlices(residual, threadsNum int) int {
	if residual > threadsNum*1000 {
		return threadsNum
	}
	return 1
}

// computeSliceBounds partitions [begin, end) into `slices` contiguous
// ranges of length floor((end-begin)/slices); the last slice absorbs the
// remainder so its end is exactly `end`.
func computeSliceBounds(begin, end, slices int) [][2]int {
	total := end - begin
	base := total / slices

	bounds := make([][2]int, slices)
	cursor := begin
	for i := 0; i < slices; i++ {
		sliceEnd := cursor + base
		if i == slices-1 {
			sliceEnd = end
		}
		bounds[i] = [2]int{cursor, sliceEnd}
		cursor = sliceEnd
	}
	return bounds
}

// compact rebuilds the residual [cur, end) to drop processed records and
// replaces the working set with exactly that compacted residual, resetting
// the cursor to 0. Everything before cur is already either absorbed into an
// emitted cluster or permanently excluded (a zero-fingerprint sentinel that
// can never become eligible again), so it is safe to drop. Only called
// between clusters, once the worker pool has drained every task of the
// cluster just emitted.
func (d *Driver) compact() {
	before := len(d.working) - d.cur
	d.working = Compactify(d.working, d.cur, len(d.working))
	d.cur = 0
	d.logger.Debugf("compacted working set: %d residual records -> %d retained", before, len(d.working))
}
