// Package cluster implements the parallel clusterizer: it partitions a
// population of perceptual-hash fingerprints into clusters under a
// Hamming-distance threshold using a worker pool, streaming output, and
// periodic compaction of the working set.
package cluster

import "github.com/imagedupe/phashcluster/pkg/phash"

// ImageRecord is one entry of the working set: an externally assigned
// image_id, its fingerprint, and whether it has already been absorbed into
// an emitted cluster.
//
// SourcePath and DecodeFailed carry no clustering semantics of their own;
// they ride along for diagnostics and are populated by the store/hash
// commands, not by the driver.
type ImageRecord struct {
	ImageID      uint32
	Fingerprint  phash.PHash
	Processed    bool
	SourcePath   string
	DecodeFailed bool
}

// Eligible reports whether this record can still be a cluster seed or
// member: it must not be already processed, and its fingerprint must carry
// a non-zero first word (word 0 == 0 marks an undecodable/unhashed image).
func (r *ImageRecord) Eligible() bool {
	return !r.Processed && !r.Fingerprint.Empty()
}

// ClusterEntry is a record produced by a worker and accumulated by the
// driver for the cluster currently being assembled.
type ClusterEntry struct {
	ImageID     uint32
	Fingerprint phash.PHash
}

// Cluster is an ordered sequence of entries sharing a generated ClusterID.
// The first entry is always the seed.
type Cluster struct {
	ClusterID uint64
	Entries   []ClusterEntry
}

// Task is a unit of work handed to a worker: scan working-set indices
// [Begin, End) for fingerprints within Threshold of Seed.
type Task struct {
	Seed      phash.PHash
	Threshold uint32
	Begin     int
	End       int
}

// TaskResult is what a worker returns after completing a Task: the entries
// it absorbed into the current cluster.
type TaskResult struct {
	Entries []ClusterEntry
}
