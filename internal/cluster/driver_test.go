package cluster

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagedupe/phashcluster/pkg/phash"
)

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type collectingEmitter struct {
	clusters []Cluster
}

func (c *collectingEmitter) Emit(cl Cluster) error {
	c.clusters = append(c.clusters, cl)
	return nil
}

// imageIDToCluster flattens emitted clusters into an image_id -> cluster_id
// map, the externally observable output of a clustering run.
func imageIDToCluster(clusters []Cluster) map[uint32]uint64 {
	m := make(map[uint32]uint64)
	for _, c := range clusters {
		for _, e := range c.Entries {
			m[e.ImageID] = c.ClusterID
		}
	}
	return m
}

func recordsFrom(pairs [][2]uint64) []*ImageRecord {
	recs := make([]*ImageRecord, len(pairs))
	for i, p := range pairs {
		recs[i] = &ImageRecord{ImageID: uint32(p[0]), Fingerprint: phash.PHash{p[1]}}
	}
	return recs
}

func runDriver(t *testing.T, recs []*ImageRecord, threshold uint32, threads int) []Cluster {
	t.Helper()
	d := NewDriver(Config{ThreadsNum: threads, Threshold: threshold}, recs, silentLogger())
	emitter := &collectingEmitter{}
	require.NoError(t, d.Run(context.Background(), emitter))
	return emitter.clusters
}

// Scenario 1: trivial singletons.
func TestScenarioTrivialSingletons(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0xF0}, {2, 0x0F}})
	clusters := runDriver(t, recs, 2, 1)

	got := imageIDToCluster(clusters)
	assert.Equal(t, map[uint32]uint64{1: 1, 2: 2}, got)
}

// Scenario 2: exact duplicate.
func TestScenarioExactDuplicate(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0xAA}, {2, 0xAA}, {3, 0x55}})
	clusters := runDriver(t, recs, 0, 1)

	got := imageIDToCluster(clusters)
	assert.Equal(t, map[uint32]uint64{1: 1, 2: 1, 3: 2}, got)
}

// Scenario 3: seed priority.
func TestScenarioSeedPriority(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0x00FF}, {2, 0x00FE}, {3, 0x01FF}})
	clusters := runDriver(t, recs, 1, 1)

	require.Len(t, clusters, 1)
	got := imageIDToCluster(clusters)
	assert.Equal(t, map[uint32]uint64{1: 1, 2: 1, 3: 1}, got)
}

// Scenario 4: chain, not transitive. The fingerprints carry bit 8 so that
// no first word is 0 (the skip sentinel); the low-byte distances are
// unchanged: 0x100^0x103 has 2 bits, 0x100^0x10F has 4.
func TestScenarioChainNotTransitive(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0x100}, {2, 0x103}, {3, 0x10F}})
	clusters := runDriver(t, recs, 2, 1)

	got := imageIDToCluster(clusters)
	assert.Equal(t, map[uint32]uint64{1: 1, 2: 1, 3: 2}, got)
}

// Scenario 5: zero-word skip.
func TestScenarioZeroWordSkip(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0x0}, {2, 0x1}})
	clusters := runDriver(t, recs, 2, 1)

	got := imageIDToCluster(clusters)
	assert.Equal(t, map[uint32]uint64{2: 1}, got)
	assert.NotContains(t, got, uint32(1))
}

// Scenario 6: parallel equivalence — threads=1 and threads=8 must produce
// the same image_id -> cluster_id map (member order may differ).
func TestScenarioParallelEquivalence(t *testing.T) {
	pairs := make([][2]uint64, 0, 10000)
	for i := uint64(1); i <= 10000; i++ {
		// Interleave two well-separated fingerprint families so clusters
		// form but remain distinguishable.
		if i%2 == 0 {
			pairs = append(pairs, [2]uint64{i, 0x00000000FFFFFFFF})
		} else {
			pairs = append(pairs, [2]uint64{i, 0xFFFFFFFF00000000})
		}
	}

	seq := runDriver(t, recordsFrom(pairs), 0, 1)
	par := runDriver(t, recordsFrom(pairs), 0, 8)

	assert.Equal(t, imageIDToCluster(seq), imageIDToCluster(par))
}

func TestEmptyInputYieldsNoClusters(t *testing.T) {
	clusters := runDriver(t, nil, 2, 4)
	assert.Empty(t, clusters)
}

func TestSingleInputYieldsSingletonClusterOne(t *testing.T) {
	recs := recordsFrom([][2]uint64{{42, 0xABCD}})
	clusters := runDriver(t, recs, 2, 4)

	require.Len(t, clusters, 1)
	assert.Equal(t, uint64(1), clusters[0].ClusterID)
	assert.Equal(t, uint32(42), clusters[0].Entries[0].ImageID)
}

func TestAllZeroFingerprintsYieldNoClusters(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0}, {2, 0}, {3, 0}})
	clusters := runDriver(t, recs, 5, 4)
	assert.Empty(t, clusters)
}

func TestClusterIDsAreContiguousAndIncreasing(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0x1}, {2, 0x2}, {3, 0x4}, {4, 0x8}})
	clusters := runDriver(t, recs, 0, 2)

	for i, c := range clusters {
		assert.Equal(t, uint64(i+1), c.ClusterID)
	}
}

func TestEveryMemberWithinThresholdOfSeed(t *testing.T) {
	recs := recordsFrom([][2]uint64{
		{1, 0x00}, {2, 0x01}, {3, 0x03}, {4, 0xFF}, {5, 0xFE},
	})
	clusters := runDriver(t, recs, 1, 4)

	for _, c := range clusters {
		seed := c.Entries[0].Fingerprint
		for _, e := range c.Entries {
			d, err := phash.Hamming(seed, e.Fingerprint)
			require.NoError(t, err)
			assert.LessOrEqual(t, d, uint32(1))
		}
	}
}

func TestClustersArePairwiseDisjointAndCoverAllValidImages(t *testing.T) {
	recs := recordsFrom([][2]uint64{
		{1, 0x00}, {2, 0x01}, {3, 0x0F}, {4, 0xF0}, {5, 0x0}, {6, 0xFF},
	})
	clusters := runDriver(t, recs, 1, 3)

	seen := make(map[uint32]bool)
	for _, c := range clusters {
		for _, e := range c.Entries {
			assert.False(t, seen[e.ImageID], "image %d appeared in more than one cluster", e.ImageID)
			seen[e.ImageID] = true
		}
	}

	for _, r := range recs {
		if r.Fingerprint.Empty() {
			assert.False(t, seen[r.ImageID])
		} else {
			assert.True(t, seen[r.ImageID])
		}
	}
}

func TestThresholdZeroGroupsOnlyExactDuplicates(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0xAB}, {2, 0xAB}, {3, 0xAC}})
	clusters := runDriver(t, recs, 0, 2)

	require.Len(t, clusters, 2)
}

func TestThresholdCoveringFullWidthYieldsSingleCluster(t *testing.T) {
	recs := recordsFrom([][2]uint64{{1, 0x1}, {2, 0x2}, {3, 0x4}, {4, 0x8}})
	clusters := runDriver(t, recs, 64, 2)

	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Entries, 4)
}

func TestFanOutSlicesTieBreak(t *testing.T) {
	assert.Equal(t, 1, fanOutSlices(500, 4))
	assert.Equal(t, 4, fanOutSlices(4001, 4))
}

func TestComputeSliceBoundsLastAbsorbsRemainder(t *testing.T) {
	bounds := computeSliceBounds(0, 10, 3)
	require.Len(t, bounds, 3)
	assert.Equal(t, [2]int{0, 3}, bounds[0])
	assert.Equal(t, [2]int{3, 6}, bounds[1])
	assert.Equal(t, [2]int{6, 10}, bounds[2])
}

func TestCompactifyDropsProcessedPreservesOrder(t *testing.T) {
	recs := []*ImageRecord{
		{ImageID: 1, Processed: true},
		{ImageID: 2, Processed: false},
		{ImageID: 3, Processed: true},
		{ImageID: 4, Processed: false},
	}

	out := Compactify(recs, 0, len(recs))
	require.Len(t, out, 2)
	assert.Equal(t, uint32(2), out[0].ImageID)
	assert.Equal(t, uint32(4), out[1].ImageID)
}
