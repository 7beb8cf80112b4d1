package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entriesAt(t time.Time, values ...float64) []TimedEntry {
	entries := make([]TimedEntry, len(values))
	for i, v := range values {
		entries[i] = TimedEntry{Value: v, Timestamp: t}
	}
	return entries
}

func TestPushBatchIdempotentUnderStableInput(t *testing.T) {
	ts := New()
	now := time.Now()
	batch := entriesAt(now, 1.0, 2.0, 3.0)

	ts.PushBatch(batch)
	require.Len(t, ts.Sequences, 3)
	for _, seq := range ts.Sequences {
		assert.Len(t, seq.Values, 1)
	}

	ts.PushBatch(batch)
	require.Len(t, ts.Sequences, 3, "no new sequences should be created on stable repeat input")
	for _, seq := range ts.Sequences {
		assert.True(t, seq.Alive)
		assert.Len(t, seq.Values, 2, "every live sequence should be extended by exactly one entry")
	}
}

func TestMatchMatrixDisjoint(t *testing.T) {
	last := []float64{1.0, 5.0, 9.0}
	next := []float64{1.1, 5.2, 8.9, 20.0}

	matrix := calculateMatchMatrix(last, next)

	seen := make(map[int]bool)
	for _, idx := range matrix {
		if idx == unmatched {
			continue
		}
		assert.False(t, seen[idx], "MatchMatrix must not assign the same entry twice")
		seen[idx] = true
	}
}

func TestMatchMatrixPrunesDivergentBatch(t *testing.T) {
	last := []float64{1.0, 2.0}
	next := []float64{1000.0, 2000.0}

	matrix := calculateMatchMatrix(last, next)

	for _, idx := range matrix {
		assert.Equal(t, unmatched, idx, "a wildly divergent batch should retire every sequence")
	}
}

func TestPushBatchRetiresUnmatchedAndStartsNew(t *testing.T) {
	ts := New()
	now := time.Now()
	ts.PushBatch(entriesAt(now, 1.0, 2.0))
	require.Len(t, ts.Sequences, 2)

	later := now.Add(time.Second)
	ts.PushBatch(entriesAt(later, 500.0))

	aliveCount := 0
	for _, seq := range ts.Sequences {
		if seq.Alive {
			aliveCount++
		}
	}
	assert.Equal(t, 1, aliveCount, "exactly one new singleton sequence should be alive")
	assert.Len(t, ts.Sequences, 3, "the two original sequences retire but remain until cleanup")
}

func TestToPathsEmptyForEmptySequence(t *testing.T) {
	ts := New()
	paths := ts.ToPaths(400, 300, 0, 1)
	assert.Empty(t, paths)
}

func TestGroupToPathsOnlyComputesEnabledTracks(t *testing.T) {
	g := NewGroup()
	now := time.Now()
	g.Valleys.PushBatch(entriesAt(now, 1.0))

	paths := g.ToPaths(400, 300, 0, 10, Config{DrawValleys: true})
	assert.NotNil(t, paths.Valleys)
	assert.Nil(t, paths.Peaks)
	assert.Nil(t, paths.ValleyMeans)
	assert.Nil(t, paths.PeakMeans)
}
