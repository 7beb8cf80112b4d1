package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindDuplicatesDetectsSharedTarget(t *testing.T) {
	m := MatchMatrix{0, 0, 1}
	dups := m.findDuplicates()
	assert.Len(t, dups, 2)
}

func TestFindDuplicatesNoneWhenDisjoint(t *testing.T) {
	m := MatchMatrix{0, 1, 2}
	assert.Empty(t, m.findDuplicates())
}

func TestRecalculateKeepsLockedSlots(t *testing.T) {
	m := MatchMatrix{1, unmatched}
	last := []float64{5.0, 10.0}
	next := []float64{11.0, 4.9}

	result := m.recalculate(last, next)
	assert.Equal(t, 1, result[0], "already-locked slot must not change")
	assert.Equal(t, 0, result[1], "unlocked slot greedily matches the closest unused entry")
}

func TestScoreSumsSquaredNanosecondScaledDiffs(t *testing.T) {
	m := MatchMatrix{0}
	last := []float64{1.0}
	next := []float64{1.0 + 1e-9}

	score := m.score(last, next)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestRemoveBadMatchesDropsLargeDiffs(t *testing.T) {
	m := MatchMatrix{0, 1}
	last := []float64{1.0, 100.0}
	next := []float64{1.0, 50.0}

	result := m.removeBadMatches(last, next)
	assert.Equal(t, 0, result[0])
	assert.Equal(t, unmatched, result[1])
}

func TestCalculateMatchMatrixEmptyInput(t *testing.T) {
	result := calculateMatchMatrix(nil, nil)
	assert.Empty(t, result)
}
