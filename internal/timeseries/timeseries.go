package timeseries

import (
	"time"

	"github.com/Guilherme32/rosa-go/internal/svgpath"
)

// maxTrackAge is the sliding window retained per sequence: entries older
// than this relative to the cleanup pass's wall clock are dropped.
const maxTrackAge = 600_000 * time.Millisecond

// cleanThresh is how many entries accumulate between garbage collections.
const cleanThresh = 1000

// TimedEntry is a single scalar sample stamped with the wall-clock time
// it was produced.
type TimedEntry struct {
	Value     float64
	Timestamp time.Time
}

// Sequence is an uninterrupted temporal track of a single feature's
// evolution. Once a push_batch round fails to extend it, Alive becomes
// false and it is retained only until cleanup drops its last entry.
type Sequence struct {
	Alive  bool
	Values []TimedEntry
}

func newSequence(first TimedEntry) Sequence {
	return Sequence{Alive: true, Values: []TimedEntry{first}}
}

// TimeSeries is an ordered set of Sequences, matched batch-by-batch
// against each other via the branch-and-bound matching algorithm.
type TimeSeries struct {
	Sequences []Sequence

	totalEntries   uint64
	cleanupCounter uint64
	newestTime     time.Time
}

// New returns an empty TimeSeries.
func New() *TimeSeries {
	return &TimeSeries{newestTime: time.Now()}
}

// PushBatch correlates batch against the currently live sequences, then
// extends matched sequences, retires unmatched live sequences, and starts
// a new singleton sequence for every unmatched batch entry.
func (ts *TimeSeries) PushBatch(batch []TimedEntry) {
	var indexMap []int
	var lastEntries []float64
	for i, seq := range ts.Sequences {
		if !seq.Alive {
			continue
		}
		indexMap = append(indexMap, i)
		lastEntries = append(lastEntries, seq.Values[len(seq.Values)-1].Value)
	}

	newEntries := make([]float64, len(batch))
	for i, entry := range batch {
		newEntries[i] = entry.Value
	}

	matchMatrix := calculateMatchMatrix(lastEntries, newEntries)

	matched := make([]bool, len(batch))
	for i, matchedEntry := range matchMatrix {
		sequenceIndex := indexMap[i]
		if matchedEntry != unmatched {
			ts.Sequences[sequenceIndex].Values = append(ts.Sequences[sequenceIndex].Values, batch[matchedEntry])
			matched[matchedEntry] = true
			ts.totalEntries++
			ts.cleanupCounter++
		} else {
			ts.Sequences[sequenceIndex].Alive = false
		}
	}

	for i, wasMatched := range matched {
		if wasMatched {
			continue
		}
		ts.Sequences = append(ts.Sequences, newSequence(batch[i]))
		ts.totalEntries++
		ts.cleanupCounter++
	}

	if len(batch) > 0 {
		ts.newestTime = batch[len(batch)-1].Timestamp
	} else {
		ts.newestTime = time.Now()
	}

	ts.cleanOld()
}

func (ts *TimeSeries) cleanOld() {
	if ts.cleanupCounter < cleanThresh {
		return
	}
	ts.cleanupCounter = 0

	now := time.Now()
	kept := ts.Sequences[:0]
	for _, seq := range ts.Sequences {
		values := seq.Values[:0]
		for _, entry := range seq.Values {
			if now.Sub(entry.Timestamp) < maxTrackAge {
				values = append(values, entry)
			}
		}
		seq.Values = values
		if len(seq.Values) > 0 {
			kept = append(kept, seq)
		}
	}
	ts.Sequences = kept
}

// renderWindowMs is the vertical extent of the rendered time axis: 5
// minutes in milliseconds, most recent at the top (y=0).
const renderWindowMs = 5 * 60 * 1000.0

// ToPaths renders every sequence as an SVG Bezier path, x being the
// tracked value projected between valueLo and valueHi and y being the age of
// each sample relative to the newest batch's timestamp, clamped to a
// 5-minute window.
func (ts *TimeSeries) ToPaths(canvasW, canvasH int, valueLo, valueHi float64) []string {
	limits := svgpath.Limits{XLo: valueLo, XHi: valueHi, YLo: -renderWindowMs, YHi: 0}

	paths := make([]string, len(ts.Sequences))
	for i, seq := range ts.Sequences {
		points := make([]svgpath.Point, len(seq.Values))
		for j, entry := range seq.Values {
			ageMs := float64(entry.Timestamp.Sub(ts.newestTime) / time.Millisecond)
			if ageMs < -renderWindowMs {
				ageMs = -renderWindowMs
			}
			points[j] = svgpath.Point{X: entry.Value, Y: ageMs}
		}
		paths[i] = svgpath.BezierPath(points, canvasW, canvasH, limits, bezierSmoothing)
	}
	return paths
}

const bezierSmoothing = 0.3
