package handler

import (
	"time"

	"github.com/Guilherme32/rosa-go/internal/spectrum"
	"github.com/Guilherme32/rosa-go/internal/timeseries"
)

// pushFeatures runs valley/peak detection on s under the Handler's
// current detection config and extends the four time-series tracks: the
// raw feature powers, and their batch mean as a single entry each.
func (h *Handler) pushFeatures(s spectrum.Spectrum) {
	h.configMu.Lock()
	valleyDet := h.config.ValleyDetection
	peakDet := h.config.PeakDetection
	h.configMu.Unlock()

	now := time.Now()

	if valleys := s.FindValleys(valleyDet); len(valleys) > 0 {
		h.timeSeries.Valleys.PushBatch(featureEntries(valleys, now))
		h.timeSeries.ValleyMeans.PushBatch([]timeseries.TimedEntry{{Value: meanPower(valleys), Timestamp: now}})
	}

	if peaks := s.FindPeaks(peakDet); len(peaks) > 0 {
		h.timeSeries.Peaks.PushBatch(featureEntries(peaks, now))
		h.timeSeries.PeakMeans.PushBatch([]timeseries.TimedEntry{{Value: meanPower(peaks), Timestamp: now}})
	}
}

func featureEntries(features []spectrum.Feature, at time.Time) []timeseries.TimedEntry {
	entries := make([]timeseries.TimedEntry, len(features))
	for i, f := range features {
		entries[i] = timeseries.TimedEntry{Value: f.Power, Timestamp: at}
	}
	return entries
}

func meanPower(features []spectrum.Feature) float64 {
	var sum float64
	for _, f := range features {
		sum += f.Power
	}
	return sum / float64(len(features))
}
