package handler

import (
	"github.com/Guilherme32/rosa-go/internal/spectrum"
	"github.com/Guilherme32/rosa-go/internal/svgpath"
)

// UpdateLimits recomputes spectrumLimits as the axis-wise union of
// natural limits over last_spectrum and every frozen spectrum. The
// accumulator never shrinks during a session: once widened to cover a
// spectrum, it keeps covering it even after that spectrum is gone.
func (h *Handler) UpdateLimits() {
	h.specMu.Lock()
	var live *spectrum.Spectrum
	if h.lastSpectrum != nil {
		cp := *h.lastSpectrum
		live = &cp
	}
	h.specMu.Unlock()

	h.frozenMu.Lock()
	frozen := append([]spectrum.Spectrum(nil), h.frozenSpectra...)
	h.frozenMu.Unlock()

	h.limitsMu.Lock()
	defer h.limitsMu.Unlock()

	acc := h.spectrumLimits

	fold := func(acc *spectrum.Limits, s spectrum.Spectrum) *spectrum.Limits {
		if s.IsEmpty() {
			return acc
		}
		n := s.NaturalLimits()
		if acc == nil {
			return &n
		}
		return &spectrum.Limits{
			WavelengthLo: min(acc.WavelengthLo, n.WavelengthLo),
			WavelengthHi: max(acc.WavelengthHi, n.WavelengthHi),
			PowerLo:      min(acc.PowerLo, n.PowerLo),
			PowerHi:      max(acc.PowerHi, n.PowerHi),
		}
	}

	for _, s := range frozen {
		acc = fold(acc, s)
	}
	if live != nil {
		acc = fold(acc, *live)
	}

	h.spectrumLimits = acc
}

// GetLimits merges the config's explicit axis overrides onto the
// accumulated natural limits. Returns ok=false if no spectrum has ever
// been observed, even when both axes are pinned.
func (h *Handler) GetLimits() (spectrum.Limits, bool) {
	h.limitsMu.Lock()
	base := h.spectrumLimits
	h.limitsMu.Unlock()

	if base == nil {
		return spectrum.Limits{}, false
	}
	limits := *base

	h.configMu.Lock()
	wl := h.config.WavelengthLimits
	pwr := h.config.PowerLimits
	h.configMu.Unlock()

	if wl != nil {
		limits.WavelengthLo, limits.WavelengthHi = wl.Lo, wl.Hi
	}
	if pwr != nil {
		limits.PowerLo, limits.PowerHi = pwr.Lo, pwr.Hi
	}

	return limits, true
}

// GetLastSpectrumPath clears the unread flag and renders the live
// spectrum's path sized to canvas, recording it into the shadow ring.
// Returns ok=false if no view limits exist yet or there is no live
// spectrum.
func (h *Handler) GetLastSpectrumPath(canvasW, canvasH int) (string, bool) {
	h.UpdateLimits()

	limits, ok := h.GetLimits()
	if !ok {
		h.unread.Store(false)
		return "", false
	}

	h.specMu.Lock()
	defer h.specMu.Unlock()

	h.unread.Store(false)

	if h.lastSpectrum == nil {
		return "", false
	}

	path := h.lastSpectrum.RenderPath(canvasW, canvasH, limits)
	h.pushShadow(path)
	return path, true
}

// GetLastSpectrumValleysPoints projects the live spectrum's detected
// valleys into canvas coordinates.
func (h *Handler) GetLastSpectrumValleysPoints(canvasW, canvasH int) ([]svgpath.Point, bool) {
	return h.lastSpectrumFeatures(canvasW, canvasH, false)
}

// GetLastSpectrumPeaksPoints projects the live spectrum's detected peaks
// into canvas coordinates.
func (h *Handler) GetLastSpectrumPeaksPoints(canvasW, canvasH int) ([]svgpath.Point, bool) {
	return h.lastSpectrumFeatures(canvasW, canvasH, true)
}

func (h *Handler) lastSpectrumFeatures(canvasW, canvasH int, peaks bool) ([]svgpath.Point, bool) {
	limits, ok := h.GetLimits()
	if !ok {
		return nil, false
	}

	h.specMu.Lock()
	defer h.specMu.Unlock()

	if h.lastSpectrum == nil {
		return nil, false
	}

	h.configMu.Lock()
	valleyDet, peakDet := h.config.ValleyDetection, h.config.PeakDetection
	h.configMu.Unlock()

	var features []spectrum.Feature
	if peaks {
		features = h.lastSpectrum.FindPeaks(peakDet)
	} else {
		features = h.lastSpectrum.FindValleys(valleyDet)
	}

	return spectrum.ProjectFeatures(features, canvasW, canvasH, limits), true
}

// pushShadow appends path to the shadow ring, trimming to shadow_length
// from the front once it overflows.
func (h *Handler) pushShadow(path string) {
	h.configMu.Lock()
	n := h.config.ShadowLength
	h.configMu.Unlock()
	if n <= 0 {
		return
	}

	h.shadowMu.Lock()
	defer h.shadowMu.Unlock()

	h.shadowPaths = append(h.shadowPaths, path)
	if len(h.shadowPaths) > n {
		h.shadowPaths = h.shadowPaths[len(h.shadowPaths)-n:]
	}
}

// GetShadowPaths returns the last shadow_length rendered live-spectrum
// paths, oldest first.
func (h *Handler) GetShadowPaths() []string {
	h.shadowMu.Lock()
	defer h.shadowMu.Unlock()
	return append([]string(nil), h.shadowPaths...)
}

// Region: frozen spectra --------------------------------------------------

// FreezeSpectrum moves the live spectrum into the frozen list, clearing
// the live slot. Logs a warning instead if there was nothing to freeze.
func (h *Handler) FreezeSpectrum() {
	h.specMu.Lock()
	live := h.lastSpectrum
	h.lastSpectrum = nil
	h.specMu.Unlock()

	if live == nil {
		h.bus.Warning("[FFS] no spectrum to freeze")
		return
	}

	h.frozenMu.Lock()
	h.frozenSpectra = append(h.frozenSpectra, *live)
	h.frozenMu.Unlock()

	h.bus.Info("[FFS] freezing spectrum")
}

// DeleteFrozenSpectrum bounds-checks and removes frozen_spectra[id],
// compacting the remaining indices.
func (h *Handler) DeleteFrozenSpectrum(id int) {
	h.frozenMu.Lock()
	defer h.frozenMu.Unlock()

	if id < 0 || id >= len(h.frozenSpectra) {
		h.bus.Errorf("[FDF] could not delete frozen spectrum, id %d out of bounds", id)
		return
	}

	h.frozenSpectra = append(h.frozenSpectra[:id], h.frozenSpectra[id+1:]...)
	h.bus.Infof("[FDF] deleting frozen %02d", id)
}

// GetFrozenSpectrumPath renders frozen_spectra[id]'s path. Out-of-bounds
// logs an error and returns ok=false.
func (h *Handler) GetFrozenSpectrumPath(id, canvasW, canvasH int) (string, bool) {
	limits, ok := h.GetLimits()
	if !ok {
		return "", false
	}

	h.frozenMu.Lock()
	defer h.frozenMu.Unlock()

	if id < 0 || id >= len(h.frozenSpectra) {
		h.bus.Errorf("[FGF] could not get frozen spectrum, id %d out of bounds", id)
		return "", false
	}

	return h.frozenSpectra[id].RenderPath(canvasW, canvasH, limits), true
}

// GetFrozenSpectrumValleysPoints returns frozen_spectra[id]'s detected
// valleys, projected to canvas coordinates. Out-of-bounds logs an error
// and returns ok=false.
func (h *Handler) GetFrozenSpectrumValleysPoints(id, canvasW, canvasH int) ([]svgpath.Point, bool) {
	return h.frozenFeatures(id, canvasW, canvasH, false)
}

// GetFrozenSpectrumPeaksPoints returns frozen_spectra[id]'s detected
// peaks, projected to canvas coordinates. Out-of-bounds logs an error
// and returns ok=false.
func (h *Handler) GetFrozenSpectrumPeaksPoints(id, canvasW, canvasH int) ([]svgpath.Point, bool) {
	return h.frozenFeatures(id, canvasW, canvasH, true)
}

func (h *Handler) frozenFeatures(id, canvasW, canvasH int, peaks bool) ([]svgpath.Point, bool) {
	limits, ok := h.GetLimits()
	if !ok {
		return nil, false
	}

	h.frozenMu.Lock()
	defer h.frozenMu.Unlock()

	if id < 0 || id >= len(h.frozenSpectra) {
		h.bus.Errorf("[FGF] could not get frozen spectrum, id %d out of bounds", id)
		return nil, false
	}

	h.configMu.Lock()
	valleyDet, peakDet := h.config.ValleyDetection, h.config.PeakDetection
	h.configMu.Unlock()

	s := &h.frozenSpectra[id]
	var features []spectrum.Feature
	if peaks {
		features = s.FindPeaks(peakDet)
	} else {
		features = s.FindValleys(valleyDet)
	}
	return spectrum.ProjectFeatures(features, canvasW, canvasH, limits), true
}

// CloneFrozen returns a copy of frozen_spectra[id]. Out-of-bounds logs an
// error and returns ok=false.
func (h *Handler) CloneFrozen(id int) (spectrum.Spectrum, bool) {
	h.frozenMu.Lock()
	defer h.frozenMu.Unlock()

	if id < 0 || id >= len(h.frozenSpectra) {
		h.bus.Errorf("[FCF] could not clone frozen spectrum, id %d out of bounds", id)
		return spectrum.Spectrum{}, false
	}
	return h.frozenSpectra[id], true
}

// SaveFrozen saves frozen_spectra[id] to path, logging success or
// failure. Out-of-bounds logs an error and does nothing.
func (h *Handler) SaveFrozen(id int, path string) {
	h.frozenMu.Lock()
	s, ok := spectrum.Spectrum{}, false
	if id >= 0 && id < len(h.frozenSpectra) {
		s, ok = h.frozenSpectra[id], true
	}
	h.frozenMu.Unlock()

	if !ok {
		h.bus.Errorf("[FSF] could not get frozen spectrum, id %d out of bounds", id)
		return
	}

	if err := s.Save(path); err != nil {
		h.bus.Errorf("[FSF] failed to save spectrum %d (%v)", id, err)
		return
	}
	h.bus.Infof("[FSF] spectrum %d saved", id)
}

// SaveAllSpectra saves every frozen spectrum (and the live one, if any)
// under folder using the auto-save numbering scheme.
func (h *Handler) SaveAllSpectra(folder string) error {
	h.frozenMu.Lock()
	all := append([]spectrum.Spectrum(nil), h.frozenSpectra...)
	h.frozenMu.Unlock()

	h.specMu.Lock()
	if h.lastSpectrum != nil {
		all = append(all, *h.lastSpectrum)
	}
	h.specMu.Unlock()

	for _, s := range all {
		if _, err := autoSaveSpectrum(s, folder); err != nil {
			return err
		}
	}
	return nil
}
