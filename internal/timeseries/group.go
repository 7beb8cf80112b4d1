package timeseries

// Config toggles which of a TimeSeriesGroup's four tracks get rendered.
type Config struct {
	DrawValleys     bool
	DrawValleyMeans bool
	DrawPeaks       bool
	DrawPeakMeans   bool
}

// Group bundles the four independent tracks driven by a spectrum's
// valley/peak detection: raw valleys, the mean of each spectrum's
// valleys, raw peaks, and the mean of each spectrum's peaks.
type Group struct {
	Valleys     *TimeSeries
	ValleyMeans *TimeSeries
	Peaks       *TimeSeries
	PeakMeans   *TimeSeries
}

// NewGroup returns a Group with four empty, independent TimeSeries.
func NewGroup() *Group {
	return &Group{
		Valleys:     New(),
		ValleyMeans: New(),
		Peaks:       New(),
		PeakMeans:   New(),
	}
}

// GroupPaths holds the rendered SVG paths for a Group's four tracks.
type GroupPaths struct {
	Valleys     []string
	ValleyMeans []string
	Peaks       []string
	PeakMeans   []string
}

// ToPaths renders each enabled track; disabled tracks yield a nil slice
// rather than being computed.
func (g *Group) ToPaths(canvasW, canvasH int, valueLo, valueHi float64, cfg Config) GroupPaths {
	var out GroupPaths
	if cfg.DrawValleys {
		out.Valleys = g.Valleys.ToPaths(canvasW, canvasH, valueLo, valueHi)
	}
	if cfg.DrawValleyMeans {
		out.ValleyMeans = g.ValleyMeans.ToPaths(canvasW, canvasH, valueLo, valueHi)
	}
	if cfg.DrawPeaks {
		out.Peaks = g.Peaks.ToPaths(canvasW, canvasH, valueLo, valueHi)
	}
	if cfg.DrawPeakMeans {
		out.PeakMeans = g.PeakMeans.ToPaths(canvasW, canvasH, valueLo, valueHi)
	}
	return out
}
