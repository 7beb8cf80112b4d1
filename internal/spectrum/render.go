package spectrum

import "github.com/Guilherme32/rosa-go/internal/svgpath"

// bezierSmoothing matches the original renderer's fixed smoothing factor.
const bezierSmoothing = 0.3

// RenderPath projects the spectrum into an SVG path string sized
// canvasW x canvasH, scaled to limits. Passing the spectrum's own
// NaturalLimits() reproduces the original auto-fit view.
func (s Spectrum) RenderPath(canvasW, canvasH int, limits Limits) string {
	points := make([]svgpath.Point, len(s.Values))
	for i, v := range s.Values {
		points[i] = svgpath.Point{X: v.Wavelength, Y: v.Power}
	}

	svgLimits := svgpath.Limits{
		XLo: limits.WavelengthLo, XHi: limits.WavelengthHi,
		YLo: limits.PowerLo, YHi: limits.PowerHi,
	}

	return svgpath.BezierPath(points, canvasW, canvasH, svgLimits, bezierSmoothing)
}

// ProjectFeatures maps detected features into the same canvas coordinate
// space RenderPath uses, for UIs that draw individual markers rather than
// a smoothed curve.
func ProjectFeatures(features []Feature, canvasW, canvasH int, limits Limits) []svgpath.Point {
	svgLimits := svgpath.Limits{
		XLo: limits.WavelengthLo, XHi: limits.WavelengthHi,
		YLo: limits.PowerLo, YHi: limits.PowerHi,
	}

	points := make([]svgpath.Point, len(features))
	for i, f := range features {
		points[i] = svgpath.Project(svgpath.Point{X: f.Wavelength, Y: f.Power}, canvasW, canvasH, svgLimits)
	}
	return points
}
