// Package svgpath projects (x,y) sequences into a fixed-size SVG canvas
// using cubic-Bezier smoothing. It is a pure function layer with no
// knowledge of spectra, time series, or any other domain concept.
package svgpath

import (
	"fmt"
	"strings"
)

// marginWidth and marginHeight are left for axis labels around the drawn
// canvas; a consumer asking for a 400x300 canvas gets a curve drawn inside
// a (400-marginWidth)x(300-marginHeight) box.
const (
	marginWidth  = 40.0
	marginHeight = 16.6
)

// Point is a single (x,y) value in data space, not canvas space.
type Point struct {
	X float64
	Y float64
}

// Limits bounds the data space that gets projected onto the canvas. YLo/YHi
// are given in data units; the projection inverts the Y axis internally so
// that YHi maps to the top of the canvas, matching SVG's top-down coordinate
// system.
type Limits struct {
	XLo, XHi float64
	YLo, YHi float64
}

func project(p Point, limits Limits, canvasW, canvasH float64) Point {
	x := (p.X - limits.XLo) / (limits.XHi - limits.XLo) * canvasW
	y := (p.Y - limits.YHi) / (limits.YLo - limits.YHi) * canvasH
	return Point{X: x, Y: y}
}

// Project maps a single data-space point into the same canvas coordinate
// system BezierPath uses, without producing a path. Useful for callers that
// need individual projected points (e.g. detected feature markers) rather
// than a smoothed curve.
func Project(p Point, canvasW, canvasH int, limits Limits) Point {
	return project(p, limits, float64(canvasW)-marginWidth, float64(canvasH)-marginHeight)
}

func bezierPoint(previous, start, end, next Point, smoothing float64) string {
	startVector := Point{X: end.X - previous.X, Y: end.Y - previous.Y}
	startControl := Point{
		X: start.X + startVector.X*smoothing,
		Y: start.Y + startVector.Y*smoothing,
	}

	endVector := Point{X: start.X - next.X, Y: start.Y - next.Y}
	endControl := Point{
		X: end.X + endVector.X*smoothing,
		Y: end.Y + endVector.Y*smoothing,
	}

	return fmt.Sprintf("C %.2f,%.2f %.2f,%.2f, %.2f,%.2f ",
		startControl.X, startControl.Y, endControl.X, endControl.Y, end.X, end.Y)
}

// BezierPath projects points into the given canvas (width, height) under
// limits and returns a smoothed SVG path string. Empty input yields an
// empty string. The window for the Bezier smoothing is 4 points wide, with
// the final point repeated three times to close the tail — without that
// padding, the curve would be visibly cropped just before its last sample.
func BezierPath(points []Point, canvasW, canvasH int, limits Limits, smoothing float64) string {
	if len(points) == 0 {
		return ""
	}

	svgW := float64(canvasW) - marginWidth
	svgH := float64(canvasH) - marginHeight

	projected := make([]Point, 0, len(points)+3)
	for _, p := range points {
		projected = append(projected, project(p, limits, svgW, svgH))
	}
	last := projected[len(projected)-1]
	for i := 0; i < 3; i++ {
		projected = append(projected, last)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "M %.2f,%.2f ", projected[0].X, projected[0].Y)

	for i := 0; i+3 < len(projected); i++ {
		b.WriteString(bezierPoint(projected[i], projected[i+1], projected[i+2], projected[i+3], smoothing))
	}

	return b.String()
}
