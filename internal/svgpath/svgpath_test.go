package svgpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBezierPathEmptyInputYieldsEmptyString(t *testing.T) {
	path := BezierPath(nil, 400, 300, Limits{XHi: 1, YHi: 1}, 0.3)
	assert.Equal(t, "", path)
}

func TestBezierPathStartsAtMoveCommand(t *testing.T) {
	points := []Point{{X: 0, Y: 0}, {X: 0.5, Y: 1}, {X: 1, Y: 0}}
	path := BezierPath(points, 400, 300, Limits{XLo: 0, XHi: 1, YLo: 0, YHi: 1}, 0.3)
	assert.Contains(t, path, "M ")
	assert.Contains(t, path, "C ")
}

func TestProjectMapsCornersToCanvasExtents(t *testing.T) {
	limits := Limits{XLo: 0, XHi: 10, YLo: 0, YHi: 10}

	topLeft := Project(Point{X: 0, Y: 10}, 440, 316, limits)
	assert.InDelta(t, 0, topLeft.X, 1e-9)
	assert.InDelta(t, 0, topLeft.Y, 1e-9)

	bottomRight := Project(Point{X: 10, Y: 0}, 440, 316, limits)
	assert.InDelta(t, 400, bottomRight.X, 1e-9)
	assert.InDelta(t, 299.4, bottomRight.Y, 1e-9)
}

func TestProjectInvertsYAxis(t *testing.T) {
	limits := Limits{XLo: 0, XHi: 1, YLo: 0, YHi: 1}

	low := Project(Point{X: 0, Y: 0}, 440, 316, limits)
	high := Project(Point{X: 0, Y: 1}, 440, 316, limits)

	assert.Greater(t, low.Y, high.Y)
}
