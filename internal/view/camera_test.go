package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/zjrosen/flowlens/internal/workflow"
)

func TestScreenWorldRoundTrip(t *testing.T) {
	c := Camera{OffsetX: 50, OffsetY: -20, Scale: 1.5}

	sx, sy := c.ToScreen(100, 200)
	wx, wy := c.ToWorld(sx, sy)

	assert.InDelta(t, 100, wx, 1e-9, "x should round-trip")
	assert.InDelta(t, 200, wy, 1e-9, "y should round-trip")
}

func TestPanShiftsOffsets(t *testing.T) {
	c := NewCamera().Pan(10, -5)
	assert.Equal(t, 10.0, c.OffsetX, "pan moves the x offset")
	assert.Equal(t, -5.0, c.OffsetY, "pan moves the y offset")
	assert.Equal(t, 1.0, c.Scale, "pan leaves the scale alone")
}

func TestZoomAtKeepsAnchorFixed(t *testing.T) {
	c := Camera{OffsetX: 30, OffsetY: 40, Scale: 1}
	wx, wy := c.ToWorld(200, 150)

	zoomed := c.ZoomAt(-60, 200, 150)
	sx, sy := zoomed.ToScreen(wx, wy)

	assert.Greater(t, zoomed.Scale, c.Scale, "negative delta zooms in")
	assert.InDelta(t, 200, sx, 1e-9, "anchor x should not move")
	assert.InDelta(t, 150, sy, 1e-9, "anchor y should not move")
}

func TestZoomInverseRoundTrip(t *testing.T) {
	c := NewCamera()
	zoomed := c.ZoomAt(-60, 100, 100).ZoomAt(60, 100, 100)

	assert.InDelta(t, 1.0, zoomed.Scale, 1e-9,
		"one notch in then one notch out should restore the scale")
	assert.InDelta(t, 0, zoomed.OffsetX, 1e-9, "offset x should be restored")
	assert.InDelta(t, 0, zoomed.OffsetY, 1e-9, "offset y should be restored")
}

func TestZoomClamped(t *testing.T) {
	c := NewCamera()
	for i := 0; i < 50; i++ {
		c = c.ZoomAt(-600, 0, 0)
	}
	assert.Equal(t, MaxScale, c.Scale, "zoom in should stop at the ceiling")

	for i := 0; i < 50; i++ {
		c = c.ZoomAt(600, 0, 0)
	}
	assert.Equal(t, MinScale, c.Scale, "zoom out should stop at the floor")
}

func TestZoomZeroDeltaNoop(t *testing.T) {
	c := Camera{OffsetX: 5, OffsetY: 7, Scale: 2}
	assert.Equal(t, c, c.ZoomAt(0, 100, 100), "zero delta should change nothing")
}

func TestZoomStepMatchesWheelNotch(t *testing.T) {
	byStep := NewCamera().ZoomStep(1, 50, 50)
	byDelta := NewCamera().ZoomAt(-60, 50, 50)
	assert.InDelta(t, byDelta.Scale, byStep.Scale, 1e-12, "a step is one wheel notch")
}

func TestFitFramesDocument(t *testing.T) {
	doc := &workflow.Document{Nodes: []*workflow.Node{
		{X: 0, Y: 0, Width: 100, Height: 100},
		{X: 400, Y: 300, Width: 100, Height: 100},
	}}

	c := Fit(doc, 800, 600)

	minX, minY, maxX, maxY, ok := doc.Bounds()
	assert.True(t, ok, "document has bounds")
	x1, y1 := c.ToScreen(minX, minY)
	x2, y2 := c.ToScreen(maxX, maxY)
	assert.GreaterOrEqual(t, x1, 0.0, "left edge on screen")
	assert.GreaterOrEqual(t, y1, 0.0, "top edge on screen")
	assert.LessOrEqual(t, x2, 800.0, "right edge on screen")
	assert.LessOrEqual(t, y2, 600.0, "bottom edge on screen")
}

func TestFitEmptyDocumentResets(t *testing.T) {
	c := Fit(&workflow.Document{}, 800, 600)
	assert.Equal(t, NewCamera(), c, "fit with no nodes resets the view")
}

func TestFitDegenerateViewport(t *testing.T) {
	doc := &workflow.Document{Nodes: []*workflow.Node{{Width: 10, Height: 10}}}
	assert.Equal(t, NewCamera(), Fit(doc, 0, 0), "zero-size viewport resets the view")
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := Camera{
			OffsetX: rapid.Float64Range(-1e6, 1e6).Draw(t, "ox"),
			OffsetY: rapid.Float64Range(-1e6, 1e6).Draw(t, "oy"),
			Scale:   rapid.Float64Range(MinScale, MaxScale).Draw(t, "scale"),
		}
		wx := rapid.Float64Range(-1e6, 1e6).Draw(t, "wx")
		wy := rapid.Float64Range(-1e6, 1e6).Draw(t, "wy")

		sx, sy := c.ToScreen(wx, wy)
		gx, gy := c.ToWorld(sx, sy)
		tol := math.Max(1, math.Abs(wx)) * 1e-9
		assert.InDelta(t, wx, gx, tol, "x must round-trip within tolerance")
		tol = math.Max(1, math.Abs(wy)) * 1e-9
		assert.InDelta(t, wy, gy, tol, "y must round-trip within tolerance")
	})
}
