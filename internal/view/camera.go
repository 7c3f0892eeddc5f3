// Package view holds the viewport transform between world coordinates (the
// document's node space) and screen coordinates.
package view

import (
	"math"

	"github.com/zjrosen/flowlens/internal/workflow"
)

// Zoom limits and wheel response. One wheel notch of delta 60 multiplies
// the scale by zoomStep.
const (
	MinScale      = 0.1
	MaxScale      = 4.0
	zoomStep      = 1.22
	zoomIntensity = 60.0
)

// Camera maps world space to screen space: screen = world*Scale + Offset.
type Camera struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// NewCamera returns a camera at the origin with unit scale.
func NewCamera() Camera {
	return Camera{Scale: 1}
}

// ToScreen converts a world-space point to screen space.
func (c Camera) ToScreen(wx, wy float64) (float64, float64) {
	return wx*c.Scale + c.OffsetX, wy*c.Scale + c.OffsetY
}

// ToWorld converts a screen-space point to world space.
func (c Camera) ToWorld(sx, sy float64) (float64, float64) {
	return (sx - c.OffsetX) / c.Scale, (sy - c.OffsetY) / c.Scale
}

// Pan shifts the view by a screen-space displacement, so content tracks the
// pointer one-to-one at any zoom.
func (c Camera) Pan(dx, dy float64) Camera {
	c.OffsetX += dx
	c.OffsetY += dy
	return c
}

// ZoomAt applies a wheel delta as a zoom about the given screen-space
// anchor point, so the world point under the anchor stays put. Positive
// delta zooms out, negative zooms in. The resulting scale is clamped.
func (c Camera) ZoomAt(delta, sx, sy float64) Camera {
	if delta == 0 {
		return c
	}
	factor := math.Pow(zoomStep, -delta/zoomIntensity)
	return c.scaleAbout(clampScale(c.Scale*factor), sx, sy)
}

// ZoomStep zooms in (positive steps) or out (negative steps) by whole wheel
// notches about the anchor.
func (c Camera) ZoomStep(steps int, sx, sy float64) Camera {
	return c.ZoomAt(-float64(steps)*zoomIntensity, sx, sy)
}

func (c Camera) scaleAbout(newScale, sx, sy float64) Camera {
	if newScale == c.Scale {
		return c
	}
	wx, wy := c.ToWorld(sx, sy)
	c.Scale = newScale
	c.OffsetX = sx - wx*c.Scale
	c.OffsetY = sy - wy*c.Scale
	return c
}

// Fit returns a camera framing the whole document within a viewport of the
// given screen size, with a small margin. An empty document resets the view
// instead of failing.
func Fit(doc *workflow.Document, viewW, viewH float64) Camera {
	minX, minY, maxX, maxY, ok := doc.Bounds()
	if !ok || viewW <= 0 || viewH <= 0 {
		return NewCamera()
	}

	const margin = 0.9
	w := maxX - minX
	h := maxY - minY
	scale := 1.0
	if w > 0 && h > 0 {
		scale = math.Min(viewW/w, viewH/h) * margin
	}
	scale = clampScale(scale)

	cx := (minX + maxX) / 2
	cy := (minY + maxY) / 2
	return Camera{
		Scale:   scale,
		OffsetX: viewW/2 - cx*scale,
		OffsetY: viewH/2 - cy*scale,
	}
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
