// Package interact handles viewport interactions: pan and zoom.
package interact

import (
	"gioui.org/io/pointer"
)

// Camera maps grid coordinates to screen pixels. World units are grid
// cells; Scale is pixels per cell.
type Camera struct {
	OffsetX float32 // pan offset in screen pixels
	OffsetY float32
	Scale   float32 // pixels per grid cell

	dragging bool
	lastX    float32
	lastY    float32
}

const (
	defaultScale = 48
	minScale     = 8
	maxScale     = 256
)

// NewCamera creates a camera at the default scale.
func NewCamera() *Camera {
	return &Camera{OffsetX: 40, OffsetY: 40, Scale: defaultScale}
}

// Reset restores the default view.
func (c *Camera) Reset() {
	c.OffsetX = 40
	c.OffsetY = 40
	c.Scale = defaultScale
}

// ToScreen converts grid coordinates to screen pixels.
func (c *Camera) ToScreen(gridX, gridY float64) (x, y float32) {
	x = float32(gridX)*c.Scale + c.OffsetX
	y = float32(gridY)*c.Scale + c.OffsetY
	return
}

// ToGrid converts screen pixels to grid coordinates.
func (c *Camera) ToGrid(x, y float32) (gridX, gridY float64) {
	gridX = float64((x - c.OffsetX) / c.Scale)
	gridY = float64((y - c.OffsetY) / c.Scale)
	return
}

// FitGrid positions the camera so a width x height grid fills the given
// screen area with a margin.
func (c *Camera) FitGrid(width, height int, screenW, screenH float32) {
	if width <= 0 || height <= 0 || screenW <= 0 || screenH <= 0 {
		return
	}
	const margin = 40
	scaleX := (screenW - 2*margin) / float32(width)
	scaleY := (screenH - 2*margin) / float32(height)
	c.Scale = clampScale(min(scaleX, scaleY))
	c.OffsetX = (screenW - float32(width)*c.Scale) / 2
	c.OffsetY = (screenH - float32(height)*c.Scale) / 2
}

// HandleEvent processes pointer events. Dragging with the secondary or
// tertiary button pans; scrolling zooms around the pointer.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.OffsetX += ev.Position.X - c.lastX
			c.OffsetY += ev.Position.Y - c.lastY
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y

	case pointer.Release, pointer.Cancel:
		c.dragging = false

	case pointer.Scroll:
		if ev.Scroll.Y == 0 {
			return
		}
		factor := float32(1.1)
		if ev.Scroll.Y > 0 {
			factor = 1 / factor
		}
		c.zoomAround(factor, ev.Position.X, ev.Position.Y)
	}
}

// zoomAround scales the view keeping the grid point under (x, y) fixed.
func (c *Camera) zoomAround(factor, x, y float32) {
	gridX, gridY := c.ToGrid(x, y)
	c.Scale = clampScale(c.Scale * factor)
	newX, newY := c.ToScreen(gridX, gridY)
	c.OffsetX += x - newX
	c.OffsetY += y - newY
}

func clampScale(s float32) float32 {
	if s < minScale {
		return minScale
	}
	if s > maxScale {
		return maxScale
	}
	return s
}
