// Package widgets provides the Gio UI widgets for the trace viewer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/vis/draw"
	"github.com/elektrokombinacija/fleetsim/internal/vis/interact"
	"github.com/elektrokombinacija/fleetsim/internal/vis/state"
)

// Viewport is the main 2D view of the recorded world.
type Viewport struct {
	state  *state.State
	camera *interact.Camera
	fitted bool
}

// NewViewport creates the main view over the given state.
func NewViewport(st *state.State, camera *interact.Camera) *Viewport {
	return &Viewport{state: st, camera: camera}
}

// Layout renders the environment and the snapshot under the playback
// cursor.
func (v *Viewport) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	// Fit the grid on the first frame, once the real size is known.
	if !v.fitted {
		v.camera.FitGrid(v.state.Env.Width(), v.state.Env.Height(), float32(bounds.X), float32(bounds.Y))
		v.fitted = true
	}

	v.handlePointerEvents(gtx)

	draw.DrawEnvironment(gtx, v.state.Env, v.camera)

	entry, ok := v.state.Current()
	if !ok {
		return layout.Dimensions{Size: bounds}
	}

	for _, t := range entry.Snapshot.Tasks {
		draw.DrawTaskMarker(gtx, t, v.camera)
	}
	for _, o := range entry.Snapshot.Objects {
		draw.DrawObject(gtx, o, v.camera)
	}
	for _, r := range entry.Snapshot.Robots {
		selected := r.ID == v.state.Selected
		if selected {
			draw.DrawTrail(gtx, v.state.Trail(r.ID), v.camera, draw.RobotColor(r.Status))
		}
		draw.DrawRobot(gtx, r, v.camera, selected)
	}

	return layout.Dimensions{Size: bounds}
}

func (v *Viewport) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, v)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  v,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		v.camera.HandleEvent(pe)
		if pe.Kind == pointer.Press && pe.Buttons.Contain(pointer.ButtonPrimary) {
			v.handleClick(pe.Position.X, pe.Position.Y)
		}
	}
}

func (v *Viewport) handleClick(x, y float32) {
	entry, ok := v.state.Current()
	if !ok {
		return
	}
	for _, r := range entry.Snapshot.Robots {
		if draw.HitRobot(x, y, r, v.camera) {
			v.state.SelectRobot(r.ID)
			return
		}
	}
	v.state.Selected = core.NoRobot
}
