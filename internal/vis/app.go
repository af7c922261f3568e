// Package vis implements a Gio-based viewer for recorded run traces.
package vis

import (
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/trace"
	"github.com/elektrokombinacija/fleetsim/internal/vis/interact"
	"github.com/elektrokombinacija/fleetsim/internal/vis/state"
	"github.com/elektrokombinacija/fleetsim/internal/vis/widgets"
)

// App is the trace viewer application.
//
// Keys: Space toggles playback, Left/Right step one tick, Home rewinds,
// Up/Down change speed, R resets the camera.
type App struct {
	state    *state.State
	theme    *material.Theme
	hud      *widgets.HUD
	viewport *widgets.Viewport
	timeline *widgets.Timeline
	camera   *interact.Camera
}

// NewApp creates a viewer over a recorded trace and the environment it
// was recorded in.
func NewApp(env *core.Environment, entries []trace.Entry) *App {
	st := state.New(env, entries)
	camera := interact.NewCamera()

	return &App{
		state:    st,
		theme:    material.NewTheme(),
		hud:      widgets.NewHUD(st),
		viewport: widgets.NewViewport(st, camera),
		timeline: widgets.NewTimeline(st),
		camera:   camera,
	}
}

// Run drives the window event loop until the window is closed.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag, Optional: key.ModShift})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKey(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)

			if a.state.Playback.Playing {
				a.state.Playback.Advance()
				w.Invalidate()
			}
		}
	}
}

func (a *App) handleKey(e key.Event) {
	switch e.Name {
	case key.NameSpace:
		a.state.Playback.TogglePlay()
	case key.NameLeftArrow:
		a.state.Playback.StepBack()
	case key.NameRightArrow:
		a.state.Playback.StepForward()
	case key.NameUpArrow:
		a.state.Playback.SetSpeed(a.state.Playback.Speed * 2)
	case key.NameDownArrow:
		a.state.Playback.SetSpeed(a.state.Playback.Speed / 2)
	case key.NameHome:
		a.state.Playback.Reset()
	case "R":
		a.camera.Reset()
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.hud.Layout(gtx, a.theme)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.viewport.Layout(gtx, a.theme)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}
