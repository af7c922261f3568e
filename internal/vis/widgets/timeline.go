package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/fleetsim/internal/vis/state"
)

// Timeline is a tick scrubber along the bottom of the window.
type Timeline struct {
	state    *state.State
	dragging bool
}

// NewTimeline creates a timeline over the given state.
func NewTimeline(st *state.State) *Timeline {
	return &Timeline{state: st}
}

const (
	timelineHeight = 56
	timelineMargin = 20
)

// Layout renders the scrubber track, playhead and tick labels.
func (t *Timeline) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	rect := image.Rect(0, 0, gtx.Constraints.Max.X, timelineHeight)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 35, G: 38, B: 42, A: 255}, clip.Rect(rect).Op())

	t.handlePointerEvents(gtx)

	trackY := timelineHeight / 2
	trackWidth := gtx.Constraints.Max.X - 2*timelineMargin

	trackRect := image.Rect(timelineMargin, trackY-3, timelineMargin+trackWidth, trackY+3)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 60, G: 65, B: 70, A: 255}, clip.Rect(trackRect).Op())

	fillWidth := int(float64(trackWidth) * t.state.Playback.Progress())
	if fillWidth > 0 {
		fillRect := image.Rect(timelineMargin, trackY-3, timelineMargin+fillWidth, trackY+3)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 100, G: 180, B: 255, A: 255}, clip.Rect(fillRect).Op())
	}

	playheadX := timelineMargin + fillWidth
	playheadRect := image.Rect(playheadX-6, trackY-6, playheadX+6, trackY+6)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, clip.Rect(playheadRect).Op())

	t.drawLabels(gtx, th)

	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: timelineHeight}}
}

func (t *Timeline) drawLabels(gtx layout.Context, th *material.Theme) {
	tick := 0
	tNow := 0.0
	if entry, ok := t.state.Current(); ok {
		tick = entry.Record.Tick
		tNow = entry.Record.Now
	}

	current := material.Label(th, 12, fmt.Sprintf("tick %d  t=%.1f", tick, tNow))
	current.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	current.Alignment = text.Start

	speed := material.Label(th, 12, fmt.Sprintf("%.1f ticks/s", t.state.Playback.Speed))
	speed.Color = color.NRGBA{R: 150, G: 180, B: 200, A: 255}

	last := material.Label(th, 12, fmt.Sprintf("%d ticks", len(t.state.Entries)))
	last.Color = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	last.Alignment = text.End

	layout.Inset{Top: unit.Dp(4), Left: unit.Dp(20), Right: unit.Dp(20)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(current.Layout),
			layout.Rigid(speed.Layout),
			layout.Rigid(last.Layout),
		)
	})
}

func (t *Timeline) handlePointerEvents(gtx layout.Context) {
	trackWidth := gtx.Constraints.Max.X - 2*timelineMargin

	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, timelineHeight)).Push(gtx.Ops)
	event.Op(gtx.Ops, t)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: t,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release,
		})
		if !ok {
			break
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			t.dragging = true
			t.seekTo(pe.Position.X, trackWidth)
		case pointer.Drag:
			if t.dragging {
				t.seekTo(pe.Position.X, trackWidth)
			}
		case pointer.Release:
			t.dragging = false
		}
	}
}

func (t *Timeline) seekTo(screenX float32, trackWidth int) {
	progress := (float64(screenX) - timelineMargin) / float64(trackWidth)
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	t.state.Playback.Pause()
	t.state.Playback.Seek(progress * t.state.Playback.MaxIndex)
}
