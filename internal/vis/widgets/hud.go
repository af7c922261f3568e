package widgets

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/vis/state"
)

// HUD is the status bar across the top of the window. It shows the
// per-tick counters for the frame under the cursor and details for the
// selected robot.
type HUD struct {
	state *state.State
}

// NewHUD creates the status bar over the given state.
func NewHUD(st *state.State) *HUD {
	return &HUD{state: st}
}

// Layout renders the status bar.
func (h *HUD) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	const height = 32
	rect := image.Rect(0, 0, gtx.Constraints.Max.X, height)
	paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 44, B: 48, A: 255}, clip.Rect(rect).Op())

	entry, ok := h.state.Current()
	if !ok {
		label := material.Label(th, 13, "empty trace")
		label.Color = color.NRGBA{R: 200, G: 150, B: 150, A: 255}
		layout.Inset{Top: unit.Dp(8), Left: unit.Dp(12)}.Layout(gtx, label.Layout)
		return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: height}}
	}

	rec := entry.Record
	status := fmt.Sprintf("completed %d  failed %d  stalled %d  dropped %d  battery %.0f%%",
		rec.Completed, rec.Failed, rec.Stalled, rec.Dropped, rec.AvgBattery*100)

	left := material.Label(th, 13, status)
	left.Color = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

	right := material.Label(th, 13, h.selectedInfo(entry.Snapshot))
	right.Color = color.NRGBA{R: 170, G: 200, B: 230, A: 255}

	layout.Inset{Top: unit.Dp(8), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
			layout.Rigid(left.Layout),
			layout.Rigid(right.Layout),
		)
	})

	return layout.Dimensions{Size: image.Point{X: gtx.Constraints.Max.X, Y: height}}
}

func (h *HUD) selectedInfo(snap core.Snapshot) string {
	if h.state.Selected == core.NoRobot {
		return ""
	}
	for _, r := range snap.Robots {
		if r.ID != h.state.Selected {
			continue
		}
		if r.CurrentTask == core.NoTask {
			return fmt.Sprintf("robot %d  %s", r.ID, r.Status)
		}
		return fmt.Sprintf("robot %d  %s  task %d", r.ID, r.Status, r.CurrentTask)
	}
	return ""
}
