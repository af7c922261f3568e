// Package draw renders simulation geometry into Gio operation lists.
package draw

import (
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/vis/interact"
)

var (
	colorGridLine = color.NRGBA{R: 45, G: 50, B: 55, A: 255}
	colorObstacle = color.NRGBA{R: 90, G: 95, B: 100, A: 255}

	zoneColors = map[core.ZoneType]color.NRGBA{
		core.ZoneInspection:  {R: 60, G: 110, B: 160, A: 90},
		core.ZoneMaintenance: {R: 160, G: 120, B: 60, A: 90},
		core.ZoneLoading:     {R: 70, G: 150, B: 90, A: 90},
		core.ZoneRestricted:  {R: 170, G: 70, B: 70, A: 90},
		core.ZoneCharging:    {R: 150, G: 150, B: 70, A: 90},
	}
)

// DrawEnvironment renders the static scenario geometry: zone fills,
// obstacle cells and grid lines.
func DrawEnvironment(gtx layout.Context, env *core.Environment, cam *interact.Camera) {
	for _, name := range env.ZoneNames() {
		z := env.Zone(name)
		col, ok := zoneColors[z.Type]
		if !ok {
			col = color.NRGBA{R: 100, G: 100, B: 100, A: 60}
		}
		for _, c := range z.Cells() {
			fillCell(gtx, c, cam, col)
		}
	}
	for _, c := range env.Obstacles() {
		fillCell(gtx, c, cam, colorObstacle)
	}
	drawGridLines(gtx, env.Width(), env.Height(), cam)
}

// DrawTaskMarker renders a pending or assigned task as a diamond at its
// target cell. Terminal tasks draw nothing.
func DrawTaskMarker(gtx layout.Context, t core.TaskSnapshot, cam *interact.Camera) {
	if t.Status.Terminal() {
		return
	}
	cx, cy := cam.ToScreen(float64(t.Location.X)+0.5, float64(t.Location.Y)+0.5)
	size := cam.Scale * 0.3

	col := color.NRGBA{R: 230, G: 200, B: 80, A: 255}
	if t.Status == core.TaskInProgress {
		col = color.NRGBA{R: 120, G: 220, B: 120, A: 255}
	}

	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(cx, cy-size))
	p.LineTo(f32.Pt(cx+size, cy))
	p.LineTo(f32.Pt(cx, cy+size))
	p.LineTo(f32.Pt(cx-size, cy))
	p.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

// DrawObject renders a carryable object as a small square. Carried
// objects ride at the carrier's position; delivered ones fade out.
func DrawObject(gtx layout.Context, o core.ObjectSnapshot, cam *interact.Camera) {
	col := color.NRGBA{R: 200, G: 160, B: 110, A: 255}
	if o.Delivered {
		col.A = 90
	}
	cx, cy := cam.ToScreen(o.X+0.5, o.Y+0.5)
	half := cam.Scale * 0.18
	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(cx-half, cy-half))
	p.LineTo(f32.Pt(cx+half, cy-half))
	p.LineTo(f32.Pt(cx+half, cy+half))
	p.LineTo(f32.Pt(cx-half, cy+half))
	p.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

func fillCell(gtx layout.Context, c core.Cell, cam *interact.Camera, col color.NRGBA) {
	x0, y0 := cam.ToScreen(float64(c.X), float64(c.Y))
	x1, y1 := cam.ToScreen(float64(c.X+1), float64(c.Y+1))
	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(x0, y0))
	p.LineTo(f32.Pt(x1, y0))
	p.LineTo(f32.Pt(x1, y1))
	p.LineTo(f32.Pt(x0, y1))
	p.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

func drawGridLines(gtx layout.Context, width, height int, cam *interact.Camera) {
	for x := 0; x <= width; x++ {
		x0, y0 := cam.ToScreen(float64(x), 0)
		_, y1 := cam.ToScreen(float64(x), float64(height))
		drawLine(gtx, x0, y0, x0, y1, 1, colorGridLine)
	}
	for y := 0; y <= height; y++ {
		x0, y0 := cam.ToScreen(0, float64(y))
		x1, _ := cam.ToScreen(float64(width), float64(y))
		drawLine(gtx, x0, y0, x1, y0, 1, colorGridLine)
	}
}
