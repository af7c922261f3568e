package draw

import (
	"image/color"
	"math"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/vis/interact"
)

// Robot colors by activity state.
var (
	colorRobotIdle      = color.NRGBA{R: 130, G: 140, B: 150, A: 255}
	colorRobotMoving    = color.NRGBA{R: 100, G: 180, B: 255, A: 255}
	colorRobotExecuting = color.NRGBA{R: 120, G: 220, B: 120, A: 255}
	colorRobotSelected  = color.NRGBA{R: 255, G: 255, B: 100, A: 255}
	colorBatteryLow     = color.NRGBA{R: 230, G: 90, B: 80, A: 255}
)

// RobotColor returns the fill color for a robot's current status.
func RobotColor(status core.RobotStatus) color.NRGBA {
	switch status {
	case core.RobotMoving:
		return colorRobotMoving
	case core.RobotExecuting:
		return colorRobotExecuting
	default:
		return colorRobotIdle
	}
}

// DrawRobot renders a robot as a filled circle with a battery ring.
func DrawRobot(gtx layout.Context, r core.RobotSnapshot, cam *interact.Camera, selected bool) {
	cx, cy := cam.ToScreen(r.X+0.5, r.Y+0.5)
	radius := cam.Scale * 0.32

	col := RobotColor(r.Status)
	if selected {
		col = colorRobotSelected
	}
	drawFilledCircle(gtx, cx, cy, radius, col)

	ringCol := color.NRGBA{R: 220, G: 220, B: 220, A: 200}
	if r.Battery < 0.2 {
		ringCol = colorBatteryLow
	}
	drawArc(gtx, cx, cy, radius+3, r.Battery, 2, ringCol)
}

// DrawTrail renders the path a robot has taken, fading towards the start.
func DrawTrail(gtx layout.Context, trail []core.Pos, cam *interact.Camera, base color.NRGBA) {
	if len(trail) < 2 {
		return
	}
	n := len(trail)
	for i := 0; i < n-1; i++ {
		col := base
		col.A = uint8(40 + float64(i)/float64(n)*140)
		width := cam.Scale * 0.06 * (0.4 + 0.6*float32(i)/float32(n))
		x1, y1 := cam.ToScreen(trail[i].X+0.5, trail[i].Y+0.5)
		x2, y2 := cam.ToScreen(trail[i+1].X+0.5, trail[i+1].Y+0.5)
		drawLine(gtx, x1, y1, x2, y2, width, col)
	}
}

// HitRobot reports whether a screen point falls on the robot's circle.
func HitRobot(x, y float32, r core.RobotSnapshot, cam *interact.Camera) bool {
	cx, cy := cam.ToScreen(r.X+0.5, r.Y+0.5)
	radius := cam.Scale * 0.32
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= radius*radius
}

func drawLine(gtx layout.Context, x1, y1, x2, y2, width float32, col color.NRGBA) {
	dx := x2 - x1
	dy := y2 - y1
	length := float32(math.Sqrt(float64(dx*dx + dy*dy)))
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	px := -dy * width / 2
	py := dx * width / 2

	var p clip.Path
	p.Begin(gtx.Ops)
	p.MoveTo(f32.Pt(x1+px, y1+py))
	p.LineTo(f32.Pt(x2+px, y2+py))
	p.LineTo(f32.Pt(x2-px, y2-py))
	p.LineTo(f32.Pt(x1-px, y1-py))
	p.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

func drawFilledCircle(gtx layout.Context, cx, cy, radius float32, col color.NRGBA) {
	var p clip.Path
	p.Begin(gtx.Ops)
	p.Move(f32.Pt(cx+radius, cy))

	const segments = 24
	for i := 1; i <= segments; i++ {
		angle := float64(i) * 2 * math.Pi / segments
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		p.Line(f32.Pt(x-p.Pos().X, y-p.Pos().Y))
	}
	p.Close()
	paint.FillShape(gtx.Ops, col, clip.Outline{Path: p.End()}.Op())
}

// drawArc draws a partial ring, fraction 0-1 of a full circle starting at
// twelve o'clock. Used for the battery indicator.
func drawArc(gtx layout.Context, cx, cy, radius float32, fraction float64, width float32, col color.NRGBA) {
	if fraction <= 0 {
		return
	}
	if fraction > 1 {
		fraction = 1
	}
	const segments = 24
	steps := int(fraction * segments)
	if steps < 1 {
		steps = 1
	}
	start := -math.Pi / 2
	prevX := cx + radius*float32(math.Cos(start))
	prevY := cy + radius*float32(math.Sin(start))
	for i := 1; i <= steps; i++ {
		angle := start + fraction*2*math.Pi*float64(i)/float64(steps)
		x := cx + radius*float32(math.Cos(angle))
		y := cy + radius*float32(math.Sin(angle))
		drawLine(gtx, prevX, prevY, x, y, width, col)
		prevX, prevY = x, y
	}
}
