// Package render draws simulation snapshots as text: a pure snapshot-to-grid
// view, and a stateful terminal renderer that diffs frames into ANSI updates.
package render

import (
	"fmt"
	"strings"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// Grid symbols.
const (
	robotSymbol    = 'R'
	obstacleSymbol = '#'
	objectSymbol   = 'o'
	emptySymbol    = '.'
)

var zoneSymbols = map[core.ZoneType]rune{
	core.ZoneInspection:  'I',
	core.ZoneMaintenance: 'M',
	core.ZoneLoading:     'L',
	core.ZoneRestricted:  'X',
	core.ZoneCharging:    'C',
}

var statusSymbols = map[core.TaskStatus]rune{
	core.TaskUnassigned: '○',
	core.TaskAssigned:   '◐',
	core.TaskInProgress: '◑',
	core.TaskDone:       '●',
	core.TaskFailed:     '✗',
}

var typeLabels = map[core.TaskType]string{
	core.TaskInspection:    "IN",
	core.TaskInvestigation: "IV",
	core.TaskMaintenance:   "MT",
	core.TaskEmergency:     "EM",
	core.TaskDelivery:      "DL",
}

// View turns snapshots into text frames. It is pure and stateless beyond the
// environment geometry: the same snapshot always yields the same frame.
type View struct {
	env *core.Environment
}

// NewView builds a view over the scenario's environment.
func NewView(env *core.Environment) *View {
	return &View{env: env}
}

// Lines renders the snapshot as a full frame: header, grid, then robot, task
// and activity listings.
func (v *View) Lines(snap core.Snapshot) []string {
	lines := []string{fmt.Sprintf("t=%d", snap.Tick), ""}
	lines = append(lines, v.gridLines(snap)...)
	lines = append(lines, "")
	lines = append(lines, v.robotLines(snap)...)
	lines = append(lines, "")
	lines = append(lines, v.taskLines(snap)...)
	lines = append(lines, "")
	lines = append(lines, v.activityLines(snap)...)
	return lines
}

// String renders the snapshot as a single printable block.
func (v *View) String(snap core.Snapshot) string {
	return strings.Join(v.Lines(snap), "\n")
}

func (v *View) gridLines(snap core.Snapshot) []string {
	robots := make(map[core.Cell]struct{}, len(snap.Robots))
	for _, r := range snap.Robots {
		robots[r.Pos().Cell()] = struct{}{}
	}
	objects := make(map[core.Cell]struct{}, len(snap.Objects))
	for _, o := range snap.Objects {
		if o.CarriedBy == core.NoRobot && !o.Delivered {
			objects[core.Pos{X: o.X, Y: o.Y}.Cell()] = struct{}{}
		}
	}
	targets := make(map[core.Cell]core.TaskID, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if t.Status.Terminal() {
			continue
		}
		if _, taken := targets[t.Location]; !taken {
			targets[t.Location] = t.ID
		}
	}

	out := make([]string, 0, v.env.Height())
	var row strings.Builder
	for y := 0; y < v.env.Height(); y++ {
		row.Reset()
		for x := 0; x < v.env.Width(); x++ {
			if x > 0 {
				row.WriteByte(' ')
			}
			row.WriteRune(v.symbolAt(core.Cell{X: x, Y: y}, robots, objects, targets))
		}
		out = append(out, row.String())
	}
	return out
}

func (v *View) symbolAt(c core.Cell, robots, objects map[core.Cell]struct{}, targets map[core.Cell]core.TaskID) rune {
	if _, ok := robots[c]; ok {
		return robotSymbol
	}
	if v.env.Blocked(c) {
		return obstacleSymbol
	}
	if _, ok := objects[c]; ok {
		return objectSymbol
	}
	if id, ok := targets[c]; ok {
		if id < 10 {
			return rune('0' + int(id))
		}
		return '*'
	}
	for _, name := range v.env.ZoneNames() {
		z := v.env.Zone(name)
		if z.Contains(c) {
			if sym, ok := zoneSymbols[z.Type]; ok {
				return sym
			}
			return '?'
		}
	}
	return emptySymbol
}

func (v *View) robotLines(snap core.Snapshot) []string {
	out := []string{"Robots:"}
	for _, r := range snap.Robots {
		out = append(out, fmt.Sprintf("  %c Robot %d  pos=(%.0f,%.0f)  battery=%.0f%%",
			robotSymbol, r.ID, r.X, r.Y, r.Battery*100))
	}
	return out
}

func (v *View) taskLines(snap core.Snapshot) []string {
	out := []string{"Tasks:"}
	for _, t := range snap.Tasks {
		status, ok := statusSymbols[t.Status]
		if !ok {
			status = '?'
		}
		label, ok := typeLabels[t.Type]
		if !ok {
			label = "??"
		}
		out = append(out, fmt.Sprintf("  %c [%s] Task %d  priority=%d  remaining=%.1f/%.1f  at (%d,%d)",
			status, label, t.ID, t.Priority, t.Remaining, t.Duration, t.Location.X, t.Location.Y))
	}
	return out
}

func (v *View) activityLines(snap core.Snapshot) []string {
	tasks := make(map[core.TaskID]core.TaskSnapshot, len(snap.Tasks))
	for _, t := range snap.Tasks {
		tasks[t.ID] = t
	}
	out := []string{"Activity:"}
	for _, r := range snap.Robots {
		if t, ok := tasks[r.CurrentTask]; ok {
			out = append(out, fmt.Sprintf("  Robot %d (%.0f,%.0f) is working on %s (Task %d)",
				r.ID, r.X, r.Y, t.Type, t.ID))
			continue
		}
		out = append(out, fmt.Sprintf("  Robot %d (%.0f,%.0f) is idle", r.ID, r.X, r.Y))
	}
	return out
}
