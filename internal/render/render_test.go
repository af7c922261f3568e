package render

import (
	"strings"
	"testing"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

func buildSnapshotWorld(t *testing.T) *core.World {
	t.Helper()
	env, err := core.NewEnvironment(4, 3)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	if err := env.AddObstacle(core.Cell{X: 1, Y: 1}); err != nil {
		t.Fatalf("AddObstacle: %v", err)
	}
	if err := env.AddZone(core.NewZone("dock", core.ZoneLoading, []core.Cell{{X: 3, Y: 2}})); err != nil {
		t.Fatalf("AddZone: %v", err)
	}
	w := core.NewWorld(env)
	robot := &core.Robot{ID: 1, Capabilities: core.NewCapSet(core.CapInspect), Speed: 1}
	if err := w.AddRobot(robot, core.Pos{}); err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	task := &core.Task{ID: 2, Type: core.TaskInspection, Location: core.Cell{X: 2, Y: 0}, RequiredCaps: core.NewCapSet(core.CapInspect), Duration: 4}
	if err := w.AddTask(task, 0); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	return w
}

func TestViewGridSymbols(t *testing.T) {
	w := buildSnapshotWorld(t)
	v := NewView(w.Env)
	lines := v.Lines(w.Snapshot())

	if lines[0] != "t=0" {
		t.Fatalf("header = %q, want t=0", lines[0])
	}
	grid := lines[2:5]
	want := []string{
		"R . 2 .",
		". # . .",
		". . . L",
	}
	for i, row := range want {
		if grid[i] != row {
			t.Errorf("grid row %d = %q, want %q", i, grid[i], row)
		}
	}
}

func TestViewListsSections(t *testing.T) {
	w := buildSnapshotWorld(t)
	out := NewView(w.Env).String(w.Snapshot())

	for _, want := range []string{
		"Robots:",
		"R Robot 1  pos=(0,0)  battery=100%",
		"Tasks:",
		"[IN] Task 2",
		"remaining=4.0/4.0",
		"Activity:",
		"Robot 1 (0,0) is idle",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q\n%s", want, out)
		}
	}
	if !strings.Contains(out, string(statusSymbols[core.TaskUnassigned])) {
		t.Errorf("unassigned task should use the %c symbol", statusSymbols[core.TaskUnassigned])
	}
}

func TestViewIsDeterministic(t *testing.T) {
	w := buildSnapshotWorld(t)
	v := NewView(w.Env)
	snap := w.Snapshot()
	if a, b := v.String(snap), v.String(snap); a != b {
		t.Fatal("same snapshot rendered differently")
	}
}

func TestTerminalFullThenDiffDraw(t *testing.T) {
	var sb strings.Builder
	term := NewTerminal(&sb)

	if err := term.Draw([]string{"aaa", "bbb"}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	first := sb.String()
	if !strings.Contains(first, clearScreen) {
		t.Fatal("first draw must clear the screen")
	}
	if !strings.Contains(first, "aaa") || !strings.Contains(first, "bbb") {
		t.Fatal("first draw must emit every line")
	}

	sb.Reset()
	if err := term.Draw([]string{"aaa", "BBB"}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	second := sb.String()
	if strings.Contains(second, clearScreen) {
		t.Fatal("same-size redraw must not clear the screen")
	}
	if strings.Contains(second, "aaa") {
		t.Fatal("unchanged line must not be rewritten")
	}
	if !strings.Contains(second, "BBB") {
		t.Fatal("changed line must be rewritten")
	}

	sb.Reset()
	if err := term.Draw([]string{"aaa", "BBB"}); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if sb.Len() != 0 {
		t.Fatalf("identical frame should write nothing, wrote %q", sb.String())
	}

	sb.Reset()
	if err := term.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !strings.Contains(sb.String(), showCursor) {
		t.Fatal("close must restore the cursor")
	}
}
