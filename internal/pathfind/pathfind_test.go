package pathfind

import (
	"testing"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// openGrid creates an n x n environment with no obstacles.
func openGrid(t *testing.T, n int) *core.Environment {
	t.Helper()
	env, err := core.NewEnvironment(n, n)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	return env
}

func policies() []Policy {
	return []Policy{NewAStar(), NewBFS()}
}

func TestNextStep_AdjacentToGoal(t *testing.T) {
	env := openGrid(t, 5)
	for _, p := range policies() {
		t.Run(p.Name(), func(t *testing.T) {
			step, ok := p.NextStep(env, core.Pos{X: 0, Y: 0}, core.Pos{X: 1, Y: 0}, nil)
			if !ok {
				t.Fatal("expected a step")
			}
			if step != (core.Cell{X: 1, Y: 0}) {
				t.Errorf("expected (1,0), got %v", step)
			}
		})
	}
}

func TestNextStep_StartEqualsGoal(t *testing.T) {
	env := openGrid(t, 5)
	for _, p := range policies() {
		t.Run(p.Name(), func(t *testing.T) {
			step, ok := p.NextStep(env, core.Pos{X: 2, Y: 2}, core.Pos{X: 2, Y: 2}, nil)
			if !ok || step != (core.Cell{X: 2, Y: 2}) {
				t.Errorf("at goal already, got step=%v ok=%v", step, ok)
			}
		})
	}
}

func TestNextStep_Unreachable(t *testing.T) {
	env := openGrid(t, 5)
	for y := 0; y < 5; y++ {
		if err := env.AddObstacle(core.Cell{X: 2, Y: y}); err != nil {
			t.Fatalf("AddObstacle: %v", err)
		}
	}
	for _, p := range policies() {
		t.Run(p.Name(), func(t *testing.T) {
			_, ok := p.NextStep(env, core.Pos{X: 0, Y: 0}, core.Pos{X: 4, Y: 0}, nil)
			if ok {
				t.Error("expected no step across a full wall")
			}
		})
	}
}

func TestNextStep_OccupiedIsTransient(t *testing.T) {
	env := openGrid(t, 3)
	// Corridor: only the middle row is free.
	for _, c := range []core.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}} {
		if err := env.AddObstacle(c); err != nil {
			t.Fatalf("AddObstacle: %v", err)
		}
	}
	for _, p := range policies() {
		t.Run(p.Name(), func(t *testing.T) {
			// Another robot blocks the corridor.
			_, ok := p.NextStep(env, core.Pos{X: 0, Y: 1}, core.Pos{X: 2, Y: 1}, []core.Cell{{X: 1, Y: 1}})
			if ok {
				t.Error("occupied corridor should yield no step")
			}
			// Same call without occupancy succeeds: no state leaked.
			step, ok := p.NextStep(env, core.Pos{X: 0, Y: 1}, core.Pos{X: 2, Y: 1}, nil)
			if !ok || step != (core.Cell{X: 1, Y: 1}) {
				t.Errorf("expected (1,1), got %v ok=%v", step, ok)
			}
		})
	}
}

func TestNextStep_GoalOccupied(t *testing.T) {
	env := openGrid(t, 5)
	for _, p := range policies() {
		t.Run(p.Name(), func(t *testing.T) {
			_, ok := p.NextStep(env, core.Pos{X: 0, Y: 0}, core.Pos{X: 2, Y: 0}, []core.Cell{{X: 2, Y: 0}})
			if ok {
				t.Error("goal occupied by another robot should yield no step")
			}
		})
	}
}

func TestNextStep_Deterministic(t *testing.T) {
	env := openGrid(t, 8)
	_ = env.AddObstacle(core.Cell{X: 3, Y: 3})
	_ = env.AddObstacle(core.Cell{X: 4, Y: 3})
	occupied := []core.Cell{{X: 2, Y: 2}, {X: 5, Y: 5}}

	for _, p := range policies() {
		t.Run(p.Name(), func(t *testing.T) {
			first, ok1 := p.NextStep(env, core.Pos{X: 0, Y: 0}, core.Pos{X: 7, Y: 7}, occupied)
			second, ok2 := p.NextStep(env, core.Pos{X: 0, Y: 0}, core.Pos{X: 7, Y: 7}, occupied)
			if ok1 != ok2 || first != second {
				t.Errorf("non-deterministic: (%v,%v) vs (%v,%v)", first, ok1, second, ok2)
			}
		})
	}
}

// Repeatedly following NextStep must reach the goal in the optimal number
// of steps on an open grid.
func TestNextStep_WalksToGoal(t *testing.T) {
	env := openGrid(t, 6)
	goal := core.Pos{X: 5, Y: 4}
	for _, p := range policies() {
		t.Run(p.Name(), func(t *testing.T) {
			pos := core.Pos{X: 0, Y: 0}
			steps := 0
			for pos.Cell() != goal.Cell() {
				next, ok := p.NextStep(env, pos, goal, nil)
				if !ok {
					t.Fatalf("no step from %v", pos)
				}
				pos = next.Pos()
				steps++
				if steps > 20 {
					t.Fatal("not converging")
				}
			}
			if steps != 9 {
				t.Errorf("expected 9 steps (Manhattan), got %d", steps)
			}
		})
	}
}

func TestByName(t *testing.T) {
	if p, err := ByName("astar"); err != nil || p.Name() != "astar" {
		t.Errorf("astar lookup failed: %v", err)
	}
	if p, err := ByName("bfs"); err != nil || p.Name() != "bfs" {
		t.Errorf("bfs lookup failed: %v", err)
	}
	if _, err := ByName("dijkstra"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
