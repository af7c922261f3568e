package coord

import (
	"testing"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

func testEnv(t *testing.T) *core.Environment {
	t.Helper()
	env, err := core.NewEnvironment(10, 10)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	return env
}

func robotSnap(id int, x, y float64, caps ...core.Capability) core.RobotSnapshot {
	return core.RobotSnapshot{
		ID:           core.RobotID(id),
		Capabilities: core.NewCapSet(caps...),
		Speed:        1,
		X:            x,
		Y:            y,
		Battery:      1,
		Status:       core.RobotIdle,
		CurrentTask:  core.NoTask,
	}
}

func taskSnap(id, x, y int, caps ...core.Capability) core.TaskSnapshot {
	return core.TaskSnapshot{
		ID:            core.TaskID(id),
		Type:          core.TaskInspection,
		Location:      core.Cell{X: x, Y: y},
		RequiredCaps:  core.NewCapSet(caps...),
		Duration:      5,
		Status:        core.TaskUnassigned,
		AssignedRobot: core.NoRobot,
		Remaining:     5,
		CompletedAt:   -1,
	}
}

func assignmentMap(t *testing.T, as []core.Assignment) map[core.RobotID]core.TaskID {
	t.Helper()
	m := make(map[core.RobotID]core.TaskID, len(as))
	for _, a := range as {
		if _, dup := m[a.RobotID]; dup {
			t.Fatalf("robot %v assigned twice", a.RobotID)
		}
		m[a.RobotID] = a.TaskID
	}
	return m
}

func TestNearestFeasiblePicksClosest(t *testing.T) {
	env := testEnv(t)
	robots := []core.RobotSnapshot{robotSnap(1, 0, 0, core.CapInspect)}
	tasks := []core.TaskSnapshot{
		taskSnap(1, 8, 8, core.CapInspect),
		taskSnap(2, 1, 1, core.CapInspect),
		taskSnap(3, 5, 0, core.CapInspect),
	}

	got := assignmentMap(t, NewNearestFeasible().Assign(0, robots, tasks, env))
	if got[1] != 2 {
		t.Fatalf("robot 1 got task %v, want nearest task 2", got[1])
	}
}

func TestNearestFeasibleLowestRobotIDWinsContest(t *testing.T) {
	env := testEnv(t)
	// Both robots are closest to task 1; robot 1 must claim it and robot 2
	// falls back to task 2.
	robots := []core.RobotSnapshot{
		robotSnap(2, 3, 3, core.CapInspect),
		robotSnap(1, 3, 3, core.CapInspect),
	}
	tasks := []core.TaskSnapshot{
		taskSnap(1, 3, 4, core.CapInspect),
		taskSnap(2, 9, 9, core.CapInspect),
	}

	got := assignmentMap(t, NewNearestFeasible().Assign(0, robots, tasks, env))
	if got[1] != 1 {
		t.Errorf("robot 1 got task %v, want 1", got[1])
	}
	if got[2] != 2 {
		t.Errorf("robot 2 got task %v, want 2", got[2])
	}
}

func TestNearestFeasibleCapabilityFilter(t *testing.T) {
	env := testEnv(t)
	robots := []core.RobotSnapshot{
		robotSnap(1, 0, 0, core.CapInspect),
		robotSnap(2, 9, 9, core.CapRepair),
	}
	tasks := []core.TaskSnapshot{
		taskSnap(1, 1, 0, core.CapRepair),
	}

	got := assignmentMap(t, NewNearestFeasible().Assign(0, robots, tasks, env))
	if len(got) != 1 {
		t.Fatalf("got %d assignments, want 1", len(got))
	}
	// Robot 1 is far closer but lacks the capability.
	if got[2] != 1 {
		t.Fatalf("robot 2 got task %v, want 1", got[2])
	}
}

func TestNearestFeasibleNoFeasibleTask(t *testing.T) {
	env := testEnv(t)
	robots := []core.RobotSnapshot{robotSnap(1, 0, 0, core.CapSense)}
	tasks := []core.TaskSnapshot{taskSnap(1, 1, 1, core.CapCharge)}

	if got := NewNearestFeasible().Assign(0, robots, tasks, env); len(got) != 0 {
		t.Fatalf("got %d assignments, want none", len(got))
	}
}

func TestNearestFeasibleEachTaskClaimedOnce(t *testing.T) {
	env := testEnv(t)
	robots := []core.RobotSnapshot{
		robotSnap(1, 0, 0, core.CapInspect),
		robotSnap(2, 0, 1, core.CapInspect),
		robotSnap(3, 1, 0, core.CapInspect),
	}
	tasks := []core.TaskSnapshot{taskSnap(1, 0, 0, core.CapInspect)}

	got := NewNearestFeasible().Assign(0, robots, tasks, env)
	if len(got) != 1 {
		t.Fatalf("got %d assignments for a single task, want 1", len(got))
	}
	if got[0].RobotID != 1 {
		t.Fatalf("task claimed by robot %v, want 1", got[0].RobotID)
	}
}

func TestFirstFitIgnoresDistance(t *testing.T) {
	env := testEnv(t)
	robots := []core.RobotSnapshot{
		robotSnap(1, 9, 9, core.CapInspect),
		robotSnap(2, 0, 0, core.CapInspect),
	}
	tasks := []core.TaskSnapshot{taskSnap(1, 0, 1, core.CapInspect)}

	got := assignmentMap(t, NewFirstFit().Assign(0, robots, tasks, env))
	// First fit takes robot 1 even though robot 2 is adjacent.
	if got[1] != 1 {
		t.Fatalf("robot 1 got task %v, want 1", got[1])
	}
	if _, ok := got[2]; ok {
		t.Fatalf("robot 2 unexpectedly assigned")
	}
}

func TestFirstFitSkipsIncapableRobots(t *testing.T) {
	env := testEnv(t)
	robots := []core.RobotSnapshot{
		robotSnap(1, 0, 0, core.CapSense),
		robotSnap(2, 0, 0, core.CapRepair, core.CapInspect),
	}
	tasks := []core.TaskSnapshot{taskSnap(1, 5, 5, core.CapRepair)}

	got := assignmentMap(t, NewFirstFit().Assign(0, robots, tasks, env))
	if got[2] != 1 {
		t.Fatalf("robot 2 got task %v, want 1", got[2])
	}
}

func TestPoliciesAreDeterministicAndPure(t *testing.T) {
	env := testEnv(t)
	robots := []core.RobotSnapshot{
		robotSnap(3, 4, 4, core.CapInspect, core.CapRepair),
		robotSnap(1, 0, 0, core.CapInspect),
		robotSnap(2, 9, 0, core.CapRepair),
	}
	tasks := []core.TaskSnapshot{
		taskSnap(2, 1, 1, core.CapInspect),
		taskSnap(1, 8, 1, core.CapRepair),
		taskSnap(3, 4, 5, core.CapInspect),
	}

	for _, p := range []Policy{NewNearestFeasible(), NewFirstFit()} {
		t.Run(p.Name(), func(t *testing.T) {
			first := p.Assign(2.5, robots, tasks, env)
			second := p.Assign(2.5, robots, tasks, env)
			if len(first) != len(second) {
				t.Fatalf("repeated call changed result size: %d vs %d", len(first), len(second))
			}
			for i := range first {
				if first[i] != second[i] {
					t.Fatalf("repeated call changed assignment %d: %+v vs %+v", i, first[i], second[i])
				}
			}
			// Inputs must keep their caller-visible order.
			if robots[0].ID != 3 || tasks[0].ID != 2 {
				t.Fatalf("policy reordered input slices")
			}
		})
	}
}

func TestByName(t *testing.T) {
	for name, want := range map[string]string{"": "nearest", "nearest": "nearest", "firstfit": "firstfit"} {
		p, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
		if p.Name() != want {
			t.Fatalf("ByName(%q).Name() = %q, want %q", name, p.Name(), want)
		}
	}
	if _, err := ByName("hungarian"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
