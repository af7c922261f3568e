package core

import (
	"encoding/json"
	"testing"
)

func TestCapSet_HasAll(t *testing.T) {
	robot := NewCapSet(CapInspect, CapRepair, CapCarry)
	if !robot.HasAll(NewCapSet(CapInspect, CapCarry)) {
		t.Error("superset should satisfy requirement")
	}
	if robot.HasAll(NewCapSet(CapCharge)) {
		t.Error("missing capability should fail requirement")
	}
	if !robot.HasAll(NewCapSet()) {
		t.Error("empty requirement is always satisfied")
	}
}

func TestCapSet_JSONRoundTrip(t *testing.T) {
	caps := NewCapSet(CapRepair, CapInspect)
	b, err := json.Marshal(caps)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	// Sorted encoding keeps traces deterministic.
	if string(b) != `["inspect","repair"]` {
		t.Errorf("unexpected encoding: %s", b)
	}
	var back CapSet
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.HasAll(caps) || !caps.HasAll(back) {
		t.Error("round trip changed the set")
	}
}

func TestParseCapability_Unknown(t *testing.T) {
	if _, err := ParseCapability("teleport"); err == nil {
		t.Error("expected error for unknown capability")
	}
}

func TestStatusStrings(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{RobotIdle.String(), "idle"},
		{RobotMoving.String(), "moving"},
		{RobotExecuting.String(), "executing"},
		{TaskUnassigned.String(), "unassigned"},
		{TaskInProgress.String(), "in_progress"},
		{TaskFailed.String(), "failed"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("got %q, want %q", c.got, c.want)
		}
	}
}

func TestTaskStatus_Terminal(t *testing.T) {
	for _, s := range []TaskStatus{TaskUnassigned, TaskAssigned, TaskInProgress} {
		if s.Terminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
	for _, s := range []TaskStatus{TaskDone, TaskFailed} {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
}

func TestRobot_MoveToward(t *testing.T) {
	r := &Robot{ID: 0, Speed: 1}
	s := NewRobotState(0, Pos{0, 0})

	moved := r.MoveToward(s, Pos{3, 0}, 1)
	if moved != 1 || s.X != 1 {
		t.Errorf("expected to cover 1 cell, got moved=%g x=%g", moved, s.X)
	}

	// Snaps to target when within reach.
	s2 := NewRobotState(0, Pos{0, 0})
	moved = r.MoveToward(s2, Pos{0.5, 0}, 1)
	if moved != 0.5 || s2.X != 0.5 {
		t.Errorf("expected snap to target, got moved=%g x=%g", moved, s2.X)
	}

	if s.Traveled != 1 {
		t.Errorf("traveled should accumulate, got %g", s.Traveled)
	}
	if s.Battery >= 1.0 {
		t.Error("movement should drain battery")
	}
}

func TestTask_WorkLifecycle(t *testing.T) {
	task := &Task{ID: 0, Type: TaskInspection, Location: Cell{1, 1}, Duration: 2}
	st := NewTaskState(task, 0)

	task.Assign(st, 3)
	if st.Status != TaskAssigned || st.AssignedRobot != 3 {
		t.Fatalf("assign failed: %+v", st)
	}

	task.ApplyWork(st, 1, 5)
	if st.Status != TaskInProgress || st.StartedAt != 5 || st.Remaining != 1 {
		t.Fatalf("work not applied: %+v", st)
	}

	task.ApplyWork(st, 1, 6)
	if st.Remaining != 0 {
		t.Fatalf("remaining should hit zero: %+v", st)
	}

	task.MarkDone(st, 6)
	if st.Status != TaskDone || st.CompletedAt != 6 || st.AssignedRobot != NoRobot {
		t.Fatalf("done transition wrong: %+v", st)
	}

	// Terminal states absorb further work.
	task.ApplyWork(st, 1, 7)
	if st.Status != TaskDone {
		t.Error("work after done should be ignored")
	}
}
