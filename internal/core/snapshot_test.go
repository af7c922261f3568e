package core

import (
	"reflect"
	"testing"
)

func buildWorld(t *testing.T) *World {
	t.Helper()
	env, err := NewEnvironment(5, 5)
	if err != nil {
		t.Fatalf("NewEnvironment: %v", err)
	}
	w := NewWorld(env)

	if err := w.AddRobot(&Robot{ID: 1, Capabilities: NewCapSet(CapInspect), Speed: 1}, Pos{0, 0}); err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	if err := w.AddRobot(&Robot{ID: 0, Capabilities: NewCapSet(CapRepair, CapCarry), Speed: 2}, Pos{4, 4}); err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	if err := w.AddTask(&Task{ID: 0, Type: TaskInspection, Location: Cell{2, 2}, RequiredCaps: NewCapSet(CapInspect), Duration: 3}, 0); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := w.AddTask(&Task{
		ID: 1, Type: TaskDelivery, Location: Cell{4, 0},
		RequiredCaps: NewCapSet(CapCarry), Duration: 1,
		Object: &ObjectRef{ObjectID: 0, Pickup: Cell{0, 4}, Dropoff: Cell{4, 0}},
	}, 0); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return w
}

func TestWorld_RobotsSortedByID(t *testing.T) {
	w := buildWorld(t)
	if w.Robots[0].ID != 0 || w.Robots[1].ID != 1 {
		t.Errorf("robots not sorted by id: %v, %v", w.Robots[0].ID, w.Robots[1].ID)
	}
}

func TestWorld_DeliverySpawnsObject(t *testing.T) {
	w := buildWorld(t)
	obj, ok := w.Objects[0]
	if !ok {
		t.Fatal("delivery task should spawn its object")
	}
	if obj.Cell() != (Cell{0, 4}) {
		t.Errorf("object should start at pickup, got %v", obj.Cell())
	}
	if obj.Carried() {
		t.Error("object should start uncarried")
	}
}

func TestSnapshot_Idempotent(t *testing.T) {
	w := buildWorld(t)
	a := w.Snapshot()
	b := w.Snapshot()
	if !reflect.DeepEqual(a, b) {
		t.Error("two snapshots with no intervening tick should be equal")
	}
}

func TestSnapshot_DoesNotAliasWorld(t *testing.T) {
	w := buildWorld(t)
	snap := w.Snapshot()

	w.RobotStates[0].X = 99
	w.TaskStates[0].Status = TaskDone
	w.Objects[0].CarriedBy = 1

	if snap.Robots[0].X == 99 {
		t.Error("snapshot aliased robot state")
	}
	if snap.Tasks[0].Status == TaskDone {
		t.Error("snapshot aliased task state")
	}
	if snap.Objects[0].CarriedBy == 1 {
		t.Error("snapshot aliased object state")
	}
}

func TestWorld_DuplicateIDs(t *testing.T) {
	w := buildWorld(t)
	if err := w.AddRobot(&Robot{ID: 0, Speed: 1}, Pos{1, 1}); err == nil {
		t.Error("expected duplicate robot id error")
	}
	if err := w.AddTask(&Task{ID: 1, Type: TaskInspection, Location: Cell{1, 1}}, 0); err == nil {
		t.Error("expected duplicate task id error")
	}
}

func TestWorld_AllTerminal(t *testing.T) {
	w := buildWorld(t)
	if w.AllTerminal() {
		t.Error("fresh world should not be all-terminal")
	}
	for id, s := range w.TaskStates {
		w.TaskByID(id).MarkDone(s, 1)
	}
	if !w.AllTerminal() {
		t.Error("all tasks done, expected all-terminal")
	}
}
