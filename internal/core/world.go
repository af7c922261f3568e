package core

import (
	"fmt"
	"sort"
)

// World is the central container of simulation state: static definitions
// (environment, robots, task intents) plus the mutable runtime state the
// engine advances each tick. Each run owns its world exclusively; worlds are
// never shared between concurrent runs.
type World struct {
	Env         *Environment
	Robots      []*Robot
	RobotStates map[RobotID]*RobotState
	Tasks       []*Task
	TaskStates  map[TaskID]*TaskState
	Objects     map[ObjectID]*Object

	Tick int
	Now  float64
}

// NewWorld creates an empty world over the given environment.
func NewWorld(env *Environment) *World {
	return &World{
		Env:         env,
		RobotStates: make(map[RobotID]*RobotState),
		TaskStates:  make(map[TaskID]*TaskState),
		Objects:     make(map[ObjectID]*Object),
	}
}

// AddRobot registers a robot definition with its starting position.
func (w *World) AddRobot(r *Robot, at Pos) error {
	if w.RobotByID(r.ID) != nil {
		return fmt.Errorf("duplicate robot id %d", r.ID)
	}
	if !w.Env.InBounds(at.Cell()) {
		return fmt.Errorf("robot %d start (%g,%g): %w", r.ID, at.X, at.Y, ErrOutOfBounds)
	}
	w.Robots = append(w.Robots, r)
	w.RobotStates[r.ID] = NewRobotState(r.ID, at)
	sort.Slice(w.Robots, func(i, j int) bool { return w.Robots[i].ID < w.Robots[j].ID })
	return nil
}

// AddTask registers a task arriving at the given time. Delivery tasks spawn
// their object at the pickup cell if it does not exist yet.
func (w *World) AddTask(t *Task, arrival float64) error {
	if w.TaskByID(t.ID) != nil {
		return fmt.Errorf("duplicate task id %d", t.ID)
	}
	if !w.Env.InBounds(t.Location) {
		return fmt.Errorf("task %d location (%d,%d): %w", t.ID, t.Location.X, t.Location.Y, ErrOutOfBounds)
	}
	if t.Object != nil {
		if !w.Env.InBounds(t.Object.Pickup) {
			return fmt.Errorf("task %d pickup (%d,%d): %w", t.ID, t.Object.Pickup.X, t.Object.Pickup.Y, ErrOutOfBounds)
		}
		if !w.Env.InBounds(t.Object.Dropoff) {
			return fmt.Errorf("task %d dropoff (%d,%d): %w", t.ID, t.Object.Dropoff.X, t.Object.Dropoff.Y, ErrOutOfBounds)
		}
		if _, ok := w.Objects[t.Object.ObjectID]; !ok {
			w.Objects[t.Object.ObjectID] = NewObject(t.Object.ObjectID, t.Object.Pickup, t.Object.Dropoff)
		}
	}
	w.Tasks = append(w.Tasks, t)
	w.TaskStates[t.ID] = NewTaskState(t, arrival)
	sort.Slice(w.Tasks, func(i, j int) bool { return w.Tasks[i].ID < w.Tasks[j].ID })
	return nil
}

// Clone deep-copies all runtime state. Definitions and the environment are
// immutable and shared. The clone can be advanced independently of the
// original, which is how hypothetical assignment batches are evaluated.
func (w *World) Clone() *World {
	c := &World{
		Env:         w.Env,
		Robots:      append([]*Robot(nil), w.Robots...),
		Tasks:       append([]*Task(nil), w.Tasks...),
		RobotStates: make(map[RobotID]*RobotState, len(w.RobotStates)),
		TaskStates:  make(map[TaskID]*TaskState, len(w.TaskStates)),
		Objects:     make(map[ObjectID]*Object, len(w.Objects)),
		Tick:        w.Tick,
		Now:         w.Now,
	}
	for id, s := range w.RobotStates {
		copied := *s
		c.RobotStates[id] = &copied
	}
	for id, s := range w.TaskStates {
		copied := *s
		c.TaskStates[id] = &copied
	}
	for id, o := range w.Objects {
		copied := *o
		c.Objects[id] = &copied
	}
	return c
}

// RobotByID finds a robot definition by id, or nil.
func (w *World) RobotByID(id RobotID) *Robot {
	for _, r := range w.Robots {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// TaskByID finds a task definition by id, or nil.
func (w *World) TaskByID(id TaskID) *Task {
	for _, t := range w.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AllTerminal reports whether every task has reached done or failed.
func (w *World) AllTerminal() bool {
	for _, s := range w.TaskStates {
		if !s.Status.Terminal() {
			return false
		}
	}
	return len(w.Tasks) > 0
}

// OccupiedCells returns the cells of all robots except the one given,
// in deterministic order. Used as transient obstacles for pathfinding.
func (w *World) OccupiedCells(except RobotID) []Cell {
	out := make([]Cell, 0, len(w.Robots))
	for _, r := range w.Robots {
		if r.ID == except {
			continue
		}
		out = append(out, w.RobotStates[r.ID].Cell())
	}
	return out
}

// Validate checks cross-entity consistency after load: states for every
// definition, known capabilities, consistent object references.
func (w *World) Validate() error {
	if w.Env == nil {
		return fmt.Errorf("world requires an environment")
	}
	for _, r := range w.Robots {
		if _, ok := w.RobotStates[r.ID]; !ok {
			return fmt.Errorf("robot %d has no runtime state", r.ID)
		}
		if r.Speed <= 0 {
			return fmt.Errorf("robot %d: speed must be positive, got %g", r.ID, r.Speed)
		}
	}
	for _, t := range w.Tasks {
		if _, ok := w.TaskStates[t.ID]; !ok {
			return fmt.Errorf("task %d has no runtime state", t.ID)
		}
		if t.Object != nil {
			if _, ok := w.Objects[t.Object.ObjectID]; !ok {
				return fmt.Errorf("task %d references missing object %d", t.ID, t.Object.ObjectID)
			}
		}
	}
	return nil
}
