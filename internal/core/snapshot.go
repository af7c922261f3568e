package core

import "sort"

// Snapshot is an immutable point-in-time copy of all entity state. It never
// aliases live engine state: every slice and set is copied, so consumers
// (renderers, metrics, the wire layer) can hold it across ticks. Request a
// fresh snapshot per frame; a snapshot does not update.
type Snapshot struct {
	Tick    int              `json:"tick"`
	Now     float64          `json:"t_now"`
	Robots  []RobotSnapshot  `json:"robots"`
	Tasks   []TaskSnapshot   `json:"tasks"`
	Objects []ObjectSnapshot `json:"objects,omitempty"`
}

// RobotSnapshot is the read-only view of one robot: definition plus state.
type RobotSnapshot struct {
	ID           RobotID     `json:"id"`
	Capabilities CapSet      `json:"capabilities"`
	Speed        float64     `json:"speed"`
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	Battery      float64     `json:"battery"`
	Status       RobotStatus `json:"status"`
	CurrentTask  TaskID      `json:"current_task"`
	Traveled     float64     `json:"traveled"`
}

// Pos returns the robot's position at snapshot time.
func (r RobotSnapshot) Pos() Pos { return Pos{X: r.X, Y: r.Y} }

// TaskSnapshot is the read-only view of one task: intent plus state.
type TaskSnapshot struct {
	ID            TaskID     `json:"id"`
	Type          TaskType   `json:"type"`
	Location      Cell       `json:"location"`
	RequiredCaps  CapSet     `json:"required_capabilities"`
	Duration      float64    `json:"duration"`
	Priority      int        `json:"priority"`
	Object        *ObjectRef `json:"object,omitempty"`
	Status        TaskStatus `json:"status"`
	AssignedRobot RobotID    `json:"assigned_robot"`
	Remaining     float64    `json:"remaining"`
	ArrivalTime   float64    `json:"arrival_time"`
	CompletedAt   float64    `json:"completed_at"`
}

// ObjectSnapshot is the read-only view of one carryable object.
type ObjectSnapshot struct {
	ID        ObjectID `json:"id"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	CarriedBy RobotID  `json:"carried_by"`
	Goal      Cell     `json:"goal"`
	Delivered bool     `json:"delivered"`
}

// Snapshot copies the world's entity state. Entities appear in ascending id
// order, so two snapshots of the same state are structurally equal.
func (w *World) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:   w.Tick,
		Now:    w.Now,
		Robots: make([]RobotSnapshot, 0, len(w.Robots)),
		Tasks:  make([]TaskSnapshot, 0, len(w.Tasks)),
	}
	for _, r := range w.Robots {
		s := w.RobotStates[r.ID]
		snap.Robots = append(snap.Robots, RobotSnapshot{
			ID:           r.ID,
			Capabilities: r.Capabilities.Clone(),
			Speed:        r.Speed,
			X:            s.X,
			Y:            s.Y,
			Battery:      s.Battery,
			Status:       s.Status,
			CurrentTask:  s.CurrentTask,
			Traveled:     s.Traveled,
		})
	}
	for _, t := range w.Tasks {
		s := w.TaskStates[t.ID]
		var ref *ObjectRef
		if t.Object != nil {
			copied := *t.Object
			ref = &copied
		}
		snap.Tasks = append(snap.Tasks, TaskSnapshot{
			ID:            t.ID,
			Type:          t.Type,
			Location:      t.Location,
			RequiredCaps:  t.RequiredCaps.Clone(),
			Duration:      t.Duration,
			Priority:      t.Priority,
			Object:        ref,
			Status:        s.Status,
			AssignedRobot: s.AssignedRobot,
			Remaining:     s.Remaining,
			ArrivalTime:   s.ArrivalTime,
			CompletedAt:   s.CompletedAt,
		})
	}
	if len(w.Objects) > 0 {
		ids := make([]ObjectID, 0, len(w.Objects))
		for id := range w.Objects {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		snap.Objects = make([]ObjectSnapshot, 0, len(ids))
		for _, id := range ids {
			o := w.Objects[id]
			snap.Objects = append(snap.Objects, ObjectSnapshot{
				ID:        o.ID,
				X:         o.X,
				Y:         o.Y,
				CarriedBy: o.CarriedBy,
				Goal:      o.Goal,
				Delivered: o.Delivered,
			})
		}
	}
	return snap
}
