// Package core defines the fleetsim domain model: environment, robots,
// tasks, carryable objects and their runtime state.
package core

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RobotID is a unique robot identifier.
type RobotID int

// TaskID is a unique task identifier.
type TaskID int

// ObjectID is a unique carryable-object identifier.
type ObjectID int

// Sentinels for unset optional references.
const (
	NoRobot  RobotID  = -1
	NoTask   TaskID   = -1
	NoObject ObjectID = -1
)

// Capability is a tag describing what a robot can do.
type Capability string

const (
	CapInspect Capability = "inspect"
	CapRepair  Capability = "repair"
	CapCarry   Capability = "carry"
	CapSense   Capability = "sense"
	CapCharge  Capability = "charge"
)

var knownCapabilities = map[Capability]struct{}{
	CapInspect: {},
	CapRepair:  {},
	CapCarry:   {},
	CapSense:   {},
	CapCharge:  {},
}

// ParseCapability validates a capability tag.
func ParseCapability(s string) (Capability, error) {
	c := Capability(s)
	if _, ok := knownCapabilities[c]; !ok {
		return "", fmt.Errorf("unknown capability %q, must be one of %v", s, KnownCapabilities())
	}
	return c, nil
}

// KnownCapabilities returns all valid capability tags, sorted.
func KnownCapabilities() []Capability {
	caps := make([]Capability, 0, len(knownCapabilities))
	for c := range knownCapabilities {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// CapSet is a set of capability tags.
type CapSet map[Capability]struct{}

// NewCapSet builds a set from tags.
func NewCapSet(caps ...Capability) CapSet {
	s := make(CapSet, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has reports whether c is in the set.
func (s CapSet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// HasAll reports whether every capability in req is in the set.
func (s CapSet) HasAll(req CapSet) bool {
	for c := range req {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set.
func (s CapSet) Clone() CapSet {
	out := make(CapSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the set's tags in lexicographic order.
func (s CapSet) Sorted() []Capability {
	caps := make([]Capability, 0, len(s))
	for c := range s {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}

// MarshalJSON encodes the set as a sorted array of tags.
func (s CapSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of tags, validating each.
func (s *CapSet) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(CapSet, len(raw))
	for _, r := range raw {
		c, err := ParseCapability(r)
		if err != nil {
			return err
		}
		out[c] = struct{}{}
	}
	*s = out
	return nil
}

// TaskType classifies what kind of work a task demands.
type TaskType string

const (
	TaskInspection    TaskType = "inspection"
	TaskInvestigation TaskType = "investigation"
	TaskMaintenance   TaskType = "maintenance"
	TaskEmergency     TaskType = "emergency"
	TaskDelivery      TaskType = "delivery"
)

var knownTaskTypes = map[TaskType]struct{}{
	TaskInspection:    {},
	TaskInvestigation: {},
	TaskMaintenance:   {},
	TaskEmergency:     {},
	TaskDelivery:      {},
}

// ParseTaskType validates a task type string.
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(s)
	if _, ok := knownTaskTypes[t]; !ok {
		return "", fmt.Errorf("unknown task type %q", s)
	}
	return t, nil
}

// RobotStatus is a robot's activity state.
type RobotStatus int

const (
	RobotIdle RobotStatus = iota
	RobotMoving
	RobotExecuting
)

func (s RobotStatus) String() string {
	return [...]string{"idle", "moving", "executing"}[s]
}

// MarshalJSON encodes the status as its string form.
func (s RobotStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the string form.
func (s *RobotStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw {
	case "idle":
		*s = RobotIdle
	case "moving":
		*s = RobotMoving
	case "executing":
		*s = RobotExecuting
	default:
		return fmt.Errorf("unknown robot status %q", raw)
	}
	return nil
}

// TaskStatus is a task's lifecycle state. Transitions are monotonic:
// unassigned -> assigned -> in_progress -> done | failed.
type TaskStatus int

const (
	TaskUnassigned TaskStatus = iota
	TaskAssigned
	TaskInProgress
	TaskDone
	TaskFailed
)

func (s TaskStatus) String() string {
	return [...]string{"unassigned", "assigned", "in_progress", "done", "failed"}[s]
}

// Terminal reports whether the status is done or failed.
func (s TaskStatus) Terminal() bool {
	return s == TaskDone || s == TaskFailed
}

// MarshalJSON encodes the status as its string form.
func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the string form.
func (s *TaskStatus) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw {
	case "unassigned":
		*s = TaskUnassigned
	case "assigned":
		*s = TaskAssigned
	case "in_progress":
		*s = TaskInProgress
	case "done":
		*s = TaskDone
	case "failed":
		*s = TaskFailed
	default:
		return fmt.Errorf("unknown task status %q", raw)
	}
	return nil
}
