// Package coord implements pluggable coordination (task-assignment)
// policies.
//
// A Policy is a pure function over snapshots: it must not mutate its inputs
// and must return identical output for identical input, so decisions are
// reproducible and policies are swappable without touching the engine. The
// engine filters eligibility before the call: robots arrive idle, tasks
// arrive unassigned.
package coord

import (
	"fmt"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// Policy produces at most one assignment per robot and per task for the
// current tick. It never writes engine state; the engine applies (or drops)
// the returned assignments.
type Policy interface {
	Assign(tNow float64, robots []core.RobotSnapshot, tasks []core.TaskSnapshot, env *core.Environment) []core.Assignment
	Name() string
}

// ByName returns the policy registered under the given name.
func ByName(name string) (Policy, error) {
	switch name {
	case "nearest", "":
		return NewNearestFeasible(), nil
	case "firstfit":
		return NewFirstFit(), nil
	}
	return nil, fmt.Errorf("unknown coordinator policy %q", name)
}
