// Package pathfind implements pluggable pathfinding policies over the grid
// environment. Policies are pure: they never mutate the environment and are
// safe to call concurrently within a tick.
package pathfind

import (
	"fmt"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// Policy computes the next step toward a goal. Implementations must be
// deterministic: identical inputs yield identical outputs.
//
// NextStep returns ok=false when no feasible step exists (goal unreachable
// or fully enclosed). Unreachability is an expected outcome, not an error;
// the caller decides whether to wait or give up. The occupied cells are
// other robots' current positions, treated as transient obstacles for this
// call only.
type Policy interface {
	NextStep(env *core.Environment, start, goal core.Pos, occupied []core.Cell) (core.Cell, bool)
	Name() string
}

// ByName returns the policy registered under the given name.
func ByName(name string) (Policy, error) {
	switch name {
	case "astar", "":
		return NewAStar(), nil
	case "bfs":
		return NewBFS(), nil
	}
	return nil, fmt.Errorf("unknown pathfinding policy %q", name)
}

// blockedSet folds transient occupancy into a lookup over the static grid.
type blockedSet struct {
	env      *core.Environment
	occupied map[core.Cell]struct{}
}

func newBlockedSet(env *core.Environment, occupied []core.Cell) blockedSet {
	m := make(map[core.Cell]struct{}, len(occupied))
	for _, c := range occupied {
		m[c] = struct{}{}
	}
	return blockedSet{env: env, occupied: m}
}

func (b blockedSet) blocked(c core.Cell) bool {
	if !b.env.Free(c) {
		return true
	}
	_, ok := b.occupied[c]
	return ok
}
