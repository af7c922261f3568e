package engine

import (
	"github.com/google/uuid"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/workload"
)

// pinned injects one assignment batch on its first consultation and then
// hands control back to the coordinator.
type pinned struct {
	batch []core.Assignment
	used  bool
}

func (p *pinned) Decide(tick int, snap core.Snapshot) ([]core.Assignment, bool) {
	if p.used {
		return nil, false
	}
	p.used = true
	return p.batch, true
}

// Fork clones the run with the given batch pinned as the next tick's
// assignment decision. The fork owns a deep copy of all mutable state and a
// fresh run id, so it can be stepped to completion to evaluate a
// hypothetical decision without disturbing the live run. The fork writes no
// trace.
func (e *Engine) Fork(batch []core.Assignment) *Engine {
	f := &Engine{
		id:          uuid.New(),
		params:      e.params,
		world:       e.world.Clone(),
		coordinator: e.coordinator,
		pathfinder:  e.pathfinder,
		// Generators hold mutable state (emission flags, random streams)
		// and cannot be shared with the live run: the fork evaluates over
		// the tasks already in the world, with no further arrivals.
		generator: workload.NewFixed(nil),
		decisions: &pinned{batch: append([]core.Assignment(nil), batch...)},
		log:       e.log.With("forked_from", e.id.String()),
	}
	return f
}
