package engine

import (
	"github.com/google/uuid"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// RunResult is the complete outcome of a run: identity, final state, run
// metrics and the per-tick metrics trace. It aliases no engine state and
// stays valid after the engine is discarded.
type RunResult struct {
	RunID         uuid.UUID     `json:"run_id"`
	Completed     bool          `json:"completed"` // all tasks terminal (vs. budget or cancel)
	Ticks         int           `json:"ticks"`
	FinalSnapshot core.Snapshot `json:"final_snapshot"`
	Metrics       Metrics       `json:"metrics"`
	Trace         []TickRecord  `json:"trace,omitempty"`
}
