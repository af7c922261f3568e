package workload

import "github.com/elektrokombinacija/fleetsim/internal/core"

// Fixed emits the scenario's predefined tasks exactly once, on the first
// call, and nothing afterwards.
type Fixed struct {
	tasks   []*core.Task
	emitted bool
}

// NewFixed creates a fixed-batch generator over the given tasks.
func NewFixed(tasks []*core.Task) *Fixed {
	return &Fixed{tasks: tasks}
}

func (f *Fixed) Name() string { return "fixed" }

func (f *Fixed) SpawnTasks(tNow float64) []*core.Task {
	if f.emitted {
		return nil
	}
	f.emitted = true
	out := make([]*core.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}
