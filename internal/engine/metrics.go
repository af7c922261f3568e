package engine

import "github.com/elektrokombinacija/fleetsim/internal/core"

// TickRecord is the metrics row appended after every tick.
type TickRecord struct {
	Tick        int     `json:"tick"`
	Now         float64 `json:"t_now"`
	Spawned     int     `json:"spawned"`
	Assigned    int     `json:"assigned"`
	Dropped     int     `json:"dropped"`   // stale or malformed assignments rejected this tick
	Stalled     int     `json:"stalled"`   // robots with no feasible step this tick
	Completed   int     `json:"completed"` // cumulative
	Failed      int     `json:"failed"`    // cumulative
	TravelTotal float64 `json:"travel_total"`
	AvgBattery  float64 `json:"avg_battery"`
}

// Metrics aggregates run-level outcomes. Counters are cumulative; derived
// averages are computed in Finalize.
type Metrics struct {
	Ticks          int     `json:"ticks"`
	SimulatedTime  float64 `json:"simulated_time"`
	TasksSpawned   int     `json:"tasks_spawned"`
	TasksCompleted int     `json:"tasks_completed"`
	TasksFailed    int     `json:"tasks_failed"`

	// Makespan is the completion time of the last finished task, or the
	// current simulated time while work is still in progress.
	Makespan              float64 `json:"makespan"`
	AvgTaskCompletionTime float64 `json:"avg_task_completion_time"`
	TotalTravelDistance   float64 `json:"total_travel_distance"`

	StalledTicks       int `json:"stalled_ticks"`       // robot-ticks with no feasible step
	DroppedAssignments int `json:"dropped_assignments"` // policy outputs rejected by the engine
	Warnings           int `json:"warnings"`            // all tick-level anomalies
}

// observe folds one task's terminal state into the counters.
func (m *Metrics) observe(s *core.TaskState) {
	switch s.Status {
	case core.TaskDone:
		m.TasksCompleted++
		if s.CompletedAt > m.Makespan {
			m.Makespan = s.CompletedAt
		}
	case core.TaskFailed:
		m.TasksFailed++
	}
}

// finalize computes derived figures from the world's end state.
func (m *Metrics) finalize(w *core.World) {
	m.Ticks = w.Tick
	m.SimulatedTime = w.Now
	m.TasksSpawned = len(w.Tasks)
	m.TasksCompleted = 0
	m.TasksFailed = 0
	m.Makespan = 0

	var sum float64
	for _, t := range w.Tasks {
		s := w.TaskStates[t.ID]
		m.observe(s)
		if s.Status == core.TaskDone {
			sum += s.CompletedAt - s.ArrivalTime
		}
	}
	if m.TasksCompleted > 0 {
		m.AvgTaskCompletionTime = sum / float64(m.TasksCompleted)
	}
	if !w.AllTerminal() {
		m.Makespan = w.Now
	}

	m.TotalTravelDistance = 0
	for _, s := range w.RobotStates {
		m.TotalTravelDistance += s.Traveled
	}
}
