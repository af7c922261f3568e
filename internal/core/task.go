package core

// ObjectRef links a delivery task to the object it moves.
type ObjectRef struct {
	ObjectID ObjectID `json:"object_id"`
	Pickup   Cell     `json:"pickup"`
	Dropoff  Cell     `json:"dropoff"`
}

// Task is an immutable description of required work: where it must happen,
// what capabilities it needs and how long it takes. It holds no execution
// state; that lives in TaskState.
//
// For delivery tasks Object is set and Location equals Object.Dropoff.
type Task struct {
	ID           TaskID
	Type         TaskType
	Location     Cell
	RequiredCaps CapSet
	Duration     float64 // work time at Location
	Priority     int
	Object       *ObjectRef
}

// IsDelivery reports whether the task moves an object.
func (t *Task) IsDelivery() bool {
	return t.Object != nil
}

// TaskState is the per-run mutable state of a task, owned by the engine.
// Timestamps use -1 for "not yet".
type TaskState struct {
	TaskID        TaskID     `json:"task_id"`
	Status        TaskStatus `json:"status"`
	AssignedRobot RobotID    `json:"assigned_robot"`
	Remaining     float64    `json:"remaining"`
	ArrivalTime   float64    `json:"arrival_time"`
	StartedAt     float64    `json:"started_at"`
	CompletedAt   float64    `json:"completed_at"`
	NoProgress    float64    `json:"no_progress"` // time since the task last advanced
}

// NewTaskState creates the initial unassigned state for a task arriving at
// the given time.
func NewTaskState(t *Task, arrival float64) *TaskState {
	return &TaskState{
		TaskID:        t.ID,
		Status:        TaskUnassigned,
		AssignedRobot: NoRobot,
		Remaining:     t.Duration,
		ArrivalTime:   arrival,
		StartedAt:     -1,
		CompletedAt:   -1,
	}
}

// Assign records the robot now responsible for the task. Valid only from
// the unassigned state; the engine enforces eligibility before calling.
func (t *Task) Assign(s *TaskState, robot RobotID) {
	s.AssignedRobot = robot
	if s.Status == TaskUnassigned {
		s.Status = TaskAssigned
	}
}

// ApplyWork applies dt of linear work. The engine calls this only when the
// executing robot satisfies the task's spatial constraint. Marks the task
// done when remaining work reaches zero.
func (t *Task) ApplyWork(s *TaskState, dt, now float64) {
	if s.Status.Terminal() {
		return
	}
	if s.StartedAt < 0 {
		s.StartedAt = now
	}
	s.Status = TaskInProgress
	s.Remaining -= dt
	s.NoProgress = 0
	if s.Remaining <= 0 {
		s.Remaining = 0
	}
}

// MarkDone moves the task to its done terminal state and clears assignment.
func (t *Task) MarkDone(s *TaskState, now float64) {
	s.Status = TaskDone
	s.CompletedAt = now
	s.AssignedRobot = NoRobot
}

// MarkFailed moves the task to its failed terminal state and clears
// assignment.
func (t *Task) MarkFailed(s *TaskState, now float64) {
	s.Status = TaskFailed
	s.CompletedAt = now
	s.AssignedRobot = NoRobot
}
