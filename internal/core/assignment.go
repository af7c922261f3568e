package core

// Assignment pairs a robot with a task. It is a pure value: produced by a
// coordinator policy (or an external decision source), consumed exactly once
// by the engine's assignment phase, then discarded. It carries no execution
// state.
type Assignment struct {
	RobotID      RobotID `json:"robot_id"`
	TaskID       TaskID  `json:"task_id"`
	AssignedTime float64 `json:"assigned_time"`
}
