package core

// Battery drain rates, per the execution model: robots drain while moving
// (per unit distance), while working and while idle (per tick).
const (
	DrainMovePerUnit = 0.001
	DrainWorkPerTick = 0.002
	DrainIdlePerTick = 0.0005
)

// Robot is an immutable robot definition. The robot executes movement and
// work against a RobotState but owns no tasks and makes no decisions; all
// coordination lives in the engine.
type Robot struct {
	ID           RobotID
	Capabilities CapSet
	Speed        float64 // cells per time unit
}

// CanExecute reports whether the robot's capabilities cover req.
func (r *Robot) CanExecute(req CapSet) bool {
	return r.Capabilities.HasAll(req)
}

// RobotState is the per-run mutable state of a robot. It is mutated only by
// the engine's assignment, motion and execution phases.
type RobotState struct {
	RobotID     RobotID     `json:"robot_id"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	Battery     float64     `json:"battery"`
	Status      RobotStatus `json:"status"`
	CurrentTask TaskID      `json:"current_task"`
	Traveled    float64     `json:"traveled"`
	Stalled     int         `json:"stalled"` // cumulative ticks with no feasible step
}

// NewRobotState creates a fully-charged idle state at the given position.
func NewRobotState(id RobotID, at Pos) *RobotState {
	return &RobotState{
		RobotID:     id,
		X:           at.X,
		Y:           at.Y,
		Battery:     1.0,
		Status:      RobotIdle,
		CurrentTask: NoTask,
	}
}

// Pos returns the robot's continuous position.
func (s *RobotState) Pos() Pos {
	return Pos{X: s.X, Y: s.Y}
}

// Cell returns the grid cell the robot currently occupies.
func (s *RobotState) Cell() Cell {
	return s.Pos().Cell()
}

// MoveToward advances the state toward target by at most speed*dt, draining
// battery per distance moved. Returns the distance actually covered. It does
// not check bounds or collisions; the caller supplies a feasible target.
func (r *Robot) MoveToward(s *RobotState, target Pos, dt float64) float64 {
	dist := s.Pos().Distance(target)
	if dist == 0 {
		return 0
	}
	step := r.Speed * dt
	if step >= dist {
		s.X = target.X
		s.Y = target.Y
		step = dist
	} else {
		s.X += (target.X - s.X) / dist * step
		s.Y += (target.Y - s.Y) / dist * step
	}
	s.Traveled += step
	s.drain(step * DrainMovePerUnit)
	return step
}

// Work applies work effort for dt time units, draining battery. The robot
// does not know what task the work advances.
func (r *Robot) Work(s *RobotState, dt float64) {
	s.drain(dt * DrainWorkPerTick)
}

// Idle applies the idle battery drain for dt time units.
func (r *Robot) Idle(s *RobotState, dt float64) {
	s.drain(dt * DrainIdlePerTick)
}

func (s *RobotState) drain(amount float64) {
	s.Battery -= amount
	if s.Battery < 0 {
		s.Battery = 0
	}
}
