// Package engine advances a fleet simulation tick by tick.
//
// The engine owns the clock and every mutable entity. A tick runs six phases
// in fixed order, each completing before the next begins: workload spawn,
// assignment, motion, object resolution, task execution, metrics. Within a
// tick there are no concurrent writers, so a tick's outcome is a pure
// function of the previous state and the policy outputs. Policies only ever
// see snapshots and never write back.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/fleetsim/internal/coord"
	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/pathfind"
	"github.com/elektrokombinacija/fleetsim/internal/workload"
)

// Params are the run-level tuning knobs.
type Params struct {
	// DT is the simulated time advanced per tick.
	DT float64
	// MaxTicks bounds the run length.
	MaxTicks int
	// GracePeriod is the simulated time a non-terminal task may sit with
	// zero progress before it is failed.
	GracePeriod float64
	// HandoffRadius is the distance from the dropoff cell at which a
	// carried object is released. Zero means the exact cell.
	HandoffRadius float64
}

// DefaultParams returns the standard parameters: unit ticks, a grace period
// of ten ticks, exact-cell handoff.
func DefaultParams() Params {
	return Params{
		DT:          1,
		MaxTicks:    1000,
		GracePeriod: 10,
	}
}

func (p Params) validate() error {
	if p.DT <= 0 {
		return fmt.Errorf("dt must be positive, got %g", p.DT)
	}
	if p.MaxTicks <= 0 {
		return fmt.Errorf("max_ticks must be positive, got %d", p.MaxTicks)
	}
	if p.GracePeriod < 0 {
		return fmt.Errorf("grace_period must not be negative, got %g", p.GracePeriod)
	}
	if p.HandoffRadius < 0 {
		return fmt.Errorf("handoff_radius must not be negative, got %g", p.HandoffRadius)
	}
	return nil
}

// DecisionSource supplies the assignment batch for a tick in place of the
// built-in coordinator. Returning ok=false delegates the tick back to the
// coordinator; returning an empty batch with ok=true skips assignment for
// the tick. Malformed or stale assignments are dropped, never fatal.
type DecisionSource interface {
	Decide(tick int, snap core.Snapshot) (batch []core.Assignment, ok bool)
}

// Sink consumes the per-tick snapshot and metrics record, typically a trace
// writer. Sink errors are logged and counted, not propagated.
type Sink interface {
	Record(snap core.Snapshot, rec TickRecord) error
}

// Options selects the pluggable pieces of a run. Zero values get defaults:
// the nearest-feasible coordinator, A* pathfinding, a fixed workload over
// the world's tasks, no decision source, no sink.
type Options struct {
	Coordinator coord.Policy
	Pathfinder  pathfind.Policy
	Workload    workload.Generator
	Decisions   DecisionSource
	Trace       Sink
	Logger      *slog.Logger
}

// Engine is a single-run simulation. It is not safe for concurrent use; the
// run loop is single-threaded and cancellation happens between ticks only.
type Engine struct {
	id     uuid.UUID
	params Params
	world  *core.World

	coordinator coord.Policy
	pathfinder  pathfind.Policy
	generator   workload.Generator
	decisions   DecisionSource
	trace       Sink
	log         *slog.Logger

	metrics Metrics
	records []TickRecord
}

// New builds an engine over an already-validated world.
func New(world *core.World, params Params, opts Options) (*Engine, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if err := world.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		id:          uuid.New(),
		params:      params,
		world:       world,
		coordinator: opts.Coordinator,
		pathfinder:  opts.Pathfinder,
		generator:   opts.Workload,
		decisions:   opts.Decisions,
		trace:       opts.Trace,
		log:         opts.Logger,
	}
	if e.coordinator == nil {
		e.coordinator = coord.NewNearestFeasible()
	}
	if e.pathfinder == nil {
		e.pathfinder = pathfind.NewAStar()
	}
	if e.generator == nil {
		e.generator = workload.NewFixed(nil)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	e.log = e.log.With("run_id", e.id.String())
	return e, nil
}

// RunID identifies this run.
func (e *Engine) RunID() uuid.UUID { return e.id }

// Snapshot copies the current entity state. Safe to hand to renderers; it
// never aliases engine state.
func (e *Engine) Snapshot() core.Snapshot { return e.world.Snapshot() }

// Metrics returns the run metrics computed over the ticks executed so far.
func (e *Engine) Metrics() Metrics {
	m := e.metrics
	m.finalize(e.world)
	return m
}

// Run executes ticks until every task is terminal or MaxTicks is reached.
// Cancellation is honored between ticks; a cancelled run still returns the
// result covering all completed ticks.
func (e *Engine) Run(ctx context.Context) *RunResult {
	for e.world.Tick < e.params.MaxTicks && !e.done() {
		select {
		case <-ctx.Done():
			e.log.Info("run cancelled", "tick", e.world.Tick)
			return e.result(false)
		default:
		}
		e.Step()
	}
	return e.result(e.world.AllTerminal())
}

// done reports whether the run has nothing left to do: at least one task
// exists and all are terminal, and the workload cannot spawn more work
// mid-run (fixed mode exhausts at t=0).
func (e *Engine) done() bool {
	if !e.world.AllTerminal() {
		return false
	}
	_, openEnded := e.generator.(*workload.Poisson)
	return !openEnded
}

func (e *Engine) result(completed bool) *RunResult {
	return &RunResult{
		RunID:         e.id,
		Completed:     completed,
		Ticks:         e.world.Tick,
		FinalSnapshot: e.world.Snapshot(),
		Metrics:       e.Metrics(),
		Trace:         append([]TickRecord(nil), e.records...),
	}
}

// Step advances the simulation by exactly one tick.
func (e *Engine) Step() {
	rec := TickRecord{Tick: e.world.Tick, Now: e.world.Now}

	rec.Spawned = e.spawnPhase()
	rec.Assigned, rec.Dropped = e.assignPhase()
	rec.Stalled = e.motionPhase()
	e.objectPhase()
	e.executePhase()

	e.world.Tick++
	e.world.Now += e.params.DT

	e.metricsPhase(&rec)
}

// spawnPhase appends newly arrived tasks to the world.
func (e *Engine) spawnPhase() int {
	spawned := 0
	for _, t := range e.generator.SpawnTasks(e.world.Now) {
		if err := e.world.AddTask(t, e.world.Now); err != nil {
			e.warn("spawned task rejected", "task", t.ID, "err", err)
			continue
		}
		spawned++
	}
	return spawned
}

// assignPhase collects eligible robots and tasks, asks the decision source
// or coordinator for a batch, and applies it. Stale entries are dropped with
// a warning; a dropped entry never aborts the tick.
func (e *Engine) assignPhase() (applied, dropped int) {
	snap := e.world.Snapshot()
	idle := make([]core.RobotSnapshot, 0, len(snap.Robots))
	for _, r := range snap.Robots {
		if r.Status == core.RobotIdle {
			idle = append(idle, r)
		}
	}
	open := make([]core.TaskSnapshot, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		if t.Status == core.TaskUnassigned {
			open = append(open, t)
		}
	}
	if len(idle) == 0 || len(open) == 0 {
		if e.decisions != nil {
			// Still consult the source so one-shot batches are consumed
			// on the tick they were injected for.
			e.decisions.Decide(e.world.Tick, snap)
		}
		return 0, 0
	}

	var batch []core.Assignment
	if e.decisions != nil {
		if b, ok := e.decisions.Decide(e.world.Tick, snap); ok {
			batch = b
		} else {
			batch = e.coordinator.Assign(e.world.Now, idle, open, e.world.Env)
		}
	} else {
		batch = e.coordinator.Assign(e.world.Now, idle, open, e.world.Env)
	}

	for _, a := range batch {
		if err := e.apply(a); err != nil {
			e.warn("assignment dropped", "robot", a.RobotID, "task", a.TaskID, "err", err)
			dropped++
			continue
		}
		applied++
	}
	return applied, dropped
}

// apply writes one assignment, re-checking eligibility first. Policies are
// untrusted: a stale or malformed entry must not be able to corrupt state.
func (e *Engine) apply(a core.Assignment) error {
	robot := e.world.RobotByID(a.RobotID)
	if robot == nil {
		return fmt.Errorf("unknown robot %d", a.RobotID)
	}
	task := e.world.TaskByID(a.TaskID)
	if task == nil {
		return fmt.Errorf("unknown task %d", a.TaskID)
	}
	rs := e.world.RobotStates[a.RobotID]
	ts := e.world.TaskStates[a.TaskID]
	if rs.Status != core.RobotIdle {
		return fmt.Errorf("robot %d is not idle", a.RobotID)
	}
	if ts.Status != core.TaskUnassigned {
		return fmt.Errorf("task %d is not unassigned", a.TaskID)
	}
	if !robot.CanExecute(task.RequiredCaps) {
		return fmt.Errorf("robot %d lacks capabilities for task %d", a.RobotID, a.TaskID)
	}

	task.Assign(ts, a.RobotID)
	rs.CurrentTask = a.TaskID
	rs.Status = core.RobotMoving
	return nil
}

// motionPhase moves every robot that has somewhere to be. A robot with no
// feasible step stays put for the tick; that is backpressure, not an error,
// but it counts toward the task's no-progress clock.
func (e *Engine) motionPhase() (stalled int) {
	for _, robot := range e.world.Robots {
		rs := e.world.RobotStates[robot.ID]
		switch rs.Status {
		case core.RobotIdle:
			robot.Idle(rs, e.params.DT)
			continue
		case core.RobotExecuting:
			continue
		}

		task := e.world.TaskByID(rs.CurrentTask)
		if task == nil {
			e.warn("moving robot with no task, idling it", "robot", robot.ID)
			e.release(rs)
			continue
		}
		ts := e.world.TaskStates[rs.CurrentTask]
		target := e.motionTarget(robot.ID, task)

		if rs.Pos().Distance(target.Pos()) == 0 {
			e.arrive(robot.ID, rs, task)
			continue
		}

		var step core.Cell
		if rs.Cell() == target {
			// Inside the target cell, off its origin: close the gap.
			step = target
		} else {
			var feasible bool
			step, feasible = e.pathfinder.NextStep(e.world.Env, rs.Pos(), target.Pos(), e.world.OccupiedCells(robot.ID))
			if !feasible {
				stalled++
				rs.Stalled++
				ts.NoProgress += e.params.DT
				e.failIfStuck(task, ts, rs)
				continue
			}
		}

		moved := robot.MoveToward(rs, step.Pos(), e.params.DT)
		if moved > 0 {
			ts.NoProgress = 0
		}
		if rs.Pos().Distance(target.Pos()) == 0 {
			e.arrive(robot.ID, rs, task)
		}
	}
	return stalled
}

// motionTarget is where the robot assigned to task should be heading: the
// object while a delivery's payload is uncollected, the dropoff while this
// robot carries it, otherwise the work location.
func (e *Engine) motionTarget(robot core.RobotID, task *core.Task) core.Cell {
	if task.Object != nil {
		obj := e.world.Objects[task.Object.ObjectID]
		if !obj.Delivered {
			if !obj.Carried() {
				return obj.Cell()
			}
			if obj.CarriedBy == robot {
				return task.Object.Dropoff
			}
		}
	}
	return task.Location
}

// arrive flips a robot to executing when it stands on the work location.
// Reaching an intermediate delivery waypoint (the payload) keeps it moving.
func (e *Engine) arrive(robot core.RobotID, rs *core.RobotState, task *core.Task) {
	if rs.Cell() != task.Location {
		return
	}
	if task.Object != nil {
		obj := e.world.Objects[task.Object.ObjectID]
		if !obj.Delivered && obj.CarriedBy != robot && !e.withinHandoff(obj) {
			// At the dropoff without the payload: keep moving toward it.
			return
		}
	}
	rs.Status = core.RobotExecuting
}

// objectPhase attaches uncollected payloads to robots standing on them,
// recomputes carried positions from the carriers, and releases payloads
// within the handoff radius of their goal.
func (e *Engine) objectPhase() {
	for _, task := range e.world.Tasks {
		if task.Object == nil {
			continue
		}
		ts := e.world.TaskStates[task.ID]
		if ts.Status.Terminal() || ts.AssignedRobot == core.NoRobot {
			continue
		}
		obj := e.world.Objects[task.Object.ObjectID]
		if obj.Delivered || obj.Carried() {
			continue
		}
		rs := e.world.RobotStates[ts.AssignedRobot]
		if rs.Cell() == obj.Cell() {
			obj.CarriedBy = ts.AssignedRobot
		}
	}

	for _, obj := range e.world.Objects {
		if !obj.Carried() {
			continue
		}
		carrier := e.world.RobotStates[obj.CarriedBy]
		obj.X = carrier.X
		obj.Y = carrier.Y
		if e.withinHandoff(obj) {
			obj.Release(obj.Goal)
			obj.Delivered = true
			carrier.Status = core.RobotExecuting
		}
	}
}

// withinHandoff reports whether the object sits close enough to its goal to
// be released there.
func (e *Engine) withinHandoff(obj *core.Object) bool {
	return obj.Pos().Distance(obj.Goal.Pos()) <= e.params.HandoffRadius
}

// executePhase advances work on every executing robot's task and settles
// completions and stuck failures.
func (e *Engine) executePhase() {
	now := e.world.Now + e.params.DT // completion is stamped at tick end
	for _, robot := range e.world.Robots {
		rs := e.world.RobotStates[robot.ID]
		if rs.Status != core.RobotExecuting {
			continue
		}
		task := e.world.TaskByID(rs.CurrentTask)
		if task == nil {
			e.warn("executing robot with no task, idling it", "robot", robot.ID)
			e.release(rs)
			continue
		}
		ts := e.world.TaskStates[rs.CurrentTask]

		if rs.Cell() != task.Location {
			// Should not happen with the motion phase in charge; treat as
			// no progress rather than corrupting the invariant.
			rs.Status = core.RobotMoving
			ts.NoProgress += e.params.DT
			e.failIfStuck(task, ts, rs)
			continue
		}

		task.ApplyWork(ts, e.params.DT, e.world.Now)
		robot.Work(rs, e.params.DT)
		if ts.Remaining > 0 {
			continue
		}

		if task.Object != nil && !e.objectDelivered(task) {
			// Work is done but the payload is not in place: no progress.
			ts.NoProgress += e.params.DT
			e.failIfStuck(task, ts, rs)
			continue
		}

		task.MarkDone(ts, now)
		e.release(rs)
		e.log.Debug("task completed", "task", task.ID, "robot", robot.ID, "t", now)
	}
}

// objectDelivered checks the delivery completion invariant: payload at the
// dropoff and not carried.
func (e *Engine) objectDelivered(task *core.Task) bool {
	obj := e.world.Objects[task.Object.ObjectID]
	return !obj.Carried() && obj.Cell() == task.Object.Dropoff
}

// failIfStuck escalates a task to failed once it has exceeded the grace
// period with zero progress, freeing its robot.
func (e *Engine) failIfStuck(task *core.Task, ts *core.TaskState, rs *core.RobotState) {
	if ts.NoProgress <= e.params.GracePeriod {
		return
	}
	task.MarkFailed(ts, e.world.Now+e.params.DT)
	if obj := e.taskObject(task); obj != nil && obj.CarriedBy == rs.RobotID {
		obj.Release(rs.Cell())
	}
	e.release(rs)
	e.warn("task failed: no progress past grace period", "task", task.ID, "robot", rs.RobotID)
}

func (e *Engine) taskObject(task *core.Task) *core.Object {
	if task.Object == nil {
		return nil
	}
	return e.world.Objects[task.Object.ObjectID]
}

// release returns a robot to the idle pool.
func (e *Engine) release(rs *core.RobotState) {
	rs.Status = core.RobotIdle
	rs.CurrentTask = core.NoTask
}

// metricsPhase finishes the tick record and hands the snapshot to the sink.
func (e *Engine) metricsPhase(rec *TickRecord) {
	e.metrics.StalledTicks += rec.Stalled
	e.metrics.DroppedAssignments += rec.Dropped

	var travel, battery float64
	for _, rs := range e.world.RobotStates {
		travel += rs.Traveled
		battery += rs.Battery
	}
	rec.TravelTotal = travel
	if n := len(e.world.RobotStates); n > 0 {
		rec.AvgBattery = battery / float64(n)
	}
	for _, ts := range e.world.TaskStates {
		switch ts.Status {
		case core.TaskDone:
			rec.Completed++
		case core.TaskFailed:
			rec.Failed++
		}
	}
	e.records = append(e.records, *rec)

	if e.trace != nil {
		if err := e.trace.Record(e.world.Snapshot(), *rec); err != nil {
			e.warn("trace sink failed", "tick", rec.Tick, "err", err)
		}
	}
}

func (e *Engine) warn(msg string, args ...any) {
	e.metrics.Warnings++
	e.log.Warn(msg, args...)
}
