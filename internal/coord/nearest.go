package coord

import (
	"math"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// NearestFeasible is the reference coordinator: each idle robot, visited in
// ascending id order, claims the closest unassigned task whose required
// capabilities it covers. A task is claimed at most once per call, so the
// lowest robot id wins contested tasks and no task can be handed to two
// robots within one tick.
type NearestFeasible struct{}

// NewNearestFeasible creates the reference coordinator.
func NewNearestFeasible() *NearestFeasible { return &NearestFeasible{} }

func (n *NearestFeasible) Name() string { return "nearest" }

func (n *NearestFeasible) Assign(tNow float64, robots []core.RobotSnapshot, tasks []core.TaskSnapshot, env *core.Environment) []core.Assignment {
	var out []core.Assignment
	claimed := make(map[core.TaskID]struct{}, len(tasks))
	sortedTasks := sortedByTaskID(tasks)

	for _, robot := range sortedByRobotID(robots) {
		best := core.NoTask
		bestDist := math.Inf(1)

		for _, task := range sortedTasks {
			if _, taken := claimed[task.ID]; taken {
				continue
			}
			if !robot.Capabilities.HasAll(task.RequiredCaps) {
				continue
			}
			dist, err := env.Distance(robot.Pos(), task.Location.Pos())
			if err != nil {
				continue // caller contract violation; skip rather than guess
			}
			if dist < bestDist {
				bestDist = dist
				best = task.ID
			}
		}

		if best != core.NoTask {
			out = append(out, core.Assignment{
				RobotID:      robot.ID,
				TaskID:       best,
				AssignedTime: tNow,
			})
			claimed[best] = struct{}{}
		}
	}
	return out
}
