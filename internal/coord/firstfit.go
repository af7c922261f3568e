package coord

import (
	"sort"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// FirstFit is a greedy baseline: for each unassigned task in ascending id
// order, take the first idle robot (ascending id) whose capabilities cover
// the task. Distance is ignored, which makes it a useful lower bound when
// comparing coordinators.
type FirstFit struct{}

// NewFirstFit creates the first-fit coordinator.
func NewFirstFit() *FirstFit { return &FirstFit{} }

func (f *FirstFit) Name() string { return "firstfit" }

func (f *FirstFit) Assign(tNow float64, robots []core.RobotSnapshot, tasks []core.TaskSnapshot, env *core.Environment) []core.Assignment {
	var out []core.Assignment
	used := make(map[core.RobotID]struct{}, len(robots))
	sortedRobots := sortedByRobotID(robots)

	for _, task := range sortedByTaskID(tasks) {
		for _, robot := range sortedRobots {
			if _, taken := used[robot.ID]; taken {
				continue
			}
			if !robot.Capabilities.HasAll(task.RequiredCaps) {
				continue
			}
			out = append(out, core.Assignment{
				RobotID:      robot.ID,
				TaskID:       task.ID,
				AssignedTime: tNow,
			})
			used[robot.ID] = struct{}{}
			break
		}
	}
	return out
}

// sortedByRobotID returns a copy ordered by ascending id. Policies must not
// reorder caller slices.
func sortedByRobotID(robots []core.RobotSnapshot) []core.RobotSnapshot {
	out := make([]core.RobotSnapshot, len(robots))
	copy(out, robots)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// sortedByTaskID returns a copy ordered by ascending id.
func sortedByTaskID(tasks []core.TaskSnapshot) []core.TaskSnapshot {
	out := make([]core.TaskSnapshot, len(tasks))
	copy(out, tasks)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
