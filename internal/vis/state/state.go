// Package state manages the visualizer's playback state over a recorded
// run trace.
package state

import (
	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/trace"
)

// State holds everything the visualizer displays: the static environment,
// the recorded trace and the playback cursor over it.
type State struct {
	Env      *core.Environment
	Entries  []trace.Entry
	Playback *Playback

	// Selected is the robot highlighted in the viewport, NoRobot when
	// nothing is selected.
	Selected core.RobotID
}

// New creates a paused visualizer state over a recorded trace.
func New(env *core.Environment, entries []trace.Entry) *State {
	return &State{
		Env:      env,
		Entries:  entries,
		Playback: NewPlayback(len(entries)),
		Selected: core.NoRobot,
	}
}

// Current returns the trace entry under the playback cursor. The second
// return is false for an empty trace.
func (s *State) Current() (trace.Entry, bool) {
	if len(s.Entries) == 0 {
		return trace.Entry{}, false
	}
	return s.Entries[s.Playback.Index()], true
}

// Trail returns the positions a robot has visited from the start of the
// trace up to and including the current cursor position.
func (s *State) Trail(id core.RobotID) []core.Pos {
	if len(s.Entries) == 0 {
		return nil
	}
	end := s.Playback.Index()
	trail := make([]core.Pos, 0, end+1)
	for i := 0; i <= end; i++ {
		for _, r := range s.Entries[i].Snapshot.Robots {
			if r.ID == id {
				trail = append(trail, r.Pos())
				break
			}
		}
	}
	return trail
}

// SelectRobot toggles selection of the given robot.
func (s *State) SelectRobot(id core.RobotID) {
	if s.Selected == id {
		s.Selected = core.NoRobot
		return
	}
	s.Selected = id
}
