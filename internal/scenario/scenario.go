// Package scenario loads and validates run scenarios from JSON.
//
// Validation is layered: a JSON-Schema pass rejects structural problems
// (missing keys, wrong types), then semantic checks reject what the schema
// cannot express, naming the offending entity: duplicate ids, unknown
// capability or type tags, geometry outside the environment bounds. Both
// layers run before the first tick; a scenario that loads is fully resolved
// into entity instances.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/workload"
)

// Document is the parsed scenario file, pre-validation.
type Document struct {
	Name        string           `json:"name,omitempty"`
	DT          float64          `json:"dt,omitempty"`
	Metric      string           `json:"metric,omitempty"`
	Environment EnvironmentDoc   `json:"environment"`
	Robots      []RobotDoc       `json:"robots"`
	Tasks       []TaskDoc        `json:"tasks"`
	RobotStates []RobotStateDoc  `json:"robot_states"`
	Workload    *workload.Config `json:"workload,omitempty"`
}

type EnvironmentDoc struct {
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Obstacles [][2]int  `json:"obstacles,omitempty"`
	Zones     []ZoneDoc `json:"zones,omitempty"`
}

type ZoneDoc struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Positions [][2]int `json:"positions"`
}

type RobotDoc struct {
	ID           int      `json:"id"`
	Capabilities []string `json:"capabilities"`
	Speed        float64  `json:"speed"`
}

type TaskDoc struct {
	ID           int      `json:"id"`
	Type         string   `json:"type"`
	Location     *[2]int  `json:"location,omitempty"`
	Pickup       *[2]int  `json:"pickup,omitempty"`
	Dropoff      *[2]int  `json:"dropoff,omitempty"`
	RequiredCaps []string `json:"required_capabilities,omitempty"`
	Duration     float64  `json:"duration"`
	Priority     int      `json:"priority,omitempty"`
}

type RobotStateDoc struct {
	RobotID  int        `json:"robot_id"`
	Position [2]float64 `json:"position"`
	Battery  *float64   `json:"battery_level,omitempty"`
}

// Scenario is a loaded, validated scenario resolved into entities.
type Scenario struct {
	Name     string
	World    *core.World
	DT       float64
	Workload workload.Config
}

// Load reads, validates and resolves a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(raw)
}

// Parse validates and resolves scenario JSON.
func Parse(raw []byte) (*Scenario, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("scenario is not valid JSON: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("scenario failed schema validation: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return Build(&doc)
}

// Build resolves a document into a world, running the semantic checks.
func Build(doc *Document) (*Scenario, error) {
	env, err := buildEnvironment(&doc.Environment, doc.Metric)
	if err != nil {
		return nil, err
	}
	world := core.NewWorld(env)

	states := make(map[core.RobotID]*RobotStateDoc, len(doc.RobotStates))
	for i := range doc.RobotStates {
		st := &doc.RobotStates[i]
		id := core.RobotID(st.RobotID)
		if _, dup := states[id]; dup {
			return nil, fmt.Errorf("duplicate robot_state for robot_id: %d", st.RobotID)
		}
		states[id] = st
	}

	consumed := make(map[core.RobotID]struct{}, len(states))
	for _, r := range doc.Robots {
		robot, err := buildRobot(&r)
		if err != nil {
			return nil, err
		}
		st, ok := states[robot.ID]
		if !ok {
			return nil, fmt.Errorf("robot %d has no robot_state", r.ID)
		}
		at := core.Pos{X: st.Position[0], Y: st.Position[1]}
		if err := world.AddRobot(robot, at); err != nil {
			return nil, err
		}
		if st.Battery != nil {
			world.RobotStates[robot.ID].Battery = *st.Battery
		}
		consumed[robot.ID] = struct{}{}
	}
	for id := range states {
		if _, ok := consumed[id]; !ok {
			return nil, fmt.Errorf("robot_state for unknown robot id: %d", id)
		}
	}

	for _, t := range doc.Tasks {
		task, err := buildTask(&t)
		if err != nil {
			return nil, err
		}
		if err := world.AddTask(task, 0); err != nil {
			return nil, err
		}
	}

	if err := world.Validate(); err != nil {
		return nil, err
	}

	s := &Scenario{Name: doc.Name, World: world, DT: doc.DT}
	if doc.Workload != nil {
		s.Workload = *doc.Workload
	}
	return s, nil
}

func buildEnvironment(doc *EnvironmentDoc, metricName string) (*core.Environment, error) {
	env, err := core.NewEnvironment(doc.Width, doc.Height)
	if err != nil {
		return nil, err
	}
	metric, err := core.ParseMetric(metricName)
	if err != nil {
		return nil, err
	}
	env.SetMetric(metric)

	for _, o := range doc.Obstacles {
		if err := env.AddObstacle(core.Cell{X: o[0], Y: o[1]}); err != nil {
			return nil, err
		}
	}
	for _, z := range doc.Zones {
		zt, err := core.ParseZoneType(z.Type)
		if err != nil {
			return nil, fmt.Errorf("zone %q: %w", z.Name, err)
		}
		cells := make([]core.Cell, len(z.Positions))
		for i, p := range z.Positions {
			cells[i] = core.Cell{X: p[0], Y: p[1]}
		}
		if err := env.AddZone(core.NewZone(z.Name, zt, cells)); err != nil {
			return nil, err
		}
	}
	return env, nil
}

func buildRobot(doc *RobotDoc) (*core.Robot, error) {
	caps := make(core.CapSet, len(doc.Capabilities))
	for _, raw := range doc.Capabilities {
		c, err := core.ParseCapability(raw)
		if err != nil {
			return nil, fmt.Errorf("robot %d: %w", doc.ID, err)
		}
		caps[c] = struct{}{}
	}
	return &core.Robot{
		ID:           core.RobotID(doc.ID),
		Capabilities: caps,
		Speed:        doc.Speed,
	}, nil
}

func buildTask(doc *TaskDoc) (*core.Task, error) {
	tt, err := core.ParseTaskType(doc.Type)
	if err != nil {
		return nil, fmt.Errorf("task %d: %w", doc.ID, err)
	}
	caps := make(core.CapSet, len(doc.RequiredCaps))
	for _, raw := range doc.RequiredCaps {
		c, err := core.ParseCapability(raw)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", doc.ID, err)
		}
		caps[c] = struct{}{}
	}

	task := &core.Task{
		ID:           core.TaskID(doc.ID),
		Type:         tt,
		RequiredCaps: caps,
		Duration:     doc.Duration,
		Priority:     doc.Priority,
	}

	if tt == core.TaskDelivery {
		if doc.Pickup == nil || doc.Dropoff == nil {
			return nil, fmt.Errorf("task %d: delivery tasks require 'pickup' and 'dropoff'", doc.ID)
		}
		dropoff := core.Cell{X: doc.Dropoff[0], Y: doc.Dropoff[1]}
		task.Location = dropoff
		task.Object = &core.ObjectRef{
			ObjectID: core.ObjectID(doc.ID),
			Pickup:   core.Cell{X: doc.Pickup[0], Y: doc.Pickup[1]},
			Dropoff:  dropoff,
		}
		return task, nil
	}

	if doc.Location == nil {
		return nil, fmt.Errorf("task %d: missing required key: 'location'", doc.ID)
	}
	task.Location = core.Cell{X: doc.Location[0], Y: doc.Location[1]}
	return task, nil
}
