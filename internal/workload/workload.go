// Package workload produces the tasks a run has to serve.
//
// A Generator is consulted once per tick, before assignment. Generators are
// deterministic for a given construction (fixed batch, or a seeded random
// source), so a run replays identically from the same scenario and seed.
package workload

import (
	"fmt"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// Generator returns the tasks arriving at tNow. Returned tasks start
// unassigned; the engine records tNow as their arrival time.
type Generator interface {
	SpawnTasks(tNow float64) []*core.Task
	Name() string
}

// Config selects and parameterizes a generator. Mode "fixed" (the default)
// emits only the scenario's task list; "poisson" additionally spawns
// stochastic arrivals.
type Config struct {
	Mode  string   `json:"mode" yaml:"mode"`
	Rate  float64  `json:"rate" yaml:"rate"`
	Seed  int64    `json:"seed" yaml:"seed"`
	Types []string `json:"types,omitempty" yaml:"types,omitempty"`
}

// New builds the generator described by cfg. The scenario's predefined tasks
// are loaded into the world at build time, not emitted by the generator;
// existing is passed so stochastic generators issue fresh ids above the
// scenario's maximum. It is never re-emitted.
func New(cfg Config, existing []*core.Task, env *core.Environment) (Generator, error) {
	switch cfg.Mode {
	case "fixed", "":
		return NewFixed(nil), nil
	case "poisson":
		return NewPoisson(cfg, existing, env)
	}
	return nil, fmt.Errorf("unknown workload mode %q", cfg.Mode)
}
