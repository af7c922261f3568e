package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/elektrokombinacija/fleetsim/internal/core"
)

// defaultMix is the task-type mixture used when the config lists none.
var defaultMix = []core.TaskType{
	core.TaskInspection,
	core.TaskInvestigation,
	core.TaskMaintenance,
}

// typeCaps maps each task type to its required capability.
var typeCaps = map[core.TaskType]core.Capability{
	core.TaskInspection:    core.CapInspect,
	core.TaskInvestigation: core.CapSense,
	core.TaskMaintenance:   core.CapRepair,
	core.TaskEmergency:     core.CapRepair,
	core.TaskDelivery:      core.CapCarry,
}

// Poisson emits, each tick, a Poisson(rate)-distributed number of new tasks
// at random free cells. All randomness comes from one seeded source, so
// equal seeds give equal runs.
type Poisson struct {
	env  *core.Environment
	rng  *rand.Rand
	rate float64
	mix  []core.TaskType
	free []core.Cell
	next core.TaskID
}

// NewPoisson builds a stochastic generator. existing is the scenario's
// predefined task list, assumed to be in the world already; it only seeds
// the fresh-id watermark. Construction fails when the rate is not positive,
// when a configured type is unknown, or when the environment has no free
// cell to place tasks on.
func NewPoisson(cfg Config, existing []*core.Task, env *core.Environment) (*Poisson, error) {
	if cfg.Rate <= 0 {
		return nil, fmt.Errorf("poisson workload: rate must be positive, got %v", cfg.Rate)
	}
	mix := defaultMix
	if len(cfg.Types) > 0 {
		mix = make([]core.TaskType, 0, len(cfg.Types))
		for _, raw := range cfg.Types {
			tt, err := core.ParseTaskType(raw)
			if err != nil {
				return nil, fmt.Errorf("poisson workload: %w", err)
			}
			if tt == core.TaskDelivery {
				return nil, fmt.Errorf("poisson workload: delivery tasks need explicit pickup/dropoff, define them in the scenario task list")
			}
			mix = append(mix, tt)
		}
	}

	var free []core.Cell
	for y := 0; y < env.Height(); y++ {
		for x := 0; x < env.Width(); x++ {
			c := core.Cell{X: x, Y: y}
			if env.Free(c) {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return nil, fmt.Errorf("poisson workload: environment has no free cells")
	}

	next := core.TaskID(1)
	for _, t := range existing {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return &Poisson{
		env:  env,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		rate: cfg.Rate,
		mix:  mix,
		free: free,
		next: next,
	}, nil
}

func (p *Poisson) Name() string { return "poisson" }

func (p *Poisson) SpawnTasks(tNow float64) []*core.Task {
	var out []*core.Task
	for i := p.sampleCount(); i > 0; i-- {
		tt := p.mix[p.rng.Intn(len(p.mix))]
		cell := p.free[p.rng.Intn(len(p.free))]
		priority := 1
		if tt == core.TaskEmergency {
			priority = 10
		}
		out = append(out, &core.Task{
			ID:           p.next,
			Type:         tt,
			Location:     cell,
			RequiredCaps: core.NewCapSet(typeCaps[tt]),
			Duration:     1 + float64(p.rng.Intn(5)),
			Priority:     priority,
		})
		p.next++
	}
	return out
}

// sampleCount draws from Poisson(rate) by multiplying uniform variates until
// their product drops below e^-rate (Knuth).
func (p *Poisson) sampleCount() int {
	limit := math.Exp(-p.rate)
	count := 0
	for prod := p.rng.Float64(); prod > limit; prod *= p.rng.Float64() {
		count++
	}
	return count
}
