// Package config holds the YAML run configuration: everything that shapes a
// run but is not part of the scenario itself.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/elektrokombinacija/fleetsim/internal/workload"
)

// Config is the full run configuration. Scenario geometry and entities live
// in the scenario document; this selects policies, engine parameters and the
// surrounding plumbing.
type Config struct {
	Scenario string `yaml:"scenario"`

	Engine   EngineConfig    `yaml:"engine"`
	Policies PoliciesConfig  `yaml:"policies"`
	Workload workload.Config `yaml:"workload"`

	TraceDir  string `yaml:"trace_dir"`
	StorePath string `yaml:"store_path"`
	Listen    string `yaml:"listen"`

	LogLevel string `yaml:"log_level"`
}

type EngineConfig struct {
	DT            float64 `yaml:"dt"`
	MaxTicks      int     `yaml:"max_ticks"`
	GracePeriod   float64 `yaml:"grace_period"`
	HandoffRadius float64 `yaml:"handoff_radius"`
}

type PoliciesConfig struct {
	Coordinator string `yaml:"coordinator"`
	Pathfinder  string `yaml:"pathfinder"`
}

// Default returns the standard configuration: unit ticks, a grace period of
// ten ticks, exact-cell handoff, reference policies, no persistence.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			DT:          1,
			MaxTicks:    1000,
			GracePeriod: 10,
		},
		Policies: PoliciesConfig{
			Coordinator: "nearest",
			Pathfinder:  "astar",
		},
		Workload: workload.Config{Mode: "fixed"},
		Listen:   "127.0.0.1:8700",
		LogLevel: "info",
	}
}

// Load reads a config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Engine.GracePeriod == 0 && c.Engine.DT > 0 {
		c.Engine.GracePeriod = 10 * c.Engine.DT
	}
	if c.Policies.Coordinator == "" {
		c.Policies.Coordinator = "nearest"
	}
	if c.Policies.Pathfinder == "" {
		c.Policies.Pathfinder = "astar"
	}
	if c.Workload.Mode == "" {
		c.Workload.Mode = "fixed"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects values the engine would refuse later, so bad configs fail
// before any tick runs.
func (c *Config) Validate() error {
	if c.Engine.DT <= 0 {
		return fmt.Errorf("engine.dt must be positive, got %g", c.Engine.DT)
	}
	if c.Engine.MaxTicks <= 0 {
		return fmt.Errorf("engine.max_ticks must be positive, got %d", c.Engine.MaxTicks)
	}
	if c.Engine.GracePeriod < 0 {
		return fmt.Errorf("engine.grace_period must not be negative, got %g", c.Engine.GracePeriod)
	}
	if c.Engine.HandoffRadius < 0 {
		return fmt.Errorf("engine.handoff_radius must not be negative, got %g", c.Engine.HandoffRadius)
	}
	switch c.Workload.Mode {
	case "fixed", "poisson":
	default:
		return fmt.Errorf("workload.mode must be fixed or poisson, got %q", c.Workload.Mode)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}
