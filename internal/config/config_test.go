package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleetsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scenario: scenarios/warehouse.json
engine:
  dt: 0.5
  max_ticks: 200
  handoff_radius: 1.5
policies:
  coordinator: firstfit
workload:
  mode: poisson
  rate: 0.8
  seed: 11
trace_dir: /tmp/traces
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scenarios/warehouse.json", cfg.Scenario)
	assert.Equal(t, 0.5, cfg.Engine.DT)
	assert.Equal(t, 200, cfg.Engine.MaxTicks)
	assert.Equal(t, 1.5, cfg.Engine.HandoffRadius)
	assert.Equal(t, "firstfit", cfg.Policies.Coordinator)
	assert.Equal(t, "astar", cfg.Policies.Pathfinder, "unset fields keep defaults")
	assert.Equal(t, "poisson", cfg.Workload.Mode)
	assert.Equal(t, int64(11), cfg.Workload.Seed)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestGracePeriodDefaultsToTenTicks(t *testing.T) {
	path := writeConfig(t, "engine:\n  dt: 0.25\n  grace_period: 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Engine.GracePeriod)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative dt":      "engine:\n  dt: -1\n",
		"zero max ticks":   "engine:\n  max_ticks: 0\n",
		"negative handoff": "engine:\n  handoff_radius: -2\n",
		"bad workload":     "workload:\n  mode: burst\n",
		"bad log level":    "log_level: loud\n",
		"not yaml":         "engine: [nope\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
