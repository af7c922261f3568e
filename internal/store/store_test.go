package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/engine"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "fleetsim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func runResult(t *testing.T) *engine.RunResult {
	t.Helper()
	env, err := core.NewEnvironment(4, 4)
	require.NoError(t, err)
	w := core.NewWorld(env)
	require.NoError(t, w.AddRobot(&core.Robot{ID: 1, Capabilities: core.NewCapSet(core.CapInspect), Speed: 1}, core.Pos{}))
	require.NoError(t, w.AddTask(&core.Task{ID: 1, Type: core.TaskInspection, Location: core.Cell{X: 2, Y: 2}, RequiredCaps: core.NewCapSet(core.CapInspect), Duration: 1}, 0))

	e, err := engine.New(w, engine.DefaultParams(), engine.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	res := e.Run(context.Background())
	require.True(t, res.Completed)
	return res
}

func TestSaveAndFetchScenario(t *testing.T) {
	db := openTestDB(t)
	data := []byte(`{"environment": {"width": 4, "height": 4}}`)

	id, err := db.SaveScenario("demo", data)
	require.NoError(t, err)

	row, err := db.Scenario(id)
	require.NoError(t, err)
	assert.Equal(t, id, row.ID)
	assert.Equal(t, "demo", row.Name)
	assert.JSONEq(t, string(data), string(row.Data))
	assert.False(t, row.CreatedAt.IsZero())

	list, err := db.ListScenarios()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
}

func TestScenarioNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Scenario(uuid.New())
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestSaveAndFetchRunResult(t *testing.T) {
	db := openTestDB(t)
	scenarioID, err := db.SaveScenario("demo", []byte(`{}`))
	require.NoError(t, err)

	res := runResult(t)
	require.NoError(t, db.SaveResult(scenarioID, res))

	row, err := db.Result(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, row.ID)
	assert.Equal(t, scenarioID, row.ScenarioID)
	assert.True(t, row.Completed)
	assert.Equal(t, res.Ticks, row.Ticks)
	assert.Equal(t, 1, row.TasksDone)
	assert.Equal(t, res.Metrics.Makespan, row.Makespan)
	assert.Equal(t, res.Metrics.TotalTravelDistance, row.Metrics.TotalTravelDistance)

	raw, err := db.FinalSnapshot(res.RunID)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"tick"`)
}

func TestResultNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Result(uuid.New())
	require.True(t, errors.Is(err, ErrNotFound))
	_, err = db.FinalSnapshot(uuid.New())
	require.True(t, errors.Is(err, ErrNotFound))
}
