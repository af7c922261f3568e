package trace

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/engine"
)

func TestWriteAndReadBack(t *testing.T) {
	env, err := core.NewEnvironment(5, 5)
	require.NoError(t, err)
	w := core.NewWorld(env)
	require.NoError(t, w.AddRobot(&core.Robot{ID: 1, Capabilities: core.NewCapSet(core.CapInspect), Speed: 1}, core.Pos{}))
	require.NoError(t, w.AddTask(&core.Task{ID: 1, Type: core.TaskInspection, Location: core.Cell{X: 3, Y: 3}, RequiredCaps: core.NewCapSet(core.CapInspect), Duration: 2}, 0))

	path := FileName(t.TempDir(), "abc")
	tw, err := NewWriter(path)
	require.NoError(t, err)

	e, err := engine.New(w, engine.DefaultParams(), engine.Options{
		Trace:  tw,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	res := e.Run(context.Background())
	require.True(t, res.Completed)
	require.NoError(t, tw.Close())

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, res.Ticks)

	for i, entry := range entries {
		assert.Equal(t, i, entry.Record.Tick)
		assert.Equal(t, i, entry.Snapshot.Tick-1, "snapshot is taken after the tick advances")
		require.Len(t, entry.Snapshot.Robots, 1)
	}
	last := entries[len(entries)-1]
	assert.Equal(t, core.TaskDone, last.Snapshot.Tasks[0].Status)
	assert.Equal(t, res.Metrics.TasksCompleted, last.Record.Completed)
}

func TestRecordAfterCloseFails(t *testing.T) {
	tw, err := NewWriter(filepath.Join(t.TempDir(), "t.jsonl.zst"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, tw.Close(), "double close is harmless")
	require.Error(t, tw.Record(core.Snapshot{}, engine.TickRecord{}))
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.jsonl.zst"))
	require.Error(t, err)
}
