// Package store persists scenarios and run outcomes in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elektrokombinacija/fleetsim/internal/engine"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps the SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the database at the given path and migrates the
// schema.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the connection.
func (db *DB) Close() error { return db.conn.Close() }

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		data        TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_results (
		id           TEXT PRIMARY KEY,
		scenario_id  TEXT NOT NULL REFERENCES scenarios(id),
		completed    INTEGER NOT NULL,
		ticks        INTEGER NOT NULL,
		makespan     REAL NOT NULL,
		tasks_done   INTEGER NOT NULL,
		tasks_failed INTEGER NOT NULL,
		metrics      TEXT NOT NULL,
		created_at   TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_snapshots (
		id      TEXT PRIMARY KEY,
		run_id  TEXT NOT NULL REFERENCES run_results(id),
		tick    INTEGER NOT NULL,
		data    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_results_scenario ON run_results(scenario_id);
	CREATE INDEX IF NOT EXISTS idx_run_snapshots_run ON run_snapshots(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// ScenarioRow is a stored scenario document.
type ScenarioRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
}

// SaveScenario stores raw scenario JSON under a fresh id.
func (db *DB) SaveScenario(name string, data []byte) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.conn.Exec(
		`INSERT INTO scenarios (id, name, data, created_at) VALUES (?, ?, ?, ?)`,
		id.String(), name, string(data), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert scenario: %w", err)
	}
	return id, nil
}

// Scenario fetches one stored scenario.
func (db *DB) Scenario(id uuid.UUID) (*ScenarioRow, error) {
	var raw struct {
		ID        string `db:"id"`
		Name      string `db:"name"`
		Data      string `db:"data"`
		CreatedAt string `db:"created_at"`
	}
	err := db.conn.Get(&raw, `SELECT id, name, data, created_at FROM scenarios WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scenario %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	row := &ScenarioRow{Name: raw.Name, Data: []byte(raw.Data)}
	if row.ID, err = uuid.Parse(raw.ID); err != nil {
		return nil, err
	}
	if row.CreatedAt, err = time.Parse(time.RFC3339Nano, raw.CreatedAt); err != nil {
		return nil, err
	}
	return row, nil
}

// ListScenarios returns all stored scenarios, newest first.
func (db *DB) ListScenarios() ([]ScenarioRow, error) {
	var raws []struct {
		ID        string `db:"id"`
		Name      string `db:"name"`
		Data      string `db:"data"`
		CreatedAt string `db:"created_at"`
	}
	if err := db.conn.Select(&raws, `SELECT id, name, data, created_at FROM scenarios ORDER BY created_at DESC`); err != nil {
		return nil, err
	}
	out := make([]ScenarioRow, 0, len(raws))
	for _, raw := range raws {
		id, err := uuid.Parse(raw.ID)
		if err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339Nano, raw.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, ScenarioRow{ID: id, Name: raw.Name, Data: []byte(raw.Data), CreatedAt: at})
	}
	return out, nil
}

// SaveResult stores a run result with its per-tick trace as snapshot rows.
func (db *DB) SaveResult(scenarioID uuid.UUID, res *engine.RunResult) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	metricsJSON, err := json.Marshal(res.Metrics)
	if err != nil {
		return err
	}
	_, err = tx.Exec(
		`INSERT INTO run_results (id, scenario_id, completed, ticks, makespan, tasks_done, tasks_failed, metrics, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID.String(), scenarioID.String(), boolInt(res.Completed), res.Ticks,
		res.Metrics.Makespan, res.Metrics.TasksCompleted, res.Metrics.TasksFailed,
		string(metricsJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run result: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO run_snapshots (id, run_id, tick, data) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	final, err := json.Marshal(res.FinalSnapshot)
	if err != nil {
		return err
	}
	if _, err := stmt.Exec(uuid.NewString(), res.RunID.String(), res.Ticks, string(final)); err != nil {
		return fmt.Errorf("insert final snapshot: %w", err)
	}
	return tx.Commit()
}

// ResultRow is a stored run outcome.
type ResultRow struct {
	ID          uuid.UUID
	ScenarioID  uuid.UUID
	Completed   bool
	Ticks       int
	Makespan    float64
	TasksDone   int
	TasksFailed int
	Metrics     engine.Metrics
	CreatedAt   time.Time
}

// Result fetches one run result.
func (db *DB) Result(id uuid.UUID) (*ResultRow, error) {
	var raw struct {
		ID          string  `db:"id"`
		ScenarioID  string  `db:"scenario_id"`
		Completed   int     `db:"completed"`
		Ticks       int     `db:"ticks"`
		Makespan    float64 `db:"makespan"`
		TasksDone   int     `db:"tasks_done"`
		TasksFailed int     `db:"tasks_failed"`
		Metrics     string  `db:"metrics"`
		CreatedAt   string  `db:"created_at"`
	}
	err := db.conn.Get(&raw, `SELECT id, scenario_id, completed, ticks, makespan, tasks_done, tasks_failed, metrics, created_at
		FROM run_results WHERE id = ?`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	row := &ResultRow{
		Completed:   raw.Completed != 0,
		Ticks:       raw.Ticks,
		Makespan:    raw.Makespan,
		TasksDone:   raw.TasksDone,
		TasksFailed: raw.TasksFailed,
	}
	if row.ID, err = uuid.Parse(raw.ID); err != nil {
		return nil, err
	}
	if row.ScenarioID, err = uuid.Parse(raw.ScenarioID); err != nil {
		return nil, err
	}
	if err = json.Unmarshal([]byte(raw.Metrics), &row.Metrics); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	if row.CreatedAt, err = time.Parse(time.RFC3339Nano, raw.CreatedAt); err != nil {
		return nil, err
	}
	return row, nil
}

// FinalSnapshot fetches the stored end-of-run snapshot JSON for a run.
func (db *DB) FinalSnapshot(runID uuid.UUID) ([]byte, error) {
	var data string
	err := db.conn.Get(&data, `SELECT data FROM run_snapshots WHERE run_id = ? ORDER BY tick DESC LIMIT 1`, runID.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshots for run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
