package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/fleetsim/internal/config"
	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/engine"
	"github.com/elektrokombinacija/fleetsim/internal/store"
)

const testScenario = `{
  "name": "tiny",
  "environment": {"width": 5, "height": 5},
  "robots": [{"id": 1, "capabilities": ["inspect"], "speed": 1}],
  "tasks": [{"id": 1, "type": "inspection", "location": [3, 3], "required_capabilities": ["inspect"], "duration": 2}],
  "robot_states": [{"robot_id": 1, "position": [0, 0]}]
}`

func newTestServer(t *testing.T, withStore bool) (*httptest.Server, *store.DB) {
	t.Helper()
	var db *store.DB
	if withStore {
		var err error
		db, err = store.Open(filepath.Join(t.TempDir(), "test.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
	}
	s := New(config.Default(), db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts, db
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestScenarioRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp := postJSON(t, ts.URL+"/api/scenarios", testScenario)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created map[string]string
	decodeBody(t, resp, &created)
	assert.Equal(t, "tiny", created["name"])
	_, err := uuid.Parse(created["id"])
	require.NoError(t, err)

	listResp, err := http.Get(ts.URL + "/api/scenarios")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list []map[string]string
	decodeBody(t, listResp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created["id"], list[0]["id"])
}

func TestCreateScenarioRejectsInvalid(t *testing.T) {
	ts, _ := newTestServer(t, true)
	resp := postJSON(t, ts.URL+"/api/scenarios", `{"robots": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestScenarioEndpointsWithoutStore(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp := postJSON(t, ts.URL+"/api/scenarios", testScenario)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRunInlineScenario(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp := postJSON(t, ts.URL+"/api/runs", `{"scenario": `+testScenario+`}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res engine.RunResult
	decodeBody(t, resp, &res)
	assert.True(t, res.Completed)
	assert.Equal(t, 1, res.Metrics.TasksCompleted)
	assert.NotEqual(t, uuid.Nil, res.RunID)
	require.Len(t, res.FinalSnapshot.Tasks, 1)
	assert.Equal(t, core.TaskDone, res.FinalSnapshot.Tasks[0].Status)
}

func TestRunStoredScenarioPersistsResult(t *testing.T) {
	ts, db := newTestServer(t, true)

	created := postJSON(t, ts.URL+"/api/scenarios", testScenario)
	require.Equal(t, http.StatusCreated, created.StatusCode)
	var sc map[string]string
	decodeBody(t, created, &sc)

	resp := postJSON(t, ts.URL+"/api/runs", `{"scenario_id": "`+sc["id"]+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res engine.RunResult
	decodeBody(t, resp, &res)

	row, err := db.Result(res.RunID)
	require.NoError(t, err)
	assert.True(t, row.Completed)

	getResp, err := http.Get(ts.URL + "/api/runs/" + res.RunID.String())
	require.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
}

func TestGetRunUnknownID(t *testing.T) {
	ts, _ := newTestServer(t, true)
	resp, err := http.Get(ts.URL + "/api/runs/" + uuid.NewString())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunRejectsMissingScenario(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp := postJSON(t, ts.URL+"/api/runs", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/runs"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLiveRunStreamsTicksAndResult(t *testing.T) {
	ts, _ := newTestServer(t, false)
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(wsEnvelope{
		Type:     msgStart,
		Scenario: json.RawMessage(testScenario),
	}))

	deadline := time.Now().Add(10 * time.Second)
	ticks := 0
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var msg wsEnvelope
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg.Type {
		case msgTick:
			require.NotNil(t, msg.Snapshot)
			require.NotNil(t, msg.Record)
			ticks++
		case msgResult:
			require.NotNil(t, msg.Result)
			assert.True(t, msg.Result.Completed)
			assert.Greater(t, ticks, 0, "ticks stream before the result")
			assert.Equal(t, msg.Result.Ticks, ticks)
			return
		case msgError:
			t.Fatalf("unexpected error message: %s", msg.Error)
		}
	}
}

func TestLiveRunDecideBeforeStartErrors(t *testing.T) {
	ts, _ := newTestServer(t, false)
	conn := dialWS(t, ts)

	require.NoError(t, conn.WriteJSON(wsEnvelope{Type: msgDecide, Tick: 0}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsEnvelope
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, msgError, msg.Type)
}
