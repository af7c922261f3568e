// Package server exposes the run API over HTTP and WebSocket: scenario
// storage, synchronous runs, stored results, and live streamed runs with
// external decision injection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/elektrokombinacija/fleetsim/internal/config"
	"github.com/elektrokombinacija/fleetsim/internal/coord"
	"github.com/elektrokombinacija/fleetsim/internal/engine"
	"github.com/elektrokombinacija/fleetsim/internal/pathfind"
	"github.com/elektrokombinacija/fleetsim/internal/scenario"
	"github.com/elektrokombinacija/fleetsim/internal/store"
	"github.com/elektrokombinacija/fleetsim/internal/workload"
)

// Server wires the HTTP surface. The store is optional; without it the
// scenario and result endpoints return 503 and only ad-hoc runs work.
type Server struct {
	cfg      config.Config
	db       *store.DB
	log      *slog.Logger
	upgrader websocket.Upgrader
}

// New builds a server. db may be nil.
func New(cfg config.Config, db *store.DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg: cfg,
		db:  db,
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/scenarios", s.handleCreateScenario)
	mux.HandleFunc("GET /api/scenarios", s.handleListScenarios)
	mux.HandleFunc("POST /api/runs", s.handleRun)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /ws/runs", s.handleLiveRun)
	return mux
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no store configured"))
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 4<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sc, err := scenario.Parse(raw)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := s.db.SaveScenario(sc.Name, raw)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id.String(), "name": sc.Name})
}

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no store configured"))
		return
	}
	rows, err := s.db.ListScenarios()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	type item struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]item, 0, len(rows))
	for _, row := range rows {
		out = append(out, item{ID: row.ID.String(), Name: row.Name, CreatedAt: row.CreatedAt.String()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// runRequest starts a run from a stored scenario or an inline document.
type runRequest struct {
	ScenarioID string          `json:"scenario_id,omitempty"`
	Scenario   json.RawMessage `json:"scenario,omitempty"`
	MaxTicks   int             `json:"max_ticks,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sc, scenarioID, err := s.resolveScenario(&req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	eng, err := s.newEngine(sc, req.MaxTicks, nil, nil)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	res := eng.Run(r.Context())

	if s.db != nil && scenarioID != uuid.Nil {
		if err := s.db.SaveResult(scenarioID, res); err != nil {
			s.log.Warn("persist run result", "run_id", res.RunID, "err", err)
		}
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no store configured"))
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid run id: %w", err))
		return
	}
	row, err := s.db.Result(id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, row)
}

func (s *Server) resolveScenario(req *runRequest) (*scenario.Scenario, uuid.UUID, error) {
	if req.ScenarioID != "" {
		if s.db == nil {
			return nil, uuid.Nil, errors.New("no store configured for scenario_id lookups")
		}
		id, err := uuid.Parse(req.ScenarioID)
		if err != nil {
			return nil, uuid.Nil, fmt.Errorf("invalid scenario id: %w", err)
		}
		row, err := s.db.Scenario(id)
		if err != nil {
			return nil, uuid.Nil, err
		}
		sc, err := scenario.Parse(row.Data)
		if err != nil {
			return nil, uuid.Nil, err
		}
		return sc, id, nil
	}
	if len(req.Scenario) == 0 {
		return nil, uuid.Nil, errors.New("request needs scenario_id or an inline scenario")
	}
	sc, err := scenario.Parse(req.Scenario)
	return sc, uuid.Nil, err
}

// newEngine assembles an engine for a scenario using the server's configured
// policies, with per-request overrides.
func (s *Server) newEngine(sc *scenario.Scenario, maxTicks int, decisions engine.DecisionSource, sink engine.Sink) (*engine.Engine, error) {
	params := engine.Params{
		DT:            s.cfg.Engine.DT,
		MaxTicks:      s.cfg.Engine.MaxTicks,
		GracePeriod:   s.cfg.Engine.GracePeriod,
		HandoffRadius: s.cfg.Engine.HandoffRadius,
	}
	if sc.DT > 0 {
		params.DT = sc.DT
	}
	if maxTicks > 0 {
		params.MaxTicks = maxTicks
	}

	coordinator, err := coord.ByName(s.cfg.Policies.Coordinator)
	if err != nil {
		return nil, err
	}
	pathfinder, err := pathfind.ByName(s.cfg.Policies.Pathfinder)
	if err != nil {
		return nil, err
	}
	wl := sc.Workload
	if wl.Mode == "" {
		wl = s.cfg.Workload
	}
	gen, err := workload.New(wl, sc.World.Tasks, sc.World.Env)
	if err != nil {
		return nil, err
	}

	return engine.New(sc.World, params, engine.Options{
		Coordinator: coordinator,
		Pathfinder:  pathfinder,
		Workload:    gen,
		Decisions:   decisions,
		Trace:       sink,
		Logger:      s.log,
	})
}

// ListenAndServe runs the server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.Listen, Handler: s.Routes()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", s.cfg.Listen)
	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
