package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/elektrokombinacija/fleetsim/internal/core"
	"github.com/elektrokombinacija/fleetsim/internal/engine"
)

// Live-run message types. The client opens the socket, sends "start" with an
// inline scenario, receives one "tick" per engine tick and a final "result".
// It may send "decide" at any time to inject the assignment batch for a
// coming tick; batches for ticks the engine has already passed are ignored.
const (
	msgStart  = "start"
	msgDecide = "decide"
	msgTick   = "tick"
	msgResult = "result"
	msgError  = "error"
)

type wsEnvelope struct {
	Type string `json:"type"`

	// start
	Scenario json.RawMessage `json:"scenario,omitempty"`
	MaxTicks int             `json:"max_ticks,omitempty"`

	// decide
	Tick        int               `json:"tick,omitempty"`
	Assignments []core.Assignment `json:"assignments,omitempty"`

	// tick
	Snapshot *core.Snapshot     `json:"snapshot,omitempty"`
	Record   *engine.TickRecord `json:"record,omitempty"`

	// result
	Result *engine.RunResult `json:"result,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// injectedDecisions collects externally supplied batches keyed by tick. The
// engine consumes a batch on the tick it names; absent a batch the built-in
// coordinator decides.
type injectedDecisions struct {
	mu      sync.Mutex
	batches map[int][]core.Assignment
}

func newInjectedDecisions() *injectedDecisions {
	return &injectedDecisions{batches: make(map[int][]core.Assignment)}
}

func (d *injectedDecisions) put(tick int, batch []core.Assignment) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.batches[tick] = batch
}

func (d *injectedDecisions) Decide(tick int, snap core.Snapshot) ([]core.Assignment, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	batch, ok := d.batches[tick]
	if ok {
		delete(d.batches, tick)
	}
	return batch, ok
}

// wsSink forwards tick snapshots to the socket writer goroutine. It gives up
// when the connection's context ends so a dead client cannot wedge the run.
type wsSink struct {
	ctx context.Context
	out chan<- wsEnvelope
}

func (s wsSink) Record(snap core.Snapshot, rec engine.TickRecord) error {
	env := wsEnvelope{Type: msgTick, Snapshot: &snap, Record: &rec}
	select {
	case s.out <- env:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

func (s *Server) handleLiveRun(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	out := make(chan wsEnvelope, 64)

	// Writer goroutine: the only writer on the socket.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteJSON(env); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	send := func(env wsEnvelope) {
		select {
		case out <- env:
		case <-ctx.Done():
		}
	}

	decisions := newInjectedDecisions()
	started := false

	for {
		var msg wsEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case msgStart:
			if started {
				send(wsEnvelope{Type: msgError, Error: "run already started"})
				continue
			}
			sc, _, err := s.resolveScenario(&runRequest{Scenario: msg.Scenario})
			if err != nil {
				send(wsEnvelope{Type: msgError, Error: err.Error()})
				continue
			}
			eng, err := s.newEngine(sc, msg.MaxTicks, decisions, wsSink{ctx: ctx, out: out})
			if err != nil {
				send(wsEnvelope{Type: msgError, Error: err.Error()})
				continue
			}
			started = true
			go func() {
				res := eng.Run(ctx)
				send(wsEnvelope{Type: msgResult, Result: res})
			}()
		case msgDecide:
			if !started {
				send(wsEnvelope{Type: msgError, Error: "no run in progress"})
				continue
			}
			decisions.put(msg.Tick, msg.Assignments)
		default:
			send(wsEnvelope{Type: msgError, Error: "unknown message type " + msg.Type})
		}
	}
}
