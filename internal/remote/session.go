package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/mtlsim/internal/ctxlog"
	"github.com/specialistvlad/mtlsim/internal/sim"
)

// Event names understood by the server.
const (
	EventReset = "reset"
	EventCycle = "cycle"
	EventEval  = "eval"
	EventPoke  = "poke"
	EventPeek  = "peek"

	EventState = "state"
	EventError = "error"
)

// Events lists every request event, in a stable order.
var Events = []string{EventReset, EventCycle, EventEval, EventPoke, EventPeek}

// ErrUnknownEvent is returned for a request event the session does not handle.
var ErrUnknownEvent = errors.New("unknown event")

// CycleRequest is the payload of a `cycle` event. N defaults to 1.
type CycleRequest struct {
	N int `json:"n"`
}

// PokeRequest is the payload of a `poke` event.
type PokeRequest struct {
	Path  string `json:"path"`
	Value Value  `json:"value"`
}

// PeekRequest is the payload of a `peek` event.
type PeekRequest struct {
	Paths []string `json:"paths"`
}

// State is the reply to every successful request.
type State struct {
	Session string           `json:"session"`
	Cycles  uint64           `json:"cycles"`
	Values  map[string]Value `json:"values,omitempty"`
}

// ErrorReply is the payload of an `error` event.
type ErrorReply struct {
	Session string `json:"session"`
	Event   string `json:"event"`
	Message string `json:"message"`
}

// Session serialises requests against a single simulator.
type Session struct {
	id    string
	sim   *sim.Simulator
	watch []string

	mu sync.Mutex
}

// NewSession wraps s. Paths in watch are reported in every state reply in
// addition to the ones a `peek` asks for.
func NewSession(s *sim.Simulator, watch ...string) *Session {
	return &Session{id: uuid.NewString(), sim: s, watch: watch}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Handle runs one request. payload is the first argument of the event, as
// decoded by socket.io, and may be nil.
func (s *Session) Handle(ctx context.Context, event string, payload any) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := ctxlog.FromContext(ctx).With("session", s.id, "event", event)
	logger.Debug("Handling request.")

	var peeks []string
	switch event {
	case EventReset:
		if err := s.sim.Reset(); err != nil {
			return nil, err
		}
	case EventEval:
		if err := s.sim.Eval(); err != nil {
			return nil, err
		}
	case EventCycle:
		req := CycleRequest{N: 1}
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		if req.N < 0 {
			return nil, fmt.Errorf("cycle count must not be negative, got %d", req.N)
		}
		if err := s.sim.Cycles(req.N); err != nil {
			return nil, err
		}
	case EventPoke:
		var req PokeRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		if req.Path == "" {
			return nil, errors.New("poke requires a path")
		}
		if err := s.sim.Poke(req.Path, uint64(req.Value)); err != nil {
			return nil, err
		}
		// Remote pokes settle immediately so a following peek sees them.
		if err := s.sim.Eval(); err != nil {
			return nil, err
		}
	case EventPeek:
		var req PeekRequest
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		peeks = req.Paths
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownEvent, event)
	}

	state, err := s.state(peeks)
	if err != nil {
		return nil, err
	}
	logger.Debug("Request handled.", "cycles", state.Cycles, "values", len(state.Values))
	return state, nil
}

// ErrorReply builds the payload of an `error` event for a failed request.
func (s *Session) ErrorReply(event string, err error) *ErrorReply {
	return &ErrorReply{Session: s.id, Event: event, Message: err.Error()}
}

func (s *Session) state(peeks []string) (*State, error) {
	st := &State{Session: s.id, Cycles: s.sim.NumCycles()}
	paths := append(append([]string(nil), s.watch...), peeks...)
	if len(paths) == 0 {
		return st, nil
	}
	st.Values = make(map[string]Value, len(paths))
	for _, p := range paths {
		v, err := s.sim.Peek(p)
		if err != nil {
			return nil, err
		}
		st.Values[p] = Value(v)
	}
	return st, nil
}

// decode converts a loosely typed socket.io payload into out. A nil payload
// leaves out untouched.
func decode(payload any, out any) error {
	if payload == nil {
		return nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
