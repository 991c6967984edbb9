package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/ports"
)

// ErrStateReentered is returned if routing would run a state twice in one turn.
var ErrStateReentered = errors.New("state re-entered within a single turn")

// ExtractionError wraps a failure of the extraction service.
// The session passed to the failed turn is left unchanged.
type ExtractionError struct {
	State domain.StateName
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed in state '%s': %v", e.State, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// step is what a state hands back to the engine.
type step struct {
	update domain.Update
	signal Signal
}

type stateFunc func(ctx context.Context, s *domain.Session) (step, error)

// Engine is the core state machine runner.
type Engine struct {
	extractor ports.Extractor
	bookings  ports.BookingService
	notifier  ports.Notifier
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	states    map[domain.StateName]stateFunc
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a new engine with its collaborators.
func NewEngine(extractor ports.Extractor, bookings ports.BookingService, notifier ports.Notifier, opts ...EngineOption) *Engine {
	e := &Engine{
		extractor: extractor,
		bookings:  bookings,
		notifier:  notifier,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.states = map[domain.StateName]stateFunc{
		domain.StateCollect:         e.collect,
		domain.StateConfirm:         e.confirm,
		domain.StateDecide:          e.decide,
		domain.StateCommit:          e.commit,
		domain.StateBookingRecovery: e.recoverBooking,
		domain.StateNotify:          e.notify,
		domain.StateNotifyRecovery:  e.recoverNotify,
	}
	return e
}

// Start creates a fresh session whose history opens with the greeting.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := domain.NewSession(sessionID)
	s.Append(domain.RoleAssistant, Greeting)
	e.logger.DebugContext(ctx, "session started", "session_id", sessionID)
	return s, nil
}

// Turn appends one user utterance and runs states until the machine yields or
// terminates. The input session is never mutated: on success a new session is
// returned, on failure the caller keeps the one it passed in.
func (e *Engine) Turn(ctx context.Context, s *domain.Session, input string) (*domain.TurnResult, error) {
	if s == nil {
		return nil, domain.ErrSessionNotFound
	}
	if s.ConversationComplete {
		return nil, domain.ErrConversationComplete
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, domain.ErrEmptyInput
	}

	next := s.Snapshot()
	next.Append(domain.RoleUser, input)

	path, err := e.run(ctx, next)
	if err != nil {
		return nil, err
	}

	return &domain.TurnResult{
		Session: next,
		Reply:   next.LastReply(),
		Path:    path,
	}, nil
}

// run drives the Route → execute → apply loop on a working copy.
func (e *Engine) run(ctx context.Context, s *domain.Session) ([]domain.StateName, error) {
	var path []domain.StateName
	visited := make(map[domain.StateName]bool)

	current := Route(stateEntry, s, SignalNone)
	for current != domain.StateYield && current != domain.StateDone {
		if visited[current] {
			return path, fmt.Errorf("%w: %s", ErrStateReentered, current)
		}
		visited[current] = true

		fn, ok := e.states[current]
		if !ok {
			return path, fmt.Errorf("no handler for state '%s'", current)
		}

		e.emitStateEnter(ctx, s.ID, current)
		st, err := fn(ctx, s)
		if err != nil {
			e.logger.ErrorContext(ctx, "state failed", "session_id", s.ID, "state", current, "err", err)
			return path, err
		}
		s.Apply(st.update)
		e.emitStateLeave(ctx, s.ID, current)

		path = append(path, current)
		next := Route(current, s, st.signal)
		e.logger.DebugContext(ctx, "transition", "session_id", s.ID, "from", current, "to", next)
		current = next
	}
	return path, nil
}

// Inspect returns the static state graph.
func (e *Engine) Inspect() []domain.StateInfo {
	infos := make([]domain.StateInfo, len(graph))
	for i, info := range graph {
		infos[i] = domain.StateInfo{Name: info.Name, Kind: info.Kind}
		for _, t := range info.Transitions {
			t.From = string(info.Name)
			infos[i].Transitions = append(infos[i].Transitions, t)
		}
	}
	return infos
}

func kindOf(name domain.StateName) domain.StateKind {
	for _, info := range graph {
		if info.Name == name {
			return info.Kind
		}
	}
	return domain.KindControl
}

func (e *Engine) emitStateEnter(ctx context.Context, sessionID string, name domain.StateName) {
	if e.hooks.OnStateEnter != nil {
		e.hooks.OnStateEnter(ctx, &domain.StateEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStateEnter, SessionID: sessionID},
			State:     name,
			Kind:      kindOf(name),
		})
	}
}

func (e *Engine) emitStateLeave(ctx context.Context, sessionID string, name domain.StateName) {
	if e.hooks.OnStateLeave != nil {
		e.hooks.OnStateLeave(ctx, &domain.StateEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStateLeave, SessionID: sessionID},
			State:     name,
			Kind:      kindOf(name),
		})
	}
}

func (e *Engine) emitCommitCall(ctx context.Context, sessionID, op string, attempt int) {
	if e.hooks.OnCommitCall != nil {
		e.hooks.OnCommitCall(ctx, &domain.CommitEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommitCall, SessionID: sessionID},
			Operation: op,
			Attempt:   attempt,
		})
	}
}

func (e *Engine) emitCommitReturn(ctx context.Context, sessionID, op string, attempt int, result string, err error, took time.Duration) {
	if e.hooks.OnCommitReturn == nil {
		return
	}
	ev := &domain.CommitEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommitReturn, SessionID: sessionID},
		Operation: op,
		Attempt:   attempt,
		Result:    result,
		Duration:  took,
	}
	if err != nil {
		ev.IsError = true
		ev.Error = err.Error()
	}
	e.hooks.OnCommitReturn(ctx, ev)
}
