package maitre

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/internal/presentation/graph"
	"github.com/aretw0/maitre/internal/runtime"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/ports"
	"github.com/google/uuid"
)

// Version is the release of the maitre library and CLI.
const Version = "0.3.0"

// Greeting is the first assistant message of every conversation.
const Greeting = runtime.Greeting

// ExtractionError is returned by Turn when the extraction service fails.
type ExtractionError = runtime.ExtractionError

// Engine is the high-level entry point for the maitre library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	Name    string
}

var _ ports.ConversationEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithName labels the engine in log output.
func WithName(name string) Option {
	return func(e *Engine) {
		e.Name = name
	}
}

// New wires a booking engine around its three collaborators.
func New(extractor ports.Extractor, bookings ports.BookingService, notifier ports.Notifier, opts ...Option) (*Engine, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if bookings == nil {
		return nil, fmt.Errorf("booking service is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("engine", eng.Name)
	}

	eng.runtime = runtime.NewEngine(extractor, bookings, notifier,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Start creates a fresh session. An empty sessionID gets a random one.
func (e *Engine) Start(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	return e.runtime.Start(ctx, sessionID)
}

// Turn processes one user utterance. The session passed in is never modified;
// use the Session of the returned result from then on.
func (e *Engine) Turn(ctx context.Context, s *domain.Session, input string) (*domain.TurnResult, error) {
	return e.runtime.Turn(ctx, s, input)
}

// Inspect returns the state graph for visualization or introspection tools.
func (e *Engine) Inspect() []domain.StateInfo {
	return e.runtime.Inspect()
}

// NewSessionID returns a random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Diagram renders states as a Mermaid flowchart. When path is not empty the
// states it lists are highlighted, with the last one marked as current.
func Diagram(states []domain.StateInfo, path []domain.StateName) string {
	var overlay *graph.GraphOverlay
	if len(path) > 0 {
		overlay = graph.OverlayFromPath(path)
	}
	return graph.GenerateMermaid(states, runtime.EntryTransitions, overlay)
}
