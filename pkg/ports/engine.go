package ports

import (
	"context"

	"github.com/aretw0/maitre/pkg/domain"
)

// ConversationEngine is the interface hosts (CLI, HTTP, MCP) drive.
// It never mutates the session it receives.
type ConversationEngine interface {
	// Start creates a fresh session with the greeting as its first message.
	Start(ctx context.Context, sessionID string) (*domain.Session, error)

	// Turn feeds one user utterance and runs the machine until it yields or terminates.
	Turn(ctx context.Context, session *domain.Session, input string) (*domain.TurnResult, error)

	// Inspect returns the static state graph for introspection.
	Inspect() []domain.StateInfo
}
