package ports

import (
	"context"

	"github.com/aretw0/maitre/pkg/domain"
)

// SessionStore keeps session state between turns.
// Sessions are transient: implementations live for the process lifetime only.
type SessionStore interface {
	// Save stores the session under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session by ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session for a given ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of stored sessions.
	List(ctx context.Context) ([]string, error)
}
