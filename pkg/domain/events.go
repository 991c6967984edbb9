package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStateEnter   EventType = "state_enter"
	EventStateLeave   EventType = "state_leave"
	EventCommitCall   EventType = "commit_call"
	EventCommitReturn EventType = "commit_return"
)

// Commit-side operations reported in CommitEvent.Operation.
const (
	OperationCreateBooking    = "create_booking"
	OperationSendNotification = "send_notification"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StateEvent represents entry or exit from a state.
type StateEvent struct {
	EventBase
	State StateName `json:"state"`
	Kind  StateKind `json:"kind"`
}

// CommitEvent represents a call to the booking or notification service.
type CommitEvent struct {
	EventBase
	Operation string        `json:"operation"`
	Attempt   int           `json:"attempt"`
	Result    string        `json:"result,omitempty"` // Booking ref or message id
	IsError   bool          `json:"is_error,omitempty"`
	Error     string        `json:"error,omitempty"` // Provider diagnostic, never shown to the user
	Duration  time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStateEnter   func(context.Context, *StateEvent)
	OnStateLeave   func(context.Context, *StateEvent)
	OnCommitCall   func(context.Context, *CommitEvent)
	OnCommitReturn func(context.Context, *CommitEvent)
}
