package domain

import "errors"

// ErrConversationComplete is returned when a turn is attempted on a session
// that already reached a terminal outcome.
var ErrConversationComplete = errors.New("conversation already complete")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptyInput is returned when a turn carries no user text.
var ErrEmptyInput = errors.New("empty user input")
