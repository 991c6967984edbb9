package domain

import (
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry of the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Outcome describes how a session ended.
type Outcome string

const (
	OutcomePending          Outcome = "pending"           // Still collecting or confirming
	OutcomeBooked           Outcome = "booked"            // Committed and notified
	OutcomeBookedUnnotified Outcome = "booked_unnotified" // Committed, SMS failed
	OutcomeFailed           Outcome = "failed"            // Commit failed after retry
)

// Session represents the full state of one booking conversation.
type Session struct {
	// ID is an opaque identifier assigned by the host.
	ID string `json:"id"`

	// Messages is the append-only conversation history.
	Messages []Message `json:"messages"`

	// Details holds the collected reservation fields.
	Details BookingDetails `json:"details"`

	// BookingRef is set only by a successful commit.
	BookingRef *string `json:"booking_ref,omitempty"`

	AllInfoCollected     bool `json:"all_info_collected"`
	AwaitingConfirmation bool `json:"awaiting_confirmation"`
	UserConfirmed        bool `json:"user_confirmed"`

	// ConversationComplete locks the session once a terminal outcome is reached.
	ConversationComplete bool `json:"conversation_complete"`

	Outcome Outcome `json:"outcome"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session with all fields absent and all flags false.
func NewSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		Messages:  []Message{},
		Outcome:   OutcomePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot returns a deep copy of the session.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.Messages = make([]Message, len(s.Messages))
	copy(next.Messages, s.Messages)
	next.Details = s.Details.Clone()
	next.BookingRef = clonePtr(s.BookingRef)
	return &next
}

// Append adds a message to the history.
func (s *Session) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// LastReply returns the most recent assistant message, or "" if none.
func (s *Session) LastReply() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content
		}
	}
	return ""
}

// Apply merges a partial update into the session.
// Once ConversationComplete is true the session is frozen and Apply is a no-op.
func (s *Session) Apply(u Update) {
	if s.ConversationComplete {
		return
	}

	s.Details = s.Details.Merge(u.Details)
	s.Messages = append(s.Messages, u.Messages...)

	if u.BookingRef != nil {
		s.BookingRef = Ptr(*u.BookingRef)
	}
	if u.AllInfoCollected != nil {
		s.AllInfoCollected = *u.AllInfoCollected
	}
	if u.AwaitingConfirmation != nil {
		s.AwaitingConfirmation = *u.AwaitingConfirmation
	}
	if u.UserConfirmed != nil {
		s.UserConfirmed = *u.UserConfirmed
	}
	if u.Outcome != "" {
		s.Outcome = u.Outcome
	}
	if u.ConversationComplete != nil {
		s.ConversationComplete = *u.ConversationComplete
	}
	s.UpdatedAt = time.Now().UTC()
}

// Update is the partial change a state returns to the engine.
// Nil pointers and empty values leave the corresponding session field untouched.
type Update struct {
	Details              BookingDetails
	Messages             []Message
	BookingRef           *string
	AllInfoCollected     *bool
	AwaitingConfirmation *bool
	UserConfirmed        *bool
	ConversationComplete *bool
	Outcome              Outcome
}

// Say returns an update that only appends one assistant message.
func Say(text string) Update {
	return Update{Messages: []Message{{Role: RoleAssistant, Content: text}}}
}

// TurnResult is what the engine hands back to the caller after one turn.
type TurnResult struct {
	// Session is the updated session. It is a new value; the input is never mutated.
	Session *Session `json:"session"`

	// Reply is the most recent assistant utterance.
	Reply string `json:"reply"`

	// Path lists the states executed during the turn, in order.
	Path []StateName `json:"path"`
}
