package domain

import (
	"reflect"
)

// SessionDiff represents the changes between two snapshots of a session.
// It is designed to be serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	// Fields contains only changed booking fields.
	Fields map[string]any `json:"fields,omitempty"`

	// Flags contains only changed control flags.
	Flags map[string]bool `json:"flags,omitempty"`

	BookingRef *string  `json:"booking_ref,omitempty"`
	Outcome    *Outcome `json:"outcome,omitempty"`

	// Appended holds the messages added since the old snapshot.
	// History is append-only, so a prefix is never rewritten.
	Appended []Message `json:"appended,omitempty"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, it returns a diff representing the entire newSession.
func Diff(oldSession, newSession *Session) *SessionDiff {
	if newSession == nil {
		return nil
	}

	diff := &SessionDiff{
		SessionID: newSession.ID,
		Fields:    diffFields(oldSession, newSession),
		Flags:     diffFlags(oldSession, newSession),
		Appended:  diffMessages(oldSession, newSession),
	}

	if newSession.BookingRef != nil && (oldSession == nil || !reflect.DeepEqual(oldSession.BookingRef, newSession.BookingRef)) {
		diff.BookingRef = Ptr(*newSession.BookingRef)
	}
	if oldSession == nil || oldSession.Outcome != newSession.Outcome {
		diff.Outcome = Ptr(newSession.Outcome)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffFields(old, new *Session) map[string]any {
	delta := make(map[string]any)
	for _, name := range RequiredFields {
		newVal, newOK := new.Details.Get(name)
		if !newOK {
			continue
		}
		if old != nil {
			if oldVal, oldOK := old.Details.Get(name); oldOK && reflect.DeepEqual(oldVal, newVal) {
				continue
			}
		}
		delta[name] = newVal
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func diffFlags(old, new *Session) map[string]bool {
	newFlags := flagsOf(new)
	delta := make(map[string]bool)
	if old == nil {
		for k, v := range newFlags {
			if v {
				delta[k] = v
			}
		}
	} else {
		oldFlags := flagsOf(old)
		for k, v := range newFlags {
			if oldFlags[k] != v {
				delta[k] = v
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

func flagsOf(s *Session) map[string]bool {
	return map[string]bool{
		"all_info_collected":    s.AllInfoCollected,
		"awaiting_confirmation": s.AwaitingConfirmation,
		"user_confirmed":        s.UserConfirmed,
		"conversation_complete": s.ConversationComplete,
	}
}

func diffMessages(old, new *Session) []Message {
	if len(new.Messages) == 0 {
		return nil
	}
	if old == nil {
		return new.Messages
	}
	if len(new.Messages) > len(old.Messages) {
		return new.Messages[len(old.Messages):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SessionDiff) IsEmpty() bool {
	return len(d.Fields) == 0 &&
		len(d.Flags) == 0 &&
		d.BookingRef == nil &&
		d.Outcome == nil &&
		len(d.Appended) == 0
}
