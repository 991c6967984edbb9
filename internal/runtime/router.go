package runtime

import (
	"github.com/aretw0/maitre/pkg/domain"
)

// Signal carries an explicit outcome from a state to the router, for results
// that are not recorded in the session itself.
type Signal int

const (
	SignalNone Signal = iota
	SignalDelivered
	SignalUndelivered
)

// stateEntry is the pseudo-origin used to route the first state of a turn.
const stateEntry domain.StateName = ""

// Route decides the next state from the state just executed, the session after
// its update was applied, and the signal it returned. It is pure.
func Route(from domain.StateName, s *domain.Session, sig Signal) domain.StateName {
	if s.ConversationComplete {
		return domain.StateDone
	}

	switch from {
	case stateEntry:
		if s.AwaitingConfirmation {
			return domain.StateDecide
		}
		return domain.StateCollect

	case domain.StateCollect:
		if ShouldConfirm(s.Details) {
			return domain.StateConfirm
		}
		return domain.StateYield

	case domain.StateConfirm:
		return domain.StateYield

	case domain.StateDecide:
		if s.UserConfirmed {
			return domain.StateCommit
		}
		return domain.StateYield

	case domain.StateCommit:
		if s.BookingRef != nil {
			return domain.StateNotify
		}
		return domain.StateBookingRecovery

	case domain.StateBookingRecovery:
		if s.BookingRef != nil {
			return domain.StateNotify
		}
		return domain.StateDone

	case domain.StateNotify:
		if sig == SignalDelivered {
			return domain.StateDone
		}
		return domain.StateNotifyRecovery

	case domain.StateNotifyRecovery:
		return domain.StateDone
	}

	return domain.StateYield
}

// ShouldConfirm reports whether collection is finished and the summary should be presented.
func ShouldConfirm(d domain.BookingDetails) bool {
	return d.Complete()
}

// graph is the static description of Route, used for introspection.
var graph = []domain.StateInfo{
	{
		Name: domain.StateCollect,
		Kind: domain.KindInput,
		Transitions: []domain.Transition{
			{To: string(domain.StateConfirm), Condition: "all fields collected"},
			{To: string(domain.StateYield), Condition: "fields missing"},
		},
	},
	{
		Name: domain.StateConfirm,
		Kind: domain.KindText,
		Transitions: []domain.Transition{
			{To: string(domain.StateYield)},
		},
	},
	{
		Name: domain.StateDecide,
		Kind: domain.KindInput,
		Transitions: []domain.Transition{
			{To: string(domain.StateCommit), Condition: "user confirmed"},
			{To: string(domain.StateYield), Condition: "changes requested"},
		},
	},
	{
		Name: domain.StateCommit,
		Kind: domain.KindCommit,
		Transitions: []domain.Transition{
			{To: string(domain.StateNotify), Condition: "booking ref"},
			{To: string(domain.StateBookingRecovery), Condition: "commit failed"},
		},
	},
	{
		Name: domain.StateBookingRecovery,
		Kind: domain.KindRecovery,
		Transitions: []domain.Transition{
			{To: string(domain.StateNotify), Condition: "retry succeeded"},
			{To: string(domain.StateDone), Condition: "retry failed"},
		},
	},
	{
		Name: domain.StateNotify,
		Kind: domain.KindCommit,
		Transitions: []domain.Transition{
			{To: string(domain.StateDone), Condition: "delivered"},
			{To: string(domain.StateNotifyRecovery), Condition: "undelivered"},
		},
	},
	{
		Name: domain.StateNotifyRecovery,
		Kind: domain.KindRecovery,
		Transitions: []domain.Transition{
			{To: string(domain.StateDone)},
		},
	},
	{Name: domain.StateYield, Kind: domain.KindControl},
	{Name: domain.StateDone, Kind: domain.KindControl},
}

// EntryTransitions describes how a turn picks its first state.
var EntryTransitions = []domain.Transition{
	{To: string(domain.StateDecide), Condition: "awaiting confirmation"},
	{To: string(domain.StateCollect), Condition: "collecting"},
}
