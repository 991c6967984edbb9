package domain

// StateName identifies a state of the booking machine.
type StateName string

const (
	StateCollect         StateName = "collect_info"
	StateConfirm         StateName = "confirm"
	StateDecide          StateName = "handle_confirmation"
	StateCommit          StateName = "create_booking"
	StateBookingRecovery StateName = "handle_booking_error"
	StateNotify          StateName = "send_sms"
	StateNotifyRecovery  StateName = "handle_sms_error"

	// StateYield hands control back to the caller until the next user turn.
	StateYield StateName = "yield"
	// StateDone is the terminal sink.
	StateDone StateName = "done"
)

// StateKind classifies states for introspection.
type StateKind string

const (
	KindInput    StateKind = "input"    // Consults the extraction service
	KindText     StateKind = "text"     // Pure formatting
	KindCommit   StateKind = "commit"   // Calls a commit-side service
	KindRecovery StateKind = "recovery" // Handles a commit failure
	KindControl  StateKind = "control"  // Yield or terminal pseudo-states
)

// Transition defines a possible move from one state to another.
type Transition struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	// Condition is a human-readable description of the routing predicate.
	// If empty, the transition is unconditional.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// StateInfo describes one state of the machine.
type StateInfo struct {
	Name        StateName    `json:"name"`
	Kind        StateKind    `json:"kind"`
	Transitions []Transition `json:"transitions"`
}
