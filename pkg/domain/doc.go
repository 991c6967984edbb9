/*
Package domain contains the core domain models of the maitre booking engine.

It defines the entities of the conversation state machine, such as the Session,
the collected BookingDetails, the partial Update returned by each state and the
static state graph. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Session: The mutable record of one booking conversation (fields, flags, history, outcome).
  - BookingDetails: The six reservation fields; absent fields are nil pointers.
  - Update: A partial change produced by a state and applied by the engine.
  - StateName / StateInfo: The states of the machine and their transitions.
  - LifecycleHooks: Callbacks for observing state execution and commit calls.
*/
package domain
