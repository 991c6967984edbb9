/*
Package ports defines the driven ports (interfaces) for the maitre engine.

These interfaces decouple the booking state machine from external
implementations, allowing the engine to work with any extraction service,
booking provider, notification channel or session backend.

# Key Interfaces

  - Extractor: Turns conversation history into booking fields or a confirmation decision.
  - BookingService: Commits a reservation and returns its reference.
  - Notifier: Sends the confirmation message to the customer.
  - SessionStore: Keeps transient session state for hosts serving many conversations.
  - DistributedLocker: Serialises access to one session across replicas.
*/
package ports
