/*
Package session serialises access to booking conversations.

A Manager wraps a ports.SessionStore with per-session locks, so two turns on the same
conversation never interleave. With a DistributedLocker configured, the same guarantee
holds across replicas sharing a Redis instance.
*/
package session
