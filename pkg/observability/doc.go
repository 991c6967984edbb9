/*
Package observability turns engine lifecycle events into logs and Prometheus metrics.

All constructors return domain.LifecycleHooks; use Combine to attach several at once.
*/
package observability
