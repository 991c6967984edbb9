package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/maitre/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors updated by the hooks it returns.
type Metrics struct {
	StateVisits     *prometheus.CounterVec
	CommitCalls     *prometheus.CounterVec
	CommitDuration  *prometheus.HistogramVec
	SessionOutcomes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		StateVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maitre_state_visits_total",
				Help: "Total number of state executions",
			},
			[]string{"state"},
		),
		CommitCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maitre_commit_calls_total",
				Help: "Calls to the booking and notification services by result",
			},
			[]string{"operation", "attempt", "result"},
		),
		CommitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "maitre_commit_duration_seconds",
				Help:    "Duration of booking and notification calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SessionOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "maitre_session_outcomes_total",
				Help: "Conversations that reached a terminal outcome",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.StateVisits, m.CommitCalls, m.CommitDuration, m.SessionOutcomes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			m.StateVisits.WithLabelValues(string(e.State)).Inc()
		},
		OnCommitReturn: func(_ context.Context, e *domain.CommitEvent) {
			result := "ok"
			if e.IsError {
				result = "error"
			}
			m.CommitCalls.WithLabelValues(e.Operation, attemptLabel(e.Attempt), result).Inc()
			m.CommitDuration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
		},
	}
}

// RecordOutcome counts a session that just reached a terminal outcome.
func (m *Metrics) RecordOutcome(o domain.Outcome) {
	m.SessionOutcomes.WithLabelValues(string(o)).Inc()
}

func attemptLabel(n int) string {
	switch n {
	case 1:
		return "first"
	case 2:
		return "retry"
	}
	return "other"
}

// LoggingHooks logs every lifecycle event at debug level, and failed commits at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "state_enter", "session_id", e.SessionID, "state", e.State, "kind", e.Kind)
		},
		OnStateLeave: func(ctx context.Context, e *domain.StateEvent) {
			logger.DebugContext(ctx, "state_leave", "session_id", e.SessionID, "state", e.State)
		},
		OnCommitCall: func(ctx context.Context, e *domain.CommitEvent) {
			logger.DebugContext(ctx, "commit_call", "session_id", e.SessionID, "operation", e.Operation, "attempt", e.Attempt)
		},
		OnCommitReturn: func(ctx context.Context, e *domain.CommitEvent) {
			if e.IsError {
				logger.WarnContext(ctx, "commit_return",
					"session_id", e.SessionID,
					"operation", e.Operation,
					"attempt", e.Attempt,
					"error", e.Error,
					"duration", e.Duration,
				)
				return
			}
			logger.DebugContext(ctx, "commit_return",
				"session_id", e.SessionID,
				"operation", e.Operation,
				"result", e.Result,
				"duration", e.Duration,
			)
		},
	}
}

// Combine fans each event out to every set of hooks, in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnStateEnter = chainState(out.OnStateEnter, h.OnStateEnter)
		out.OnStateLeave = chainState(out.OnStateLeave, h.OnStateLeave)
		out.OnCommitCall = chainCommit(out.OnCommitCall, h.OnCommitCall)
		out.OnCommitReturn = chainCommit(out.OnCommitReturn, h.OnCommitReturn)
	}
	return out
}

func chainState(a, b func(context.Context, *domain.StateEvent)) func(context.Context, *domain.StateEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.StateEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainCommit(a, b func(context.Context, *domain.CommitEvent)) func(context.Context, *domain.CommitEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.CommitEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
