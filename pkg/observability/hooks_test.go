package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/internal/runtime"
	"github.com/aretw0/maitre/internal/testutils"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsRetry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	ex := &testutils.ScriptedExtractor{Decisions: []domain.Decision{{Proceed: true}}}
	eng := runtime.NewEngine(ex, &testutils.FlakyBooking{FailFirst: 1}, &testutils.RecordingNotifier{},
		runtime.WithLifecycleHooks(m.Hooks()))

	res, err := eng.Turn(context.Background(), testutils.AwaitingSession("s1"), "yes")
	require.NoError(t, err)
	m.RecordOutcome(res.Session.Outcome)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateVisits.WithLabelValues(string(domain.StateCommit))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateVisits.WithLabelValues(string(domain.StateBookingRecovery))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommitCalls.WithLabelValues(domain.OperationCreateBooking, "first", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommitCalls.WithLabelValues(domain.OperationCreateBooking, "retry", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommitCalls.WithLabelValues(domain.OperationSendNotification, "first", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionOutcomes.WithLabelValues(string(domain.OutcomeBooked))))
	assert.Equal(t, 2, testutil.CollectAndCount(m.CommitDuration))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LoggingHooks(logging.NewWithWriter(&buf, slog.LevelWarn))

	hooks.OnStateEnter(context.Background(), &domain.StateEvent{State: domain.StateCommit})
	hooks.OnCommitReturn(context.Background(), &domain.CommitEvent{
		EventBase: domain.EventBase{SessionID: "s1"},
		Operation: domain.OperationCreateBooking,
		IsError:   true,
		Error:     "timeout",
		Duration:  time.Second,
	})

	out := buf.String()
	assert.NotContains(t, out, "state_enter")
	assert.Contains(t, out, "commit_return")
	assert.Contains(t, out, "err=timeout")
}

func TestCombine(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{
		OnStateEnter: func(context.Context, *domain.StateEvent) { order = append(order, "a") },
	}
	b := domain.LifecycleHooks{
		OnStateEnter:   func(context.Context, *domain.StateEvent) { order = append(order, "b") },
		OnCommitReturn: func(context.Context, *domain.CommitEvent) { order = append(order, "b-commit") },
	}

	h := observability.Combine(a, domain.LifecycleHooks{}, b)
	h.OnStateEnter(context.Background(), &domain.StateEvent{})
	h.OnCommitReturn(context.Background(), &domain.CommitEvent{})

	assert.Equal(t, []string{"a", "b", "b-commit"}, order)
	assert.Nil(t, h.OnStateLeave)
	assert.Nil(t, h.OnCommitCall)
}
