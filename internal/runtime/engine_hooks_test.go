package runtime_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/internal/runtime"
	"github.com/aretw0/maitre/internal/testutils"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBooking lets tests assert exact call arguments.
type MockBooking struct {
	mock.Mock
}

func (m *MockBooking) CreateBooking(ctx context.Context, req domain.BookingRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, left []domain.StateName
	var commits []domain.CommitEvent

	hooks := domain.LifecycleHooks{
		OnStateEnter: func(ctx context.Context, e *domain.StateEvent) {
			entered = append(entered, e.State)
		},
		OnStateLeave: func(ctx context.Context, e *domain.StateEvent) {
			left = append(left, e.State)
		},
		OnCommitReturn: func(ctx context.Context, e *domain.CommitEvent) {
			commits = append(commits, *e)
		},
	}

	ex := &testutils.ScriptedExtractor{Decisions: []domain.Decision{{Proceed: true}}}
	bk := &testutils.FlakyBooking{FailFirst: 1}
	engine := runtime.NewEngine(ex, bk, &testutils.RecordingNotifier{}, runtime.WithLifecycleHooks(hooks))

	_, err := engine.Turn(context.Background(), testutils.AwaitingSession("hooks"), "yes")
	require.NoError(t, err)

	want := []domain.StateName{domain.StateDecide, domain.StateCommit, domain.StateBookingRecovery, domain.StateNotify}
	assert.Equal(t, want, entered)
	assert.Equal(t, want, left)

	require.Len(t, commits, 3)
	assert.Equal(t, domain.OperationCreateBooking, commits[0].Operation)
	assert.Equal(t, 1, commits[0].Attempt)
	assert.True(t, commits[0].IsError)
	assert.Equal(t, "unable to connect to booking system", commits[0].Error)

	assert.Equal(t, 2, commits[1].Attempt)
	assert.False(t, commits[1].IsError)
	assert.Equal(t, "BK-10002", commits[1].Result)

	assert.Equal(t, domain.OperationSendNotification, commits[2].Operation)
	assert.Equal(t, "hooks", commits[2].SessionID)
}

func TestEngine_EmptyReferenceIsFailure(t *testing.T) {
	req := domain.BookingRequest{
		Restaurant: "Mario's", Date: "2025-12-01", Time: "19:00", PartySize: 4, Name: "John Doe", Phone: "555-1234",
	}
	bk := new(MockBooking)
	bk.On("CreateBooking", mock.Anything, req).Return("", nil).Twice()

	ex := &testutils.ScriptedExtractor{Decisions: []domain.Decision{{Proceed: true}}}
	nt := &testutils.RecordingNotifier{}
	engine := runtime.NewEngine(ex, bk, nt)

	res, err := engine.Turn(context.Background(), testutils.AwaitingSession("s1"), "yes")
	require.NoError(t, err)

	bk.AssertExpectations(t)
	assert.Nil(t, res.Session.BookingRef)
	assert.Equal(t, domain.OutcomeFailed, res.Session.Outcome)
	assert.Empty(t, nt.Sent)
}

func TestEngine_DiagnosticsStayInLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug)

	bk := new(MockBooking)
	bk.On("CreateBooking", mock.Anything, mock.Anything).Return("", errors.New("upstream 503: pool exhausted"))

	ex := &testutils.ScriptedExtractor{Decisions: []domain.Decision{{Proceed: true}}}
	engine := runtime.NewEngine(ex, bk, &testutils.RecordingNotifier{}, runtime.WithLogger(logger))

	res, err := engine.Turn(context.Background(), testutils.AwaitingSession("s1"), "yes")
	require.NoError(t, err)

	bk.AssertNumberOfCalls(t, "CreateBooking", 2)
	assert.Contains(t, buf.String(), "pool exhausted")
	for _, m := range res.Session.Messages {
		assert.NotContains(t, m.Content, "pool exhausted")
	}
}
