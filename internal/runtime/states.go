package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/maitre/pkg/domain"
)

var errEmptyReference = errors.New("provider returned an empty booking reference")

// collect merges newly extracted fields and relays the extraction's reply.
func (e *Engine) collect(ctx context.Context, s *domain.Session) (step, error) {
	extraction, err := e.extractor.ExtractFields(ctx, s.Messages, s.Details.Clone())
	if err != nil {
		return step{}, &ExtractionError{State: domain.StateCollect, Cause: err}
	}

	merged := s.Details.Merge(extraction.Fields)
	u := domain.Say(extraction.AssistantText)
	u.Details = extraction.Fields
	u.AllInfoCollected = domain.Ptr(merged.Complete())

	e.logger.DebugContext(ctx, "fields extracted",
		"session_id", s.ID,
		"missing", strings.Join(merged.Missing(), ","),
	)
	return step{update: u}, nil
}

// confirm presents the collected details and waits for a yes/no reply.
func (e *Engine) confirm(ctx context.Context, s *domain.Session) (step, error) {
	req, ok := s.Details.Request()
	if !ok {
		return step{}, fmt.Errorf("confirm reached with missing fields: %v", s.Details.Missing())
	}

	u := domain.Say(renderSummary(req))
	u.AllInfoCollected = domain.Ptr(true)
	u.AwaitingConfirmation = domain.Ptr(true)
	return step{update: u}, nil
}

// decide classifies the reply to the summary. Anything but a clear yes sends
// the session back to collection on the next turn.
func (e *Engine) decide(ctx context.Context, s *domain.Session) (step, error) {
	decision, err := e.extractor.ClassifyConfirmation(ctx, s.Messages)
	if err != nil {
		return step{}, &ExtractionError{State: domain.StateDecide, Cause: err}
	}

	if decision.Proceed {
		return step{update: domain.Update{
			UserConfirmed:        domain.Ptr(true),
			AwaitingConfirmation: domain.Ptr(false),
		}}, nil
	}

	text := strings.TrimSpace(decision.ChangeRequest)
	if text == "" {
		text = fallbackChangeRequest
	}
	u := domain.Say(text)
	u.UserConfirmed = domain.Ptr(false)
	u.AwaitingConfirmation = domain.Ptr(false)
	return step{update: u}, nil
}

// commit makes the first booking attempt. Failure is left to recoverBooking.
func (e *Engine) commit(ctx context.Context, s *domain.Session) (step, error) {
	req, ok := s.Details.Request()
	if !ok {
		return step{}, fmt.Errorf("commit reached with missing fields: %v", s.Details.Missing())
	}

	ref, err := e.createBooking(ctx, s.ID, req, 1)
	if err != nil {
		return step{}, nil
	}

	u := domain.Say(renderBooked(ref))
	u.BookingRef = domain.Ptr(ref)
	return step{update: u}, nil
}

// recoverBooking retries the commit exactly once with identical arguments.
func (e *Engine) recoverBooking(ctx context.Context, s *domain.Session) (step, error) {
	req, ok := s.Details.Request()
	if !ok {
		return step{}, fmt.Errorf("booking recovery reached with missing fields: %v", s.Details.Missing())
	}

	ref, err := e.createBooking(ctx, s.ID, req, 2)
	if err == nil {
		u := domain.Say(renderBookedOnRetry(ref))
		u.BookingRef = domain.Ptr(ref)
		return step{update: u}, nil
	}

	e.logger.WarnContext(ctx, "booking abandoned after retry", "session_id", s.ID, "restaurant", req.Restaurant)
	u := domain.Say(renderBookingFailed(req))
	u.ConversationComplete = domain.Ptr(true)
	u.Outcome = domain.OutcomeFailed
	return step{update: u}, nil
}

// notify sends the confirmation SMS once. There is no retry.
func (e *Engine) notify(ctx context.Context, s *domain.Session) (step, error) {
	req, ok := s.Details.Request()
	if !ok || s.BookingRef == nil {
		return step{}, fmt.Errorf("notify reached without a committed booking")
	}
	ref := *s.BookingRef

	e.emitCommitCall(ctx, s.ID, domain.OperationSendNotification, 1)
	start := time.Now()
	id, err := e.notifier.SendNotification(ctx, req.Phone, RenderSMS(req, ref))
	e.emitCommitReturn(ctx, s.ID, domain.OperationSendNotification, 1, id, err, time.Since(start))

	if err != nil {
		e.logger.WarnContext(ctx, "notification failed", "session_id", s.ID, "booking_ref", ref, "err", err)
		return step{signal: SignalUndelivered}, nil
	}

	u := domain.Say(notifiedMessage)
	u.ConversationComplete = domain.Ptr(true)
	u.Outcome = domain.OutcomeBooked
	return step{update: u, signal: SignalDelivered}, nil
}

// recoverNotify hands the booking details to the user in plain text. The
// reservation itself is already committed.
func (e *Engine) recoverNotify(ctx context.Context, s *domain.Session) (step, error) {
	req, ok := s.Details.Request()
	if !ok || s.BookingRef == nil {
		return step{}, fmt.Errorf("notification recovery reached without a committed booking")
	}

	u := domain.Say(renderNotifyFailed(req, *s.BookingRef))
	u.ConversationComplete = domain.Ptr(true)
	u.Outcome = domain.OutcomeBookedUnnotified
	return step{update: u}, nil
}

// createBooking performs one commit attempt and normalises an empty reference into an error.
func (e *Engine) createBooking(ctx context.Context, sessionID string, req domain.BookingRequest, attempt int) (string, error) {
	e.emitCommitCall(ctx, sessionID, domain.OperationCreateBooking, attempt)
	start := time.Now()
	ref, err := e.bookings.CreateBooking(ctx, req)
	if err == nil && ref == "" {
		err = errEmptyReference
	}
	e.emitCommitReturn(ctx, sessionID, domain.OperationCreateBooking, attempt, ref, err, time.Since(start))

	if err != nil {
		e.logger.WarnContext(ctx, "booking attempt failed",
			"session_id", sessionID,
			"attempt", attempt,
			"err", err,
		)
		return "", err
	}
	return ref, nil
}
