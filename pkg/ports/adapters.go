package ports

import (
	"context"

	"github.com/aretw0/maitre/pkg/domain"
)

// Extractor reads free text and produces structured booking data.
// Implementations are expected to impose their own timeouts; any returned
// error is treated as a failure of the whole turn.
type Extractor interface {
	// ExtractFields returns the fields mentioned in the latest input plus the
	// assistant's acknowledgment or next question.
	ExtractFields(ctx context.Context, history []domain.Message, current domain.BookingDetails) (domain.Extraction, error)

	// ClassifyConfirmation interprets the reply to a presented booking summary.
	ClassifyConfirmation(ctx context.Context, history []domain.Message) (domain.Decision, error)
}

// BookingService commits reservations.
// A non-nil error or an empty reference means the commit did not happen.
type BookingService interface {
	CreateBooking(ctx context.Context, req domain.BookingRequest) (string, error)
}

// Notifier delivers a confirmation message to a phone number.
// It returns a provider message id on success.
type Notifier interface {
	SendNotification(ctx context.Context, phone, message string) (string, error)
}
