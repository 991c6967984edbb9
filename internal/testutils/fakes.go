package testutils

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/maitre/pkg/domain"
)

// ErrScriptExhausted is returned by ScriptedExtractor when it runs out of canned results.
var ErrScriptExhausted = errors.New("scripted extractor has no more results")

// ScriptedExtractor replays canned extraction and classification results in order.
type ScriptedExtractor struct {
	mu          sync.Mutex
	Extractions []domain.Extraction
	Decisions   []domain.Decision

	// Err, when set, is returned by every call.
	Err error

	ExtractCalls  int
	ClassifyCalls int
	// LastCurrent records the details passed to the latest ExtractFields call.
	LastCurrent domain.BookingDetails
}

func (s *ScriptedExtractor) ExtractFields(ctx context.Context, history []domain.Message, current domain.BookingDetails) (domain.Extraction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExtractCalls++
	s.LastCurrent = current
	if s.Err != nil {
		return domain.Extraction{}, s.Err
	}
	if len(s.Extractions) == 0 {
		return domain.Extraction{}, ErrScriptExhausted
	}
	next := s.Extractions[0]
	s.Extractions = s.Extractions[1:]
	return next, nil
}

func (s *ScriptedExtractor) ClassifyConfirmation(ctx context.Context, history []domain.Message) (domain.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClassifyCalls++
	if s.Err != nil {
		return domain.Decision{}, s.Err
	}
	if len(s.Decisions) == 0 {
		return domain.Decision{}, ErrScriptExhausted
	}
	next := s.Decisions[0]
	s.Decisions = s.Decisions[1:]
	return next, nil
}

// FlakyBooking fails the first FailFirst calls, then returns sequential references.
// A negative FailFirst fails forever.
type FlakyBooking struct {
	mu        sync.Mutex
	FailFirst int
	Calls     []domain.BookingRequest
}

func (b *FlakyBooking) CreateBooking(ctx context.Context, req domain.BookingRequest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, req)
	if b.FailFirst < 0 || len(b.Calls) <= b.FailFirst {
		return "", errors.New("unable to connect to booking system")
	}
	return fmt.Sprintf("BK-%05d", 10000+len(b.Calls)), nil
}

// RecordingNotifier records every notification and optionally fails.
type RecordingNotifier struct {
	mu   sync.Mutex
	Fail bool
	Sent []SentMessage
}

// SentMessage is one notification captured by RecordingNotifier.
type SentMessage struct {
	Phone   string
	Message string
}

func (n *RecordingNotifier) SendNotification(ctx context.Context, phone, message string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Sent = append(n.Sent, SentMessage{Phone: phone, Message: message})
	if n.Fail {
		return "", errors.New("sms service temporarily unavailable")
	}
	return fmt.Sprintf("SMS-%05d", 10000+len(n.Sent)), nil
}

// CompleteDetails returns the reference booking used across tests.
func CompleteDetails() domain.BookingDetails {
	return domain.BookingDetails{
		RestaurantName: domain.Ptr("Mario's"),
		Date:           domain.Ptr("2025-12-01"),
		Time:           domain.Ptr("19:00"),
		PartySize:      domain.Ptr(4),
		CustomerName:   domain.Ptr("John Doe"),
		Phone:          domain.Ptr("555-1234"),
	}
}

// AwaitingSession returns a session that has just been shown the summary.
func AwaitingSession(id string) *domain.Session {
	s := domain.NewSession(id)
	s.Details = CompleteDetails()
	s.AllInfoCollected = true
	s.AwaitingConfirmation = true
	s.Append(domain.RoleAssistant, "Does everything look correct?")
	return s
}
