package simulated

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/aretw0/maitre/internal/logging"
)

const (
	// DefaultSMSFailureRate is the share of messages that fail at random.
	DefaultSMSFailureRate = 0.03

	// FailurePhone always makes SendNotification fail.
	FailurePhone = "555-SMS-FAIL"
)

// ErrSMSUnavailable is the simulated gateway failure.
var ErrSMSUnavailable = errors.New("sms service temporarily unavailable")

// SentSMS is one delivered message.
type SentSMS struct {
	ID      string
	Phone   string
	Message string
}

// SMSGateway implements ports.Notifier.
type SMSGateway struct {
	failureRate float64
	logger      *slog.Logger

	mu     sync.Mutex
	rnd    *rand.Rand
	outbox []SentSMS
}

// SMSOption configures the SMSGateway.
type SMSOption func(*SMSGateway)

// WithSMSFailureRate sets the random failure rate, clamped to [0, 1].
func WithSMSFailureRate(rate float64) SMSOption {
	return func(g *SMSGateway) {
		g.failureRate = clampRate(rate)
	}
}

// WithSMSRand injects the random source.
func WithSMSRand(r *rand.Rand) SMSOption {
	return func(g *SMSGateway) {
		if r != nil {
			g.rnd = r
		}
	}
}

// WithSMSLogger sets the logger.
func WithSMSLogger(l *slog.Logger) SMSOption {
	return func(g *SMSGateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewSMSGateway creates a simulated SMS gateway.
func NewSMSGateway(opts ...SMSOption) *SMSGateway {
	g := &SMSGateway{
		failureRate: DefaultSMSFailureRate,
		logger:      logging.NewNop(),
		rnd:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SendNotification delivers message to phone and returns a message id.
func (g *SMSGateway) SendNotification(ctx context.Context, phone, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if phone == FailurePhone || g.rnd.Float64() < g.failureRate {
		return "", ErrSMSUnavailable
	}

	id := fmt.Sprintf("SMS-%d", refMin+g.rnd.IntN(refMax-refMin+1))
	g.outbox = append(g.outbox, SentSMS{ID: id, Phone: phone, Message: message})
	g.logger.InfoContext(ctx, "sms sent", "message_id", id, "phone", phone)
	return id, nil
}

// Outbox returns a copy of the delivered messages.
func (g *SMSGateway) Outbox() []SentSMS {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]SentSMS, len(g.outbox))
	copy(out, g.outbox)
	return out
}
