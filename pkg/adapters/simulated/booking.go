package simulated

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/pkg/domain"
)

const (
	// DefaultBookingFailureRate is the share of calls that fail at random.
	DefaultBookingFailureRate = 0.05

	// FailureRestaurant always makes CreateBooking fail.
	FailureRestaurant = "Test Failure Restaurant"

	refMin = 10000
	refMax = 99999

	// maxRefAttempts bounds regeneration when a reference collides in the ledger.
	maxRefAttempts = 8
)

var (
	// ErrBookingUnavailable is the simulated provider failure.
	ErrBookingUnavailable = errors.New("unable to connect to booking system")

	errRefSpaceExhausted = errors.New("could not allocate a unique booking reference")
)

// Ledger records committed reservations by reference.
type Ledger interface {
	// Reserve stores req under ref and reports false if ref is already taken.
	Reserve(ctx context.Context, ref string, req domain.BookingRequest) (bool, error)
	Lookup(ctx context.Context, ref string) (domain.BookingRequest, bool, error)
}

// BookingAPI implements ports.BookingService.
type BookingAPI struct {
	failureRate float64
	ledger      Ledger
	logger      *slog.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// BookingOption configures the BookingAPI.
type BookingOption func(*BookingAPI)

// WithBookingFailureRate sets the random failure rate, clamped to [0, 1].
func WithBookingFailureRate(rate float64) BookingOption {
	return func(b *BookingAPI) {
		b.failureRate = clampRate(rate)
	}
}

// WithLedger replaces the default in-memory ledger.
func WithLedger(l Ledger) BookingOption {
	return func(b *BookingAPI) {
		if l != nil {
			b.ledger = l
		}
	}
}

// WithBookingRand injects the random source used for failures and references.
func WithBookingRand(r *rand.Rand) BookingOption {
	return func(b *BookingAPI) {
		if r != nil {
			b.rnd = r
		}
	}
}

// WithBookingLogger sets the logger.
func WithBookingLogger(l *slog.Logger) BookingOption {
	return func(b *BookingAPI) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBookingAPI creates a simulated booking provider.
func NewBookingAPI(opts ...BookingOption) *BookingAPI {
	b := &BookingAPI{
		failureRate: DefaultBookingFailureRate,
		ledger:      NewMemoryLedger(),
		logger:      logging.NewNop(),
		rnd:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateBooking commits a reservation and returns its reference.
func (b *BookingAPI) CreateBooking(ctx context.Context, req domain.BookingRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Restaurant == FailureRestaurant || b.roll() < b.failureRate {
		return "", ErrBookingUnavailable
	}

	for i := 0; i < maxRefAttempts; i++ {
		ref := fmt.Sprintf("BK-%d", b.intn(refMin, refMax))
		ok, err := b.ledger.Reserve(ctx, ref, req)
		if err != nil {
			return "", fmt.Errorf("ledger unavailable: %w", err)
		}
		if ok {
			b.logger.InfoContext(ctx, "booking created",
				"booking_ref", ref,
				"restaurant", req.Restaurant,
				"date", req.Date,
				"time", req.Time,
				"party_size", req.PartySize,
			)
			return ref, nil
		}
	}
	return "", errRefSpaceExhausted
}

// Lookup returns a committed reservation.
func (b *BookingAPI) Lookup(ctx context.Context, ref string) (domain.BookingRequest, bool, error) {
	return b.ledger.Lookup(ctx, ref)
}

func (b *BookingAPI) roll() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rnd.Float64()
}

// intn returns a value in [lo, hi].
func (b *BookingAPI) intn(lo, hi int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lo + b.rnd.IntN(hi-lo+1)
}

func clampRate(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// MemoryLedger is a process-local Ledger.
type MemoryLedger struct {
	mu   sync.RWMutex
	data map[string]domain.BookingRequest
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{data: make(map[string]domain.BookingRequest)}
}

func (m *MemoryLedger) Reserve(ctx context.Context, ref string, req domain.BookingRequest) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.data[ref]; taken {
		return false, nil
	}
	m.data[ref] = req
	return true, nil
}

func (m *MemoryLedger) Lookup(ctx context.Context, ref string) (domain.BookingRequest, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.data[ref]
	return req, ok, nil
}

// Len returns the number of stored reservations.
func (m *MemoryLedger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
