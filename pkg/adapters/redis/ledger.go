package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/maitre/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Ledger records committed reservations in Redis so several simulated booking
// APIs can share one reference space.
type Ledger struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewLedger creates a ledger. A zero ttl keeps records forever.
func NewLedger(client backend.UniversalClient, prefix string, ttl time.Duration) *Ledger {
	return &Ledger{client: client, prefix: prefix, ttl: ttl}
}

func (l *Ledger) key(ref string) string {
	return l.prefix + "booking:" + ref
}

// Reserve stores req under ref. It reports false when ref is already taken.
func (l *Ledger) Reserve(ctx context.Context, ref string, req domain.BookingRequest) (bool, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("failed to encode reservation: %w", err)
	}
	ok, err := l.client.SetNX(ctx, l.key(ref), data, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve %s: %w", ref, err)
	}
	return ok, nil
}

// Lookup returns the reservation stored under ref.
func (l *Ledger) Lookup(ctx context.Context, ref string) (domain.BookingRequest, bool, error) {
	var req domain.BookingRequest
	data, err := l.client.Get(ctx, l.key(ref)).Bytes()
	if err == backend.Nil {
		return req, false, nil
	}
	if err != nil {
		return req, false, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, false, fmt.Errorf("failed to decode reservation %s: %w", ref, err)
	}
	return req, true, nil
}
