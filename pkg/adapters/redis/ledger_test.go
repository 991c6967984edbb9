package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/maitre/pkg/adapters/redis"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_ReserveAndLookup(t *testing.T) {
	mr, client := newClient(t)
	ledger := redis.NewLedger(client, "maitre:", time.Hour)
	ctx := context.Background()

	req := domain.BookingRequest{
		Restaurant: "Mario's", Date: "2025-12-01", Time: "19:00", PartySize: 4, Name: "John Doe", Phone: "555-1234",
	}

	ok, err := ledger.Reserve(ctx, "BK-12345", req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("maitre:booking:BK-12345"))

	ok, err = ledger.Reserve(ctx, "BK-12345", req)
	require.NoError(t, err)
	assert.False(t, ok, "reference already taken")

	got, found, err := ledger.Lookup(ctx, "BK-12345")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, req, got)

	_, found, err = ledger.Lookup(ctx, "BK-00000")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLedger_Expiry(t *testing.T) {
	mr, client := newClient(t)
	ledger := redis.NewLedger(client, "maitre:", time.Minute)
	ctx := context.Background()

	_, err := ledger.Reserve(ctx, "BK-10001", domain.BookingRequest{Restaurant: "Mario's"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, found, err := ledger.Lookup(ctx, "BK-10001")
	require.NoError(t, err)
	assert.False(t, found)
}
