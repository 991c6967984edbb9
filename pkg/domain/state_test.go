package domain_test

import (
	"testing"

	"github.com/aretw0/maitre/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingDetails_MergeKeepsAbsentFields(t *testing.T) {
	current := domain.BookingDetails{
		RestaurantName: domain.Ptr("Mario's"),
		Date:           domain.Ptr("2025-12-01"),
	}

	merged := current.Merge(domain.BookingDetails{Time: domain.Ptr("19:00")})
	require.NotNil(t, merged.RestaurantName)
	assert.Equal(t, "Mario's", *merged.RestaurantName)
	assert.Equal(t, "2025-12-01", *merged.Date)
	assert.Equal(t, "19:00", *merged.Time)

	// Explicit value overwrites
	merged = merged.Merge(domain.BookingDetails{RestaurantName: domain.Ptr("Luigi's")})
	assert.Equal(t, "Luigi's", *merged.RestaurantName)
	assert.Equal(t, "19:00", *merged.Time)

	// The source is never aliased
	*merged.Date = "2030-01-01"
	assert.Equal(t, "2025-12-01", *current.Date)
}

func TestBookingDetails_Missing(t *testing.T) {
	d := domain.BookingDetails{Date: domain.Ptr("2025-12-01"), Phone: domain.Ptr("555-1234")}
	assert.Equal(t, []string{
		domain.FieldRestaurantName,
		domain.FieldTime,
		domain.FieldPartySize,
		domain.FieldCustomerName,
	}, d.Missing())
	assert.False(t, d.Complete())

	_, ok := d.Request()
	assert.False(t, ok)
}

func TestBookingDetails_Status(t *testing.T) {
	d := domain.BookingDetails{RestaurantName: domain.Ptr("Mario's"), PartySize: domain.Ptr(4)}
	status := d.Status()
	assert.Contains(t, status, "Restaurant: Mario's")
	assert.Contains(t, status, "Party size: 4")
	assert.Contains(t, status, "Phone: Missing")
}

func TestSession_SnapshotIsolation(t *testing.T) {
	s := domain.NewSession("s1")
	s.Append(domain.RoleUser, "hello")
	s.Details.RestaurantName = domain.Ptr("Mario's")
	s.BookingRef = domain.Ptr("BK-1")

	snap := s.Snapshot()
	snap.Append(domain.RoleAssistant, "hi")
	*snap.Details.RestaurantName = "Other"
	*snap.BookingRef = "BK-2"

	assert.Len(t, s.Messages, 1)
	assert.Equal(t, "Mario's", *s.Details.RestaurantName)
	assert.Equal(t, "BK-1", *s.BookingRef)
}

func TestSession_ApplyFrozenWhenComplete(t *testing.T) {
	s := domain.NewSession("s1")
	s.Apply(domain.Update{
		Details:              domain.BookingDetails{Phone: domain.Ptr("555-1234")},
		ConversationComplete: domain.Ptr(true),
		Outcome:              domain.OutcomeFailed,
	})
	require.True(t, s.ConversationComplete)

	s.Apply(domain.Update{
		Details:    domain.BookingDetails{Phone: domain.Ptr("555-9999")},
		BookingRef: domain.Ptr("BK-1"),
		Messages:   []domain.Message{{Role: domain.RoleAssistant, Content: "late"}},
	})

	assert.Equal(t, "555-1234", *s.Details.Phone)
	assert.Nil(t, s.BookingRef)
	assert.Empty(t, s.Messages)
	assert.Equal(t, domain.OutcomeFailed, s.Outcome)
}

func TestSession_LastReply(t *testing.T) {
	s := domain.NewSession("s1")
	assert.Equal(t, "", s.LastReply())

	s.Append(domain.RoleAssistant, "first")
	s.Append(domain.RoleUser, "question")
	assert.Equal(t, "first", s.LastReply())
}
