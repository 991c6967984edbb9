package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	booked := OutcomeBooked

	tests := []struct {
		name     string
		old      *Session
		new      *Session
		wantDiff *SessionDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &Session{
				ID:       "sess-1",
				Details:  BookingDetails{RestaurantName: Ptr("Mario's")},
				Messages: []Message{{Role: RoleAssistant, Content: "hi"}},
				Outcome:  OutcomePending,
			},
			wantDiff: &SessionDiff{
				SessionID: "sess-1",
				Fields:    map[string]any{FieldRestaurantName: "Mario's"},
				Appended:  []Message{{Role: RoleAssistant, Content: "hi"}},
				Outcome:   Ptr(OutcomePending),
			},
		},
		{
			name: "No Changes",
			old: &Session{
				ID:      "sess-1",
				Details: BookingDetails{PartySize: Ptr(4)},
				Outcome: OutcomePending,
			},
			new: &Session{
				ID:      "sess-1",
				Details: BookingDetails{PartySize: Ptr(4)},
				Outcome: OutcomePending,
			},
			wantDiff: nil,
		},
		{
			name: "Field Added & Modified",
			old: &Session{
				ID:      "sess-1",
				Details: BookingDetails{RestaurantName: Ptr("Mario's"), Time: Ptr("19:00")},
			},
			new: &Session{
				ID:      "sess-1",
				Details: BookingDetails{RestaurantName: Ptr("Mario's"), Time: Ptr("20:00"), PartySize: Ptr(2)},
			},
			wantDiff: &SessionDiff{
				SessionID: "sess-1",
				Fields:    map[string]any{FieldTime: "20:00", FieldPartySize: 2},
			},
		},
		{
			name: "Terminal Booking",
			old: &Session{
				ID:            "sess-1",
				UserConfirmed: true,
				Outcome:       OutcomePending,
			},
			new: &Session{
				ID:                   "sess-1",
				UserConfirmed:        true,
				ConversationComplete: true,
				BookingRef:           Ptr("BK-12345"),
				Outcome:              OutcomeBooked,
			},
			wantDiff: &SessionDiff{
				SessionID:  "sess-1",
				Flags:      map[string]bool{"conversation_complete": true},
				BookingRef: Ptr("BK-12345"),
				Outcome:    &booked,
			},
		},
		{
			name: "History Append",
			old: &Session{
				ID:       "sess-1",
				Messages: []Message{{Role: RoleUser, Content: "a"}},
			},
			new: &Session{
				ID:       "sess-1",
				Messages: []Message{{Role: RoleUser, Content: "a"}, {Role: RoleAssistant, Content: "b"}},
			},
			wantDiff: &SessionDiff{
				SessionID: "sess-1",
				Appended:  []Message{{Role: RoleAssistant, Content: "b"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}

			if got.SessionID != tt.wantDiff.SessionID {
				t.Errorf("Diff().SessionID = %v, want %v", got.SessionID, tt.wantDiff.SessionID)
			}
			if !reflect.DeepEqual(got.Fields, tt.wantDiff.Fields) {
				t.Errorf("Diff().Fields = %v, want %v", got.Fields, tt.wantDiff.Fields)
			}
			if !reflect.DeepEqual(got.Flags, tt.wantDiff.Flags) {
				t.Errorf("Diff().Flags = %v, want %v", got.Flags, tt.wantDiff.Flags)
			}
			if !reflect.DeepEqual(got.Appended, tt.wantDiff.Appended) {
				t.Errorf("Diff().Appended = %v, want %v", got.Appended, tt.wantDiff.Appended)
			}
			if !equalPtr(got.BookingRef, tt.wantDiff.BookingRef) {
				t.Errorf("Diff().BookingRef = %v, want %v", got.BookingRef, tt.wantDiff.BookingRef)
			}
			if !equalPtr(got.Outcome, tt.wantDiff.Outcome) {
				t.Errorf("Diff().Outcome = %v, want %v", got.Outcome, tt.wantDiff.Outcome)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Empty Fields Omitted", func(t *testing.T) {
		s1 := &Session{ID: "a", Messages: []Message{{Role: RoleUser, Content: "x"}}}
		s2 := s1.Snapshot()
		s2.Append(RoleAssistant, "y")

		diff := Diff(s1, s2)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"fields"`) {
			t.Errorf("JSON should not contain 'fields' when empty, got: %s", string(bytes))
		}
		if !strings.Contains(string(bytes), `"appended"`) {
			t.Errorf("JSON should contain 'appended', got: %s", string(bytes))
		}
	})
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
