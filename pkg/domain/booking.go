package domain

import (
	"fmt"
	"strings"
)

// Field names, shared by JSON encoding, diffs and status views.
const (
	FieldRestaurantName = "restaurant_name"
	FieldDate           = "date"
	FieldTime           = "time"
	FieldPartySize      = "party_size"
	FieldCustomerName   = "customer_name"
	FieldPhone          = "phone"
)

// RequiredFields lists the booking fields in collection order.
var RequiredFields = []string{
	FieldRestaurantName,
	FieldDate,
	FieldTime,
	FieldPartySize,
	FieldCustomerName,
	FieldPhone,
}

// BookingDetails holds the reservation fields collected so far.
// A nil pointer means the field has not been provided yet; it is never
// represented by the zero value.
type BookingDetails struct {
	RestaurantName *string `json:"restaurant_name,omitempty"`
	Date           *string `json:"date,omitempty"` // YYYY-MM-DD
	Time           *string `json:"time,omitempty"` // HH:MM, 24-hour clock
	PartySize      *int    `json:"party_size,omitempty"`
	CustomerName   *string `json:"customer_name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
}

// Complete reports whether all six fields are present.
func (b BookingDetails) Complete() bool {
	return b.RestaurantName != nil &&
		b.Date != nil &&
		b.Time != nil &&
		b.PartySize != nil &&
		b.CustomerName != nil &&
		b.Phone != nil
}

// Missing returns the names of absent fields, in collection order.
func (b BookingDetails) Missing() []string {
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := b.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Get returns the value of a field by name and whether it is present.
func (b BookingDetails) Get(name string) (any, bool) {
	switch name {
	case FieldRestaurantName:
		return deref(b.RestaurantName)
	case FieldDate:
		return deref(b.Date)
	case FieldTime:
		return deref(b.Time)
	case FieldPartySize:
		return deref(b.PartySize)
	case FieldCustomerName:
		return deref(b.CustomerName)
	case FieldPhone:
		return deref(b.Phone)
	}
	return nil, false
}

// Merge overlays the present fields of update onto b.
// Fields absent in update keep their current value.
func (b BookingDetails) Merge(update BookingDetails) BookingDetails {
	merged := b.Clone()
	if update.RestaurantName != nil {
		merged.RestaurantName = Ptr(*update.RestaurantName)
	}
	if update.Date != nil {
		merged.Date = Ptr(*update.Date)
	}
	if update.Time != nil {
		merged.Time = Ptr(*update.Time)
	}
	if update.PartySize != nil {
		merged.PartySize = Ptr(*update.PartySize)
	}
	if update.CustomerName != nil {
		merged.CustomerName = Ptr(*update.CustomerName)
	}
	if update.Phone != nil {
		merged.Phone = Ptr(*update.Phone)
	}
	return merged
}

// Clone returns a copy that shares no pointers with b.
func (b BookingDetails) Clone() BookingDetails {
	return BookingDetails{
		RestaurantName: clonePtr(b.RestaurantName),
		Date:           clonePtr(b.Date),
		Time:           clonePtr(b.Time),
		PartySize:      clonePtr(b.PartySize),
		CustomerName:   clonePtr(b.CustomerName),
		Phone:          clonePtr(b.Phone),
	}
}

// IsEmpty reports whether no field is present.
func (b BookingDetails) IsEmpty() bool {
	return len(b.Missing()) == len(RequiredFields)
}

// Request converts complete details into a commit request.
// The second return value is false if any field is missing.
func (b BookingDetails) Request() (BookingRequest, bool) {
	if !b.Complete() {
		return BookingRequest{}, false
	}
	return BookingRequest{
		Restaurant: *b.RestaurantName,
		Date:       *b.Date,
		Time:       *b.Time,
		PartySize:  *b.PartySize,
		Name:       *b.CustomerName,
		Phone:      *b.Phone,
	}, true
}

// Status renders one "Label: value" line per field, using "Missing" for
// absent values.
func (b BookingDetails) Status() string {
	var sb strings.Builder
	for _, name := range RequiredFields {
		value := "Missing"
		if v, ok := b.Get(name); ok {
			value = fmt.Sprint(v)
		}
		fmt.Fprintf(&sb, "%s: %s\n", FieldLabel(name), value)
	}
	return sb.String()
}

// FieldLabel returns the human-readable label of a field.
func FieldLabel(name string) string {
	switch name {
	case FieldRestaurantName:
		return "Restaurant"
	case FieldDate:
		return "Date"
	case FieldTime:
		return "Time"
	case FieldPartySize:
		return "Party size"
	case FieldCustomerName:
		return "Name"
	case FieldPhone:
		return "Phone"
	}
	return name
}

// BookingRequest is the argument set of a booking commit.
type BookingRequest struct {
	Restaurant string `json:"restaurant"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	PartySize  int    `json:"party_size"`
	Name       string `json:"customer_name"`
	Phone      string `json:"phone"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref[T any](p *T) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}
