package domain

// Extraction is the structured result of reading the latest user input.
// Fields not mentioned by the user are left nil.
type Extraction struct {
	Fields BookingDetails `json:"fields"`

	// AssistantText acknowledges what was collected and asks for what is missing.
	// It must not claim the booking is confirmed.
	AssistantText string `json:"assistant_text"`
}

// Decision is the classification of the user's reply to a booking summary.
type Decision struct {
	Proceed bool `json:"proceed"`

	// ChangeRequest is a user-facing description of what to change.
	// It is populated whenever Proceed is false.
	ChangeRequest string `json:"change_request,omitempty"`
}
