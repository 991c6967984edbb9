package runtime

import (
	"fmt"

	"github.com/aretw0/maitre/pkg/domain"
)

// Greeting is the opening assistant message of every session.
const Greeting = `Hello! I'm your restaurant booking assistant.

I can help you make a reservation. I'll need to collect a few details:
- Restaurant name
- Date and time
- Party size (number of people)
- Your name
- Your phone number

Let's get started! What restaurant would you like to book?`

const (
	// fallbackChangeRequest is used when the classifier rejects without saying why.
	fallbackChangeRequest = "Please specify what changes you would like to make to the booking."

	notifiedMessage = "I've sent a confirmation SMS to your phone. Your booking is all set!"
)

// All renderers below take a request built from complete details, so every
// value is present by construction.

func renderSummary(r domain.BookingRequest) string {
	return fmt.Sprintf(`Great! Let me confirm the details of your booking:

Restaurant: %s
Date: %s
Time: %s
Party size: %d people
Name: %s
Phone: %s

Does everything look correct? (You can say 'yes' to confirm, or let me know if you'd like to change anything)`,
		r.Restaurant, r.Date, r.Time, r.PartySize, r.Name, r.Phone)
}

func renderBooked(ref string) string {
	return fmt.Sprintf("Perfect! I've created your booking. Reference: %s", ref)
}

func renderBookedOnRetry(ref string) string {
	return fmt.Sprintf("Success! Your booking has been created. Reference: %s", ref)
}

func renderBookingFailed(r domain.BookingRequest) string {
	return fmt.Sprintf(`I'm having trouble creating your booking right now. This might be a temporary issue with the booking system.

I've recorded your details:
- Restaurant: %s
- Date: %s at %s
- Party size: %d
- Name: %s
- Phone: %s

Can I have someone from the restaurant call you back to confirm the booking?`,
		r.Restaurant, r.Date, r.Time, r.PartySize, r.Name, r.Phone)
}

// RenderSMS builds the confirmation text sent to the customer's phone.
func RenderSMS(r domain.BookingRequest, ref string) string {
	return fmt.Sprintf(`Your booking is confirmed!

Restaurant: %s
Date: %s
Time: %s
Party: %d people
Name: %s
Phone: %s
Ref: %s

See you there! Reply CANCEL to modify.`,
		r.Restaurant, r.Date, r.Time, r.PartySize, r.Name, r.Phone, ref)
}

func renderNotifyFailed(r domain.BookingRequest, ref string) string {
	return fmt.Sprintf(`Your booking is confirmed!

However, I couldn't send the confirmation SMS. Please save this information:

Restaurant: %s
Date: %s
Time: %s
Party size: %d
Name: %s
Phone: %s
Booking Reference: %s

Please screenshot or write down your booking reference: %s`,
		r.Restaurant, r.Date, r.Time, r.PartySize, r.Name, r.Phone, ref, ref)
}
