package maitre_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/maitre"
	"github.com/aretw0/maitre/internal/testutils"
	"github.com/aretw0/maitre/pkg/domain"
)

// ExampleEngine_Turn walks a full booking with scripted extraction results.
func ExampleEngine_Turn() {
	extractor := &testutils.ScriptedExtractor{
		Extractions: []domain.Extraction{
			{Fields: testutils.CompleteDetails(), AssistantText: "Thanks, I have everything."},
		},
		Decisions: []domain.Decision{{Proceed: true}},
	}

	engine, err := maitre.New(extractor, &testutils.FlakyBooking{}, &testutils.RecordingNotifier{})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	session, err := engine.Start(ctx, "example")
	if err != nil {
		log.Fatal(err)
	}

	res, err := engine.Turn(ctx, session, "Mario's, Dec 1st 7pm, 4 people, John Doe, 555-1234")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Session.AwaitingConfirmation)

	res, err = engine.Turn(ctx, res.Session, "yes")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(*res.Session.BookingRef)
	fmt.Println(res.Reply)

	// Output:
	// true
	// BK-10001
	// I've sent a confirmation SMS to your phone. Your booking is all set!
}
