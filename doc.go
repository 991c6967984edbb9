/*
Package maitre is a conversational restaurant-booking agent built on a small deterministic state machine.

A language model is used only to read free text: it extracts booking fields and classifies the
user's reply to a summary. Every decision about what happens next (present the summary, commit the
booking, retry, notify, stop) is made by plain routing code over the session flags.

# Concept

A Session carries the conversation history, the six reservation fields and a handful of flags.
Each call to Turn appends one user message and runs states until the machine needs more input or
reaches a terminal outcome. The session passed in is never mutated: a failed turn leaves the caller
with exactly what it had before.

# Key Features

  - Monotone collection: a field, once set, is only replaced by an explicit new value.
  - Gated commit: the booking service is called only after an explicit confirmation.
  - Bounded retry: one retry on booking failure, none on notification failure.
  - Terminal lock: a completed session rejects further turns.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/maitre"
	)

	func main() {
		eng, err := maitre.New(extractor, bookingAPI, smsGateway)
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		session, _ := eng.Start(ctx, "")
		fmt.Println(session.LastReply())

		res, err := eng.Turn(ctx, session, "A table at Mario's for 4 tomorrow at 7pm")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.Reply)
		session = res.Session
	}
*/
package maitre
