package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/maitre"
	"github.com/aretw0/maitre/internal/logging"
	"github.com/aretw0/maitre/internal/presentation/tui"
	"github.com/aretw0/maitre/internal/sanitize"
	"github.com/aretw0/maitre/pkg/domain"
	"github.com/aretw0/maitre/pkg/ports"
	"github.com/aretw0/maitre/pkg/session"
)

const (
	separator = "============================================================"
	goodbye   = "Thank you for using the restaurant booking agent! Goodbye!"
)

var (
	exitWords    = []string{"exit", "quit", "bye", "goodbye"}
	cancelWords  = []string{"cancel", "cancel booking", "undo"}
	anotherWords = []string{"yes", "y", "sure", "ok"}
)

// Chat is the interactive terminal conversation.
type Chat struct {
	Engine   ports.ConversationEngine
	Sessions *session.Manager
	In       io.Reader
	Out      io.Writer
	Render   func(string) (string, error)
	Styled   bool
	Logger   *slog.Logger

	// OnComplete is called once per finished conversation.
	OnComplete func(*domain.Session)

	reader *bufio.Reader
}

// Run drives conversations until the user leaves or input ends.
func (c *Chat) Run(ctx context.Context) error {
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	if c.Render == nil {
		c.Render = tui.PlainRenderer
	}
	c.reader = bufio.NewReader(NewInterruptibleReader(c.In, ctx.Done()))

	id, err := c.startSession(ctx)
	if err != nil {
		return err
	}

	for {
		fmt.Fprintf(c.Out, "\n%s\n\n", separator)

		input, err := c.prompt()
		if err != nil {
			return c.leave(err)
		}

		input, err = sanitize.Input(input)
		if err != nil {
			fmt.Fprintf(c.Out, "\nError: %v\n", err)
			continue
		}
		if input == "" {
			fmt.Fprintln(c.Out, "(Please enter a message)")
			continue
		}
		if oneOf(input, exitWords) {
			fmt.Fprintf(c.Out, "\n%s\n", goodbye)
			return nil
		}
		if strings.EqualFold(input, "/status") {
			c.printStatus(ctx, id)
			continue
		}

		s, err := c.Sessions.Update(ctx, id, func(s *domain.Session) (*domain.Session, error) {
			res, err := c.Engine.Turn(ctx, s, input)
			if err != nil {
				return nil, err
			}
			return res.Session, nil
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return c.leave(err)
			}
			c.Logger.Error("turn failed", "session_id", id, "err", err)
			fmt.Fprintf(c.Out, "\nError: %v\n", err)
			fmt.Fprintln(c.Out, "Please try again or type 'exit' to quit.")
			continue
		}

		c.say(s.LastReply())

		if !s.ConversationComplete {
			continue
		}

		if c.OnComplete != nil {
			c.OnComplete(s)
		}
		again, err := c.finish(s)
		if err != nil {
			return c.leave(err)
		}
		c.Logger.Info("session completed", "session_id", id, "outcome", s.Outcome)
		_ = c.Sessions.Delete(ctx, id)
		if !again {
			fmt.Fprintf(c.Out, "\n%s\n", goodbye)
			return nil
		}

		if id, err = c.startSession(ctx); err != nil {
			return err
		}
	}
}

// startSession creates a session, stores it and prints the greeting.
func (c *Chat) startSession(ctx context.Context) (string, error) {
	s, err := c.Engine.Start(ctx, maitre.NewSessionID())
	if err != nil {
		return "", err
	}
	if err := c.Sessions.Create(ctx, s); err != nil {
		return "", err
	}
	c.Logger.Info("session created", "session_id", s.ID)
	c.say(s.LastReply())
	return s.ID, nil
}

// finish prints the completion summary and asks whether to start over.
func (c *Chat) finish(s *domain.Session) (bool, error) {
	fmt.Fprintf(c.Out, "\n%s\n\n", separator)
	if s.BookingRef != nil {
		fmt.Fprintln(c.Out, "Booking complete and saved!")
		fmt.Fprintf(c.Out, "Your booking reference is: %s\n", *s.BookingRef)
		fmt.Fprintln(c.Out, "\nYour current booking is confirmed.")
	} else {
		fmt.Fprintln(c.Out, "This booking could not be completed.")
	}
	fmt.Fprintln(c.Out, "Would you like to make ANOTHER booking? (type 'yes' or 'no')")

	answer, err := c.prompt()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))

	if s.BookingRef != nil && oneOf(answer, cancelWords) {
		fmt.Fprintln(c.Out, "\nNote: Your booking is already confirmed and saved.")
		fmt.Fprintln(c.Out, "To cancel or modify, please contact the restaurant directly with your reference number.")
		fmt.Fprintln(c.Out, "\nWould you like to make a different booking instead? (yes/no)")
		if answer, err = c.prompt(); err != nil {
			return false, err
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
	}
	return oneOf(answer, anotherWords), nil
}

func (c *Chat) printStatus(ctx context.Context, id string) {
	s, err := c.Sessions.Load(ctx, id)
	if err != nil {
		fmt.Fprintf(c.Out, "\nError: %v\n", err)
		return
	}
	printSystemMessage(c.Out, "Session %s", s.ID)
	fmt.Fprint(c.Out, s.Details.Status())
	if s.AwaitingConfirmation {
		fmt.Fprintln(c.Out, "Waiting for your confirmation.")
	}
}

// prompt reads one line. A final line without a newline is still returned.
func (c *Chat) prompt() (string, error) {
	fmt.Fprint(c.Out, c.label("You:", false)+" ")
	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Chat) say(text string) {
	out, err := c.Render(text)
	if err != nil {
		out = text
	}
	fmt.Fprintf(c.Out, "\n%s %s\n", c.label("Agent:", true), out)
}

func (c *Chat) label(text string, assistant bool) string {
	if !c.Styled {
		return text
	}
	return tui.Label(text, assistant)
}

// leave prints the farewell for interruptions and end of input.
func (c *Chat) leave(err error) error {
	if isInterrupted(err) {
		fmt.Fprintf(c.Out, "\n\nBooking cancelled. Goodbye!\n")
	}
	return handleExecutionError(err)
}

func oneOf(s string, words []string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, w := range words {
		if s == w {
			return true
		}
	}
	return false
}
