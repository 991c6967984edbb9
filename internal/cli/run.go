package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/maitre/internal/config"
	"github.com/aretw0/maitre/internal/presentation/tui"
	"github.com/aretw0/maitre/pkg/domain"
	"golang.org/x/term"
)

// ChatOptions contains all the configuration for the chat command.
type ChatOptions struct {
	ConfigPath string
	Debug      bool
	Plain      bool
	NoBanner   bool
}

// Execute runs an interactive booking conversation on the terminal.
func Execute(opts ChatOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := CreateLogger(cfg.LogLevel, opts.Debug)

	sc := NewSignalContext(context.Background())
	defer sc.Cancel()

	svc, err := NewServices(sc, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	styled := !opts.Plain && term.IsTerminal(int(os.Stdout.Fd()))

	if !opts.NoBanner {
		if styled {
			tui.PrintBanner(os.Stdout)
		} else {
			fmt.Printf("\n%s\nRESTAURANT BOOKING AGENT\n%s\n\n", separator, separator)
		}
	}

	chat := &Chat{
		Engine:     svc.Engine,
		Sessions:   svc.Sessions,
		In:         os.Stdin,
		Out:        os.Stdout,
		Styled:     styled,
		Logger:     logger,
		OnComplete: func(s *domain.Session) { svc.Metrics.RecordOutcome(s.Outcome) },
	}
	if styled {
		chat.Render = tui.NewRenderer()
	}
	return chat.Run(sc)
}
