package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the maitre banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Warm gradient, wine to amber
	lines := []struct {
		text, color string
	}{
		{"                 _ _            ", "#9f1239"},
		{"  _ __ ___   __ _(_) |_ _ __ ___ ", "#be123c"},
		{" | '_ ` _ \\ / _` | | __| '__/ _ \\", "#e11d48"},
		{" | | | | | | (_| | | |_| | |  __/", "#f97316"},
		{" |_| |_| |_|\\__,_|_|\\__|_|  \\___|", "#f59e0b"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Label styles a speaker prefix such as "Assistant:" or "You:".
func Label(text string, assistant bool) string {
	p := termenv.ColorProfile()
	color := "#38bdf8"
	if assistant {
		color = "#f59e0b"
	}
	return termenv.String(text).Bold().Foreground(p.Color(color)).String()
}
