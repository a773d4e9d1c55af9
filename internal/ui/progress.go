package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/desertthunder/musicpal/internal/tasks"
)

// ProgressBar draws [tasks.ProgressUpdate]s as a single redrawn terminal line.
type ProgressBar struct {
	w   io.Writer
	bar progress.Model
}

// NewProgressBar creates a bar of the given character width writing to w.
func NewProgressBar(w io.Writer, width int) *ProgressBar {
	if width <= 0 {
		width = 40
	}
	return &ProgressBar{
		w:   w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(width)),
	}
}

// Line renders update without writing it.
func (p *ProgressBar) Line(u tasks.ProgressUpdate) string {
	line := fmt.Sprintf("%s %d/%d", p.bar.ViewAs(fraction(u)), u.Step, u.Total)
	if u.Message != "" {
		line += " " + u.Message
	}
	return line
}

// Render redraws the line for u, ending it with a newline once the phase is done.
func (p *ProgressBar) Render(u tasks.ProgressUpdate) {
	fmt.Fprintf(p.w, "\r\033[K%s", p.Line(u))
	if u.Done() {
		fmt.Fprintln(p.w)
	}
}

// Consume renders updates until the channel is closed and returns how many were drawn.
func (p *ProgressBar) Consume(updates <-chan tasks.ProgressUpdate) int {
	n := 0
	for u := range updates {
		p.Render(u)
		n++
	}
	return n
}

func fraction(u tasks.ProgressUpdate) float64 {
	if u.Total <= 0 {
		return 0
	}
	f := float64(u.Step) / float64(u.Total)
	return min(max(f, 0), 1)
}
