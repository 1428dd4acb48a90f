package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Progress reports a long-running step. It prints nothing in quiet mode and
// only the final message when animation is off.
type Progress struct {
	s     *spinner.Spinner
	w     io.Writer
	quiet bool
}

// NewProgress creates a progress reporter writing to w with message as the
// spinner suffix.
func NewProgress(w io.Writer, message string, quiet, animate bool) *Progress {
	if quiet {
		return &Progress{quiet: true}
	}
	if !animate {
		return &Progress{w: w}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &Progress{s: s, w: w}
}

// Start starts the spinner.
func (p *Progress) Start() {
	if p.s != nil {
		p.s.Start()
	}
}

// Succeed stops the spinner and leaves a green message.
func (p *Progress) Succeed(msg string) {
	p.stop(text.FgGreen.Sprint(msg))
}

// Fail stops the spinner and leaves a red message.
func (p *Progress) Fail(msg string) {
	p.stop(text.FgRed.Sprint(msg))
}

// Stop stops the spinner without a final message.
func (p *Progress) Stop() {
	p.stop("")
}

func (p *Progress) stop(final string) {
	if p.quiet {
		return
	}
	if p.s == nil {
		if final != "" {
			fmt.Fprintln(p.w, final)
		}
		return
	}
	if final != "" {
		p.s.FinalMSG = final + "\n"
	}
	p.s.Stop()
}
