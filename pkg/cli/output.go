package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"mercator-hq/chatclient/pkg/transport"
)

// Printer writes status lines with colored markers.
type Printer struct {
	w     io.Writer
	green *color.Color
	red   *color.Color
	amber *color.Color
	bold  *color.Color
	faint *color.Color
}

// NewPrinter returns a Printer writing to w. When noColor is set the output
// carries no escape sequences regardless of the terminal.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	p := &Printer{
		w:     w,
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
		amber: color.New(color.FgYellow),
		bold:  color.New(color.Bold),
		faint: color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.green, p.red, p.amber, p.bold, p.faint} {
			c.DisableColor()
		}
	}
	return p
}

// Success prints a line prefixed with a check mark.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.green.Sprint("✓"), fmt.Sprintf(format, args...))
}

// Failure prints a line prefixed with a cross.
func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.red.Sprint("✗"), fmt.Sprintf(format, args...))
}

// Warning prints a line prefixed with an exclamation mark.
func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.amber.Sprint("!"), fmt.Sprintf(format, args...))
}

// Field prints a bold label followed by its value.
func (p *Printer) Field(label, value string) {
	fmt.Fprintf(p.w, "%s %s\n", p.bold.Sprint(label+":"), value)
}

// Text prints a plain line.
func (p *Printer) Text(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Dim prints a faint line, used for secondary details.
func (p *Printer) Dim(format string, args ...any) {
	fmt.Fprintln(p.w, p.faint.Sprintf(format, args...))
}

// Outcome colors an outcome label: green for ok, amber for api and decode
// failures, red otherwise.
func (p *Printer) Outcome(outcome string) string {
	switch outcome {
	case transport.OutcomeOK:
		return p.green.Sprint(outcome)
	case transport.OutcomeAPIError, transport.OutcomeDecode:
		return p.amber.Sprint(outcome)
	default:
		return p.red.Sprint(outcome)
	}
}
