// Package present renders progress, results and errors on the terminal.
//
// Results go to stdout as JSON; everything else (spinners, status lines,
// authorization URLs) goes to stderr so stdout stays machine-readable.
package present

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/logging"
)

// Presenter writes to a result stream and a status stream.
type Presenter struct {
	out    io.Writer
	status io.Writer

	animate bool

	success lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
	accent  lipgloss.Style
}

// New returns a Presenter on stdout and stderr.
func New() *Presenter {
	return NewWithIO(os.Stdout, os.Stderr)
}

// NewWithIO returns a Presenter on the given streams. Spinners animate only
// when status is a terminal.
func NewWithIO(out, status io.Writer) *Presenter {
	r := lipgloss.NewRenderer(status)
	return &Presenter{
		out:     out,
		status:  status,
		animate: logging.IsTTY(status),
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		dim:     r.NewStyle().Faint(true),
		accent:  r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
	}
}

// Print writes v to the result stream as indented JSON.
func (p *Presenter) Print(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding result")
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}

// Errorf writes an error line to the status stream.
func (p *Presenter) Errorf(format string, args ...any) {
	fmt.Fprintln(p.status, p.failure.Render("✖ "+fmt.Sprintf(format, args...)))
}

// Infof writes a status line.
func (p *Presenter) Infof(format string, args ...any) {
	fmt.Fprintln(p.status, fmt.Sprintf(format, args...))
}

// Hint writes a dimmed line, used for suggestions.
func (p *Presenter) Hint(msg string) {
	fmt.Fprintln(p.status, p.dim.Render(msg))
}

// AuthorizationURL tells the operator where to authorize. It is always
// printed, whether or not a browser could be opened.
func (p *Presenter) AuthorizationURL(u string) {
	fmt.Fprintln(p.status, "Please authorize this client by visiting:")
	fmt.Fprintln(p.status, p.accent.Render(u))
}
