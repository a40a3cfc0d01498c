package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/thoreinstein/mcpcli/internal/elicit"
	"github.com/thoreinstein/mcpcli/internal/errors"
)

// ErrAborted is returned when the operator leaves a prompt without
// answering.
var ErrAborted = errors.New("prompt aborted")

// Prompter asks single questions. On a terminal it renders huh forms;
// otherwise it reads plain lines, which keeps piped sessions scriptable.
type Prompter struct {
	reader *bufio.Reader
	input  io.Reader
	output io.Writer
	forms  bool
}

var _ elicit.Prompter = (*Prompter)(nil)

// NewPrompter creates a Prompter on stdin, writing to stderr.
func NewPrompter() *Prompter {
	_, p := NewTerminal()
	return p
}

// NewPrompterWithIO creates a line-based Prompter for testing.
func NewPrompterWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), input: r, output: w}
}

func (p *Prompter) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(p.input).
		WithOutput(p.output).
		WithShowHelp(false)

	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// readLine prints label and returns the trimmed answer.
func (p *Prompter) readLine(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.output, label)
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", errors.Wrap(err, "reading answer")
	}
	return strings.TrimSpace(line), nil
}

func label(f elicit.Field, hint string) string {
	var b strings.Builder
	if f.Description != "" {
		b.WriteString(f.Description)
		b.WriteString("\n")
	}
	b.WriteString(f.Title)
	if hint != "" {
		b.WriteString(" ")
		b.WriteString(hint)
	}
	b.WriteString(": ")
	return b.String()
}

// Text implements elicit.Prompter.
func (p *Prompter) Text(ctx context.Context, f elicit.Field) (string, error) {
	if !p.forms {
		hint := ""
		if f.Default != "" {
			hint = "[" + f.Default + "]"
		}
		v, err := p.readLine(ctx, label(f, hint))
		if err != nil {
			return "", err
		}
		if v == "" {
			v = f.Default
		}
		return v, nil
	}

	v := f.Default
	in := huh.NewInput().
		Title(f.Title).
		Description(f.Description).
		Value(&v)
	if err := p.run(ctx, in); err != nil {
		return "", err
	}
	return v, nil
}

// Number implements elicit.Prompter. Input is validated against the
// field's constraints before it is accepted.
func (p *Prompter) Number(ctx context.Context, f elicit.Field) (string, error) {
	if !p.forms {
		for {
			v, err := p.Text(ctx, f)
			if err != nil {
				return "", err
			}
			if err := elicit.ValidateNumber(f, v); err != nil {
				fmt.Fprintf(p.output, "%v\n", err)
				continue
			}
			return v, nil
		}
	}

	v := f.Default
	in := huh.NewInput().
		Title(f.Title).
		Description(f.Description).
		Value(&v).
		Validate(func(s string) error { return elicit.ValidateNumber(f, s) })
	if err := p.run(ctx, in); err != nil {
		return "", err
	}
	return v, nil
}

// Confirm implements elicit.Prompter.
func (p *Prompter) Confirm(ctx context.Context, f elicit.Field, initial bool) (bool, error) {
	yes, no := f.Affirmative, f.Negative
	if yes == "" {
		yes = "Yes"
	}
	if no == "" {
		no = "No"
	}

	if !p.forms {
		hint := "(" + yes + "/" + no + ") [" + no + "]"
		if initial {
			hint = "(" + yes + "/" + no + ") [" + yes + "]"
		}
		for {
			v, err := p.readLine(ctx, label(f, hint))
			if err != nil {
				return false, err
			}
			switch strings.ToLower(v) {
			case "":
				return initial, nil
			case "y", "yes", strings.ToLower(yes):
				return true, nil
			case "n", "no", strings.ToLower(no):
				return false, nil
			}
			fmt.Fprintf(p.output, "answer %s or %s\n", yes, no)
		}
	}

	v := initial
	c := huh.NewConfirm().
		Title(f.Title).
		Description(f.Description).
		Affirmative(yes).
		Negative(no).
		Value(&v)
	if err := p.run(ctx, c); err != nil {
		return false, err
	}
	return v, nil
}
