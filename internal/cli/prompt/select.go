// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/primitive"
)

// Sentinel errors for selection.
var (
	ErrNoChoices          = errors.New("nothing to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector handles interactive selection prompts. On a terminal it uses a
// fuzzy finder; otherwise it reads a 1-based number from reader.
type Selector struct {
	reader *bufio.Reader
	writer io.Writer
	fuzzy  bool

	// find is replaced in tests.
	find func(labels []string, header string) (int, error)
}

// NewSelector creates a Selector on stdin, writing the fallback menu to
// stderr so stdout stays clean.
func NewSelector() *Selector {
	s, _ := NewTerminal()
	return s
}

// NewTerminal returns a Selector and a Prompter on stdin that share one
// line buffer, so piped answers are consumed in order.
func NewTerminal() (*Selector, *Prompter) {
	tty := term.IsTerminal(int(os.Stdin.Fd()))
	r := bufio.NewReader(os.Stdin)
	s := &Selector{
		reader: r,
		writer: os.Stderr,
		fuzzy:  tty,
		find:   fuzzyFind,
	}
	p := &Prompter{
		reader: r,
		input:  os.Stdin,
		output: os.Stderr,
		forms:  tty,
	}
	return s, p
}

// NewSelectorWithIO creates a numbered-menu Selector with custom reader and
// writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

func fuzzyFind(labels []string, header string) (int, error) {
	i, err := fuzzyfinder.Find(labels,
		func(i int) string { return labels[i] },
		fuzzyfinder.WithHeader(header),
	)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return 0, ErrSelectionCancelled
	}
	return i, err
}

// Select returns the index of the chosen label.
//
// Returns:
//   - ErrNoChoices if labels is empty
//   - ErrInvalidSelection if the number is not a valid choice
//   - ErrSelectionCancelled on abort or EOF (e.g., Ctrl+D)
func (s *Selector) Select(header string, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, ErrNoChoices
	}
	if s.fuzzy && s.find != nil {
		return s.find(labels, header)
	}

	fmt.Fprintf(s.writer, "%s:\n", header)
	for i, l := range labels {
		fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, l)
	}
	fmt.Fprintf(s.writer, "Select [1]: ")

	input, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(input) == "" {
			return 0, ErrSelectionCancelled
		}
		if !errors.Is(err, io.EOF) {
			return 0, errors.Wrap(err, "reading selection")
		}
	}

	input = strings.TrimSpace(input)

	// Default to first option if empty
	if input == "" {
		return 0, nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}

	// Validate range (1-indexed)
	if selection < 1 || selection > len(labels) {
		return 0, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(labels))
	}
	return selection - 1, nil
}

// SelectPrimitive asks for one primitive of catalog. It always prompts,
// even for a single entry, so the operator can cancel.
func (s *Selector) SelectPrimitive(catalog primitive.Catalog) (primitive.Primitive, error) {
	labels := make([]string, len(catalog))
	for i, p := range catalog {
		labels[i] = p.Label()
	}
	i, err := s.Select("Pick a primitive", labels)
	if err != nil {
		return primitive.Primitive{}, err
	}
	return catalog[i], nil
}

// SelectServer asks for one of names. A single name is selected without
// prompting.
func (s *Selector) SelectServer(names []string) (string, error) {
	if len(names) == 1 {
		return names[0], nil
	}
	i, err := s.Select("Pick a server", names)
	if err != nil {
		return "", err
	}
	return names[i], nil
}
