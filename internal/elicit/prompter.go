package elicit

import (
	"context"
	"strconv"
	"strings"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// Field describes one prompt shown to the operator.
type Field struct {
	// Title is the prompt label, prefixed with "* " when the value is
	// required.
	Title       string
	Description string

	// Default is the textual initial value.
	Default string

	// Number constraints.
	Integer bool
	Min     *float64
	Max     *float64

	// Confirm choices; empty means Yes/No.
	Affirmative string
	Negative    string
}

// Prompter asks the operator for single values.
type Prompter interface {
	// Text returns the entered string, possibly empty.
	Text(ctx context.Context, f Field) (string, error)
	// Number returns the entered number as text, possibly empty. The text
	// has passed ValidateNumber.
	Number(ctx context.Context, f Field) (string, error)
	// Confirm returns the operator's choice.
	Confirm(ctx context.Context, f Field, initial bool) (bool, error)
}

// ErrNotANumber is returned by ValidateNumber for unparsable input.
var ErrNotANumber = errors.New("not a number")

// ValidateNumber checks s against the constraints of f. Empty input is
// accepted so the value can be omitted.
func ValidateNumber(f Field, s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := parseNumber(s, f.Integer)
	if err != nil {
		return err
	}
	v := toFloat(n)
	if f.Min != nil && v < *f.Min {
		return errors.Newf("must be at least %s", formatFloat(*f.Min))
	}
	if f.Max != nil && v > *f.Max {
		return errors.Newf("must be at most %s", formatFloat(*f.Max))
	}
	return nil
}

// parseNumber returns an int64 for integer fields and a float64 otherwise.
func parseNumber(s string, integer bool) (any, error) {
	if integer {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrNotANumber, "%q is not an integer", s)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrNotANumber, "%q", s)
	}
	return f, nil
}

func toFloat(n any) float64 {
	switch v := n.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
