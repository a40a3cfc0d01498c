// Package editor launches the operator's text editor on a file.
package editor

import (
	"context"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// ErrNoEditor is returned when no editor could be determined.
var ErrNoEditor = errors.New("no editor found")

// Open runs the operator's editor on path, attached to the terminal, and
// waits for it to exit.
func Open(ctx context.Context, path string) error {
	cmd, err := Command(ctx, path)
	if err != nil {
		return err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", cmd.Path)
	}
	return nil
}

// Command returns the editor invocation for path. $EDITOR and $VISUAL may
// carry arguments, e.g. "code --wait".
func Command(ctx context.Context, path string) (*exec.Cmd, error) {
	argv := detect(os.Getenv, exec.LookPath)
	if len(argv) == 0 {
		return nil, ErrNoEditor
	}
	args := append(slices.Clone(argv[1:]), path)
	return exec.CommandContext(ctx, argv[0], args...), nil
}

// detect resolves the editor: $EDITOR, then $VISUAL, then nano, then vi.
func detect(getenv func(string) string, lookPath func(string) (string, error)) []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	for _, bin := range []string{"nano", "vi"} {
		if _, err := lookPath(bin); err == nil {
			return []string{bin}
		}
	}
	return nil
}
