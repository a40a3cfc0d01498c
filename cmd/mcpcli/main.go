// Package main is the entry point for the mcpcli CLI.
package main

import (
	"os"

	"github.com/thoreinstein/mcpcli/cmd/mcpcli/commands"
	"github.com/thoreinstein/mcpcli/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(errors.ExitCode(err))
	}
}
