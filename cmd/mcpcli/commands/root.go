// Package commands implements the CLI commands for mcpcli.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcli/cmd"
	"github.com/thoreinstein/mcpcli/internal/config"
	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/logging"
	"github.com/thoreinstein/mcpcli/internal/present"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// serversFile holds the value of the --config flag.
var serversFile string

// appConfig is the loaded application configuration.
var appConfig *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

// errReported marks failures that were already written for the operator.
var errReported = errors.New("already reported")

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&serversFile, "config", "",
		"server config file (default: desktop app config)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpcli version {{.Version}}\n")

	// Everything after the server command belongs to it.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	appConfig, configLoadErr = config.Load("")
}

var rootCmd = &cobra.Command{
	Use:   "mcpcli [command [args...]]",
	Short: "Interactive client for Model Context Protocol servers",
	Long: `mcpcli connects to a Model Context Protocol server and lets you browse
and invoke its resources, resource templates, tools and prompts.

With no arguments the servers of the server config file are offered for
selection. A command and its arguments launch a local server over stdio;
--url and --sse connect to a remote server, running the OAuth
authorization flow in the browser when the server asks for it.`,
	Example: `  # Pick a server from the desktop app config
  mcpcli

  # Launch a local server
  mcpcli npx -y @modelcontextprotocol/server-everything

  # Connect to a remote server
  mcpcli --url https://example.com/mcp

  # Call a tool without prompting
  mcpcli call-tool filesystem:list_directory --args '{"path":"/tmp"}'

  See Also: mcpcli list-tools, mcpcli auth`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	RunE: runInteractive,
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("MCPCLI_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = logging.NewJSONHandler(cmd.ErrOrStderr(), level)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, logging.NewJSONHandler(f, level))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler).With("session", uuid.NewString())
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig reports config load errors, except for commands that must
// work without a valid config.
func checkConfig(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "help", "version", "path", "doctor":
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// currentConfig returns the loaded configuration, or defaults when
// loading has not happened.
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.Default()
	}
	return appConfig
}

// reportError writes err and its suggestion to w unless a command already
// reported it.
func reportError(w io.Writer, err error) {
	if err == nil || errors.Is(err, errReported) {
		return
	}
	slog.Debug("command failed", "error", fmt.Sprintf("%+v", err))

	p := present.NewWithIO(io.Discard, w)
	p.Errorf("%s", err)
	var exitErr *errors.ExitError
	if errors.As(errors.Classify(err), &exitErr) && exitErr.Suggestion != "" {
		p.Hint(exitErr.Suggestion)
	}
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	reportError(rootCmd.ErrOrStderr(), err)
	return errors.Wrap(err, "executing root command")
}
