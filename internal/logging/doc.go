// Package logging provides structured logging for the mcpcli CLI using slog.
//
// The package supports both text and JSON output formats, verbosity-based
// log levels, and helpers for testing. The text [Handler] masks credential
// material (bearer tokens, authorization codes, PKCE verifiers, client
// secrets) so that -vv output can be shared safely.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbosity),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Info("connecting", "server", name)
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// # Quiet Mode
//
// Use [NewDiscard] when log output should be suppressed entirely:
//
//	logger := logging.NewDiscard()
package logging
