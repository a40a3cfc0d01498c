// Package errors provides error handling conventions for the mcpcli CLI.
//
// This package defines the sentinel errors that make up the client's error
// taxonomy, an ExitError type for CLI exit code handling, and exit code
// constants following standard Unix conventions. Wrapping helpers are
// re-exported from github.com/cockroachdb/errors so callers need a single
// import.
//
// # Taxonomy
//
// Every failure surfaced to the operator is marked with one of:
//
//   - [ErrConnection]: the launch command could not start or the remote
//     endpoint is unreachable
//   - [ErrAuthorization]: the delegated authorization handshake failed
//     (see also [ErrAuthorizationDenied] and [ErrAuthorizationTimeout])
//   - [ErrHandshake]: the protocol initialize exchange failed
//   - [ErrInvocation]: a primitive call failed
//   - [ErrArgumentParse]: arguments supplied on the command line are not
//     valid JSON
//
// Use [errors.Is] to classify:
//
//	if errors.Is(err, mcperrors.ErrAuthorization) {
//	    // operator must re-run after fixing the authorization problem
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, authorization, configuration)
//   - ExitSystem (2): System-related error (connection, handshake, I/O)
//
// [ExitCode] maps any error to the code the process should exit with.
package errors
