package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for the client's failure taxonomy.
var (
	// ErrConnection indicates the endpoint is unreachable or the server process failed to start.
	ErrConnection = crdb.New("connection failed")

	// ErrAuthorization indicates the delegated authorization handshake failed.
	ErrAuthorization = crdb.New("authorization failed")

	// ErrAuthorizationDenied indicates the authorization server reported an error
	// or the callback did not carry a usable code.
	ErrAuthorizationDenied = crdb.New("authorization denied")

	// ErrAuthorizationTimeout indicates no callback arrived within the configured wait.
	ErrAuthorizationTimeout = crdb.New("authorization timed out")

	// ErrHandshake indicates the protocol initialize exchange failed.
	ErrHandshake = crdb.New("protocol handshake failed")

	// ErrInvocation indicates a primitive call failed.
	ErrInvocation = crdb.New("invocation failed")

	// ErrArgumentParse indicates malformed JSON arguments.
	ErrArgumentParse = crdb.New("invalid arguments")

	// ErrServerNotFound indicates the named server is not in the server config.
	ErrServerNotFound = crdb.New("server not found")

	// ErrNoServers indicates the server config defines no servers.
	ErrNoServers = crdb.New("no servers configured")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")
)

// Wrapping helpers re-exported from cockroachdb/errors.
var (
	New    = crdb.New
	Newf   = crdb.Newf
	Wrap   = crdb.Wrap
	Wrapf  = crdb.Wrapf
	Mark   = crdb.Mark
	Is     = crdb.Is
	As     = crdb.As
	IsAny  = crdb.IsAny
	Unwrap = crdb.UnwrapOnce
)

// Markf wraps err with a message and marks it with the sentinel so that
// errors.Is(result, sentinel) holds. A nil err yields nil.
func Markf(err, sentinel error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return crdb.Mark(crdb.Wrapf(err, format, args...), sentinel)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Check ~/.config/mcpcli/config.yaml or pass --config",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Classify wraps err in an ExitError carrying the exit code and suggestion
// implied by its taxonomy marker. Errors that are already ExitErrors are
// returned unchanged; nil yields nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return err
	}
	switch {
	case crdb.Is(err, ErrAuthorization):
		return NewUserError(err, "Re-run to restart authorization, or run: mcpcli auth purge")
	case crdb.Is(err, ErrArgumentParse):
		return NewUserError(err, `Pass --args as a JSON object, e.g. --args '{"key":"value"}'`)
	case crdb.Is(err, ErrServerNotFound), crdb.Is(err, ErrNoServers), crdb.Is(err, ErrInvalidConfig):
		return NewConfigError(err)
	case crdb.Is(err, ErrConnection):
		return NewSystemError(err, "Check that the server command exists or the URL is reachable")
	case crdb.Is(err, ErrHandshake):
		return NewSystemError(err, "The server rejected initialization; run with -vv for details")
	case crdb.Is(err, ErrInvocation):
		return NewExitError(err, ExitUser)
	default:
		return NewExitError(err, ExitUser)
	}
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if crdb.As(Classify(err), &exitErr) {
		return exitErr.Code
	}
	return ExitUser
}
