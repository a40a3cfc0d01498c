package config

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates the version field is not 1.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidBackend indicates an unrecognized secret store backend.
	ErrInvalidBackend = errors.New("invalid secrets backend")

	// ErrInvalidPort indicates a callback port outside 0..65535.
	ErrInvalidPort = errors.New("invalid callback port")

	// ErrInvalidCallbackPath indicates a callback path that is not absolute.
	ErrInvalidCallbackPath = errors.New("callback path must start with /")

	// ErrNegativeTimeout indicates a negative duration.
	ErrNegativeTimeout = errors.New("timeout must not be negative")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	switch cfg.Secrets.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		errs = append(errs, &FieldError{Field: "secrets.backend", Value: cfg.Secrets.Backend, Err: ErrInvalidBackend})
	}

	if cfg.OAuth.CallbackPort < 0 || cfg.OAuth.CallbackPort > 65535 {
		errs = append(errs, errors.Wrapf(ErrInvalidPort, "%d", cfg.OAuth.CallbackPort))
	}

	if !strings.HasPrefix(cfg.OAuth.CallbackPath, "/") {
		errs = append(errs, &FieldError{Field: "oauth.callback_path", Value: cfg.OAuth.CallbackPath, Err: ErrInvalidCallbackPath})
	}

	if cfg.OAuth.CallbackTimeout < 0 {
		errs = append(errs, &FieldError{Field: "oauth.callback_timeout", Value: cfg.OAuth.CallbackTimeout.String(), Err: ErrNegativeTimeout})
	}
	if cfg.Session.RPCTimeout < 0 {
		errs = append(errs, &FieldError{Field: "session.rpc_timeout", Value: cfg.Session.RPCTimeout.String(), Err: ErrNegativeTimeout})
	}

	for _, f := range []struct{ name, path string }{
		{"servers_file", cfg.ServersFile},
		{"env_file", cfg.EnvFile},
		{"secrets.path", cfg.Secrets.Path},
	} {
		if err := validatePath(f.path); err != nil {
			errs = append(errs, &FieldError{Field: f.name, Value: f.path, Err: err})
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
