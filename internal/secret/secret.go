// Package secret persists authorization state (client registrations, tokens,
// PKCE verifiers) under namespaced string keys.
//
// Keys follow "oauth.<serverID>.<field>"; values are opaque strings,
// typically JSON documents. Three backends are provided: a private JSON file,
// a SQLite database and an in-memory map, selected with secrets.backend=memory,
// that keeps nothing past the process.
package secret

import (
	"context"
	"path/filepath"

	"github.com/thoreinstein/mcpcli/internal/config"
	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/paths"
)

// Store is a key/value store for secrets.
type Store interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns the stored keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Close releases the backend.
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Secrets.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), nil
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SecretsPath())
	case config.BackendFile, "":
		if err := paths.EnsureDir(filepath.Dir(cfg.SecretsPath()), 0); err != nil {
			return nil, errors.Wrap(err, "creating secrets directory")
		}
		return NewFileStore(cfg.SecretsPath()), nil
	default:
		return nil, errors.Wrapf(config.ErrInvalidBackend, "%s", cfg.Secrets.Backend)
	}
}

// DeletePrefix removes every key starting with prefix and returns how many
// were removed.
func DeletePrefix(ctx context.Context, s Store, prefix string) (int, error) {
	keys, err := s.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		if err := s.Delete(ctx, k); err != nil {
			return 0, errors.Wrapf(err, "deleting %s", k)
		}
	}
	return len(keys), nil
}
