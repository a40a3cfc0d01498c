package secret

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcli/internal/config"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "db", "secrets.db"))
	require.NoError(t, err)

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(dir, "secrets.json")),
		"sqlite": sqlite,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			_, ok, err := s.Get(ctx, "oauth.abc.tokens")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, "oauth.abc.tokens", `{"access_token":"t1"}`))
			require.NoError(t, s.Set(ctx, "oauth.abc.codeVerifier", "v1"))
			require.NoError(t, s.Set(ctx, "oauth.def.tokens", `{}`))
			require.NoError(t, s.Set(ctx, "oauth_x.clientInformation", "not matched by prefix"))

			v, ok, err := s.Get(ctx, "oauth.abc.tokens")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"access_token":"t1"}`, v)

			require.NoError(t, s.Set(ctx, "oauth.abc.tokens", `{"access_token":"t2"}`))
			v, _, err = s.Get(ctx, "oauth.abc.tokens")
			require.NoError(t, err)
			assert.JSONEq(t, `{"access_token":"t2"}`, v)

			keys, err := s.Keys(ctx, "oauth.abc.")
			require.NoError(t, err)
			assert.Equal(t, []string{"oauth.abc.codeVerifier", "oauth.abc.tokens"}, keys)

			keys, err = s.Keys(ctx, "oauth.")
			require.NoError(t, err)
			assert.Len(t, keys, 3)

			n, err := DeletePrefix(ctx, s, "oauth.abc.")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			_, ok, err = s.Get(ctx, "oauth.abc.codeVerifier")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Delete(ctx, "never-set"))
		})
	}
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")
	s := NewFileStore(path)
	require.NoError(t, s.Set(t.Context(), "k", "v"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileStore(path).Get(t.Context(), "k")
	assert.Error(t, err)
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(t.Context(), "oauth.a_b.tokens", "x"))
	require.NoError(t, s.Set(t.Context(), "oauth.AXb.tokens", "y"))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(t.Context(), "oauth.a_b.tokens")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	// "_" is literal in prefixes
	keys, err := s.Keys(t.Context(), "oauth.a_")
	require.NoError(t, err)
	assert.Equal(t, []string{"oauth.a_b.tokens"}, keys)
	keys, err = s.Keys(t.Context(), "oauth.ax")
	require.NoError(t, err)
	assert.Empty(t, keys, "prefix match must be case-sensitive")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		want    any
	}{
		{config.BackendMemory, &MemoryStore{}},
		{config.BackendFile, &FileStore{}},
		{config.BackendSQLite, &SQLiteStore{}},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Secrets.Backend = tt.backend
			cfg.Secrets.Path = filepath.Join(dir, tt.backend, "store")

			s, err := Open(cfg)
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.want, s)
		})
	}

	cfg := config.Default()
	cfg.Secrets.Backend = "keychain"
	_, err := Open(cfg)
	assert.Error(t, err)
}
