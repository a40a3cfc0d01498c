package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/client/transport"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/secret"
)

// KeyPrefix namespaces every key written by this package.
const KeyPrefix = "oauth."

// Record fields.
const (
	FieldClientInformation = "clientInformation"
	FieldTokens            = "tokens"
	FieldCodeVerifier      = "codeVerifier"
	FieldServerURL         = "serverUrl"
)

// ServerID returns the stable identifier of a server URL: the hex SHA-256
// of the URL string.
func ServerID(serverURL string) string {
	sum := sha256.Sum256([]byte(serverURL))
	return hex.EncodeToString(sum[:])
}

// Key returns the secret key of field for serverID.
func Key(serverID, field string) string {
	return KeyPrefix + serverID + "." + field
}

// ClientInformation is the result of dynamic client registration.
type ClientInformation struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	// RedirectURI is the callback the client was registered with; reusing
	// it keeps the registration valid across runs.
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// Record is everything persisted for one server.
type Record struct {
	ServerID          string
	ServerURL         string
	ClientInformation *ClientInformation
	Tokens            *transport.Token
	HasCodeVerifier   bool
}

func getJSON(ctx context.Context, s secret.Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, errors.Wrapf(err, "decoding %s", key)
	}
	return true, nil
}

func setJSON(ctx context.Context, s secret.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return s.Set(ctx, key, string(data))
}

// LoadClientInformation returns the stored registration for serverID, or nil.
func LoadClientInformation(ctx context.Context, s secret.Store, serverID string) (*ClientInformation, error) {
	var info ClientInformation
	ok, err := getJSON(ctx, s, Key(serverID, FieldClientInformation), &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

// SaveClientInformation stores the registration for serverID.
func SaveClientInformation(ctx context.Context, s secret.Store, serverID string, info ClientInformation) error {
	return setJSON(ctx, s, Key(serverID, FieldClientInformation), info)
}

// TokenStore adapts a secret.Store to the transport's TokenStore for one server.
type TokenStore struct {
	store    secret.Store
	serverID string
}

var _ transport.TokenStore = (*TokenStore)(nil)

// NewTokenStore returns the token store of serverID.
func NewTokenStore(s secret.Store, serverID string) *TokenStore {
	return &TokenStore{store: s, serverID: serverID}
}

// GetToken returns the stored token or transport.ErrNoToken.
func (t *TokenStore) GetToken(ctx context.Context) (*transport.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tok transport.Token
	ok, err := getJSON(ctx, t.store, Key(t.serverID, FieldTokens), &tok)
	if err != nil {
		return nil, err
	}
	if !ok || tok.AccessToken == "" {
		return nil, transport.ErrNoToken
	}
	return &tok, nil
}

// SaveToken persists token.
func (t *TokenStore) SaveToken(ctx context.Context, token *transport.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return setJSON(ctx, t.store, Key(t.serverID, FieldTokens), token)
}

// ListRecords returns every stored record, ordered by server ID.
func ListRecords(ctx context.Context, s secret.Store) ([]Record, error) {
	keys, err := s.Keys(ctx, KeyPrefix)
	if err != nil {
		return nil, err
	}

	var ids []string
	seen := make(map[string]bool)
	for _, k := range keys {
		rest := strings.TrimPrefix(k, KeyPrefix)
		id, _, ok := strings.Cut(rest, ".")
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	slices.Sort(ids)

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec := Record{ServerID: id}
		rec.ServerURL, _, err = s.Get(ctx, Key(id, FieldServerURL))
		if err != nil {
			return nil, err
		}
		if rec.ClientInformation, err = LoadClientInformation(ctx, s, id); err != nil {
			return nil, err
		}
		tok, err := NewTokenStore(s, id).GetToken(ctx)
		switch {
		case err == nil:
			rec.Tokens = tok
		case !errors.Is(err, transport.ErrNoToken):
			return nil, err
		}
		if _, rec.HasCodeVerifier, err = s.Get(ctx, Key(id, FieldCodeVerifier)); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Purge deletes stored records. An empty serverURL purges every server.
// It returns the number of keys removed.
func Purge(ctx context.Context, s secret.Store, serverURL string) (int, error) {
	prefix := KeyPrefix
	if serverURL != "" {
		prefix = KeyPrefix + ServerID(serverURL) + "."
	}
	n, err := secret.DeletePrefix(ctx, s, prefix)
	return n, errors.Wrap(err, "purging authorization data")
}
