package oauth

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/pkg/browser"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/secret"
)

// ClientURI is advertised during dynamic client registration.
const ClientURI = "https://github.com/thoreinstein/mcpcli"

// Handler is the part of *transport.OAuthHandler the flow drives.
type Handler interface {
	RegisterClient(ctx context.Context, clientName string) error
	GetAuthorizationURL(ctx context.Context, state, codeChallenge string) (string, error)
	ProcessAuthorizationResponse(ctx context.Context, code, state, codeVerifier string) error
	GetClientID() string
	GetClientSecret() string
}

var _ Handler = (*transport.OAuthHandler)(nil)

// Announcer shows the authorization URL to the operator.
type Announcer func(authURL string)

// OpenBrowser opens url in the default browser. Browser helper output goes
// to stderr so stdout stays clean for JSON results.
func OpenBrowser(u string) error {
	browser.Stdout = os.Stderr
	return browser.OpenURL(u)
}

// Flow performs the authorization handshake. A Flow is used for at most one
// attempt at a time; concurrent Authorize calls are serialized.
type Flow struct {
	Store      secret.Store
	ClientName string
	Scopes     []string

	// Port is the loopback callback port; 0 reuses the port of a stored
	// registration or lets the kernel choose.
	Port    int
	Path    string
	Timeout time.Duration

	// Browser opens the authorization URL; failures are logged, not fatal.
	Browser  func(string) error
	Announce Announcer
	Logger   *slog.Logger

	mu sync.Mutex
	// redirects caches the redirect URI per server so that transport
	// config and listener agree within one run.
	redirects map[string]string
}

func (f *Flow) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

func (f *Flow) path() string {
	if f.Path != "" {
		return f.Path
	}
	return CallbackPath
}

// RedirectURI returns the callback URI for serverURL, choosing a port on
// first use: the configured port, else the port of a stored registration,
// else a kernel-assigned one.
func (f *Flow) RedirectURI(ctx context.Context, serverURL string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirectURILocked(ctx, serverURL)
}

func (f *Flow) redirectURILocked(ctx context.Context, serverURL string) (string, error) {
	if u, ok := f.redirects[serverURL]; ok {
		return u, nil
	}

	port := f.Port
	if port == 0 {
		info, err := LoadClientInformation(ctx, f.Store, ServerID(serverURL))
		if err != nil {
			return "", err
		}
		if info != nil && info.RedirectURI != "" {
			if p, err := portOf(info.RedirectURI); err == nil {
				port = p
			}
		}
	}
	if port == 0 {
		p, err := FreePort()
		if err != nil {
			return "", err
		}
		port = p
	}

	u := "http://127.0.0.1:" + strconv.Itoa(port) + f.path()
	if f.redirects == nil {
		f.redirects = make(map[string]string)
	}
	f.redirects[serverURL] = u
	return u, nil
}

func portOf(rawURL string) (int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(u.Port())
}

// TransportConfig returns the OAuth configuration for a transport to
// serverURL, seeded with any stored client registration.
func (f *Flow) TransportConfig(ctx context.Context, serverURL string) (transport.OAuthConfig, error) {
	redirect, err := f.RedirectURI(ctx, serverURL)
	if err != nil {
		return transport.OAuthConfig{}, err
	}
	id := ServerID(serverURL)
	cfg := transport.OAuthConfig{
		ClientURI:   ClientURI,
		RedirectURI: redirect,
		Scopes:      f.Scopes,
		TokenStore:  NewTokenStore(f.Store, id),
		PKCEEnabled: true,
	}
	info, err := LoadClientInformation(ctx, f.Store, id)
	if err != nil {
		return transport.OAuthConfig{}, err
	}
	if info != nil {
		cfg.ClientID = info.ClientID
		cfg.ClientSecret = info.ClientSecret
	}
	return cfg, nil
}

// Authorize runs one handshake against serverURL through h and returns the
// authorization code once the transport has exchanged it for tokens. Any
// failure is marked with errors.ErrAuthorization; there is no retry.
func (f *Flow) Authorize(ctx context.Context, serverURL string, h Handler) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	code, err := f.authorize(ctx, serverURL, h)
	if err != nil {
		return "", errors.Mark(err, errors.ErrAuthorization)
	}
	return code, nil
}

func (f *Flow) authorize(ctx context.Context, serverURL string, h Handler) (string, error) {
	log := f.logger()
	id := ServerID(serverURL)

	redirect, err := f.redirectURILocked(ctx, serverURL)
	if err != nil {
		return "", err
	}
	port, err := portOf(redirect)
	if err != nil {
		return "", errors.Wrapf(err, "parsing redirect URI %s", redirect)
	}

	if err := f.Store.Set(ctx, Key(id, FieldServerURL), serverURL); err != nil {
		return "", err
	}

	if h.GetClientID() == "" {
		log.Debug("registering client", "server", serverURL)
		if err := h.RegisterClient(ctx, f.ClientName); err != nil {
			return "", errors.Wrap(err, "registering client")
		}
		info := ClientInformation{
			ClientID:     h.GetClientID(),
			ClientSecret: h.GetClientSecret(),
			RedirectURI:  redirect,
		}
		if err := SaveClientInformation(ctx, f.Store, id, info); err != nil {
			return "", err
		}
	}

	verifier, err := client.GenerateCodeVerifier()
	if err != nil {
		return "", errors.Wrap(err, "generating code verifier")
	}
	challenge := client.GenerateCodeChallenge(verifier)
	state, err := client.GenerateState()
	if err != nil {
		return "", errors.Wrap(err, "generating state")
	}
	if err := f.Store.Set(ctx, Key(id, FieldCodeVerifier), verifier); err != nil {
		return "", err
	}

	listener, err := ListenCallback(port, f.path(), state)
	if err != nil {
		return "", err
	}
	defer listener.Close()

	authURL, err := h.GetAuthorizationURL(ctx, state, challenge)
	if err != nil {
		return "", errors.Wrap(err, "building authorization URL")
	}

	if f.Announce != nil {
		f.Announce(authURL)
	}
	if f.Browser != nil {
		if err := f.Browser(authURL); err != nil {
			log.Warn("could not open browser", "error", err)
		}
	}

	log.Info("waiting for authorization callback", "listen", listener.URL())
	cb, err := listener.Wait(ctx, f.Timeout)
	listener.Close()
	if err != nil {
		return "", err
	}

	if err := h.ProcessAuthorizationResponse(ctx, cb.Code, cb.State, verifier); err != nil {
		return "", errors.Wrap(err, "exchanging authorization code")
	}
	log.Info("authorization complete", "server", serverURL)
	return cb.Code, nil
}
