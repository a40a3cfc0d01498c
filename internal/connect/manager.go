package connect

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/oauth"
	"github.com/thoreinstein/mcpcli/internal/server"
)

// Authorizer supplies transport OAuth settings and runs the interactive
// authorization handshake. *oauth.Flow implements it.
type Authorizer interface {
	TransportConfig(ctx context.Context, serverURL string) (transport.OAuthConfig, error)
	Authorize(ctx context.Context, serverURL string, h oauth.Handler) (string, error)
}

var _ Authorizer = (*oauth.Flow)(nil)

// Manager opens connections.
type Manager struct {
	// ClientName and ClientVersion identify this client at handshake.
	ClientName    string
	ClientVersion string

	// Factory builds transports; nil means NewClient.
	Factory Factory
	// Auth handles remote authorization; nil disables OAuth.
	Auth   Authorizer
	Logger *slog.Logger

	// OnAuthorize is invoked before the authorization flow starts.
	OnAuthorize func(serverURL string)

	authMu sync.Mutex
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func (m *Manager) factory() Factory {
	if m.Factory != nil {
		return m.Factory
	}
	return NewClient
}

// Connect starts and initializes a session with d. ctx bounds the lifetime
// of a launched server process, so it should outlive the session.
func (m *Manager) Connect(ctx context.Context, d server.Descriptor) (Connection, error) {
	if err := d.Validate(); err != nil {
		return nil, errors.Markf(err, errors.ErrConnection, "server %s", d.Name)
	}
	if d.IsLaunch() || m.Auth == nil {
		conn, err := m.attempt(ctx, d, nil)
		if err != nil && isAuthChallenge(err) {
			return nil, errors.Markf(err, errors.ErrAuthorization, "server %s requires authorization", d.Address())
		}
		return conn, err
	}

	cfg, err := m.Auth.TransportConfig(ctx, d.URL)
	if err != nil {
		return nil, errors.Markf(err, errors.ErrAuthorization, "preparing authorization for %s", d.URL)
	}

	conn, err := m.attempt(ctx, d, &cfg)
	if err == nil || !isAuthChallenge(err) {
		return conn, err
	}
	m.logger().Debug("authorization challenge", "error", err)

	if err := m.authorize(ctx, d, cfg, err); err != nil {
		return nil, err
	}

	// Registration may have produced a client id; rebuild the config so the
	// new transport presents it.
	cfg, err = m.Auth.TransportConfig(ctx, d.URL)
	if err != nil {
		return nil, errors.Markf(err, errors.ErrAuthorization, "preparing authorization for %s", d.URL)
	}
	conn, err = m.attempt(ctx, d, &cfg)
	if err != nil && isAuthChallenge(err) {
		return nil, errors.Markf(err, errors.ErrAuthorization, "server %s still requires authorization", d.URL)
	}
	return conn, err
}

func (m *Manager) authorize(ctx context.Context, d server.Descriptor, cfg transport.OAuthConfig, challenge error) error {
	m.authMu.Lock()
	defer m.authMu.Unlock()

	m.logger().Info("server requires authorization", "server", d.Name, "url", d.URL)
	if m.OnAuthorize != nil {
		m.OnAuthorize(d.URL)
	}
	h := challengeHandler(challenge, d.URL, cfg)
	if _, err := m.Auth.Authorize(ctx, d.URL, h); err != nil {
		return errors.Mark(err, errors.ErrAuthorization)
	}
	return nil
}

// attempt runs one start + initialize cycle on a fresh client. The client
// is closed on failure. Authorization challenges are returned unwrapped.
func (m *Manager) attempt(ctx context.Context, d server.Descriptor, cfg *transport.OAuthConfig) (Connection, error) {
	log := m.logger().With("server", d.Name)

	c, err := m.factory()(d, cfg)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrConnection)
	}
	c.OnNotification(notificationLogger(log))

	log.Debug("starting transport", "address", d.Address())
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		if isAuthChallenge(err) {
			return nil, err
		}
		return nil, errors.Markf(err, errors.ErrConnection, "connecting to %s", d.Address())
	}

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: m.ClientName, Version: m.ClientVersion}
	req.Params.Capabilities = mcp.ClientCapabilities{}

	res, err := c.Initialize(ctx, req)
	if err != nil {
		_ = c.Close()
		if isAuthChallenge(err) {
			return nil, err
		}
		return nil, errors.Markf(err, errors.ErrHandshake, "initializing session with %s", d.Address())
	}

	conn := newConnection(c, res)
	log.Debug("session initialized",
		"server_name", conn.info.Name,
		"server_version", conn.info.Version,
		"protocol", res.ProtocolVersion,
	)
	return conn, nil
}
