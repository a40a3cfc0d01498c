package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcli/cmd"
	"github.com/thoreinstein/mcpcli/internal/config"
	"github.com/thoreinstein/mcpcli/internal/connect"
	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/logging"
	"github.com/thoreinstein/mcpcli/internal/oauth"
	"github.com/thoreinstein/mcpcli/internal/paths"
	"github.com/thoreinstein/mcpcli/internal/present"
	"github.com/thoreinstein/mcpcli/internal/secret"
	"github.com/thoreinstein/mcpcli/internal/server"
)

// connectServer opens a connection through m. Tests replace it.
var connectServer = func(ctx context.Context, m *connect.Manager, d server.Descriptor) (connect.Connection, error) {
	return m.Connect(ctx, d)
}

// app holds what a command needs to reach servers.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	pres  *present.Presenter
	store secret.Store
}

func newApp(c *cobra.Command) *app {
	return &app{
		cfg:  currentConfig(),
		log:  logging.FromContext(c.Context()),
		pres: present.NewWithIO(c.OutOrStdout(), c.ErrOrStderr()),
	}
}

// Close releases the secret store if it was opened.
func (a *app) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *app) secrets() (secret.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := secret.Open(a.cfg)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "opening secret store"), errors.ErrInvalidConfig)
	}
	a.store = s
	return s, nil
}

// serversPath resolves the server config file: --config, then the
// servers_file setting, then the first known client config that exists,
// then the desktop app config.
func (a *app) serversPath() string {
	switch {
	case serversFile != "":
		return serversFile
	case a.cfg.ServersFile != "":
		return a.cfg.ServersFile
	}
	if p := paths.DiscoverServerConfig(); p != "" {
		return p
	}
	return paths.DesktopConfigPath()
}

func (a *app) servers() (*server.Set, error) {
	path := a.serversPath()
	if path == "" {
		return nil, errors.Wrap(errors.ErrNoServers, "no server config file found")
	}
	set, err := server.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for name, err := range set.Skipped() {
		a.log.Warn("skipping server entry", "server", name, "error", err)
	}
	return set, nil
}

// lookup returns the descriptor of the named server from the server
// config file.
func (a *app) lookup(name string) (server.Descriptor, error) {
	set, err := a.servers()
	if err != nil {
		return server.Descriptor{}, err
	}
	return set.Lookup(name)
}

// prepare applies the env file to launch descriptors.
func (a *app) prepare(d server.Descriptor) (server.Descriptor, error) {
	if !d.IsLaunch() || a.cfg.EnvFile == "" {
		return d, nil
	}
	env, err := server.LoadEnvFile(a.cfg.EnvFile)
	if err != nil {
		return d, errors.Mark(err, errors.ErrInvalidConfig)
	}
	return d.WithEnv(env), nil
}

func (a *app) manager(store secret.Store) *connect.Manager {
	flow := &oauth.Flow{
		Store:      store,
		ClientName: a.cfg.ClientName,
		Scopes:     a.cfg.OAuth.Scopes,
		Port:       a.cfg.OAuth.CallbackPort,
		Path:       a.cfg.OAuth.CallbackPath,
		Timeout:    a.cfg.OAuth.CallbackTimeout,
		Browser:    oauth.OpenBrowser,
		Announce:   a.pres.AuthorizationURL,
		Logger:     a.log,
	}
	return &connect.Manager{
		ClientName:    a.cfg.ClientName,
		ClientVersion: cmd.Version,
		Auth:          flow,
		Logger:        a.log,
		OnAuthorize: func(serverURL string) {
			a.pres.Infof("Authorization required for %s", serverURL)
		},
	}
}

// connect opens a connection to d.
func (a *app) connect(ctx context.Context, d server.Descriptor) (connect.Connection, error) {
	d, err := a.prepare(d)
	if err != nil {
		return nil, err
	}
	store, err := a.secrets()
	if err != nil {
		return nil, err
	}
	return connectServer(ctx, a.manager(store), d)
}

// dial looks up a named server and connects to it.
func (a *app) dial(ctx context.Context, name string) (connect.Connection, error) {
	d, err := a.lookup(name)
	if err != nil {
		return nil, err
	}
	return a.connect(ctx, d)
}
