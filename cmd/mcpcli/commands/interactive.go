package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcli/internal/cli/prompt"
	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/server"
	"github.com/thoreinstein/mcpcli/internal/session"
)

// serverName holds the value of the --server flag.
var serverName string

// remoteURL holds the value of the --url flag.
var remoteURL string

// sseURL holds the value of the --sse flag.
var sseURL string

func init() {
	rootCmd.Flags().StringVar(&serverName, "server", "",
		"server name from the server config file (skips the picker)")
	rootCmd.Flags().StringVar(&remoteURL, "url", "",
		"connect to a remote server over streamable HTTP")
	rootCmd.Flags().StringVar(&sseURL, "sse", "",
		"connect to a remote server over SSE")
	rootCmd.MarkFlagsMutuallyExclusive("url", "sse", "server")
}

// serverPicker chooses a server name from the config file.
type serverPicker interface {
	SelectServer(names []string) (string, error)
}

// resolveServer turns the root command's flags and arguments into a
// descriptor: --url/--sse, then a launch command, then a configured server
// picked by name or interactively.
func (a *app) resolveServer(picker serverPicker, args []string) (server.Descriptor, error) {
	remote := remoteURL != "" || sseURL != ""
	if remote && len(args) > 0 {
		return server.Descriptor{}, errors.NewUserError(
			errors.New("a server command cannot be combined with --url or --sse"),
			"Pass either a command to launch or a URL")
	}
	switch {
	case remoteURL != "":
		return server.Remote(remoteURL, false), nil
	case sseURL != "":
		return server.Remote(sseURL, true), nil
	case len(args) > 0:
		if serverName != "" {
			return server.Descriptor{}, errors.NewUserError(
				errors.New("a server command cannot be combined with --server"),
				"Pass either a command to launch or a server name")
		}
		return server.Launch(args[0], args[1:]...), nil
	}

	set, err := a.servers()
	if err != nil {
		return server.Descriptor{}, err
	}
	name := serverName
	if name == "" && set.Len() > 0 {
		if name, err = picker.SelectServer(set.Names()); err != nil {
			return server.Descriptor{}, err
		}
	}
	return set.Lookup(name)
}

func runInteractive(c *cobra.Command, args []string) error {
	ctx := c.Context()
	a := newApp(c)
	defer a.Close()

	selector, prompter := prompt.NewTerminal()

	d, err := a.resolveServer(selector, args)
	if errors.Is(err, prompt.ErrSelectionCancelled) {
		return nil
	}
	if err != nil {
		return err
	}
	a.log.Debug("resolved server", "server", d.Name, "transport", d.Transport)

	spin := a.pres.Spinner("Connecting to server...")
	conn, err := a.connect(ctx, d)
	if err != nil {
		spin.Error("Failed to connect to " + d.Address())
		return err
	}
	spin.Success("Connected, server capabilities: " + conn.Capabilities().String())

	loop := &session.Loop{
		Conn:       conn,
		Selector:   selector,
		Prompter:   prompter,
		Presenter:  a.pres,
		Logger:     a.log,
		RPCTimeout: a.cfg.Session.RPCTimeout,
	}
	return loop.Run(ctx)
}
