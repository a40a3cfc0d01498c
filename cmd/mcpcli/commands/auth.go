package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpcli/internal/oauth"
)

func init() {
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authPurgeCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(purgeCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored OAuth authorization data",
	Long: `Manage the OAuth client registrations, tokens and PKCE verifiers that
mcpcli stores for remote servers.

Records live in the configured secret store (secrets.backend), keyed by a
hash of the server URL.`,
	Example: `  # Show stored records
  mcpcli auth list

  # Forget one server
  mcpcli auth purge https://example.com/mcp

See Also: mcpcli purge`,
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored authorization records as JSON",
	Args:  cobra.NoArgs,
	RunE:  runAuthList,
}

var authPurgeCmd = &cobra.Command{
	Use:   "purge [url]",
	Short: "Delete stored authorization data",
	Long: `Delete stored authorization data for one server URL, or for every
server when no URL is given. The next connection starts a fresh
authorization flow.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthPurge,
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all stored authorization data",
	Args:  cobra.NoArgs,
	RunE:  runAuthPurge,
}

// authRecord is the printed form of an oauth.Record.
type authRecord struct {
	ServerID        string           `json:"serverId"`
	ServerURL       string           `json:"serverUrl,omitempty"`
	ClientID        string           `json:"clientId,omitempty"`
	RedirectURI     string           `json:"redirectUri,omitempty"`
	HasCodeVerifier bool             `json:"hasCodeVerifier"`
	Token           *oauth.TokenInfo `json:"token,omitempty"`
}

func newAuthRecord(r oauth.Record) authRecord {
	out := authRecord{
		ServerID:        r.ServerID,
		ServerURL:       r.ServerURL,
		HasCodeVerifier: r.HasCodeVerifier,
	}
	if r.ClientInformation != nil {
		out.ClientID = r.ClientInformation.ClientID
		out.RedirectURI = r.ClientInformation.RedirectURI
	}
	if r.Tokens != nil {
		info := oauth.Inspect(r.Tokens)
		out.Token = &info
	}
	return out
}

func runAuthList(c *cobra.Command, _ []string) error {
	a := newApp(c)
	defer a.Close()

	store, err := a.secrets()
	if err != nil {
		return err
	}
	records, err := oauth.ListRecords(c.Context(), store)
	if err != nil {
		return err
	}

	out := make([]authRecord, 0, len(records))
	for _, r := range records {
		out = append(out, newAuthRecord(r))
	}
	return a.pres.Print(out)
}

func runAuthPurge(c *cobra.Command, args []string) error {
	a := newApp(c)
	defer a.Close()

	store, err := a.secrets()
	if err != nil {
		return err
	}

	var serverURL string
	if len(args) > 0 {
		serverURL = args[0]
	}
	n, err := oauth.Purge(c.Context(), store, serverURL)
	if err != nil {
		return err
	}
	a.log.Debug("purged authorization data", "keys", n, "server", serverURL)

	switch {
	case n == 0:
		fmt.Fprintln(c.OutOrStdout(), "No stored authorization data")
	case serverURL != "":
		fmt.Fprintf(c.OutOrStdout(), "Removed authorization data for %s\n", serverURL)
	default:
		fmt.Fprintln(c.OutOrStdout(), "Removed all stored authorization data")
	}
	return nil
}
