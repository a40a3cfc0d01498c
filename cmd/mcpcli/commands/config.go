package commands

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpcli/internal/config"
	"github.com/thoreinstein/mcpcli/internal/editor"
	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/paths"
	"github.com/thoreinstein/mcpcli/pkg/fileutil"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configEditCmd.Flags().BoolVar(&editServers, "servers", false,
		"edit the server config file instead")
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mcpcli configuration",
	Long: `Manage mcpcli configuration stored in ~/.config/mcpcli/config.yaml.

Without a subcommand, lists all configuration values. Every key can also
be overridden with an MCPCLI_ environment variable, for example
MCPCLI_SESSION_RPC_TIMEOUT=30s.`,
	Example: `  # List all configuration
  mcpcli config

  # Use a fixed OAuth callback port
  mcpcli config set oauth.callback_port 8976

  # Store secrets in sqlite
  mcpcli config set secrets.backend sqlite

See Also: mcpcli auth`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys. Array values are printed one per line.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and write the config file.

The resulting configuration is validated before it is written. For
oauth.scopes, use comma-separated values.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	RunE:  runConfigList,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		fmt.Fprintln(c.OutOrStdout(), configFilePath())
	},
}

// editServers holds the value of the config edit --servers flag.
var editServers bool

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your editor ($EDITOR, then $VISUAL,
then nano or vi). A config file with default values is written first when
none exists.

With --servers, open the server config file instead.`,
	Example: `  mcpcli config edit

  # Edit the server list
  EDITOR="code --wait" mcpcli config edit --servers`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigEdit(c *cobra.Command, _ []string) error {
	path := configFilePath()
	if editServers {
		path = newApp(c).serversPath()
		if path == "" {
			return errors.NewUserError(errors.ErrNoServers, "Pass --config with the file to edit")
		}
	} else if viper.ConfigFileUsed() == "" {
		if err := writeConfig(config.Default()); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.ErrOrStderr(), "Location: %s\n", path)
	return editor.Open(c.Context(), path)
}

func runConfigGet(c *cobra.Command, args []string) error {
	key := args[0]
	out := c.OutOrStdout()

	if !viper.IsSet(key) {
		fmt.Fprintln(out, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(out, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(out, item)
		}
	default:
		fmt.Fprintln(out, viper.GetString(key))
	}
	return nil
}

func runConfigSet(c *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if !knownKey(key) {
		return errors.NewUserError(errors.Newf("unknown config key %q", key),
			"Run 'mcpcli config list' to see available keys")
	}

	if key == "oauth.scopes" {
		viper.Set(key, parseList(value))
	} else {
		viper.Set(key, value)
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return errors.NewConfigError(errors.Wrap(err, "decoding config"))
	}
	if errs := config.Validate(&cfg); len(errs) > 0 {
		return errors.NewUserError(errs[0], "Check the value and try again")
	}

	if err := writeConfig(&cfg); err != nil {
		return err
	}
	fmt.Fprintf(c.OutOrStdout(), "Set %s = %v\n", key, viper.Get(key))
	return nil
}

func runConfigList(c *cobra.Command, _ []string) error {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return errors.Wrap(err, "decoding config")
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	fmt.Fprint(c.OutOrStdout(), string(data))
	return nil
}

// knownKey reports whether key names a setting (not a section).
func knownKey(key string) bool {
	return slices.Contains(viper.AllKeys(), key)
}

// parseList splits a comma-separated string, dropping empty elements.
func parseList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// configFilePath returns the config file in use, or the default location.
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(paths.ConfigDir(), "config.yaml")
}

// writeConfig writes cfg to the config file.
func writeConfig(cfg *config.Config) error {
	path := configFilePath()

	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, cfg, fileutil.PrivatePerm); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
