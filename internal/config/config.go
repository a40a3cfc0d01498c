// Package config provides configuration management for mcpcli using Viper.
package config

import (
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = paths.AppName

// EnvPrefix is the prefix for environment variable overrides (MCPCLI_OAUTH_CALLBACK_PORT, ...).
const EnvPrefix = "MCPCLI"

// Secret store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultCallbackPath is the fixed path of the local authorization callback.
const DefaultCallbackPath = "/oauth/callback"

// Config represents the top-level configuration structure.
type Config struct {
	Version     int           `mapstructure:"version" yaml:"version"`
	ServersFile string        `mapstructure:"servers_file" yaml:"servers_file,omitempty"`
	ClientName  string        `mapstructure:"client_name" yaml:"client_name"`
	EnvFile     string        `mapstructure:"env_file" yaml:"env_file,omitempty"`
	OAuth       OAuthConfig   `mapstructure:"oauth" yaml:"oauth"`
	Secrets     SecretsConfig `mapstructure:"secrets" yaml:"secrets"`
	Session     SessionConfig `mapstructure:"session" yaml:"session"`
}

// OAuthConfig controls the delegated authorization flow.
type OAuthConfig struct {
	// CallbackPort is the loopback port for the callback listener; 0 lets the kernel choose.
	CallbackPort int `mapstructure:"callback_port" yaml:"callback_port"`
	// CallbackPath is the HTTP path the authorization server redirects to.
	CallbackPath string `mapstructure:"callback_path" yaml:"callback_path"`
	// CallbackTimeout bounds the wait for the browser redirect; 0 waits indefinitely.
	CallbackTimeout time.Duration `mapstructure:"callback_timeout" yaml:"callback_timeout"`
	// Scopes requested during authorization.
	Scopes []string `mapstructure:"scopes" yaml:"scopes,omitempty"`
}

// SecretsConfig selects where authorization state is persisted.
type SecretsConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Path    string `mapstructure:"path" yaml:"path,omitempty"`
}

// SessionConfig controls the invocation loop.
type SessionConfig struct {
	// RPCTimeout bounds each protocol request; 0 means no timeout.
	RPCTimeout time.Duration `mapstructure:"rpc_timeout" yaml:"rpc_timeout"`
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Version:    1,
		ClientName: AppName,
		OAuth: OAuthConfig{
			CallbackPath: DefaultCallbackPath,
		},
		Secrets: SecretsConfig{
			Backend: BackendFile,
		},
	}
}

// SecretsPath returns the configured secret store location, falling back
// to the backend's default under the XDG data directory.
func (c *Config) SecretsPath() string {
	if c.Secrets.Path != "" {
		return c.Secrets.Path
	}
	if c.Secrets.Backend == BackendSQLite {
		return paths.SecretsDB()
	}
	return paths.SecretsFile()
}

// Init resets Viper and registers search paths, env overrides and defaults.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	// Environment variable support; nested keys use underscores.
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	def := Default()
	viper.SetDefault("version", def.Version)
	viper.SetDefault("servers_file", "")
	viper.SetDefault("client_name", def.ClientName)
	viper.SetDefault("env_file", "")
	viper.SetDefault("oauth.callback_port", def.OAuth.CallbackPort)
	viper.SetDefault("oauth.callback_path", def.OAuth.CallbackPath)
	viper.SetDefault("oauth.callback_timeout", def.OAuth.CallbackTimeout)
	viper.SetDefault("oauth.scopes", []string{})
	viper.SetDefault("secrets.backend", def.Secrets.Backend)
	viper.SetDefault("secrets.path", "")
	viper.SetDefault("session.rpc_timeout", def.Session.RPCTimeout)
}

// Load reads and validates the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load, defaults apply
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	if len(cfg.OAuth.Scopes) == 0 {
		cfg.OAuth.Scopes = nil
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errs[0], "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}
