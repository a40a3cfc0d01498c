// Package config provides configuration management for the mcpcli CLI.
//
// This package handles loading and validating mcpcli's own configuration
// file. It is distinct from the server config files (desktop app, Cursor,
// Codex, ...) which are read by package server.
//
// # Configuration File
//
// The default configuration file location is ~/.config/mcpcli/config.yaml
// (or $MCPCLI_CONFIG_DIR/config.yaml, or ./config.yaml):
//
//	version: 1
//	servers_file: ~/Library/Application Support/Claude/claude_desktop_config.json
//	client_name: mcpcli
//	env_file: .env
//	oauth:
//	  callback_port: 0          # 0 = kernel-assigned
//	  callback_path: /oauth/callback
//	  callback_timeout: 0s      # 0 = wait indefinitely
//	  scopes: []
//	secrets:
//	  backend: file             # file | sqlite | memory
//	  path: ""                  # default under the XDG data dir
//	session:
//	  rpc_timeout: 0s           # 0 = no timeout
//
// Every key can be overridden from the environment with the MCPCLI_ prefix,
// dots replaced by underscores: MCPCLI_OAUTH_CALLBACK_PORT=8090.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return errors.NewConfigError(err)
//	}
//
// Load validates the result; failures are marked with errors.ErrInvalidConfig.
package config
