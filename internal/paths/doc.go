// Package paths provides cross-platform path resolution for mcpcli's own
// files and for the config files of applications that declare MCP servers.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance:
//
//	paths.ConfigDir()   // <ConfigHome>/mcpcli (config.yaml)
//	paths.SecretsFile() // <DataHome>/mcpcli/secrets.json
//
// # Server Config Sources
//
// When no --config is given, the CLI looks for a server list in the config
// files of known applications:
//
//	| Source  | File                                  | Key          |
//	|---------|---------------------------------------|--------------|
//	| desktop | DesktopConfigPath() (per OS)          | mcpServers   |
//	| claude  | ~/.claude.json                        | mcpServers   |
//	| cursor  | ~/.cursor/mcp.json                    | mcpServers   |
//	| codex   | ~/.codex/config.toml                  | mcp_servers  |
//	| gemini  | ~/.gemini/settings.json               | mcpServers   |
//
// Functions that accept a source return empty strings for unknown sources.
// Use [ValidSource] to check validity before calling.
package paths
