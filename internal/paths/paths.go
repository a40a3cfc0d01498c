package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "mcpcli"

// Server config sources: applications whose config files declare MCP servers.
const (
	SourceDesktop = "desktop"
	SourceClaude  = "claude"
	SourceCursor  = "cursor"
	SourceCodex   = "codex"
	SourceGemini  = "gemini"
)

// sourceConfigs maps home-relative sources to their config files.
// The desktop app is resolved per OS by DesktopConfigPath.
var sourceConfigs = map[string]string{
	SourceClaude: ".claude.json",
	SourceCursor: filepath.Join(".cursor", "mcp.json"),
	SourceCodex:  filepath.Join(".codex", "config.toml"),
	SourceGemini: filepath.Join(".gemini", "settings.json"),
}

// desktopConfigFile is the file name the desktop app uses on every OS.
const desktopConfigFile = "claude_desktop_config.json"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory, or "" if it cannot be determined.
// Use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
// On Linux: ~/.local/share
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func DataHome() string {
	return xdg.DataHome
}

// ConfigDir returns <ConfigHome>/mcpcli, where config.yaml lives.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// DataDir returns <DataHome>/mcpcli, where persisted secrets live.
func DataDir() string {
	return filepath.Join(DataHome(), AppName)
}

// SecretsFile returns the default path of the file-backed secret store.
func SecretsFile() string {
	return filepath.Join(DataDir(), "secrets.json")
}

// SecretsDB returns the default path of the sqlite-backed secret store.
func SecretsDB() string {
	return filepath.Join(DataDir(), "secrets.db")
}

// DesktopConfigPath returns the desktop app's server config file for the
// running OS.
//
//   - darwin:  ~/Library/Application Support/Claude/claude_desktop_config.json
//   - windows: ~/AppData/Roaming/Claude/claude_desktop_config.json
//   - other:   <ConfigHome>/Claude/claude_desktop_config.json
func DesktopConfigPath() string {
	return desktopConfigPath(runtime.GOOS, Home(), ConfigHome())
}

func desktopConfigPath(goos, home, configHome string) string {
	switch goos {
	case "darwin":
		if home == "" {
			return ""
		}
		return filepath.Join(home, "Library", "Application Support", "Claude", desktopConfigFile)
	case "windows":
		if home == "" {
			return ""
		}
		return filepath.Join(home, "AppData", "Roaming", "Claude", desktopConfigFile)
	default:
		if configHome == "" {
			return ""
		}
		return filepath.Join(configHome, "Claude", desktopConfigFile)
	}
}

// ValidSource returns true if the source name is recognized.
func ValidSource(source string) bool {
	if source == SourceDesktop {
		return true
	}
	_, ok := sourceConfigs[source]
	return ok
}

// Sources returns all known server config sources in lookup order.
func Sources() []string {
	return []string{
		SourceDesktop,
		SourceClaude,
		SourceCursor,
		SourceCodex,
		SourceGemini,
	}
}

// SourceConfigPath returns the server config file of a source.
// Returns an empty string for unknown sources.
func SourceConfigPath(source string) string {
	if source == SourceDesktop {
		return DesktopConfigPath()
	}
	relPath, ok := sourceConfigs[source]
	if !ok {
		return ""
	}
	home := Home()
	if home == "" {
		return ""
	}
	return filepath.Join(home, relPath)
}

// DiscoverServerConfig returns the first source config file that exists,
// in Sources order, or "" if none does.
func DiscoverServerConfig() string {
	for _, s := range Sources() {
		p := SourceConfigPath(s)
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
