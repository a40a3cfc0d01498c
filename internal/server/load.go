package server

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/pkg/fileutil"
)

// Format is a server config file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a Format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// entry is one server as written in a config file.
type entry struct {
	Command   string            `json:"command" toml:"command" yaml:"command"`
	Args      []string          `json:"args" toml:"args" yaml:"args"`
	Env       map[string]string `json:"env" toml:"env" yaml:"env"`
	URL       string            `json:"url" toml:"url" yaml:"url"`
	ServerURL string            `json:"serverUrl" toml:"server_url" yaml:"serverUrl"`
	Type      string            `json:"type" toml:"type" yaml:"type"`
	Transport string            `json:"transport" toml:"transport" yaml:"transport"`
	Headers   map[string]string `json:"headers" toml:"http_headers" yaml:"headers"`
	Disabled  bool              `json:"disabled" toml:"disabled" yaml:"disabled"`
}

// jsonFile covers both the desktop-app layout and the editor layout.
type jsonFile struct {
	MCPServers map[string]entry `json:"mcpServers"`
	Servers    map[string]entry `json:"servers"`
}

type tomlFile struct {
	MCPServers map[string]entry `toml:"mcp_servers"`
}

type yamlFile struct {
	MCPServers map[string]entry `yaml:"mcpServers"`
	Servers    map[string]entry `yaml:"servers"`
}

// Set is the collection of servers read from one config file.
type Set struct {
	// Path is the file the set was loaded from, empty for in-memory sets.
	Path string

	servers map[string]Descriptor
	// skipped holds entries that could not be turned into descriptors.
	skipped map[string]error
}

// NewSet builds a Set from already-resolved descriptors.
func NewSet(descriptors ...Descriptor) *Set {
	s := &Set{servers: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		s.servers[d.Name] = d
	}
	return s
}

// Len returns the number of usable servers.
func (s *Set) Len() int { return len(s.servers) }

// Names returns the names of enabled servers, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.servers))
	for name, d := range s.servers {
		if !d.Disabled {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Skipped returns entries that were present in the file but invalid, keyed
// by server name.
func (s *Set) Skipped() map[string]error { return s.skipped }

// Lookup returns the descriptor named name.
func (s *Set) Lookup(name string) (Descriptor, error) {
	if len(s.servers) == 0 && len(s.skipped) == 0 {
		return Descriptor{}, errors.Wrapf(errors.ErrNoServers, "in %s", s.source())
	}
	if d, ok := s.servers[name]; ok {
		return d, nil
	}
	if err, ok := s.skipped[name]; ok {
		return Descriptor{}, errors.Mark(err, errors.ErrInvalidConfig)
	}
	return Descriptor{}, errors.Wrapf(errors.ErrServerNotFound, "%q in %s (available: %s)",
		name, s.source(), strings.Join(s.Names(), ", "))
}

func (s *Set) source() string {
	if s.Path == "" {
		return "server config"
	}
	return s.Path
}

// LoadFile reads a server config file, choosing the decoder by extension.
func LoadFile(path string) (*Set, error) {
	data, err := fileutil.ReadFileWithLimit(path, 0)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading server config %s", path), errors.ErrInvalidConfig)
	}
	set, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing server config %s", path)
	}
	set.Path = path
	return set, nil
}

// Parse decodes a server config document.
func Parse(data []byte, format Format) (*Set, error) {
	var entries map[string]entry

	switch format {
	case FormatTOML:
		var f tomlFile
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "invalid TOML"), errors.ErrInvalidConfig)
		}
		entries = f.MCPServers
	case FormatYAML:
		var f yamlFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "invalid YAML"), errors.ErrInvalidConfig)
		}
		entries = firstNonEmpty(f.MCPServers, f.Servers)
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			break
		}
		var f jsonFile
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "invalid JSON"), errors.ErrInvalidConfig)
		}
		entries = firstNonEmpty(f.MCPServers, f.Servers)
	}

	set := &Set{
		servers: make(map[string]Descriptor, len(entries)),
		skipped: make(map[string]error),
	}
	for name, e := range entries {
		d, err := e.descriptor(name)
		if err != nil {
			set.skipped[name] = err
			continue
		}
		set.servers[name] = d
	}
	return set, nil
}

func firstNonEmpty(maps ...map[string]entry) map[string]entry {
	for _, m := range maps {
		if len(m) > 0 {
			return m
		}
	}
	return nil
}

// descriptor resolves an entry into a validated Descriptor.
func (e entry) descriptor(name string) (Descriptor, error) {
	hint := strings.ToLower(e.Type)
	if hint == "" {
		hint = strings.ToLower(e.Transport)
	}
	rawURL := e.URL
	if rawURL == "" {
		rawURL = e.ServerURL
	}

	var d Descriptor
	switch {
	case e.Command != "" && (hint == "" || hint == "stdio"):
		d = Descriptor{
			Name:      name,
			Kind:      KindLaunch,
			Command:   e.Command,
			Args:      e.Args,
			Env:       e.Env,
			Transport: TransportStdio,
		}
	case hint == "stdio":
		return Descriptor{}, errors.Wrapf(ErrMissingCommand, "server %q", name)
	case rawURL != "":
		t, err := remoteTransport(hint)
		if err != nil {
			return Descriptor{}, errors.Wrapf(err, "server %q", name)
		}
		d = Descriptor{
			Name:      name,
			Kind:      KindRemote,
			URL:       rawURL,
			Transport: t,
			Headers:   e.Headers,
		}
	default:
		return Descriptor{}, errors.Newf("server %q: must have command (launch) or url (remote)", name)
	}
	d.Disabled = e.Disabled

	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func remoteTransport(hint string) (Transport, error) {
	switch hint {
	case "sse":
		return TransportSSE, nil
	case "", "http", "streamable", "streamable-http", "streamablehttp":
		return TransportStreamable, nil
	default:
		return "", errors.Wrapf(ErrInvalidTransport, "%s", hint)
	}
}
