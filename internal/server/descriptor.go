package server

import (
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// Kind discriminates launch from remote descriptors.
type Kind string

const (
	// KindLaunch spawns Command as a child process speaking over stdio.
	KindLaunch Kind = "launch"
	// KindRemote reaches URL over HTTP.
	KindRemote Kind = "remote"
)

// Transport names the wire transport of a descriptor.
type Transport string

const (
	// TransportStdio is used by every launch descriptor.
	TransportStdio Transport = "stdio"
	// TransportSSE is the legacy HTTP+SSE remote transport.
	TransportSSE Transport = "sse"
	// TransportStreamable is the streamable HTTP remote transport, the
	// default for a bare URL.
	TransportStreamable Transport = "streamable"
)

// Sentinel errors for descriptor validation.
var (
	// ErrMissingCommand indicates a launch descriptor has no command.
	ErrMissingCommand = errors.New("launch server requires command")

	// ErrMissingURL indicates a remote descriptor has no URL.
	ErrMissingURL = errors.New("remote server requires URL")

	// ErrInvalidURL indicates a remote URL that is not absolute http(s).
	ErrInvalidURL = errors.New("remote server URL must be absolute http(s)")

	// ErrInvalidTransport indicates an unrecognized transport value.
	ErrInvalidTransport = errors.New("invalid transport value")

	// ErrEmptyEnvKey indicates an environment variable has an empty key.
	ErrEmptyEnvKey = errors.New("environment variable key is empty")

	// ErrEmptyHeaderKey indicates an HTTP header has an empty key.
	ErrEmptyHeaderKey = errors.New("header key is empty")
)

// Descriptor is a resolved description of how to reach one server.
type Descriptor struct {
	// Name is the key of the server in its config file, or a synthesized
	// label for ad-hoc servers given on the command line.
	Name string

	Kind Kind

	// Launch fields.
	Command string
	Args    []string
	Env     map[string]string

	// Remote fields.
	URL       string
	Transport Transport
	Headers   map[string]string

	// Disabled mirrors the "disabled" flag of the config entry.
	Disabled bool
}

// Launch returns a launch descriptor for command and args.
func Launch(command string, args ...string) Descriptor {
	return Descriptor{
		Name:      command,
		Kind:      KindLaunch,
		Command:   command,
		Args:      args,
		Transport: TransportStdio,
	}
}

// Remote returns a remote descriptor for rawURL, using SSE when sse is set
// and streamable HTTP otherwise.
func Remote(rawURL string, sse bool) Descriptor {
	t := TransportStreamable
	if sse {
		t = TransportSSE
	}
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		name = u.Host
	}
	return Descriptor{
		Name:      name,
		Kind:      KindRemote,
		URL:       rawURL,
		Transport: t,
	}
}

// IsLaunch reports whether d spawns a child process.
func (d Descriptor) IsLaunch() bool { return d.Kind == KindLaunch }

// IsRemote reports whether d reaches an HTTP endpoint.
func (d Descriptor) IsRemote() bool { return d.Kind == KindRemote }

// Address returns the command line or URL of d, for display.
func (d Descriptor) Address() string {
	if d.IsRemote() {
		return d.URL
	}
	return strings.TrimSpace(d.Command + " " + strings.Join(d.Args, " "))
}

// Validate checks that d carries what its kind needs.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case KindLaunch:
		if d.Command == "" {
			return errors.Wrapf(ErrMissingCommand, "server %q", d.Name)
		}
		if d.Transport != "" && d.Transport != TransportStdio {
			return errors.Wrapf(ErrInvalidTransport, "server %q: %s", d.Name, d.Transport)
		}
	case KindRemote:
		if d.URL == "" {
			return errors.Wrapf(ErrMissingURL, "server %q", d.Name)
		}
		u, err := url.Parse(d.URL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Wrapf(ErrInvalidURL, "server %q: %s", d.Name, d.URL)
		}
		if d.Transport != TransportSSE && d.Transport != TransportStreamable {
			return errors.Wrapf(ErrInvalidTransport, "server %q: %s", d.Name, d.Transport)
		}
	default:
		return errors.Newf("server %q: unknown kind %q", d.Name, d.Kind)
	}

	for k := range d.Env {
		if k == "" {
			return errors.Wrapf(ErrEmptyEnvKey, "server %q", d.Name)
		}
	}
	for k := range d.Headers {
		if k == "" {
			return errors.Wrapf(ErrEmptyHeaderKey, "server %q", d.Name)
		}
	}
	return nil
}

// WithEnv returns a copy of d whose Env is extra overlaid by d.Env.
// Entries already declared by the server config win.
func (d Descriptor) WithEnv(extra map[string]string) Descriptor {
	if len(extra) == 0 {
		return d
	}
	merged := make(map[string]string, len(extra)+len(d.Env))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range d.Env {
		merged[k] = v
	}
	d.Env = merged
	return d
}

// LaunchEnv returns the KEY=VALUE entries to add to the child's
// environment, sorted by key. When the descriptor declares any env, the
// parent's PATH is appended last so the child resolves executables the same
// way the operator's shell does.
func (d Descriptor) LaunchEnv() []string {
	if len(d.Env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	env := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		env = append(env, k+"="+d.Env[k])
	}
	if path, ok := os.LookupEnv("PATH"); ok {
		env = append(env, "PATH="+path)
	}
	return env
}
