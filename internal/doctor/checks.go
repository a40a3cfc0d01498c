package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/oauth"
	"github.com/thoreinstein/mcpcli/internal/secret"
	"github.com/thoreinstein/mcpcli/internal/server"
)

// ConfigCheck reports whether the application config loaded.
type ConfigCheck struct {
	// Path is the config file in use; empty when defaults apply.
	Path string
	// LoadErr is the error returned by config.Load.
	LoadErr error
}

var _ Check = (*ConfigCheck)(nil)

func (c *ConfigCheck) Name() string     { return "config" }
func (c *ConfigCheck) Category() string { return "config" }

func (c *ConfigCheck) Run(context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}
	switch {
	case c.LoadErr != nil:
		res.Status = SeverityError
		res.Message = c.LoadErr.Error()
		res.FixHint = "Fix the file or run 'mcpcli config set' with a valid value"
	case c.Path == "":
		res.Status = SeverityInfo
		res.Message = "no config file, using defaults"
	default:
		res.Status = SeverityPass
		res.Message = "loaded " + c.Path
	}
	return res
}

// ServerConfigCheck parses the server config file.
type ServerConfigCheck struct {
	Path string
}

var _ Check = (*ServerConfigCheck)(nil)

func (c *ServerConfigCheck) Name() string     { return "server-config" }
func (c *ServerConfigCheck) Category() string { return "servers" }

func (c *ServerConfigCheck) Run(context.Context) *CheckResult {
	res := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.Path},
	}
	if c.Path == "" {
		res.Status = SeverityWarning
		res.Message = "no server config file found"
		res.FixHint = "Pass --config or set servers_file"
		return res
	}
	if _, err := os.Stat(c.Path); errors.Is(err, fs.ErrNotExist) {
		res.Status = SeverityWarning
		res.Message = "server config file does not exist"
		res.FixHint = "Pass --config or set servers_file"
		return res
	}

	set, err := server.LoadFile(c.Path)
	if err != nil {
		res.Status = SeverityError
		res.Message = err.Error()
		return res
	}

	res.Details["servers"] = set.Names()
	skipped := set.Skipped()
	if len(skipped) == 0 {
		if set.Len() == 0 {
			res.Status = SeverityWarning
			res.Message = "server config defines no servers"
			return res
		}
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d server(s) configured", set.Len())
		return res
	}

	names := make([]string, 0, len(skipped))
	for name := range skipped {
		names = append(names, name)
	}
	slices.Sort(names)
	problems := make(map[string]string, len(skipped))
	for _, name := range names {
		problems[name] = skipped[name].Error()
	}
	res.Details["invalid"] = problems
	res.Status = SeverityWarning
	res.Message = fmt.Sprintf("%d server(s) configured, %d invalid entr(ies) skipped", set.Len(), len(skipped))
	return res
}

// privateFilePerm and privateDirPerm are the expected permissions of the
// secret store.
const (
	privateFilePerm os.FileMode = 0o600
	privateDirPerm  os.FileMode = 0o700
)

// SecretStoreCheck verifies the secret store is readable only by its owner.
type SecretStoreCheck struct {
	// Path of the file or sqlite database; empty for the memory backend.
	Path string

	issues []permIssue
}

type permIssue struct {
	path string
	want os.FileMode
	got  os.FileMode
}

var (
	_ Check = (*SecretStoreCheck)(nil)
	_ Fixer = (*SecretStoreCheck)(nil)
)

func (c *SecretStoreCheck) Name() string     { return "secret-permissions" }
func (c *SecretStoreCheck) Category() string { return "auth" }

func (c *SecretStoreCheck) Run(context.Context) *CheckResult {
	c.issues = nil
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.Path == "" {
		res.Status = SeverityInfo
		res.Message = "in-memory secret store, nothing persisted"
		return res
	}
	res.Details = map[string]any{"path": c.Path}

	info, err := os.Stat(c.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Status = SeverityInfo
		res.Message = "secret store not created yet"
		return res
	case err != nil:
		res.Status = SeverityError
		res.Message = err.Error()
		return res
	}
	c.inspect(c.Path, info.Mode().Perm(), privateFilePerm)

	if dirInfo, err := os.Stat(filepath.Dir(c.Path)); err == nil {
		c.inspect(filepath.Dir(c.Path), dirInfo.Mode().Perm(), privateDirPerm)
	}

	if len(c.issues) == 0 {
		res.Status = SeverityPass
		res.Message = "secret store is private"
		return res
	}

	problems := make([]string, 0, len(c.issues))
	for _, is := range c.issues {
		problems = append(problems, fmt.Sprintf("%s is %04o, want %04o", is.path, is.got, is.want))
	}
	res.Details["issues"] = problems
	res.Status = SeverityWarning
	res.Message = fmt.Sprintf("secret store is accessible to other users (%d path(s))", len(c.issues))
	res.Fixable = true
	res.FixHint = "Run 'mcpcli doctor --fix'"
	return res
}

func (c *SecretStoreCheck) inspect(path string, got, want os.FileMode) {
	if got&^want != 0 {
		c.issues = append(c.issues, permIssue{path: path, want: want, got: got})
	}
}

// CanFix reports whether the last Run found permission issues.
func (c *SecretStoreCheck) CanFix() bool { return len(c.issues) > 0 }

// Fix tightens the permissions found by the last Run.
func (c *SecretStoreCheck) Fix() []FixResult {
	results := make([]FixResult, 0, len(c.issues))
	for _, is := range c.issues {
		r := FixResult{Path: is.path}
		if err := os.Chmod(is.path, is.want); err != nil {
			r.Description = fmt.Sprintf("failed to chmod %04o: %v", is.want, err)
			r.Error = errors.Wrapf(err, "chmod %04o %s", is.want, is.path)
		} else {
			r.Fixed = true
			r.Description = fmt.Sprintf("chmod %04o", is.want)
		}
		results = append(results, r)
	}
	return results
}

// TokenCheck inspects stored authorization records.
type TokenCheck struct {
	Store secret.Store
	// Now defaults to time.Now.
	Now func() time.Time
}

var _ Check = (*TokenCheck)(nil)

func (c *TokenCheck) Name() string     { return "stored-tokens" }
func (c *TokenCheck) Category() string { return "auth" }

func (c *TokenCheck) Run(ctx context.Context) *CheckResult {
	res := &CheckResult{Name: c.Name(), Category: c.Category()}

	records, err := oauth.ListRecords(ctx, c.Store)
	if err != nil {
		res.Status = SeverityError
		res.Message = err.Error()
		res.FixHint = "Run 'mcpcli auth purge' to discard unreadable records"
		return res
	}
	if len(records) == 0 {
		res.Status = SeverityInfo
		res.Message = "no stored authorizations"
		return res
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	var stale, pending []string
	for _, r := range records {
		label := r.ServerURL
		if label == "" {
			label = r.ServerID
		}
		if r.Tokens == nil {
			if r.HasCodeVerifier {
				pending = append(pending, label)
			}
			continue
		}
		info := oauth.Inspect(r.Tokens)
		if !info.HasRefresh && !info.ExpiresAt.IsZero() && now().After(info.ExpiresAt) {
			stale = append(stale, label)
		}
	}

	res.Details = map[string]any{"records": len(records)}
	switch {
	case len(stale) > 0:
		res.Details["expired"] = stale
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("%d expired token(s) without a refresh token", len(stale))
		res.FixHint = "Reconnect to re-authorize, or run 'mcpcli auth purge <url>'"
	case len(pending) > 0:
		res.Details["pending"] = pending
		res.Status = SeverityInfo
		res.Message = fmt.Sprintf("%d authorization(s) never completed", len(pending))
	default:
		res.Status = SeverityPass
		res.Message = fmt.Sprintf("%d stored authorization(s) usable", len(records))
	}
	return res
}
