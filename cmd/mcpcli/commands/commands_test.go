package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcli/internal/connect"
	"github.com/thoreinstein/mcpcli/internal/primitive"
	"github.com/thoreinstein/mcpcli/internal/server"
)

// isolate points config loading at a fresh directory whose config.yaml
// holds extra, and resets flag state shared between executions.
func isolate(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	content := "version: 1\n" + extra
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	t.Setenv("MCPCLI_CONFIG_DIR", dir)

	serversFile, invokeArgs, validateArgs = "", "", false
	serverName, remoteURL, sseURL = "", "", ""
	verbosity, quiet = 0, false
	doctorJSON, doctorAll, doctorFix = false, false, false
	editServers = false
	return dir
}

// writeServers writes a JSON server config with the given document.
func writeServers(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

// execute runs the root command with args, capturing both streams.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

// stubConnect replaces the connection hook for the duration of the test
// and records the descriptors it was asked for.
func stubConnect(t *testing.T, conn connect.Connection) *[]server.Descriptor {
	t.Helper()
	var seen []server.Descriptor
	orig := connectServer
	connectServer = func(_ context.Context, _ *connect.Manager, d server.Descriptor) (connect.Connection, error) {
		seen = append(seen, d)
		return conn, nil
	}
	t.Cleanup(func() { connectServer = orig })
	return &seen
}

// echoConn is a server with one tool that echoes its text argument.
type echoConn struct {
	closed int
}

func (c *echoConn) Capabilities() primitive.Capabilities {
	return primitive.Capabilities{Tools: true}
}

func (c *echoConn) ListResources(context.Context) ([]primitive.Primitive, error) { return nil, nil }

func (c *echoConn) ListResourceTemplates(context.Context) ([]primitive.Primitive, error) {
	return nil, nil
}

func (c *echoConn) ListTools(context.Context) ([]primitive.Primitive, error) {
	return []primitive.Primitive{{
		Kind:        primitive.KindTool,
		Name:        "echo",
		Description: "Echo text back",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"text": map[string]any{"type": "string"}},
			"required":   []any{"text"},
		},
	}}, nil
}

func (c *echoConn) ListPrompts(context.Context) ([]primitive.Primitive, error) { return nil, nil }

func (c *echoConn) ServerInfo() mcp.Implementation {
	return mcp.Implementation{Name: "echo", Version: "1.0.0"}
}

func (c *echoConn) ReadResource(context.Context, string) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{}, nil
}

func (c *echoConn) CallTool(_ context.Context, _ string, args map[string]any) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{StructuredContent: map[string]any{"text": args["text"]}}, nil
}

func (c *echoConn) GetPrompt(context.Context, string, map[string]string) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{}, nil
}

func (c *echoConn) Close() error {
	c.closed++
	return nil
}
