package connect

import (
	"context"
	"net/url"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/server"
)

// Client is the part of *client.Client a Connection uses.
type Client interface {
	Start(ctx context.Context) error
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	OnNotification(handler func(mcp.JSONRPCNotification))
	GetServerCapabilities() mcp.ServerCapabilities
	ListResources(ctx context.Context, req mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error)
	ListResourceTemplates(ctx context.Context, req mcp.ListResourceTemplatesRequest) (*mcp.ListResourceTemplatesResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	ListPrompts(ctx context.Context, req mcp.ListPromptsRequest) (*mcp.ListPromptsResult, error)
	ReadResource(ctx context.Context, req mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	GetPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
	Close() error
}

var (
	_ Client = (*client.Client)(nil)
	_ Client = (*recordingClient)(nil)
)

// Factory builds an unstarted client for d. oauth is nil for launch
// descriptors. Each call must return a new transport.
type Factory func(d server.Descriptor, oauth *transport.OAuthConfig) (Client, error)

// NewClient is the default Factory.
func NewClient(d server.Descriptor, oauth *transport.OAuthConfig) (Client, error) {
	switch {
	case d.IsLaunch():
		return newRecordingClient(transport.NewStdio(d.Command, d.LaunchEnv(), d.Args...)), nil

	case d.Transport == server.TransportSSE:
		var opts []transport.ClientOption
		if len(d.Headers) > 0 {
			opts = append(opts, transport.WithHeaders(d.Headers))
		}
		if oauth != nil {
			opts = append(opts, transport.WithOAuth(*oauth))
		}
		t, err := transport.NewSSE(d.URL, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "creating SSE transport for %s", d.URL)
		}
		return newRecordingClient(t), nil

	default:
		var opts []transport.StreamableHTTPCOption
		if len(d.Headers) > 0 {
			opts = append(opts, transport.WithHTTPHeaders(d.Headers))
		}
		if oauth != nil {
			opts = append(opts, transport.WithHTTPOAuth(*oauth))
		}
		t, err := transport.NewStreamableHTTP(d.URL, opts...)
		if err != nil {
			return nil, errors.Wrapf(err, "creating streamable HTTP transport for %s", d.URL)
		}
		return newRecordingClient(t), nil
	}
}

// isAuthChallenge reports whether err asks the client to authorize.
func isAuthChallenge(err error) bool {
	return client.IsOAuthAuthorizationRequiredError(err) || errors.Is(err, transport.ErrUnauthorized)
}

// challengeHandler returns the handler carried by an authorization
// challenge, or a fresh one built from cfg when the transport gave none.
func challengeHandler(err error, serverURL string, cfg transport.OAuthConfig) *transport.OAuthHandler {
	if h := client.GetOAuthHandler(err); h != nil {
		return h
	}
	h := transport.NewOAuthHandler(cfg)
	if u, perr := url.Parse(serverURL); perr == nil {
		h.SetBaseURL(u.Scheme + "://" + u.Host)
	}
	return h
}
