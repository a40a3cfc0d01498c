package connect

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/primitive"
)

// Connection is an initialized session with one server.
type Connection interface {
	primitive.Lister

	// ServerInfo is the implementation the server reported at handshake.
	ServerInfo() mcp.Implementation

	ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
	GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error)

	// Close shuts the session down. Only the first call reaches the client.
	Close() error
}

type connection struct {
	client Client
	info   mcp.Implementation
	caps   mcp.ServerCapabilities

	closeOnce sync.Once
	closeErr  error
}

var _ Connection = (*connection)(nil)

func newConnection(c Client, res *mcp.InitializeResult) *connection {
	conn := &connection{client: c, caps: c.GetServerCapabilities()}
	if res != nil {
		conn.info = res.ServerInfo
	}
	return conn
}

func (c *connection) ServerInfo() mcp.Implementation { return c.info }

func (c *connection) Capabilities() primitive.Capabilities {
	return primitive.Capabilities{
		Resources: c.caps.Resources != nil,
		Tools:     c.caps.Tools != nil,
		Prompts:   c.caps.Prompts != nil,
	}
}

func (c *connection) ListResources(ctx context.Context) ([]primitive.Primitive, error) {
	res, err := c.client.ListResources(ctx, mcp.ListResourcesRequest{})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.Primitive, 0, len(res.Resources))
	for _, r := range res.Resources {
		out = append(out, primitive.Primitive{
			Kind:        primitive.KindResource,
			Name:        r.Name,
			Description: r.Description,
			URI:         r.URI,
			MIMEType:    r.MIMEType,
		})
	}
	return out, nil
}

func (c *connection) ListResourceTemplates(ctx context.Context) ([]primitive.Primitive, error) {
	res, err := c.client.ListResourceTemplates(ctx, mcp.ListResourceTemplatesRequest{})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.Primitive, 0, len(res.ResourceTemplates))
	for _, r := range res.ResourceTemplates {
		p := primitive.Primitive{
			Kind:        primitive.KindResourceTemplate,
			Name:        r.Name,
			Description: r.Description,
			MIMEType:    r.MIMEType,
		}
		if r.URITemplate != nil && r.URITemplate.Template != nil {
			p.URITemplate = r.URITemplate.Raw()
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *connection) ListTools(ctx context.Context) ([]primitive.Primitive, error) {
	src, _ := c.client.(toolPageSource)
	if src != nil {
		src.toolPages()
	}
	res, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	var orders map[string]map[string][]string
	if src != nil {
		orders = propertyOrders(src.toolPages())
	}
	out := make([]primitive.Primitive, 0, len(res.Tools))
	for _, t := range res.Tools {
		schema, err := inputSchema(t)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding input schema of tool %s", t.Name)
		}
		out = append(out, primitive.Primitive{
			Kind:          primitive.KindTool,
			Name:          t.Name,
			Description:   t.Description,
			InputSchema:   schema,
			PropertyOrder: orders[t.Name],
		})
	}
	return out, nil
}

// inputSchema returns the tool schema as a generic JSON tree.
func inputSchema(t mcp.Tool) (map[string]any, error) {
	raw := []byte(t.RawInputSchema)
	if len(raw) == 0 {
		var err error
		if raw, err = json.Marshal(t.InputSchema); err != nil {
			return nil, err
		}
	}
	var schema map[string]any
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, err
	}
	return schema, nil
}

func (c *connection) ListPrompts(ctx context.Context) ([]primitive.Primitive, error) {
	res, err := c.client.ListPrompts(ctx, mcp.ListPromptsRequest{})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.Primitive, 0, len(res.Prompts))
	for _, p := range res.Prompts {
		args := make([]primitive.Argument, 0, len(p.Arguments))
		for _, a := range p.Arguments {
			args = append(args, primitive.Argument{Name: a.Name, Description: a.Description, Required: a.Required})
		}
		out = append(out, primitive.Primitive{
			Kind:        primitive.KindPrompt,
			Name:        p.Name,
			Description: p.Description,
			Arguments:   args,
		})
	}
	return out, nil
}

func (c *connection) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	res, err := c.client.ReadResource(ctx, req)
	return res, errors.Mark(errors.Wrapf(err, "reading resource %s", uri), errors.ErrInvocation)
}

func (c *connection) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args == nil {
		args = map[string]any{}
	}
	req.Params.Arguments = args
	res, err := c.client.CallTool(ctx, req)
	return res, errors.Mark(errors.Wrapf(err, "calling tool %s", name), errors.ErrInvocation)
}

func (c *connection) GetPrompt(ctx context.Context, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	req := mcp.GetPromptRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.client.GetPrompt(ctx, req)
	return res, errors.Mark(errors.Wrapf(err, "getting prompt %s", name), errors.ErrInvocation)
}

func (c *connection) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.client.Close()
	})
	return c.closeErr
}
