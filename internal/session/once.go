package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/mcpcli/internal/connect"
	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/primitive"
)

// Command names a single-shot operation.
type Command string

const (
	ListTools    Command = "list-tools"
	CallTool     Command = "call-tool"
	ReadResource Command = "read-resource"
	GetPrompt    Command = "get-prompt"
)

// Request is a parsed single-shot invocation.
type Request struct {
	Command Command
	Server  string
	// Target is the tool or prompt name, or the resource URI.
	Target string
	Args   map[string]any
}

// ParseRequest splits a "server:target" address and decodes rawArgs. It
// runs before any connection is made so malformed input never reaches the
// server.
func ParseRequest(cmd Command, address, rawArgs string) (Request, error) {
	req := Request{Command: cmd}

	if cmd == ListTools {
		req.Server = address
	} else {
		server, target, ok := strings.Cut(address, ":")
		if !ok || server == "" || target == "" {
			return Request{}, errors.Markf(errors.Newf("%q", address), errors.ErrArgumentParse,
				"expected server:target")
		}
		req.Server, req.Target = server, target
	}
	if req.Server == "" {
		return Request{}, errors.Mark(errors.New("server name is required"), errors.ErrArgumentParse)
	}

	if strings.TrimSpace(rawArgs) != "" {
		if err := json.Unmarshal([]byte(rawArgs), &req.Args); err != nil {
			return Request{}, errors.Markf(err, errors.ErrArgumentParse, "invalid --args JSON")
		}
	}
	return req, nil
}

// Dialer opens the connection to a named server.
type Dialer func(ctx context.Context, server string) (connect.Connection, error)

// Printer writes one result document.
type Printer interface {
	Print(v any) error
}

// Once runs single-shot requests.
type Once struct {
	Dial   Dialer
	Out    Printer
	Logger *slog.Logger

	// Validate checks call-tool arguments against the tool's input schema
	// before invoking it.
	Validate   bool
	RPCTimeout time.Duration
}

// Invoke parses a command line request and runs it. Parse failures are
// reported like any other failure, before anything is dialed.
func (o *Once) Invoke(ctx context.Context, cmd Command, address, rawArgs string) error {
	req, err := ParseRequest(cmd, address, rawArgs)
	if err != nil {
		return o.fail(err)
	}
	return o.Run(ctx, req)
}

// Run performs exactly one discovery and one invocation and prints a single
// JSON document. On failure the document is {"error": "..."} and the error
// is returned for the exit status.
func (o *Once) Run(ctx context.Context, req Request) error {
	res, err := o.run(ctx, req)
	if err != nil {
		return o.fail(err)
	}
	return o.Out.Print(res)
}

func (o *Once) fail(err error) error {
	if perr := o.Out.Print(map[string]string{"error": err.Error()}); perr != nil {
		return errors.Wrap(perr, "writing error")
	}
	return err
}

func (o *Once) run(ctx context.Context, req Request) (any, error) {
	conn, err := o.Dial(ctx, req.Server)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	catalog, err := primitive.Discover(ctx, conn)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrInvocation)
	}

	return withTimeout(ctx, o.RPCTimeout, func(ctx context.Context) (any, error) {
		return o.dispatch(ctx, conn, catalog, req)
	})
}

func (o *Once) dispatch(ctx context.Context, conn connect.Connection, catalog primitive.Catalog, req Request) (any, error) {
	switch req.Command {
	case ListTools:
		return toolList(catalog.Of(primitive.KindTool)), nil

	case CallTool:
		tool, ok := catalog.Find(primitive.KindTool, req.Target)
		if !ok {
			return nil, errors.Markf(errors.Newf("tool %q not found", req.Target), errors.ErrInvocation,
				"server %s", req.Server)
		}
		if o.Validate {
			if err := ValidateArguments(tool.InputSchema, req.Args); err != nil {
				return nil, err
			}
		}
		res, err := conn.CallTool(ctx, tool.Name, req.Args)
		if err != nil {
			return nil, err
		}
		return toolOutput(res)

	case ReadResource:
		return conn.ReadResource(ctx, req.Target)

	case GetPrompt:
		args := make(map[string]string, len(req.Args))
		for k, v := range req.Args {
			s, ok := v.(string)
			if !ok {
				data, _ := json.Marshal(v)
				s = string(data)
			}
			args[k] = s
		}
		return conn.GetPrompt(ctx, req.Target, args)

	default:
		return nil, errors.Markf(errors.Newf("unknown command %q", req.Command), errors.ErrArgumentParse, "dispatch")
	}
}

type toolSummary struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema,omitempty"`
}

func toolList(tools primitive.Catalog) []toolSummary {
	out := make([]toolSummary, 0, len(tools))
	for _, t := range tools {
		out = append(out, toolSummary{Name: t.Name, Description: t.Description, InputSchema: t.InputSchema})
	}
	return out
}

// toolOutput prefers structured content. A result flagged as an error is
// returned as an invocation error carrying its text.
func toolOutput(res *mcp.CallToolResult) (any, error) {
	if res.IsError {
		var parts []string
		for _, c := range res.Content {
			if tc, ok := mcp.AsTextContent(c); ok {
				parts = append(parts, tc.Text)
			}
		}
		msg := strings.Join(parts, "\n")
		if msg == "" {
			msg = "tool reported an error"
		}
		return nil, errors.Mark(errors.New(msg), errors.ErrInvocation)
	}
	if res.StructuredContent != nil {
		return res.StructuredContent, nil
	}
	return res, nil
}
