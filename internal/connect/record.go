package connect

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/mcpcli/internal/elicit"
)

// schemaRecorder passes every request through and keeps the raw results of
// tools/list, whose input schemas still carry property declaration order.
type schemaRecorder struct {
	transport.Interface

	mu    sync.Mutex
	pages []json.RawMessage
}

func (r *schemaRecorder) SendRequest(ctx context.Context, req transport.JSONRPCRequest) (*transport.JSONRPCResponse, error) {
	resp, err := r.Interface.SendRequest(ctx, req)
	if err == nil && resp != nil && resp.Error == nil && req.Method == string(mcp.MethodToolsList) {
		r.mu.Lock()
		r.pages = append(r.pages, resp.Result)
		r.mu.Unlock()
	}
	return resp, err
}

// take returns and forgets the recorded pages.
func (r *schemaRecorder) take() []json.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	pages := r.pages
	r.pages = nil
	return pages
}

// The client probes its transport for these; forward to the wrapped one.

func (r *schemaRecorder) SetRequestHandler(h transport.RequestHandler) {
	if b, ok := r.Interface.(transport.BidirectionalInterface); ok {
		b.SetRequestHandler(h)
	}
}

func (r *schemaRecorder) SetProtocolVersion(version string) {
	if h, ok := r.Interface.(transport.HTTPConnection); ok {
		h.SetProtocolVersion(version)
	}
}

func (r *schemaRecorder) SetConnectionLostHandler(f func(error)) {
	if s, ok := r.Interface.(interface{ SetConnectionLostHandler(func(error)) }); ok {
		s.SetConnectionLostHandler(f)
	}
}

// recordingClient is a *client.Client over a schemaRecorder.
type recordingClient struct {
	*client.Client
	rec *schemaRecorder
}

func newRecordingClient(t transport.Interface) *recordingClient {
	rec := &schemaRecorder{Interface: t}
	return &recordingClient{Client: client.NewClient(rec), rec: rec}
}

func (c *recordingClient) toolPages() []json.RawMessage { return c.rec.take() }

// toolPageSource is implemented by clients that keep raw tool listings.
type toolPageSource interface {
	toolPages() []json.RawMessage
}

// propertyOrders maps tool names to the property order of their input
// schemas. Pages that do not decode are ignored; those tools fall back to
// sorted order.
func propertyOrders(pages []json.RawMessage) map[string]map[string][]string {
	out := make(map[string]map[string][]string)
	for _, page := range pages {
		var listing struct {
			Tools []struct {
				Name        string          `json:"name"`
				InputSchema json.RawMessage `json:"inputSchema"`
			} `json:"tools"`
		}
		if err := json.Unmarshal(page, &listing); err != nil {
			continue
		}
		for _, t := range listing.Tools {
			if order, err := elicit.PropertyOrder(t.InputSchema); err == nil && len(order) > 0 {
				out[t.Name] = order
			}
		}
	}
	return out
}
