package primitive

import (
	"context"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

type mockLister struct {
	mock.Mock
	caps Capabilities
}

func (m *mockLister) Capabilities() Capabilities { return m.caps }

func (m *mockLister) list(method string, ctx context.Context) ([]Primitive, error) {
	args := m.MethodCalled(method, ctx)
	ps, _ := args.Get(0).([]Primitive)
	return ps, args.Error(1)
}

func (m *mockLister) ListResources(ctx context.Context) ([]Primitive, error) {
	return m.list("ListResources", ctx)
}

func (m *mockLister) ListResourceTemplates(ctx context.Context) ([]Primitive, error) {
	return m.list("ListResourceTemplates", ctx)
}

func (m *mockLister) ListTools(ctx context.Context) ([]Primitive, error) {
	return m.list("ListTools", ctx)
}

func (m *mockLister) ListPrompts(ctx context.Context) ([]Primitive, error) {
	return m.list("ListPrompts", ctx)
}

func TestDiscover_ToolsOnly(t *testing.T) {
	m := &mockLister{caps: Capabilities{Tools: true}}
	m.On("ListTools", mock.Anything).Return([]Primitive{
		{Kind: KindTool, Name: "echo"},
		{Kind: KindTool, Name: "add"},
	}, nil)

	catalog, err := Discover(t.Context(), m)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, "echo", catalog[0].Name)

	m.AssertExpectations(t)
	m.AssertNotCalled(t, "ListResources", mock.Anything)
	m.AssertNotCalled(t, "ListResourceTemplates", mock.Anything)
	m.AssertNotCalled(t, "ListPrompts", mock.Anything)
}

func TestDiscover_Order(t *testing.T) {
	m := &mockLister{caps: Capabilities{Resources: true, Tools: true, Prompts: true}}
	m.On("ListPrompts", mock.Anything).Return([]Primitive{{Kind: KindPrompt, Name: "p"}}, nil)
	m.On("ListTools", mock.Anything).Return([]Primitive{{Kind: KindTool, Name: "t"}}, nil)
	m.On("ListResourceTemplates", mock.Anything).Return([]Primitive{{Kind: KindResourceTemplate, Name: "rt"}}, nil)
	m.On("ListResources", mock.Anything).Return([]Primitive{{Kind: KindResource, Name: "r"}}, nil)

	catalog, err := Discover(t.Context(), m)
	require.NoError(t, err)

	var kinds []Kind
	for _, p := range catalog {
		kinds = append(kinds, p.Kind)
	}
	assert.Equal(t, []Kind{KindResource, KindResourceTemplate, KindTool, KindPrompt}, kinds)
}

func TestDiscover_NoCapabilities(t *testing.T) {
	m := &mockLister{}
	catalog, err := Discover(t.Context(), m)
	require.NoError(t, err)
	assert.Empty(t, catalog)
	m.AssertExpectations(t)
}

func TestDiscover_ListingError(t *testing.T) {
	m := &mockLister{caps: Capabilities{Tools: true, Prompts: true}}
	m.On("ListTools", mock.Anything).Return(nil, errors.New("boom"))
	m.On("ListPrompts", mock.Anything).Return([]Primitive{}, nil).Maybe()

	_, err := Discover(t.Context(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing tools")
}

func TestDiscover_TemplatesMethodNotFound(t *testing.T) {
	m := &mockLister{caps: Capabilities{Resources: true}}
	m.On("ListResources", mock.Anything).Return([]Primitive{{Kind: KindResource, Name: "readme"}}, nil)
	m.On("ListResourceTemplates", mock.Anything).
		Return(nil, fmt.Errorf("%w: resources/templates/list", mcp.ErrMethodNotFound))

	catalog, err := Discover(t.Context(), m)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "readme", catalog[0].Name)
	m.AssertExpectations(t)
}

func TestDiscover_TemplatesOtherErrorFails(t *testing.T) {
	m := &mockLister{caps: Capabilities{Resources: true}}
	m.On("ListResources", mock.Anything).Return([]Primitive{}, nil).Maybe()
	m.On("ListResourceTemplates", mock.Anything).Return(nil, mcp.ErrInternalError)

	_, err := Discover(t.Context(), m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mcp.ErrInternalError))
}

func TestCatalog(t *testing.T) {
	c := Catalog{
		{Kind: KindResource, Name: "readme", URI: "file:///README.md"},
		{Kind: KindTool, Name: "echo", Description: "Echo text back\nMore detail."},
		{Kind: KindPrompt, Name: "echo"},
	}

	p, ok := c.Find(KindTool, "echo")
	require.True(t, ok)
	assert.Equal(t, "tool(echo) - Echo text back", p.Label())

	_, ok = c.Find(KindTool, "missing")
	assert.False(t, ok)

	assert.Len(t, c.Of(KindPrompt), 1)
	assert.Equal(t, "resources, prompts", Capabilities{Resources: true, Prompts: true}.String())
	assert.Equal(t, "none", Capabilities{}.String())
	assert.Equal(t, "resource-template", KindResourceTemplate.String())
}
