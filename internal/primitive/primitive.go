// Package primitive models the things an MCP server exposes and discovers
// them from a connected session.
package primitive

import (
	"fmt"
	"strings"
)

// Kind tags the variant of a Primitive.
type Kind int

const (
	KindResource Kind = iota
	KindResourceTemplate
	KindTool
	KindPrompt
)

func (k Kind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindResourceTemplate:
		return "resource-template"
	case KindTool:
		return "tool"
	case KindPrompt:
		return "prompt"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Argument is a named string argument of a prompt.
type Argument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Primitive is one invocable item. Exactly one of URI, URITemplate,
// InputSchema or Arguments is meaningful, selected by Kind.
type Primitive struct {
	Kind        Kind
	Name        string
	Description string

	URI         string
	URITemplate string
	MIMEType    string
	InputSchema map[string]any
	Arguments   []Argument

	// PropertyOrder holds the declaration order of InputSchema properties
	// per dotted object path, when the listing preserved it.
	PropertyOrder map[string][]string
}

// Label is the one-line rendering used by selectors.
func (p Primitive) Label() string {
	var b strings.Builder
	b.WriteString(p.Kind.String())
	b.WriteString("(")
	b.WriteString(p.Name)
	b.WriteString(")")
	if d := firstLine(p.Description); d != "" {
		b.WriteString(" - ")
		b.WriteString(d)
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

// Capabilities are the primitive families a server advertises.
type Capabilities struct {
	Resources bool
	Tools     bool
	Prompts   bool
}

func (c Capabilities) String() string {
	var names []string
	if c.Resources {
		names = append(names, "resources")
	}
	if c.Tools {
		names = append(names, "tools")
	}
	if c.Prompts {
		names = append(names, "prompts")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// Catalog is the ordered result of discovery: resources, templates, tools,
// prompts.
type Catalog []Primitive

// Of returns the primitives of kind k, in catalog order.
func (c Catalog) Of(k Kind) Catalog {
	var out Catalog
	for _, p := range c {
		if p.Kind == k {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the first primitive of kind k named name.
func (c Catalog) Find(k Kind, name string) (Primitive, bool) {
	for _, p := range c {
		if p.Kind == k && p.Name == name {
			return p, true
		}
	}
	return Primitive{}, false
}
