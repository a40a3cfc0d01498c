package primitive

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// Lister lists the primitives of a connected server.
type Lister interface {
	Capabilities() Capabilities
	ListResources(ctx context.Context) ([]Primitive, error)
	ListResourceTemplates(ctx context.Context) ([]Primitive, error)
	ListTools(ctx context.Context) ([]Primitive, error)
	ListPrompts(ctx context.Context) ([]Primitive, error)
}

// Discover lists every advertised family concurrently and merges the
// results in catalog order. Families the server does not advertise are not
// requested. The first listing error fails discovery, except method not
// found from the template listing, which some servers advertising resources
// answer and which counts as no templates.
func Discover(ctx context.Context, l Lister) (Catalog, error) {
	caps := l.Capabilities()

	var resources, templates, tools, prompts []Primitive
	g, gctx := errgroup.WithContext(ctx)

	if caps.Resources {
		g.Go(func() (err error) {
			resources, err = l.ListResources(gctx)
			return errors.Wrap(err, "listing resources")
		})
		g.Go(func() (err error) {
			templates, err = l.ListResourceTemplates(gctx)
			if errors.Is(err, mcp.ErrMethodNotFound) {
				templates = nil
				return nil
			}
			return errors.Wrap(err, "listing resource templates")
		})
	}
	if caps.Tools {
		g.Go(func() (err error) {
			tools, err = l.ListTools(gctx)
			return errors.Wrap(err, "listing tools")
		})
	}
	if caps.Prompts {
		g.Go(func() (err error) {
			prompts, err = l.ListPrompts(gctx)
			return errors.Wrap(err, "listing prompts")
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := make(Catalog, 0, len(resources)+len(templates)+len(tools)+len(prompts))
	catalog = append(catalog, resources...)
	catalog = append(catalog, templates...)
	catalog = append(catalog, tools...)
	catalog = append(catalog, prompts...)
	return catalog, nil
}
