package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/thoreinstein/mcpcli/internal/cli/prompt"
	"github.com/thoreinstein/mcpcli/internal/connect"
	"github.com/thoreinstein/mcpcli/internal/elicit"
	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/present"
	"github.com/thoreinstein/mcpcli/internal/primitive"
)

// Presenter renders progress and results.
type Presenter interface {
	Spinner(text string) present.Spinner
	Print(v any) error
	Errorf(format string, args ...any)
}

// Selector picks the next primitive.
type Selector interface {
	SelectPrimitive(catalog primitive.Catalog) (primitive.Primitive, error)
}

var (
	_ Presenter = (*present.Presenter)(nil)
	_ Selector  = (*prompt.Selector)(nil)
)

// Loop is the interactive session over one Connection.
type Loop struct {
	Conn      connect.Connection
	Selector  Selector
	Prompter  elicit.Prompter
	Presenter Presenter
	Logger    *slog.Logger

	// RPCTimeout bounds each invocation; zero waits indefinitely.
	RPCTimeout time.Duration

	// Catalog is discovered on Run when nil.
	Catalog primitive.Catalog
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// Run discovers the catalog and then selects, elicits, invokes and
// presents until the operator cancels a selection. Cancellation closes the
// connection and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	log := l.logger()

	catalog := l.Catalog
	if catalog == nil {
		var err error
		if catalog, err = primitive.Discover(ctx, l.Conn); err != nil {
			_ = l.Conn.Close()
			return errors.Mark(err, errors.ErrInvocation)
		}
	}
	if len(catalog) == 0 {
		log.Warn("server exposes no primitives")
	}

	for {
		p, err := l.Selector.SelectPrimitive(catalog)
		if errors.IsAny(err, prompt.ErrSelectionCancelled, prompt.ErrNoChoices) {
			log.Debug("selection ended", "reason", err)
			if cerr := l.Conn.Close(); cerr != nil {
				log.Debug("closing connection", "error", cerr)
			}
			return nil
		}
		if errors.Is(err, prompt.ErrInvalidSelection) {
			l.Presenter.Errorf("%v", err)
			continue
		}
		if err != nil {
			_ = l.Conn.Close()
			return errors.Wrap(err, "selecting primitive")
		}

		if err := l.Step(ctx, p); err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				log.Info("input aborted", "primitive", p.Name)
				continue
			}
			if ctx.Err() != nil {
				_ = l.Conn.Close()
				return ctx.Err()
			}
			l.Presenter.Errorf("%v", err)
		}
	}
}

// Step elicits arguments for p, invokes it and presents the outcome. RPC
// failures are presented and not returned; elicitation errors are returned.
func (l *Loop) Step(ctx context.Context, p primitive.Primitive) error {
	var (
		text   string
		invoke func(ctx context.Context) (any, error)
	)

	switch p.Kind {
	case primitive.KindResource:
		text = "Reading resource " + p.URI + "..."
		invoke = func(ctx context.Context) (any, error) {
			return l.Conn.ReadResource(ctx, p.URI)
		}

	case primitive.KindResourceTemplate:
		te := &elicit.TemplateElicitor{Prompter: l.Prompter}
		uri, ok, err := te.Resolve(ctx, p.URITemplate)
		if err != nil {
			return err
		}
		if !ok {
			l.logger().Info("skipped", "template", p.URITemplate)
			return nil
		}
		text = "Reading resource " + uri + "..."
		invoke = func(ctx context.Context) (any, error) {
			return l.Conn.ReadResource(ctx, uri)
		}

	case primitive.KindTool:
		w := &elicit.SchemaWalker{Prompter: l.Prompter, Order: p.PropertyOrder}
		args, err := w.Elicit(ctx, p.InputSchema)
		if err != nil {
			return err
		}
		text = "Using tool " + p.Name + "..."
		invoke = func(ctx context.Context) (any, error) {
			return l.Conn.CallTool(ctx, p.Name, args)
		}

	case primitive.KindPrompt:
		args, err := elicit.PromptArguments(ctx, l.Prompter, p.Arguments)
		if err != nil {
			return err
		}
		text = "Using prompt " + p.Name + "..."
		invoke = func(ctx context.Context) (any, error) {
			return l.Conn.GetPrompt(ctx, p.Name, args)
		}

	default:
		return errors.Newf("unsupported primitive kind %s", p.Kind)
	}

	spin := l.Presenter.Spinner(text)
	res, err := withTimeout(ctx, l.RPCTimeout, invoke)
	if err != nil {
		spin.Error(err.Error())
		l.logger().Debug("invocation failed", "primitive", p.Name, "error", err)
		return nil
	}
	spin.Success("")
	return l.Presenter.Print(res)
}

func withTimeout(ctx context.Context, d time.Duration, f func(context.Context) (any, error)) (any, error) {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return f(ctx)
}
