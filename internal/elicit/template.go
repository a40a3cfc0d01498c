package elicit

import (
	"context"
	"regexp"
	"strings"

	"github.com/yosida95/uritemplate/v3"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// expression matches one {...} part of a URI template.
var expression = regexp.MustCompile(`\{[^{}]*\}`)

// TemplateElicitor fills in a resource URI template.
type TemplateElicitor struct {
	Prompter Prompter
}

// Resolve asks for each template variable in declaration order, then for
// confirmation of the expanded URI. ok is false when the operator skips.
func (e *TemplateElicitor) Resolve(ctx context.Context, tmpl string) (string, bool, error) {
	t, err := uritemplate.New(tmpl)
	if err != nil {
		return "", false, errors.Wrapf(err, "parsing URI template %q", tmpl)
	}

	values := uritemplate.Values{}
	for _, name := range t.Varnames() {
		v, err := e.Prompter.Text(ctx, Field{
			Title:       name,
			Description: tmpl + "\n" + Preview(tmpl, values),
		})
		if err != nil {
			return "", false, err
		}
		values.Set(name, uritemplate.String(v))
	}

	uri, err := t.Expand(values)
	if err != nil {
		return "", false, errors.Wrapf(err, "expanding URI template %q", tmpl)
	}

	read, err := e.Prompter.Confirm(ctx, Field{
		Title:       uri,
		Affirmative: "Read",
		Negative:    "Skip",
	}, true)
	if err != nil || !read {
		return "", false, err
	}
	return uri, true, nil
}

// Preview renders tmpl with the expressions whose variables are all known
// expanded and the rest left verbatim.
func Preview(tmpl string, values uritemplate.Values) string {
	var b strings.Builder
	last := 0
	for _, loc := range expression.FindAllStringIndex(tmpl, -1) {
		b.WriteString(tmpl[last:loc[0]])
		b.WriteString(previewExpr(tmpl[loc[0]:loc[1]], values))
		last = loc[1]
	}
	b.WriteString(tmpl[last:])
	return b.String()
}

func previewExpr(expr string, values uritemplate.Values) string {
	t, err := uritemplate.New(expr)
	if err != nil {
		return expr
	}
	for _, name := range t.Varnames() {
		if !values.Get(name).Valid() {
			return expr
		}
	}
	s, err := t.Expand(values)
	if err != nil {
		return expr
	}
	return s
}
