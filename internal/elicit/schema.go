package elicit

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// QuestionKind selects the prompt used for a Question.
type QuestionKind string

const (
	KindText    QuestionKind = "text"
	KindNumber  QuestionKind = "number"
	KindBoolean QuestionKind = "boolean"
)

// Question is one scalar leaf of a schema.
type Question struct {
	// Path is the dotted key path of the leaf relative to the schema root.
	Path string
	// Segments are the property names along Path.
	Segments []string

	Kind        QuestionKind
	Integer     bool
	Required    bool
	Default     any
	Min         *float64
	Max         *float64
	Description string
}

// Field returns the prompt for q.
func (q Question) Field() Field {
	f := Field{
		Title:       q.Path,
		Description: q.Description,
		Integer:     q.Integer,
		Min:         q.Min,
		Max:         q.Max,
	}
	if q.Required {
		f.Title = "* " + q.Path
	}
	if q.Default != nil && q.Kind != KindBoolean {
		f.Default = fmt.Sprint(q.Default)
	}
	return f
}

// Arguments is a nested argument object.
type Arguments map[string]any

// Questions lists the leaves of schema in traversal order: depth first,
// properties sorted by name. Subtrees of array nodes and leaves of
// unsupported types produce no questions.
func Questions(schema map[string]any) []Question {
	return OrderedQuestions(schema, nil)
}

// OrderedQuestions is Questions with properties visited in the order given
// by order, as returned by PropertyOrder. Properties missing from order
// follow, sorted by name.
func OrderedQuestions(schema map[string]any, order map[string][]string) []Question {
	var qs []Question
	walk(schema, nil, false, order, &qs)
	return qs
}

func walk(node map[string]any, segments []string, required bool, order map[string][]string, qs *[]Question) {
	typ, _ := node["type"].(string)

	switch typ {
	case "array":
		return
	case "string", "integer", "number", "boolean":
		if len(segments) == 0 {
			return
		}
		*qs = append(*qs, leaf(node, typ, segments, required))
		return
	case "object", "":
	default:
		return
	}

	props, ok := node["properties"].(map[string]any)
	if !ok {
		return
	}
	req := requiredSet(node["required"])

	for _, name := range orderedNames(props, order[strings.Join(segments, ".")]) {
		child, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		walk(child, append(slices.Clip(segments), name), req[name], order, qs)
	}
}

func leaf(node map[string]any, typ string, segments []string, required bool) Question {
	q := Question{
		Path:     strings.Join(segments, "."),
		Segments: segments,
		Required: required,
		Default:  node["default"],
	}
	q.Description, _ = node["description"].(string)

	switch typ {
	case "string":
		q.Kind = KindText
	case "boolean":
		q.Kind = KindBoolean
	default:
		q.Kind = KindNumber
		q.Integer = typ == "integer"
		q.Min = firstNumber(node, "minimum", "exclusiveMinimum")
		q.Max = firstNumber(node, "maximum", "exclusiveMaximum")
	}
	return q
}

func requiredSet(v any) map[string]bool {
	set := make(map[string]bool)
	switch names := v.(type) {
	case []any:
		for _, n := range names {
			if s, ok := n.(string); ok {
				set[s] = true
			}
		}
	case []string:
		for _, s := range names {
			set[s] = true
		}
	}
	return set
}

// firstNumber returns the first of keys holding a number.
func firstNumber(node map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		var f float64
		switch v := node[k].(type) {
		case float64:
			f = v
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		default:
			continue
		}
		return &f
	}
	return nil
}

// SchemaWalker asks one question per schema leaf.
type SchemaWalker struct {
	Prompter Prompter
	// Order is the declaration order of properties; nil sorts by name.
	Order    map[string][]string
}

// Elicit prompts for every question of schema in order and assembles the
// answers. Empty text and number answers are omitted. A nil schema or one
// without properties yields an empty object without prompting.
func (w *SchemaWalker) Elicit(ctx context.Context, schema map[string]any) (Arguments, error) {
	args := Arguments{}
	for _, q := range OrderedQuestions(schema, w.Order) {
		v, ok, err := w.ask(ctx, q)
		if err != nil {
			return nil, err
		}
		if ok {
			setPath(args, q.Segments, v)
		}
	}
	return args, nil
}

func (w *SchemaWalker) ask(ctx context.Context, q Question) (any, bool, error) {
	f := q.Field()
	switch q.Kind {
	case KindBoolean:
		initial, _ := q.Default.(bool)
		v, err := w.Prompter.Confirm(ctx, f, initial)
		return v, err == nil, err

	case KindNumber:
		s, err := w.Prompter.Number(ctx, f)
		if err != nil {
			return nil, false, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, false, nil
		}
		n, err := parseNumber(s, q.Integer)
		if err != nil {
			return nil, false, err
		}
		return n, true, nil

	default:
		s, err := w.Prompter.Text(ctx, f)
		if err != nil || s == "" {
			return nil, false, err
		}
		return s, true, nil
	}
}

// setPath stores v under the nested keys of segments, creating objects as
// needed.
func setPath(args Arguments, segments []string, v any) {
	m := map[string]any(args)
	for _, seg := range segments[:len(segments)-1] {
		next, ok := m[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[seg] = next
		}
		m = next
	}
	m[segments[len(segments)-1]] = v
}
