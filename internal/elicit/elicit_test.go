package elicit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpcli/internal/errors"
	"github.com/thoreinstein/mcpcli/internal/primitive"
)

// scripted answers prompts by title and records what was asked.
type scripted struct {
	text    map[string]string
	confirm map[string]bool
	asked   []string
	fields  []Field
	err     error
}

func (s *scripted) record(f Field) {
	s.asked = append(s.asked, f.Title)
	s.fields = append(s.fields, f)
}

func (s *scripted) Text(_ context.Context, f Field) (string, error) {
	s.record(f)
	return s.text[f.Title], s.err
}

func (s *scripted) Number(_ context.Context, f Field) (string, error) {
	s.record(f)
	v := s.text[f.Title]
	if err := ValidateNumber(f, v); err != nil {
		return "", err
	}
	return v, s.err
}

func (s *scripted) Confirm(_ context.Context, f Field, initial bool) (bool, error) {
	s.record(f)
	if v, ok := s.confirm[f.Title]; ok {
		return v, s.err
	}
	return initial, s.err
}

func TestQuestions_ScalarLeafPaths(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []any{"name"},
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "description": "Who"},
			"age":  map[string]any{"type": "integer", "minimum": 0.0, "exclusiveMaximum": 150.0},
			"address": map[string]any{
				"type":     "object",
				"required": []any{"city"},
				"properties": map[string]any{
					"city": map[string]any{"type": "string"},
					"zip":  map[string]any{"type": "string", "default": "00000"},
				},
			},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"id": map[string]any{"type": "string"}},
				},
			},
			"verbose": map[string]any{"type": "boolean", "default": true},
			"any":     map[string]any{"type": "null"},
		},
	}

	qs := Questions(schema)

	var paths []string
	for _, q := range qs {
		paths = append(paths, q.Path)
	}
	assert.Equal(t, []string{"address.city", "address.zip", "age", "name", "verbose"}, paths)

	byPath := map[string]Question{}
	for _, q := range qs {
		byPath[q.Path] = q
	}
	assert.True(t, byPath["address.city"].Required)
	assert.False(t, byPath["address.zip"].Required)
	assert.Equal(t, "00000", byPath["address.zip"].Default)
	assert.True(t, byPath["name"].Required)
	assert.Equal(t, "Who", byPath["name"].Description)

	age := byPath["age"]
	assert.Equal(t, KindNumber, age.Kind)
	assert.True(t, age.Integer)
	require.NotNil(t, age.Min)
	require.NotNil(t, age.Max)
	assert.InDelta(t, 0, *age.Min, 0)
	assert.InDelta(t, 150, *age.Max, 0)

	assert.Equal(t, KindBoolean, byPath["verbose"].Kind)
}

func TestQuestions_Empty(t *testing.T) {
	assert.Empty(t, Questions(nil))
	assert.Empty(t, Questions(map[string]any{"type": "object"}))
	assert.Empty(t, Questions(map[string]any{"type": "string"}))
}

func TestSchemaWalker_Elicit(t *testing.T) {
	schema := map[string]any{
		"type":     "object",
		"required": []any{"text"},
		"properties": map[string]any{
			"text":  map[string]any{"type": "string"},
			"count": map[string]any{"type": "integer"},
			"ratio": map[string]any{"type": "number"},
			"note":  map[string]any{"type": "string"},
			"opts": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"loud": map[string]any{"type": "boolean"},
					"deep": map[string]any{
						"type":       "object",
						"properties": map[string]any{"level": map[string]any{"type": "integer"}},
					},
				},
			},
		},
	}
	p := &scripted{
		text: map[string]string{
			"* text":          "hi",
			"count":           "3",
			"ratio":           "0.5",
			"note":            "",
			"opts.deep.level": "",
		},
		confirm: map[string]bool{"opts.loud": true},
	}
	w := &SchemaWalker{Prompter: p}

	args, err := w.Elicit(t.Context(), schema)
	require.NoError(t, err)
	assert.Equal(t, Arguments{
		"text":  "hi",
		"count": int64(3),
		"ratio": 0.5,
		"opts":  map[string]any{"loud": true},
	}, args)
	assert.Equal(t, []string{"count", "note", "opts.deep.level", "opts.loud", "ratio", "* text"}, p.asked)
}

func TestSchemaWalker_NoSchema(t *testing.T) {
	p := &scripted{}
	w := &SchemaWalker{Prompter: p}

	args, err := w.Elicit(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, Arguments{}, args)
	assert.Empty(t, p.asked)
}

func TestSchemaWalker_ArraySubtreeNeverPrompted(t *testing.T) {
	p := &scripted{}
	w := &SchemaWalker{Prompter: p}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"list": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "object", "properties": map[string]any{"x": map[string]any{"type": "string"}}},
			},
		},
	}

	args, err := w.Elicit(t.Context(), schema)
	require.NoError(t, err)
	assert.Empty(t, args)
	assert.Empty(t, p.asked)
}

func TestSchemaWalker_PrompterError(t *testing.T) {
	p := &scripted{err: errors.New("aborted")}
	w := &SchemaWalker{Prompter: p}
	_, err := w.Elicit(t.Context(), map[string]any{
		"properties": map[string]any{"a": map[string]any{"type": "string"}},
	})
	require.Error(t, err)
}

func TestPropertyOrder(t *testing.T) {
	raw := []byte(`{
		"type": "object",
		"$defs": {"x": {"properties": {"ignored": {}}}},
		"properties": {
			"path": {"type": "string"},
			"content": {"type": "string", "enum": ["a", {"b": [1, 2]}]},
			"opts": {"type": "object", "properties": {"z": {"type": "boolean"}, "a": {"type": "string"}}},
			"tags": {"type": "array", "items": {"type": "object", "properties": {"k": {}}}}
		}
	}`)

	order, err := PropertyOrder(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"":     {"path", "content", "opts", "tags"},
		"opts": {"z", "a"},
	}, order)

	empty, err := PropertyOrder(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = PropertyOrder([]byte(`{"properties": {"a": `))
	require.Error(t, err)
}

func TestSchemaWalker_DeclarationOrder(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path":    map[string]any{"type": "string"},
			"content": map[string]any{"type": "string"},
			"opts": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"z": map[string]any{"type": "string"},
					"a": map[string]any{"type": "string"},
				},
			},
			"extra": map[string]any{"type": "string"},
		},
	}
	order := map[string][]string{
		"":     {"path", "content", "opts", "gone"},
		"opts": {"z", "a"},
	}

	p := &scripted{}
	w := &SchemaWalker{Prompter: p, Order: order}
	_, err := w.Elicit(t.Context(), schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"path", "content", "opts.z", "opts.a", "extra"}, p.asked)

	var paths []string
	for _, q := range Questions(schema) {
		paths = append(paths, q.Path)
	}
	assert.Equal(t, []string{"content", "extra", "opts.a", "opts.z", "path"}, paths)
}

func TestValidateNumber(t *testing.T) {
	one, ten := 1.0, 10.0
	f := Field{Integer: true, Min: &one, Max: &ten}

	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"5", false},
		{"1", false},
		{"10", false},
		{"0", true},
		{"11", true},
		{"2.5", true},
		{"abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateNumber(f, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.NoError(t, ValidateNumber(Field{}, "2.5"))
	assert.True(t, errors.Is(ValidateNumber(Field{}, "x"), ErrNotANumber))
}

func TestTemplateElicitor_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		read   bool
		want   string
		wantOK bool
	}{
		{name: "confirmed", read: true, want: "/items/42", wantOK: true},
		{name: "skipped", read: false, want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scripted{
				text:    map[string]string{"id": "42"},
				confirm: map[string]bool{"/items/42": tt.read},
			}
			e := &TemplateElicitor{Prompter: p}

			uri, ok, err := e.Resolve(t.Context(), "/items/{id}")
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, uri)
			assert.Equal(t, []string{"id", "/items/42"}, p.asked)

			confirm := p.fields[1]
			assert.Equal(t, "Read", confirm.Affirmative)
			assert.Equal(t, "Skip", confirm.Negative)
		})
	}
}

func TestTemplateElicitor_PreviewProgresses(t *testing.T) {
	p := &scripted{
		text:    map[string]string{"owner": "octo", "repo": "hello"},
		confirm: map[string]bool{},
	}
	e := &TemplateElicitor{Prompter: p}

	uri, ok, err := e.Resolve(t.Context(), "repo://{owner}/{repo}/readme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "repo://octo/hello/readme", uri)

	require.Len(t, p.fields, 3)
	assert.Contains(t, p.fields[0].Description, "repo://{owner}/{repo}/readme")
	assert.Contains(t, p.fields[1].Description, "repo://octo/{repo}/readme")
}

func TestTemplateElicitor_InvalidTemplate(t *testing.T) {
	e := &TemplateElicitor{Prompter: &scripted{}}
	_, _, err := e.Resolve(t.Context(), "/items/{id")
	require.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "/a/{b}/{?q}", Preview("/a/{b}/{?q}", nil))
}

func TestPromptArguments(t *testing.T) {
	p := &scripted{text: map[string]string{"* city": "Oslo", "units": ""}}
	args := []primitive.Argument{
		{Name: "city", Description: "City name", Required: true},
		{Name: "units"},
	}

	got, err := PromptArguments(t.Context(), p, args)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"city": "Oslo"}, got)
	assert.Equal(t, []string{"* city", "units"}, p.asked)
	assert.Equal(t, "City name", p.fields[0].Description)
}
