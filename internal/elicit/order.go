package elicit

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// PropertyOrder reads a raw JSON schema and returns, for every object
// node with properties, the property names in declaration order. Keys are
// dotted property paths; the root object is "".
func PropertyOrder(raw []byte) (map[string][]string, error) {
	order := make(map[string][]string)
	if len(bytes.TrimSpace(raw)) == 0 {
		return order, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := schemaOrder(dec, nil, order); err != nil {
		return nil, errors.Wrap(err, "reading schema property order")
	}
	return order, nil
}

// schemaOrder consumes one schema value.
func schemaOrder(dec *json.Decoder, segments []string, order map[string][]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return skipRest(dec, tok)
	}

	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return err
		}
		if key != "properties" {
			if err := skipValue(dec); err != nil {
				return err
			}
			continue
		}

		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			if err := skipRest(dec, tok); err != nil {
				return err
			}
			continue
		}
		var names []string
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return err
			}
			name, _ := nameTok.(string)
			names = append(names, name)
			if err := schemaOrder(dec, append(slices.Clip(segments), name), order); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
		order[strings.Join(segments, ".")] = names
	}

	_, err = dec.Token()
	return err
}

func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	return skipRest(dec, tok)
}

// skipRest consumes the remainder of a value that started with tok.
func skipRest(dec *json.Decoder, tok json.Token) error {
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	for depth := 1; depth > 0; {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := t.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// orderedNames returns the keys of props, declared ones first in the given
// order and the rest sorted.
func orderedNames(props map[string]any, declared []string) []string {
	names := make([]string, 0, len(props))
	seen := make(map[string]bool, len(props))
	for _, name := range declared {
		if _, ok := props[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(props)-len(names))
	for name := range props {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}
