package session

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/thoreinstein/mcpcli/internal/errors"
)

// ValidateArguments checks args against a tool's JSON Schema. A nil schema
// accepts anything.
func ValidateArguments(schema map[string]any, args map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return errors.Wrap(err, "encoding input schema")
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("input.json", bytes.NewReader(data)); err != nil {
		return errors.Wrap(err, "loading input schema")
	}
	s, err := c.Compile("input.json")
	if err != nil {
		return errors.Wrap(err, "compiling input schema")
	}

	// Round-trip so numbers and nested values have their JSON shapes.
	var doc any = map[string]any{}
	if args != nil {
		raw, err := json.Marshal(args)
		if err != nil {
			return errors.Wrap(err, "encoding arguments")
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return errors.Wrap(err, "decoding arguments")
		}
	}
	if err := s.Validate(doc); err != nil {
		return errors.Markf(err, errors.ErrArgumentParse, "arguments do not match input schema")
	}
	return nil
}
