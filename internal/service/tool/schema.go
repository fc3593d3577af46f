package tool

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/sfbilling/sfbilling/pkg/types"
)

// JSONSchema converts a declarative tool input schema into a JSON Schema document.
// When withRequired is false, the required list is left out.
func JSONSchema(in types.ToolInputSchema, withRequired bool) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(in.Properties)),
	}
	if withRequired && len(in.Required) > 0 {
		s.Required = append([]string(nil), in.Required...)
	}

	for name, p := range in.Properties {
		prop := &jsonschema.Schema{
			Type:        string(p.Type),
			Description: p.Description,
		}
		for _, e := range p.Enum {
			prop.Enum = append(prop.Enum, e)
		}
		if p.Default != nil {
			raw, err := json.Marshal(p.Default)
			if err != nil {
				return nil, fmt.Errorf("invalid default for parameter %s: %w", name, err)
			}
			prop.Default = raw
		}
		s.Properties[name] = prop
	}
	return s, nil
}

// resolveSchema builds the schema the dispatcher checks parameters against.
// Required parameters are not part of it: handlers report those with their own messages.
func resolveSchema(in types.ToolInputSchema) (*jsonschema.Resolved, error) {
	s, err := JSONSchema(in, false)
	if err != nil {
		return nil, err
	}
	return s.Resolve(&jsonschema.ResolveOptions{ValidateDefaults: true})
}
