package llm

import "encoding/json"

// Schema is a provider-neutral subset of JSON Schema, sufficient to describe
// the evaluation payload: objects, bounded integers, and strings. Each
// provider adapter converts it to its SDK's native shape.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
}

// Object builds an object schema with every property required, in the
// given order.
func Object(description string, properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:        "object",
		Description: description,
		Properties:  properties,
		Required:    required,
	}
}

// BoundedInt builds an integer schema constrained to [min, max].
func BoundedInt(description string, min, max float64) *Schema {
	return &Schema{
		Type:        "integer",
		Description: description,
		Minimum:     &min,
		Maximum:     &max,
	}
}

// String builds a free-text schema.
func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// AsMap renders the schema as the generic map shape the OpenAI-style and
// Anthropic tool APIs accept.
func (s *Schema) AsMap() map[string]any {
	raw, err := json.Marshal(s)
	if err != nil {
		// Schema contains only marshalable fields; this cannot happen.
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	return m
}
