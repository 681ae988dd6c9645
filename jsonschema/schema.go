// Package jsonschema projects a synthesized type graph back into a
// normalized JSON Schema document.
package jsonschema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Draft is the dialect written to "$schema".
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Properties keeps declaration order when marshaled.
type Properties = orderedmap.OrderedMap[string, *Schema]

// Number is a numeric literal emitted verbatim.
type Number string

func (n Number) MarshalJSON() ([]byte, error) { return []byte(n), nil }

// Schema is the exported JSON Schema representation. Named types live under
// $defs and are referenced with $ref.
type Schema struct {
	Schema string      `json:"$schema,omitempty"`
	Ref    string      `json:"$ref,omitempty"`
	Defs   *Properties `json:"$defs,omitempty"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Core
	Type    any    `json:"type,omitempty"` // string or []string
	Format  string `json:"format,omitempty"`
	Default any    `json:"default,omitempty"`
	Enum    []any  `json:"enum,omitempty"`
	Const   *any   `json:"const,omitempty"`

	// Numbers
	Minimum          *Number `json:"minimum,omitempty"`
	Maximum          *Number `json:"maximum,omitempty"`
	ExclusiveMinimum *Number `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *Number `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *Number `json:"multipleOf,omitempty"`

	// Strings
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Object
	Properties           *Properties `json:"properties,omitempty"`
	Required             []string    `json:"required,omitempty"`
	AdditionalProperties any         `json:"additionalProperties,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	// Combinators
	AllOf []*Schema `json:"allOf,omitempty"`
	AnyOf []*Schema `json:"anyOf,omitempty"`
	OneOf []*Schema `json:"oneOf,omitempty"`
}
