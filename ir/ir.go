// Package ir defines the type descriptors produced by synthesis and consumed
// by model factories.
package ir

import "github.com/reoring/typesynth/document"

// NodeKind identifies a descriptor variant.
type NodeKind int

const (
	KindScalar NodeKind = iota
	KindArray
	KindObject
	KindUnion
	KindIntersection
	KindRef
)

func (k NodeKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindRef:
		return "ref"
	}
	return "unknown"
}

// Descriptor is the closed set of synthesized types.
type Descriptor interface {
	Kind() NodeKind
	Info() *Meta
}

// Meta is shared by all descriptors.
type Meta struct {
	ID          string // fragment identity (for example: #/definitions/Node)
	Name        string // deterministic type name; empty for anonymous scalars/arrays
	Title       string
	Description string
	Default     any
	HasDefault  bool
	Nullable    bool
	Extra       map[string]any // non-standard keywords kept verbatim
}

func (m *Meta) Info() *Meta { return m }

// ScalarType names the primitive kind of a Scalar.
type ScalarType string

const (
	String  ScalarType = "string"
	Integer ScalarType = "integer"
	Number  ScalarType = "number"
	Boolean ScalarType = "boolean"
	Null    ScalarType = "null"
	Any     ScalarType = "any"
)

// Constraints carries scalar validation metadata.
type Constraints struct {
	Format           string
	Minimum          *document.Number
	Maximum          *document.Number
	ExclusiveMinimum *document.Number
	ExclusiveMaximum *document.Number
	MultipleOf       *document.Number
	MinLength        *int
	MaxLength        *int
	Patterns         []string // all must match
	Enum             []any
	Const            any
	HasConst         bool
}

// Scalar represents string/integer/number/boolean/null/any values.
type Scalar struct {
	Meta
	Type ScalarType
	Constraints
}

func (s *Scalar) Kind() NodeKind { return KindScalar }

// Array represents a homogeneous list.
type Array struct {
	Meta
	Items       Descriptor
	MinItems    *int
	MaxItems    *int
	UniqueItems bool
}

func (a *Array) Kind() NodeKind { return KindArray }

// Field is one object property after sanitization.
type Field struct {
	Name        string // sanitized identifier
	Original    string // name as written in the schema
	Alias       string // set when Name differs from Original
	Type        Descriptor
	Required    bool
	Nullable    bool
	Default     any
	HasDefault  bool
	Description string
}

// Object represents a closed record with ordered fields. Additional, when
// set, types members not declared in Fields.
type Object struct {
	Meta
	Fields     []Field
	Additional Descriptor
	// Required lists required property names as written in the schema,
	// including names with no declared field (allOf members).
	Required []string
}

func (o *Object) Kind() NodeKind { return KindObject }

// Field returns the field with the given sanitized name.
func (o *Object) Field(name string) (Field, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Union represents anyOf/oneOf and multi-type schemas. Members keep source
// order. Discriminator, when set, is the sanitized name of a field every
// member pins to a distinct constant; Mapping maps that constant's
// document.ConstKey ("s:cat", "n:1", "b:true") to the member index.
type Union struct {
	Meta
	Members       []Descriptor
	Discriminator string
	Mapping       map[string]int
	Exclusive     bool // oneOf: exactly one member must match
}

func (u *Union) Kind() NodeKind { return KindUnion }

// Intersection represents allOf over object members. Merged holds the
// unioned fields.
type Intersection struct {
	Meta
	Members []Descriptor
	Merged  *Object
}

func (i *Intersection) Kind() NodeKind { return KindIntersection }

// Ref is a placeholder for a fragment still being synthesized. It resolves
// through Graph.
type Ref struct {
	Meta
	Target string
}

func (r *Ref) Kind() NodeKind { return KindRef }
