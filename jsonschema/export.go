package jsonschema

import (
	"fmt"

	j "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/reoring/typesynth/document"
	"github.com/reoring/typesynth/ir"
)

type exporter struct {
	g     *ir.Graph
	names map[ir.Descriptor]string
}

// FromGraph emits g as one document: named objects, unions and
// intersections go under $defs, everything else is inlined.
func FromGraph(g *ir.Graph) (*Schema, error) {
	if g == nil || g.Root == nil {
		return nil, fmt.Errorf("jsonschema: empty graph")
	}
	e := &exporter{g: g, names: map[ir.Descriptor]string{}}
	named := g.Named()
	for _, d := range named {
		e.names[d] = d.Info().Name
	}
	defs := orderedmap.New[string, *Schema]()
	for _, d := range named {
		body, err := e.body(d)
		if err != nil {
			return nil, err
		}
		defs.Set(d.Info().Name, body)
	}
	root, err := e.emit(g.Root)
	if err != nil {
		return nil, err
	}
	if defs.Len() > 0 {
		root.Defs = defs
	}
	root.Schema = Draft
	return root, nil
}

// Marshal renders s as indented JSON.
func Marshal(s *Schema) ([]byte, error) {
	return j.MarshalIndent(s, "", "  ")
}

// emit references named descriptors and inlines the rest.
func (e *exporter) emit(d ir.Descriptor) (*Schema, error) {
	d = e.g.Resolve(d)
	if r, ok := d.(*ir.Ref); ok {
		return nil, fmt.Errorf("jsonschema: unresolved reference %s", r.Target)
	}
	if name, ok := e.names[d]; ok {
		// a nullable named type carries null in its definition
		return &Schema{Ref: "#/$defs/" + document.EscapeToken(name)}, nil
	}
	return e.body(d)
}

func (e *exporter) body(d ir.Descriptor) (*Schema, error) {
	m := d.Info()
	s := &Schema{Title: m.Title, Description: m.Description}
	if m.HasDefault {
		s.Default = literal(m.Default)
	}
	switch t := d.(type) {
	case *ir.Scalar:
		scalar(s, t)
	case *ir.Array:
		items, err := e.emit(t.Items)
		if err != nil {
			return nil, err
		}
		s.Type = "array"
		s.Items, s.MinItems, s.MaxItems, s.UniqueItems = items, t.MinItems, t.MaxItems, t.UniqueItems
	case *ir.Object:
		if err := e.object(s, t); err != nil {
			return nil, err
		}
	case *ir.Intersection:
		if err := e.object(s, t.Merged); err != nil {
			return nil, err
		}
	case *ir.Union:
		members := make([]*Schema, 0, len(t.Members))
		for _, mem := range t.Members {
			ms, err := e.emit(mem)
			if err != nil {
				return nil, err
			}
			members = append(members, ms)
		}
		if t.Exclusive {
			s.OneOf = members
		} else {
			s.AnyOf = members
		}
	default:
		return nil, fmt.Errorf("jsonschema: unsupported descriptor %s", d.Kind())
	}
	return nullable(s, m.Nullable), nil
}

func (e *exporter) object(s *Schema, o *ir.Object) error {
	s.Type = "object"
	if len(o.Fields) > 0 {
		props := orderedmap.New[string, *Schema]()
		for _, f := range o.Fields {
			fs, err := e.emit(f.Type)
			if err != nil {
				return err
			}
			if f.HasDefault && fs.Ref == "" {
				fs.Default = literal(f.Default)
			}
			props.Set(f.Original, fs)
		}
		s.Properties = props
	}
	seen := map[string]bool{}
	for _, f := range o.Fields {
		if f.Required {
			seen[f.Original] = true
			s.Required = append(s.Required, f.Original)
		}
	}
	for _, r := range o.Required {
		if !seen[r] {
			seen[r] = true
			s.Required = append(s.Required, r)
		}
	}
	switch a := o.Additional.(type) {
	case nil:
		s.AdditionalProperties = false
	case *ir.Scalar:
		if a.Type != ir.Any {
			as, err := e.emit(a)
			if err != nil {
				return err
			}
			s.AdditionalProperties = as
		}
	default:
		as, err := e.emit(a)
		if err != nil {
			return err
		}
		s.AdditionalProperties = as
	}
	return nil
}

func scalar(s *Schema, sc *ir.Scalar) {
	if sc.Type != ir.Any {
		s.Type = string(sc.Type)
	}
	c := sc.Constraints
	s.Format = c.Format
	s.Minimum = num(c.Minimum)
	s.Maximum = num(c.Maximum)
	s.ExclusiveMinimum = num(c.ExclusiveMinimum)
	s.ExclusiveMaximum = num(c.ExclusiveMaximum)
	s.MultipleOf = num(c.MultipleOf)
	s.MinLength, s.MaxLength = c.MinLength, c.MaxLength
	switch len(c.Patterns) {
	case 0:
	case 1:
		s.Pattern = c.Patterns[0]
	default:
		for _, p := range c.Patterns {
			s.AllOf = append(s.AllOf, &Schema{Pattern: p})
		}
	}
	for _, v := range c.Enum {
		s.Enum = append(s.Enum, literal(v))
	}
	if c.HasConst {
		v := literal(c.Const)
		s.Const = &v
	}
}

// literal converts document numbers inside a schema value into raw JSON
// numbers.
func literal(v any) any {
	switch t := v.(type) {
	case document.Number:
		return Number(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = literal(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = literal(x)
		}
		return out
	}
	return v
}

func num(n *document.Number) *Number {
	if n == nil {
		return nil
	}
	x := Number(n.String())
	return &x
}

// nullable widens s to admit null.
func nullable(s *Schema, on bool) *Schema {
	if !on {
		return s
	}
	if t, ok := s.Type.(string); ok && s.Ref == "" {
		if t != "null" {
			s.Type = []string{t, "null"}
		}
		return s
	}
	if s.Type == nil && s.Ref == "" && s.AnyOf == nil && s.OneOf == nil {
		// untyped already admits null
		return s
	}
	return &Schema{AnyOf: []*Schema{s, {Type: "null"}}}
}
