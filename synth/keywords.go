package synth

import (
	"regexp"
	"sort"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/document"
	"github.com/reoring/typesynth/ir"
)

// standardKeywords are understood (or deliberately ignored) by the
// synthesizer. Anything else lands in Meta.Extra.
var standardKeywords = map[string]bool{
	"$schema": true, "$id": true, "id": true, "$ref": true, "$comment": true, "$anchor": true,
	"definitions": true, "$defs": true,
	"title": true, "description": true, "default": true, "examples": true, "deprecated": true,
	"readOnly": true, "writeOnly": true,
	"type": true, "enum": true, "const": true, "format": true,
	"allOf": true, "anyOf": true, "oneOf": true, "not": true,
	"if": true, "then": true, "else": true,
	"properties": true, "required": true, "additionalProperties": true,
	"patternProperties": true, "propertyNames": true, "dependencies": true,
	"dependentRequired": true, "dependentSchemas": true, "unevaluatedProperties": true,
	"minProperties": true, "maxProperties": true,
	"items": true, "prefixItems": true, "additionalItems": true, "contains": true,
	"minContains": true, "maxContains": true, "unevaluatedItems": true,
	"minItems": true, "maxItems": true, "uniqueItems": true,
	"minLength": true, "maxLength": true, "pattern": true,
	"minimum": true, "maximum": true, "exclusiveMinimum": true, "exclusiveMaximum": true,
	"multipleOf": true, "nullable": true,
}

// unsupportedKeywords are recognized but have no effect on the synthesized
// type. Each occurrence produces a warning.
var unsupportedKeywords = []string{
	"not", "if", "then", "else",
	"patternProperties", "propertyNames", "dependencies", "dependentRequired",
	"dependentSchemas", "unevaluatedProperties", "unevaluatedItems",
	"minProperties", "maxProperties", "contains", "prefixItems", "additionalItems",
}

// knownFormats are checked by the model factory.
var knownFormats = map[string]bool{
	"date-time": true, "date": true, "time": true,
	"uri": true, "uuid": true, "email": true,
}

var (
	stringOnly = []string{"minLength", "maxLength", "pattern", "format"}
	numberOnly = []string{"minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf"}
)

func stringKeyword(n *document.Node, key string) (string, bool) {
	v, ok := n.Get(key)
	if !ok {
		return "", false
	}
	return v.Str()
}

// meta collects the annotation keywords shared by every descriptor.
func meta(n *document.Node, id string) ir.Meta {
	m := ir.Meta{ID: id}
	if !n.IsObject() {
		return m
	}
	m.Title, _ = stringKeyword(n, "title")
	m.Description, _ = stringKeyword(n, "description")
	if d, ok := n.Get("default"); ok {
		m.Default, m.HasDefault = d.Value(), true
	}
	if b, ok := n.Get("nullable"); ok {
		m.Nullable, _ = b.Bool()
	}
	for _, k := range n.Keys() {
		if standardKeywords[k] {
			continue
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		v, _ := n.Get(k)
		m.Extra[k] = v.Value()
	}
	return m
}

// nonNegInt reads an optional non-negative integer keyword.
func nonNegInt(n *document.Node, key string) (*int, error) {
	v, ok := n.Get(key)
	if !ok {
		return nil, nil
	}
	num, ok := v.Num()
	if !ok || !num.IsInteger() {
		return nil, typesynth.Errorf(typesynth.KindSchema, n.ID(), "%s must be a non-negative integer", key)
	}
	r, _ := num.Rat()
	if r.Sign() < 0 || !r.Num().IsInt64() {
		return nil, typesynth.Errorf(typesynth.KindSchema, n.ID(), "%s must be a non-negative integer", key)
	}
	x := int(r.Num().Int64())
	return &x, nil
}

func numberKeyword(n *document.Node, key string) (*document.Number, error) {
	v, ok := n.Get(key)
	if !ok {
		return nil, nil
	}
	num, ok := v.Num()
	if !ok {
		return nil, typesynth.Errorf(typesynth.KindSchema, n.ID(), "%s must be a number, got %s", key, v.Kind())
	}
	return &num, nil
}

// constraints reads the scalar keywords of n that apply to t. Keywords that
// do not apply to t are reported and dropped.
func (s *synthesizer) constraints(n *document.Node, t ir.ScalarType) (ir.Constraints, error) {
	var c ir.Constraints
	if !n.IsObject() {
		return c, nil
	}
	isString := t == ir.String || t == ir.Any
	isNumber := t == ir.Integer || t == ir.Number || t == ir.Any
	for _, k := range stringOnly {
		if n.Has(k) && !isString {
			s.diag.warnf(n.ID(), "%s does not apply to %s and is ignored", k, t)
		}
	}
	for _, k := range numberOnly {
		if n.Has(k) && !isNumber {
			s.diag.warnf(n.ID(), "%s does not apply to %s and is ignored", k, t)
		}
	}
	var err error
	if isString {
		if f, ok := n.Get("format"); ok {
			str, ok := f.Str()
			if !ok {
				return c, typesynth.Errorf(typesynth.KindSchema, n.ID(), "format must be a string")
			}
			if !knownFormats[str] {
				s.diag.warnf(n.ID(), "format %q is not checked", str)
			}
			c.Format = str
		}
		if c.MinLength, err = nonNegInt(n, "minLength"); err != nil {
			return c, err
		}
		if c.MaxLength, err = nonNegInt(n, "maxLength"); err != nil {
			return c, err
		}
		if p, ok := n.Get("pattern"); ok {
			str, ok := p.Str()
			if !ok {
				return c, typesynth.Errorf(typesynth.KindSchema, n.ID(), "pattern must be a string")
			}
			if _, err := regexp.Compile(str); err != nil {
				se := typesynth.Errorf(typesynth.KindSchema, n.ID(), "pattern %q does not compile", str)
				se.Cause = err
				return c, se
			}
			c.Patterns = []string{str}
		}
	}
	if isNumber {
		if c.Minimum, err = numberKeyword(n, "minimum"); err != nil {
			return c, err
		}
		if c.Maximum, err = numberKeyword(n, "maximum"); err != nil {
			return c, err
		}
		if c.ExclusiveMinimum, c.Minimum, err = exclusiveBound(n, "exclusiveMinimum", c.Minimum); err != nil {
			return c, err
		}
		if c.ExclusiveMaximum, c.Maximum, err = exclusiveBound(n, "exclusiveMaximum", c.Maximum); err != nil {
			return c, err
		}
		if c.MultipleOf, err = numberKeyword(n, "multipleOf"); err != nil {
			return c, err
		}
		if c.MultipleOf != nil && c.MultipleOf.Cmp("0") <= 0 {
			return c, typesynth.Errorf(typesynth.KindSchema, n.ID(), "multipleOf must be greater than 0")
		}
	}
	if e, ok := n.Get("enum"); ok {
		if !e.IsArray() || e.Len() == 0 {
			return c, typesynth.Errorf(typesynth.KindSchema, n.ID(), "enum must be a non-empty array")
		}
		vals := e.Value().([]any)
		c.Enum = vals
	}
	if v, ok := n.Get("const"); ok {
		c.Const, c.HasConst = v.Value(), true
	}
	return c, nil
}

// exclusiveBound handles both the numeric (2019+) and the boolean (draft 4)
// forms. In the boolean form the inclusive bound becomes exclusive.
func exclusiveBound(n *document.Node, key string, inclusive *document.Number) (excl, incl *document.Number, err error) {
	v, ok := n.Get(key)
	if !ok {
		return nil, inclusive, nil
	}
	if b, ok := v.Bool(); ok {
		if b {
			return inclusive, nil, nil
		}
		return nil, inclusive, nil
	}
	num, ok := v.Num()
	if !ok {
		return nil, nil, typesynth.Errorf(typesynth.KindSchema, n.ID(), "%s must be a number or boolean", key)
	}
	return &num, inclusive, nil
}

// warnUnsupported reports keywords that are accepted but not enforced.
func (s *synthesizer) warnUnsupported(n *document.Node) {
	var found []string
	for _, k := range unsupportedKeywords {
		if n.Has(k) {
			found = append(found, k)
		}
	}
	sort.Strings(found)
	for _, k := range found {
		s.diag.warnf(n.ID(), "keyword %s is not supported and is ignored", k)
	}
}

// scalarTypeOf infers the scalar type of a literal value.
func scalarTypeOf(v *document.Node) ir.ScalarType {
	switch v.Kind() {
	case document.KindString:
		return ir.String
	case document.KindBool:
		return ir.Boolean
	case document.KindNull:
		return ir.Null
	case document.KindNumber:
		num, _ := v.Num()
		if num.IsInteger() {
			return ir.Integer
		}
		return ir.Number
	}
	return ir.Any
}

// enumType infers a scalar type shared by all enum values. Integers and
// numbers unify to number; anything else mixed is any.
func enumType(e *document.Node) ir.ScalarType {
	var t ir.ScalarType
	for i, v := range e.Items() {
		vt := scalarTypeOf(v)
		switch {
		case i == 0:
			t = vt
		case vt == t:
		case (vt == ir.Integer && t == ir.Number) || (vt == ir.Number && t == ir.Integer):
			t = ir.Number
		default:
			return ir.Any
		}
	}
	if t == "" {
		return ir.Any
	}
	return t
}
