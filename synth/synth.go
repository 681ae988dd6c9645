// Package synth converts a parsed JSON Schema document into a graph of type
// descriptors. One call builds one graph; nothing is shared between calls.
package synth

import (
	"strconv"

	"go.uber.org/zap"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/document"
	"github.com/reoring/typesynth/ir"
)

// Result is the outcome of a successful synthesis run.
type Result struct {
	Graph *ir.Graph
	Diag  Diag
}

// Root returns the root descriptor.
func (r *Result) Root() ir.Descriptor { return r.Graph.Root }

type synthesizer struct {
	doc  *document.Document
	opts typesynth.Options
	reg  *Registry
	refs *resolver
	diag *simpleDiag
	log  *zap.Logger
}

func newSynthesizer(doc *document.Document, opts typesynth.Options) *synthesizer {
	return &synthesizer{
		doc:  doc,
		opts: opts,
		reg:  NewRegistry(),
		refs: &resolver{doc: doc},
		diag: &simpleDiag{},
		log:  opts.L().Named("synth"),
	}
}

// Synthesize converts the whole document. The first failure in depth-first,
// declaration-order traversal is returned and no partial result is kept.
func Synthesize(doc *document.Document, opts typesynth.Options) (*Result, error) {
	if doc == nil || doc.Root == nil {
		return nil, typesynth.Errorf(typesynth.KindSchema, "#", "empty document")
	}
	return SynthesizeNode(doc, doc.Root, opts)
}

// SynthesizeNode converts the fragment n of doc. References inside n still
// resolve against the whole document.
func SynthesizeNode(doc *document.Document, n *document.Node, opts typesynth.Options) (*Result, error) {
	s := newSynthesizer(doc, opts)
	root, err := s.synthesize(n)
	if err != nil {
		s.log.Debug("synthesis failed", zap.Error(err))
		return nil, err
	}
	g := s.reg.Graph(root)
	g.PopulateByName = opts.PopulateByName
	s.log.Debug("synthesis complete",
		zap.String("root", n.ID()),
		zap.Int("types", s.reg.Len()),
		zap.Int("warnings", len(s.diag.ws)))
	return &Result{Graph: g, Diag: s.diag}, nil
}

// FromJSON parses data and synthesizes it.
func FromJSON(data []byte, opts typesynth.Options) (*Result, error) {
	doc, err := document.ParseJSON(data)
	if err != nil {
		return nil, parseError(err)
	}
	return Synthesize(doc, opts)
}

// FromYAML parses data and synthesizes it.
func FromYAML(data []byte, opts typesynth.Options) (*Result, error) {
	doc, err := document.ParseYAML(data)
	if err != nil {
		return nil, parseError(err)
	}
	return Synthesize(doc, opts)
}

// FromValue synthesizes an already-decoded schema (map[string]any etc.).
// Object keys are visited in sorted order.
func FromValue(v any, opts typesynth.Options) (*Result, error) {
	doc, err := document.FromValue(v)
	if err != nil {
		return nil, parseError(err)
	}
	return Synthesize(doc, opts)
}

func parseError(err error) error {
	se := typesynth.Errorf(typesynth.KindSchema, "", "cannot load schema document")
	se.Cause = err
	return se
}

// synthesize is the memoized entry for every fragment.
func (s *synthesizer) synthesize(n *document.Node) (ir.Descriptor, error) {
	id := n.ID()
	if d, ok := s.reg.Get(id); ok {
		return d, nil
	}
	if s.reg.IsInProgress(id) {
		s.log.Debug("cycle", zap.String("id", id))
		return &ir.Ref{Meta: ir.Meta{ID: id}, Target: id}, nil
	}
	if s.opts.MaxDepth > 0 && s.reg.Depth() >= s.opts.MaxDepth {
		return nil, typesynth.Errorf(typesynth.KindSchema, id, "schema nesting exceeds max depth %d", s.opts.MaxDepth)
	}
	if err := s.reg.MarkInProgress(id); err != nil {
		return nil, err
	}
	d, err := s.dispatch(n)
	s.reg.Unmark(id)
	if err != nil {
		return nil, err
	}
	if err := s.reg.Put(id, d); err != nil {
		return nil, err
	}
	s.log.Debug("synthesized",
		zap.String("id", id),
		zap.Stringer("kind", d.Kind()),
		zap.String("name", d.Info().Name))
	return d, nil
}

// dispatch applies keyword priority: $ref, allOf, anyOf, oneOf, type.
func (s *synthesizer) dispatch(n *document.Node) (ir.Descriptor, error) {
	id := n.ID()
	switch n.Kind() {
	case document.KindBool:
		b, _ := n.Bool()
		if !b {
			return nil, typesynth.Errorf(typesynth.KindSchema, id, "the false schema admits no value")
		}
		return s.untyped(n)
	case document.KindObject:
	default:
		return nil, typesynth.Errorf(typesynth.KindSchema, id, "schema must be an object or boolean, got %s", n.Kind())
	}
	if n.Has("$ref") {
		return s.reference(n)
	}
	s.warnUnsupported(n)
	switch {
	case n.Has("allOf"):
		s.warnSiblings(n, "allOf")
		return s.allOf(n)
	case n.Has("anyOf"):
		s.warnSiblings(n, "anyOf")
		return s.union(n, "anyOf", false)
	case n.Has("oneOf"):
		s.warnSiblings(n, "oneOf")
		return s.union(n, "oneOf", true)
	}
	if t, ok := n.Get("type"); ok {
		switch t.Kind() {
		case document.KindString:
			name, _ := t.Str()
			return s.typed(n, name, id)
		case document.KindArray:
			return s.typeArray(n, t)
		}
		return nil, typesynth.Errorf(typesynth.KindSchema, id, "type must be a string or an array of strings")
	}
	return s.infer(n)
}

// reference resolves $ref and shares the target's descriptor with the
// referencing fragment and every alias hop.
func (s *synthesizer) reference(n *document.Node) (ir.Descriptor, error) {
	for _, k := range n.Keys() {
		if k != "$ref" && k != "$comment" && k != "description" && k != "title" {
			s.diag.warnf(n.ID(), "keywords next to $ref are ignored")
			break
		}
	}
	target, hops, err := s.refs.ResolveChain(n)
	if err != nil {
		return nil, err
	}
	d, err := s.synthesize(target)
	if err != nil {
		return nil, err
	}
	if _, placeholder := d.(*ir.Ref); !placeholder {
		for _, h := range hops {
			if s.reg.IsInProgress(h) {
				continue
			}
			if _, ok := s.reg.Get(h); ok {
				continue
			}
			if err := s.reg.Put(h, d); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func (s *synthesizer) warnSiblings(n *document.Node, combinator string) {
	for _, k := range []string{"properties", "items", "type"} {
		if n.Has(k) {
			s.diag.warnf(n.ID(), "%s next to %s is ignored", k, combinator)
			return
		}
	}
}

// typed builds the descriptor for one named type using the keywords of n.
// id differs from n.ID() for members of a type array.
func (s *synthesizer) typed(n *document.Node, typ, id string) (ir.Descriptor, error) {
	switch typ {
	case "object":
		return s.object(n, id)
	case "array":
		return s.array(n, id)
	case "string":
		return s.scalar(n, ir.String, id)
	case "integer":
		return s.scalar(n, ir.Integer, id)
	case "number":
		return s.scalar(n, ir.Number, id)
	case "boolean":
		return s.scalar(n, ir.Boolean, id)
	case "null":
		return s.scalar(n, ir.Null, id)
	case "any", "anyType":
		if !s.opts.AllowUndefinedType {
			return nil, typesynth.Errorf(typesynth.KindType, id, "type %q accepts anything; set AllowUndefinedType to allow it", typ)
		}
		return s.scalar(n, ir.Any, id)
	}
	return nil, typesynth.Errorf(typesynth.KindType, id, "unsupported type %q", typ)
}

func (s *synthesizer) scalar(n *document.Node, t ir.ScalarType, id string) (*ir.Scalar, error) {
	c, err := s.constraints(n, t)
	if err != nil {
		return nil, err
	}
	sc := &ir.Scalar{Meta: meta(n, id), Type: t, Constraints: c}
	if t == ir.Null {
		sc.Nullable = true
	}
	return sc, nil
}

// typeArray handles "type": [...]. A null member collapses into Nullable.
func (s *synthesizer) typeArray(n, t *document.Node) (ir.Descriptor, error) {
	id := n.ID()
	if t.Len() == 0 {
		return nil, typesynth.Errorf(typesynth.KindSchema, id, "type array must not be empty")
	}
	var names []string
	nullable := false
	seen := map[string]bool{}
	for _, it := range t.Items() {
		name, ok := it.Str()
		if !ok {
			return nil, typesynth.Errorf(typesynth.KindSchema, id, "type array members must be strings")
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		if name == "null" {
			nullable = true
			continue
		}
		names = append(names, name)
	}
	switch len(names) {
	case 0:
		return s.scalar(n, ir.Null, id)
	case 1:
		d, err := s.typed(n, names[0], id)
		if err != nil {
			return nil, err
		}
		if nullable {
			d.Info().Nullable = true
		}
		return d, nil
	}
	u := &ir.Union{Meta: meta(n, id)}
	u.Nullable = u.Nullable || nullable
	u.Name = s.reg.Name(id, nameHint(n, id))
	for i, name := range names {
		d, err := s.typed(n, name, id+"/type/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		d.Info().Nullable = false
		u.Members = append(u.Members, d)
	}
	return u, nil
}

// infer handles schemas without type or combinators.
func (s *synthesizer) infer(n *document.Node) (ir.Descriptor, error) {
	id := n.ID()
	if c, ok := n.Get("const"); ok {
		return s.scalar(n, scalarTypeOf(c), id)
	}
	if e, ok := n.Get("enum"); ok {
		if !e.IsArray() || e.Len() == 0 {
			return nil, typesynth.Errorf(typesynth.KindSchema, id, "enum must be a non-empty array")
		}
		return s.scalar(n, enumType(e), id)
	}
	if n.Has("properties") || n.Has("required") || n.Has("additionalProperties") {
		return s.object(n, id)
	}
	if n.Has("items") {
		return s.array(n, id)
	}
	return s.untyped(n)
}

// untyped covers {}, true and schemas with only annotations.
func (s *synthesizer) untyped(n *document.Node) (ir.Descriptor, error) {
	if !s.opts.AllowUndefinedType {
		return nil, typesynth.Errorf(typesynth.KindType, n.ID(), "schema must specify a type; set AllowUndefinedType to accept untyped schemas")
	}
	return s.scalar(n, ir.Any, n.ID())
}

func (s *synthesizer) array(n *document.Node, id string) (*ir.Array, error) {
	a := &ir.Array{Meta: meta(n, id)}
	items, ok := n.Get("items")
	switch {
	case !ok:
		if !s.opts.AllowUndefinedArrayItems {
			return nil, typesynth.Errorf(typesynth.KindType, id, "array type must specify an items schema; set AllowUndefinedArrayItems to accept any elements")
		}
		a.Items = &ir.Scalar{Meta: ir.Meta{ID: id + "/items"}, Type: ir.Any}
	case items.IsArray():
		return nil, typesynth.Errorf(typesynth.KindSchema, id, "tuple-form items is not supported")
	default:
		d, err := s.synthesize(items)
		if err != nil {
			return nil, err
		}
		a.Items = d
	}
	var err error
	if a.MinItems, err = nonNegInt(n, "minItems"); err != nil {
		return nil, err
	}
	if a.MaxItems, err = nonNegInt(n, "maxItems"); err != nil {
		return nil, err
	}
	if u, ok := n.Get("uniqueItems"); ok {
		b, ok := u.Bool()
		if !ok {
			return nil, typesynth.Errorf(typesynth.KindSchema, id, "uniqueItems must be a boolean")
		}
		a.UniqueItems = b
	}
	return a, nil
}

func (s *synthesizer) object(n *document.Node, id string) (*ir.Object, error) {
	o := &ir.Object{Meta: meta(n, id)}
	o.Name = s.reg.Name(id, nameHint(n, id))

	required, err := requiredNames(n)
	if err != nil {
		return nil, err
	}
	o.Required = required
	isRequired := make(map[string]bool, len(required))
	for _, r := range required {
		isRequired[r] = true
	}

	props, hasProps := n.Get("properties")
	if hasProps {
		if !props.IsObject() {
			return nil, typesynth.Errorf(typesynth.KindSchema, id, "properties must be an object")
		}
		names, err := sanitizeAll(id, props.Keys())
		if err != nil {
			return nil, err
		}
		for _, fn := range names {
			child, _ := props.Get(fn.original)
			d, err := s.synthesize(child)
			if err != nil {
				return nil, err
			}
			f := ir.Field{
				Name:     fn.ident,
				Original: fn.original,
				Alias:    fn.alias,
				Type:     d,
				Required: isRequired[fn.original],
				Nullable: d.Info().Nullable,
			}
			if child.IsObject() {
				f.Description, _ = stringKeyword(child, "description")
				if dv, ok := child.Get("default"); ok {
					f.Default, f.HasDefault = dv.Value(), true
				}
			}
			o.Fields = append(o.Fields, f)
		}
		for _, r := range required {
			if !props.Has(r) {
				return nil, typesynth.Errorf(typesynth.KindSchema, id, "required property %q is not declared in properties", r)
			}
		}
	}

	ap, hasAP := n.Get("additionalProperties")
	switch {
	case hasAP && ap.Kind() == document.KindBool:
		b, _ := ap.Bool()
		if b && hasProps {
			s.diag.warnf(id, "additionalProperties: true is ignored for objects with declared properties")
		}
		if b && !hasProps {
			o.Additional = &ir.Scalar{Meta: ir.Meta{ID: id + "/additionalProperties"}, Type: ir.Any}
		}
	case hasAP:
		d, err := s.synthesize(ap)
		if err != nil {
			return nil, err
		}
		o.Additional = d
	case !hasProps:
		o.Additional = &ir.Scalar{Meta: ir.Meta{ID: id + "/additionalProperties"}, Type: ir.Any}
	}
	return o, nil
}

func requiredNames(n *document.Node) ([]string, error) {
	r, ok := n.Get("required")
	if !ok {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, typesynth.Errorf(typesynth.KindSchema, n.ID(), "required must be an array of strings")
	}
	out := make([]string, 0, r.Len())
	for _, it := range r.Items() {
		s, ok := it.Str()
		if !ok {
			return nil, typesynth.Errorf(typesynth.KindSchema, n.ID(), "required must be an array of strings")
		}
		out = append(out, s)
	}
	return out, nil
}
