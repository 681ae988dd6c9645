package synth

import (
	"reflect"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/document"
	"github.com/reoring/typesynth/ir"
)

// memberNodes validates a combinator list without synthesizing it.
func memberNodes(n *document.Node, kw string) ([]*document.Node, error) {
	list, _ := n.Get(kw)
	if !list.IsArray() || list.Len() == 0 {
		return nil, typesynth.Errorf(typesynth.KindCombiner, n.ID(), "%s must be a non-empty array of schemas", kw)
	}
	items := list.Items()
	for i, it := range items {
		if it.Kind() != document.KindObject && it.Kind() != document.KindBool {
			return nil, typesynth.Errorf(typesynth.KindCombiner, n.ID(), "%s member %d is not a schema (got %s)", kw, i, it.Kind())
		}
	}
	return items, nil
}

func (s *synthesizer) synthesizeAll(nodes []*document.Node) ([]ir.Descriptor, error) {
	out := make([]ir.Descriptor, 0, len(nodes))
	for _, m := range nodes {
		d, err := s.synthesize(m)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// allOf merges its members. Objects become an Intersection, scalars of one
// base type a single Scalar, arrays with equivalent items a single Array.
func (s *synthesizer) allOf(n *document.Node) (ir.Descriptor, error) {
	id := n.ID()
	nodes, err := memberNodes(n, "allOf")
	if err != nil {
		return nil, err
	}
	if len(nodes) > 1 {
		// claim the name before members so the combined type keeps the
		// unsuffixed one
		s.reg.Name(id, nameHint(n, id))
	}
	members, err := s.synthesizeAll(nodes)
	if err != nil {
		return nil, err
	}
	if len(members) == 1 {
		return members[0], nil
	}
	g := s.reg.Graph(nil)
	resolved := make([]ir.Descriptor, len(members))
	for i, m := range members {
		r := g.Resolve(m)
		if ref, ok := r.(*ir.Ref); ok {
			return nil, typesynth.Errorf(typesynth.KindCombiner, id, "allOf member %d refers to %s, which contains this allOf", i, ref.Target)
		}
		resolved[i] = r
	}
	switch resolved[0].Kind() {
	case ir.KindObject, ir.KindIntersection:
		objs := make([]*ir.Object, len(resolved))
		for i, r := range resolved {
			o, ok := g.ObjectOf(r)
			if !ok {
				return nil, mixedKinds(id, resolved[0], r, i)
			}
			objs[i] = o
		}
		merged, err := s.mergeObjects(n, g, objs)
		if err != nil {
			return nil, err
		}
		return &ir.Intersection{Meta: merged.Meta, Members: members, Merged: merged}, nil
	case ir.KindScalar:
		s.reg.release(id)
		out := &ir.Scalar{Meta: meta(n, id), Type: ir.Any}
		nullable := true
		for i, r := range resolved {
			sc, ok := r.(*ir.Scalar)
			if !ok {
				return nil, mixedKinds(id, resolved[0], r, i)
			}
			t, ok := unifyScalar(out.Type, sc.Type)
			if !ok {
				return nil, typesynth.Errorf(typesynth.KindCombiner, id, "allOf members declare conflicting types %s and %s", out.Type, sc.Type)
			}
			out.Type = t
			nullable = nullable && sc.Nullable
			if err := mergeConstraints(id, &out.Constraints, sc.Constraints); err != nil {
				return nil, err
			}
		}
		out.Nullable = out.Nullable || nullable
		return out, nil
	case ir.KindArray:
		s.reg.release(id)
		first := resolved[0].(*ir.Array)
		out := &ir.Array{Meta: meta(n, id), Items: first.Items}
		for i, r := range resolved {
			a, ok := r.(*ir.Array)
			if !ok {
				return nil, mixedKinds(id, resolved[0], r, i)
			}
			if !ir.Equivalent(g, first.Items, a.Items) {
				return nil, typesynth.Errorf(typesynth.KindCombiner, id, "allOf member %d declares incompatible array items", i)
			}
			out.MinItems = maxInt(out.MinItems, a.MinItems)
			out.MaxItems = minInt(out.MaxItems, a.MaxItems)
			out.UniqueItems = out.UniqueItems || a.UniqueItems
		}
		return out, nil
	}
	return nil, typesynth.Errorf(typesynth.KindCombiner, id, "allOf over %s members is not supported", resolved[0].Kind())
}

func mixedKinds(id string, first, other ir.Descriptor, i int) error {
	return typesynth.Errorf(typesynth.KindCombiner, id, "allOf mixes %s and %s members (member %d)", first.Kind(), other.Kind(), i)
}

// mergeObjects unions the fields of objs in first-seen order. Identical
// redefinitions are allowed; any other redefinition is a CombinerError.
func (s *synthesizer) mergeObjects(n *document.Node, g *ir.Graph, objs []*ir.Object) (*ir.Object, error) {
	id := n.ID()
	merged := &ir.Object{Meta: meta(n, id)}
	merged.Name = s.reg.Name(id, nameHint(n, id))
	index := map[string]int{}
	required := map[string]bool{}
	allFree := true
	for i, o := range objs {
		if len(o.Fields) > 0 || o.Additional == nil {
			allFree = false
		}
		for _, f := range o.Fields {
			j, seen := index[f.Name]
			if !seen {
				index[f.Name] = len(merged.Fields)
				merged.Fields = append(merged.Fields, f)
				continue
			}
			prev := &merged.Fields[j]
			if prev.Original != f.Original {
				return nil, typesynth.Errorf(typesynth.KindSchema, id, "field identifier %q is produced by both %q and %q", f.Name, prev.Original, f.Original)
			}
			if !ir.Equivalent(g, prev.Type, f.Type) {
				return nil, typesynth.Errorf(typesynth.KindCombiner, id, "field %q is redefined by allOf member %d with an incompatible type", f.Original, i)
			}
			prev.Required = prev.Required || f.Required
			if !prev.HasDefault && f.HasDefault {
				prev.Default, prev.HasDefault = f.Default, true
			}
			if prev.Description == "" {
				prev.Description = f.Description
			}
		}
		for _, r := range o.Required {
			if !required[r] {
				required[r] = true
				merged.Required = append(merged.Required, r)
			}
		}
	}
	declared := map[string]bool{}
	for i := range merged.Fields {
		f := &merged.Fields[i]
		declared[f.Original] = true
		if required[f.Original] {
			f.Required = true
		}
	}
	for _, r := range merged.Required {
		if !declared[r] {
			s.diag.warnf(id, "required property %q is not declared by any allOf member", r)
		}
	}
	if allFree {
		merged.Additional = objs[0].Additional
	}
	return merged, nil
}

// unifyScalar intersects two scalar types. any unifies with anything and
// integer narrows number.
func unifyScalar(a, b ir.ScalarType) (ir.ScalarType, bool) {
	switch {
	case a == b, b == ir.Any:
		return a, true
	case a == ir.Any:
		return b, true
	case (a == ir.Integer && b == ir.Number) || (a == ir.Number && b == ir.Integer):
		return ir.Integer, true
	}
	return "", false
}

func mergeConstraints(id string, dst *ir.Constraints, src ir.Constraints) error {
	if src.Format != "" {
		if dst.Format != "" && dst.Format != src.Format {
			return typesynth.Errorf(typesynth.KindCombiner, id, "allOf members declare conflicting formats %q and %q", dst.Format, src.Format)
		}
		dst.Format = src.Format
	}
	dst.Minimum = maxNum(dst.Minimum, src.Minimum)
	dst.ExclusiveMinimum = maxNum(dst.ExclusiveMinimum, src.ExclusiveMinimum)
	dst.Maximum = minNum(dst.Maximum, src.Maximum)
	dst.ExclusiveMaximum = minNum(dst.ExclusiveMaximum, src.ExclusiveMaximum)
	mo, err := mergeMultipleOf(id, dst.MultipleOf, src.MultipleOf)
	if err != nil {
		return err
	}
	dst.MultipleOf = mo
	dst.MinLength = maxInt(dst.MinLength, src.MinLength)
	dst.MaxLength = minInt(dst.MaxLength, src.MaxLength)
	for _, p := range src.Patterns {
		dup := false
		for _, q := range dst.Patterns {
			if p == q {
				dup = true
				break
			}
		}
		if !dup {
			dst.Patterns = append(dst.Patterns, p)
		}
	}
	if src.Enum != nil {
		if dst.Enum == nil {
			dst.Enum = append([]any(nil), src.Enum...)
		} else {
			var keep []any
			for _, v := range dst.Enum {
				for _, w := range src.Enum {
					if reflect.DeepEqual(v, w) {
						keep = append(keep, v)
						break
					}
				}
			}
			if len(keep) == 0 {
				return typesynth.Errorf(typesynth.KindCombiner, id, "allOf enum sets have no common value")
			}
			dst.Enum = keep
		}
	}
	if src.HasConst {
		if dst.HasConst && !reflect.DeepEqual(dst.Const, src.Const) {
			return typesynth.Errorf(typesynth.KindCombiner, id, "allOf members declare conflicting const values %v and %v", dst.Const, src.Const)
		}
		dst.Const, dst.HasConst = src.Const, true
	}
	if dst.Minimum != nil && dst.Maximum != nil && dst.Minimum.Cmp(*dst.Maximum) > 0 {
		return typesynth.Errorf(typesynth.KindCombiner, id, "merged bounds are unsatisfiable: minimum %s > maximum %s", *dst.Minimum, *dst.Maximum)
	}
	if dst.MinLength != nil && dst.MaxLength != nil && *dst.MinLength > *dst.MaxLength {
		return typesynth.Errorf(typesynth.KindCombiner, id, "merged lengths are unsatisfiable: minLength %d > maxLength %d", *dst.MinLength, *dst.MaxLength)
	}
	return nil
}

// mergeMultipleOf keeps the larger step when it is a multiple of the
// smaller one.
func mergeMultipleOf(id string, a, b *document.Number) (*document.Number, error) {
	if a == nil {
		return b, nil
	}
	if b == nil || a.Cmp(*b) == 0 {
		return a, nil
	}
	hi, lo := a, b
	if a.Cmp(*b) < 0 {
		hi, lo = b, a
	}
	rh, _ := hi.Rat()
	rl, _ := lo.Rat()
	if rh.Quo(rh, rl).IsInt() {
		return hi, nil
	}
	return nil, typesynth.Errorf(typesynth.KindCombiner, id, "multipleOf values %s and %s cannot be combined", *a, *b)
}

func maxNum(a, b *document.Number) *document.Number {
	if a == nil || (b != nil && b.Cmp(*a) > 0) {
		return b
	}
	return a
}

func minNum(a, b *document.Number) *document.Number {
	if a == nil || (b != nil && b.Cmp(*a) < 0) {
		return b
	}
	return a
}

func maxInt(a, b *int) *int {
	if a == nil || (b != nil && *b > *a) {
		return b
	}
	return a
}

func minInt(a, b *int) *int {
	if a == nil || (b != nil && *b < *a) {
		return b
	}
	return a
}

// union builds anyOf (exclusive=false) and oneOf (exclusive=true) unions.
// Members keep source order; discriminator detection never changes them.
func (s *synthesizer) union(n *document.Node, kw string, exclusive bool) (ir.Descriptor, error) {
	id := n.ID()
	nodes, err := memberNodes(n, kw)
	if err != nil {
		return nil, err
	}
	u := &ir.Union{Meta: meta(n, id), Exclusive: exclusive}
	u.Name = s.reg.Name(id, nameHint(n, id))
	if u.Members, err = s.synthesizeAll(nodes); err != nil {
		return nil, err
	}
	u.Discriminator, u.Mapping = detectDiscriminator(s.reg.Graph(nil), u.Members)
	return u, nil
}

// detectDiscriminator finds the first field of the first member that every
// member declares as a distinct string, integer or boolean constant.
func detectDiscriminator(g *ir.Graph, members []ir.Descriptor) (string, map[string]int) {
	objs := make([]*ir.Object, len(members))
	for i, m := range members {
		o, ok := g.ObjectOf(m)
		if !ok {
			return "", nil
		}
		objs[i] = o
	}
	for _, cand := range objs[0].Fields {
		mapping := make(map[string]int, len(objs))
		ok := true
		for i, o := range objs {
			f, has := o.Field(cand.Name)
			if !has {
				ok = false
				break
			}
			key, isConst := constKey(g, f.Type)
			if !isConst {
				ok = false
				break
			}
			if _, dup := mapping[key]; dup {
				ok = false
				break
			}
			mapping[key] = i
		}
		if ok {
			return cand.Name, mapping
		}
	}
	return "", nil
}

// constKey returns the document.ConstKey of a scalar's single admitted value.
func constKey(g *ir.Graph, d ir.Descriptor) (string, bool) {
	sc, ok := g.Resolve(d).(*ir.Scalar)
	if !ok {
		return "", false
	}
	switch {
	case sc.HasConst:
		return document.ConstKey(sc.Const)
	case len(sc.Enum) == 1:
		return document.ConstKey(sc.Enum[0])
	}
	return "", false
}
