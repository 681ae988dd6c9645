package factory

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"

	"github.com/reoring/typesynth/document"
	"github.com/reoring/typesynth/ir"
)

type compiler struct {
	g      *ir.Graph
	byDesc map[ir.Descriptor]*handle
}

// compile returns the handle of d, building it at most once per descriptor.
func (c *compiler) compile(d ir.Descriptor) (*handle, error) {
	if r, ok := d.(*ir.Ref); ok {
		d = c.g.Resolve(r)
		if _, still := d.(*ir.Ref); still {
			return nil, fmt.Errorf("factory: unresolved reference %s", r.Target)
		}
	}
	if h, ok := c.byDesc[d]; ok {
		return h, nil
	}
	h := &handle{id: d.Info().ID}
	c.byDesc[d] = h
	v, err := c.build(d)
	if err != nil {
		return nil, err
	}
	if d.Info().Nullable {
		v = nullable{inner: v}
	}
	h.v = v
	return h, nil
}

func (c *compiler) build(d ir.Descriptor) (validator, error) {
	switch t := d.(type) {
	case *ir.Scalar:
		s := &scalarV{sc: t}
		for _, p := range t.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("factory: %s: pattern %q: %w", t.ID, p, err)
			}
			s.patterns = append(s.patterns, re)
		}
		return s, nil
	case *ir.Array:
		items, err := c.compile(t.Items)
		if err != nil {
			return nil, err
		}
		return &arrayV{a: t, items: items}, nil
	case *ir.Object:
		return c.object(t)
	case *ir.Intersection:
		if t.Merged == nil {
			return nil, fmt.Errorf("factory: %s: intersection without merged object", t.ID)
		}
		return c.object(t.Merged)
	case *ir.Union:
		return c.union(t)
	}
	return nil, fmt.Errorf("factory: unsupported descriptor %s", d.Kind())
}

func (c *compiler) object(o *ir.Object) (*objectV, error) {
	ov := &objectV{obj: o, byKey: map[string]int{}, byName: map[string]int{}}
	declared := map[string]bool{}
	for i, f := range o.Fields {
		h, err := c.compile(f.Type)
		if err != nil {
			return nil, err
		}
		ov.fields = append(ov.fields, fieldV{f: f, h: h})
		ov.byKey[f.Original] = i
		ov.byName[f.Name] = i
		declared[f.Original] = true
	}
	for _, r := range o.Required {
		if !declared[r] {
			ov.orphans = append(ov.orphans, r)
		}
	}
	if o.Additional != nil {
		h, err := c.compile(o.Additional)
		if err != nil {
			return nil, err
		}
		ov.additional = h
	}
	return ov, nil
}

func (c *compiler) union(u *ir.Union) (*unionV, error) {
	uv := &unionV{u: u}
	for _, m := range u.Members {
		h, err := c.compile(m)
		if err != nil {
			return nil, err
		}
		uv.members = append(uv.members, h)
	}
	if u.Discriminator == "" {
		return uv, nil
	}
	uv.discName = u.Discriminator
	uv.dispatch = make(map[string]int, len(u.Members))
	seen := map[string]bool{}
	for i, m := range u.Members {
		obj, ok := c.g.ObjectOf(m)
		if !ok {
			return nil, fmt.Errorf("factory: %s: discriminated member %d is not an object", u.ID, i)
		}
		f, ok := obj.Field(u.Discriminator)
		if !ok {
			return nil, fmt.Errorf("factory: %s: member %d lacks discriminator %q", u.ID, i, u.Discriminator)
		}
		if !seen[f.Original] {
			seen[f.Original] = true
			uv.discKeys = append(uv.discKeys, f.Original)
		}
		sc, ok := c.g.Resolve(f.Type).(*ir.Scalar)
		if !ok {
			return nil, fmt.Errorf("factory: %s: discriminator %q of member %d is not a constant", u.ID, u.Discriminator, i)
		}
		val := sc.Const
		if !sc.HasConst && len(sc.Enum) == 1 {
			val = sc.Enum[0]
		}
		key := canonKey(val)
		if prev, dup := uv.dispatch[key]; dup {
			return nil, fmt.Errorf("factory: %s: members %d and %d share discriminator value %v", u.ID, prev, i, val)
		}
		uv.dispatch[key] = i
	}
	return uv, nil
}

func rat(n document.Number) *big.Rat {
	r, ok := n.Rat()
	if !ok {
		return new(big.Rat)
	}
	return r
}

func limit(n int) map[string]string { return map[string]string{"limit": strconv.Itoa(n)} }

func limitS(s string) map[string]string { return map[string]string{"limit": s} }
