package ir

// Graph is the arena produced by one synthesis run: every fragment identity
// maps to exactly one descriptor. Refs resolve through Types.
type Graph struct {
	Root  Descriptor
	Types map[string]Descriptor
	// Order lists identities in the order their synthesis completed.
	Order []string
	// PopulateByName is passed through from the synthesis options.
	PopulateByName bool
}

// Lookup returns the descriptor registered for id.
func (g *Graph) Lookup(id string) (Descriptor, bool) {
	d, ok := g.Types[id]
	return d, ok
}

// Resolve follows Ref placeholders until a concrete descriptor is reached.
// A Ref whose target is unknown is returned as is.
func (g *Graph) Resolve(d Descriptor) Descriptor {
	seen := map[string]bool{}
	for {
		r, ok := d.(*Ref)
		if !ok {
			return d
		}
		if seen[r.Target] {
			return d
		}
		seen[r.Target] = true
		next, ok := g.Types[r.Target]
		if !ok {
			return d
		}
		d = next
	}
}

// Named returns the distinct named descriptors (objects, unions,
// intersections) in completion order.
func (g *Graph) Named() []Descriptor {
	var out []Descriptor
	seen := map[Descriptor]bool{}
	for _, id := range g.Order {
		d := g.Types[id]
		if d == nil || seen[d] || d.Info().Name == "" {
			continue
		}
		switch d.Kind() {
		case KindObject, KindUnion, KindIntersection:
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}

// ObjectOf returns the object view of d: the object itself or an
// intersection's merged object.
func (g *Graph) ObjectOf(d Descriptor) (*Object, bool) {
	switch t := g.Resolve(d).(type) {
	case *Object:
		return t, true
	case *Intersection:
		return t.Merged, t.Merged != nil
	}
	return nil, false
}
