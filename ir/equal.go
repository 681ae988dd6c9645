package ir

import (
	"reflect"

	"github.com/reoring/typesynth/document"
)

// Equivalent reports whether a and b describe the same type. Descriptors that
// share an identity are equivalent; recursion is cut by assuming pairs under
// comparison are equal.
func Equivalent(g *Graph, a, b Descriptor) bool {
	return equivalent(g, a, b, map[[2]Descriptor]bool{})
}

func equivalent(g *Graph, a, b Descriptor, assumed map[[2]Descriptor]bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ida, idb := identity(a), identity(b); ida != "" && ida == idb {
		return true
	}
	if g != nil {
		a, b = g.Resolve(a), g.Resolve(b)
	}
	if a == b {
		return true
	}
	key := [2]Descriptor{a, b}
	if assumed[key] {
		return true
	}
	assumed[key] = true
	if a.Kind() != b.Kind() || a.Info().Nullable != b.Info().Nullable {
		return false
	}
	switch x := a.(type) {
	case *Scalar:
		y := b.(*Scalar)
		return x.Type == y.Type && constraintsEqual(x.Constraints, y.Constraints)
	case *Array:
		y := b.(*Array)
		return x.UniqueItems == y.UniqueItems && intPtrEqual(x.MinItems, y.MinItems) &&
			intPtrEqual(x.MaxItems, y.MaxItems) && equivalent(g, x.Items, y.Items, assumed)
	case *Object:
		y := b.(*Object)
		return objectsEqual(g, x, y, assumed)
	case *Intersection:
		y := b.(*Intersection)
		return objectsEqual(g, x.Merged, y.Merged, assumed)
	case *Union:
		y := b.(*Union)
		if len(x.Members) != len(y.Members) || x.Discriminator != y.Discriminator || x.Exclusive != y.Exclusive {
			return false
		}
		for i := range x.Members {
			if !equivalent(g, x.Members[i], y.Members[i], assumed) {
				return false
			}
		}
		return true
	case *Ref:
		return x.Target == b.(*Ref).Target
	}
	return false
}

// identity returns the target identity for Refs and the own identity for
// concrete descriptors.
func identity(d Descriptor) string {
	if r, ok := d.(*Ref); ok {
		return r.Target
	}
	return d.Info().ID
}

func objectsEqual(g *Graph, x, y *Object, assumed map[[2]Descriptor]bool) bool {
	if x == nil || y == nil {
		return x == y
	}
	if len(x.Fields) != len(y.Fields) {
		return false
	}
	if (x.Additional == nil) != (y.Additional == nil) {
		return false
	}
	if x.Additional != nil && !equivalent(g, x.Additional, y.Additional, assumed) {
		return false
	}
	for _, fx := range x.Fields {
		fy, ok := y.Field(fx.Name)
		if !ok || fx.Required != fy.Required || !equivalent(g, fx.Type, fy.Type, assumed) {
			return false
		}
	}
	return true
}

func constraintsEqual(a, b Constraints) bool {
	return a.Format == b.Format &&
		numPtrEqual(a.Minimum, b.Minimum) && numPtrEqual(a.Maximum, b.Maximum) &&
		numPtrEqual(a.ExclusiveMinimum, b.ExclusiveMinimum) && numPtrEqual(a.ExclusiveMaximum, b.ExclusiveMaximum) &&
		numPtrEqual(a.MultipleOf, b.MultipleOf) &&
		intPtrEqual(a.MinLength, b.MinLength) && intPtrEqual(a.MaxLength, b.MaxLength) &&
		reflect.DeepEqual(a.Patterns, b.Patterns) && reflect.DeepEqual(a.Enum, b.Enum) &&
		a.HasConst == b.HasConst && reflect.DeepEqual(a.Const, b.Const)
}

func numPtrEqual(a, b *document.Number) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(*b) == 0
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
