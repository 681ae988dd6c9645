package synth

import (
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/document"
	"github.com/reoring/typesynth/ir"
)

// Registry memoizes descriptors by fragment identity for one synthesis run
// and tracks the identities currently on the call stack. It is not safe for
// concurrent use and must not be shared across documents.
type Registry struct {
	types      map[string]ir.Descriptor
	order      []string
	inProgress map[string]bool
	nameOwner  map[string]string // type name -> identity that claimed it
	names      map[string]string // identity -> type name
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types:      make(map[string]ir.Descriptor),
		inProgress: make(map[string]bool),
		nameOwner:  make(map[string]string),
		names:      make(map[string]string),
	}
}

// Get returns the descriptor cached for id.
func (r *Registry) Get(id string) (ir.Descriptor, bool) {
	d, ok := r.types[id]
	return d, ok
}

// Put stores d under id. Storing a second, different descriptor for the same
// identity is an error.
func (r *Registry) Put(id string, d ir.Descriptor) error {
	if prev, ok := r.types[id]; ok {
		if prev == d {
			return nil
		}
		return typesynth.Errorf(typesynth.KindSchema, id, "fragment synthesized twice")
	}
	r.types[id] = d
	r.order = append(r.order, id)
	return nil
}

// IsInProgress reports whether id is on the active call stack.
func (r *Registry) IsInProgress(id string) bool { return r.inProgress[id] }

// MarkInProgress records id on the active call stack. Marking an identity
// that is already in progress is an error: callers must check IsInProgress
// first and emit a placeholder instead.
func (r *Registry) MarkInProgress(id string) error {
	if r.inProgress[id] {
		return typesynth.Errorf(typesynth.KindSchema, id, "fragment is already being synthesized")
	}
	r.inProgress[id] = true
	return nil
}

// Unmark removes id from the active call stack.
func (r *Registry) Unmark(id string) { delete(r.inProgress, id) }

// Len returns the number of cached identities.
func (r *Registry) Len() int { return len(r.types) }

// Name assigns a unique CamelCase type name to id, derived from hint.
// Repeated calls for the same id return the first name; collisions between
// identities get numeric suffixes in claim order.
func (r *Registry) Name(id, hint string) string {
	if n, ok := r.names[id]; ok {
		return n
	}
	base := strcase.ToCamel(hint)
	if base == "" {
		base = "Model"
	}
	name := base
	for i := 2; ; i++ {
		if _, taken := r.nameOwner[name]; !taken {
			break
		}
		name = base + strconv.Itoa(i)
	}
	r.nameOwner[name] = id
	r.names[id] = name
	return name
}

// release drops the name claimed by id so a later identity can take it.
func (r *Registry) release(id string) {
	if n, ok := r.names[id]; ok {
		delete(r.nameOwner, n)
		delete(r.names, id)
	}
}

// Graph exposes the registry contents as an ir.Graph.
func (r *Registry) Graph(root ir.Descriptor) *ir.Graph {
	return &ir.Graph{Root: root, Types: r.types, Order: r.order}
}

// nameHint derives a type name from a node: its title, else the closest
// meaningful pointer token ("items" contributes an "Item" suffix), else
// DynamicModel for the root.
func nameHint(n *document.Node, id string) string {
	if t, ok := stringKeyword(n, "title"); ok && strings.TrimSpace(t) != "" {
		return t
	}
	toks, err := document.SplitPointer(strings.TrimPrefix(id, "#"))
	if err != nil || len(toks) == 0 {
		return "DynamicModel"
	}
	suffix := ""
	for i := len(toks) - 1; i >= 0; i-- {
		t := toks[i]
		if i > 0 && isContainerKeyword(toks[i-1]) {
			return t + suffix
		}
		switch t {
		case "items":
			suffix = "Item" + suffix
		case "additionalProperties":
			suffix = "Value" + suffix
		}
	}
	return "DynamicModel" + suffix
}

// isContainerKeyword reports keywords whose children are keyed by name.
func isContainerKeyword(k string) bool {
	switch k {
	case "properties", "definitions", "$defs":
		return true
	}
	return false
}

// Depth returns the number of identities currently being synthesized.
func (r *Registry) Depth() int { return len(r.inProgress) }
