package synth

import (
	"errors"
	"strings"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/document"
)

// resolver resolves local "#/..." pointers against the root document. It
// does not detect structural cycles; those depend on the synthesizer's call
// stack.
type resolver struct {
	doc *document.Document
}

// Resolve returns the node a reference points to. from is the identity of
// the referencing fragment and is only used for error reporting.
func (r *resolver) Resolve(ref, from string) (*document.Node, error) {
	if ref == "" {
		return nil, typesynth.Errorf(typesynth.KindReference, from, "empty reference")
	}
	if !strings.HasPrefix(ref, "#") {
		return nil, typesynth.Errorf(typesynth.KindReference, from, "only local references are supported: %q", ref)
	}
	frag := ref[1:]
	if frag != "" && frag[0] != '/' {
		return nil, typesynth.Errorf(typesynth.KindReference, from, "invalid reference syntax %q: expected '#' or '#/...'", ref)
	}
	n, err := r.doc.Lookup(frag)
	if err != nil {
		var le *document.LookupError
		if errors.As(err, &le) {
			return nil, typesynth.Errorf(typesynth.KindReference, from, "invalid reference path %q: segment %q not found", ref, le.Token)
		}
		se := typesynth.Errorf(typesynth.KindReference, from, "invalid reference syntax %q", ref)
		se.Cause = err
		return nil, se
	}
	return n, nil
}

// ResolveChain follows n's $ref through any pure-$ref hops and returns the
// first node that carries structure, plus the identities of the hops in
// between. A chain that loops back on itself is a ReferenceError.
func (r *resolver) ResolveChain(n *document.Node) (*document.Node, []string, error) {
	seen := map[string]bool{n.ID(): true}
	var hops []string
	cur := n
	for {
		ref, err := refOf(cur)
		if err != nil {
			return nil, nil, err
		}
		next, err := r.Resolve(ref, cur.ID())
		if err != nil {
			return nil, nil, err
		}
		if seen[next.ID()] {
			return nil, nil, typesynth.Errorf(typesynth.KindReference, n.ID(), "circular reference detected: %q refers back to %s without any structure", ref, next.ID())
		}
		if !next.IsObject() || !next.Has("$ref") {
			return next, hops, nil
		}
		seen[next.ID()] = true
		hops = append(hops, next.ID())
		cur = next
	}
}

func refOf(n *document.Node) (string, error) {
	rn, _ := n.Get("$ref")
	ref, ok := rn.Str()
	if !ok {
		return "", typesynth.Errorf(typesynth.KindReference, n.ID(), "$ref must be a string, got %s", rn.Kind())
	}
	return ref, nil
}
