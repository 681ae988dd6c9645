package synth

import (
	"strings"

	typesynth "github.com/reoring/typesynth"
)

// Sanitize normalizes a property name into a field identifier. Leading
// underscores are stripped and the original name is returned as the alias;
// other names pass through unchanged with no alias.
func Sanitize(name string) (ident, alias string) {
	trimmed := strings.TrimLeft(name, "_")
	if trimmed == name {
		return name, ""
	}
	return trimmed, name
}

type fieldName struct {
	ident    string
	alias    string
	original string
}

// sanitizeAll sanitizes the properties of one object schema. Two properties
// mapping to the same identifier is a SchemaError.
func sanitizeAll(at string, names []string) ([]fieldName, error) {
	out := make([]fieldName, 0, len(names))
	owner := make(map[string]string, len(names))
	for _, n := range names {
		ident, alias := Sanitize(n)
		if ident == "" {
			return nil, typesynth.Errorf(typesynth.KindSchema, at, "property %q has no usable identifier after sanitization", n)
		}
		if prev, dup := owner[ident]; dup {
			return nil, typesynth.Errorf(typesynth.KindSchema, at, "field identifier %q is produced by both %q and %q", ident, prev, n)
		}
		owner[ident] = n
		out = append(out, fieldName{ident: ident, alias: alias, original: n})
	}
	return out, nil
}
