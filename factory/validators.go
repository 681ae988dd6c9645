package factory

import (
	"context"
	"regexp"
	"sort"
	"unicode/utf8"

	typesynth "github.com/reoring/typesynth"
	"github.com/reoring/typesynth/i18n"
	"github.com/reoring/typesynth/ir"
)

// state accumulates issues for one Validate call.
type state struct {
	ctx      context.Context
	iss      typesynth.Issues
	failFast bool
	byName   bool
	err      error
}

// sub returns a probe state used to test union members without reporting.
func (st *state) sub() *state {
	return &state{ctx: st.ctx, failFast: true, byName: st.byName}
}

func (st *state) report(p typesynth.PathRef, code string, data map[string]string, kv ...any) {
	st.iss = typesynth.AppendIssues(st.iss, p.Issue(code, i18n.T(code, data), kv...))
}

// stop reports whether validation should unwind.
func (st *state) stop() bool {
	if st.err == nil {
		st.err = st.ctx.Err()
	}
	return st.err != nil || (st.failFast && len(st.iss) > 0)
}

type validator interface {
	validate(st *state, p typesynth.PathRef, v any) (any, bool)
}

// handle is the single compiled validator of one descriptor identity. It is
// created before its body is compiled so recursive references can point at
// it.
type handle struct {
	id string
	v  validator
}

func (h *handle) validate(st *state, p typesynth.PathRef, v any) (any, bool) {
	return h.v.validate(st, p, v)
}

// nullable admits null ahead of the wrapped validator.
type nullable struct{ inner validator }

func (n nullable) validate(st *state, p typesynth.PathRef, v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	return n.inner.validate(st, p, v)
}

type scalarV struct {
	sc       *ir.Scalar
	patterns []*regexp.Regexp
}

func (s *scalarV) validate(st *state, p typesynth.PathRef, v any) (any, bool) {
	sc := s.sc
	if !typeMatches(sc.Type, v) {
		st.report(p, typesynth.CodeInvalidType, map[string]string{"expected": string(sc.Type)}, "expected", string(sc.Type), "got", kindOf(v))
		return nil, false
	}
	ok := true
	if sc.HasConst && !jsonEqual(sc.Const, v) {
		st.report(p, typesynth.CodeInvalidConst, nil, "const", sc.Const)
		return nil, false
	}
	if sc.Enum != nil {
		found := false
		for _, e := range sc.Enum {
			if jsonEqual(e, v) {
				found = true
				break
			}
		}
		if !found {
			st.report(p, typesynth.CodeInvalidEnum, nil, "enum", sc.Enum)
			return nil, false
		}
	}
	if str, isStr := v.(string); isStr {
		n := utf8.RuneCountInString(str)
		if sc.MinLength != nil && n < *sc.MinLength {
			st.report(p, typesynth.CodeTooShort, limit(*sc.MinLength), "min", *sc.MinLength, "got", n)
			ok = false
		}
		if sc.MaxLength != nil && n > *sc.MaxLength {
			st.report(p, typesynth.CodeTooLong, limit(*sc.MaxLength), "max", *sc.MaxLength, "got", n)
			ok = false
		}
		for _, re := range s.patterns {
			if !re.MatchString(str) {
				st.report(p, typesynth.CodePattern, map[string]string{"pattern": re.String()}, "pattern", re.String())
				ok = false
			}
		}
		if sc.Format != "" && !checkFormat(sc.Format, str) {
			st.report(p, typesynth.CodeInvalidFormat, map[string]string{"format": sc.Format}, "format", sc.Format)
			ok = false
		}
	}
	if r, isNum := toRat(v); isNum {
		if b := sc.Minimum; b != nil && r.Cmp(rat(*b)) < 0 {
			st.report(p, typesynth.CodeTooSmall, limitS(b.String()), "min", b.String())
			ok = false
		}
		if b := sc.ExclusiveMinimum; b != nil && r.Cmp(rat(*b)) <= 0 {
			st.report(p, typesynth.CodeTooSmall, limitS(b.String()), "min", b.String(), "exclusive", true)
			ok = false
		}
		if b := sc.Maximum; b != nil && r.Cmp(rat(*b)) > 0 {
			st.report(p, typesynth.CodeTooBig, limitS(b.String()), "max", b.String())
			ok = false
		}
		if b := sc.ExclusiveMaximum; b != nil && r.Cmp(rat(*b)) >= 0 {
			st.report(p, typesynth.CodeTooBig, limitS(b.String()), "max", b.String(), "exclusive", true)
			ok = false
		}
		if m := sc.MultipleOf; m != nil {
			q := rat(*m)
			if q.Sign() > 0 && !q.Quo(r, q).IsInt() {
				st.report(p, typesynth.CodeNotMultipleOf, limitS(m.String()), "multipleOf", m.String())
				ok = false
			}
		}
	}
	if !ok {
		return nil, false
	}
	return v, true
}

func typeMatches(t ir.ScalarType, v any) bool {
	switch t {
	case ir.Any:
		return true
	case ir.Null:
		return v == nil
	case ir.String:
		_, ok := v.(string)
		return ok
	case ir.Boolean:
		_, ok := v.(bool)
		return ok
	case ir.Number:
		_, ok := toRat(v)
		return ok
	case ir.Integer:
		r, ok := toRat(v)
		return ok && r.IsInt()
	}
	return false
}

type arrayV struct {
	a     *ir.Array
	items validator
}

func (a *arrayV) validate(st *state, p typesynth.PathRef, v any) (any, bool) {
	xs, isArr := normalizeInput(v).([]any)
	if !isArr {
		st.report(p, typesynth.CodeInvalidType, map[string]string{"expected": "array"}, "expected", "array", "got", kindOf(v))
		return nil, false
	}
	ok := true
	if m := a.a.MinItems; m != nil && len(xs) < *m {
		st.report(p, typesynth.CodeTooShort, limit(*m), "min", *m, "got", len(xs))
		ok = false
	}
	if m := a.a.MaxItems; m != nil && len(xs) > *m {
		st.report(p, typesynth.CodeTooLong, limit(*m), "max", *m, "got", len(xs))
		ok = false
	}
	out := make([]any, len(xs))
	for i, x := range xs {
		if st.stop() {
			return nil, false
		}
		nv, good := a.items.validate(st, p.Index(i), x)
		ok = ok && good
		out[i] = nv
	}
	if a.a.UniqueItems {
		for i := 1; i < len(xs); i++ {
			for j := 0; j < i; j++ {
				if jsonEqual(xs[i], xs[j]) {
					st.report(p.Index(i), typesynth.CodeNotUnique, nil, "first", j)
					ok = false
					break
				}
			}
		}
	}
	if !ok {
		return nil, false
	}
	return out, true
}

type fieldV struct {
	f ir.Field
	h *handle
}

type objectV struct {
	obj        *ir.Object
	fields     []fieldV
	additional validator // nil: closed
	byKey      map[string]int
	byName     map[string]int
	orphans    []string // required names without a declared field
}

func (o *objectV) validate(st *state, p typesynth.PathRef, v any) (any, bool) {
	m, isObj := normalizeInput(v).(map[string]any)
	if !isObj {
		st.report(p, typesynth.CodeInvalidType, map[string]string{"expected": "object"}, "expected", "object", "got", kindOf(v))
		return nil, false
	}
	ok := true
	out := make(map[string]any, len(m))
	for _, fv := range o.fields {
		if st.stop() {
			return nil, false
		}
		f := fv.f
		key := f.Original
		val, has := m[key]
		if st.byName && f.Alias != "" {
			if nv, hasName := m[f.Name]; hasName {
				if has {
					st.report(p.Field(f.Name), typesynth.CodeAliasConflict, nil, "alias", f.Alias)
					ok = false
					continue
				}
				key, val, has = f.Name, nv, true
			}
		}
		if !has {
			switch {
			case f.Required:
				st.report(p.Field(f.Original), typesynth.CodeRequired, nil)
				ok = false
			case f.HasDefault:
				out[f.Name] = copyValue(f.Default)
			}
			continue
		}
		nv, good := fv.h.validate(st, p.Field(key), val)
		if !good {
			ok = false
			continue
		}
		out[f.Name] = nv
	}
	for _, r := range o.orphans {
		if _, has := m[r]; !has {
			st.report(p.Field(r), typesynth.CodeRequired, nil)
			ok = false
		}
	}
	var extra []string
	for k := range m {
		if _, known := o.byKey[k]; known {
			continue
		}
		if i, known := o.byName[k]; known && st.byName && o.fields[i].f.Alias != "" {
			continue
		}
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		if st.stop() {
			return nil, false
		}
		if o.additional == nil {
			st.report(p.Field(k), typesynth.CodeUnknownKey, nil, "key", k)
			ok = false
			continue
		}
		nv, good := o.additional.validate(st, p.Field(k), m[k])
		if !good {
			ok = false
			continue
		}
		out[k] = nv
	}
	if !ok {
		return nil, false
	}
	return out, true
}

type unionV struct {
	u       *ir.Union
	members []validator
	// discKeys are the wire names members give the discriminator, in member
	// order; discName is its sanitized name. dispatch maps canonical
	// constant keys to member indexes.
	discKeys []string
	discName string
	dispatch map[string]int
}

// discriminator finds the discriminator value in m under any member's wire
// name, or under the sanitized name when PopulateByName is on.
func (u *unionV) discriminator(st *state, m map[string]any) (string, any, bool) {
	for _, k := range u.discKeys {
		if v, has := m[k]; has {
			return k, v, true
		}
	}
	if st.byName {
		if v, has := m[u.discName]; has {
			return u.discName, v, true
		}
	}
	return "", nil, false
}

func (u *unionV) validate(st *state, p typesynth.PathRef, v any) (any, bool) {
	if len(u.discKeys) > 0 {
		if m, isObj := normalizeInput(v).(map[string]any); isObj {
			key, dv, has := u.discriminator(st, m)
			if !has {
				key = u.discKeys[0]
				st.report(p.Field(key), typesynth.CodeDiscriminatorMissing, map[string]string{"key": key}, "key", key)
				return nil, false
			}
			i, known := u.dispatch[canonKey(dv)]
			if !known {
				st.report(p.Field(key), typesynth.CodeDiscriminatorUnknown, map[string]string{"key": key}, "key", key, "value", dv)
				return nil, false
			}
			return u.members[i].validate(st, p, v)
		}
	}
	matches := 0
	var out any
	for _, m := range u.members {
		probe := st.sub()
		nv, good := m.validate(probe, p, v)
		if probe.err != nil {
			st.err = probe.err
			return nil, false
		}
		if !good {
			continue
		}
		matches++
		if matches == 1 {
			out = nv
		}
		if !u.u.Exclusive {
			break
		}
	}
	switch {
	case matches == 0:
		st.report(p, typesynth.CodeUnionNoMatch, nil, "members", len(u.members))
		return nil, false
	case matches > 1:
		st.report(p, typesynth.CodeUnionAmbiguous, nil, "matches", matches)
		return nil, false
	}
	return out, true
}
