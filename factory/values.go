package factory

import (
	"math/big"
	"reflect"
	"strconv"

	"github.com/reoring/typesynth/document"
)

// numeric is satisfied by encoding/json.Number, go-json's Number and
// document.Number.
type numeric interface {
	String() string
	Float64() (float64, error)
}

// toRat converts any numeric input to an exact rational.
func toRat(v any) (*big.Rat, bool) {
	switch t := v.(type) {
	case nil, bool, string:
		return nil, false
	case int:
		return new(big.Rat).SetInt64(int64(t)), true
	case int8:
		return new(big.Rat).SetInt64(int64(t)), true
	case int16:
		return new(big.Rat).SetInt64(int64(t)), true
	case int32:
		return new(big.Rat).SetInt64(int64(t)), true
	case int64:
		return new(big.Rat).SetInt64(t), true
	case uint:
		return new(big.Rat).SetUint64(uint64(t)), true
	case uint8:
		return new(big.Rat).SetUint64(uint64(t)), true
	case uint16:
		return new(big.Rat).SetUint64(uint64(t)), true
	case uint32:
		return new(big.Rat).SetUint64(uint64(t)), true
	case uint64:
		return new(big.Rat).SetUint64(t), true
	case float32:
		return ratFromFloat(float64(t))
	case float64:
		return ratFromFloat(t)
	case numeric:
		return new(big.Rat).SetString(t.String())
	}
	return nil, false
}

func ratFromFloat(f float64) (*big.Rat, bool) {
	// go through the shortest decimal form so 0.1 stays 1/10
	return new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
}

// kindOf names the JSON kind of a decoded value.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if r, ok := toRat(v); ok {
		if r.IsInt() {
			return "integer"
		}
		return "number"
	}
	return reflect.TypeOf(v).String()
}

// jsonEqual compares decoded values by JSON semantics: numbers by value,
// objects by members, arrays element-wise.
func jsonEqual(a, b any) bool {
	if ra, ok := toRat(a); ok {
		rb, ok := toRat(b)
		return ok && ra.Cmp(rb) == 0
	}
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !jsonEqual(xv, yv) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !jsonEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	if _, ok := toRat(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// canonKey returns a dispatch key for a scalar literal in the form of
// document.ConstKey; "" when v is not a string, boolean or number.
func canonKey(v any) string {
	if k, ok := document.ConstKey(v); ok {
		return k
	}
	if r, ok := toRat(v); ok {
		return document.RatKey(r)
	}
	return ""
}

// copyValue deep-copies maps and slices so defaults are never shared
// between outputs.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = copyValue(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	}
	return v
}

// normalizeInput turns typed Go containers into map[string]any / []any so
// callers may pass structs' decoded forms such as []string.
func normalizeInput(v any) any {
	switch t := v.(type) {
	case nil, bool, string, map[string]any, []any:
		return v
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if _, ok := toRat(v); ok {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out
	}
	return v
}
