package document

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// FromValue builds a Document from already-decoded Go values. Go maps carry
// no order, so object keys are sorted to keep synthesis deterministic; use
// ParseJSON or ParseYAML when declaration order matters.
func FromValue(v any) (*Document, error) {
	n, err := fromValue(v, "")
	if err != nil {
		return nil, err
	}
	return &Document{Root: n}, nil
}

func fromValue(v any, ptr string) (*Node, error) {
	switch t := v.(type) {
	case nil:
		return newNode(KindNull, ptr), nil
	case *Node:
		return fromValue(t.Value(), ptr)
	case bool:
		n := newNode(KindBool, ptr)
		n.b = t
		return n, nil
	case string:
		n := newNode(KindString, ptr)
		n.s = t
		return n, nil
	case Number:
		return number(t, ptr), nil
	case json.Number:
		return number(Number(t), ptr), nil
	case float64:
		return number(NumberFromFloat(t), ptr), nil
	case float32:
		return number(NumberFromFloat(float64(t)), ptr), nil
	case int:
		return number(Number(strconv.Itoa(t)), ptr), nil
	case int64:
		return number(Number(strconv.FormatInt(t, 10)), ptr), nil
	case int32:
		return number(Number(strconv.FormatInt(int64(t), 10)), ptr), nil
	case uint:
		return number(Number(strconv.FormatUint(uint64(t), 10)), ptr), nil
	case uint64:
		return number(Number(strconv.FormatUint(t, 10)), ptr), nil
	case map[string]any:
		n := newNode(KindObject, ptr)
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			c, err := fromValue(t[k], childPointer(ptr, k))
			if err != nil {
				return nil, err
			}
			n.set(k, c)
		}
		return n, nil
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("document: non-string key %v at %q", k, ptr)
			}
			m[ks] = vv
		}
		return fromValue(m, ptr)
	case []any:
		n := newNode(KindArray, ptr)
		for i, e := range t {
			c, err := fromValue(e, childPointer(ptr, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, c)
		}
		return n, nil
	case []string:
		n := newNode(KindArray, ptr)
		for i, e := range t {
			c := newNode(KindString, childPointer(ptr, strconv.Itoa(i)))
			c.s = e
			n.items = append(n.items, c)
		}
		return n, nil
	}
	// Remaining slices/maps of concrete types.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		arr := make([]any, rv.Len())
		for i := range arr {
			arr[i] = rv.Index(i).Interface()
		}
		return fromValue(arr, ptr)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("document: unsupported map key type %s at %q", rv.Type().Key(), ptr)
		}
		m := make(map[string]any, rv.Len())
		for _, k := range rv.MapKeys() {
			m[k.String()] = rv.MapIndex(k).Interface()
		}
		return fromValue(m, ptr)
	}
	return nil, fmt.Errorf("document: unsupported value %T at %q", v, ptr)
}

func number(num Number, ptr string) *Node {
	n := newNode(KindNumber, ptr)
	n.num = num
	return n
}
