package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

// DuplicateKeyError reports a key declared twice in one object. Line/Col are
// only set for YAML input.
type DuplicateKeyError struct {
	Key       string
	Pointer   string // Pointer of the enclosing object.
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("duplicate key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
	}
	return fmt.Sprintf("duplicate key %q in object at %q", e.Key, e.Pointer)
}

// ParseJSON decodes a JSON document, preserving object key order.
func ParseJSON(data []byte) (*Document, error) { return ReadJSON(bytes.NewReader(data)) }

// ReadJSON decodes a single JSON document from r.
func ReadJSON(r io.Reader) (*Document, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	root, err := decodeValue(dec, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, errors.New("document: trailing data after JSON value")
		}
		return nil, fmt.Errorf("document: invalid JSON: %w", err)
	}
	return &Document{Root: root}, nil
}

func decodeValue(dec *j.Decoder, ptr string) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document: unexpected end of JSON input")
		}
		return nil, fmt.Errorf("document: invalid JSON: %w", err)
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			n := newNode(KindObject, ptr)
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("document: invalid JSON: %w", err)
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("document: expected object key at %q, got %v", ptr, kt)
				}
				child, err := decodeValue(dec, childPointer(ptr, key))
				if err != nil {
					return nil, err
				}
				if !n.set(key, child) {
					return nil, &DuplicateKeyError{Key: key, Pointer: ptr}
				}
			}
			if _, err := dec.Token(); err != nil { // '}'
				return nil, fmt.Errorf("document: invalid JSON: %w", err)
			}
			return n, nil
		case '[':
			n := newNode(KindArray, ptr)
			for dec.More() {
				child, err := decodeValue(dec, childPointer(ptr, strconv.Itoa(len(n.items))))
				if err != nil {
					return nil, err
				}
				n.items = append(n.items, child)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return nil, fmt.Errorf("document: invalid JSON: %w", err)
			}
			return n, nil
		}
		return nil, fmt.Errorf("document: unexpected delimiter %q at %q", rune(v), ptr)
	case string:
		n := newNode(KindString, ptr)
		n.s = v
		return n, nil
	case j.Number:
		n := newNode(KindNumber, ptr)
		n.num = Number(v)
		return n, nil
	case float64:
		n := newNode(KindNumber, ptr)
		n.num = NumberFromFloat(v)
		return n, nil
	case bool:
		n := newNode(KindBool, ptr)
		n.b = v
		return n, nil
	case nil:
		return newNode(KindNull, ptr), nil
	}
	return nil, fmt.Errorf("document: unsupported JSON token %T at %q", tok, ptr)
}
