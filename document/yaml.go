package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes the first YAML document in data. Duplicate keys are
// rejected with their positions.
func ParseYAML(data []byte) (*Document, error) {
	docs, err := ReadYAMLAll(bytes.NewReader(data), 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, errors.New("document: empty YAML input")
	}
	return docs[0], nil
}

// ReadYAMLAll decodes up to limit documents (limit <= 0 reads all) from a
// multi-document YAML stream.
func ReadYAMLAll(r io.Reader, limit int) ([]*Document, error) {
	dec := yaml.NewDecoder(r)
	var out []*Document
	for limit <= 0 || len(out) < limit {
		var root yaml.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("document: invalid YAML: %w", err)
		}
		if len(root.Content) == 0 {
			continue
		}
		n, err := fromYAMLNode(root.Content[0], "")
		if err != nil {
			return nil, err
		}
		out = append(out, &Document{Root: n})
	}
	return out, nil
}

func fromYAMLNode(y *yaml.Node, ptr string) (*Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return positioned(newNode(KindNull, ptr), y), nil
		}
		return fromYAMLNode(y.Content[0], ptr)
	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, fmt.Errorf("document: dangling YAML alias at %d:%d", y.Line, y.Column)
		}
		return fromYAMLNode(y.Alias, ptr)
	case yaml.MappingNode:
		n := positioned(newNode(KindObject, ptr), y)
		first := make(map[string][2]int, len(y.Content)/2)
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("document: non-scalar YAML key at %d:%d", k.Line, k.Column)
			}
			key := k.Value
			if pos, dup := first[key]; dup {
				return nil, &DuplicateKeyError{Key: key, Pointer: ptr, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[key] = [2]int{k.Line, k.Column}
			child, err := fromYAMLNode(v, childPointer(ptr, key))
			if err != nil {
				return nil, err
			}
			n.set(key, child)
		}
		return n, nil
	case yaml.SequenceNode:
		n := positioned(newNode(KindArray, ptr), y)
		for i, c := range y.Content {
			child, err := fromYAMLNode(c, childPointer(ptr, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, child)
		}
		return n, nil
	case yaml.ScalarNode:
		return positioned(yamlScalar(y, ptr), y), nil
	}
	return nil, fmt.Errorf("document: unsupported YAML node kind %v at %d:%d", y.Kind, y.Line, y.Column)
}

func yamlScalar(y *yaml.Node, ptr string) *Node {
	switch y.ShortTag() {
	case "!!null":
		return newNode(KindNull, ptr)
	case "!!bool":
		if b, err := strconv.ParseBool(y.Value); err == nil {
			n := newNode(KindBool, ptr)
			n.b = b
			return n
		}
	case "!!int":
		if i, err := strconv.ParseInt(y.Value, 0, 64); err == nil {
			n := newNode(KindNumber, ptr)
			n.num = Number(strconv.FormatInt(i, 10))
			return n
		}
	case "!!float":
		if f, err := strconv.ParseFloat(y.Value, 64); err == nil {
			n := newNode(KindNumber, ptr)
			n.num = NumberFromFloat(f)
			return n
		}
	}
	n := newNode(KindString, ptr)
	n.s = y.Value
	return n
}

func positioned(n *Node, y *yaml.Node) *Node {
	n.Line, n.Column = y.Line, y.Column
	return n
}
