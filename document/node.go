// Package document loads JSON and YAML schema documents into ordered,
// pointer-addressable nodes.
package document

// Kind identifies the JSON shape of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Node is a read-only view over one fragment of a parsed document. Object
// keys keep their declaration order.
type Node struct {
	kind   Kind
	ptr    string
	b      bool
	s      string
	num    Number
	keys   []string
	fields map[string]*Node
	items  []*Node

	// Line and Column are 1-based source positions when the loader knows them
	// (YAML), 0 otherwise.
	Line   int
	Column int
}

func newNode(k Kind, ptr string) *Node {
	n := &Node{kind: k, ptr: ptr}
	if k == KindObject {
		n.fields = map[string]*Node{}
	}
	return n
}

// set appends a member; it reports false when key is already present.
func (n *Node) set(key string, child *Node) bool {
	if _, dup := n.fields[key]; dup {
		return false
	}
	n.keys = append(n.keys, key)
	n.fields[key] = child
	return true
}

func childPointer(parent, token string) string { return parent + "/" + EscapeToken(token) }

func (n *Node) Kind() Kind { return n.kind }

// Pointer is the escaped JSON Pointer of the node relative to the document
// root ("" for the root itself).
func (n *Node) Pointer() string { return n.ptr }

// ID is the fragment identity: "#" followed by the pointer.
func (n *Node) ID() string { return "#" + n.ptr }

func (n *Node) IsObject() bool { return n != nil && n.kind == KindObject }
func (n *Node) IsArray() bool  { return n != nil && n.kind == KindArray }

// Keys returns object keys in declaration order.
func (n *Node) Keys() []string {
	if n.kind != KindObject {
		return nil
	}
	return append([]string(nil), n.keys...)
}

// Get returns the member named key.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.kind != KindObject {
		return nil, false
	}
	c, ok := n.fields[key]
	return c, ok
}

// Has reports whether an object node declares key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Len returns the number of members or elements.
func (n *Node) Len() int {
	switch n.kind {
	case KindObject:
		return len(n.keys)
	case KindArray:
		return len(n.items)
	}
	return 0
}

// Index returns the i-th array element.
func (n *Node) Index(i int) *Node {
	if n.kind != KindArray || i < 0 || i >= len(n.items) {
		return nil
	}
	return n.items[i]
}

// Items returns array elements.
func (n *Node) Items() []*Node {
	if n.kind != KindArray {
		return nil
	}
	return append([]*Node(nil), n.items...)
}

// Str returns the string value and whether the node is a string.
func (n *Node) Str() (string, bool) {
	if n == nil || n.kind != KindString {
		return "", false
	}
	return n.s, true
}

// Bool returns the boolean value and whether the node is a boolean.
func (n *Node) Bool() (bool, bool) {
	if n == nil || n.kind != KindBool {
		return false, false
	}
	return n.b, true
}

// Num returns the number value and whether the node is a number.
func (n *Node) Num() (Number, bool) {
	if n == nil || n.kind != KindNumber {
		return "", false
	}
	return n.num, true
}

// Value converts the subtree into plain Go values: map[string]any, []any,
// string, Number, bool or nil.
func (n *Node) Value() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindBool:
		return n.b
	case KindNumber:
		return n.num
	case KindString:
		return n.s
	case KindArray:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = it.Value()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].Value()
		}
		return out
	}
	return nil
}

// Document is a parsed schema document.
type Document struct {
	Root *Node
}

// Lookup walks pointer (escaped, without the leading '#') from the root.
func (d *Document) Lookup(pointer string) (*Node, error) {
	toks, err := SplitPointer(pointer)
	if err != nil {
		return nil, err
	}
	cur := d.Root
	for i, tok := range toks {
		next, ok := step(cur, tok)
		if !ok {
			return nil, &LookupError{Pointer: pointer, Token: tok, Depth: i}
		}
		cur = next
	}
	return cur, nil
}

func step(n *Node, tok string) (*Node, bool) {
	switch n.kind {
	case KindObject:
		return n.Get(tok)
	case KindArray:
		i, ok := arrayIndex(tok)
		if !ok {
			return nil, false
		}
		c := n.Index(i)
		return c, c != nil
	}
	return nil, false
}
