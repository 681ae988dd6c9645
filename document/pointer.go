package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPointer is returned for pointers that are not RFC 6901 syntax.
var ErrInvalidPointer = errors.New("document: invalid JSON pointer")

// LookupError reports a pointer segment that does not exist.
type LookupError struct {
	Pointer string
	Token   string
	Depth   int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("document: %q not found (segment %d %q)", e.Pointer, e.Depth, e.Token)
}

// EscapeToken escapes '~' and '/' per RFC 6901.
func EscapeToken(tok string) string {
	if !strings.ContainsAny(tok, "~/") {
		return tok
	}
	return strings.ReplaceAll(strings.ReplaceAll(tok, "~", "~0"), "/", "~1")
}

// UnescapeToken reverses EscapeToken. A '~' not followed by '0' or '1' is invalid.
func UnescapeToken(tok string) (string, error) {
	if !strings.Contains(tok, "~") {
		return tok, nil
	}
	b := &strings.Builder{}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(tok) {
			return "", fmt.Errorf("%w: dangling '~' in %q", ErrInvalidPointer, tok)
		}
		switch tok[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("%w: bad escape '~%c' in %q", ErrInvalidPointer, tok[i+1], tok)
		}
		i++
	}
	return b.String(), nil
}

// SplitPointer splits an escaped pointer ("" or "/a/b") into unescaped tokens.
func SplitPointer(p string) ([]string, error) {
	if p == "" {
		return nil, nil
	}
	if p[0] != '/' {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPointer, p)
	}
	raw := strings.Split(p[1:], "/")
	out := make([]string, len(raw))
	for i, r := range raw {
		t, err := UnescapeToken(r)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// JoinPointer builds an escaped pointer from unescaped tokens.
func JoinPointer(tokens ...string) string {
	b := &strings.Builder{}
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(t))
	}
	return b.String()
}

// LastToken returns the unescaped final token of a pointer ("" for the root).
func LastToken(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return ""
	}
	t, err := UnescapeToken(p[i+1:])
	if err != nil {
		return p[i+1:]
	}
	return t
}

func arrayIndex(tok string) (int, bool) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, false
	}
	i, err := strconv.Atoi(tok)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
