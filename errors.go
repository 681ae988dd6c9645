package typesynth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies synthesis failures.
type ErrorKind int

const (
	KindSchema    ErrorKind = iota // Malformed keyword values, sanitization collisions.
	KindType                       // Unrecognized/unsupported type, array without items.
	KindReference                  // Invalid pointer, unresolvable path, external reference.
	KindCombiner                   // Conflicting allOf merge, invalid combinator member.
)

func (k ErrorKind) String() string {
	switch k {
	case KindType:
		return "type error"
	case KindReference:
		return "reference error"
	case KindCombiner:
		return "combiner error"
	default:
		return "schema error"
	}
}

// Sentinels for errors.Is. Every kind also matches ErrSchema.
var (
	ErrSchema    = errors.New("typesynth: schema error")
	ErrType      = errors.New("typesynth: type error")
	ErrReference = errors.New("typesynth: reference error")
	ErrCombiner  = errors.New("typesynth: combiner error")
)

// SchemaError reports the first failure found while synthesizing a document.
type SchemaError struct {
	Kind    ErrorKind
	Path    string // Fragment identity where the failure was detected (for example: #/definitions/Node).
	Message string
	Cause   error // Optional: underlying error.
}

func (e *SchemaError) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *SchemaError) Unwrap() error { return e.Cause }

// Is matches the kind sentinel and the ErrSchema base.
func (e *SchemaError) Is(target error) bool {
	switch target {
	case ErrSchema:
		return true
	case ErrType:
		return e.Kind == KindType
	case ErrReference:
		return e.Kind == KindReference
	case ErrCombiner:
		return e.Kind == KindCombiner
	}
	return false
}

// Errorf builds a SchemaError of the given kind.
func Errorf(kind ErrorKind, path, format string, a ...any) *SchemaError {
	return &SchemaError{Kind: kind, Path: path, Message: fmt.Sprintf(format, a...)}
}

// AsSchemaError extracts a SchemaError using errors.As.
func AsSchemaError(err error) (*SchemaError, bool) {
	if err == nil {
		return nil, false
	}
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Issue codes reported by models built from synthesized descriptors.
const (
	CodeInvalidType          = "invalid_type"
	CodeRequired             = "required"
	CodeUnknownKey           = "unknown_key"
	CodeTooSmall             = "too_small"
	CodeTooBig               = "too_big"
	CodeTooShort             = "too_short"
	CodeTooLong              = "too_long"
	CodePattern              = "pattern"
	CodeInvalidEnum          = "invalid_enum"
	CodeInvalidConst         = "invalid_const"
	CodeInvalidFormat        = "invalid_format"
	CodeNotMultipleOf        = "not_multiple_of"
	CodeNotUnique            = "not_unique"
	CodeDiscriminatorMissing = "discriminator_missing"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeUnionNoMatch         = "union_no_match"
	CodeUnionAmbiguous       = "union_ambiguous"
	CodeAliasConflict        = "alias_conflict"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, format names, etc.
	// Params carries structured parameters (e.g., {"min":1, "got":0}).
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
