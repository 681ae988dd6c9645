package typesynth_test

import (
	"errors"
	"fmt"
	"testing"

	typesynth "github.com/reoring/typesynth"
)

func TestSchemaError_KindsMatchSentinels(t *testing.T) {
	cases := []struct {
		kind typesynth.ErrorKind
		want error
		not  error
	}{
		{typesynth.KindSchema, typesynth.ErrSchema, typesynth.ErrType},
		{typesynth.KindType, typesynth.ErrType, typesynth.ErrReference},
		{typesynth.KindReference, typesynth.ErrReference, typesynth.ErrCombiner},
		{typesynth.KindCombiner, typesynth.ErrCombiner, typesynth.ErrType},
	}
	for _, c := range cases {
		err := fmt.Errorf("wrapped: %w", typesynth.Errorf(c.kind, "#/a", "boom %d", 1))
		if !errors.Is(err, c.want) || !errors.Is(err, typesynth.ErrSchema) {
			t.Fatalf("%s: errors.Is(%v) failed", c.kind, c.want)
		}
		if errors.Is(err, c.not) {
			t.Fatalf("%s: unexpectedly matches %v", c.kind, c.not)
		}
		se, ok := typesynth.AsSchemaError(err)
		if !ok || se.Path != "#/a" || se.Message != "boom 1" {
			t.Fatalf("AsSchemaError = %+v, %v", se, ok)
		}
	}
}

func TestSchemaError_Message(t *testing.T) {
	cause := errors.New("eof")
	se := typesynth.Errorf(typesynth.KindReference, "#/x", "cannot follow")
	se.Cause = cause
	if got, want := se.Error(), "reference error at #/x: cannot follow: eof"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(se, cause) {
		t.Fatalf("cause not unwrapped")
	}
}

func TestPathRef(t *testing.T) {
	p := typesynth.Root()
	if p.Pointer() != "/" {
		t.Fatalf("root = %q", p.Pointer())
	}
	q := p.Field("items").Index(2).Field("a/b~c")
	if got := q.Pointer(); got != "/items/2/a~1b~0c" {
		t.Fatalf("pointer = %q", got)
	}
	if p.Pointer() != "/" {
		t.Fatalf("parent mutated: %q", p.Pointer())
	}
	is := q.Issue(typesynth.CodeTooSmall, "too small", "min", 3)
	if is.Path != q.Pointer() || is.Params["min"] != 3 {
		t.Fatalf("issue = %+v", is)
	}
}

func TestIssues_Error(t *testing.T) {
	var iss typesynth.Issues
	for i := 0; i < 4; i++ {
		iss = typesynth.AppendIssues(iss, typesynth.Root().Index(i).Issue(typesynth.CodeRequired, "required"))
	}
	want := "required at /0; required at /1; required at /2; ... (total 4)"
	if got := iss.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	got, ok := typesynth.AsIssues(fmt.Errorf("validate: %w", iss))
	if !ok || len(got) != 4 {
		t.Fatalf("AsIssues = %v, %v", got, ok)
	}
}
