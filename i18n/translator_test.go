package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg != "invalid type" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" || msg == "invalid_type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Data(t *testing.T) {
	if msg := T("invalid_type", map[string]string{"expected": "integer"}); msg != "invalid type expected integer" {
		t.Fatalf("got %q", msg)
	}
	if msg := T("too_small", map[string]string{"limit": "3"}); msg != "value is below the minimum of 3" {
		t.Fatalf("got %q", msg)
	}
	if msg := T("invalid_format", map[string]string{"format": "uuid"}); msg != "invalid format uuid" {
		t.Fatalf("got %q", msg)
	}
	if msg := T("not_unique", map[string]string{"limit": "3"}); msg != "duplicate item" {
		t.Fatalf("got %q", msg)
	}
}

func TestTranslator_UnknownCodeAndCustom(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("got %q", msg)
	}
	SetTranslator(fixed("x"))
	if msg := T("required", nil); msg != "x" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("required", nil); msg != "required property missing" {
		t.Fatalf("reset failed: %q", msg)
	}
}

type fixed string

func (f fixed) Message(string, map[string]string) string { return string(f) }
