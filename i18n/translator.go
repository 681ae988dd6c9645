// Package i18n localizes validation issue messages.
package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "format").
type Translator interface {
	Message(code string, data map[string]string) string
}

var messages = map[string]map[string]string{
	"en": {
		"invalid_type":          "invalid type{expected: expected %s}",
		"required":              "required property missing",
		"unknown_key":           "unknown key",
		"too_small":             "value is below the minimum{limit: of %s}",
		"too_big":               "value is above the maximum{limit: of %s}",
		"too_short":             "too short{limit: (minimum %s)}",
		"too_long":              "too long{limit: (maximum %s)}",
		"pattern":               "does not match pattern{pattern: %s}",
		"invalid_enum":          "value is not one of the allowed values",
		"invalid_const":         "value does not equal the constant{expected: %s}",
		"invalid_format":        "invalid format{format: %s}",
		"not_multiple_of":       "not a multiple{limit: of %s}",
		"not_unique":            "duplicate item",
		"discriminator_missing": "discriminator property missing{key: %s}",
		"discriminator_unknown": "unknown discriminator value{key: for %s}",
		"union_no_match":        "value matches no union member",
		"union_ambiguous":       "value matches more than one union member",
		"alias_conflict":        "both the field name and its alias are present",
	},
	"ja": {
		"invalid_type":          "型が不正です{expected: (期待: %s)}",
		"required":              "必須プロパティが不足しています",
		"unknown_key":           "未知のキーです",
		"too_small":             "最小値を下回っています{limit: (最小: %s)}",
		"too_big":               "最大値を超えています{limit: (最大: %s)}",
		"too_short":             "短すぎます{limit: (最小: %s)}",
		"too_long":              "長すぎます{limit: (最大: %s)}",
		"pattern":               "パターンに一致しません{pattern: %s}",
		"invalid_enum":          "許可された値ではありません",
		"invalid_const":         "定数と一致しません{expected: %s}",
		"invalid_format":        "形式が不正です{format: %s}",
		"not_multiple_of":       "倍数ではありません{limit: (%s)}",
		"not_unique":            "要素が重複しています",
		"discriminator_missing": "判別プロパティがありません{key: %s}",
		"discriminator_unknown": "判別値が不明です{key: (%s)}",
		"union_no_match":        "どの候補にも一致しません",
		"union_ambiguous":       "複数の候補に一致します",
		"alias_conflict":        "フィールド名と別名の両方が指定されています",
	},
}

// dictTranslator is the built-in dictionary-based Translator. Templates may
// carry one optional "{key: text %s}" section, rendered only when data has
// that key.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := messages[t.lang][code]
	if !ok {
		return code
	}
	return render(tmpl, data)
}

func render(tmpl string, data map[string]string) string {
	open := strings.IndexByte(tmpl, '{')
	end := strings.LastIndexByte(tmpl, '}')
	if open < 0 || end < open {
		return tmpl
	}
	head, sect := tmpl[:open], tmpl[open+1:end]
	colon := strings.IndexByte(sect, ':')
	if colon < 0 {
		return head
	}
	val, ok := data[sect[:colon]]
	if !ok || val == "" {
		return strings.TrimRight(head, " ")
	}
	return head + " " + strings.Replace(strings.TrimLeft(sect[colon+1:], " "), "%s", val, 1)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
