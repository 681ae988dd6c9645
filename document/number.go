package document

import (
	"math/big"
	"strconv"
)

// Number keeps a numeric literal as written in the source document.
type Number string

func (n Number) String() string { return string(n) }

func (n Number) Float64() (float64, error) { return strconv.ParseFloat(string(n), 64) }

func (n Number) Int64() (int64, error) { return strconv.ParseInt(string(n), 10, 64) }

// Rat returns the exact rational value of the literal.
func (n Number) Rat() (*big.Rat, bool) { return new(big.Rat).SetString(string(n)) }

// IsInteger reports whether the literal denotes a whole number (1.0 counts).
func (n Number) IsInteger() bool {
	r, ok := n.Rat()
	return ok && r.IsInt()
}

// Cmp compares two numbers exactly. Unparseable literals compare as zero.
func (n Number) Cmp(o Number) int {
	a, ok := n.Rat()
	if !ok {
		a = new(big.Rat)
	}
	b, ok := o.Rat()
	if !ok {
		b = new(big.Rat)
	}
	return a.Cmp(b)
}

// NumberFromFloat formats f in its shortest round-tripping form.
func NumberFromFloat(f float64) Number { return Number(strconv.FormatFloat(f, 'g', -1, 64)) }

// ConstKey returns a type-tagged key for a string, boolean or Number
// literal: "s:" plus the string, "b:" plus true/false, "n:" plus the exact
// rational. Numbers that compare equal share a key (1 and 1.0).
func ConstKey(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return "s:" + t, true
	case bool:
		return "b:" + strconv.FormatBool(t), true
	case Number:
		r, ok := t.Rat()
		if !ok {
			return "", false
		}
		return RatKey(r), true
	}
	return "", false
}

// RatKey is the ConstKey of the number r.
func RatKey(r *big.Rat) string { return "n:" + r.RatString() }
