package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a single typed cell. The zero Value is Null.
type Value struct {
	valid bool
	kind  Kind
	i     int64
	f     float64
	b     bool
	s     string
}

// NullValue returns the null Value.
func NullValue() Value {
	return Value{}
}

// IntegerValue returns an Integer Value.
func IntegerValue(v int64) Value {
	return Value{valid: true, kind: KindInteger, i: v}
}

// RealValue returns a Real Value.
func RealValue(v float64) Value {
	return Value{valid: true, kind: KindReal, f: v}
}

// BooleanValue returns a Boolean Value.
func BooleanValue(v bool) Value {
	return Value{valid: true, kind: KindBoolean, b: v}
}

// TextValue returns a Text Value.
func TextValue(v string) Value {
	return Value{valid: true, kind: KindText, s: v}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return !v.valid
}

// Kind returns the kind of a non-null value. It is meaningless for null.
func (v Value) Kind() Kind {
	return v.kind
}

// Int returns the integer payload.
func (v Value) Int() int64 { return v.i }

// Float returns the real payload.
func (v Value) Float() float64 { return v.f }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// Text returns the text payload.
func (v Value) Text() string { return v.s }

// Any returns the value as a database/sql argument.
func (v Value) Any() any {
	if !v.valid {
		return nil
	}
	switch v.kind {
	case KindInteger:
		return v.i
	case KindReal:
		return v.f
	case KindBoolean:
		return v.b
	case KindText:
		return v.s
	default:
		return v.s
	}
}

// String renders the value as text. Null renders as the empty string.
func (v Value) String() string {
	if !v.valid {
		return ""
	}
	switch v.kind {
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindReal:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindText:
		return v.s
	default:
		return v.s
	}
}

// Equal compares two values, including their kinds.
func (v Value) Equal(o Value) bool {
	if v.valid != o.valid {
		return false
	}
	if !v.valid {
		return true
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i == o.i
	case KindReal:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBoolean:
		return v.b == o.b
	default:
		return v.s == o.s
	}
}

// ScanValue converts a raw driver value into a Value, using the declared
// column kind to restore booleans the store keeps as 0/1 integers.
func ScanValue(kind Kind, raw any) Value {
	switch x := raw.(type) {
	case nil:
		return NullValue()
	case int64:
		if kind == KindBoolean {
			return BooleanValue(x != 0)
		}
		return IntegerValue(x)
	case int:
		return ScanValue(kind, int64(x))
	case int32:
		return ScanValue(kind, int64(x))
	case float64:
		return RealValue(x)
	case float32:
		return RealValue(float64(x))
	case bool:
		return BooleanValue(x)
	case []byte:
		return TextValue(string(x))
	case string:
		if kind == KindBoolean {
			switch strings.ToLower(x) {
			case "true":
				return BooleanValue(true)
			case "false":
				return BooleanValue(false)
			}
		}
		return TextValue(x)
	default:
		return TextValue(fmt.Sprint(x))
	}
}

// Row is one stored row rendered as typed values.
type Row []Value

// Strings renders every value of the row.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.String()
	}
	return out
}
