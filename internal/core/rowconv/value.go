// Package rowconv converts native result rows of each backend into ordered,
// backend-independent rows.
package rowconv

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Kind is the shape of a converted column value.
type Kind int

const (
	// KindNull is SQL NULL or a column type the backend table does not know.
	KindNull Kind = iota
	// KindInteger is a 64-bit integer, signed unless built with Uint.
	KindInteger
	// KindFloat is a finite 64-bit float.
	KindFloat
	// KindString is text.
	KindString
	// KindBool is a boolean.
	KindBool
	// KindStrings is an array of text.
	KindStrings
	// KindObject is a decoded JSON document passed through unchanged.
	KindObject
)

var kindNames = [...]string{
	KindNull:    "null",
	KindInteger: "integer",
	KindFloat:   "float",
	KindString:  "string",
	KindBool:    "boolean",
	KindStrings: "array-of-string",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is one converted column value. The zero Value is null.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	// unsigned marks an integer held in u.
	unsigned bool
	f    float64
	s    string
	b    bool
	ss   []string
	obj  any
}

// Null returns the null value.
func Null() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInteger, i: v} }

// Uint returns an unsigned integer value. Values that fit in int64 are
// stored signed, so Uint(5) equals Int(5).
func Uint(v uint64) Value {
	if v <= math.MaxInt64 {
		return Int(int64(v))
	}
	return Value{kind: KindInteger, u: v, unsigned: true}
}

// Float returns a float value. Callers guarantee v is finite.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a text value.
func String(v string) Value { return Value{kind: KindString, s: v} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Strings returns an array-of-text value.
func Strings(v []string) Value {
	if v == nil {
		v = []string{}
	}
	return Value{kind: KindStrings, ss: v}
}

// Object returns a decoded JSON document value.
func Object(v any) Value { return Value{kind: KindObject, obj: v} }

// Kind returns the value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsInt returns the integer payload. It is meaningless for integers above
// math.MaxInt64; see IsUnsigned.
func (v Value) AsInt() int64 { return v.i }

// AsUint returns the integer payload as unsigned.
func (v Value) AsUint() uint64 {
	if v.unsigned {
		return v.u
	}
	return uint64(v.i)
}

// IsUnsigned reports whether v is an integer above math.MaxInt64.
func (v Value) IsUnsigned() bool { return v.unsigned }

// AsFloat returns the float payload.
func (v Value) AsFloat() float64 { return v.f }

// AsString returns the text payload.
func (v Value) AsString() string { return v.s }

// AsBool returns the boolean payload.
func (v Value) AsBool() bool { return v.b }

// AsStrings returns the array payload.
func (v Value) AsStrings() []string { return v.ss }

// AsObject returns the decoded JSON payload.
func (v Value) AsObject() any { return v.obj }

// Interface returns the payload as a plain Go value (nil for null).
func (v Value) Interface() any {
	switch v.kind {
	case KindInteger:
		if v.unsigned {
			return v.u
		}
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindStrings:
		return slices.Clone(v.ss)
	case KindObject:
		return v.obj
	}
	return nil
}

// Equal reports whether two values have the same kind and payload. Object
// payloads are compared by their JSON encoding.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.unsigned == o.unsigned && v.i == o.i && v.u == o.u
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindStrings:
		return slices.Equal(v.ss, o.ss)
	case KindObject:
		a, errA := json.Marshal(v.obj)
		b, errB := json.Marshal(o.obj)
		return errA == nil && errB == nil && string(a) == string(b)
	}
	return true
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(b)
}
