package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind identifies the dynamic type held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return "null"
	}
}

// Value is a single spreadsheet cell: a string, an integer, a float or null.
// The zero Value is null.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	f    float64
}

// Null returns the null cell value.
func Null() Value { return Value{} }

// String creates a string cell.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int creates an integer cell.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float creates a fractional cell.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Kind reports the dynamic type of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsNumeric reports whether the cell holds an int or a float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsInt reports whether the cell holds an integer.
func (v Value) IsInt() bool { return v.kind == KindInt }

// Str returns the string payload; empty for non-string values.
func (v Value) Str() string { return v.str }

// IntValue returns the integer payload.
func (v Value) IntValue() int64 { return v.i }

// Number returns the numeric payload as float64. Non-numeric values yield 0.
func (v Value) Number() float64 {
	switch v.kind {
	case KindInt:
		return float64(v.i)
	case KindFloat:
		return v.f
	default:
		return 0
	}
}

// Interface returns the payload as a plain Go value (nil, string, int64 or
// float64), suitable for spreadsheet writers.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	default:
		return nil
	}
}

// String renders the cell as text. Null renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	default:
		return ""
	}
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	default:
		return true
	}
}

// MarshalJSON encodes the value as a JSON null, string or number.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return []byte("null"), nil
		}
		return []byte(formatFloat(v.f)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, strings, numbers and booleans. Integral numbers
// become ints; booleans keep their textual form.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Null()
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = String(strconv.FormatBool(b))
		return nil
	case '{', '[':
		return fmt.Errorf("unsupported cell value %s", truncate(string(data), 32))
	}
	return v.setNumber(json.Number(data))
}

func (v *Value) setNumber(n json.Number) error {
	if i, err := n.Int64(); err == nil {
		*v = Int(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", n.String(), err)
	}
	*v = Float(f)
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
