// Package jsonvalue provides kind detection, exact numeric handling and deep
// equality for decoded JSON values.
//
// Values are the generic trees produced by encoding/json with UseNumber
// (map[string]any, []any, string, bool, nil, json.Number) or by the YAML
// decoder after [Normalize].
package jsonvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// Kind is the JSON type of a value.
type Kind int

const (
	// Invalid is any Go value that is not part of a JSON tree.
	Invalid Kind = iota
	// Null is the JSON null.
	Null
	// Boolean is true or false.
	Boolean
	// Number is any JSON number.
	Number
	// String is a JSON string.
	String
	// Array is a JSON array.
	Array
	// Object is a JSON object.
	Object
)

// String returns the JSON Schema type name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// KindOf reports the JSON type of v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return Null
	case bool:
		return Boolean
	case json.Number, float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Number
	case string:
		return String
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Invalid
	}
}

// TypeName returns the JSON Schema type of v, reporting "integer" for
// numbers without a fractional part.
func TypeName(v any) string {
	k := KindOf(v)
	if k == Number && IsInteger(v) {
		return "integer"
	}
	return k.String()
}

// Rat returns the exact value of a number. Literals whose magnitude lies
// beyond MaxExponent are refused; use [Compare] and [MultipleOf] for them.
func Rat(v any) (*big.Rat, bool) {
	switch n := v.(type) {
	case json.Number:
		d, ok := parseDecimal(string(n))
		if !ok || !d.inRange() {
			return nil, false
		}
		return d.rat(), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(n), true
	case float32:
		return Rat(float64(n))
	case int:
		return new(big.Rat).SetInt64(int64(n)), true
	case int8:
		return new(big.Rat).SetInt64(int64(n)), true
	case int16:
		return new(big.Rat).SetInt64(int64(n)), true
	case int32:
		return new(big.Rat).SetInt64(int64(n)), true
	case int64:
		return new(big.Rat).SetInt64(n), true
	case uint:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Rat).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Rat).SetUint64(n), true
	}
	return nil, false
}

// IsInteger reports whether v is a number with a zero fractional part.
func IsInteger(v any) bool {
	if n, ok := v.(json.Number); ok {
		d, ok := parseDecimal(string(n))
		return ok && d.exp >= 0
	}
	r, ok := Rat(v)
	return ok && r.IsInt()
}

// Int returns v as an int when it is an integral number that fits.
// 2.0 is accepted, as JSON Schema treats it as an integer.
func Int(v any) (int, bool) {
	r, ok := Rat(v)
	if !ok || !r.IsInt() {
		return 0, false
	}
	n := r.Num()
	if !n.IsInt64() {
		return 0, false
	}
	i := n.Int64()
	if i > math.MaxInt32 || i < math.MinInt32 {
		return 0, false
	}
	return int(i), true
}

// NonNegativeInt returns v as an int when it is an integral number >= 0.
func NonNegativeInt(v any) (int, bool) {
	i, ok := Int(v)
	return i, ok && i >= 0
}

// Strings returns v as a slice of strings when it is an array of strings.
func Strings(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Equal reports deep JSON equality. Numbers compare by exact value, so 1 and
// 1.0 are equal.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case Null:
		return true
	case Boolean:
		return a.(bool) == b.(bool)
	case String:
		return a.(string) == b.(string)
	case Number:
		ra, okA := Rat(a)
		rb, okB := Rat(b)
		if okA && okB {
			return ra.Cmp(rb) == 0
		}
		da, okA := outOfRange(a)
		db, okB := outOfRange(b)
		return okA && okB && da == db
	case Array:
		xa, xb := a.([]any), b.([]any)
		if len(xa) != len(xb) {
			return false
		}
		for i := range xa {
			if !Equal(xa[i], xb[i]) {
				return false
			}
		}
		return true
	case Object:
		ma, mb := a.(map[string]any), b.(map[string]any)
		if len(ma) != len(mb) {
			return false
		}
		for k, va := range ma {
			vb, ok := mb[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return false
}

// Normalize converts a YAML-decoded tree into the JSON form used throughout
// the module: numbers become json.Number, mappings with non-string keys are
// stringified.
func Normalize(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, item := range n {
			out[k] = Normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, item := range n {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, item := range n {
			out[i] = Normalize(item)
		}
		return out
	case int:
		return json.Number(strconv.Itoa(n))
	case int64:
		return json.Number(strconv.FormatInt(n, 10))
	case uint64:
		return json.Number(strconv.FormatUint(n, 10))
	case float64:
		return json.Number(strconv.FormatFloat(n, 'g', -1, 64))
	case float32:
		return json.Number(strconv.FormatFloat(float64(n), 'g', -1, 32))
	}
	return v
}

// Format renders v as compact JSON for messages.
func Format(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
