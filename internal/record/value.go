package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Value is a sealed interface representing an attribute value.
// Only Null, String, Int, Float, Bool, Time, Array, and Object implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents an absent or nil attribute.
type Null struct{}

func (Null) value() {}

// String represents a string attribute.
type String string

func (String) value() {}

// Int represents an integer attribute. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating point attribute.
type Float float64

func (Float) value() {}

// Bool represents a boolean attribute.
type Bool bool

func (Bool) value() {}

// Time represents a timestamp attribute, normalized to UTC.
type Time struct {
	time.Time
}

func (Time) value() {}

// NewTime creates a Time value in UTC.
func NewTime(t time.Time) Time {
	return Time{Time: t.UTC()}
}

// Array represents an ordered list of values.
type Array []Value

func (Array) value() {}

// Object represents a nested attribute map.
type Object map[string]Value

func (Object) value() {}

// IsNull reports whether v is Null or a nil interface.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// From converts a Go value into a Value.
//
// Supported inputs: nil, Value, string, bool, all sized ints and uints that
// fit in int64, float32/float64, time.Time, json.Number, []any and the common
// typed slices, map[string]any and map[string]Value.
func From(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int8:
		return Int(val), nil
	case int16:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Int(val), nil
	case uint16:
		return Int(val), nil
	case uint32:
		return Int(val), nil
	case uint64:
		return fromUint(val)
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case time.Time:
		return NewTime(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return Int(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return Float(f), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := From(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = conv
		}
		return arr, nil
	case []Value:
		return Array(val), nil
	case []string:
		arr := make(Array, len(val))
		for i, s := range val {
			arr[i] = String(s)
		}
		return arr, nil
	case []int:
		arr := make(Array, len(val))
		for i, n := range val {
			arr[i] = Int(n)
		}
		return arr, nil
	case []int64:
		arr := make(Array, len(val))
		for i, n := range val {
			arr[i] = Int(n)
		}
		return arr, nil
	case []float64:
		arr := make(Array, len(val))
		for i, f := range val {
			arr[i] = Float(f)
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := From(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = conv
		}
		return obj, nil
	case map[string]Value:
		return Object(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// MustFrom is like From but panics on unsupported input.
// Intended for literals in tests and fixtures.
func MustFrom(v any) Value {
	conv, err := From(v)
	if err != nil {
		panic(err)
	}
	return conv
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("unsigned value %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

// Native converts a Value back into plain Go types.
// Arrays become []any, objects become map[string]any, Null becomes nil.
func Native(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case Time:
		return val.Time
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Native(elem)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Native(elem)
		}
		return out
	default:
		return nil
	}
}

// Format renders a Value for human-readable output.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case String:
		return string(val)
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(val))
	case Time:
		return val.Format(time.RFC3339Nano)
	default:
		data, err := MarshalCanonical(v)
		if err != nil {
			return fmt.Sprintf("%v", Native(v))
		}
		return string(data)
	}
}

// TypeName returns a short name for the Value's type, used in error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Time:
		return "time"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
