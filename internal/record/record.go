package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// DefaultIdentity is the identity column used when a collection does not
// configure one.
const DefaultIdentity = "id"

// Record is a plain attribute mapping, the unit stored in a collection.
// No schema is enforced: arbitrary keys are permitted.
type Record map[string]Value

// FromMap converts a map of Go values into a Record.
func FromMap(m map[string]any) (Record, error) {
	rec := make(Record, len(m))
	for k, v := range m {
		conv, err := From(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", k, err)
		}
		rec[k] = conv
	}
	return rec, nil
}

// MustFromMap is like FromMap but panics on unsupported input.
func MustFromMap(m map[string]any) Record {
	rec, err := FromMap(m)
	if err != nil {
		panic(err)
	}
	return rec
}

// Get returns the value for key, or Null when the key is missing.
func (r Record) Get(key string) Value {
	v, ok := r[key]
	if !ok || v == nil {
		return Null{}
	}
	return v
}

// Lookup returns the value for key and whether the key is present.
func (r Record) Lookup(key string) (Value, bool) {
	v, ok := r[key]
	if v == nil {
		return Null{}, ok
	}
	return v, ok
}

// Keys returns the record's columns in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Clone returns a deep copy. Nested arrays and objects are copied too, so
// mutating the clone never affects the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Pick returns a copy holding only the given columns that are present.
func (r Record) Pick(keys ...string) Record {
	out := make(Record, len(keys))
	for _, k := range keys {
		if v, ok := r[k]; ok {
			out[k] = cloneValue(v)
		}
	}
	return out
}

// Without returns a copy with the given columns removed.
func (r Record) Without(keys ...string) Record {
	out := r.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Native converts the record into a map of plain Go values.
func (r Record) Native() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = Native(v)
	}
	return out
}

// IdentityOf extracts a positive integer identity from rec[key].
func IdentityOf(rec Record, key string) (int64, bool) {
	switch id := rec.Get(key).(type) {
	case Int:
		if id > 0 {
			return int64(id), true
		}
	case Float:
		if id > 0 && id == Float(int64(id)) {
			return int64(id), true
		}
	}
	return 0, false
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	case nil:
		return Null{}
	default:
		return val
	}
}

// MarshalJSON implements json.Marshaler for Record.
// Keys are emitted in sorted order; times use RFC 3339.
func (r Record) MarshalJSON() ([]byte, error) {
	return marshalValueJSON(Object(r))
}

// UnmarshalJSON implements json.Unmarshaler for Record.
// Integral numbers decode as Int, other numbers as Float.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	rec, err := FromMap(raw)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// MarshalValue marshals a Value to JSON bytes.
func MarshalValue(v Value) ([]byte, error) {
	return marshalValueJSON(v)
}

func marshalValueJSON(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		return json.Marshal(float64(val))
	case Bool:
		return json.Marshal(bool(val))
	case Time:
		return json.Marshal(val.Format(time.RFC3339Nano))
	case Array:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalValueJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case Object:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, fmt.Errorf("marshal key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalValueJSON(val[k])
			if err != nil {
				return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
