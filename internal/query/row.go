package query

import (
	"fmt"

	"github.com/roach88/memorm/internal/record"
)

// Row is the loosely typed view of a record handed to an Expr.
//
// Unlike Attrs conditions, a Row treats a missing attribute as an error:
// Get and the typed accessors return ErrUnknownAttribute.
type Row struct {
	rec record.Record
}

// NewRow wraps rec for direct evaluation of an Expr.
func NewRow(rec record.Record) Row {
	return Row{rec: rec}
}

// Has reports whether the attribute is present.
func (r Row) Has(name string) bool {
	_, ok := r.rec[name]
	return ok
}

// Get returns the attribute value.
func (r Row) Get(name string) (record.Value, error) {
	v, ok := r.rec.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	return v, nil
}

// Int returns the attribute as int64. Integral floats are accepted.
func (r Row) Int(name string) (int64, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case record.Int:
		return int64(n), nil
	case record.Float:
		if n == record.Float(int64(n)) {
			return int64(n), nil
		}
	}
	return 0, mismatch(name, v, "int")
}

// Float returns a numeric attribute as float64.
func (r Row) Float(name string) (float64, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := record.AsFloat(v)
	if !ok {
		return 0, mismatch(name, v, "float")
	}
	return f, nil
}

// Text returns a string attribute.
func (r Row) Text(name string) (string, error) {
	v, err := r.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(record.String)
	if !ok {
		return "", mismatch(name, v, "string")
	}
	return string(s), nil
}

// Bool returns a boolean attribute.
func (r Row) Bool(name string) (bool, error) {
	v, err := r.Get(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(record.Bool)
	if !ok {
		return false, mismatch(name, v, "bool")
	}
	return bool(b), nil
}

// Compare orders the attribute against a Go value (see record.Compare).
func (r Row) Compare(name string, other any) (int, error) {
	v, err := r.Get(name)
	if err != nil {
		return 0, err
	}
	rhs, err := record.From(other)
	if err != nil {
		return 0, err
	}
	return record.Compare(v, rhs)
}

func mismatch(name string, v record.Value, want string) error {
	return fmt.Errorf("attribute %q is %s, not %s", name, record.TypeName(v), want)
}
