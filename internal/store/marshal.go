package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/roach88/memorm/internal/record"
)

const (
	declInteger  = "INTEGER"
	declReal     = "REAL"
	declText     = "TEXT"
	declBoolean  = "BOOLEAN"
	declDatetime = "DATETIME"
	declJSON     = "JSON"
)

type column struct {
	name string
	decl string
}

// declMixed marks a column whose values disagree on a type. It is
// written as no declared type.
const declMixed = "?"

// columnsOf returns the union of attributes across recs, sorted by name,
// each with the declared type its values agree on.
func columnsOf(recs []record.Record) []column {
	decls := make(map[string]string)
	for _, rec := range recs {
		for name, v := range rec {
			decls[name] = mergeDecl(decls[name], declOf(v))
		}
	}

	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	slices.Sort(names)

	columns := make([]column, len(names))
	for i, name := range names {
		decl := decls[name]
		if decl == declMixed {
			decl = ""
		}
		columns[i] = column{name: name, decl: decl}
	}
	return columns
}

// declOf returns the declared type for a single value ("" for null).
func declOf(v record.Value) string {
	switch v.(type) {
	case record.Int:
		return declInteger
	case record.Float:
		return declReal
	case record.String:
		return declText
	case record.Bool:
		return declBoolean
	case record.Time:
		return declDatetime
	case record.Array, record.Object:
		return declJSON
	default:
		return ""
	}
}

// mergeDecl combines a column's type so far with the type of a new value.
// Nulls do not constrain the type and INTEGER widens to REAL.
func mergeDecl(prev, next string) string {
	switch {
	case prev == declMixed:
		return declMixed
	case next == "":
		return prev
	case prev == "" || prev == next:
		return next
	case (prev == declInteger && next == declReal) || (prev == declReal && next == declInteger):
		return declReal
	default:
		return declMixed
	}
}

// toSQL converts a record value into a database/sql argument.
func toSQL(v record.Value) (any, error) {
	switch val := v.(type) {
	case nil, record.Null:
		return nil, nil
	case record.String:
		return string(val), nil
	case record.Int:
		return int64(val), nil
	case record.Float:
		return float64(val), nil
	case record.Bool:
		return bool(val), nil
	case record.Time:
		return val.Time, nil
	case record.Array, record.Object:
		data, err := record.MarshalCanonical(val)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// fromSQL converts a scanned column value back into a record value using
// the column's declared type.
func fromSQL(raw any, decl string) (record.Value, error) {
	if strings.EqualFold(decl, declJSON) {
		var text []byte
		switch val := raw.(type) {
		case string:
			text = []byte(val)
		case []byte:
			text = val
		default:
			return record.From(raw)
		}
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return record.From(decoded)
	}

	switch val := raw.(type) {
	case []byte:
		return record.String(string(val)), nil
	case time.Time:
		return record.NewTime(val), nil
	default:
		return record.From(raw)
	}
}
