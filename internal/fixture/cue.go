package fixture

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/memorm/internal/record"
)

// LoadCUE reads a CUE fixture file.
func LoadCUE(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseCUE(path, data)
}

// ParseCUE evaluates CUE fixture content. Every value under collections
// must be concrete.
func ParseCUE(path string, data []byte) (*Set, error) {
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cueError(path, "cue", err)
	}

	collections := v.LookupPath(cue.ParsePath("collections"))
	if !collections.Exists() {
		return nil, &LoadError{Path: path, Field: "collections", Message: "collections is required", Pos: v.Pos()}
	}

	iter, err := collections.Fields()
	if err != nil {
		return nil, cueError(path, "collections", err)
	}

	set := &Set{Path: path, Collections: []Collection{}}
	for iter.Next() {
		c, err := parseCUECollection(path, iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		set.Collections = append(set.Collections, c)
	}
	return set, nil
}

func parseCUECollection(path, name string, v cue.Value) (Collection, error) {
	field := "collections." + name
	c := Collection{Name: name, Records: []record.Record{}}

	if idVal := v.LookupPath(cue.ParsePath("identity")); idVal.Exists() {
		identity, err := idVal.String()
		if err != nil {
			return Collection{}, cueError(path, field+".identity", err)
		}
		c.Identity = identity
	}

	recsVal := v.LookupPath(cue.ParsePath("records"))
	if !recsVal.Exists() {
		return c, nil
	}
	list, err := recsVal.List()
	if err != nil {
		return Collection{}, cueError(path, field+".records", err)
	}

	for i := 0; list.Next(); i++ {
		elemField := fmt.Sprintf("%s.records[%d]", field, i)
		val, err := cueToValue(path, elemField, list.Value())
		if err != nil {
			return Collection{}, err
		}
		obj, ok := val.(record.Object)
		if !ok {
			return Collection{}, &LoadError{Path: path, Field: elemField, Message: "record must be a struct", Pos: list.Value().Pos()}
		}
		c.Records = append(c.Records, record.Record(obj))
	}
	return c, nil
}

// cueToValue converts a concrete CUE value into a record value.
func cueToValue(path, field string, v cue.Value) (record.Value, error) {
	if err := v.Err(); err != nil {
		return nil, cueError(path, field, err)
	}
	if !v.IsConcrete() {
		return nil, &LoadError{Path: path, Field: field, Message: "value must be concrete", Pos: v.Pos()}
	}

	switch v.IncompleteKind() {
	case cue.NullKind:
		return record.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, cueError(path, field, err)
		}
		return record.Bool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, cueError(path, field, err)
		}
		return record.Int(n), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, cueError(path, field, err)
		}
		return record.Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, cueError(path, field, err)
		}
		return record.String(s), nil
	case cue.ListKind:
		list, err := v.List()
		if err != nil {
			return nil, cueError(path, field, err)
		}
		arr := record.Array{}
		for i := 0; list.Next(); i++ {
			elem, err := cueToValue(path, fmt.Sprintf("%s[%d]", field, i), list.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, cueError(path, field, err)
		}
		obj := record.Object{}
		for iter.Next() {
			key := iter.Selector().Unquoted()
			elem, err := cueToValue(path, field+"."+key, iter.Value())
			if err != nil {
				return nil, err
			}
			obj[key] = elem
		}
		return obj, nil
	default:
		return nil, &LoadError{
			Path:    path,
			Field:   field,
			Message: fmt.Sprintf("unsupported value kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// cueError extracts position info from CUE errors.
func cueError(path, field string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: path, Field: field, Message: err.Error()}
	}

	first := errs[0]
	loadErr := &LoadError{Path: path, Field: field, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		loadErr.Pos = positions[0]
	}
	return loadErr
}
