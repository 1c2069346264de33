package plan

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/memorm/internal/query"
)

// ParseCondition parses a command-line condition of the form
// column=value:
//
//	age=30          equality (value parsed as a YAML scalar)
//	age=[30,31]     membership
//	age=18..30      inclusive range; either bound may be omitted
//	age=18...30     range excluding the upper bound
//	name='a'..'m'   string bounds must be quoted
//	host="a..b"     a quoted value is always an equality match
//	name=null       column is null or missing
//
// A ".." whose bounds include an unquoted string (../etc, a..b) is not a
// range; the whole value is matched for equality.
func ParseCondition(expr string) (query.Attrs, error) {
	column, value, ok := strings.Cut(expr, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		return nil, fmt.Errorf("condition %q: expected column=value", expr)
	}

	m, err := parseMatcher(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", expr, err)
	}
	return query.Attrs{column: m}, nil
}

func parseMatcher(value string) (query.Matcher, error) {
	if strings.HasPrefix(value, "[") {
		var vs []any
		if err := yaml.Unmarshal([]byte(value), &vs); err != nil {
			return nil, fmt.Errorf("parse list: %w", err)
		}
		return query.In(vs...), nil
	}

	if isQuoted(value) {
		if v, err := parseScalar(value); err == nil {
			return query.Eq(v), nil
		}
	}

	if lo, hi, ok := strings.Cut(value, ".."); ok {
		exclusive := strings.HasPrefix(hi, ".")
		hi = strings.TrimPrefix(hi, ".")
		if isRangeBound(lo) && isRangeBound(hi) {
			return parseRange(lo, hi, exclusive)
		}
	}

	v, err := parseScalar(value)
	if err != nil {
		return nil, err
	}
	return query.Eq(v), nil
}

func parseRange(lo, hi string, exclusive bool) (query.Matcher, error) {
	loVal, err := parseBound(lo)
	if err != nil {
		return nil, err
	}
	hiVal, err := parseBound(hi)
	if err != nil {
		return nil, err
	}
	m := query.Between(loVal, hiVal)
	if r, ok := m.(query.Range); ok && exclusive {
		r.ExcludeMax = true
		return r, nil
	}
	return m, nil
}

// isRangeBound reports whether s can stand on one side of "..": empty,
// quoted, or a scalar that does not resolve to a string. Anything else
// (../etc, a..b) keeps the whole value as an equality match.
func isRangeBound(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || isQuoted(s) {
		return true
	}
	v, err := parseScalar(s)
	if err != nil {
		return false
	}
	_, isString := v.(string)
	return !isString
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}

// parseBound parses a range bound; an empty bound is open.
func parseBound(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return parseScalar(s)
}

// parseScalar decodes s the way YAML resolves a plain scalar: 30 is an int,
// 1.5 a float, true a bool, null a null and anything else a string.
func parseScalar(s string) (any, error) {
	if s == "" {
		return "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("parse value %q: %w", s, err)
	}
	switch v.(type) {
	case map[string]any, []any:
		// a value like "a: b" or "- x"; keep it as text
		return s, nil
	case nil:
		switch s {
		case "null", "Null", "NULL", "~":
			return nil, nil
		}
		// a comment such as "#x" decodes to nothing
		return s, nil
	}
	return v, nil
}

// Flags is the query description accepted on the command line.
type Flags struct {
	Where   []string
	Or      []string
	Exclude []string
	Select  []string
	Order   []string
	Desc    []string
	Limit   int // negative means unset
	Offset  int // negative means unset
}

// FromFlags builds a plan from command-line flags.
//
// Steps are generated in a fixed order: every --where, then every --or,
// then every --exclude, then select, order, desc, offset and limit.
func FromFlags(collection string, f Flags, agg *Aggregate) (*Plan, error) {
	p := &Plan{Collection: collection, Aggregate: agg}

	conditions := []struct {
		op    Op
		exprs []string
	}{
		{OpWhere, f.Where},
		{OpOr, f.Or},
		{OpExclude, f.Exclude},
	}
	for _, c := range conditions {
		for _, expr := range c.exprs {
			attrs, err := ParseCondition(expr)
			if err != nil {
				return nil, fmt.Errorf("--%s: %w", c.op, err)
			}
			p.Steps = append(p.Steps, Step{Op: c.op, Attrs: attrs})
		}
	}

	if len(f.Select) > 0 {
		p.Steps = append(p.Steps, Step{Op: OpSelect, Columns: f.Select})
	}
	if len(f.Order) > 0 {
		p.Steps = append(p.Steps, Step{Op: OpOrder, Columns: f.Order})
	}
	if len(f.Desc) > 0 {
		p.Steps = append(p.Steps, Step{Op: OpReverseOrder, Columns: f.Desc})
	}
	if f.Offset >= 0 {
		p.Steps = append(p.Steps, Step{Op: OpOffset, N: f.Offset})
	}
	if f.Limit >= 0 {
		p.Steps = append(p.Steps, Step{Op: OpLimit, N: f.Limit})
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
