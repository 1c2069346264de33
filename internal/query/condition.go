package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/memorm/internal/record"
)

// Condition is a filter passed to Where, Or or Exclude.
//
// This is a sealed interface: Attrs and Expr are the only implementations.
type Condition interface {
	condition() // Marker method - seals interface to this package
}

// Attrs matches records column by column. Every entry must hold for the
// record to match.
//
// Values may be a Matcher (Eq, In, Between, or the Equals/Membership/Range
// structs) or any literal accepted by record.From. A literal that converts
// to a record.Array is a membership test; anything else is exact equality.
type Attrs map[string]any

func (Attrs) condition() {}

// Expr is a caller-supplied predicate evaluated against each record.
type Expr func(r Row) (bool, error)

func (Expr) condition() {}

// Matcher tests a single column value.
//
// This is a sealed interface. Matcher types:
//   - Equals: value == literal
//   - Membership: value is one of a set of literals
//   - Range: Min <= value <= Max (or < Max when ExcludeMax)
type Matcher interface {
	match(v record.Value) bool
	describe(column string) string
}

// Equals matches a column equal to Value. Int and Float compare numerically.
type Equals struct {
	Value record.Value
}

func (m Equals) match(v record.Value) bool {
	return record.Equal(v, m.Value)
}

func (m Equals) describe(column string) string {
	return fmt.Sprintf("%s = %s", column, record.Format(m.Value))
}

// Membership matches a column equal to any of Values.
type Membership struct {
	Values []record.Value
}

func (m Membership) match(v record.Value) bool {
	return slices.ContainsFunc(m.Values, func(candidate record.Value) bool {
		return record.Equal(v, candidate)
	})
}

func (m Membership) describe(column string) string {
	return fmt.Sprintf("%s in %s", column, record.Format(record.Array(m.Values)))
}

// Range matches a column within [Min, Max], or [Min, Max) when ExcludeMax
// is set. A null bound leaves that side open. Nulls and values that cannot
// be compared with the bounds never match.
type Range struct {
	Min        record.Value
	Max        record.Value
	ExcludeMax bool
}

func (m Range) match(v record.Value) bool {
	if record.IsNull(v) {
		return false
	}
	if !record.IsNull(m.Min) {
		c, err := record.Compare(v, m.Min)
		if err != nil || c < 0 {
			return false
		}
	}
	if !record.IsNull(m.Max) {
		c, err := record.Compare(v, m.Max)
		if err != nil || c > 0 || (c == 0 && m.ExcludeMax) {
			return false
		}
	}
	return true
}

func (m Range) describe(column string) string {
	op := ".."
	if m.ExcludeMax {
		op = "..."
	}
	lo, hi := "", ""
	if !record.IsNull(m.Min) {
		lo = record.Format(m.Min)
	}
	if !record.IsNull(m.Max) {
		hi = record.Format(m.Max)
	}
	return fmt.Sprintf("%s in %s%s%s", column, lo, op, hi)
}

// invalidMatcher carries a conversion failure from a constructor to the
// condition method that receives it.
type invalidMatcher struct {
	err error
}

func (invalidMatcher) match(record.Value) bool { return false }

func (invalidMatcher) describe(column string) string { return column + " invalid" }

// Eq builds an Equals matcher from a Go value.
func Eq(v any) Matcher {
	val, err := record.From(v)
	if err != nil {
		return invalidMatcher{err: err}
	}
	return Equals{Value: val}
}

// In builds a Membership matcher from Go values.
func In(vs ...any) Matcher {
	values := make([]record.Value, 0, len(vs))
	for i, v := range vs {
		val, err := record.From(v)
		if err != nil {
			return invalidMatcher{err: fmt.Errorf("value %d: %w", i, err)}
		}
		values = append(values, val)
	}
	return Membership{Values: values}
}

// Between builds an inclusive Range matcher. Pass nil for an open bound.
func Between(lo, hi any) Matcher {
	minVal, err := record.From(lo)
	if err != nil {
		return invalidMatcher{err: fmt.Errorf("lower bound: %w", err)}
	}
	maxVal, err := record.From(hi)
	if err != nil {
		return invalidMatcher{err: fmt.Errorf("upper bound: %w", err)}
	}
	return Range{Min: minVal, Max: maxVal}
}

// predicate reports whether a record satisfies a condition.
type predicate func(rec record.Record) (bool, error)

// compiled is a condition ready for evaluation.
type compiled struct {
	test predicate
	desc string
}

// compileCondition turns a Condition into a predicate. negate inverts the
// result (used by Exclude).
func compileCondition(op string, cond Condition, negate bool) (compiled, error) {
	var c compiled
	switch cnd := cond.(type) {
	case nil:
		return c, newMissingConditionError(op)
	case Attrs:
		attrs, err := compileAttrs(op, cnd)
		if err != nil {
			return c, err
		}
		c = attrs
	case Expr:
		if cnd == nil {
			return c, newMissingConditionError(op)
		}
		c = compiled{test: compileExpr(cnd), desc: "expr"}
	default:
		return c, newInvalidArgumentError(op, "", fmt.Errorf("unsupported condition type %T", cond))
	}

	if negate {
		inner := c.test
		c.test = func(rec record.Record) (bool, error) {
			ok, err := inner(rec)
			return !ok && err == nil, err
		}
	}
	return c, nil
}

type columnMatcher struct {
	column  string
	matcher Matcher
}

func compileAttrs(op string, attrs Attrs) (compiled, error) {
	if len(attrs) == 0 {
		return compiled{}, newMissingConditionError(op)
	}

	columns := make([]string, 0, len(attrs))
	for column := range attrs {
		columns = append(columns, column)
	}
	slices.Sort(columns)

	matchers := make([]columnMatcher, 0, len(columns))
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		m, err := toMatcher(attrs[column])
		if err != nil {
			return compiled{}, newInvalidArgumentError(op, column, err)
		}
		if err := validateMatcher(column, m); err != nil {
			return compiled{}, newInvalidArgumentError(op, column, err)
		}
		matchers = append(matchers, columnMatcher{column: column, matcher: m})
		parts = append(parts, m.describe(column))
	}

	test := func(rec record.Record) (bool, error) {
		for _, cm := range matchers {
			if !cm.matcher.match(rec.Get(cm.column)) {
				return false, nil
			}
		}
		return true, nil
	}
	return compiled{test: test, desc: strings.Join(parts, ", ")}, nil
}

// toMatcher dispatches an Attrs value: matchers pass through, arrays
// become membership tests, everything else is equality.
func toMatcher(v any) (Matcher, error) {
	if m, ok := v.(Matcher); ok {
		if bad, ok := m.(invalidMatcher); ok {
			return nil, bad.err
		}
		return m, nil
	}
	val, err := record.From(v)
	if err != nil {
		return nil, err
	}
	if arr, ok := val.(record.Array); ok {
		return Membership{Values: arr}, nil
	}
	return Equals{Value: val}, nil
}

// compileExpr wraps an Expr so that any error or panic it raises surfaces
// uniformly as an INVALID_QUERY QueryError.
func compileExpr(expr Expr) predicate {
	return func(rec record.Record) (ok bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
				err = newInvalidQueryError(fmt.Errorf("panic: %v", r))
			}
		}()
		ok, err = expr(Row{rec: rec})
		if err != nil {
			return false, newInvalidQueryError(err)
		}
		return ok, nil
	}
}
