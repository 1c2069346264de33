package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/roach88/memorm/internal/entity"
	"github.com/roach88/memorm/internal/record"
)

// Source is the record store a Query reads from at resolution time.
// Implemented by *collection.Collection and by the memory adapter's locked
// view of it.
type Source interface {
	All() []record.Record
	Identity() string
}

type conditionKind int

const (
	kindWhere conditionKind = iota
	kindOr
)

type condition struct {
	kind conditionKind
	test predicate
}

// modifier transforms the filtered result. Modifiers receive records they
// own (snapshot copies) and may mutate them.
type modifier func(recs []record.Record) ([]record.Record, error)

// Query is a lazily evaluated, chainable query over a Source.
//
// Condition and modifier methods return the receiver so calls can be
// chained. Building errors are sticky: the first one is kept and returned by
// every resolving method (and by Err).
//
// Thread-safety: a Query is not safe for concurrent mutation. Resolving the
// same fully built Query from several goroutines is safe if the Source is.
type Query[E any] struct {
	src         Source
	deserialize entity.Deserializer[E]
	conditions  []condition
	modifiers   []modifier
	steps       []string // human-readable call log, for String()
	err         error
}

// New creates a Query bound to src and a deserializer.
//
// The configure functions run against the new query exactly as if their
// calls were chained on it by the caller.
func New[E any](src Source, deserialize entity.Deserializer[E], configure ...func(q *Query[E])) *Query[E] {
	q := &Query[E]{
		src:         src,
		deserialize: deserialize,
	}
	for _, fn := range configure {
		if fn != nil {
			fn(q)
		}
	}
	return q
}

// Err returns the first error recorded while building the query.
func (q *Query[E]) Err() error {
	return q.err
}

// Clone returns an independent copy. Conditions and modifiers appended to
// the clone do not affect q and vice versa.
func (q *Query[E]) Clone() *Query[E] {
	return &Query[E]{
		src:         q.src,
		deserialize: q.deserialize,
		conditions:  slices.Clone(q.conditions),
		modifiers:   slices.Clone(q.modifiers),
		steps:       slices.Clone(q.steps),
		err:         q.err,
	}
}

// String describes the accumulated operations in call order.
func (q *Query[E]) String() string {
	if len(q.steps) == 0 {
		return "all"
	}
	return strings.Join(q.steps, ".")
}

func (q *Query[E]) fail(err error) *Query[E] {
	if q.err == nil {
		q.err = err
	}
	return q
}

func (q *Query[E]) addCondition(op string, kind conditionKind, cond Condition, negate bool) *Query[E] {
	c, err := compileCondition(op, cond, negate)
	if err != nil {
		return q.fail(err)
	}
	q.conditions = append(q.conditions, condition{kind: kind, test: c.test})
	q.steps = append(q.steps, fmt.Sprintf("%s(%s)", op, c.desc))
	return q
}

// Where narrows the result to records matching cond.
// Successive Where calls are conjunctive.
func (q *Query[E]) Where(cond Condition) *Query[E] {
	return q.addCondition("where", kindWhere, cond, false)
}

// Or adds records matching cond, evaluated against the input of the most
// recent Where (or the whole source if there is none), to the result.
func (q *Query[E]) Or(cond Condition) *Query[E] {
	return q.addCondition("or", kindOr, cond, false)
}

// Exclude narrows the result to records NOT matching cond.
// It behaves as a Where with the predicate inverted.
func (q *Query[E]) Exclude(cond Condition) *Query[E] {
	return q.addCondition("exclude", kindWhere, cond, true)
}

// Not is an alias for Exclude.
func (q *Query[E]) Not(cond Condition) *Query[E] {
	return q.Exclude(cond)
}

// Select keeps only the given columns on every resolved record.
func (q *Query[E]) Select(columns ...string) *Query[E] {
	if len(columns) == 0 {
		return q.fail(newInvalidArgumentError("select", "", errors.New("no columns given")))
	}
	if err := validateColumns(columns); err != nil {
		return q.fail(newInvalidArgumentError("select", "", err))
	}
	cols := slices.Clone(columns)
	q.modifiers = append(q.modifiers, func(recs []record.Record) ([]record.Record, error) {
		for i, rec := range recs {
			recs[i] = rec.Pick(cols...)
		}
		return recs, nil
	})
	q.steps = append(q.steps, fmt.Sprintf("select(%s)", strings.Join(cols, ", ")))
	return q
}

// Order sorts ascending by each column in turn. Every column is a separate
// stable sort, so the last column dominates.
func (q *Query[E]) Order(columns ...string) *Query[E] {
	return q.addSort("order", columns, false)
}

// Asc is an alias for Order.
func (q *Query[E]) Asc(columns ...string) *Query[E] {
	return q.Order(columns...)
}

// ReverseOrder sorts ascending by each column in turn and reverses the whole
// sequence after each sort.
func (q *Query[E]) ReverseOrder(columns ...string) *Query[E] {
	return q.addSort("reverse_order", columns, true)
}

// Desc is an alias for ReverseOrder.
func (q *Query[E]) Desc(columns ...string) *Query[E] {
	return q.ReverseOrder(columns...)
}

func (q *Query[E]) addSort(op string, columns []string, reverse bool) *Query[E] {
	if err := validateColumns(columns); err != nil {
		return q.fail(newInvalidArgumentError(op, "", err))
	}
	for _, column := range columns {
		q.modifiers = append(q.modifiers, sortBy(op, column, reverse))
	}
	if len(columns) > 0 {
		q.steps = append(q.steps, fmt.Sprintf("%s(%s)", op, strings.Join(columns, ", ")))
	}
	return q
}

func sortBy(op, column string, reverse bool) modifier {
	return func(recs []record.Record) ([]record.Record, error) {
		var sortErr error
		slices.SortStableFunc(recs, func(a, b record.Record) int {
			c, err := record.Compare(a.Get(column), b.Get(column))
			if err != nil && sortErr == nil {
				sortErr = err
			}
			return c
		})
		if sortErr != nil {
			return nil, newTypeMismatchError(op, column, sortErr)
		}
		if reverse {
			slices.Reverse(recs)
		}
		return recs, nil
	}
}

// Limit truncates the result to its first n records.
func (q *Query[E]) Limit(n int) *Query[E] {
	if err := validateCount(n); err != nil {
		return q.fail(newInvalidArgumentError("limit", "", err))
	}
	q.modifiers = append(q.modifiers, func(recs []record.Record) ([]record.Record, error) {
		if n < len(recs) {
			recs = recs[:n]
		}
		return recs, nil
	})
	q.steps = append(q.steps, fmt.Sprintf("limit(%d)", n))
	return q
}

// Offset drops the first n records. It is always applied before every
// other modifier, whatever the call order.
func (q *Query[E]) Offset(n int) *Query[E] {
	if err := validateCount(n); err != nil {
		return q.fail(newInvalidArgumentError("offset", "", err))
	}
	drop := func(recs []record.Record) ([]record.Record, error) {
		if n >= len(recs) {
			return recs[:0], nil
		}
		return recs[n:], nil
	}
	q.modifiers = slices.Insert(q.modifiers, 0, modifier(drop))
	q.steps = append(q.steps, fmt.Sprintf("offset(%d)", n))
	return q
}

// Negate is not supported by the in-memory engine. The error is also
// recorded on q, so resolving q afterwards fails.
func (q *Query[E]) Negate() error {
	err := newNotImplementedError("negate")
	q.fail(err)
	return err
}

// Group is not supported by the in-memory engine. Like Negate, the error
// sticks to q.
func (q *Query[E]) Group(columns ...string) error {
	err := newNotImplementedError("group")
	q.fail(err)
	return err
}

// Records resolves the query and returns the raw records.
func (q *Query[E]) Records() ([]record.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.src == nil {
		return nil, errors.New("query has no source")
	}

	result := q.src.All()
	if len(q.conditions) > 0 {
		var err error
		result, err = q.applyConditions(result)
		if err != nil {
			return nil, err
		}
	}

	for _, m := range q.modifiers {
		var err error
		result, err = m(result)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// applyConditions walks the conditions in order. previous tracks the input
// of the most recent where, which is what an or re-filters.
func (q *Query[E]) applyConditions(base []record.Record) ([]record.Record, error) {
	result := base
	previous := base
	for _, c := range q.conditions {
		switch c.kind {
		case kindWhere:
			previous = result
			filtered, err := filter(previous, c.test)
			if err != nil {
				return nil, err
			}
			result = filtered
		case kindOr:
			matched, err := filter(previous, c.test)
			if err != nil {
				return nil, err
			}
			result = union(result, matched, q.src.Identity())
		}
	}
	return result, nil
}

func filter(recs []record.Record, test predicate) ([]record.Record, error) {
	out := make([]record.Record, 0, len(recs))
	for _, rec := range recs {
		ok, err := test(rec)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// union appends the records of extra not already in base, keeping base
// order first. Records are deduplicated by identity; records without one
// fall back to structural equality.
func union(base, extra []record.Record, identity string) []record.Record {
	seen := roaring64.New()
	var anonymous []record.Record
	out := make([]record.Record, 0, len(base)+len(extra))

	add := func(rec record.Record) {
		if id, ok := record.IdentityOf(rec, identity); ok {
			if seen.Contains(uint64(id)) {
				return
			}
			seen.Add(uint64(id))
			out = append(out, rec)
			return
		}
		for _, other := range anonymous {
			if record.Equal(record.Object(rec), record.Object(other)) {
				return
			}
		}
		anonymous = append(anonymous, rec)
		out = append(out, rec)
	}

	for _, rec := range base {
		add(rec)
	}
	for _, rec := range extra {
		add(rec)
	}
	return out
}

// All resolves the query and deserializes the result.
func (q *Query[E]) All() ([]E, error) {
	recs, err := q.Records()
	if err != nil {
		return nil, err
	}
	if q.deserialize == nil {
		return nil, errors.New("query has no deserializer")
	}
	return q.deserialize(recs)
}

// Each resolves the query and calls fn for every entity, stopping at the
// first error fn returns.
func (q *Query[E]) Each(fn func(e E) error) error {
	all, err := q.All()
	if err != nil {
		return err
	}
	for _, e := range all {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// First returns the entity with the lowest identity among the matches.
func (q *Query[E]) First() (E, bool, error) {
	return q.Clone().Order(q.Identity()).Limit(1).one()
}

// Last returns the entity with the highest identity among the matches.
func (q *Query[E]) Last() (E, bool, error) {
	return q.Clone().ReverseOrder(q.Identity()).Limit(1).one()
}

// Take returns the first resolved entity in result order, if any.
func (q *Query[E]) Take() (E, bool, error) {
	return q.Clone().Limit(1).one()
}

func (q *Query[E]) one() (E, bool, error) {
	var zero E
	all, err := q.All()
	if err != nil || len(all) == 0 {
		return zero, false, err
	}
	return all[0], true, nil
}

// Identity returns the identity column of the query's source.
func (q *Query[E]) Identity() string {
	if q.src == nil || q.src.Identity() == "" {
		return record.DefaultIdentity
	}
	return q.src.Identity()
}
