// Package query implements the lazily evaluated in-memory query engine.
//
// A Query accumulates conditions (where, or, exclude) and modifiers (select,
// order, reverse order, limit, offset) against a Source and resolves them
// only when materialized by All, Count, Exist, First, Last or an aggregate.
//
// # Resolution
//
//  1. Snapshot the source (a fresh copy of every record)
//  2. Walk the conditions in call order. A where condition filters the
//     running result and remembers its input. An or condition applies its
//     predicate to that same input and unions the matches into the running
//     result, deduplicated by identity.
//  3. Apply the modifiers in call order. Offset is always moved to the
//     front, so offset(1).limit(2) and limit(2).offset(1) agree.
//  4. Deserialize the records into entities.
//
// # Conditions
//
// Conditions are either Attrs (column to literal or Matcher) or Expr (a
// predicate over a Row). Both are sealed:
//
//	q.Where(query.Attrs{"status": "active", "age": query.Between(18, 30)})
//	q.Or(query.Attrs{"role": []string{"admin", "owner"}})
//	q.Exclude(query.Expr(func(r query.Row) (bool, error) {
//		n, err := r.Int("logins")
//		return n == 0, err
//	}))
//
// A missing column in Attrs reads as null. A missing attribute inside Expr
// is an error, and every error or panic raised by an Expr surfaces as a
// QueryError with code INVALID_QUERY.
//
// # Ordering quirk
//
// Each column passed to Order or ReverseOrder becomes its own stable sort.
// ReverseOrder sorts ascending by its column and then reverses the whole
// sequence; it is not a per-key descending sort. Order("a").Order("b")
// therefore sorts by b with ties kept in a order.
//
// # Consistency
//
// A Query holds a reference to its source, not a snapshot. Records created
// between building a Query and resolving it are visible to the resolution.
package query
