package query

import (
	"github.com/roach88/memorm/internal/record"
)

// Bounds is the result of Range: the minimum and maximum of a column.
// Both are Null when no record has a value for the column.
type Bounds struct {
	Min record.Value
	Max record.Value
}

// Count resolves the query and returns the number of records.
func (q *Query[E]) Count() (int, error) {
	recs, err := q.Records()
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// Exist reports whether the query matches at least one record.
func (q *Query[E]) Exist() (bool, error) {
	n, err := q.Count()
	return n > 0, err
}

// Sum adds up column over the resolved records.
//
// Returns Null when the result set is empty. Null values are skipped. The
// sum stays an Int while every value is an Int and becomes a Float as soon
// as one Float is added or the running total overflows int64. Non-numeric
// values fail with TYPE_MISMATCH.
func (q *Query[E]) Sum(column string) (record.Value, error) {
	recs, err := q.Records()
	if err != nil {
		return nil, err
	}
	return sum(recs, column)
}

func sum(recs []record.Record, column string) (record.Value, error) {
	if len(recs) == 0 {
		return record.Null{}, nil
	}
	var acc record.Value = record.Int(0)
	for _, rec := range recs {
		v := rec.Get(column)
		if record.IsNull(v) {
			continue
		}
		next, err := record.Add(acc, v)
		if err != nil {
			return nil, newTypeMismatchError("sum", column, err)
		}
		acc = next
	}
	return acc, nil
}

// Average divides the sum of column by the number of records where column
// is not null. Returns Null when the result set is empty or no record has a
// value for column.
func (q *Query[E]) Average(column string) (record.Value, error) {
	recs, err := q.Records()
	if err != nil {
		return nil, err
	}
	total, err := sum(recs, column)
	if err != nil || record.IsNull(total) {
		return total, err
	}

	present := presentValues(recs, column)
	if len(present) == 0 {
		return record.Null{}, nil
	}
	f, _ := record.AsFloat(total)
	return record.Float(f / float64(len(present))), nil
}

// Avg is an alias for Average.
func (q *Query[E]) Avg(column string) (record.Value, error) {
	return q.Average(column)
}

// Max returns the largest non-null value of column, or Null.
func (q *Query[E]) Max(column string) (record.Value, error) {
	recs, err := q.Records()
	if err != nil {
		return nil, err
	}
	return extreme(recs, column, "max", 1)
}

// Min returns the smallest non-null value of column, or Null.
func (q *Query[E]) Min(column string) (record.Value, error) {
	recs, err := q.Records()
	if err != nil {
		return nil, err
	}
	return extreme(recs, column, "min", -1)
}

// Interval returns Max - Min for column, or Null when either is Null.
func (q *Query[E]) Interval(column string) (record.Value, error) {
	recs, err := q.Records()
	if err != nil {
		return nil, err
	}
	hi, err := extreme(recs, column, "interval", 1)
	if err != nil {
		return nil, err
	}
	lo, err := extreme(recs, column, "interval", -1)
	if err != nil {
		return nil, err
	}
	if record.IsNull(hi) || record.IsNull(lo) {
		return record.Null{}, nil
	}
	diff, err := record.Sub(hi, lo)
	if err != nil {
		return nil, newTypeMismatchError("interval", column, err)
	}
	return diff, nil
}

// Range returns the bounds of column over the resolved records.
func (q *Query[E]) Range(column string) (Bounds, error) {
	recs, err := q.Records()
	if err != nil {
		return Bounds{}, err
	}
	lo, err := extreme(recs, column, "range", -1)
	if err != nil {
		return Bounds{}, err
	}
	hi, err := extreme(recs, column, "range", 1)
	if err != nil {
		return Bounds{}, err
	}
	return Bounds{Min: lo, Max: hi}, nil
}

// extreme returns the max (sign 1) or min (sign -1) non-null value.
func extreme(recs []record.Record, column, op string, sign int) (record.Value, error) {
	var best record.Value = record.Null{}
	for _, v := range presentValues(recs, column) {
		if record.IsNull(best) {
			best = v
			continue
		}
		c, err := record.Compare(v, best)
		if err != nil {
			return nil, newTypeMismatchError(op, column, err)
		}
		if c*sign > 0 {
			best = v
		}
	}
	return best, nil
}

func presentValues(recs []record.Record, column string) []record.Value {
	out := make([]record.Value, 0, len(recs))
	for _, rec := range recs {
		if v := rec.Get(column); !record.IsNull(v) {
			out = append(out, v)
		}
	}
	return out
}
