package plan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/memorm/internal/query"
	"github.com/roach88/memorm/internal/record"
)

// Funcs lists the supported aggregate function names.
var Funcs = []string{"average", "avg", "count", "exist", "interval", "max", "min", "range", "sum"}

func (a *Aggregate) validate() error {
	if !slices.Contains(Funcs, a.Func) {
		return fmt.Errorf("unknown function %q (want one of %s)", a.Func, strings.Join(Funcs, ", "))
	}
	if a.Column == "" && a.Func != "count" && a.Func != "exist" {
		return fmt.Errorf("%s needs a column", a.Func)
	}
	return nil
}

// Apply resolves q through the aggregate function.
//
// count returns an Int, exist a Bool and range an Object with min and max
// keys. The others return the query's own result.
func (a *Aggregate) Apply(q *query.Query[record.Record]) (record.Value, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	switch a.Func {
	case "count":
		n, err := q.Count()
		if err != nil {
			return nil, err
		}
		return record.Int(n), nil
	case "exist":
		ok, err := q.Exist()
		if err != nil {
			return nil, err
		}
		return record.Bool(ok), nil
	case "sum":
		return q.Sum(a.Column)
	case "average", "avg":
		return q.Average(a.Column)
	case "max":
		return q.Max(a.Column)
	case "min":
		return q.Min(a.Column)
	case "interval":
		return q.Interval(a.Column)
	default: // range
		b, err := q.Range(a.Column)
		if err != nil {
			return nil, err
		}
		return record.Object{"min": b.Min, "max": b.Max}, nil
	}
}
