package query

import (
	"errors"
	"fmt"

	"github.com/roach88/memorm/internal/record"
)

// validateColumn checks that a column name is usable.
func validateColumn(column string) error {
	if column == "" {
		return errors.New("column name must not be empty")
	}
	return nil
}

// validateMatcher checks a matcher before it is accepted into a query.
//
// Rules:
//   - column must be non-empty
//   - Range bounds, when both present, must be comparable with each other
//   - Range bounds must be scalars (no arrays or objects)
func validateMatcher(column string, m Matcher) error {
	if err := validateColumn(column); err != nil {
		return err
	}

	r, ok := m.(Range)
	if !ok {
		return nil
	}
	for _, bound := range []record.Value{r.Min, r.Max} {
		switch bound.(type) {
		case record.Array, record.Object:
			return fmt.Errorf("range bound must be a scalar, got %s", record.TypeName(bound))
		}
	}
	if !record.IsNull(r.Min) && !record.IsNull(r.Max) {
		if _, err := record.Compare(r.Min, r.Max); err != nil {
			return fmt.Errorf("range bounds: %w", err)
		}
	}
	return nil
}

// validateColumns checks every column passed to select/order.
func validateColumns(columns []string) error {
	for i, column := range columns {
		if err := validateColumn(column); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	return nil
}

// validateCount checks a limit or offset argument.
func validateCount(n int) error {
	if n < 0 {
		return fmt.Errorf("must be non-negative, got %d", n)
	}
	return nil
}
