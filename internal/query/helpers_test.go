package query

import (
	"testing"

	"github.com/roach88/memorm/internal/collection"
	"github.com/roach88/memorm/internal/entity"
	"github.com/roach88/memorm/internal/record"
)

// newTestCollection creates a collection holding the given records,
// identities assigned 1..n in order.
func newTestCollection(t *testing.T, recs ...map[string]any) *collection.Collection {
	t.Helper()
	c := collection.New("items", "")
	for _, m := range recs {
		c.Create(record.MustFromMap(m))
	}
	return c
}

// newTestQuery creates a raw-record query over a fresh collection.
func newTestQuery(t *testing.T, recs ...map[string]any) *Query[record.Record] {
	t.Helper()
	return New(newTestCollection(t, recs...), entity.DeserializeAll[record.Record](entity.RecordMapper{}))
}

// ids extracts the identity of every record, in order.
func ids(t *testing.T, recs []record.Record) []int64 {
	t.Helper()
	out := make([]int64, 0, len(recs))
	for _, rec := range recs {
		id, ok := record.IdentityOf(rec, "id")
		if !ok {
			t.Fatalf("record without identity: %v", rec)
		}
		out = append(out, id)
	}
	return out
}
