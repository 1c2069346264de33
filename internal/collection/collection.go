package collection

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/memorm/internal/record"
)

// ErrMissingIdentity is returned by Update when the record carries no
// usable identity value.
var ErrMissingIdentity = errors.New("record has no identity")

// Collection is a named, identity-keyed store of records.
//
// INVARIANTS:
//   - order holds exactly the keys of records, in insertion order
//   - every stored record has record[identity] == its key
//   - pk.Current() >= every key ever stored since the last Clear
type Collection struct {
	name     string
	identity string
	records  map[int64]record.Record
	order    []int64
	pk       *PrimaryKey
}

// New creates an empty collection. An empty identity defaults to
// record.DefaultIdentity.
func New(name, identity string) *Collection {
	if identity == "" {
		identity = record.DefaultIdentity
	}
	return &Collection{
		name:     name,
		identity: identity,
		records:  make(map[int64]record.Record),
		pk:       NewPrimaryKey(),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Identity returns the identity column.
func (c *Collection) Identity() string {
	return c.identity
}

// Len returns the number of stored records.
func (c *Collection) Len() int {
	return len(c.records)
}

// Create assigns the next identity to rec, stores a copy and returns the
// identity. Any identity already present on rec is overwritten.
func (c *Collection) Create(rec record.Record) int64 {
	id := c.pk.Next()
	stored := rec.Clone()
	if stored == nil {
		stored = record.Record{}
	}
	stored[c.identity] = record.Int(id)
	c.records[id] = stored
	c.order = append(c.order, id)
	return id
}

// Update replaces the stored record with the same identity.
//
// An identity that is not tracked is inserted (upsert), matching the
// permissive behaviour callers of the memory adapter rely on. The counter is
// advanced past it so Create never hands the same identity out again.
//
// Returns ErrMissingIdentity when rec has no positive integer identity.
func (c *Collection) Update(rec record.Record) error {
	id, ok := record.IdentityOf(rec, c.identity)
	if !ok {
		return fmt.Errorf("update %s: %w (column %q = %s)",
			c.name, ErrMissingIdentity, c.identity, record.Format(rec.Get(c.identity)))
	}

	stored := rec.Clone()
	stored[c.identity] = record.Int(id)
	if _, exists := c.records[id]; !exists {
		c.order = append(c.order, id)
		c.pk.Advance(id)
	}
	c.records[id] = stored
	return nil
}

// Delete removes the record with rec's identity. Unknown or missing
// identities are a no-op.
func (c *Collection) Delete(rec record.Record) {
	id, ok := record.IdentityOf(rec, c.identity)
	if !ok {
		return
	}
	c.DeleteID(id)
}

// DeleteID removes the record with the given identity, if present.
func (c *Collection) DeleteID(id int64) {
	if _, ok := c.records[id]; !ok {
		return
	}
	delete(c.records, id)
	if i := slices.Index(c.order, id); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Find returns a copy of the record with the given identity.
func (c *Collection) Find(id int64) (record.Record, bool) {
	rec, ok := c.records[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// All returns a snapshot of every record in insertion order.
// The records are deep copies; later mutations of the collection do not
// affect the returned slice and vice versa.
func (c *Collection) All() []record.Record {
	out := make([]record.Record, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id].Clone())
	}
	return out
}

// Clear removes every record and resets the primary key counter.
func (c *Collection) Clear() {
	c.records = make(map[int64]record.Record)
	c.order = nil
	c.pk.Reset()
}

// LastID returns the most recently assigned identity (0 after Clear).
func (c *Collection) LastID() int64 {
	return c.pk.Current()
}
