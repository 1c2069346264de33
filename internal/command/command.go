// Package command performs writes on a record store on behalf of entities.
//
// A Command serializes an entity into a record, hands the record to the
// store and deserializes the stored result into a fresh entity. Callers'
// entities are never mutated.
package command

import (
	"fmt"

	"github.com/roach88/memorm/internal/entity"
	"github.com/roach88/memorm/internal/record"
)

// Store is the mutating half of a record store.
// Implemented by *collection.Collection.
type Store interface {
	Create(rec record.Record) int64
	Update(rec record.Record) error
	Delete(rec record.Record)
	Clear()
	Identity() string
}

// Command binds a Store to an entity mapper.
//
// Thread-safety: Command does no locking of its own. Callers sharing a Store
// across goroutines must serialize access (the memory adapter does).
type Command[E any] struct {
	store  Store
	mapper entity.Mapper[E]
}

// New creates a Command over store using mapper for conversions.
func New[E any](store Store, mapper entity.Mapper[E]) *Command[E] {
	return &Command[E]{store: store, mapper: mapper}
}

// Create stores e as a new record and returns the stored entity, carrying
// its newly assigned identity. Any identity already set on e is ignored.
func (c *Command[E]) Create(e E) (E, error) {
	rec, err := c.serialize("create", e)
	if err != nil {
		var zero E
		return zero, err
	}

	key := c.identity()
	rec = rec.Without(key)
	id := c.store.Create(rec)
	rec[key] = record.Int(id)

	return c.deserialize("create", rec)
}

// Update replaces the stored record carrying e's identity and returns the
// stored entity.
func (c *Command[E]) Update(e E) (E, error) {
	var zero E
	rec, err := c.serialize("update", e)
	if err != nil {
		return zero, err
	}
	if err := c.store.Update(rec); err != nil {
		return zero, err
	}
	return c.deserialize("update", rec)
}

// Delete removes the stored record carrying e's identity.
func (c *Command[E]) Delete(e E) error {
	rec, err := c.serialize("delete", e)
	if err != nil {
		return err
	}
	c.store.Delete(rec)
	return nil
}

// Clear removes every record from the store.
func (c *Command[E]) Clear() {
	c.store.Clear()
}

func (c *Command[E]) identity() string {
	if key := c.store.Identity(); key != "" {
		return key
	}
	return record.DefaultIdentity
}

func (c *Command[E]) serialize(op string, e E) (record.Record, error) {
	rec, err := c.mapper.Serialize(e)
	if err != nil {
		return nil, fmt.Errorf("%s: serialize: %w", op, err)
	}
	if rec == nil {
		rec = record.Record{}
	}
	// The mapper may hand back a record aliasing e's own state.
	return rec.Clone(), nil
}

func (c *Command[E]) deserialize(op string, rec record.Record) (E, error) {
	e, err := c.mapper.Deserialize(rec.Clone())
	if err != nil {
		var zero E
		return zero, fmt.Errorf("%s: deserialize: %w", op, err)
	}
	return e, nil
}
