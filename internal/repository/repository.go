// Package repository is the caller-facing surface over the memory adapter:
// one Repository per entity type binds a collection name and a mapper.
package repository

import (
	"github.com/roach88/memorm/internal/entity"
	"github.com/roach88/memorm/internal/memory"
	"github.com/roach88/memorm/internal/query"
)

// Repository stores entities of type E in one collection of an adapter.
type Repository[E any] struct {
	adapter    *memory.Adapter
	collection string
	mapper     entity.Mapper[E]
}

// New binds a repository to the named collection of adapter.
func New[E any](adapter *memory.Adapter, collection string, mapper entity.Mapper[E]) *Repository[E] {
	return &Repository[E]{
		adapter:    adapter,
		collection: collection,
		mapper:     mapper,
	}
}

// Collection returns the collection name.
func (r *Repository[E]) Collection() string {
	return r.collection
}

// Create stores e and returns a copy carrying its new identity.
func (r *Repository[E]) Create(e E) (E, error) {
	return memory.Create(r.adapter, r.collection, r.mapper, e)
}

// Update replaces the stored entity with e's identity.
func (r *Repository[E]) Update(e E) (E, error) {
	return memory.Update(r.adapter, r.collection, r.mapper, e)
}

// Delete removes the entity with e's identity, if present.
func (r *Repository[E]) Delete(e E) error {
	return memory.Delete(r.adapter, r.collection, r.mapper, e)
}

// Find returns the entity with the given identity.
func (r *Repository[E]) Find(id int64) (E, bool, error) {
	return memory.Find(r.adapter, r.collection, r.mapper, id)
}

// First returns the entity with the lowest identity.
func (r *Repository[E]) First() (E, bool, error) {
	return memory.First(r.adapter, r.collection, r.mapper)
}

// Last returns the entity with the highest identity.
func (r *Repository[E]) Last() (E, bool, error) {
	return memory.Last(r.adapter, r.collection, r.mapper)
}

// All returns every entity in insertion order.
func (r *Repository[E]) All() ([]E, error) {
	return memory.All(r.adapter, r.collection, r.mapper)
}

// Query starts a lazy query over the repository's collection.
func (r *Repository[E]) Query(configure ...func(q *query.Query[E])) *query.Query[E] {
	return memory.Query(r.adapter, r.collection, r.mapper, configure...)
}

// Where is shorthand for Query().Where(cond).
func (r *Repository[E]) Where(cond query.Condition) *query.Query[E] {
	return r.Query().Where(cond)
}

// Clear removes every entity and resets the identity counter.
func (r *Repository[E]) Clear() {
	r.adapter.Clear(r.collection)
}

// Transaction calls fn with no atomicity and no rollback.
func (r *Repository[E]) Transaction(fn func(repo *Repository[E]) error) error {
	return r.adapter.Transaction(func() error {
		if fn == nil {
			return nil
		}
		return fn(r)
	})
}
