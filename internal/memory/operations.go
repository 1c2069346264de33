package memory

import (
	"github.com/roach88/memorm/internal/command"
	"github.com/roach88/memorm/internal/entity"
	"github.com/roach88/memorm/internal/query"
)

// commandFor returns a Command over the named collection. Callers must hold
// a.mu for as long as the Command is used.
func commandFor[E any](a *Adapter, name string, m entity.Mapper[E]) *command.Command[E] {
	return command.New(lockedStore{c: a.collection(name), logger: a.logger}, m)
}

// Create stores e in the named collection and returns the stored entity
// with its assigned identity.
func Create[E any](a *Adapter, name string, m entity.Mapper[E], e E) (E, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return commandFor(a, name, m).Create(e)
}

// Update replaces the stored record with e's identity. An identity the
// collection has never seen is inserted.
func Update[E any](a *Adapter, name string, m entity.Mapper[E], e E) (E, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return commandFor(a, name, m).Update(e)
}

// Delete removes the stored record with e's identity, if any.
func Delete[E any](a *Adapter, name string, m entity.Mapper[E], e E) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return commandFor(a, name, m).Delete(e)
}

// Query builds a lazy query over the named collection. The collection is
// looked up under the adapter lock; the configure functions run after it
// is released, so they may resolve queries or call back into a.
func Query[E any](a *Adapter, name string, m entity.Mapper[E], configure ...func(q *query.Query[E])) *query.Query[E] {
	a.mu.Lock()
	src := lockedSource{a: a, c: a.collection(name)}
	a.mu.Unlock()

	return query.New(src, entity.DeserializeAll(m), configure...)
}

// Find returns the entity with the given identity.
func Find[E any](a *Adapter, name string, m entity.Mapper[E], id int64) (E, bool, error) {
	q := Query(a, name, m)
	return q.Where(query.Attrs{q.Identity(): id}).Limit(1).Take()
}

// First returns the entity with the lowest identity.
func First[E any](a *Adapter, name string, m entity.Mapper[E]) (E, bool, error) {
	return Query(a, name, m).First()
}

// Last returns the entity with the highest identity.
func Last[E any](a *Adapter, name string, m entity.Mapper[E]) (E, bool, error) {
	return Query(a, name, m).Last()
}

// All returns every entity of the named collection in insertion order.
func All[E any](a *Adapter, name string, m entity.Mapper[E]) ([]E, error) {
	return Query(a, name, m).All()
}
