package memory

import (
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/memorm/internal/collection"
	"github.com/roach88/memorm/internal/record"
)

// Adapter is the in-memory storage adapter.
//
// Thread-safety: all methods and the package-level generic functions are
// safe for concurrent use.
//
// INVARIANTS:
//   - a collection, once created, is cached for the adapter's lifetime
//   - collections are only read or written while mu is held
type Adapter struct {
	mu          sync.Mutex
	collections map[string]*collection.Collection
	identities  map[string]string // collection name -> identity column
	logger      *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used for storage events.
//
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithIdentity sets the identity column of a collection.
// It only applies to collections created after the option is set.
func WithIdentity(name, key string) Option {
	return func(a *Adapter) {
		a.identities[name] = key
	}
}

// New creates an empty adapter.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		collections: make(map[string]*collection.Collection),
		identities:  make(map[string]string),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// collection returns the named collection, creating it on first use.
// Callers must hold a.mu.
func (a *Adapter) collection(name string) *collection.Collection {
	if c, ok := a.collections[name]; ok {
		return c
	}
	c := collection.New(name, a.identities[name])
	a.collections[name] = c
	a.logger.Debug("collection created",
		"collection", name,
		"identity", c.Identity(),
	)
	return c
}

// Identity returns the identity column of the named collection.
func (a *Adapter) Identity(name string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.collection(name).Identity()
}

// Collections returns the names of every collection created so far, sorted.
func (a *Adapter) Collections() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	names := make([]string, 0, len(a.collections))
	for name := range a.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of records in the named collection.
func (a *Adapter) Len(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.collection(name).Len()
}

// Clear removes every record from the named collection and resets its
// identity counter.
func (a *Adapter) Clear(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.collection(name).Clear()
	a.logger.Debug("collection cleared", "collection", name)
}

// Insert stores a raw record in the named collection and returns its new
// identity. Any identity on rec is replaced. Used for loading fixtures.
func (a *Adapter) Insert(name string, rec record.Record) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.collection(name)
	id := c.Create(rec.Without(c.Identity()))
	a.logger.Debug("record created", "collection", name, "id", id)
	return id
}

// Transaction calls fn and returns its error.
//
// There is no atomicity and no rollback: writes made by fn before it fails
// stay applied. The lock is not held while fn runs, so fn may call back
// into the adapter.
func (a *Adapter) Transaction(fn func() error) error {
	if fn == nil {
		return nil
	}
	return fn()
}

// lockedSource is the query.Source handed to adapter queries. It copies
// the collection's records under the adapter lock at resolution time.
type lockedSource struct {
	a *Adapter
	c *collection.Collection
}

func (s lockedSource) All() []record.Record {
	s.a.mu.Lock()
	defer s.a.mu.Unlock()
	return s.c.All()
}

func (s lockedSource) Identity() string {
	return s.c.Identity()
}

// lockedStore is the command.Store used while the adapter lock is held.
// It adds debug logging to the collection's mutators.
type lockedStore struct {
	c      *collection.Collection
	logger *slog.Logger
}

func (s lockedStore) Create(rec record.Record) int64 {
	id := s.c.Create(rec)
	s.logger.Debug("record created", "collection", s.c.Name(), "id", id)
	return id
}

func (s lockedStore) Update(rec record.Record) error {
	if err := s.c.Update(rec); err != nil {
		return err
	}
	id, _ := record.IdentityOf(rec, s.c.Identity())
	s.logger.Debug("record updated", "collection", s.c.Name(), "id", id)
	return nil
}

func (s lockedStore) Delete(rec record.Record) {
	s.c.Delete(rec)
	id, _ := record.IdentityOf(rec, s.c.Identity())
	s.logger.Debug("record deleted", "collection", s.c.Name(), "id", id)
}

func (s lockedStore) Clear() {
	s.c.Clear()
	s.logger.Debug("collection cleared", "collection", s.c.Name())
}

func (s lockedStore) Identity() string {
	return s.c.Identity()
}
