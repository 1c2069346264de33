// Package fixture loads named collections of records from YAML, CUE or
// SQLite files and applies them to a memory adapter.
//
// YAML and CUE fixtures share one shape:
//
//	collections:
//	  users:
//	    identity: id        # optional
//	    records:
//	      - {name: alice, age: 30}
//
// Collections keep their declaration order. SQLite fixtures map every table
// to a collection (see package store).
package fixture

import (
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/memorm/internal/memory"
	"github.com/roach88/memorm/internal/record"
)

// Collection is one named group of records in a fixture.
type Collection struct {
	Name     string
	Identity string // empty means record.DefaultIdentity
	Records  []record.Record
}

// Set is an ordered list of collections loaded from one file.
type Set struct {
	Path        string
	Collections []Collection
}

// LoadError reports a malformed fixture, with a source position when the
// format provides one.
type LoadError struct {
	Path    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Load reads a fixture file, choosing the format by extension:
// .yaml/.yml, .cue, or .db/.sqlite/.sqlite3.
func Load(path string) (*Set, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".cue":
		return LoadCUE(path)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(path)
	default:
		return nil, &LoadError{Path: path, Message: fmt.Sprintf("unsupported fixture extension %q", ext)}
	}
}

// Collection returns the named collection.
func (s *Set) Collection(name string) (Collection, bool) {
	for _, c := range s.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// Len returns the total number of records.
func (s *Set) Len() int {
	n := 0
	for _, c := range s.Collections {
		n += len(c.Records)
	}
	return n
}

// Options returns the adapter options needed to honour the identity
// columns declared by the fixture. Pass them to memory.New before Apply.
func (s *Set) Options() []memory.Option {
	var opts []memory.Option
	for _, c := range s.Collections {
		if c.Identity != "" {
			opts = append(opts, memory.WithIdentity(c.Name, c.Identity))
		}
	}
	return opts
}

// Apply inserts every record into the adapter, in order. Identities are
// reassigned by the adapter, 1..n per collection in load order.
//
// Returns an error if a collection's identity column differs from the one
// the adapter uses for it.
func (s *Set) Apply(a *memory.Adapter) error {
	for _, c := range s.Collections {
		identity := c.Identity
		if identity == "" {
			identity = record.DefaultIdentity
		}
		if got := a.Identity(c.Name); got != identity {
			return fmt.Errorf("apply %s: collection %q uses identity %q, fixture declares %q",
				s.Path, c.Name, got, identity)
		}
		for _, rec := range c.Records {
			a.Insert(c.Name, rec)
		}
	}
	return nil
}

// NewAdapter creates an adapter configured for the set and loads it.
func (s *Set) NewAdapter(opts ...memory.Option) (*memory.Adapter, error) {
	a := memory.New(append(s.Options(), opts...)...)
	if err := s.Apply(a); err != nil {
		return nil, err
	}
	return a, nil
}
