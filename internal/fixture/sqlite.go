package fixture

import (
	"context"
	"fmt"

	"github.com/roach88/memorm/internal/store"
)

// LoadSQLite reads every collection of a SQLite database, read-only.
func LoadSQLite(path string) (*Set, error) {
	ctx := context.Background()

	s, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer s.Close()

	tables, err := s.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	set := &Set{Path: path, Collections: make([]Collection, 0, len(tables))}
	for _, t := range tables {
		recs, err := s.ReadTable(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		set.Collections = append(set.Collections, Collection{
			Name:     t.Name,
			Identity: t.Identity,
			Records:  recs,
		})
	}
	return set, nil
}
