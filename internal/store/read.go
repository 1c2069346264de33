package store

import (
	"context"
	"fmt"

	"github.com/roach88/memorm/internal/record"
)

// Table describes a stored collection.
type Table struct {
	Name     string
	Identity string
}

// Tables returns the stored collections.
//
// When the metadata table is present its order (export order) is used;
// otherwise every user table is returned sorted by name.
func (s *Store) Tables(ctx context.Context) ([]Table, error) {
	ok, err := s.hasTable(ctx, metadataTable)
	if err != nil {
		return nil, err
	}
	if ok {
		return s.metadataTables(ctx)
	}
	return s.userTables(ctx)
}

func (s *Store) metadataTables(ctx context.Context) ([]Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, identity
		FROM `+metadataTable+`
		ORDER BY position ASC, name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query collections: %w", err)
	}
	defer rows.Close()

	tables := []Table{}
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Name, &t.Identity); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collections: %w", err)
	}
	return tables, nil
}

func (s *Store) userTables(ctx context.Context) ([]Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	tables := []Table{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, Table{Name: name, Identity: record.DefaultIdentity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

// ReadTable returns every row of the named table as a record, in rowid
// order. Returns an empty slice (not nil) for an empty table.
func (s *Store) ReadTable(ctx context.Context, name string) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT * FROM `+quoteIdent(name)+` ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read table %q: columns: %w", name, err)
	}

	recs := []record.Record{}
	for rows.Next() {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read table %q: scan: %w", name, err)
		}

		rec := make(record.Record, len(columns))
		for i, col := range columns {
			if raw[i] == nil {
				continue
			}
			v, err := fromSQL(raw[i], col.DatabaseTypeName())
			if err != nil {
				return nil, fmt.Errorf("read table %q: column %q: %w", name, col.Name(), err)
			}
			rec[col.Name()] = v
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read table %q: iterate: %w", name, err)
	}
	return recs, nil
}
