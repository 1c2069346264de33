package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/memorm/internal/record"
)

// WriteTable replaces the named table with recs and records the
// collection in the metadata table at the given position.
//
// The table is dropped and recreated inside a single transaction, so a
// failed write leaves the previous contents intact.
func (s *Store) WriteTable(ctx context.Context, t Table, position int, recs []record.Record) error {
	if s.readOnly {
		return fmt.Errorf("write table %q: %w", t.Name, ErrReadOnly)
	}
	if t.Name == "" || strings.HasPrefix(t.Name, "sqlite_") || t.Name == metadataTable {
		return fmt.Errorf("write table: invalid table name %q", t.Name)
	}
	if t.Identity == "" {
		t.Identity = record.DefaultIdentity
	}

	columns := columnsOf(recs)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write table %q: begin: %w", t.Name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdent(t.Name)); err != nil {
		return fmt.Errorf("write table %q: drop: %w", t.Name, err)
	}
	if _, err := tx.ExecContext(ctx, createTableSQL(t.Name, columns)); err != nil {
		return fmt.Errorf("write table %q: create: %w", t.Name, err)
	}

	if len(recs) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertSQL(t.Name, columns))
		if err != nil {
			return fmt.Errorf("write table %q: prepare: %w", t.Name, err)
		}
		defer stmt.Close()

		for i, rec := range recs {
			args := make([]any, len(columns))
			for j, col := range columns {
				arg, err := toSQL(rec.Get(col.name))
				if err != nil {
					return fmt.Errorf("write table %q: record %d: column %q: %w", t.Name, i, col.name, err)
				}
				args[j] = arg
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("write table %q: record %d: %w", t.Name, i, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO `+metadataTable+` (name, identity, position)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET identity = excluded.identity, position = excluded.position
	`, t.Name, t.Identity, position)
	if err != nil {
		return fmt.Errorf("write table %q: metadata: %w", t.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write table %q: commit: %w", t.Name, err)
	}
	return nil
}

func createTableSQL(name string, columns []column) string {
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		def := quoteIdent(col.name)
		if col.decl != "" {
			def += " " + col.decl
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		// SQLite requires at least one column
		defs = append(defs, quoteIdent(record.DefaultIdentity)+" INTEGER")
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(defs, ", "))
}

func insertSQL(name string, columns []column) string {
	names := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, col := range columns {
		names[i] = quoteIdent(col.name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(names, ", "), strings.Join(marks, ", "))
}
