// Package store persists collections of records in SQLite.
//
// Each collection is stored as a table of the same name, one column per
// attribute. Column types are declared from the values written so that they
// can be read back into the same record types:
//
//   - INTEGER, REAL, TEXT: numbers and strings
//   - BOOLEAN: bool (stored as 0/1)
//   - DATETIME: times
//   - JSON: arrays and objects, as canonical JSON text
//   - no declared type: columns holding values of mixed types
//
// Rows are read back in rowid order, which is insertion order. NULL columns
// are omitted from the returned records.
//
// # Database Configuration
//
//   - WAL mode for databases opened read-write
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - a single connection (SQLite has one writer)
//
// Collection metadata (identity column, export order) is kept in the
// _memorm_collections table. Databases without it are still readable: every
// user table becomes a collection with the default identity column.
package store
