// Package record provides the storage-layer value types for memorm.
//
// A Record is a plain attribute mapping from column name to Value. Value is a
// sealed interface: only the types declared in this package implement it, so
// every consumer can switch over it exhaustively.
//
// This package imports nothing internal. Collections, queries and commands
// all build on it.
//
// Key rules:
//   - A missing column reads as Null, never as an error
//   - Int and Float compare and equal numerically (1 == 1.0)
//   - Null sorts before every other value
//   - Values of different families (string vs number) are incomparable
package record
