// Package memory provides the in-memory adapter: a registry of named
// collections guarded by a single mutex.
//
// Every storage operation (create, update, delete, clear, raw insert) holds
// the adapter lock for its whole duration, so storage operations are
// strictly serialized. Query construction takes the lock to look up the
// collection and releases it before running configure functions.
//
// Consistency model:
//
// A Query built by the adapter holds a reference to its collection, not a
// copy. Resolving it later reads the collection as it is at resolution time,
// so writes made between construction and resolution are visible. No
// snapshot isolation is provided. The snapshot a resolving query reads is
// copied under the adapter lock; conditions, modifiers and deserialization
// then run on that copy outside the lock.
//
// Transaction runs its function with no atomicity and no rollback.
package memory
