// Package collection provides the in-memory record store backing one
// logical entity type.
//
// A Collection maps identity values to records and owns a monotonic
// primary-key counter. Identities are assigned on Create and never reused
// within a collection's lifetime, even after Delete. Clear empties the store
// and resets the counter, so the next Create yields identity 1.
//
// Collection performs no locking of its own. The memory adapter serializes
// every access through a single mutex.
package collection
