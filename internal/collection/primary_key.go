package collection

import "sync/atomic"

// PrimaryKey is a monotonic identity counter.
//
// The first call to Next returns 1. Values only grow until Reset.
// Thread-safety: safe for concurrent use (atomic operations), although the
// adapter's lock already serializes callers.
type PrimaryKey struct {
	current atomic.Int64
}

// NewPrimaryKey creates a counter starting at 0.
func NewPrimaryKey() *PrimaryKey {
	return &PrimaryKey{}
}

// Next increments the counter and returns the new identity.
func (pk *PrimaryKey) Next() int64 {
	return pk.current.Add(1)
}

// Current returns the last assigned identity without incrementing.
func (pk *PrimaryKey) Current() int64 {
	return pk.current.Load()
}

// Advance moves the counter forward to at least id. It never moves backward.
func (pk *PrimaryKey) Advance(id int64) {
	for {
		cur := pk.current.Load()
		if id <= cur || pk.current.CompareAndSwap(cur, id) {
			return
		}
	}
}

// Reset sets the counter back to 0.
func (pk *PrimaryKey) Reset() {
	pk.current.Store(0)
}
