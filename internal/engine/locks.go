package engine

import "sync"

// LockTable hands out one mutex per token id. Every reserve mutation in the
// system (user trades, bot trades, simulator drift) must run inside the
// owning token's critical section, so the read-compute-write cycle over
// reserves can never interleave. Operations on different tokens proceed in
// parallel.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockTable creates an empty lock table.
func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[string]*sync.Mutex)}
}

// For returns the mutex owning the given token id, creating it on first use.
// Locks are never removed; rugged tokens keep theirs (the table is bounded
// by the token population).
func (lt *LockTable) For(tokenID string) *sync.Mutex {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	l, ok := lt.locks[tokenID]
	if !ok {
		l = &sync.Mutex{}
		lt.locks[tokenID] = l
	}
	return l
}
