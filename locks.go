package main

import "sync"

// dayLocks serializes read-modify-write sequences per (community, day) key.
// The store contract has no compare-and-swap, so without this two concurrent
// contributions to the same day could lose an update. Locks are per process,
// so multi-instance deployments need a single writer per community.
type dayLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDayLocks() *dayLocks {
	return &dayLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *dayLocks) forDay(community, day string) *sync.Mutex {
	key := community + ":" + day
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
