package service

import "sync"

// matchLocks serializes mutating operations per match id. Two concurrent
// AddPoint calls, or an AddPoint racing an undo, on the same match would
// otherwise interleave read-modify-write on score and log; different match
// ids stay fully independent.
type matchLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newMatchLocks() *matchLocks {
	return &matchLocks{locks: make(map[int64]*sync.Mutex)}
}

// acquire blocks until the caller holds the lock for id and returns the
// release function. The per-id mutex is kept for the process lifetime; the
// table is bounded by the number of distinct matches touched.
func (l *matchLocks) acquire(id int64) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
