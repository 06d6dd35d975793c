package services

import "sync"

// eventLocker serializes admission operations per event. Reading the
// confirmed count and then writing request statuses is a check-then-act
// sequence; holding the event's lock across both steps keeps two concurrent
// joins from both taking the last free slot. Locks for different events are
// independent, so unrelated events never block each other.
type eventLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEventLocker() *eventLocker {
	return &eventLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for eventID and returns its unlock function.
// Lock entries live for the process lifetime; the set of events a single
// instance serves keeps the map small.
func (l *eventLocker) Lock(eventID string) func() {
	l.mu.Lock()
	m, ok := l.locks[eventID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[eventID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
