package services

import (
	"strconv"
	"sync"
)

// ScopeLocker serializes mutating operations per scope key (category id for
// generation and score writes, event id for lifecycle transitions). Locks are
// created on demand and dropped when the last holder releases them.
type ScopeLocker struct {
	mu    sync.Mutex
	locks map[string]*scopeLock
}

type scopeLock struct {
	mu   sync.Mutex
	refs int
}

func NewScopeLocker() *ScopeLocker {
	return &ScopeLocker{locks: make(map[string]*scopeLock)}
}

// Lock blocks until the scope is free and returns the release func.
func (l *ScopeLocker) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &scopeLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func categoryLockKey(categoryID int) string {
	return "category:" + strconv.Itoa(categoryID)
}

func eventLockKey(eventID int) string {
	return "event:" + strconv.Itoa(eventID)
}
