// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sessionlock serializes work on a single session without blocking
// unrelated sessions. Entries are reference counted and dropped once no
// goroutine holds or waits for them.
package sessionlock

import "sync"

type entry struct {
	rw   sync.RWMutex
	refs int
}

// Locks is a set of read/write locks keyed by session id.
// The zero value is ready to use.
type Locks struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Locks {
	return &Locks{}
}

// Lock takes the exclusive lock for id and returns its release function.
func (l *Locks) Lock(id string) (unlock func()) {
	e := l.acquire(id)
	e.rw.Lock()
	return func() {
		e.rw.Unlock()
		l.release(id, e)
	}
}

// RLock takes a shared lock for id and returns its release function.
func (l *Locks) RLock(id string) (unlock func()) {
	e := l.acquire(id)
	e.rw.RLock()
	return func() {
		e.rw.RUnlock()
		l.release(id, e)
	}
}

// Len reports how many ids currently have an entry.
func (l *Locks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Locks) acquire(id string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.entries == nil {
		l.entries = make(map[string]*entry)
	}
	e, ok := l.entries[id]
	if !ok {
		e = &entry{}
		l.entries[id] = e
	}
	e.refs++
	return e
}

func (l *Locks) release(id string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, id)
	}
}
