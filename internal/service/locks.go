package service

import (
	"sort"
	"sync"
)

// nameLocks serializes lifecycle operations touching the same organization
// name or partition within this process. Entries are reference counted and
// removed once nobody holds or waits on them.
type nameLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newNameLocks() *nameLocks {
	return &nameLocks{locks: make(map[string]*lockEntry)}
}

// Lock acquires every key in sorted order and returns the release func.
func (l *nameLocks) Lock(keys ...string) func() {
	keys = uniqueSorted(keys)

	entries := make([]*lockEntry, len(keys))
	l.mu.Lock()
	for i, k := range keys {
		e, ok := l.locks[k]
		if !ok {
			e = &lockEntry{}
			l.locks[k] = e
		}
		e.refs++
		entries[i] = e
	}
	l.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
	}

	return func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].mu.Unlock()
		}
		l.mu.Lock()
		for i, k := range keys {
			entries[i].refs--
			if entries[i].refs == 0 {
				delete(l.locks, k)
			}
		}
		l.mu.Unlock()
	}
}

func (l *nameLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func uniqueSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
