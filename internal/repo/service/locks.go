package service

import "sync"

// LockRegistry coordinates in-process exclusion between per-repository
// sync passes and the global recalculation. A repository lock is denied
// while a recalculation holds the exclusive lock, and vice versa.
type LockRegistry struct {
	mu        sync.Mutex
	active    map[string]struct{}
	exclusive bool
}

// NewLockRegistry creates an empty lock registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{active: make(map[string]struct{})}
}

// AcquireRepo takes the lock for one repository. Returns false when the
// repository is already being synced or a recalculation is running.
func (l *LockRegistry) AcquireRepo(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.exclusive {
		return false
	}
	if _, held := l.active[id]; held {
		return false
	}
	l.active[id] = struct{}{}
	return true
}

// ReleaseRepo returns one repository's lock.
func (l *LockRegistry) ReleaseRepo(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, id)
}

// Held reports whether a sync currently holds the repository's lock.
func (l *LockRegistry) Held(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, held := l.active[id]
	return held
}

// AcquireExclusive takes the global lock. Returns false while any sync
// pass is active or another recalculation is running.
func (l *LockRegistry) AcquireExclusive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.exclusive || len(l.active) > 0 {
		return false
	}
	l.exclusive = true
	return true
}

// ReleaseExclusive returns the global lock.
func (l *LockRegistry) ReleaseExclusive() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exclusive = false
}
