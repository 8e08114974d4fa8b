package server

import "sync"

// LockManager manages per-target aggregation locks so a target is never
// resolved by two requests at once.
//
// The outer mutex (mu) protects the locks map itself; each target has its own
// mutex for the aggregation. Different targets aggregate concurrently.
type LockManager struct {
	mu    sync.Mutex             // Protects the locks map
	locks map[string]*sync.Mutex // Per-target locks
}

// NewLockManager creates a new lock manager
func NewLockManager() *LockManager {
	return &LockManager{
		locks: make(map[string]*sync.Mutex),
	}
}

// TryLock attempts to acquire the aggregation lock for the given target.
//
// It never blocks. A false result means another request is already resolving
// this target and the caller should reject the request.
func (lm *LockManager) TryLock(targetName string) bool {
	lm.mu.Lock()
	lock, exists := lm.locks[targetName]
	if !exists {
		lock = &sync.Mutex{}
		lm.locks[targetName] = lock
	}
	lm.mu.Unlock()

	return lock.TryLock()
}

// Unlock releases the aggregation lock for the given target. A target name
// never passed to TryLock is a no-op. Unlocking a target that is not
// currently held is a fatal runtime error, as with sync.Mutex.
func (lm *LockManager) Unlock(targetName string) {
	lm.mu.Lock()
	lock := lm.locks[targetName]
	lm.mu.Unlock()

	if lock != nil {
		lock.Unlock()
	}
}
