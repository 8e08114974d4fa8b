package server

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockManager_BasicLocking(t *testing.T) {
	lm := NewLockManager()

	if !lm.TryLock("sleuth") {
		t.Fatal("First TryLock should succeed")
	}

	if lm.TryLock("sleuth") {
		t.Error("Second TryLock on same target should fail")
	}

	lm.Unlock("sleuth")

	if !lm.TryLock("sleuth") {
		t.Error("TryLock should succeed after unlock")
	}

	lm.Unlock("sleuth")
}

func TestLockManager_MultipleTargets(t *testing.T) {
	lm := NewLockManager()

	if !lm.TryLock("sleuth") || !lm.TryLock("docs") {
		t.Fatal("Different targets should lock independently")
	}

	if lm.TryLock("docs") {
		t.Error("Second lock on docs should fail")
	}

	lm.Unlock("sleuth")
	lm.Unlock("docs")
}

func TestLockManager_UnlockNonExistent(t *testing.T) {
	lm := NewLockManager()

	// Unlocking a target never passed to TryLock should not panic
	lm.Unlock("nonexistent")

	if !lm.TryLock("nonexistent") {
		t.Error("Should be able to lock after unlocking non-existent")
	}

	lm.Unlock("nonexistent")
}

func TestLockManager_ConcurrentAttemptsWhileHeld(t *testing.T) {
	lm := NewLockManager()

	if !lm.TryLock("sleuth") {
		t.Fatal("Initial TryLock should succeed")
	}

	const goroutineCount = 50
	var successCount int32
	var wg sync.WaitGroup
	wg.Add(goroutineCount)

	for i := 0; i < goroutineCount; i++ {
		go func() {
			defer wg.Done()
			if lm.TryLock("sleuth") {
				atomic.AddInt32(&successCount, 1)
			}
		}()
	}

	wg.Wait()
	lm.Unlock("sleuth")

	if successCount != 0 {
		t.Errorf("Expected every attempt to fail while the lock is held, %d succeeded", successCount)
	}
}

func TestLockManager_DeadlockPrevention(t *testing.T) {
	lm := NewLockManager()

	const targetCount = 10
	var wg sync.WaitGroup

	for i := 0; i < targetCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			targetName := string(rune('a' + id))

			for j := 0; j < 100; j++ {
				if lm.TryLock(targetName) {
					lm.Unlock(targetName)
				}
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out - potential deadlock detected")
	}
}

func BenchmarkLockManager_TryLock(b *testing.B) {
	lm := NewLockManager()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lm.TryLock("bench-target")
		lm.Unlock("bench-target")
	}
}
