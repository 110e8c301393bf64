package auth

import (
	"sync"
	"time"
)

type failureRecord struct {
	count    int
	lockedAt time.Time
}

// LockoutTracker counts failed admin logins per key (client IP) and refuses
// further attempts for a cooldown once the limit is reached.
type LockoutTracker struct {
	mu       sync.Mutex
	records  map[string]*failureRecord
	maxFails int
	lockDur  time.Duration
	now      func() time.Time
}

func NewLockoutTracker(maxFailedAttempts int, lockoutDuration time.Duration) *LockoutTracker {
	if maxFailedAttempts <= 0 {
		maxFailedAttempts = 5
	}
	return &LockoutTracker{
		records:  make(map[string]*failureRecord),
		maxFails: maxFailedAttempts,
		lockDur:  lockoutDuration,
		now:      time.Now,
	}
}

// RetryAfter reports how long key stays locked. Zero means not locked.
// Expired locks are forgotten.
func (lt *LockoutTracker) RetryAfter(key string) time.Duration {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	rec, ok := lt.records[key]
	if !ok || rec.count < lt.maxFails {
		return 0
	}

	remaining := lt.lockDur - lt.now().Sub(rec.lockedAt)
	if remaining <= 0 {
		delete(lt.records, key)
		return 0
	}
	return remaining
}

func (lt *LockoutTracker) IsLocked(key string) bool {
	return lt.RetryAfter(key) > 0
}

func (lt *LockoutTracker) RecordFailure(key string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	rec, ok := lt.records[key]
	if !ok {
		rec = &failureRecord{}
		lt.records[key] = rec
	}

	rec.count++
	if rec.count == lt.maxFails {
		rec.lockedAt = lt.now()
	}
}

// Reset clears the failures for key after a successful login.
func (lt *LockoutTracker) Reset(key string) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	delete(lt.records, key)
}
