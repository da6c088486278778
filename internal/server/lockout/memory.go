package lockout

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	failures    int
	lastFailure time.Time
	lockedUntil time.Time
}

// stale reports whether e no longer affects a login: the lock, if any, has
// run out and the last failure is older than the cooldown.
func (e *entry) stale(now time.Time, cooldown time.Duration) bool {
	return !now.Before(e.lockedUntil) && now.Sub(e.lastFailure) >= cooldown
}

// MemoryStore keeps counters in process. It suits a single instance; use
// RedisStore when several instances share logins. Failure counts expire
// one cooldown after the last failure, and stale entries are swept at most
// once per cooldown.
type MemoryStore struct {
	mu        sync.Mutex
	data      map[string]*entry
	max       int
	cooldown  time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore(maxAttempts int, cooldown time.Duration) *MemoryStore {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &MemoryStore{
		data:     make(map[string]*entry),
		max:      maxAttempts,
		cooldown: cooldown,
		now:      time.Now,
	}
}

func (s *MemoryStore) IsLocked(_ context.Context, email string) (bool, time.Duration, error) {
	if s.max <= 0 {
		return false, 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[email]
	if !ok {
		return false, 0, nil
	}
	if left := e.lockedUntil.Sub(s.now()); left > 0 {
		return true, left, nil
	}
	return false, 0, nil
}

func (s *MemoryStore) RecordFailure(_ context.Context, email string) error {
	if s.max <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	e := s.data[email]
	if e == nil {
		e = &entry{}
		s.data[email] = e
	}
	// an expired lock or a quiet window starts a fresh count
	if (!e.lockedUntil.IsZero() && !now.Before(e.lockedUntil)) || now.Sub(e.lastFailure) >= s.cooldown {
		e.failures = 0
		e.lockedUntil = time.Time{}
	}
	e.failures++
	e.lastFailure = now
	if e.failures >= s.max {
		e.lockedUntil = now.Add(s.cooldown)
	}
	return nil
}

func (s *MemoryStore) RecordSuccess(_ context.Context, email string) error {
	if s.max <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, email)
	return nil
}

// sweep drops stale entries. Callers hold s.mu.
func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.cooldown {
		return
	}
	s.lastSweep = now
	for email, e := range s.data {
		if e.stale(now, s.cooldown) {
			delete(s.data, email)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
