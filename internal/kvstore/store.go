package kvstore

import (
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

// Store is an in-process key/value store whose entries expire after a TTL.
// Reads never observe an expired value: expiry is checked lazily on every
// access and a background sweep evicts dead entries between reads.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	done    chan struct{}
	once    sync.Once
}

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

func New() *Store {
	s := &Store{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}
	go s.sweep(defaultSweepInterval)
	return s
}

// Set stores value under key. Last writer wins.
func (s *Store) Set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{value: value, expiresAt: time.Now().Add(ttl)}
}

// SetIfAbsent stores value only if key holds no live entry, as a single
// atomic step. Returns false when a live entry blocked the write.
func (s *Store) SetIfAbsent(key, value string, ttl time.Duration) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && !e.expired(now) {
		return false
	}
	s.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
	return true
}

// Get returns the live value for key, or false if absent or expired.
func (s *Store) Get(key string) (string, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if e.expired(now) {
		delete(s.entries, key)
		return "", false
	}
	return e.value, true
}

// CompareAndDelete removes key only if its live value equals want, as a
// single atomic step. A mismatch leaves the entry in place.
func (s *Store) CompareAndDelete(key, want string) bool {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	if e.expired(now) {
		delete(s.entries, key)
		return false
	}
	if e.value != want {
		return false
	}
	delete(s.entries, key)
	return true
}

// Delete removes key immediately. No-op if absent.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Close stops the background sweep.
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *Store) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for k, e := range s.entries {
				if e.expired(now) {
					delete(s.entries, k)
				}
			}
			s.mu.Unlock()
		}
	}
}
