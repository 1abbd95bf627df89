// Package memory is the in-process session store used in development and
// tests. Entries are lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Store is a mutex-guarded map with lazy expiry.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]entry), now: time.Now}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key)
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = e
	return nil
}

func (s *Store) Take(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok, _ := s.lookup(key)
	delete(s.entries, key)
	return v, ok, nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

// lookup must be called with mu held.
func (s *Store) lookup(key string) (string, bool, error) {
	e, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if e.expired(s.now()) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Sweep drops every expired entry and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor sweeps the store every interval until ctx is cancelled.
// Abandoned sessions are otherwise only reclaimed when read again.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration, log zerolog.Logger) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					log.Debug().Int("removed", n).Msg("swept expired session entries")
				}
			}
		}
	}()
}
