package tokens

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// MemoryStore is a process-local RevocationStore used when no redis is configured.
// It holds at most maxEntries ids; expired ids are swept on a schedule and, when
// the store is full, the id closest to expiry is evicted first.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[string]time.Time
	maxEntries int
	now        func() time.Time
	scheduler  gocron.Scheduler
}

func NewMemoryStore(maxEntries int, sweepEvery time.Duration, logger *slog.Logger) (*MemoryStore, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("max entries must be positive, got %d", maxEntries)
	}

	s := &MemoryStore{
		entries:    make(map[string]time.Time),
		maxEntries: maxEntries,
		now:        time.Now,
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create revocation sweep scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(sweepEvery),
		gocron.NewTask(func() {
			if n := s.Sweep(); n > 0 && logger != nil {
				logger.Debug("swept expired revoked tokens", slog.Int("removed", n))
			}
		}),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule revocation sweep: %w", err)
	}
	sched.Start()
	s.scheduler = sched

	return s, nil
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !expiresAt.After(s.now()) {
		return nil
	}
	if _, exists := s.entries[tokenID]; !exists && len(s.entries) >= s.maxEntries {
		s.sweepLocked()
		if len(s.entries) >= s.maxEntries {
			s.evictSoonestLocked()
		}
	}
	s.entries[tokenID] = expiresAt
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !exp.After(s.now()) {
		delete(s.entries, tokenID)
		return false, nil
	}
	return true, nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// Len reports the number of tracked ids.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Close() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

func (s *MemoryStore) sweepLocked() int {
	now := s.now()
	removed := 0
	for id, exp := range s.entries {
		if !exp.After(now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for id, exp := range s.entries {
		if victim == "" || exp.Before(soonest) {
			victim, soonest = id, exp
		}
	}
	if victim != "" {
		delete(s.entries, victim)
	}
}
