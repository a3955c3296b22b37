package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecg-practice-service/internal/app"
	"ecg-practice-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore, used
// in tests and in demo mode when no Postgres URL is configured. A single
// mutex guards the whole read-compute-write, which gives the same
// atomicity per user that the Postgres store gets from its transaction.
type ProgressStore struct {
	mu       sync.Mutex
	nextID   int64
	attempts map[string][]domain.Attempt
	stats    map[string]domain.UserStats
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		nextID:   1,
		attempts: make(map[string][]domain.Attempt),
		stats:    make(map[string]domain.UserStats),
	}
}

func (s *ProgressStore) ApplyAttempt(_ context.Context, attempt domain.Attempt, update app.StatsUpdate) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt.ID = s.nextID
	s.nextID++
	s.attempts[attempt.UserID] = append(s.attempts[attempt.UserID], attempt)

	times := make([]time.Time, 0, len(s.attempts[attempt.UserID]))
	for _, a := range s.attempts[attempt.UserID] {
		times = append(times, a.CreatedAt)
	}

	next := update(s.stats[attempt.UserID], times)
	s.stats[attempt.UserID] = next
	return next, nil
}

func (s *ProgressStore) AttemptTimes(_ context.Context, userID string) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	times := make([]time.Time, 0, len(s.attempts[userID]))
	for _, a := range s.attempts[userID] {
		times = append(times, a.CreatedAt)
	}
	return times, nil
}

func (s *ProgressStore) Stats(_ context.Context, userID string) (domain.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.stats[userID]
	if !ok {
		return domain.UserStats{}, domain.ErrStatsNotFound
	}
	return stats, nil
}

func (s *ProgressStore) SaveStats(_ context.Context, stats domain.UserStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[stats.UserID] = stats
	return nil
}

func (s *ProgressStore) UserIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.stats))
	for id := range s.stats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
