package redis

import (
	"context"
	"sync"
	"time"

	"ecg-practice-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// BoardStore is a Redis-aware implementation of app.BoardRepository.
// Notes:
//   - It still keeps a local in-memory map of boards to reuse the existing
//     in-process broadcast logic.
//   - Redis is used to mark board liveness (and could be extended to share
//     snapshots or route cross-instance pub/sub).
//   - For true distribution you'd pair this with a pub/sub projector that fans out updates.
type BoardStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	boards map[string]*app.Board
}

func NewBoardStore(client *redis.Client, ttl time.Duration) *BoardStore {
	return &BoardStore{
		client: client,
		ttl:    ttl,
		boards: make(map[string]*app.Board),
	}
}

func (s *BoardStore) GetOrCreate(cohortID string) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board, ok := s.boards[cohortID]; ok {
		return board
	}
	board := app.NewBoard(cohortID)
	s.boards[cohortID] = board
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(cohortID), "1", s.ttl).Err()
	return board
}

func (s *BoardStore) Get(cohortID string) (*app.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[cohortID]
	return board, ok
}

func (s *BoardStore) DeleteIfEmpty(cohortID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[cohortID]
	if !ok {
		return
	}
	if board.IsEmpty() {
		delete(s.boards, cohortID)
		_ = s.client.Del(context.Background(), s.key(cohortID)).Err()
	}
}

func (s *BoardStore) key(cohortID string) string {
	return "cohort:board:" + cohortID
}
