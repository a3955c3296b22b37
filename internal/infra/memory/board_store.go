package memory

import (
	"sync"

	"ecg-practice-service/internal/app"
)

// BoardStore is an in-memory implementation of app.BoardRepository.
type BoardStore struct {
	mu     sync.RWMutex
	boards map[string]*app.Board
}

func NewBoardStore() *BoardStore {
	return &BoardStore{
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
	}
}
