package app

import (
	"sort"
	"sync"
	"time"

	"ecg-practice-service/internal/domain"
)

// participant is one user's live entry on a cohort board.
type participant struct {
	userID      string
	displayName string
	totalXP     int
	level       int
	streak      int
	lastUpdated time.Time
}

// Board is the in-memory XP scoreboard for one practice cohort.
type Board struct {
	id           string
	createdAt    time.Time
	now          func() time.Time
	mu           sync.RWMutex
	participants map[string]*participant
	subscribers  map[chan domain.ProgressBoard]struct{}
}

// NewBoard is exported for infrastructure layers that need to seed boards.
func NewBoard(id string) *Board {
	return newBoardWithClock(id, time.Now)
}

// NewBoardWithClock is test-only for deterministic timestamps.
func NewBoardWithClock(id string, now func() time.Time) *Board {
	return newBoardWithClock(id, now)
}

func newBoardWithClock(id string, now func() time.Time) *Board {
	return &Board{
		id:           id,
		createdAt:    now(),
		now:          now,
		participants: make(map[string]*participant),
		subscribers:  make(map[chan domain.ProgressBoard]struct{}),
	}
}

func (b *Board) join(userID, displayName string, stats domain.UserStats) domain.ProgressBoard {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if p, ok := b.participants[userID]; ok {
		p.displayName = displayName
		p.lastUpdated = now
	} else {
		b.participants[userID] = &participant{
			userID:      userID,
			displayName: displayName,
			totalXP:     stats.TotalXP,
			level:       stats.CurrentLevel,
			streak:      stats.CurrentStreak,
			lastUpdated: now,
		}
	}
	return b.broadcastLocked()
}

func (b *Board) applyProgress(userID string, stats domain.UserStats) domain.ProgressBoard {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.participants[userID]
	if !ok {
		return b.snapshotLocked()
	}
	p.totalXP = stats.TotalXP
	p.level = stats.CurrentLevel
	p.streak = stats.CurrentStreak
	p.lastUpdated = b.now()

	return b.broadcastLocked()
}

func (b *Board) hasParticipant(userID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.participants[userID]
	return ok
}

func (b *Board) leave(userID string) domain.ProgressBoard {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.participants, userID)
	return b.broadcastLocked()
}

func (b *Board) isEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.participants) == 0
}

// IsEmpty reports whether the board has no participants.
func (b *Board) IsEmpty() bool {
	return b.isEmpty()
}

func (b *Board) subscribe() (<-chan domain.ProgressBoard, func()) {
	ch := make(chan domain.ProgressBoard, 8)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	initial := b.snapshotLocked()
	b.mu.Unlock()

	ch <- initial

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Board) broadcastLocked() domain.ProgressBoard {
	lb := b.snapshotLocked()
	for ch := range b.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale update so a slow client never blocks broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
	return lb
}

func (b *Board) snapshotLocked() domain.ProgressBoard {
	entries := make([]domain.ProgressEntry, 0, len(b.participants))
	for _, p := range b.participants {
		entries = append(entries, domain.ProgressEntry{
			UserID:      p.userID,
			DisplayName: p.displayName,
			TotalXP:     p.totalXP,
			Level:       p.level,
			Streak:      p.streak,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalXP != entries[j].TotalXP {
			return entries[i].TotalXP > entries[j].TotalXP
		}
		// Tie-break by who reached the XP earlier (lower lastUpdated), then name.
		pi := b.participants[entries[i].UserID]
		pj := b.participants[entries[j].UserID]
		if pi != nil && pj != nil && !pi.lastUpdated.Equal(pj.lastUpdated) {
			return pi.lastUpdated.Before(pj.lastUpdated)
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})

	return domain.ProgressBoard{
		CohortID:  b.id,
		Entries:   entries,
		UpdatedAt: b.now(),
	}
}
