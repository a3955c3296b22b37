package app

import (
	"context"
	"time"

	"ecg-practice-service/internal/domain"
	"ecg-practice-service/internal/gamification"
	"ecg-practice-service/internal/scoring"
)

// BoardRepository abstracts how cohort progress boards are stored
// (in-memory, Redis, etc).
type BoardRepository interface {
	GetOrCreate(cohortID string) *Board
	Get(cohortID string) (*Board, bool)
	DeleteIfEmpty(cohortID string)
}

// CaseRepository loads case content (from cache/backing store).
type CaseRepository interface {
	GetCase(ctx context.Context, caseID string) (domain.Case, error)
}

// StatsUpdate computes the next stats record from the previous one and the
// full attempt-time history including the attempt being applied. The store
// runs it inside its atomicity boundary; the function itself must stay pure.
type StatsUpdate func(prev domain.UserStats, attemptTimes []time.Time) domain.UserStats

// ProgressStore persists attempts and per-user stats.
//
// ApplyAttempt must run the read-compute-write as a single atomic unit keyed
// by user id (transaction with a row lock, or an equivalent), so concurrent
// attempts by the same user never lose an XP award to a lost update.
type ProgressStore interface {
	ApplyAttempt(ctx context.Context, attempt domain.Attempt, update StatsUpdate) (domain.UserStats, error)
	AttemptTimes(ctx context.Context, userID string) ([]time.Time, error)
	Stats(ctx context.Context, userID string) (domain.UserStats, error)
	SaveStats(ctx context.Context, stats domain.UserStats) error
	UserIDs(ctx context.Context) ([]string, error)
}

// SubmissionResult bundles everything a client needs after one attempt.
type SubmissionResult struct {
	Result    domain.ScoringResult `json:"result"`
	XPAwarded int                  `json:"xpAwarded"`
	Stats     domain.UserStats     `json:"stats"`
	Board     domain.ProgressBoard `json:"board"`
}

// AttemptService contains the practice use cases: join a cohort, submit a
// report for scoring, preview a score, subscribe to board updates, and
// reconcile stored stats against recomputed values.
//
// Every entry point goes through the same scoring and gamification
// functions; no caller re-derives the formulas.
type AttemptService struct {
	boards BoardRepository
	cases  CaseRepository
	store  ProgressStore
	cfg    gamification.Config
	now    func() time.Time
}

func NewAttemptService(boards BoardRepository, cases CaseRepository, store ProgressStore, cfg gamification.Config) *AttemptService {
	return &AttemptService{boards: boards, cases: cases, store: store, cfg: cfg, now: time.Now}
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(boards BoardRepository, cases CaseRepository, store ProgressStore, cfg gamification.Config, now func() time.Time) *AttemptService {
	s := NewAttemptService(boards, cases, store, cfg)
	s.now = now
	return s
}

// Join registers or refreshes a participant on a cohort board, seeding the
// entry from any stats the user already has.
func (s *AttemptService) Join(ctx context.Context, cohortID, userID, displayName string) (domain.ProgressBoard, error) {
	stats, err := s.store.Stats(ctx, userID)
	if err != nil && err != domain.ErrStatsNotFound {
		return domain.ProgressBoard{}, err
	}

	board := s.boards.GetOrCreate(cohortID)
	return board.join(userID, displayName, stats), nil
}

// Submit scores a report, awards XP, persists the attempt and updated stats
// atomically, and pushes the new standings to the cohort board.
func (s *AttemptService) Submit(ctx context.Context, cohortID, userID, caseID string, report domain.Report) (SubmissionResult, error) {
	board, ok := s.boards.Get(cohortID)
	if !ok {
		return SubmissionResult{}, domain.ErrBoardNotFound
	}
	if !board.hasParticipant(userID) {
		return SubmissionResult{}, domain.ErrParticipantNotFound
	}

	ecgCase, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return SubmissionResult{}, err
	}

	result, err := scoring.Score(report, ecgCase.Official)
	if err != nil {
		return SubmissionResult{}, err
	}
	xp, err := gamification.AttemptXP(result.Score, ecgCase.Difficulty, s.cfg)
	if err != nil {
		return SubmissionResult{}, err
	}

	submittedAt := s.now()
	attempt := domain.Attempt{
		UserID:     userID,
		CaseID:     caseID,
		Score:      result.Score,
		Difficulty: ecgCase.Difficulty,
		XPAwarded:  xp,
		CreatedAt:  submittedAt,
	}

	stats, err := s.store.ApplyAttempt(ctx, attempt, s.statsUpdate(attempt, submittedAt))
	if err != nil {
		return SubmissionResult{}, err
	}

	lb := board.applyProgress(userID, stats)
	return SubmissionResult{Result: result, XPAwarded: xp, Stats: stats, Board: lb}, nil
}

// Preview scores a report against a case without persisting anything.
// Used by the dry-run endpoint; it shares the exact computation path with
// Submit.
func (s *AttemptService) Preview(ctx context.Context, caseID string, report domain.Report) (domain.ScoringResult, int, error) {
	ecgCase, err := s.cases.GetCase(ctx, caseID)
	if err != nil {
		return domain.ScoringResult{}, 0, err
	}
	result, err := scoring.Score(report, ecgCase.Official)
	if err != nil {
		return domain.ScoringResult{}, 0, err
	}
	xp, err := gamification.AttemptXP(result.Score, ecgCase.Difficulty, s.cfg)
	if err != nil {
		return domain.ScoringResult{}, 0, err
	}
	return result, xp, nil
}

// statsUpdate builds the pure stats transition applied by the store.
func (s *AttemptService) statsUpdate(attempt domain.Attempt, submittedAt time.Time) StatsUpdate {
	cfg := s.cfg
	return func(prev domain.UserStats, attemptTimes []time.Time) domain.UserStats {
		next := prev
		next.UserID = attempt.UserID
		next.TotalXP = prev.TotalXP + attempt.XPAwarded
		next.CurrentLevel = gamification.LevelFromXP(next.TotalXP, cfg)
		next.TotalAttempts = prev.TotalAttempts + 1
		if attempt.Score == 100 {
			next.TotalPerfect = prev.TotalPerfect + 1
		}
		streak := gamification.RecalculateStreak(attemptTimes, submittedAt)
		next.CurrentStreak = streak.CurrentStreak
		next.LongestStreak = streak.LongestStreak
		activity := submittedAt
		next.LastActivityDate = &activity
		return next
	}
}

// Subscribe returns a channel that receives board updates for a cohort.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AttemptService) Subscribe(_ context.Context, cohortID string) (<-chan domain.ProgressBoard, func(), error) {
	board, ok := s.boards.Get(cohortID)
	if !ok {
		return nil, nil, domain.ErrBoardNotFound
	}
	ch, cancel := board.subscribe()
	return ch, cancel, nil
}

// Leave removes a participant from the board and drops the board if empty.
func (s *AttemptService) Leave(_ context.Context, cohortID, userID string) {
	board, ok := s.boards.Get(cohortID)
	if !ok {
		return
	}
	board.leave(userID)
	if board.isEmpty() {
		s.boards.DeleteIfEmpty(cohortID)
	}
}

// Reconcile recomputes level and streaks for every user from stored history
// and corrects any record that drifted from the derived values. Safe to run
// repeatedly; it only writes when stored and recomputed values differ.
func (s *AttemptService) Reconcile(ctx context.Context) ([]domain.ReconciliationFix, error) {
	userIDs, err := s.store.UserIDs(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var fixes []domain.ReconciliationFix
	for _, userID := range userIDs {
		stats, err := s.store.Stats(ctx, userID)
		if err != nil {
			return fixes, err
		}
		attemptTimes, err := s.store.AttemptTimes(ctx, userID)
		if err != nil {
			return fixes, err
		}

		level := gamification.LevelFromXP(stats.TotalXP, s.cfg)
		streak := gamification.RecalculateStreak(attemptTimes, now)
		if level == stats.CurrentLevel && streak.CurrentStreak == stats.CurrentStreak && streak.LongestStreak == stats.LongestStreak {
			continue
		}

		fixes = append(fixes, domain.ReconciliationFix{
			UserID:         userID,
			StoredLevel:    stats.CurrentLevel,
			ComputedLevel:  level,
			StoredStreak:   stats.CurrentStreak,
			ComputedStreak: streak.CurrentStreak,
		})

		stats.CurrentLevel = level
		stats.CurrentStreak = streak.CurrentStreak
		stats.LongestStreak = streak.LongestStreak
		if err := s.store.SaveStats(ctx, stats); err != nil {
			return fixes, err
		}
	}
	return fixes, nil
}
