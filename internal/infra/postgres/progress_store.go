package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ecg-practice-service/internal/app"
	"ecg-practice-service/internal/domain"
	"github.com/uptrace/bun"
)

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     string    `bun:"user_id,notnull"`
	CaseID     string    `bun:"case_id,notnull"`
	Score      int       `bun:"score,notnull"`
	Difficulty string    `bun:"difficulty,notnull"`
	XPAwarded  int       `bun:"xp_awarded,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

type statsRow struct {
	bun.BaseModel `bun:"table:user_stats"`

	UserID           string     `bun:"user_id,pk"`
	TotalXP          int        `bun:"total_xp,notnull"`
	CurrentLevel     int        `bun:"current_level,notnull"`
	CurrentStreak    int        `bun:"current_streak,notnull"`
	LongestStreak    int        `bun:"longest_streak,notnull"`
	LastActivityDate *time.Time `bun:"last_activity_date"`
	TotalAttempts    int        `bun:"total_attempts,notnull"`
	TotalPerfect     int        `bun:"total_perfect,notnull"`
}

// ProgressStore persists attempts and user stats in Postgres through bun.
//
// ApplyAttempt runs inside one transaction and takes a row lock on the
// user's stats record before recomputing it, so two concurrent attempts by
// the same user serialize instead of losing an XP award to a lost update.
type ProgressStore struct {
	db *bun.DB
}

func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func (s *ProgressStore) ApplyAttempt(ctx context.Context, attempt domain.Attempt, update app.StatsUpdate) (domain.UserStats, error) {
	var next domain.UserStats
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := &attemptRow{
			UserID:     attempt.UserID,
			CaseID:     attempt.CaseID,
			Score:      attempt.Score,
			Difficulty: string(attempt.Difficulty),
			XPAwarded:  attempt.XPAwarded,
			CreatedAt:  attempt.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		// Make sure a lockable row exists before SELECT ... FOR UPDATE.
		seed := &statsRow{UserID: attempt.UserID, CurrentLevel: 1}
		if _, err := tx.NewInsert().Model(seed).On("CONFLICT (user_id) DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("seed stats: %w", err)
		}

		locked := new(statsRow)
		if err := tx.NewSelect().Model(locked).Where("user_id = ?", attempt.UserID).For("UPDATE").Scan(ctx); err != nil {
			return fmt.Errorf("lock stats: %w", err)
		}

		times, err := attemptTimesTx(ctx, tx, attempt.UserID)
		if err != nil {
			return err
		}

		next = update(statsFromRow(locked), times)
		updated := rowFromStats(next)
		if _, err := tx.NewUpdate().Model(updated).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update stats: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.UserStats{}, err
	}
	return next, nil
}

func (s *ProgressStore) AttemptTimes(ctx context.Context, userID string) ([]time.Time, error) {
	return attemptTimesTx(ctx, s.db, userID)
}

func attemptTimesTx(ctx context.Context, db bun.IDB, userID string) ([]time.Time, error) {
	var times []time.Time
	err := db.NewSelect().
		Model((*attemptRow)(nil)).
		Column("created_at").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx, &times)
	if err != nil {
		return nil, fmt.Errorf("list attempt times: %w", err)
	}
	return times, nil
}

func (s *ProgressStore) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	row := new(statsRow)
	err := s.db.NewSelect().Model(row).Where("user_id = ?", userID).Scan(ctx)
	if err == sql.ErrNoRows {
		return domain.UserStats{}, domain.ErrStatsNotFound
	}
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("load stats: %w", err)
	}
	return statsFromRow(row), nil
}

func (s *ProgressStore) SaveStats(ctx context.Context, stats domain.UserStats) error {
	row := rowFromStats(stats)
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("total_xp = EXCLUDED.total_xp").
		Set("current_level = EXCLUDED.current_level").
		Set("current_streak = EXCLUDED.current_streak").
		Set("longest_streak = EXCLUDED.longest_streak").
		Set("last_activity_date = EXCLUDED.last_activity_date").
		Set("total_attempts = EXCLUDED.total_attempts").
		Set("total_perfect = EXCLUDED.total_perfect").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save stats: %w", err)
	}
	return nil
}

func (s *ProgressStore) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.NewSelect().
		Model((*statsRow)(nil)).
		Column("user_id").
		Order("user_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}

func statsFromRow(row *statsRow) domain.UserStats {
	return domain.UserStats{
		UserID:           row.UserID,
		TotalXP:          row.TotalXP,
		CurrentLevel:     row.CurrentLevel,
		CurrentStreak:    row.CurrentStreak,
		LongestStreak:    row.LongestStreak,
		LastActivityDate: row.LastActivityDate,
		TotalAttempts:    row.TotalAttempts,
		TotalPerfect:     row.TotalPerfect,
	}
}

func rowFromStats(stats domain.UserStats) *statsRow {
	return &statsRow{
		UserID:           stats.UserID,
		TotalXP:          stats.TotalXP,
		CurrentLevel:     stats.CurrentLevel,
		CurrentStreak:    stats.CurrentStreak,
		LongestStreak:    stats.LongestStreak,
		LastActivityDate: stats.LastActivityDate,
		TotalAttempts:    stats.TotalAttempts,
		TotalPerfect:     stats.TotalPerfect,
	}
}
