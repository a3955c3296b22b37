package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"ecg-practice-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CaseLoader loads case JSONB from Postgres.
type CaseLoader struct {
	pool *pgxpool.Pool
}

func NewCaseLoader(pool *pgxpool.Pool) *CaseLoader {
	return &CaseLoader{pool: pool}
}

func (l *CaseLoader) LoadCase(ctx context.Context, caseID string) (domain.Case, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM cases WHERE id=$1`, caseID).Scan(&raw)
	if err != nil {
		return domain.Case{}, fmt.Errorf("load case: %w", err)
	}
	var ecgCase domain.Case
	if err := json.Unmarshal(raw, &ecgCase); err != nil {
		return domain.Case{}, fmt.Errorf("unmarshal case: %w", err)
	}
	return ecgCase, nil
}
