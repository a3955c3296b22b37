package redis

import (
	"context"
	"testing"
	"time"

	"ecg-practice-service/internal/domain"
	"ecg-practice-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCaseRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CaseLoader: memory.NewStaticCaseLoader(map[string]domain.Case{
			"case-1": sampleCase(),
		}),
	}
	repo := NewCaseRepository(client, loader, time.Minute)

	got, err := repo.GetCase(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("get case: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if got.Difficulty != domain.DifficultyMedium || len(got.Official.Rhythm) != 1 {
		t.Fatalf("unexpected case %+v", got)
	}
	if !mr.Exists("case:case-1") {
		t.Fatalf("expected case cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	_, _ = repo.GetCase(context.Background(), "case-1")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.CaseLoader
	calls int
}

func (l *countingLoader) LoadCase(ctx context.Context, caseID string) (domain.Case, error) {
	l.calls++
	return l.CaseLoader.LoadCase(ctx, caseID)
}

func sampleCase() domain.Case {
	return domain.Case{
		ID:         "case-1",
		Title:      "Normal sinus rhythm",
		Difficulty: domain.DifficultyMedium,
		Official: domain.Report{
			Rhythm:      []string{"sinus"},
			HeartRate:   72,
			Axis:        domain.AxisNormal,
			PRInterval:  domain.IntervalNormal,
			QRSDuration: domain.IntervalNormal,
			QTInterval:  domain.IntervalNormal,
			Findings:    []string{},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
