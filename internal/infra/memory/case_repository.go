package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"ecg-practice-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CaseLoader fetches case content from a backing store (e.g., Postgres).
type CaseLoader interface {
	LoadCase(ctx context.Context, caseID string) (domain.Case, error)
}

// CaseRepository caches cases with TTL to avoid repeated DB hits.
type CaseRepository struct {
	loader CaseLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCase
}

type cachedCase struct {
	ecgCase   domain.Case
	expiresAt time.Time
}

func NewCaseRepository(loader CaseLoader, ttl time.Duration) *CaseRepository {
	return &CaseRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCase),
	}
}

func (r *CaseRepository) GetCase(ctx context.Context, caseID string) (domain.Case, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[caseID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.ecgCase, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(caseID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[caseID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.ecgCase, nil
		}
		r.mu.RUnlock()

		ecgCase, err := r.loader.LoadCase(ctx, caseID)
		if err != nil {
			return domain.Case{}, err
		}

		r.mu.Lock()
		r.cache[caseID] = cachedCase{
			ecgCase:   ecgCase,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return ecgCase, nil
	})
	if err != nil {
		return domain.Case{}, err
	}
	return result.(domain.Case), nil
}

// StaticCaseLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticCaseLoader struct {
	cases map[string]domain.Case
}

func NewStaticCaseLoader(cases map[string]domain.Case) *StaticCaseLoader {
	return &StaticCaseLoader{cases: cases}
}

func (l *StaticCaseLoader) LoadCase(_ context.Context, caseID string) (domain.Case, error) {
	if ecgCase, ok := l.cases[caseID]; ok {
		return ecgCase, nil
	}
	return domain.Case{}, domain.ErrCaseNotFound
}

func (r *CaseRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
