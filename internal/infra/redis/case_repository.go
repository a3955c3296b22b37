package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"ecg-practice-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CaseLoader fetches case content from a backing store (e.g., Postgres).
type CaseLoader interface {
	LoadCase(ctx context.Context, caseID string) (domain.Case, error)
}

// CaseRepository caches whole cases in Redis as JSON and falls back to a
// loader on cache miss. A case is always read in full (the answer key and
// the difficulty travel together), so a single value per case beats a
// per-field hash.
// Cases are stored as: SET case:{caseID} {json}
type CaseRepository struct {
	client *redis.Client
	loader CaseLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCaseRepository(client *redis.Client, loader CaseLoader, ttl time.Duration) *CaseRepository {
	return &CaseRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CaseRepository) GetCase(ctx context.Context, caseID string) (domain.Case, error) {
	key := r.caseKey(caseID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
		if ecgCase, ok := decodeCase(raw); ok {
			return ecgCase, nil
		}
	}

	result, err, _ := r.sf.Do(caseID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil && len(raw) > 0 {
			if ecgCase, ok := decodeCase(raw); ok {
				return ecgCase, nil
			}
		}

		ecgCase, err := r.loader.LoadCase(ctx, caseID)
		if err != nil {
			return domain.Case{}, err
		}

		if raw, err := json.Marshal(ecgCase); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return ecgCase, nil
	})
	if err != nil {
		return domain.Case{}, err
	}
	return result.(domain.Case), nil
}

func (r *CaseRepository) caseKey(caseID string) string {
	return "case:" + caseID
}

func decodeCase(raw []byte) (domain.Case, bool) {
	var ecgCase domain.Case
	if err := json.Unmarshal(raw, &ecgCase); err != nil {
		return domain.Case{}, false
	}
	return ecgCase, true
}

func (r *CaseRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
