package patterns

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/errors"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/logger"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/common/metrics"
	"github.com/DreamdeskdevOps/psytest-backend-sub002/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "scoring:pattern:"

func cacheKey(id string) string { return cacheKeyPrefix + id }

// cacheEntry keeps the configuration as text; encoding it as a
// json.RawMessage would compact the stored bytes.
type cacheEntry struct {
	Pattern       models.ScoringPattern `json:"pattern"`
	Configuration string                `json:"configuration"`
}

func encodeEntry(p *models.ScoringPattern) ([]byte, error) {
	e := cacheEntry{Pattern: *p, Configuration: string(p.Configuration)}
	e.Pattern.Configuration = nil
	return json.Marshal(e)
}

func decodeEntry(data []byte) (*models.ScoringPattern, error) {
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	p := e.Pattern
	p.Configuration = json.RawMessage(e.Configuration)
	return &p, nil
}

// CachedStore serves GetByID from Redis and drops the entry whenever the
// pattern's definition changes. Usage counters in a cached copy may lag the
// database by up to the TTL. Redis failures degrade to the wrapped store.
type CachedStore struct {
	next   Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		redis:  client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "pattern-cache"}),
	}
}

func (c *CachedStore) GetByID(ctx context.Context, id string) (*models.ScoringPattern, error) {
	val, err := c.redis.Get(ctx, cacheKey(id)).Result()
	switch {
	case err == nil:
		if p, decodeErr := decodeEntry([]byte(val)); decodeErr == nil {
			metrics.ScoringPatternCache.WithLabelValues("hit").Inc()
			return p, nil
		}
		c.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"patternId": id})
	case stderrors.Is(err, redis.Nil):
	default:
		c.warn("get", id, err)
	}
	metrics.ScoringPatternCache.WithLabelValues("miss").Inc()

	p, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := encodeEntry(p)
	if err == nil {
		if setErr := c.redis.Set(ctx, cacheKey(id), data, c.ttl).Err(); setErr != nil {
			c.warn("set", id, setErr)
		}
	}
	return p, nil
}

func (c *CachedStore) Create(ctx context.Context, p *models.ScoringPattern) (*models.ScoringPattern, error) {
	return c.next.Create(ctx, p)
}

func (c *CachedStore) ListByCategory(ctx context.Context, category models.PatternCategory) ([]*models.ScoringPattern, error) {
	return c.next.ListByCategory(ctx, category)
}

func (c *CachedStore) Update(ctx context.Context, id string, upd models.PatternUpdate, at time.Time) (*models.ScoringPattern, error) {
	p, err := c.next.Update(ctx, id, upd, at)
	c.invalidate(ctx, id)
	return p, err
}

func (c *CachedStore) ToggleActive(ctx context.Context, id string, at time.Time) (*models.ScoringPattern, error) {
	p, err := c.next.ToggleActive(ctx, id, at)
	c.invalidate(ctx, id)
	return p, err
}

func (c *CachedStore) Delete(ctx context.Context, id string) error {
	err := c.next.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *CachedStore) IncrementUsage(ctx context.Context, id string, at time.Time) error {
	return c.next.IncrementUsage(ctx, id, at)
}

func (c *CachedStore) invalidate(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.warn("del", id, err)
	}
}

// warn logs a cache failure. Cache failures never fail the caller; the store
// stays the source of truth.
func (c *CachedStore) warn(op, id string, err error) {
	cacheErr := errors.NewCacheFailedError(op, err)
	c.logger.Warn("pattern cache operation failed", map[string]interface{}{
		"patternId": id,
		"code":      cacheErr.Code,
		"error":     cacheErr.Details,
	})
}
