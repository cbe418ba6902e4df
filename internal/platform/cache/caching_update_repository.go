// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"competitor_backend/internal/feature/updates/domain/entity"
	"competitor_backend/internal/feature/updates/usecase"
)

// CachingUpdateRepository decorates an UpdateRepository with Redis caching of
// FindByOrganization results. Writes pass through and invalidate the organization's keys.
type CachingUpdateRepository struct {
	inner     usecase.UpdateRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.UpdateRepository = (*CachingUpdateRepository)(nil)

// NewCachingUpdateRepository decorates an UpdateRepository with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "updates".
// A nil rdb disables caching.
func NewCachingUpdateRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UpdateRepository, namespace string) *CachingUpdateRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "updates"
	}
	return &CachingUpdateRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// ExistingFingerprints always reads through; dedup must see the store, not a snapshot.
func (c *CachingUpdateRepository) ExistingFingerprints(ctx context.Context, organizationID uint, fingerprints []string) (map[string]struct{}, error) {
	return c.inner.ExistingFingerprints(ctx, organizationID, fingerprints)
}

// InsertIfAbsent inserts through and invalidates the organization's cached queries on a new row.
func (c *CachingUpdateRepository) InsertIfAbsent(ctx context.Context, u entity.Update) (bool, error) {
	inserted, err := c.inner.InsertIfAbsent(ctx, u)
	if err != nil || !inserted || c.rdb == nil {
		return inserted, err
	}
	_ = c.deleteByPattern(ctx, c.cacheKeyPrefix(u.OrganizationID)+"*") // Best effort
	return inserted, nil
}

// FindByOrganization checks the cache first then falls back to the database.
func (c *CachingUpdateRepository) FindByOrganization(ctx context.Context, organizationID uint, since time.Time) ([]entity.Update, error) {
	if c.rdb == nil {
		return c.inner.FindByOrganization(ctx, organizationID, since)
	}

	key := c.cacheKey(organizationID, since)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Update
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := c.inner.FindByOrganization(ctx, organizationID, since)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, TTLUntilNextHour(c.now(), c.ttl)).Err()
	}
	return out, nil
}

func (c *CachingUpdateRepository) cacheKey(organizationID uint, since time.Time) string {
	return fmt.Sprintf("%s%s", c.cacheKeyPrefix(organizationID), safe(since.UTC().Format(time.RFC3339)))
}

func (c *CachingUpdateRepository) cacheKeyPrefix(organizationID uint) string {
	return fmt.Sprintf("%s:org:%d:", c.namespace, organizationID)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingUpdateRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
