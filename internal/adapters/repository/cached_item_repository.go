package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/comitanigiacomo/kanso-tally/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.ItemStore = (*CachedItemRepository)(nil)

const itemListTTL = 30 * time.Minute

// CachedItemRepository caches each user's item list in Redis. Every write
// drops the cached list; reads fall through to next on any cache trouble.
type CachedItemRepository struct {
	next   domain.ItemStore
	cache  *redis.Client
	logger *slog.Logger
}

func NewCachedItemRepository(next domain.ItemStore, cache *redis.Client, logger *slog.Logger) *CachedItemRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedItemRepository{
		next:   next,
		cache:  cache,
		logger: logger.With("component", "item_cache"),
	}
}

func itemsCacheKey(userID string) string {
	return fmt.Sprintf("items:%s", userID)
}

func (r *CachedItemRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, itemsCacheKey(userID)).Err(); err != nil {
		r.logger.Warn("cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (r *CachedItemRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TrackedItem, error) {
	key := itemsCacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	switch {
	case err == nil:
		var items []*domain.TrackedItem
		if err := json.Unmarshal([]byte(val), &items); err == nil {
			return items, nil
		}
		r.logger.Warn("corrupted cache entry, dropping it", "user_id", userID)
		r.cache.Del(ctx, key)
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("cache read failed", "user_id", userID, "error", err)
	}

	items, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := r.cache.Set(ctx, key, data, itemListTTL).Err(); err != nil {
			r.logger.Warn("cache write failed", "user_id", userID, "error", err)
		}
	}

	return items, nil
}

func (r *CachedItemRepository) GetByID(ctx context.Context, id string) (*domain.TrackedItem, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedItemRepository) Create(ctx context.Context, item *domain.TrackedItem) error {
	if err := r.next.Create(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, item.UserID)
	return nil
}

func (r *CachedItemRepository) Update(ctx context.Context, item *domain.TrackedItem) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, item.UserID)
	return nil
}

func (r *CachedItemRepository) Delete(ctx context.Context, id string) error {
	item, err := r.next.GetByID(ctx, id)
	if err == nil && item != nil {
		defer r.invalidate(ctx, item.UserID)
	}
	return r.next.Delete(ctx, id)
}

func (r *CachedItemRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	item, err := r.next.GetByID(ctx, id)
	if err == nil && item != nil {
		defer r.invalidate(ctx, item.UserID)
	}
	return r.next.UpdateStreaks(ctx, id, current, best)
}
