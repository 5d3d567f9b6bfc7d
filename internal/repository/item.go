// Package repository hosts the coordination layer between the database
// repositories and the redis cache.
package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/bereal1995/jotrends-server/domain"
)

// itemRepository 协调层，协调缓存和数据库. Reads of a single item go through
// the cache with a singleflight rebuild; every write that can change what the
// cached entry shows invalidates it. Scans and counts always hit the
// database: feed pages are cursor-parameterized and carry per-user flags, so
// a shared cache would only ever serve the anonymous first page.
type itemRepository struct {
	db           domain.ItemRepository
	cache        domain.ItemCache
	userRepo     domain.UserRepository
	rebuildGroup singleflight.Group
}

var _ domain.ItemRepository = (*itemRepository)(nil)

// NewItemRepository 创建协调层repository
func NewItemRepository(db domain.ItemRepository, cache domain.ItemCache, userRepo domain.UserRepository) *itemRepository {
	return &itemRepository{
		db:       db,
		cache:    cache,
		userRepo: userRepo,
	}
}

func (r *itemRepository) GetByID(ctx context.Context, id int64) (domain.Item, error) {
	item, err := r.cache.GetItem(ctx, id)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		logrus.Warnf("item cache get error: %v", err)
	}

	// 缓存未命中，使用singleflight避免缓存击穿
	key := "item:" + strconv.FormatInt(id, 10)
	result, err, _ := r.rebuildGroup.Do(key, func() (interface{}, error) {
		it, err := r.db.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		user, err := r.userRepo.GetByID(ctx, it.User.ID)
		if err != nil {
			return nil, err
		}
		it.User = user

		go func(it domain.Item) {
			if err := r.cache.SetItem(context.Background(), &it); err != nil {
				logrus.Warnf("failed to set item cache: %v", err)
			}
		}(it)

		return it, nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	return result.(domain.Item), nil
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	if err := r.db.Update(ctx, it); err != nil {
		return err
	}
	// title/body edits are read back within the same request, so the entry
	// must be gone before this returns
	if err := r.cache.DeleteItem(ctx, it.ID); err != nil {
		logrus.Warnf("failed to invalidate item cache for %d: %v", it.ID, err)
	}
	return nil
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.Delete(ctx, id); err != nil {
		return err
	}
	if err := r.cache.DeleteItem(ctx, id); err != nil {
		logrus.Warnf("failed to invalidate item cache for %d: %v", id, err)
	}
	return nil
}

func (r *itemRepository) UpdateLikes(ctx context.Context, itemID int64, likes int64) error {
	if err := r.db.UpdateLikes(ctx, itemID, likes); err != nil {
		return err
	}
	r.invalidate(itemID)
	return nil
}

func (r *itemRepository) UpdateScore(ctx context.Context, itemID int64, score float64) error {
	if err := r.db.UpdateScore(ctx, itemID, score); err != nil {
		return err
	}
	r.invalidate(itemID)
	return nil
}

func (r *itemRepository) UpdateCommentsCount(ctx context.Context, itemID int64, count int64) error {
	if err := r.db.UpdateCommentsCount(ctx, itemID, count); err != nil {
		return err
	}
	r.invalidate(itemID)
	return nil
}

// invalidate drops the cached entry asynchronously. Only the counter writes
// use it: a stale read between the write and the delete then shows at worst
// the previous counter values, which the recalc worker refreshes anyway.
// Content writes (Update/Delete) invalidate synchronously instead.
func (r *itemRepository) invalidate(id int64) {
	go func(id int64) {
		if err := r.cache.DeleteItem(context.Background(), id); err != nil {
			logrus.Warnf("failed to invalidate item cache for %d: %v", id, err)
		}
	}(id)
}

// The rest passes straight through to the database layer.

func (r *itemRepository) Store(ctx context.Context, it *domain.Item) error {
	return r.db.Store(ctx, it)
}

func (r *itemRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	return r.db.GetByIDs(ctx, ids)
}

func (r *itemRepository) GetOrCreatePublisher(ctx context.Context, p *domain.Publisher) error {
	return r.db.GetOrCreatePublisher(ctx, p)
}

func (r *itemRepository) CountAll(ctx context.Context) (int64, error) {
	return r.db.CountAll(ctx)
}

func (r *itemRepository) CountTrending(ctx context.Context, minScore float64) (int64, error) {
	return r.db.CountTrending(ctx, minScore)
}

func (r *itemRepository) CountInRange(ctx context.Context, start, end time.Time) (int64, error) {
	return r.db.CountInRange(ctx, start, end)
}

func (r *itemRepository) FetchRecent(ctx context.Context, cursor domain.RecentCursor, limit int64) ([]domain.Item, error) {
	return r.db.FetchRecent(ctx, cursor, limit)
}

func (r *itemRepository) FetchTrending(ctx context.Context, cursor domain.TrendingCursor, minScore float64, limit int64) ([]domain.Item, error) {
	return r.db.FetchTrending(ctx, cursor, minScore, limit)
}

func (r *itemRepository) FetchPast(ctx context.Context, cursor domain.PastCursor, start, end time.Time, limit int64) ([]domain.Item, error) {
	return r.db.FetchPast(ctx, cursor, start, end, limit)
}

func (r *itemRepository) HasRecentAfter(ctx context.Context, cursor domain.RecentCursor) (bool, error) {
	return r.db.HasRecentAfter(ctx, cursor)
}

func (r *itemRepository) HasTrendingAfter(ctx context.Context, cursor domain.TrendingCursor, minScore float64) (bool, error) {
	return r.db.HasTrendingAfter(ctx, cursor, minScore)
}

func (r *itemRepository) HasPastAfter(ctx context.Context, cursor domain.PastCursor, start, end time.Time) (bool, error) {
	return r.db.HasPastAfter(ctx, cursor, start, end)
}

func (r *itemRepository) GetStats(ctx context.Context, itemID int64) (domain.ItemStats, error) {
	return r.db.GetStats(ctx, itemID)
}

func (r *itemRepository) AddLikeRecord(ctx context.Context, itemID, userID int64) error {
	return r.db.AddLikeRecord(ctx, itemID, userID)
}

func (r *itemRepository) RemoveLikeRecord(ctx context.Context, itemID, userID int64) error {
	return r.db.RemoveLikeRecord(ctx, itemID, userID)
}

func (r *itemRepository) CountLikes(ctx context.Context, itemID int64) (int64, error) {
	return r.db.CountLikes(ctx, itemID)
}

func (r *itemRepository) LikedMap(ctx context.Context, userID int64, itemIDs []int64) (map[int64]bool, error) {
	return r.db.LikedMap(ctx, userID, itemIDs)
}

func (r *itemRepository) BookmarkedMap(ctx context.Context, userID int64, itemIDs []int64) (map[int64]bool, error) {
	return r.db.BookmarkedMap(ctx, userID, itemIDs)
}
