package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bereal1995/jotrends-server/domain"
)

// dbStub backs the coordination layer with a single mutable item.
type dbStub struct {
	domain.ItemRepository

	mu   sync.Mutex
	item domain.Item
	gone bool
}

func (s *dbStub) GetByID(_ context.Context, id int64) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone || id != s.item.ID {
		return domain.Item{}, domain.ErrNotFound
	}
	return s.item, nil
}

func (s *dbStub) Update(_ context.Context, it *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.item.Title = it.Title
	s.item.Body = it.Body
	return nil
}

func (s *dbStub) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gone || id != s.item.ID {
		return domain.ErrNotFound
	}
	s.gone = true
	return nil
}

// mapCache is an in-memory domain.ItemCache.
type mapCache struct {
	mu    sync.Mutex
	items map[int64]domain.Item
}

func newMapCache() *mapCache {
	return &mapCache{items: map[int64]domain.Item{}}
}

func (c *mapCache) GetItem(_ context.Context, id int64) (domain.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[id]
	if !ok {
		return domain.Item{}, domain.ErrCacheMiss
	}
	return it, nil
}

func (c *mapCache) SetItem(_ context.Context, it *domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[it.ID] = *it
	return nil
}

func (c *mapCache) DeleteItem(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

func (c *mapCache) holds(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[id]
	return ok
}

type singleUserRepo struct {
	domain.UserRepository
	user domain.User
}

func (s *singleUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	if id != s.user.ID {
		return domain.User{}, domain.ErrNotFound
	}
	return s.user, nil
}

func newCoordinated() (*itemRepository, *dbStub, *mapCache) {
	db := &dbStub{item: domain.Item{
		ID:    1,
		Title: "old title",
		Body:  "old body",
		User:  domain.User{ID: 9},
	}}
	cache := newMapCache()
	users := &singleUserRepo{user: domain.User{ID: 9, Username: "someone"}}
	return NewItemRepository(db, cache, users), db, cache
}

// A read issued right after Update, in the same request, must see the new
// content even when the cache still held the pre-edit entry when the write
// landed.
func TestUpdateThenReadReturnsFreshContent(t *testing.T) {
	repo, db, cache := newCoordinated()

	stale := db.item
	require.NoError(t, cache.SetItem(context.Background(), &stale))

	edited := domain.Item{ID: 1, Title: "new title", Body: "new body"}
	require.NoError(t, repo.Update(context.Background(), &edited))

	assert.False(t, cache.holds(1), "the entry must be dropped before Update returns")

	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "new body", got.Body)
}

func TestDeleteDropsCacheEntryBeforeReturning(t *testing.T) {
	repo, db, cache := newCoordinated()

	stale := db.item
	require.NoError(t, cache.SetItem(context.Background(), &stale))

	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.False(t, cache.holds(1), "the entry must be dropped before Delete returns")

	_, err := repo.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetByIDRebuildsAndCaches(t *testing.T) {
	repo, _, cache := newCoordinated()

	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "old title", got.Title)
	assert.Equal(t, "someone", got.User.Username, "the author is filled on rebuild")

	// the write-back runs off the request path
	assert.Eventually(t, func() bool {
		return cache.holds(1)
	}, time.Second, 10*time.Millisecond)
}
