package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bereal1995/jotrends-server/domain"
)

const (
	itemKeyPrefix = "item:"
	itemTTL       = 10 * time.Minute
)

// itemCache keeps fully assembled items (user, publisher, stats) in redis.
// Per-user like/bookmark flags are never cached; they are stamped on after
// the item is loaded.
type itemCache struct {
	client *redis.Client
}

var _ domain.ItemCache = (*itemCache)(nil)

func NewItemCache(client *redis.Client) *itemCache {
	return &itemCache{client: client}
}

func itemKey(id int64) string {
	return fmt.Sprintf("%s%d", itemKeyPrefix, id)
}

func (c *itemCache) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	payload, err := c.client.Get(ctx, itemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Item{}, domain.ErrCacheMiss
		}
		return domain.Item{}, err
	}

	var item cachedItem
	if err := json.Unmarshal(payload, &item); err != nil {
		// poisoned entry, drop it and fall through to the database
		_ = c.client.Del(ctx, itemKey(id)).Err()
		return domain.Item{}, domain.ErrCacheMiss
	}
	return item.toDomain(), nil
}

func (c *itemCache) SetItem(ctx context.Context, it *domain.Item) error {
	payload, err := json.Marshal(newCachedItem(it))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itemKey(it.ID), payload, itemTTL).Err()
}

func (c *itemCache) DeleteItem(ctx context.Context, id int64) error {
	return c.client.Del(ctx, itemKey(id)).Err()
}

// cachedItem is the redis wire shape; kept separate from domain.Item so the
// per-user flags can never leak into a shared entry.
type cachedItem struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Link          string    `json:"link"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	PublisherID   int64     `json:"publisher_id"`
	Publisher     string    `json:"publisher"`
	PubDomain     string    `json:"pub_domain"`
	PubFavicon    string    `json:"pub_favicon"`
	Likes         int64     `json:"likes"`
	CommentsCount int64     `json:"comments_count"`
	Score         float64   `json:"score"`
}

func newCachedItem(it *domain.Item) cachedItem {
	return cachedItem{
		ID:            it.ID,
		Title:         it.Title,
		Body:          it.Body,
		Link:          it.Link,
		Author:        it.Author,
		CreatedAt:     it.CreatedAt,
		UpdatedAt:     it.UpdatedAt,
		UserID:        it.User.ID,
		Username:      it.User.Username,
		PublisherID:   it.Publisher.ID,
		Publisher:     it.Publisher.Name,
		PubDomain:     it.Publisher.Domain,
		PubFavicon:    it.Publisher.Favicon,
		Likes:         it.Stats.Likes,
		CommentsCount: it.Stats.CommentsCount,
		Score:         it.Stats.Score,
	}
}

func (c cachedItem) toDomain() domain.Item {
	return domain.Item{
		ID:        c.ID,
		Title:     c.Title,
		Body:      c.Body,
		Link:      c.Link,
		Author:    c.Author,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		User: domain.User{
			ID:       c.UserID,
			Username: c.Username,
		},
		Publisher: domain.Publisher{
			ID:      c.PublisherID,
			Name:    c.Publisher,
			Domain:  c.PubDomain,
			Favicon: c.PubFavicon,
		},
		Stats: domain.ItemStats{
			ItemID:        c.ID,
			Likes:         c.Likes,
			CommentsCount: c.CommentsCount,
			Score:         c.Score,
		},
	}
}
