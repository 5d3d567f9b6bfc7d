package domain

import (
	"context"
	"time"
)

// TrendingScoreFloor is the minimum ranking score an item needs to be part
// of the trending feed. Items below it are excluded from the candidate set
// and from totalCount.
const TrendingScoreFloor = 0.001

// Item is representing a shared link submitted by a user
type Item struct {
	ID        int64     // Unique identifier, monotonically increasing
	Title     string    // Item title
	Body      string    // Short description written by the submitter
	Link      string    // Submitted URL
	Author    string    // Original author of the linked page, may be empty
	CreatedAt time.Time // Creation timestamp
	UpdatedAt time.Time // Last update timestamp

	User      User      // Submitting user
	Publisher Publisher // Site the link points at
	Stats     ItemStats // Denormalized counters

	// Flags for the requesting user, filled per request
	IsLiked      bool
	IsBookmarked bool
}

// ItemStats holds the denormalized counters of an item. Exactly one row per
// item; the values are always recomputed from like/comment rows and the
// ranking formula, never adjusted by deltas.
type ItemStats struct {
	ItemID        int64
	Likes         int64
	CommentsCount int64
	Score         float64
	UpdatedAt     time.Time
}

// Publisher identifies the site a link points at, keyed by its domain.
type Publisher struct {
	ID      int64
	Name    string
	Domain  string
	Favicon string
}

// ItemLike is representing a like record on an item.
// (ItemID, UserID) is unique; the rows are the source of truth for counters.
type ItemLike struct {
	ItemID    int64
	UserID    int64
	CreatedAt time.Time
}

// ListMode selects the feed ordering strategy.
type ListMode string

const (
	ModeRecent   ListMode = "recent"
	ModeTrending ListMode = "trending"
	ModePast     ListMode = "past"
)

// Keyset cursors, one shape per list mode so the ordering semantics stay
// explicit. A zero ID means "first page". Bounded reports whether the
// score/likes bound is usable; it is false when the item the public cursor
// pointed at no longer exists, in which case only the id bound applies.

type RecentCursor struct {
	ID int64
}

type TrendingCursor struct {
	ID      int64
	Score   float64
	Bounded bool
}

type PastCursor struct {
	ID      int64
	Likes   int64
	Bounded bool
}

// ItemListOptions carries the parameters of a feed page request.
type ItemListOptions struct {
	Mode      ListMode
	Cursor    int64 // last-seen item id, 0 for the first page
	Limit     int64
	StartDate string // past mode only, YYYY-MM-DD
	EndDate   string // past mode only, YYYY-MM-DD
	UserID    int64  // 0 for anonymous callers
}

// ItemPage is one page of a feed plus the information needed to request the
// next one.
type ItemPage struct {
	List        []Item
	TotalCount  int64
	EndCursor   int64
	HasNextPage bool
}

// ItemRepository defines the contract for item data persistence
type ItemRepository interface {
	// Store creates a new item together with its stats row.
	// Backfills ID and timestamps on success.
	Store(ctx context.Context, it *Item) error

	// GetByID retrieves a single item with user, publisher and stats.
	// Returns ErrNotFound if the item doesn't exist.
	GetByID(ctx context.Context, id int64) (Item, error)

	// GetByIDs retrieves items by given IDs. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []int64) ([]Item, error)

	// Update persists title/body edits.
	Update(ctx context.Context, it *Item) error

	// Delete removes an item and its stats row.
	// Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id int64) error

	// GetOrCreatePublisher resolves a publisher by domain, creating it on
	// first sight. Backfills the ID either way.
	GetOrCreatePublisher(ctx context.Context, p *Publisher) error

	CountAll(ctx context.Context) (int64, error)
	CountTrending(ctx context.Context, minScore float64) (int64, error)
	CountInRange(ctx context.Context, start, end time.Time) (int64, error)

	// FetchRecent lists items by id descending, strictly below the cursor.
	FetchRecent(ctx context.Context, cursor RecentCursor, limit int64) ([]Item, error)

	// FetchTrending lists items with score >= minScore ordered by
	// (score desc, id desc), strictly beyond the cursor boundary.
	FetchTrending(ctx context.Context, cursor TrendingCursor, minScore float64, limit int64) ([]Item, error)

	// FetchPast lists items created within [start, end] ordered by
	// (likes desc, id desc), strictly beyond the cursor boundary.
	FetchPast(ctx context.Context, cursor PastCursor, start, end time.Time, limit int64) ([]Item, error)

	// HasRecentAfter/HasTrendingAfter/HasPastAfter are cheap existence
	// probes for hasNextPage: does any row lie strictly beyond the cursor.
	HasRecentAfter(ctx context.Context, cursor RecentCursor) (bool, error)
	HasTrendingAfter(ctx context.Context, cursor TrendingCursor, minScore float64) (bool, error)
	HasPastAfter(ctx context.Context, cursor PastCursor, start, end time.Time) (bool, error)

	// GetStats returns the stats row of an item.
	// Returns ErrNotFound if the item doesn't exist.
	GetStats(ctx context.Context, itemID int64) (ItemStats, error)
	UpdateLikes(ctx context.Context, itemID int64, likes int64) error
	UpdateScore(ctx context.Context, itemID int64, score float64) error
	UpdateCommentsCount(ctx context.Context, itemID int64, count int64) error

	// AddLikeRecord creates a like record.
	// Returns ErrConflict when the pair already exists.
	AddLikeRecord(ctx context.Context, itemID, userID int64) error

	// RemoveLikeRecord deletes a like record.
	// Returns ErrNotFound when the pair doesn't exist.
	RemoveLikeRecord(ctx context.Context, itemID, userID int64) error

	// CountLikes counts live like rows for an item.
	CountLikes(ctx context.Context, itemID int64) (int64, error)

	// LikedMap reports which of the given items the user liked.
	LikedMap(ctx context.Context, userID int64, itemIDs []int64) (map[int64]bool, error)

	// BookmarkedMap reports which of the given items the user bookmarked.
	BookmarkedMap(ctx context.Context, userID int64, itemIDs []int64) (map[int64]bool, error)
}

type ItemCache interface {
	GetItem(ctx context.Context, id int64) (Item, error)
	SetItem(ctx context.Context, it *Item) error
	DeleteItem(ctx context.Context, id int64) error
}

// CreateItemInput is the payload for submitting a new item.
type CreateItemInput struct {
	Title string
	Body  string
	Link  string
}

type ItemUsecase interface {
	Create(ctx context.Context, userID int64, in CreateItemInput) (Item, error)
	Get(ctx context.Context, id, userID int64) (Item, error)
	List(ctx context.Context, opts ItemListOptions) (ItemPage, error)
	Update(ctx context.Context, itemID, userID int64, title, body string) (Item, error)
	Delete(ctx context.Context, itemID, userID int64) error
	Like(ctx context.Context, itemID, userID int64) (ItemStats, error)
	Unlike(ctx context.Context, itemID, userID int64) (ItemStats, error)
}
