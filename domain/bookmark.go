package domain

import (
	"context"
	"time"
)

// Bookmark marks an item saved by a user, unique per (UserID, ItemID).
type Bookmark struct {
	ID        int64
	UserID    int64
	ItemID    int64
	CreatedAt time.Time

	Item Item
}

// BookmarkPage is one keyset page of a user's bookmarks, newest first.
type BookmarkPage struct {
	List        []Bookmark
	TotalCount  int64
	EndCursor   int64
	HasNextPage bool
}

type BookmarkRepository interface {
	// Store returns ErrConflict when the item is already bookmarked.
	Store(ctx context.Context, b *Bookmark) error

	// Delete returns ErrNotFound when the bookmark doesn't exist.
	Delete(ctx context.Context, userID, itemID int64) error

	// Fetch lists a user's bookmarks by id descending, strictly below the
	// cursor when it is non-zero. Items come filled.
	Fetch(ctx context.Context, userID, cursor, limit int64) ([]Bookmark, error)

	HasAfter(ctx context.Context, userID, cursor int64) (bool, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type BookmarkUsecase interface {
	Create(ctx context.Context, userID, itemID int64) (Bookmark, error)
	Delete(ctx context.Context, userID, itemID int64) error
	List(ctx context.Context, userID, cursor, limit int64) (BookmarkPage, error)
}
