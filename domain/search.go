package domain

import (
	"context"
	"time"
)

// ItemDocument is the shape of an item pushed to the search index.
type ItemDocument struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link"`
	Author    string    `json:"author"`
	Username  string    `json:"username"`
	Publisher string    `json:"publisher"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchIndex is the external full-text index. The core never reads from it;
// it is only notified after item create/update/delete.
type SearchIndex interface {
	Sync(ctx context.Context, doc ItemDocument) error
	Delete(ctx context.Context, itemID int64) error
}
