package model

import "time"

// ItemLike rows are the source of truth for ItemStats.Likes.
// The composite unique index makes duplicate likes a constraint violation
// instead of a race.
type ItemLike struct {
	ItemID    int64     `gorm:"column:item_id;not null;uniqueIndex:idx_item_user"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_item_user"`
	CreatedAt time.Time `gorm:"type:datetime"`
}

func (ItemLike) TableName() string {
	return "item_likes"
}

type CommentLike struct {
	CommentID int64     `gorm:"column:comment_id;not null;uniqueIndex:idx_comment_user"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_comment_user"`
	CreatedAt time.Time `gorm:"type:datetime"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
