package model

import (
	"time"

	"github.com/bereal1995/jotrends-server/domain"
)

type Bookmark struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_user_item"`
	ItemID    int64     `gorm:"column:item_id;not null;uniqueIndex:idx_user_item"`
	CreatedAt time.Time `gorm:"type:datetime"`
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

func (m *Bookmark) ToDomain() domain.Bookmark {
	return domain.Bookmark{
		ID:        m.ID,
		UserID:    m.UserID,
		ItemID:    m.ItemID,
		CreatedAt: m.CreatedAt,
	}
}
