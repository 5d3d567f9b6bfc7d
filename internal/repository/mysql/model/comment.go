package model

import (
	"time"

	"github.com/bereal1995/jotrends-server/domain"
)

type Comment struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	ItemID           int64      `gorm:"column:item_id;not null;index"`
	UserID           int64      `gorm:"column:user_id;not null"`
	ParentCommentID  *int64     `gorm:"column:parent_comment_id;index"`
	MentionUserID    *int64     `gorm:"column:mention_user_id"`
	Text             string     `gorm:"type:varchar(300);not null"`
	Likes            int64      `gorm:"default:0"`
	SubCommentsCount int64      `gorm:"column:sub_comments_count;default:0"`
	CreatedAt        time.Time  `gorm:"type:datetime"`
	UpdatedAt        time.Time  `gorm:"type:datetime"`
	DeletedAt        *time.Time `gorm:"type:datetime"`
}

func (Comment) TableName() string {
	return "comments"
}

func NewCommentFromDomain(c *domain.Comment) *Comment {
	return &Comment{
		ID:               c.ID,
		ItemID:           c.ItemID,
		UserID:           c.UserID,
		ParentCommentID:  c.ParentCommentID,
		MentionUserID:    c.MentionUserID,
		Text:             c.Text,
		Likes:            c.Likes,
		SubCommentsCount: c.SubCommentsCount,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		DeletedAt:        c.DeletedAt,
	}
}

func (m *Comment) ToDomain() domain.Comment {
	return domain.Comment{
		ID:               m.ID,
		ItemID:           m.ItemID,
		UserID:           m.UserID,
		ParentCommentID:  m.ParentCommentID,
		MentionUserID:    m.MentionUserID,
		Text:             m.Text,
		Likes:            m.Likes,
		SubCommentsCount: m.SubCommentsCount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		DeletedAt:        m.DeletedAt,
		User: domain.User{
			ID: m.UserID,
		},
	}
}
