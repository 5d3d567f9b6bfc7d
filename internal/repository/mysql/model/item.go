package model

import (
	"time"

	"github.com/bereal1995/jotrends-server/domain"
)

type Item struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Body        string    `gorm:"type:text;not null"`
	Link        string    `gorm:"type:varchar(2048);not null"`
	Author      string    `gorm:"type:varchar(255)"`
	UserID      int64     `gorm:"column:user_id;not null;index"`
	PublisherID int64     `gorm:"column:publisher_id;not null"`
	CreatedAt   time.Time `gorm:"type:datetime;index"`
	UpdatedAt   time.Time `gorm:"type:datetime"`

	Stats *ItemStats `gorm:"foreignKey:ItemID"`
	Site  *Publisher `gorm:"foreignKey:PublisherID;references:ID"`
}

func (Item) TableName() string {
	return "items"
}

func (m *Item) ToDomain() domain.Item {
	it := domain.Item{
		ID:        m.ID,
		Title:     m.Title,
		Body:      m.Body,
		Link:      m.Link,
		Author:    m.Author,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		User: domain.User{
			ID: m.UserID,
		},
		Publisher: domain.Publisher{
			ID: m.PublisherID,
		},
	}
	if m.Stats != nil {
		it.Stats = m.Stats.ToDomain()
	}
	if m.Site != nil {
		it.Publisher = m.Site.ToDomain()
	}
	return it
}

func NewItemFromDomain(it *domain.Item) *Item {
	return &Item{
		ID:          it.ID,
		Title:       it.Title,
		Body:        it.Body,
		Link:        it.Link,
		Author:      it.Author,
		UserID:      it.User.ID,
		PublisherID: it.Publisher.ID,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}

type ItemStats struct {
	ItemID        int64     `gorm:"column:item_id;primaryKey"`
	Likes         int64     `gorm:"default:0;index"`
	CommentsCount int64     `gorm:"column:comments_count;default:0"`
	Score         float64   `gorm:"default:0;index"`
	UpdatedAt     time.Time `gorm:"type:datetime"`
}

func (ItemStats) TableName() string {
	return "item_stats"
}

func (m *ItemStats) ToDomain() domain.ItemStats {
	return domain.ItemStats{
		ItemID:        m.ItemID,
		Likes:         m.Likes,
		CommentsCount: m.CommentsCount,
		Score:         m.Score,
		UpdatedAt:     m.UpdatedAt,
	}
}

type Publisher struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Domain    string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Favicon   string    `gorm:"type:varchar(2048)"`
	CreatedAt time.Time `gorm:"type:datetime"`
}

func (Publisher) TableName() string {
	return "publishers"
}

func (m *Publisher) ToDomain() domain.Publisher {
	return domain.Publisher{
		ID:      m.ID,
		Name:    m.Name,
		Domain:  m.Domain,
		Favicon: m.Favicon,
	}
}

func NewPublisherFromDomain(p *domain.Publisher) *Publisher {
	return &Publisher{
		ID:      p.ID,
		Name:    p.Name,
		Domain:  p.Domain,
		Favicon: p.Favicon,
	}
}
