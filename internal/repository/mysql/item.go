package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/repository/mysql/model"
)

type itemRepository struct {
	DB *gorm.DB
}

var _ domain.ItemRepository = (*itemRepository)(nil)

// NewItemRepository 创建数据库操作层
func NewItemRepository(db *gorm.DB) *itemRepository {
	return &itemRepository{db}
}

func (m *itemRepository) Store(ctx context.Context, it *domain.Item) error {
	itemModel := model.NewItemFromDomain(it)
	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(itemModel).Error; err != nil {
			return err
		}
		// stats row is created together with the item and co-deleted with it
		return tx.Create(&model.ItemStats{ItemID: itemModel.ID}).Error
	})
	if err != nil {
		return err
	}
	it.ID = itemModel.ID
	it.CreatedAt = itemModel.CreatedAt
	it.UpdatedAt = itemModel.UpdatedAt
	it.Stats = domain.ItemStats{ItemID: itemModel.ID}
	return nil
}

func (m *itemRepository) GetByID(ctx context.Context, id int64) (res domain.Item, err error) {
	var item model.Item
	err = m.DB.WithContext(ctx).
		Preload("Stats").
		Preload("Site").
		First(&item, "id = ?", id).Error
	if err != nil {
		return res, domain.ErrNotFound
	}
	res = item.ToDomain()
	return
}

func (m *itemRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	var items []model.Item
	err := m.DB.WithContext(ctx).
		Preload("Stats").
		Preload("Site").
		Where("id IN ?", ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	res := make([]domain.Item, len(items))
	for i := range items {
		res[i] = items[i].ToDomain()
	}
	return res, nil
}

func (m *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	result := m.DB.WithContext(ctx).
		Model(&model.Item{ID: it.ID}).
		Select("title", "body").
		Updates(model.Item{Title: it.Title, Body: it.Body})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *itemRepository) Delete(ctx context.Context, id int64) error {
	return m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&model.Item{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := tx.Where("item_id = ?", id).Delete(&model.ItemStats{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&model.ItemLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", id).Delete(&model.Bookmark{}).Error; err != nil {
			return err
		}
		return tx.Where("item_id = ?", id).Delete(&model.Comment{}).Error
	})
}

func (m *itemRepository) GetOrCreatePublisher(ctx context.Context, p *domain.Publisher) error {
	var existing model.Publisher
	err := m.DB.WithContext(ctx).First(&existing, "domain = ?", p.Domain).Error
	if err == nil {
		*p = existing.ToDomain()
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	publisherModel := model.NewPublisherFromDomain(p)
	if err := m.DB.WithContext(ctx).Create(publisherModel).Error; err != nil {
		return err
	}
	p.ID = publisherModel.ID
	return nil
}

func (m *itemRepository) CountAll(ctx context.Context) (count int64, err error) {
	err = m.DB.WithContext(ctx).Model(&model.Item{}).Count(&count).Error
	return
}

func (m *itemRepository) CountTrending(ctx context.Context, minScore float64) (count int64, err error) {
	err = m.DB.WithContext(ctx).
		Model(&model.ItemStats{}).
		Where("score >= ?", minScore).
		Count(&count).Error
	return
}

func (m *itemRepository) CountInRange(ctx context.Context, start, end time.Time) (count int64, err error) {
	err = m.DB.WithContext(ctx).
		Model(&model.Item{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&count).Error
	return
}

func (m *itemRepository) FetchRecent(ctx context.Context, cursor domain.RecentCursor, limit int64) ([]domain.Item, error) {
	q := m.DB.WithContext(ctx).Model(&model.Item{})
	if cursor.ID != 0 {
		q = q.Where("id < ?", cursor.ID)
	}

	var items []model.Item
	err := q.Order("id DESC").
		Limit(int(limit)).
		Preload("Stats").
		Preload("Site").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return toDomainItems(items), nil
}

func (m *itemRepository) HasRecentAfter(ctx context.Context, cursor domain.RecentCursor) (bool, error) {
	var ids []int64
	err := m.DB.WithContext(ctx).
		Model(&model.Item{}).
		Where("id < ?", cursor.ID).
		Limit(1).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}

// trendingScope joins the stats row and applies the eligibility floor and,
// when bounded, the compound (score, id) keyset predicate. The same scope
// backs the page query and the hasNextPage probe so their boundaries can
// never disagree.
func (m *itemRepository) trendingScope(ctx context.Context, cursor domain.TrendingCursor, minScore float64) *gorm.DB {
	q := m.DB.WithContext(ctx).
		Model(&model.Item{}).
		Joins("JOIN item_stats ON item_stats.item_id = items.id").
		Where("item_stats.score >= ?", minScore)
	if cursor.ID == 0 {
		return q
	}
	if cursor.Bounded {
		return q.Where(
			"item_stats.score < ? OR (item_stats.score = ? AND items.id < ?)",
			cursor.Score, cursor.Score, cursor.ID,
		)
	}
	// cursor item is gone, keep only the id bound
	return q.Where("items.id < ?", cursor.ID)
}

func (m *itemRepository) FetchTrending(ctx context.Context, cursor domain.TrendingCursor, minScore float64, limit int64) ([]domain.Item, error) {
	var items []model.Item
	err := m.trendingScope(ctx, cursor, minScore).
		Order("item_stats.score DESC, items.id DESC").
		Limit(int(limit)).
		Preload("Stats").
		Preload("Site").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return toDomainItems(items), nil
}

func (m *itemRepository) HasTrendingAfter(ctx context.Context, cursor domain.TrendingCursor, minScore float64) (bool, error) {
	var ids []int64
	err := m.trendingScope(ctx, cursor, minScore).
		Limit(1).
		Pluck("items.id", &ids).Error
	return len(ids) > 0, err
}

func (m *itemRepository) pastScope(ctx context.Context, cursor domain.PastCursor, start, end time.Time) *gorm.DB {
	q := m.DB.WithContext(ctx).
		Model(&model.Item{}).
		Joins("JOIN item_stats ON item_stats.item_id = items.id").
		Where("items.created_at BETWEEN ? AND ?", start, end)
	if cursor.ID == 0 {
		return q
	}
	if cursor.Bounded {
		return q.Where(
			"item_stats.likes < ? OR (item_stats.likes = ? AND items.id < ?)",
			cursor.Likes, cursor.Likes, cursor.ID,
		)
	}
	return q.Where("items.id < ?", cursor.ID)
}

func (m *itemRepository) FetchPast(ctx context.Context, cursor domain.PastCursor, start, end time.Time, limit int64) ([]domain.Item, error) {
	var items []model.Item
	err := m.pastScope(ctx, cursor, start, end).
		Order("item_stats.likes DESC, items.id DESC").
		Limit(int(limit)).
		Preload("Stats").
		Preload("Site").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return toDomainItems(items), nil
}

func (m *itemRepository) HasPastAfter(ctx context.Context, cursor domain.PastCursor, start, end time.Time) (bool, error) {
	var ids []int64
	err := m.pastScope(ctx, cursor, start, end).
		Limit(1).
		Pluck("items.id", &ids).Error
	return len(ids) > 0, err
}

func (m *itemRepository) GetStats(ctx context.Context, itemID int64) (domain.ItemStats, error) {
	var stats model.ItemStats
	err := m.DB.WithContext(ctx).First(&stats, "item_id = ?", itemID).Error
	if err != nil {
		return domain.ItemStats{}, domain.ErrNotFound
	}
	return stats.ToDomain(), nil
}

func (m *itemRepository) UpdateLikes(ctx context.Context, itemID int64, likes int64) error {
	return m.updateStatsColumn(ctx, itemID, "likes", likes)
}

func (m *itemRepository) UpdateScore(ctx context.Context, itemID int64, score float64) error {
	return m.updateStatsColumn(ctx, itemID, "score", score)
}

func (m *itemRepository) UpdateCommentsCount(ctx context.Context, itemID int64, count int64) error {
	return m.updateStatsColumn(ctx, itemID, "comments_count", count)
}

func (m *itemRepository) updateStatsColumn(ctx context.Context, itemID int64, column string, value any) error {
	result := m.DB.WithContext(ctx).
		Model(&model.ItemStats{}).
		Where("item_id = ?", itemID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *itemRepository) AddLikeRecord(ctx context.Context, itemID, userID int64) error {
	userLike := &model.ItemLike{
		ItemID: itemID,
		UserID: userID,
	}
	result := m.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(userLike)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (m *itemRepository) RemoveLikeRecord(ctx context.Context, itemID, userID int64) error {
	result := m.DB.WithContext(ctx).
		Where("item_id = ? AND user_id = ?", itemID, userID).
		Delete(&model.ItemLike{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *itemRepository) CountLikes(ctx context.Context, itemID int64) (count int64, err error) {
	err = m.DB.WithContext(ctx).
		Model(&model.ItemLike{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return
}

func (m *itemRepository) LikedMap(ctx context.Context, userID int64, itemIDs []int64) (map[int64]bool, error) {
	var liked []int64
	err := m.DB.WithContext(ctx).
		Model(&model.ItemLike{}).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Pluck("item_id", &liked).Error
	if err != nil {
		return nil, err
	}
	res := make(map[int64]bool, len(liked))
	for _, id := range liked {
		res[id] = true
	}
	return res, nil
}

func (m *itemRepository) BookmarkedMap(ctx context.Context, userID int64, itemIDs []int64) (map[int64]bool, error) {
	var marked []int64
	err := m.DB.WithContext(ctx).
		Model(&model.Bookmark{}).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Pluck("item_id", &marked).Error
	if err != nil {
		return nil, err
	}
	res := make(map[int64]bool, len(marked))
	for _, id := range marked {
		res[id] = true
	}
	return res, nil
}

func toDomainItems(items []model.Item) []domain.Item {
	res := make([]domain.Item, len(items))
	for i := range items {
		res[i] = items[i].ToDomain()
	}
	return res
}
