package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/repository/mysql/model"
)

type bookmarkRepository struct {
	DB *gorm.DB
}

var _ domain.BookmarkRepository = (*bookmarkRepository)(nil)

func NewBookmarkRepository(db *gorm.DB) *bookmarkRepository {
	return &bookmarkRepository{
		DB: db,
	}
}

func (b *bookmarkRepository) Store(ctx context.Context, bm *domain.Bookmark) error {
	bookmarkModel := &model.Bookmark{
		UserID: bm.UserID,
		ItemID: bm.ItemID,
	}
	result := b.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(bookmarkModel)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	bm.ID = bookmarkModel.ID
	bm.CreatedAt = bookmarkModel.CreatedAt
	return nil
}

func (b *bookmarkRepository) Delete(ctx context.Context, userID, itemID int64) error {
	result := b.DB.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&model.Bookmark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (b *bookmarkRepository) Fetch(ctx context.Context, userID, cursor, limit int64) ([]domain.Bookmark, error) {
	q := b.DB.WithContext(ctx).Where("user_id = ?", userID)
	if cursor != 0 {
		q = q.Where("id < ?", cursor)
	}

	var bookmarks []model.Bookmark
	err := q.Order("id DESC").Limit(int(limit)).Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}

	res := make([]domain.Bookmark, len(bookmarks))
	for i := range bookmarks {
		res[i] = bookmarks[i].ToDomain()
	}
	return res, nil
}

func (b *bookmarkRepository) HasAfter(ctx context.Context, userID, cursor int64) (bool, error) {
	var ids []int64
	err := b.DB.WithContext(ctx).
		Model(&model.Bookmark{}).
		Where("user_id = ? AND id < ?", userID, cursor).
		Limit(1).
		Pluck("id", &ids).Error
	return len(ids) > 0, err
}

func (b *bookmarkRepository) CountByUser(ctx context.Context, userID int64) (count int64, err error) {
	err = b.DB.WithContext(ctx).
		Model(&model.Bookmark{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return
}
