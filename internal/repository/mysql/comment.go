package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bereal1995/jotrends-server/domain"
	"github.com/bereal1995/jotrends-server/internal/repository/mysql/model"
)

type commentRepository struct {
	DB *gorm.DB
}

var _ domain.CommentRepository = (*commentRepository)(nil)

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{
		DB: db,
	}
}

func (c *commentRepository) Store(ctx context.Context, comment *domain.Comment) error {
	commentModel := model.NewCommentFromDomain(comment)
	if err := c.DB.WithContext(ctx).Create(commentModel).Error; err != nil {
		return err
	}
	comment.ID = commentModel.ID
	comment.CreatedAt = commentModel.CreatedAt
	comment.UpdatedAt = commentModel.UpdatedAt
	return nil
}

func (c *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var comment model.Comment
	err := c.DB.WithContext(ctx).First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, domain.ErrNotFound
	}
	domainComment := comment.ToDomain()
	return &domainComment, nil
}

func (c *commentRepository) FetchByItem(ctx context.Context, itemID int64) ([]*domain.Comment, error) {
	var comments []model.Comment
	err := c.DB.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return toDomainComments(comments), nil
}

func (c *commentRepository) FetchSubComments(ctx context.Context, parentID int64) ([]*domain.Comment, error) {
	var comments []model.Comment
	err := c.DB.WithContext(ctx).
		Where("parent_comment_id = ? AND deleted_at IS NULL", parentID).
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return toDomainComments(comments), nil
}

func (c *commentRepository) UpdateText(ctx context.Context, id int64, text string) error {
	result := c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		Update("text", text)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *commentRepository) SoftDelete(ctx context.Context, id int64) error {
	result := c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *commentRepository) CountByItem(ctx context.Context, itemID int64) (count int64, err error) {
	// soft-deleted rows stay in the table but no longer count
	err = c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("item_id = ? AND deleted_at IS NULL", itemID).
		Count(&count).Error
	return
}

func (c *commentRepository) CountByParent(ctx context.Context, parentID int64) (count int64, err error) {
	err = c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("parent_comment_id = ? AND deleted_at IS NULL", parentID).
		Count(&count).Error
	return
}

func (c *commentRepository) UpdateSubCommentsCount(ctx context.Context, id int64, count int64) error {
	return c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		Update("sub_comments_count", count).Error
}

func (c *commentRepository) UpdateLikes(ctx context.Context, id int64, likes int64) error {
	return c.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		Update("likes", likes).Error
}

func (c *commentRepository) AddLikeRecord(ctx context.Context, commentID, userID int64) error {
	record := &model.CommentLike{
		CommentID: commentID,
		UserID:    userID,
	}
	result := c.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (c *commentRepository) RemoveLikeRecord(ctx context.Context, commentID, userID int64) error {
	result := c.DB.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&model.CommentLike{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (c *commentRepository) CountLikes(ctx context.Context, commentID int64) (count int64, err error) {
	err = c.DB.WithContext(ctx).
		Model(&model.CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error
	return
}

func (c *commentRepository) LikedMap(ctx context.Context, userID int64, commentIDs []int64) (map[int64]bool, error) {
	if len(commentIDs) == 0 {
		return map[int64]bool{}, nil
	}
	var liked []int64
	err := c.DB.WithContext(ctx).
		Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &liked).Error
	if err != nil {
		return nil, err
	}
	res := make(map[int64]bool, len(liked))
	for _, id := range liked {
		res[id] = true
	}
	return res, nil
}

func toDomainComments(comments []model.Comment) []*domain.Comment {
	res := make([]*domain.Comment, 0, len(comments))
	for i := range comments {
		domainComment := comments[i].ToDomain()
		res = append(res, &domainComment)
	}
	return res
}
