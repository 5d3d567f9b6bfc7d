package comment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bereal1995/jotrends-server/domain"
)

type service struct {
	commentRepo domain.CommentRepository
	itemRepo    domain.ItemRepository
	userRepo    domain.UserRepository
	recalc      domain.RecalcWorker
}

var _ domain.CommentUsecase = (*service)(nil)

func NewService(commentRepo domain.CommentRepository, itemRepo domain.ItemRepository, userRepo domain.UserRepository, recalc domain.RecalcWorker) *service {
	return &service{
		commentRepo: commentRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		recalc:      recalc,
	}
}

// List rebuilds the two-level thread of an item from its flat comment set:
// flag likes in one batch lookup, redact soft-deleted rows, then group
// replies under their roots.
func (s *service) List(ctx context.Context, itemID, userID int64) ([]*domain.Comment, error) {
	comments, err := s.commentRepo.FetchByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []*domain.Comment{}, nil
	}

	if err := s.fillUsers(ctx, comments); err != nil {
		return nil, err
	}
	if err := s.fillLikedFlags(ctx, userID, comments); err != nil {
		return nil, err
	}

	redactDeleted(comments)
	return groupSubComments(comments), nil
}

// redactDeleted blanks soft-deleted comments in place so no downstream step
// needs to branch on delete state again.
func redactDeleted(comments []*domain.Comment) {
	for _, c := range comments {
		if c.DeletedAt == nil {
			continue
		}
		c.Text = ""
		c.Likes = 0
		c.SubCommentsCount = 0
		c.CreatedAt = time.Time{}
		c.UpdatedAt = time.Time{}
		c.User = domain.User{
			ID:       domain.DeletedUserID,
			Username: domain.DeletedUsername,
		}
		c.MentionUserID = nil
		c.MentionUser = nil
		c.IsLiked = false
		c.IsDeleted = true
	}
}

// groupSubComments partitions into roots and replies and attaches each
// root's live replies. Deleted replies are dropped entirely; a deleted root
// survives only while it still has at least one live reply under it, so the
// thread below stays readable.
func groupSubComments(comments []*domain.Comment) []*domain.Comment {
	replyMap := make(map[int64][]*domain.Comment)
	for _, c := range comments {
		if c.ParentCommentID == nil || c.IsDeleted {
			continue
		}
		replyMap[*c.ParentCommentID] = append(replyMap[*c.ParentCommentID], c)
	}

	roots := make([]*domain.Comment, 0, len(comments))
	for _, c := range comments {
		if c.ParentCommentID != nil {
			continue
		}
		c.SubComments = replyMap[c.ID]
		if c.SubComments == nil {
			c.SubComments = []*domain.Comment{}
		}
		if c.IsDeleted && len(c.SubComments) == 0 {
			continue
		}
		roots = append(roots, c)
	}
	return roots
}

func (s *service) Get(ctx context.Context, commentID, userID int64, withSubComments bool) (*domain.Comment, error) {
	comment, err := s.getLive(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if err := s.fillUsers(ctx, []*domain.Comment{comment}); err != nil {
		return nil, err
	}
	if err := s.fillLikedFlags(ctx, userID, []*domain.Comment{comment}); err != nil {
		return nil, err
	}

	if withSubComments {
		subComments, err := s.commentRepo.FetchSubComments(ctx, commentID)
		if err != nil {
			return nil, err
		}
		if err := s.fillUsers(ctx, subComments); err != nil {
			return nil, err
		}
		if err := s.fillLikedFlags(ctx, userID, subComments); err != nil {
			return nil, err
		}
		comment.SubComments = subComments
	}
	return comment, nil
}

// getLive fetches a comment, treating a soft-deleted one as missing when
// addressed directly.
func (s *service) getLive(ctx context.Context, commentID int64) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return comment, nil
}

// Create writes a comment, collapsing a reply-to-a-reply onto the original
// root so thread depth never exceeds two. Replying to a reply mentions the
// immediate parent's author, unless the replier is that author. The parent
// root's reply count and the item's comment count are recounted from rows,
// never incremented.
func (s *service) Create(ctx context.Context, in domain.CreateCommentInput) (*domain.Comment, error) {
	if len(in.Text) < 1 || len(in.Text) > domain.MaxCommentLength {
		return nil, fmt.Errorf("%w: text is invalid", domain.ErrBadParamInput)
	}
	if _, err := s.itemRepo.GetStats(ctx, in.ItemID); err != nil {
		return nil, err
	}

	parentCommentID := in.ParentCommentID
	var mentionUserID *int64
	if in.ParentCommentID != nil {
		parent, err := s.getLive(ctx, *in.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.ParentCommentID != nil {
			// reply to a reply: re-parent onto the original root
			parentCommentID = parent.ParentCommentID
			if parent.UserID != in.UserID {
				uid := parent.UserID
				mentionUserID = &uid
			}
		}
	}

	comment := &domain.Comment{
		ItemID:          in.ItemID,
		UserID:          in.UserID,
		Text:            in.Text,
		ParentCommentID: parentCommentID,
		MentionUserID:   mentionUserID,
	}
	if err := s.commentRepo.Store(ctx, comment); err != nil {
		return nil, err
	}

	if parentCommentID != nil {
		subCount, err := s.commentRepo.CountByParent(ctx, *parentCommentID)
		if err != nil {
			return nil, err
		}
		if err := s.commentRepo.UpdateSubCommentsCount(ctx, *parentCommentID, subCount); err != nil {
			return nil, err
		}
	}
	if err := s.syncCommentsCount(ctx, in.ItemID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	comment.User = user
	comment.SubComments = []*domain.Comment{}
	return comment, nil
}

func (s *service) Update(ctx context.Context, commentID, userID int64, text string) (*domain.Comment, error) {
	if len(text) < 1 || len(text) > domain.MaxCommentLength {
		return nil, fmt.Errorf("%w: text is invalid", domain.ErrBadParamInput)
	}

	comment, err := s.getLive(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, domain.ErrForbidden
	}

	if err := s.commentRepo.UpdateText(ctx, commentID, text); err != nil {
		return nil, err
	}
	return s.Get(ctx, commentID, userID, true)
}

// Delete soft-deletes: the row stays so live replies keep their anchor.
// The item's comment count refresh rides on the recalc worker.
func (s *service) Delete(ctx context.Context, commentID, userID int64) error {
	comment, err := s.getLive(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		return err
	}

	s.recalc.Send(domain.RecalcTask{ItemID: comment.ItemID, Kind: domain.RecalcComments})
	return nil
}

// Like records a comment like idempotently and returns the fresh count.
func (s *service) Like(ctx context.Context, commentID, userID int64) (int64, error) {
	if _, err := s.getLive(ctx, commentID); err != nil {
		return 0, err
	}

	err := s.commentRepo.AddLikeRecord(ctx, commentID, userID)
	if err != nil && !errors.Is(err, domain.ErrConflict) {
		return 0, err
	}
	return s.syncCommentLikes(ctx, commentID)
}

// Unlike removes a comment like; a missing record is absorbed as a no-op.
func (s *service) Unlike(ctx context.Context, commentID, userID int64) (int64, error) {
	if _, err := s.getLive(ctx, commentID); err != nil {
		return 0, err
	}

	err := s.commentRepo.RemoveLikeRecord(ctx, commentID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return 0, err
	}
	return s.syncCommentLikes(ctx, commentID)
}

func (s *service) syncCommentLikes(ctx context.Context, commentID int64) (int64, error) {
	count, err := s.commentRepo.CountLikes(ctx, commentID)
	if err != nil {
		return 0, err
	}
	if err := s.commentRepo.UpdateLikes(ctx, commentID, count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *service) syncCommentsCount(ctx context.Context, itemID int64) error {
	count, err := s.commentRepo.CountByItem(ctx, itemID)
	if err != nil {
		return err
	}
	return s.itemRepo.UpdateCommentsCount(ctx, itemID, count)
}

func (s *service) fillUsers(ctx context.Context, comments []*domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	seen := map[int64]bool{}
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		if !seen[c.UserID] {
			seen[c.UserID] = true
			ids = append(ids, c.UserID)
		}
		if c.MentionUserID != nil && !seen[*c.MentionUserID] {
			seen[*c.MentionUserID] = true
			ids = append(ids, *c.MentionUserID)
		}
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	userMap := make(map[int64]domain.User, len(users))
	for _, u := range users {
		userMap[u.ID] = u
	}

	for _, c := range comments {
		if u, ok := userMap[c.UserID]; ok {
			c.User = u
		}
		if c.MentionUserID != nil {
			if u, ok := userMap[*c.MentionUserID]; ok {
				c.MentionUser = &u
			}
		}
	}
	return nil
}

// fillLikedFlags stamps the requesting user's comment likes in one batch
// lookup keyed by comment id, not per-comment queries.
func (s *service) fillLikedFlags(ctx context.Context, userID int64, comments []*domain.Comment) error {
	if userID == 0 || len(comments) == 0 {
		return nil
	}

	ids := make([]int64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	likedMap, err := s.commentRepo.LikedMap(ctx, userID, ids)
	if err != nil {
		return err
	}
	for _, c := range comments {
		c.IsLiked = likedMap[c.ID]
	}
	return nil
}
