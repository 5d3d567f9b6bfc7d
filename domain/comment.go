package domain

import (
	"context"
	"time"
)

const (
	// MaxCommentLength bounds the text of a single comment
	MaxCommentLength = 300

	// DeletedUserID is the placeholder identity shown on redacted comments
	DeletedUserID = -1
	// DeletedUsername is the placeholder name shown on redacted comments
	DeletedUsername = "deleted"
)

// Comment domain model. A comment either is a root (ParentCommentID nil) or
// replies directly to a root: depth never exceeds two because a reply to a
// reply is re-parented onto the original root at write time.
type Comment struct {
	ID               int64      `json:"id"`
	ItemID           int64      `json:"item_id"`
	UserID           int64      `json:"user_id"`
	ParentCommentID  *int64     `json:"parent_comment_id"`
	MentionUserID    *int64     `json:"mention_user_id"`
	Text             string     `json:"text"`
	Likes            int64      `json:"likes"`
	SubCommentsCount int64      `json:"sub_comments_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"-"`

	// User 评论作者信息
	User User `json:"user"`
	// MentionUser is the author the reply is aimed at, if any
	MentionUser *User `json:"mention_user,omitempty"`
	// SubComments 子评论列表
	SubComments []*Comment `json:"sub_comments,omitempty"`

	IsLiked   bool `json:"is_liked"`
	IsDeleted bool `json:"is_deleted"`
}

// CommentLike is a like record on a comment, unique per (CommentID, UserID).
type CommentLike struct {
	CommentID int64
	UserID    int64
	CreatedAt time.Time
}

// CreateCommentInput is the payload for writing a comment.
type CreateCommentInput struct {
	ItemID          int64
	UserID          int64
	Text            string
	ParentCommentID *int64
}

// CommentUsecase 业务逻辑接口
type CommentUsecase interface {
	// List returns the two-level thread of an item: root comments in id
	// order, each carrying its live replies.
	List(ctx context.Context, itemID, userID int64) ([]*Comment, error)

	// Get returns a single live comment.
	// Returns ErrNotFound when missing or soft-deleted.
	Get(ctx context.Context, commentID, userID int64, withSubComments bool) (*Comment, error)

	Create(ctx context.Context, in CreateCommentInput) (*Comment, error)
	Update(ctx context.Context, commentID, userID int64, text string) (*Comment, error)
	Delete(ctx context.Context, commentID, userID int64) error

	// Like/Unlike are idempotent and return the fresh like count.
	Like(ctx context.Context, commentID, userID int64) (int64, error)
	Unlike(ctx context.Context, commentID, userID int64) (int64, error)
}

// CommentRepository 数据存取接口
type CommentRepository interface {
	Store(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)

	// FetchByItem returns the flat comment set of one item, id ascending,
	// authors filled.
	FetchByItem(ctx context.Context, itemID int64) ([]*Comment, error)

	// FetchSubComments returns the live replies of one root, id ascending.
	FetchSubComments(ctx context.Context, parentID int64) ([]*Comment, error)

	UpdateText(ctx context.Context, id int64, text string) error

	// SoftDelete sets deletedAt; the row is never physically removed.
	SoftDelete(ctx context.Context, id int64) error

	CountByItem(ctx context.Context, itemID int64) (int64, error)
	CountByParent(ctx context.Context, parentID int64) (int64, error)
	UpdateSubCommentsCount(ctx context.Context, id int64, count int64) error
	UpdateLikes(ctx context.Context, id int64, likes int64) error

	// AddLikeRecord returns ErrConflict on a duplicate pair.
	AddLikeRecord(ctx context.Context, commentID, userID int64) error
	// RemoveLikeRecord returns ErrNotFound on a missing pair.
	RemoveLikeRecord(ctx context.Context, commentID, userID int64) error
	CountLikes(ctx context.Context, commentID int64) (int64, error)

	// LikedMap reports which of the given comments the user liked, in one
	// batch lookup.
	LikedMap(ctx context.Context, userID int64, commentIDs []int64) (map[int64]bool, error)
}
