package response

import "github.com/bereal1995/jotrends-server/domain"

type Comment struct {
	ID               int64  `json:"id"`
	ItemID           int64  `json:"item_id"`
	ParentCommentID  *int64 `json:"parent_comment_id,omitempty"`
	Text             string `json:"text"`
	Likes            int64  `json:"likes"`
	SubCommentsCount int64  `json:"sub_comments_count"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`

	// User 评论作者信息
	User User `json:"user"`
	// MentionUser is who the reply addresses, filled for reply-to-reply
	MentionUser *User `json:"mention_user,omitempty"`
	// SubComments 子评论列表
	SubComments []Comment `json:"sub_comments,omitempty"`

	IsLiked   bool `json:"is_liked"`
	IsDeleted bool `json:"is_deleted"`
}

func NewSingleCommentFromDomain(c *domain.Comment) Comment {
	res := Comment{
		ID:               c.ID,
		ItemID:           c.ItemID,
		ParentCommentID:  c.ParentCommentID,
		Text:             c.Text,
		Likes:            c.Likes,
		SubCommentsCount: c.SubCommentsCount,
		CreatedAt:        c.CreatedAt.Format(DateTimeFormat),
		UpdatedAt:        c.UpdatedAt.Format(DateTimeFormat),
		User: User{
			ID:       c.User.ID,
			Username: c.User.Username,
		},
		IsLiked:   c.IsLiked,
		IsDeleted: c.IsDeleted,
	}
	if c.MentionUser != nil {
		res.MentionUser = &User{
			ID:       c.MentionUser.ID,
			Username: c.MentionUser.Username,
		}
	}
	return res
}

// NewCommentFromDomain: Domain -> Response
func NewCommentFromDomain(c *domain.Comment) Comment {
	root := NewSingleCommentFromDomain(c)
	if len(c.SubComments) > 0 {
		replies := make([]Comment, 0, len(c.SubComments))
		for _, r := range c.SubComments {
			replies = append(replies, NewSingleCommentFromDomain(r))
		}
		root.SubComments = replies
	}
	return root
}

func NewCommentsFromDomain(comments []*domain.Comment) []Comment {
	res := make([]Comment, 0, len(comments))
	for _, c := range comments {
		res = append(res, NewCommentFromDomain(c))
	}
	return res
}
