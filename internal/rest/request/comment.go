package request

import "github.com/bereal1995/jotrends-server/domain"

type CreateComment struct {
	Text            string `json:"text" binding:"required,max=300"`
	ParentCommentID *int64 `json:"parent_comment_id"`
}

// ToDomain: Request -> Domain
func (r *CreateComment) ToDomain(itemID, userID int64) domain.CreateCommentInput {
	return domain.CreateCommentInput{
		ItemID:          itemID,
		UserID:          userID,
		Text:            r.Text,
		ParentCommentID: r.ParentCommentID,
	}
}

type UpdateComment struct {
	Text string `json:"text" binding:"required,max=300"`
}
